package domain

import (
	"context"
	"time"
)

// LedgerRepository - чтение позиций заказов, ссылок и профилей KOL
type LedgerRepository interface {
	FindEligibleItems(ctx context.Context, filter EligibilityFilter) ([]LedgerItem, error)
	FindItemsByPayout(ctx context.Context, payoutID string) ([]LedgerItem, error)
	FindInfluencerItems(ctx context.Context, influencerID string, statuses []OrderStatus, from, to time.Time) ([]LedgerItem, error)
	GetInfluencerProfile(ctx context.Context, influencerID string) (*InfluencerProfile, error)
	GetAffiliateLink(ctx context.Context, linkID string) (*AffiliateLink, error)
}

type PayoutRepository interface {
	// WithinTx runs fn in one storage transaction; a non-nil error rolls it back.
	WithinTx(ctx context.Context, fn func(tx PayoutTx) error) error
	GetPayoutByID(ctx context.Context, payoutID string) (*PayoutView, error)
	UpdatePayoutStatus(ctx context.Context, payoutID string, status PaymentStatus, notes *string, modifiedAt time.Time) error
	ListPayouts(ctx context.Context, filter PayoutFilter) ([]PayoutView, int64, error)
	PayoutStats(ctx context.Context, filter PayoutFilter) (*PayoutStats, error)
}

type PayoutTx interface {
	// LockUnpaidItems returns the requested items that are still eligible,
	// attributed to the influencer and unpaid, locking them where supported.
	LockUnpaidItems(ctx context.Context, influencerID string, itemIDs []string, statuses []OrderStatus) ([]LedgerItem, error)
	CreatePayout(ctx context.Context, payout *Payout) error
	// AssignPayout attaches the items to the payout only if none of them is
	// already paid; otherwise it returns ErrConcurrentPayment.
	AssignPayout(ctx context.Context, payoutID string, itemIDs []string, modifiedAt time.Time) error
}

type ClickStore interface {
	IncrClick(ctx context.Context, influencerID string, at time.Time) (int64, error)
	CountClicks(ctx context.Context, influencerID string, from, to time.Time) (int64, error)
}

type PayoutRun struct {
	RunID       string
	Requested   int
	Created     int
	Skipped     int
	TotalAmount string
	Duration    time.Duration
	Error       string
	StartedAt   time.Time
}

type PayoutRunLogger interface {
	LogRun(ctx context.Context, run PayoutRun) error
}
