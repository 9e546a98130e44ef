package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// PaymentStatuses - допустимые статусы выплаты
func PaymentStatuses() []PaymentStatus {
	return []PaymentStatus{PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed}
}

func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	s := PaymentStatus(strings.ToLower(strings.TrimSpace(raw)))
	for _, allowed := range PaymentStatuses() {
		if s == allowed {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %w %q, must be one of pending, completed, failed", ErrInvalidInput, ErrInvalidPaymentStatus, raw)
}

type Payout struct {
	ID                string
	Reference         string
	InfluencerID      string
	ProductCommission decimal.Decimal
	TierCommission    decimal.Decimal
	TotalAmount       decimal.Decimal
	ItemCount         int
	OrderCount        int
	Status            PaymentStatus
	Notes             *string
	PayoutDate        time.Time
	CreatedAt         time.Time
	ModifiedAt        time.Time
}

// PayoutCandidate - агрегат неоплаченных позиций одного KOL
type PayoutCandidate struct {
	Influencer        InfluencerProfile
	ProductCommission decimal.Decimal
	TierCommission    decimal.Decimal
	TotalCommission   decimal.Decimal
	OrderIDs          []string
	OrderItemIDs      []string
}

func (c *PayoutCandidate) OrderCount() int { return len(c.OrderIDs) }
func (c *PayoutCandidate) ItemCount() int  { return len(c.OrderItemIDs) }

// PayoutInstruction is one validated entry of a generate request. The amounts
// are hints computed by an earlier eligibility scan.
type PayoutInstruction struct {
	InfluencerID      string
	TotalAmount       decimal.Decimal
	ProductCommission decimal.Decimal
	TierCommission    decimal.Decimal
	OrderItemIDs      []string
	Notes             string
}

type CreatedPayout struct {
	PayoutID     string
	Reference    string
	InfluencerID string
	Amount       decimal.Decimal
	ItemCount    int
	OrderCount   int
}

type SkippedCandidate struct {
	InfluencerID string
	Reason       string
}

type GenerateResult struct {
	RunID          string
	PayoutsCreated int
	TotalAmount    decimal.Decimal
	Payouts        []CreatedPayout
	Skipped        []SkippedCandidate
}

func (r *GenerateResult) Message() string {
	msg := fmt.Sprintf("Successfully generated %d payouts totaling %s.", r.PayoutsCreated, r.TotalAmount.StringFixed(2))
	if len(r.Skipped) > 0 {
		msg += fmt.Sprintf(" %d influencer(s) were skipped due to issues.", len(r.Skipped))
	}
	return msg
}

type EligibilityFilter struct {
	InfluencerID      string
	CreatedFrom       *time.Time
	CreatedTo         *time.Time
	FulfilledStatuses []OrderStatus
}

type PayoutFilter struct {
	Status       string // "" or "all" means any status
	InfluencerID string
	Search       string
	From         *time.Time
	To           *time.Time
	SortBy       string
	SortDesc     bool
	Page         int
	Limit        int
}

type PayoutStatusStats struct {
	Count       int64
	TotalAmount decimal.Decimal
}

type PayoutStats struct {
	All       PayoutStatusStats
	Pending   PayoutStatusStats
	Completed PayoutStatusStats
	Failed    PayoutStatusStats
}

// PayoutView - выплата вместе с профилем KOL для списков
type PayoutView struct {
	Payout
	Influencer InfluencerProfile
}

type PayoutPage struct {
	Payouts    []PayoutView
	Total      int64
	Page       int
	Limit      int
	TotalPages int
	Stats      PayoutStats
}

type PayoutItemLine struct {
	OrderItemID   string
	ProductID     string
	ProductName   string
	Quantity      int64
	UnitPrice     decimal.Decimal
	ItemTotal     decimal.Decimal
	ProductRate   decimal.Decimal
	TierRate      decimal.Decimal
	ProductAmount decimal.Decimal
	TierAmount    decimal.Decimal
	TotalAmount   decimal.Decimal
}

type PayoutOrder struct {
	OrderID    string
	CreatedAt  time.Time
	Status     OrderStatus
	Items      []PayoutItemLine
	Commission decimal.Decimal
}

type PayoutDetails struct {
	PayoutView
	Orders []PayoutOrder
}

type SalesStats struct {
	InfluencerID     string
	From             time.Time
	To               time.Time
	OrderCount       int64
	SalesAmount      decimal.Decimal
	CommissionEarned decimal.Decimal
	Clicks           int64
}
