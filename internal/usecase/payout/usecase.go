package payout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/LavaJover/kol-payout-service/internal/domain"
	"github.com/LavaJover/kol-payout-service/internal/infrastructure/metrics"
	"github.com/LavaJover/kol-payout-service/internal/infrastructure/notifier"
	"github.com/LavaJover/kol-payout-service/internal/usecase/commission"
	payoutdto "github.com/LavaJover/kol-payout-service/internal/usecase/dto/payout"
	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
)

type PayoutUsecase interface {
	GetEligiblePayouts(ctx context.Context, filter domain.EligibilityFilter) (*payoutdto.EligibleOutput, error)
	GeneratePayouts(ctx context.Context, input *payoutdto.GeneratePayoutsInput) (*domain.GenerateResult, error)
	UpdatePayoutStatus(ctx context.Context, input *payoutdto.UpdatePayoutStatusInput) (*domain.PayoutView, error)

	ListPayouts(ctx context.Context, filter domain.PayoutFilter) (*domain.PayoutPage, error)
	GetPayoutDetails(ctx context.Context, payoutID string) (*domain.PayoutDetails, error)
	ListInfluencerPayouts(ctx context.Context, influencerID string, filter domain.PayoutFilter) (*domain.PayoutPage, error)
	GetInfluencerSalesStats(ctx context.Context, influencerID string, from, to time.Time) (*domain.SalesStats, error)
	RecordAffiliateClick(ctx context.Context, linkID string) (int64, error)
}

type ProrationMode string

const (
	// ProrationExact recomputes every still-unpaid item.
	ProrationExact ProrationMode = "exact"
	// ProrationRatio scales the requested amounts by unpaid/requested item count.
	ProrationRatio ProrationMode = "prorate"
)

type TierRateSource string

const (
	TierRateLive          TierRateSource = "live"
	TierRateOrderSnapshot TierRateSource = "order_snapshot"
)

type Options struct {
	ProrationMode     ProrationMode
	TierRateSource    TierRateSource
	StatsCombination  commission.Combination
	FulfilledStatuses []domain.OrderStatus
	PayoutTopic       string
}

func (o Options) withDefaults() Options {
	if o.ProrationMode == "" {
		o.ProrationMode = ProrationExact
	}
	if o.TierRateSource == "" {
		o.TierRateSource = TierRateLive
	}
	if o.StatsCombination == "" {
		o.StatsCombination = commission.Additive
	}
	if len(o.FulfilledStatuses) == 0 {
		o.FulfilledStatuses = domain.DefaultFulfilledStatuses()
	}
	return o
}

// StatusNotifier delivers payout status callbacks to an external endpoint.
type StatusNotifier interface {
	SendCallback(ctx context.Context, payload notifier.CallbackPayload) error
}

type DefaultPayoutUsecase struct {
	LedgerRepo domain.LedgerRepository
	PayoutRepo domain.PayoutRepository
	Clicks     domain.ClickStore
	Publisher  domain.PublisherPort
	Notifier   StatusNotifier
	RunLogger  domain.PayoutRunLogger
	Metrics    *metrics.PayoutMetrics

	opts         Options
	now          func() time.Time
	newReference func() string
	events       sync.WaitGroup
}

func NewDefaultPayoutUsecase(
	ledgerRepo domain.LedgerRepository,
	payoutRepo domain.PayoutRepository,
	opts Options,
) (*DefaultPayoutUsecase, error) {
	referenceGenerator, err := nanoid.CustomASCII("0123456789ABCDEFGHJKLMNPQRSTUVWXYZ", 12)
	if err != nil {
		return nil, fmt.Errorf("failed to init reference generator: %w", err)
	}

	return &DefaultPayoutUsecase{
		LedgerRepo: ledgerRepo,
		PayoutRepo: payoutRepo,
		opts:       opts.withDefaults(),
		now:        func() time.Time { return time.Now().UTC() },
		newReference: func() string {
			return "KOL-" + referenceGenerator()
		},
	}, nil
}

func (uc *DefaultPayoutUsecase) Options() Options {
	return uc.opts
}

// WaitEvents blocks until asynchronous events and callbacks are delivered.
func (uc *DefaultPayoutUsecase) WaitEvents() {
	uc.events.Wait()
}

func newPayoutID() string {
	return uuid.New().String()
}
