package setup

import (
	"fmt"

	"github.com/LavaJover/kol-payout-service/internal/config"
	"github.com/LavaJover/kol-payout-service/internal/domain"
	"github.com/LavaJover/kol-payout-service/internal/usecase/commission"
	"github.com/LavaJover/kol-payout-service/internal/usecase/payout"
)

type UseCases struct {
	PayoutUsecase *payout.DefaultPayoutUsecase
}

// PayoutOptions translates the commission section into usecase options.
func PayoutOptions(cfg *config.PayoutConfig) (payout.Options, error) {
	combination, err := commission.ParseCombination(cfg.Commission.StatsRateMode)
	if err != nil {
		return payout.Options{}, err
	}

	statuses := make([]domain.OrderStatus, 0, len(cfg.Commission.FulfilledStatuses))
	for _, s := range cfg.Commission.FulfilledStatuses {
		statuses = append(statuses, domain.OrderStatus(s))
	}

	opts := payout.Options{
		ProrationMode:     payout.ProrationMode(cfg.Commission.ProrationMode),
		TierRateSource:    payout.TierRateSource(cfg.Commission.TierRateSource),
		StatsCombination:  combination,
		FulfilledStatuses: statuses,
	}
	if cfg.KafkaService.Enabled {
		opts.PayoutTopic = cfg.KafkaService.PayoutTopic
	}
	return opts, nil
}

func InitializeUseCases(deps *Dependencies) (*UseCases, error) {
	opts, err := PayoutOptions(deps.Config)
	if err != nil {
		return nil, fmt.Errorf("payout options: %w", err)
	}

	uc, err := payout.NewDefaultPayoutUsecase(deps.Repositories.LedgerRepo, deps.Repositories.PayoutRepo, opts)
	if err != nil {
		return nil, fmt.Errorf("payout usecase: %w", err)
	}
	uc.Metrics = deps.Metrics
	uc.RunLogger = deps.RunLogger
	// typed nils must not reach the interface fields
	if deps.Repositories.Clicks != nil {
		uc.Clicks = deps.Repositories.Clicks
	}
	if deps.Publisher != nil {
		uc.Publisher = deps.Publisher
	}
	if deps.Notifier != nil {
		uc.Notifier = deps.Notifier
	}

	return &UseCases{PayoutUsecase: uc}, nil
}
