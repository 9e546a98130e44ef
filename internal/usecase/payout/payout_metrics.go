package payout

import (
	"time"

	"github.com/LavaJover/kol-payout-service/internal/domain"
	"github.com/shopspring/decimal"
)

// recordPayoutCreated - вызывается после фиксации выплаты
func (uc *DefaultPayoutUsecase) recordPayoutCreated(amount decimal.Decimal) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordPayoutCreated(amount.InexactFloat64())
}

func (uc *DefaultPayoutUsecase) recordSkipped(kind string) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordSkipped(kind)
}

func (uc *DefaultPayoutUsecase) recordEligible(count int, amount decimal.Decimal) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordEligible(count, amount.InexactFloat64())
}

// recordAnomaly - позиция заказа без цены, товара или KOL
func (uc *DefaultPayoutUsecase) recordAnomaly(kind string) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordAnomaly(kind)
}

func (uc *DefaultPayoutUsecase) recordStatusChange(status domain.PaymentStatus) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordStatusChange(string(status))
}

func (uc *DefaultPayoutUsecase) recordGenerationDuration(d time.Duration) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordGenerationDuration(d.Seconds())
}

func (uc *DefaultPayoutUsecase) recordError(operation string) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordError(operation)
}
