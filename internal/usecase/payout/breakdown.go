package payout

import (
	"github.com/LavaJover/kol-payout-service/internal/domain"
	"github.com/LavaJover/kol-payout-service/internal/usecase/commission"
	"github.com/shopspring/decimal"
)

func (uc *DefaultPayoutUsecase) tierRate(item domain.LedgerItem) decimal.Decimal {
	if uc.opts.TierRateSource == TierRateOrderSnapshot && item.TierRateSnapshot != nil {
		return *item.TierRateSnapshot
	}
	return commission.RateOrZero(item.Influencer.TierRate)
}

// breakdown computes the commission of one ledger item; missing price or rates count as zero.
func (uc *DefaultPayoutUsecase) breakdown(item domain.LedgerItem) commission.Breakdown {
	return commission.Calculate(commission.Input{
		Quantity:    item.Quantity,
		UnitPrice:   orZero(item.UnitPrice),
		ProductRate: commission.RateOrZero(item.ProductRate),
		TierRate:    uc.tierRate(item),
	})
}

// anomaly reports which joined row is missing for an item, if any.
func anomaly(item domain.LedgerItem) string {
	switch {
	case item.UnitPrice == nil:
		return "missing_price"
	case item.LinkID == "" || item.ProductID == "":
		return "missing_product"
	case item.Influencer.ID == "":
		return "missing_influencer"
	}
	return ""
}

func orZero(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return *v
}
