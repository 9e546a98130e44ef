package payout

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LavaJover/kol-payout-service/internal/domain"
	"github.com/LavaJover/kol-payout-service/internal/usecase/commission"
	payoutdto "github.com/LavaJover/kol-payout-service/internal/usecase/dto/payout"
	"github.com/shopspring/decimal"
)

// GetEligiblePayouts groups every unpaid, attributed, fulfilled order item
// by influencer. It never writes.
func (uc *DefaultPayoutUsecase) GetEligiblePayouts(ctx context.Context, filter domain.EligibilityFilter) (*payoutdto.EligibleOutput, error) {
	if len(filter.FulfilledStatuses) == 0 {
		filter.FulfilledStatuses = uc.opts.FulfilledStatuses
	}
	if filter.CreatedFrom != nil && filter.CreatedTo != nil && filter.CreatedTo.Before(*filter.CreatedFrom) {
		return nil, fmt.Errorf("%w: created_to is before created_from", domain.ErrInvalidInput)
	}

	items, err := uc.LedgerRepo.FindEligibleItems(ctx, filter)
	if err != nil {
		uc.recordError("eligible")
		return nil, fmt.Errorf("failed to load eligible order items: %w", err)
	}

	candidates, anomalies := uc.aggregate(items)

	out := &payoutdto.EligibleOutput{
		Candidates:   make([]payoutdto.EligibleCandidate, 0, len(candidates)),
		TotalAmount:  decimal.Zero,
		AnomalyCount: anomalies,
	}
	for _, c := range candidates {
		out.Candidates = append(out.Candidates, toEligibleCandidate(c))
		out.TotalAmount = out.TotalAmount.Add(c.TotalCommission)
	}
	out.TotalAmount = commission.Round2(out.TotalAmount)
	out.Count = len(out.Candidates)

	uc.recordEligible(out.Count, out.TotalAmount)
	return out, nil
}

// aggregate folds ledger items into candidates in first-seen influencer order.
// Items with broken joins are counted as anomalies and contribute nothing.
func (uc *DefaultPayoutUsecase) aggregate(items []domain.LedgerItem) ([]*domain.PayoutCandidate, int) {
	var (
		candidates []*domain.PayoutCandidate
		byID       = make(map[string]*domain.PayoutCandidate)
		seenOrders = make(map[string]map[string]struct{})
		anomalies  int
	)

	for _, item := range items {
		if kind := anomaly(item); kind != "" {
			anomalies++
			uc.recordAnomaly(kind)
			slog.Warn("order item skipped in eligibility scan",
				"order_item_id", item.OrderItemID,
				"order_id", item.OrderID,
				"reason", kind,
			)
			continue
		}

		b := uc.breakdown(item)
		if !b.TotalAmount.IsPositive() {
			continue
		}

		c, ok := byID[item.Influencer.ID]
		if !ok {
			c = &domain.PayoutCandidate{
				Influencer:        item.Influencer,
				ProductCommission: decimal.Zero,
				TierCommission:    decimal.Zero,
				TotalCommission:   decimal.Zero,
			}
			byID[item.Influencer.ID] = c
			seenOrders[item.Influencer.ID] = make(map[string]struct{})
			candidates = append(candidates, c)
		}

		c.ProductCommission = c.ProductCommission.Add(b.ProductAmount)
		c.TierCommission = c.TierCommission.Add(b.TierAmount)
		c.TotalCommission = c.TotalCommission.Add(b.TotalAmount)
		c.OrderItemIDs = append(c.OrderItemIDs, item.OrderItemID)
		if _, seen := seenOrders[item.Influencer.ID][item.OrderID]; !seen {
			seenOrders[item.Influencer.ID][item.OrderID] = struct{}{}
			c.OrderIDs = append(c.OrderIDs, item.OrderID)
		}
	}

	kept := candidates[:0]
	for _, c := range candidates {
		if c.TotalCommission.IsPositive() {
			kept = append(kept, c)
		}
	}
	return kept, anomalies
}

func toEligibleCandidate(c *domain.PayoutCandidate) payoutdto.EligibleCandidate {
	name := c.Influencer.DisplayName()
	if name == "" {
		name = c.Influencer.Username
	}
	return payoutdto.EligibleCandidate{
		InfluencerID:      c.Influencer.ID,
		Name:              name,
		Username:          c.Influencer.Username,
		Email:             c.Influencer.Email,
		TierName:          c.Influencer.TierName,
		ProductCommission: commission.Round2(c.ProductCommission),
		TierCommission:    commission.Round2(c.TierCommission),
		TotalCommission:   commission.Round2(c.TotalCommission),
		OrderCount:        c.OrderCount(),
		ItemCount:         c.ItemCount(),
		OrderItemIDs:      c.OrderItemIDs,
		Notes:             fmt.Sprintf("Commission for %d order(s), %d item(s)", c.OrderCount(), c.ItemCount()),
	}
}
