package payout

import (
	"fmt"
	"strings"

	"github.com/LavaJover/kol-payout-service/internal/domain"
	payoutdto "github.com/LavaJover/kol-payout-service/internal/usecase/dto/payout"
	"github.com/shopspring/decimal"
)

// validateInstructions checks the whole batch before anything is written.
func validateInstructions(input *payoutdto.GeneratePayoutsInput) ([]domain.PayoutInstruction, error) {
	if input == nil || len(input.Payouts) == 0 {
		return nil, fmt.Errorf("%w: no payouts to generate", domain.ErrInvalidInput)
	}

	influencers := make(map[string]int, len(input.Payouts))
	itemOwner := make(map[string]int)
	out := make([]domain.PayoutInstruction, 0, len(input.Payouts))

	for i, raw := range input.Payouts {
		influencerID := strings.TrimSpace(raw.InfluencerID)
		if influencerID == "" {
			return nil, fmt.Errorf("%w: payouts[%d]: influencer_id is required", domain.ErrInvalidInput, i)
		}
		if prev, dup := influencers[influencerID]; dup {
			return nil, fmt.Errorf("%w: payouts[%d]: influencer %s already listed at payouts[%d]", domain.ErrInvalidInput, i, influencerID, prev)
		}
		influencers[influencerID] = i

		ids := make([]string, 0, len(raw.OrderItemIDs))
		seen := make(map[string]struct{}, len(raw.OrderItemIDs))
		for _, id := range raw.OrderItemIDs {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			if owner, taken := itemOwner[id]; taken {
				return nil, fmt.Errorf("%w: payouts[%d]: order item %s already requested by payouts[%d]", domain.ErrInvalidInput, i, id, owner)
			}
			itemOwner[id] = i
			ids = append(ids, id)
		}
		if len(ids) == 0 {
			return nil, fmt.Errorf("%w: payouts[%d]: order_item_ids is required", domain.ErrInvalidInput, i)
		}

		total, err := parseAmount(i, "total_amount", raw.TotalAmount)
		if err != nil {
			return nil, err
		}
		product, err := parseAmount(i, "product_commission", raw.ProductCommission)
		if err != nil {
			return nil, err
		}
		tier, err := parseAmount(i, "tier_commission", raw.TierCommission)
		if err != nil {
			return nil, err
		}

		out = append(out, domain.PayoutInstruction{
			InfluencerID:      influencerID,
			TotalAmount:       total,
			ProductCommission: product,
			TierCommission:    tier,
			OrderItemIDs:      ids,
			Notes:             strings.TrimSpace(raw.Notes),
		})
	}
	return out, nil
}

func parseAmount(index int, field, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: payouts[%d]: %s %q is not a number", domain.ErrInvalidInput, index, field, raw)
	}
	if v.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: payouts[%d]: %s must not be negative", domain.ErrInvalidInput, index, field)
	}
	return v, nil
}
