package presenter

import (
	"encoding/json"
	"strings"

	payoutdto "github.com/LavaJover/kol-payout-service/internal/usecase/dto/payout"
)

// Amount accepts a decimal either as a JSON string or a JSON number.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*a = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(strings.TrimSpace(s))
		return nil
	}
	*a = Amount(raw)
	return nil
}

type InstructionRequest struct {
	InfluencerID      string   `json:"influencer_id"`
	TotalAmount       Amount   `json:"total_amount"`
	ProductCommission Amount   `json:"product_commission"`
	TierCommission    Amount   `json:"tier_commission"`
	OrderItemIDs      []string `json:"order_item_ids"`
	OrderCount        int      `json:"order_count"`
	Notes             string   `json:"notes"`
}

// GenerateRequest either lists explicit instructions or asks for every
// currently eligible candidate (All), optionally of one influencer.
type GenerateRequest struct {
	All          bool                 `json:"all"`
	InfluencerID string               `json:"influencer_id"`
	Payouts      []InstructionRequest `json:"payouts"`
}

func (r *GenerateRequest) ToInput() *payoutdto.GeneratePayoutsInput {
	in := &payoutdto.GeneratePayoutsInput{Payouts: make([]payoutdto.PayoutInstructionInput, 0, len(r.Payouts))}
	for _, p := range r.Payouts {
		in.Payouts = append(in.Payouts, payoutdto.PayoutInstructionInput{
			InfluencerID:      p.InfluencerID,
			TotalAmount:       string(p.TotalAmount),
			ProductCommission: string(p.ProductCommission),
			TierCommission:    string(p.TierCommission),
			OrderItemIDs:      p.OrderItemIDs,
			OrderCount:        p.OrderCount,
			Notes:             p.Notes,
		})
	}
	return in
}

type StatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}
