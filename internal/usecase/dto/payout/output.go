package payoutdto

import (
	"github.com/shopspring/decimal"
)

type EligibleCandidate struct {
	InfluencerID      string          `json:"influencer_id"`
	Name              string          `json:"name"`
	Username          string          `json:"username"`
	Email             string          `json:"email"`
	TierName          string          `json:"tier_name"`
	ProductCommission decimal.Decimal `json:"product_commission"`
	TierCommission    decimal.Decimal `json:"tier_commission"`
	TotalCommission   decimal.Decimal `json:"total_commission"`
	OrderCount        int             `json:"order_count"`
	ItemCount         int             `json:"item_count"`
	OrderItemIDs      []string        `json:"order_item_ids"`
	Notes             string          `json:"notes"`
}

type EligibleOutput struct {
	Candidates   []EligibleCandidate `json:"candidates"`
	TotalAmount  decimal.Decimal     `json:"total_amount"`
	Count        int                 `json:"count"`
	AnomalyCount int                 `json:"anomaly_count"`
}

// ToGenerateInput turns a listing into a generate request covering every candidate.
func (o *EligibleOutput) ToGenerateInput() *GeneratePayoutsInput {
	in := &GeneratePayoutsInput{Payouts: make([]PayoutInstructionInput, 0, len(o.Candidates))}
	for _, c := range o.Candidates {
		in.Payouts = append(in.Payouts, PayoutInstructionInput{
			InfluencerID:      c.InfluencerID,
			TotalAmount:       c.TotalCommission.StringFixed(2),
			ProductCommission: c.ProductCommission.StringFixed(2),
			TierCommission:    c.TierCommission.StringFixed(2),
			OrderItemIDs:      append([]string(nil), c.OrderItemIDs...),
			OrderCount:        c.OrderCount,
			Notes:             c.Notes,
		})
	}
	return in
}
