package payoutdto

// GeneratePayoutsInput - пакет инструкций на создание выплат
type GeneratePayoutsInput struct {
	Payouts []PayoutInstructionInput `json:"payouts"`
}

// PayoutInstructionInput carries amounts as decimal strings taken from an
// eligibility listing; empty amounts count as zero.
type PayoutInstructionInput struct {
	InfluencerID      string   `json:"influencer_id"`
	TotalAmount       string   `json:"total_amount"`
	ProductCommission string   `json:"product_commission"`
	TierCommission    string   `json:"tier_commission"`
	OrderItemIDs      []string `json:"order_item_ids"`
	OrderCount        int      `json:"order_count"`
	Notes             string   `json:"notes"`
}

type UpdatePayoutStatusInput struct {
	PayoutID string `json:"payout_id"`
	Status   string `json:"status"`
	Notes    string `json:"notes"`
}
