package notifier

import "time"

type CallbackPayload struct {
	PayoutID       string    `json:"payout_id"`
	Reference      string    `json:"reference"`
	InfluencerID   string    `json:"influencer_id"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status"`
	Amount         string    `json:"amount"`
	Notes          string    `json:"notes,omitempty"`
	ChangedAt      time.Time `json:"changed_at"`
}
