package publisher

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/LavaJover/kol-payout-service/internal/domain"
)

const (
	EventPayoutCreated       = "payout.created"
	EventPayoutStatusChanged = "payout.status_changed"
)

type PayoutEvent struct {
	Type           string    `json:"type"`
	PayoutID       string    `json:"payout_id"`
	Reference      string    `json:"reference"`
	InfluencerID   string    `json:"influencer_id"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	Amount         string    `json:"amount"`
	ItemCount      int       `json:"item_count,omitempty"`
	OrderCount     int       `json:"order_count,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// NewPayoutMessage encodes the event keyed by influencer so that one KOL's
// events land on one partition in order.
func NewPayoutMessage(event PayoutEvent) (domain.Message, error) {
	v, err := json.Marshal(event)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{Key: []byte(event.InfluencerID), Value: v}, nil
}

// SettlementEvent - результат выплаты от платежного контура
type SettlementEvent struct {
	PayoutID string `json:"payout_id"`
	Status   string `json:"status"`
	Notes    string `json:"notes"`
}

func DecodeSettlement(msg domain.Message) (SettlementEvent, error) {
	var ev SettlementEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return SettlementEvent{}, fmt.Errorf("decode settlement event: %w", err)
	}
	if strings.TrimSpace(ev.PayoutID) == "" {
		return SettlementEvent{}, fmt.Errorf("decode settlement event: empty payout_id")
	}
	return ev, nil
}
