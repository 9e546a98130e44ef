package publisher

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/LavaJover/kol-payout-service/internal/domain"
)

func TestNewPayoutMessage_KeyedByInfluencer(t *testing.T) {
	ev := PayoutEvent{
		Type:         EventPayoutCreated,
		PayoutID:     "p-1",
		InfluencerID: "kol-7",
		Status:       "pending",
		Amount:       "15.00",
		OccurredAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	msg, err := NewPayoutMessage(ev)
	if err != nil {
		t.Fatalf("NewPayoutMessage: %v", err)
	}
	if string(msg.Key) != "kol-7" {
		t.Errorf("key = %q", msg.Key)
	}

	var decoded map[string]any
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("payload is not json: %v", err)
	}
	if decoded["type"] != EventPayoutCreated || decoded["amount"] != "15.00" {
		t.Errorf("unexpected payload: %v", decoded)
	}
	if _, ok := decoded["previous_status"]; ok {
		t.Error("empty previous_status must be omitted")
	}
}

func TestDecodeSettlement(t *testing.T) {
	ev, err := DecodeSettlement(domain.Message{Value: []byte(`{"payout_id":"p-1","status":"completed","notes":"paid"}`)})
	if err != nil {
		t.Fatalf("DecodeSettlement: %v", err)
	}
	if ev.PayoutID != "p-1" || ev.Status != "completed" || ev.Notes != "paid" {
		t.Fatalf("unexpected event: %+v", ev)
	}

	if _, err := DecodeSettlement(domain.Message{Value: []byte(`{"status":"completed"}`)}); err == nil {
		t.Error("expected error for missing payout_id")
	}
	if _, err := DecodeSettlement(domain.Message{Value: []byte(`not json`)}); err == nil {
		t.Error("expected error for malformed payload")
	}
}
