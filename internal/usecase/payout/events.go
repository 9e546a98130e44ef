package payout

import (
	"context"
	"log/slog"
	"time"

	"github.com/LavaJover/kol-payout-service/internal/domain"
	publisher "github.com/LavaJover/kol-payout-service/internal/infrastructure/kafka"
	"github.com/LavaJover/kol-payout-service/internal/infrastructure/notifier"
)

const callbackTimeout = 15 * time.Second

func (uc *DefaultPayoutUsecase) publishCreated(p *domain.CreatedPayout) {
	uc.publish(publisher.PayoutEvent{
		Type:         publisher.EventPayoutCreated,
		PayoutID:     p.PayoutID,
		Reference:    p.Reference,
		InfluencerID: p.InfluencerID,
		Status:       string(domain.PaymentStatusPending),
		Amount:       p.Amount.StringFixed(2),
		ItemCount:    p.ItemCount,
		OrderCount:   p.OrderCount,
		OccurredAt:   uc.now(),
	})
}

func (uc *DefaultPayoutUsecase) publishStatusChanged(p *domain.PayoutView, previous domain.PaymentStatus) {
	ev := publisher.PayoutEvent{
		Type:           publisher.EventPayoutStatusChanged,
		PayoutID:       p.ID,
		Reference:      p.Reference,
		InfluencerID:   p.InfluencerID,
		Status:         string(p.Status),
		PreviousStatus: string(previous),
		Amount:         p.TotalAmount.StringFixed(2),
		OccurredAt:     p.ModifiedAt,
	}
	if p.Notes != nil {
		ev.Notes = *p.Notes
	}
	uc.publish(ev)
}

// publish sends the event in the background; delivery failures are logged only.
func (uc *DefaultPayoutUsecase) publish(ev publisher.PayoutEvent) {
	if uc.Publisher == nil || uc.opts.PayoutTopic == "" {
		return
	}
	msg, err := publisher.NewPayoutMessage(ev)
	if err != nil {
		slog.Error("failed to encode payout event", "payout_id", ev.PayoutID, "error", err)
		return
	}

	uc.events.Add(1)
	go func() {
		defer uc.events.Done()
		if err := uc.Publisher.Publish(uc.opts.PayoutTopic, msg); err != nil {
			slog.Error("failed to publish payout event",
				"type", ev.Type,
				"payout_id", ev.PayoutID,
				"error", err,
			)
		}
	}()
}

func (uc *DefaultPayoutUsecase) notifyStatusChanged(p *domain.PayoutView, previous domain.PaymentStatus) {
	if uc.Notifier == nil {
		return
	}
	payload := notifier.CallbackPayload{
		PayoutID:       p.ID,
		Reference:      p.Reference,
		InfluencerID:   p.InfluencerID,
		Status:         string(p.Status),
		PreviousStatus: string(previous),
		Amount:         p.TotalAmount.StringFixed(2),
		ChangedAt:      p.ModifiedAt,
	}
	if p.Notes != nil {
		payload.Notes = *p.Notes
	}

	uc.events.Add(1)
	go func() {
		defer uc.events.Done()
		ctx, cancel := context.WithTimeout(context.Background(), callbackTimeout)
		defer cancel()
		if err := uc.Notifier.SendCallback(ctx, payload); err != nil {
			slog.Warn("payout status callback failed", "payout_id", p.ID, "error", err)
		}
	}()
}
