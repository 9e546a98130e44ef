package background

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/LavaJover/kol-payout-service/internal/domain"
	publisher "github.com/LavaJover/kol-payout-service/internal/infrastructure/kafka"
	payoutdto "github.com/LavaJover/kol-payout-service/internal/usecase/dto/payout"
	"github.com/LavaJover/kol-payout-service/internal/usecase/payout"
)

type BackgroundTasks struct {
	PayoutUsecase payout.PayoutUsecase
	Subscriber    domain.SubscriberPort

	StatusTopic      string
	GroupID          string
	SnapshotInterval time.Duration

	wg sync.WaitGroup
}

func NewBackgroundTasks(uc payout.PayoutUsecase, sub domain.SubscriberPort, statusTopic, groupID string) *BackgroundTasks {
	return &BackgroundTasks{
		PayoutUsecase:    uc,
		Subscriber:       sub,
		StatusTopic:      statusTopic,
		GroupID:          groupID,
		SnapshotInterval: 5 * time.Minute,
	}
}

// StartAll runs the tasks until ctx is done; Wait blocks until they return.
func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	bt.wg.Add(1)
	go func() {
		defer bt.wg.Done()
		bt.startEligibilitySnapshot(ctx)
	}()
	if bt.Subscriber != nil && bt.StatusTopic != "" {
		bt.wg.Add(1)
		go func() {
			defer bt.wg.Done()
			if err := bt.ConsumeSettlements(ctx); err != nil {
				slog.Error("settlement consumer stopped", "error", err)
			}
		}()
	}
}

func (bt *BackgroundTasks) Wait() {
	bt.wg.Wait()
}

// startEligibilitySnapshot refreshes the eligible candidates gauges. The scan
// is read-only.
func (bt *BackgroundTasks) startEligibilitySnapshot(ctx context.Context) {
	ticker := time.NewTicker(bt.SnapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			out, err := bt.PayoutUsecase.GetEligiblePayouts(ctx, domain.EligibilityFilter{})
			if err != nil {
				slog.Warn("eligibility snapshot failed", "error", err)
				continue
			}
			slog.Debug("eligibility snapshot", "candidates", out.Count, "total", out.TotalAmount.StringFixed(2))
		}
	}
}

// ConsumeSettlements applies settlement results from the payment side, one
// status update per message, until the subscription ends.
func (bt *BackgroundTasks) ConsumeSettlements(ctx context.Context) error {
	msgs, err := bt.Subscriber.Subscribe(ctx, bt.StatusTopic, bt.GroupID)
	if err != nil {
		return err
	}
	for msg := range msgs {
		bt.applySettlement(ctx, msg)
	}
	return nil
}

func (bt *BackgroundTasks) applySettlement(ctx context.Context, msg domain.Message) {
	ev, err := publisher.DecodeSettlement(msg)
	if err != nil {
		slog.Warn("dropping malformed settlement event", "error", err)
		return
	}
	if _, err := bt.PayoutUsecase.UpdatePayoutStatus(ctx, &payoutdto.UpdatePayoutStatusInput{
		PayoutID: ev.PayoutID,
		Status:   ev.Status,
		Notes:    ev.Notes,
	}); err != nil {
		slog.Error("failed to apply settlement", "payout_id", ev.PayoutID, "status", ev.Status, "error", err)
		return
	}
	slog.Info("settlement applied", "payout_id", ev.PayoutID, "status", ev.Status)
}
