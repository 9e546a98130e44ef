package payout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/kol-payout-service/internal/domain"
	"github.com/LavaJover/kol-payout-service/internal/usecase/commission"
	payoutdto "github.com/LavaJover/kol-payout-service/internal/usecase/dto/payout"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var driftTolerance = decimal.RequireFromString("0.01")

// GeneratePayouts creates one pending payout per instruction. Every instruction
// is its own transaction: a failing candidate is reported in Skipped and does
// not affect the others. When storage becomes unavailable the batch stops,
// the rest is reported as not processed and the error is returned together
// with the partial result.
func (uc *DefaultPayoutUsecase) GeneratePayouts(ctx context.Context, input *payoutdto.GeneratePayoutsInput) (*domain.GenerateResult, error) {
	instructions, err := validateInstructions(input)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	result := &domain.GenerateResult{
		RunID:       uuid.New().String(),
		TotalAmount: decimal.Zero,
	}

	var abortErr error
	for _, ins := range instructions {
		if abortErr == nil {
			abortErr = ctx.Err()
		}
		if abortErr != nil {
			uc.skip(result, ins.InfluencerID, "not processed: "+abortErr.Error(), "not_processed")
			continue
		}

		created, err := uc.generateOne(ctx, ins)
		if err != nil {
			uc.skip(result, ins.InfluencerID, err.Error(), skipKind(err))
			slog.Warn("payout candidate skipped",
				"run_id", result.RunID,
				"influencer_id", ins.InfluencerID,
				"error", err,
			)
			if isFatal(err) {
				abortErr = err
			}
			continue
		}

		result.Payouts = append(result.Payouts, *created)
		result.PayoutsCreated++
		result.TotalAmount = result.TotalAmount.Add(created.Amount)
		uc.recordPayoutCreated(created.Amount)
		uc.publishCreated(created)
	}

	uc.recordGenerationDuration(time.Since(started))
	uc.logRun(ctx, result, len(instructions), started, abortErr)

	slog.Info("payout generation finished",
		"run_id", result.RunID,
		"created", result.PayoutsCreated,
		"skipped", len(result.Skipped),
		"total", result.TotalAmount.StringFixed(2),
	)

	if abortErr != nil {
		uc.recordError("generate")
		return result, fmt.Errorf("payout generation aborted: %w", abortErr)
	}
	return result, nil
}

func (uc *DefaultPayoutUsecase) generateOne(ctx context.Context, ins domain.PayoutInstruction) (*domain.CreatedPayout, error) {
	var created *domain.CreatedPayout

	err := uc.PayoutRepo.WithinTx(ctx, func(tx domain.PayoutTx) error {
		items, err := tx.LockUnpaidItems(ctx, ins.InfluencerID, ins.OrderItemIDs, uc.opts.FulfilledStatuses)
		if err != nil {
			return fmt.Errorf("failed to lock order items: %w", err)
		}
		if len(items) == 0 {
			return domain.ErrAllItemsPaid
		}
		// items with broken references stay unpaid, as in the eligibility scan
		items = payableItems(items)
		if len(items) == 0 {
			return domain.ErrNothingToPay
		}

		product, tier, total := roundedAmounts(uc.amountsFor(ins, items))
		if !total.IsPositive() {
			return domain.ErrNothingToPay
		}

		itemIDs := make([]string, 0, len(items))
		orderIDs := make(map[string]struct{})
		for _, item := range items {
			itemIDs = append(itemIDs, item.OrderItemID)
			orderIDs[item.OrderID] = struct{}{}
		}

		now := uc.now()
		payout := &domain.Payout{
			ID:                newPayoutID(),
			Reference:         uc.newReference(),
			InfluencerID:      ins.InfluencerID,
			ProductCommission: product,
			TierCommission:    tier,
			TotalAmount:       total,
			ItemCount:         len(itemIDs),
			OrderCount:        len(orderIDs),
			Status:            domain.PaymentStatusPending,
			Notes:             notesOrNil(ins.Notes),
			PayoutDate:        now,
			CreatedAt:         now,
			ModifiedAt:        now,
		}
		if err := tx.CreatePayout(ctx, payout); err != nil {
			return fmt.Errorf("failed to create payout: %w", err)
		}
		if err := tx.AssignPayout(ctx, payout.ID, itemIDs, now); err != nil {
			return fmt.Errorf("failed to assign order items: %w", err)
		}

		created = &domain.CreatedPayout{
			PayoutID:     payout.ID,
			Reference:    payout.Reference,
			InfluencerID: payout.InfluencerID,
			Amount:       payout.TotalAmount,
			ItemCount:    payout.ItemCount,
			OrderCount:   payout.OrderCount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// amountsFor returns product, tier and total commission for the still-unpaid items.
func (uc *DefaultPayoutUsecase) amountsFor(ins domain.PayoutInstruction, items []domain.LedgerItem) (decimal.Decimal, decimal.Decimal, decimal.Decimal) {
	if uc.opts.ProrationMode == ProrationRatio {
		ratio := decimal.NewFromInt(int64(len(items))).Div(decimal.NewFromInt(int64(len(ins.OrderItemIDs))))
		return ins.ProductCommission.Mul(ratio), ins.TierCommission.Mul(ratio), ins.TotalAmount.Mul(ratio)
	}

	product, tier, total := decimal.Zero, decimal.Zero, decimal.Zero
	for _, item := range items {
		b := uc.breakdown(item)
		product = product.Add(b.ProductAmount)
		tier = tier.Add(b.TierAmount)
		total = total.Add(b.TotalAmount)
	}

	if len(items) == len(ins.OrderItemIDs) && ins.TotalAmount.IsPositive() &&
		total.Sub(ins.TotalAmount).Abs().GreaterThan(driftTolerance) {
		slog.Warn("requested payout amount differs from recomputed commission",
			"influencer_id", ins.InfluencerID,
			"requested", ins.TotalAmount.StringFixed(2),
			"recomputed", total.StringFixed(2),
		)
	}
	return product, tier, total
}

func payableItems(items []domain.LedgerItem) []domain.LedgerItem {
	out := items[:0]
	for _, item := range items {
		if kind := anomaly(item); kind != "" {
			slog.Warn("order item left unpaid",
				"order_item_id", item.OrderItemID,
				"reason", kind,
			)
			continue
		}
		out = append(out, item)
	}
	return out
}

// roundedAmounts rounds the payout total to cents. When the parts add up to
// the total, the tier part absorbs the rounding so the stored parts always sum
// to the stored total; otherwise (a ratio-mode hint with only a total) each
// amount is rounded on its own.
func roundedAmounts(product, tier, total decimal.Decimal) (decimal.Decimal, decimal.Decimal, decimal.Decimal) {
	consistent := product.Add(tier).Equal(total)
	total = commission.Round2(total)
	product = commission.Round2(product)
	if !consistent {
		return product, commission.Round2(tier), total
	}
	if product.GreaterThan(total) {
		product = total
	}
	return product, total.Sub(product), total
}

func (uc *DefaultPayoutUsecase) skip(result *domain.GenerateResult, influencerID, reason, kind string) {
	result.Skipped = append(result.Skipped, domain.SkippedCandidate{InfluencerID: influencerID, Reason: reason})
	uc.recordSkipped(kind)
}

func (uc *DefaultPayoutUsecase) logRun(ctx context.Context, result *domain.GenerateResult, requested int, started time.Time, abortErr error) {
	if uc.RunLogger == nil {
		return
	}
	run := domain.PayoutRun{
		RunID:       result.RunID,
		Requested:   requested,
		Created:     result.PayoutsCreated,
		Skipped:     len(result.Skipped),
		TotalAmount: result.TotalAmount.StringFixed(2),
		Duration:    time.Since(started),
		StartedAt:   started,
	}
	if abortErr != nil {
		run.Error = abortErr.Error()
	}
	// the run log must be written even when the batch context is cancelled
	if err := uc.RunLogger.LogRun(context.WithoutCancel(ctx), run); err != nil {
		slog.Error("failed to write payout run log", "run_id", result.RunID, "error", err)
	}
}

func isFatal(err error) bool {
	return errors.Is(err, domain.ErrStorageUnavailable) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func skipKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrAllItemsPaid):
		return "already_paid"
	case errors.Is(err, domain.ErrNothingToPay):
		return "nothing_due"
	case errors.Is(err, domain.ErrConcurrentPayment):
		return "concurrent"
	case isFatal(err):
		return "storage"
	}
	return "error"
}

func notesOrNil(notes string) *string {
	if notes == "" {
		return nil
	}
	return &notes
}
