package payout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/LavaJover/kol-payout-service/internal/domain"
	payoutdto "github.com/LavaJover/kol-payout-service/internal/usecase/dto/payout"
)

// UpdatePayoutStatus moves a payout to pending, completed or failed. Any
// transition between these states is allowed; empty notes clear the stored notes.
func (uc *DefaultPayoutUsecase) UpdatePayoutStatus(ctx context.Context, input *payoutdto.UpdatePayoutStatusInput) (*domain.PayoutView, error) {
	if input == nil || strings.TrimSpace(input.PayoutID) == "" {
		return nil, fmt.Errorf("%w: payout_id is required", domain.ErrInvalidInput)
	}
	status, err := domain.ParsePaymentStatus(input.Status)
	if err != nil {
		return nil, err
	}
	payoutID := strings.TrimSpace(input.PayoutID)

	current, err := uc.PayoutRepo.GetPayoutByID(ctx, payoutID)
	if err != nil {
		return nil, err
	}
	previous := current.Status

	notes := notesOrNil(strings.TrimSpace(input.Notes))
	now := uc.now()
	if err := uc.PayoutRepo.UpdatePayoutStatus(ctx, payoutID, status, notes, now); err != nil {
		uc.recordError("update_status")
		return nil, fmt.Errorf("failed to update payout status: %w", err)
	}

	updated := *current
	updated.Status = status
	updated.Notes = notes
	updated.ModifiedAt = now

	slog.Info("payout status updated",
		"payout_id", payoutID,
		"from", previous,
		"to", status,
	)
	uc.recordStatusChange(status)
	uc.publishStatusChanged(&updated, previous)
	uc.notifyStatusChanged(&updated, previous)

	return &updated, nil
}
