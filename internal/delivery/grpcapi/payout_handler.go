package grpcapi

import (
	"context"

	"github.com/LavaJover/kol-payout-service/internal/delivery/presenter"
	"github.com/LavaJover/kol-payout-service/internal/domain"
	payoutdto "github.com/LavaJover/kol-payout-service/internal/usecase/dto/payout"
	"github.com/LavaJover/kol-payout-service/internal/usecase/payout"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type PayoutHandler struct {
	uc payout.PayoutUsecase
}

func NewPayoutHandler(uc payout.PayoutUsecase) *PayoutHandler {
	return &PayoutHandler{
		uc: uc,
	}
}

func (h *PayoutHandler) respond(method string, view any) (*structpb.Struct, error) {
	resp, err := toStruct(view)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build %s response: %v", method, err)
	}
	return resp, nil
}

func (h *PayoutHandler) GetEligiblePayouts(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	filter, err := presenter.EligibilityFilter(getter(r))
	if err != nil {
		return nil, toStatus("GetEligiblePayouts", err)
	}
	out, err := h.uc.GetEligiblePayouts(ctx, filter)
	if err != nil {
		return nil, toStatus("GetEligiblePayouts", err)
	}
	return h.respond("GetEligiblePayouts", presenter.Eligible(out))
}

// GeneratePayouts returns the partial result as a status detail when the
// batch was aborted half way.
func (h *PayoutHandler) GeneratePayouts(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	var req presenter.GenerateRequest
	if err := decodeStruct(r, &req); err != nil {
		return nil, toStatus("GeneratePayouts", err)
	}

	var input *payoutdto.GeneratePayoutsInput
	if req.All && len(req.Payouts) == 0 {
		eligible, err := h.uc.GetEligiblePayouts(ctx, domain.EligibilityFilter{InfluencerID: req.InfluencerID})
		if err != nil {
			return nil, toStatus("GeneratePayouts", err)
		}
		input = eligible.ToGenerateInput()
	} else {
		input = req.ToInput()
	}

	result, err := h.uc.GeneratePayouts(ctx, input)
	if err != nil {
		if result == nil {
			return nil, toStatus("GeneratePayouts", err)
		}
		partial, buildErr := toStruct(presenter.Generate(result))
		if buildErr != nil {
			return nil, toStatus("GeneratePayouts", err)
		}
		st, detailErr := status.New(codeFor(err), err.Error()).WithDetails(partial)
		if detailErr != nil {
			return nil, toStatus("GeneratePayouts", err)
		}
		return nil, st.Err()
	}
	return h.respond("GeneratePayouts", presenter.Generate(result))
}

func (h *PayoutHandler) UpdatePayoutStatus(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	get := getter(r)
	updated, err := h.uc.UpdatePayoutStatus(ctx, &payoutdto.UpdatePayoutStatusInput{
		PayoutID: get("payout_id"),
		Status:   get("status"),
		Notes:    get("notes"),
	})
	if err != nil {
		return nil, toStatus("UpdatePayoutStatus", err)
	}
	return h.respond("UpdatePayoutStatus", presenter.Payout(*updated))
}

func (h *PayoutHandler) ListPayouts(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	filter, err := presenter.PayoutFilter(getter(r))
	if err != nil {
		return nil, toStatus("ListPayouts", err)
	}

	var page *domain.PayoutPage
	if filter.InfluencerID != "" {
		page, err = h.uc.ListInfluencerPayouts(ctx, filter.InfluencerID, filter)
	} else {
		page, err = h.uc.ListPayouts(ctx, filter)
	}
	if err != nil {
		return nil, toStatus("ListPayouts", err)
	}
	return h.respond("ListPayouts", presenter.PayoutPage(page))
}

func (h *PayoutHandler) GetPayoutDetails(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	details, err := h.uc.GetPayoutDetails(ctx, getter(r)("payout_id"))
	if err != nil {
		return nil, toStatus("GetPayoutDetails", err)
	}
	return h.respond("GetPayoutDetails", presenter.PayoutDetails(details))
}
