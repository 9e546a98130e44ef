package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/LavaJover/kol-payout-service/internal/delivery/presenter"
	"github.com/LavaJover/kol-payout-service/internal/domain"
	payoutdto "github.com/LavaJover/kol-payout-service/internal/usecase/dto/payout"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json body: "+err.Error())
		return false
	}
	return true
}

func (h *Handler) getEligiblePayouts(w http.ResponseWriter, r *http.Request) {
	filter, err := presenter.EligibilityFilter(r.URL.Query().Get)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out, err := h.uc.GetEligiblePayouts(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, presenter.Eligible(out))
}

func (h *Handler) generatePayouts(w http.ResponseWriter, r *http.Request) {
	var req presenter.GenerateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var input *payoutdto.GeneratePayoutsInput
	if req.All && len(req.Payouts) == 0 {
		eligible, err := h.uc.GetEligiblePayouts(r.Context(), domain.EligibilityFilter{InfluencerID: req.InfluencerID})
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		input = eligible.ToGenerateInput()
	} else {
		input = req.ToInput()
	}

	result, err := h.uc.GeneratePayouts(r.Context(), input)
	if err != nil {
		if result == nil {
			writeDomainError(w, r, err)
			return
		}
		statusCode, code, _ := mapDomainError(err)
		writeJSON(w, statusCode, apiError{
			Status:    "error",
			Code:      code,
			Message:   err.Error(),
			RequestID: requestIDFromContext(r.Context()),
			Data:      presenter.Generate(result),
		})
		return
	}
	writeSuccess(w, http.StatusCreated, presenter.Generate(result))
}

func (h *Handler) updatePayoutStatus(w http.ResponseWriter, r *http.Request) {
	var req presenter.StatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	updated, err := h.uc.UpdatePayoutStatus(r.Context(), &payoutdto.UpdatePayoutStatusInput{
		PayoutID: chi.URLParam(r, "payout_id"),
		Status:   req.Status,
		Notes:    req.Notes,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, presenter.Payout(*updated))
}

func (h *Handler) listPayouts(w http.ResponseWriter, r *http.Request) {
	filter, err := presenter.PayoutFilter(r.URL.Query().Get)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	page, err := h.uc.ListPayouts(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, presenter.PayoutPage(page))
}

func (h *Handler) getPayoutDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.uc.GetPayoutDetails(r.Context(), chi.URLParam(r, "payout_id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, presenter.PayoutDetails(details))
}

func (h *Handler) listInfluencerPayouts(w http.ResponseWriter, r *http.Request) {
	filter, err := presenter.PayoutFilter(r.URL.Query().Get)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	page, err := h.uc.ListInfluencerPayouts(r.Context(), chi.URLParam(r, "influencer_id"), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, presenter.PayoutPage(page))
}

func (h *Handler) getSalesStats(w http.ResponseWriter, r *http.Request) {
	from, to, err := presenter.StatsWindow(r.URL.Query().Get)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	stats, err := h.uc.GetInfluencerSalesStats(r.Context(), chi.URLParam(r, "influencer_id"), from, to)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, presenter.SalesStats(stats))
}

func (h *Handler) recordClick(w http.ResponseWriter, r *http.Request) {
	linkID := chi.URLParam(r, "link_id")
	clicks, err := h.uc.RecordAffiliateClick(r.Context(), linkID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"link_id": linkID, "clicks_today": clicks})
}
