package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/LavaJover/kol-payout-service/internal/domain"
)

type apiSuccess struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

type apiError struct {
	Status    string `json:"status"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Data      any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

func writeSuccess(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, apiSuccess{Status: "success", Data: data})
}

func writeError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	writeJSON(w, statusCode, apiError{
		Status:    "error",
		Code:      code,
		Message:   message,
		RequestID: requestIDFromContext(r.Context()),
	})
}

func mapDomainError(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "VALIDATION_ERROR", err.Error()
	case errors.Is(err, domain.ErrPayoutNotFound),
		errors.Is(err, domain.ErrInfluencerNotFound),
		errors.Is(err, domain.ErrAffiliateLinkNotFound):
		return http.StatusNotFound, "NOT_FOUND", err.Error()
	case errors.Is(err, domain.ErrConcurrentPayment):
		return http.StatusConflict, "CONFLICT", err.Error()
	case errors.Is(err, domain.ErrAllItemsPaid), errors.Is(err, domain.ErrNothingToPay):
		return http.StatusUnprocessableEntity, "NOTHING_TO_PAY", err.Error()
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "service unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "TIMEOUT", "request timed out"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
	}
}

func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode, code, msg := mapDomainError(err)
	if statusCode == http.StatusInternalServerError {
		slog.Error("http request failed", "path", r.URL.Path, "request_id", requestIDFromContext(r.Context()), "error", err)
	}
	writeError(w, r, statusCode, code, msg)
}
