package grpcapi

import (
	"context"
	"errors"
	"log/slog"

	"github.com/LavaJover/kol-payout-service/internal/domain"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func codeFor(err error) codes.Code {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return codes.InvalidArgument
	case errors.Is(err, domain.ErrPayoutNotFound),
		errors.Is(err, domain.ErrInfluencerNotFound),
		errors.Is(err, domain.ErrAffiliateLinkNotFound):
		return codes.NotFound
	case errors.Is(err, domain.ErrConcurrentPayment):
		return codes.Aborted
	case errors.Is(err, domain.ErrAllItemsPaid), errors.Is(err, domain.ErrNothingToPay):
		return codes.FailedPrecondition
	case errors.Is(err, domain.ErrStorageUnavailable):
		return codes.Unavailable
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	default:
		return codes.Internal
	}
}

// toStatus hides internal error text from callers and logs it instead.
func toStatus(method string, err error) error {
	code := codeFor(err)
	if code == codes.Internal {
		slog.Error("grpc request failed", "method", method, "error", err)
		return status.Error(code, "internal error")
	}
	return status.Error(code, err.Error())
}
