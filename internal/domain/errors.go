package domain

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidPaymentStatus  = errors.New("invalid payment status")
	ErrPayoutNotFound        = errors.New("payout not found")
	ErrInfluencerNotFound    = errors.New("influencer not found")
	ErrAffiliateLinkNotFound = errors.New("affiliate link not found")
	ErrAllItemsPaid          = errors.New("all order items have already been paid")
	ErrNothingToPay          = errors.New("no commission due for remaining order items")
	ErrConcurrentPayment     = errors.New("order items were paid by a concurrent payout")
	ErrStorageUnavailable    = errors.New("storage unavailable")
)
