package payout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/LavaJover/kol-payout-service/internal/domain"
	"github.com/LavaJover/kol-payout-service/internal/usecase/commission"
	"github.com/shopspring/decimal"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	defaultStatsDays = 30
)

var sortableFields = map[string]struct{}{
	"payout_date":  {},
	"total_amount": {},
	"created_at":   {},
}

func normalizeFilter(filter domain.PayoutFilter) (domain.PayoutFilter, error) {
	filter.Status = strings.ToLower(strings.TrimSpace(filter.Status))
	if filter.Status == "all" {
		filter.Status = ""
	}
	if filter.Status != "" {
		if _, err := domain.ParsePaymentStatus(filter.Status); err != nil {
			return filter, err
		}
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return filter, fmt.Errorf("%w: date_to is before date_from", domain.ErrInvalidInput)
	}

	filter.SortBy = strings.ToLower(strings.TrimSpace(filter.SortBy))
	if filter.SortBy == "" {
		filter.SortBy = "payout_date"
		filter.SortDesc = true
	}
	if _, ok := sortableFields[filter.SortBy]; !ok {
		return filter, fmt.Errorf("%w: cannot sort by %q", domain.ErrInvalidInput, filter.SortBy)
	}

	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}
	return filter, nil
}

// ListPayouts returns one page of payouts and per-status totals over the
// same search and date window.
func (uc *DefaultPayoutUsecase) ListPayouts(ctx context.Context, filter domain.PayoutFilter) (*domain.PayoutPage, error) {
	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	payouts, total, err := uc.PayoutRepo.ListPayouts(ctx, filter)
	if err != nil {
		uc.recordError("list")
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}

	statsFilter := filter
	statsFilter.Status = ""
	stats, err := uc.PayoutRepo.PayoutStats(ctx, statsFilter)
	if err != nil {
		uc.recordError("list")
		return nil, fmt.Errorf("failed to load payout stats: %w", err)
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &domain.PayoutPage{
		Payouts:    payouts,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Stats:      *stats,
	}, nil
}

func (uc *DefaultPayoutUsecase) ListInfluencerPayouts(ctx context.Context, influencerID string, filter domain.PayoutFilter) (*domain.PayoutPage, error) {
	influencerID = strings.TrimSpace(influencerID)
	if influencerID == "" {
		return nil, fmt.Errorf("%w: influencer_id is required", domain.ErrInvalidInput)
	}
	if _, err := uc.LedgerRepo.GetInfluencerProfile(ctx, influencerID); err != nil {
		return nil, err
	}
	filter.InfluencerID = influencerID
	return uc.ListPayouts(ctx, filter)
}

// GetPayoutDetails returns the payout with the order items attached to it,
// grouped by order.
func (uc *DefaultPayoutUsecase) GetPayoutDetails(ctx context.Context, payoutID string) (*domain.PayoutDetails, error) {
	payoutID = strings.TrimSpace(payoutID)
	if payoutID == "" {
		return nil, fmt.Errorf("%w: payout_id is required", domain.ErrInvalidInput)
	}

	view, err := uc.PayoutRepo.GetPayoutByID(ctx, payoutID)
	if err != nil {
		return nil, err
	}

	items, err := uc.LedgerRepo.FindItemsByPayout(ctx, payoutID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payout items: %w", err)
	}

	details := &domain.PayoutDetails{PayoutView: *view}
	orderIndex := make(map[string]int)
	for _, item := range items {
		b := uc.breakdown(item)
		line := domain.PayoutItemLine{
			OrderItemID:   item.OrderItemID,
			ProductID:     item.ProductID,
			ProductName:   item.ProductName,
			Quantity:      item.Quantity,
			UnitPrice:     orZero(item.UnitPrice),
			ItemTotal:     b.ItemTotal,
			ProductRate:   b.ProductRate,
			TierRate:      b.TierRate,
			ProductAmount: commission.Round2(b.ProductAmount),
			TierAmount:    commission.Round2(b.TierAmount),
			TotalAmount:   commission.Round2(b.TotalAmount),
		}

		idx, ok := orderIndex[item.OrderID]
		if !ok {
			idx = len(details.Orders)
			orderIndex[item.OrderID] = idx
			details.Orders = append(details.Orders, domain.PayoutOrder{
				OrderID:    item.OrderID,
				CreatedAt:  item.OrderCreatedAt,
				Status:     item.OrderStatus,
				Commission: decimal.Zero,
			})
		}
		order := &details.Orders[idx]
		order.Items = append(order.Items, line)
		order.Commission = order.Commission.Add(line.TotalAmount)
	}
	return details, nil
}

// GetInfluencerSalesStats reports fulfilled affiliate sales of one influencer
// in [from, to]. Zero bounds default to the last 30 days.
func (uc *DefaultPayoutUsecase) GetInfluencerSalesStats(ctx context.Context, influencerID string, from, to time.Time) (*domain.SalesStats, error) {
	influencerID = strings.TrimSpace(influencerID)
	if influencerID == "" {
		return nil, fmt.Errorf("%w: influencer_id is required", domain.ErrInvalidInput)
	}
	if to.IsZero() {
		to = uc.now()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -defaultStatsDays)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: end date is before start date", domain.ErrInvalidInput)
	}

	if _, err := uc.LedgerRepo.GetInfluencerProfile(ctx, influencerID); err != nil {
		return nil, err
	}

	items, err := uc.LedgerRepo.FindInfluencerItems(ctx, influencerID, uc.opts.FulfilledStatuses, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load influencer sales: %w", err)
	}

	stats := &domain.SalesStats{
		InfluencerID:     influencerID,
		From:             from,
		To:               to,
		SalesAmount:      decimal.Zero,
		CommissionEarned: decimal.Zero,
	}
	orders := make(map[string]struct{})
	for _, item := range items {
		b := uc.breakdown(item)
		rate := commission.EffectiveRate(b.ProductRate, b.TierRate, uc.opts.StatsCombination)
		stats.SalesAmount = stats.SalesAmount.Add(b.ItemTotal)
		stats.CommissionEarned = stats.CommissionEarned.Add(b.ItemTotal.Mul(rate).Div(decimal.NewFromInt(100)))
		orders[item.OrderID] = struct{}{}
	}
	stats.OrderCount = int64(len(orders))
	stats.SalesAmount = commission.Round2(stats.SalesAmount)
	stats.CommissionEarned = commission.Round2(stats.CommissionEarned)

	if uc.Clicks != nil {
		clicks, err := uc.Clicks.CountClicks(ctx, influencerID, from, to)
		if err != nil {
			slog.Warn("failed to read click counters", "influencer_id", influencerID, "error", err)
		} else {
			stats.Clicks = clicks
		}
	}
	return stats, nil
}

// RecordAffiliateClick counts one visit through an affiliate link.
func (uc *DefaultPayoutUsecase) RecordAffiliateClick(ctx context.Context, linkID string) (int64, error) {
	linkID = strings.TrimSpace(linkID)
	if linkID == "" {
		return 0, fmt.Errorf("%w: link_id is required", domain.ErrInvalidInput)
	}
	if uc.Clicks == nil {
		return 0, fmt.Errorf("%w: click tracking is disabled", domain.ErrStorageUnavailable)
	}

	link, err := uc.LedgerRepo.GetAffiliateLink(ctx, linkID)
	if err != nil {
		return 0, err
	}
	n, err := uc.Clicks.IncrClick(ctx, link.InfluencerID, uc.now())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return n, nil
}
