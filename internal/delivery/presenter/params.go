package presenter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/LavaJover/kol-payout-service/internal/domain"
)

// Getter reads one named request parameter; missing parameters read as "".
type Getter func(key string) string

const dateOnly = "2006-01-02"

// ParseTime accepts RFC3339 timestamps or plain dates. A plain date used as an
// upper bound covers the whole day.
func ParseTime(raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateOnly, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is neither RFC3339 nor YYYY-MM-DD", domain.ErrInvalidInput, raw)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func parseInt(raw, name string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, name)
	}
	return n, nil
}

func EligibilityFilter(get Getter) (domain.EligibilityFilter, error) {
	var (
		filter = domain.EligibilityFilter{InfluencerID: strings.TrimSpace(get("influencer_id"))}
		err    error
	)
	if filter.CreatedFrom, err = ParseTime(get("created_from"), false); err != nil {
		return filter, err
	}
	if filter.CreatedTo, err = ParseTime(get("created_to"), true); err != nil {
		return filter, err
	}
	return filter, nil
}

// PayoutFilter reads status, search, date_from, date_to, sort_by, sort_order,
// page and limit. Validation of values is left to the usecase.
func PayoutFilter(get Getter) (domain.PayoutFilter, error) {
	filter := domain.PayoutFilter{
		Status:       get("status"),
		InfluencerID: strings.TrimSpace(get("influencer_id")),
		Search:       get("search"),
		SortBy:       get("sort_by"),
	}

	switch strings.ToLower(strings.TrimSpace(get("sort_order"))) {
	case "", "desc":
		filter.SortDesc = true
	case "asc":
	default:
		return filter, fmt.Errorf("%w: sort_order must be asc or desc", domain.ErrInvalidInput)
	}

	var err error
	if filter.From, err = ParseTime(get("date_from"), false); err != nil {
		return filter, err
	}
	if filter.To, err = ParseTime(get("date_to"), true); err != nil {
		return filter, err
	}
	if filter.Page, err = parseInt(get("page"), "page"); err != nil {
		return filter, err
	}
	if filter.Limit, err = parseInt(get("limit"), "limit"); err != nil {
		return filter, err
	}
	return filter, nil
}

// StatsWindow reads from/to; zero values let the usecase apply its default window.
func StatsWindow(get Getter) (time.Time, time.Time, error) {
	var from, to time.Time
	f, err := ParseTime(get("from"), false)
	if err != nil {
		return from, to, err
	}
	t, err := ParseTime(get("to"), true)
	if err != nil {
		return from, to, err
	}
	if f != nil {
		from = *f
	}
	if t != nil {
		to = *t
	}
	return from, to, nil
}
