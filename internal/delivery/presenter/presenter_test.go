package presenter

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/LavaJover/kol-payout-service/internal/domain"
	"github.com/shopspring/decimal"
)

func getter(values map[string]string) Getter {
	return func(key string) string { return values[key] }
}

func TestParseTime(t *testing.T) {
	got, err := ParseTime("2026-03-05", true)
	if err != nil {
		t.Fatalf("ParseTime: %v", err)
	}
	want := time.Date(2026, 3, 5, 23, 59, 59, 999999999, time.UTC)
	if !got.Equal(want) {
		t.Errorf("end of day = %s, want %s", got, want)
	}

	got, err = ParseTime("2026-03-05T10:00:00+02:00", true)
	if err != nil {
		t.Fatalf("ParseTime RFC3339: %v", err)
	}
	if !got.Equal(time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("rfc3339 = %s", got)
	}

	if got, err := ParseTime("  ", false); got != nil || err != nil {
		t.Errorf("blank input: %v, %v", got, err)
	}
	if _, err := ParseTime("05/03/2026", false); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("bad date: %v", err)
	}
}

func TestPayoutFilter(t *testing.T) {
	filter, err := PayoutFilter(getter(map[string]string{
		"status":     "completed",
		"search":     "anna",
		"sort_by":    "total_amount",
		"sort_order": "ASC",
		"page":       "3",
		"limit":      "50",
		"date_from":  "2026-01-01",
	}))
	if err != nil {
		t.Fatalf("PayoutFilter: %v", err)
	}
	if filter.SortDesc || filter.Page != 3 || filter.Limit != 50 || filter.From == nil || filter.To != nil {
		t.Errorf("filter = %+v", filter)
	}

	defaults, err := PayoutFilter(getter(nil))
	if err != nil {
		t.Fatalf("PayoutFilter defaults: %v", err)
	}
	if !defaults.SortDesc {
		t.Error("sort order must default to desc")
	}

	bad := []map[string]string{
		{"page": "two"},
		{"sort_order": "sideways"},
		{"date_to": "yesterday"},
	}
	for _, values := range bad {
		if _, err := PayoutFilter(getter(values)); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("%v: expected invalid input, got %v", values, err)
		}
	}
}

func TestPayoutView_RendersMoneyWithTwoDecimals(t *testing.T) {
	rate := decimal.RequireFromString("7.5")
	view := Payout(domain.PayoutView{
		Payout: domain.Payout{
			ID:                "p1",
			InfluencerID:      "kol-a",
			ProductCommission: decimal.RequireFromString("5"),
			TierCommission:    decimal.RequireFromString("10.005"),
			TotalAmount:       decimal.RequireFromString("15"),
			Status:            domain.PaymentStatusPending,
			PayoutDate:        time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		},
		Influencer: domain.InfluencerProfile{FirstName: "Anna", LastName: "Lee", TierName: "Gold", TierRate: &rate},
	})

	if view.TotalAmount != "15.00" || view.ProductCommission != "5.00" || view.TierCommission != "10.01" {
		t.Errorf("amounts = %s %s %s", view.TotalAmount, view.ProductCommission, view.TierCommission)
	}
	if view.Influencer.InfluencerID != "kol-a" || view.Influencer.Name != "Anna Lee" || view.Influencer.TierRate != "7.5" {
		t.Errorf("influencer = %+v", view.Influencer)
	}
	if view.PayoutDate != "2026-05-01T12:00:00Z" || view.CreatedAt != "" {
		t.Errorf("dates = %q %q", view.PayoutDate, view.CreatedAt)
	}
}

func TestGenerateView(t *testing.T) {
	res := &domain.GenerateResult{
		RunID:          "run-1",
		PayoutsCreated: 1,
		TotalAmount:    decimal.RequireFromString("22"),
		Payouts:        []domain.CreatedPayout{{PayoutID: "p1", InfluencerID: "kol-a", Amount: decimal.RequireFromString("22")}},
		Skipped:        []domain.SkippedCandidate{{InfluencerID: "kol-b", Reason: "all order items have already been paid"}},
	}
	view := Generate(res)
	if view.Message != "Successfully generated 1 payouts totaling 22.00. 1 influencer(s) were skipped due to issues." {
		t.Errorf("message = %q", view.Message)
	}
	if view.Payouts[0].Amount != "22.00" || view.Skipped[0].InfluencerID != "kol-b" {
		t.Errorf("view = %+v", view)
	}
}

func TestGenerateRequest_AcceptsStringAndNumberAmounts(t *testing.T) {
	var req GenerateRequest
	body := `{"payouts":[{"influencer_id":"kol-a","total_amount":22.5,"product_commission":"7.50","tier_commission":null,"order_item_ids":["i1","i3"],"order_count":1}]}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	in := req.ToInput()
	if len(in.Payouts) != 1 {
		t.Fatalf("payouts = %d", len(in.Payouts))
	}
	p := in.Payouts[0]
	if p.TotalAmount != "22.5" || p.ProductCommission != "7.50" || p.TierCommission != "" {
		t.Errorf("amounts = %q %q %q", p.TotalAmount, p.ProductCommission, p.TierCommission)
	}
	if len(p.OrderItemIDs) != 2 || p.OrderCount != 1 {
		t.Errorf("instruction = %+v", p)
	}
}
