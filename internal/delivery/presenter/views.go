package presenter

import (
	"time"

	"github.com/LavaJover/kol-payout-service/internal/domain"
	payoutdto "github.com/LavaJover/kol-payout-service/internal/usecase/dto/payout"
	"github.com/shopspring/decimal"
)

// Views are the wire shape shared by the HTTP and gRPC transports.
// Money is rendered with two decimals, rates as plain percents.

type InfluencerView struct {
	InfluencerID string `json:"influencer_id"`
	Name         string `json:"name"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	TierName     string `json:"tier_name"`
	TierRate     string `json:"tier_rate,omitempty"`
}

type CandidateView struct {
	InfluencerID      string   `json:"influencer_id"`
	Name              string   `json:"name"`
	Username          string   `json:"username"`
	Email             string   `json:"email"`
	TierName          string   `json:"tier_name"`
	ProductCommission string   `json:"product_commission"`
	TierCommission    string   `json:"tier_commission"`
	TotalCommission   string   `json:"total_commission"`
	OrderCount        int      `json:"order_count"`
	ItemCount         int      `json:"item_count"`
	OrderItemIDs      []string `json:"order_item_ids"`
	Notes             string   `json:"notes"`
}

type EligibleView struct {
	Candidates   []CandidateView `json:"candidates"`
	TotalAmount  string          `json:"total_amount"`
	Count        int             `json:"count"`
	AnomalyCount int             `json:"anomaly_count"`
}

type CreatedPayoutView struct {
	PayoutID     string `json:"payout_id"`
	Reference    string `json:"reference"`
	InfluencerID string `json:"influencer_id"`
	Amount       string `json:"amount"`
	ItemCount    int    `json:"item_count"`
	OrderCount   int    `json:"order_count"`
}

type SkippedView struct {
	InfluencerID string `json:"influencer_id"`
	Reason       string `json:"reason"`
}

type GenerateView struct {
	RunID          string              `json:"run_id"`
	Message        string              `json:"message"`
	PayoutsCreated int                 `json:"payouts_created"`
	TotalAmount    string              `json:"total_amount"`
	Payouts        []CreatedPayoutView `json:"payouts"`
	Skipped        []SkippedView       `json:"skipped"`
}

type PayoutView struct {
	PayoutID          string         `json:"payout_id"`
	Reference         string         `json:"reference"`
	Influencer        InfluencerView `json:"influencer"`
	ProductCommission string         `json:"product_commission"`
	TierCommission    string         `json:"tier_commission"`
	TotalAmount       string         `json:"total_amount"`
	ItemCount         int            `json:"item_count"`
	OrderCount        int            `json:"order_count"`
	PaymentStatus     string         `json:"payment_status"`
	Notes             *string        `json:"notes"`
	PayoutDate        string         `json:"payout_date"`
	CreatedAt         string         `json:"created_at"`
	ModifiedAt        string         `json:"modified_at"`
}

type StatusStatsView struct {
	Count       int64  `json:"count"`
	TotalAmount string `json:"total_amount"`
}

type StatsView struct {
	All       StatusStatsView `json:"all"`
	Pending   StatusStatsView `json:"pending"`
	Completed StatusStatsView `json:"completed"`
	Failed    StatusStatsView `json:"failed"`
}

type PaginationView struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type PayoutPageView struct {
	Payouts    []PayoutView   `json:"payouts"`
	Pagination PaginationView `json:"pagination"`
	Stats      StatsView      `json:"stats"`
}

type ItemLineView struct {
	OrderItemID   string `json:"order_item_id"`
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	Quantity      int64  `json:"quantity"`
	UnitPrice     string `json:"unit_price"`
	ItemTotal     string `json:"item_total"`
	ProductRate   string `json:"product_rate"`
	TierRate      string `json:"tier_rate"`
	ProductAmount string `json:"product_amount"`
	TierAmount    string `json:"tier_amount"`
	TotalAmount   string `json:"total_amount"`
}

type OrderView struct {
	OrderID    string         `json:"order_id"`
	CreatedAt  string         `json:"created_at"`
	Status     string         `json:"status"`
	Commission string         `json:"commission"`
	Items      []ItemLineView `json:"items"`
}

type PayoutDetailsView struct {
	PayoutView
	Orders []OrderView `json:"orders"`
}

type SalesStatsView struct {
	InfluencerID     string `json:"influencer_id"`
	From             string `json:"from"`
	To               string `json:"to"`
	OrderCount       int64  `json:"order_count"`
	SalesAmount      string `json:"sales_amount"`
	CommissionEarned string `json:"commission_earned"`
	Clicks           int64  `json:"clicks"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func Eligible(out *payoutdto.EligibleOutput) EligibleView {
	view := EligibleView{
		Candidates:   make([]CandidateView, 0, len(out.Candidates)),
		TotalAmount:  money(out.TotalAmount),
		Count:        out.Count,
		AnomalyCount: out.AnomalyCount,
	}
	for _, c := range out.Candidates {
		view.Candidates = append(view.Candidates, CandidateView{
			InfluencerID:      c.InfluencerID,
			Name:              c.Name,
			Username:          c.Username,
			Email:             c.Email,
			TierName:          c.TierName,
			ProductCommission: money(c.ProductCommission),
			TierCommission:    money(c.TierCommission),
			TotalCommission:   money(c.TotalCommission),
			OrderCount:        c.OrderCount,
			ItemCount:         c.ItemCount,
			OrderItemIDs:      c.OrderItemIDs,
			Notes:             c.Notes,
		})
	}
	return view
}

func Generate(res *domain.GenerateResult) GenerateView {
	view := GenerateView{
		RunID:          res.RunID,
		Message:        res.Message(),
		PayoutsCreated: res.PayoutsCreated,
		TotalAmount:    money(res.TotalAmount),
		Payouts:        make([]CreatedPayoutView, 0, len(res.Payouts)),
		Skipped:        make([]SkippedView, 0, len(res.Skipped)),
	}
	for _, p := range res.Payouts {
		view.Payouts = append(view.Payouts, CreatedPayoutView{
			PayoutID:     p.PayoutID,
			Reference:    p.Reference,
			InfluencerID: p.InfluencerID,
			Amount:       money(p.Amount),
			ItemCount:    p.ItemCount,
			OrderCount:   p.OrderCount,
		})
	}
	for _, s := range res.Skipped {
		view.Skipped = append(view.Skipped, SkippedView{InfluencerID: s.InfluencerID, Reason: s.Reason})
	}
	return view
}

func Influencer(p domain.InfluencerProfile) InfluencerView {
	view := InfluencerView{
		InfluencerID: p.ID,
		Name:         p.DisplayName(),
		Username:     p.Username,
		Email:        p.Email,
		Phone:        p.Phone,
		TierName:     p.TierName,
	}
	if p.TierRate != nil {
		view.TierRate = p.TierRate.String()
	}
	return view
}

func Payout(v domain.PayoutView) PayoutView {
	influencer := Influencer(v.Influencer)
	if influencer.InfluencerID == "" {
		influencer.InfluencerID = v.InfluencerID
	}
	return PayoutView{
		PayoutID:          v.ID,
		Reference:         v.Reference,
		Influencer:        influencer,
		ProductCommission: money(v.ProductCommission),
		TierCommission:    money(v.TierCommission),
		TotalAmount:       money(v.TotalAmount),
		ItemCount:         v.ItemCount,
		OrderCount:        v.OrderCount,
		PaymentStatus:     string(v.Status),
		Notes:             v.Notes,
		PayoutDate:        timestamp(v.PayoutDate),
		CreatedAt:         timestamp(v.CreatedAt),
		ModifiedAt:        timestamp(v.ModifiedAt),
	}
}

func statusStats(s domain.PayoutStatusStats) StatusStatsView {
	return StatusStatsView{Count: s.Count, TotalAmount: money(s.TotalAmount)}
}

func PayoutPage(p *domain.PayoutPage) PayoutPageView {
	view := PayoutPageView{
		Payouts: make([]PayoutView, 0, len(p.Payouts)),
		Pagination: PaginationView{
			Total:      p.Total,
			Page:       p.Page,
			Limit:      p.Limit,
			TotalPages: p.TotalPages,
		},
		Stats: StatsView{
			All:       statusStats(p.Stats.All),
			Pending:   statusStats(p.Stats.Pending),
			Completed: statusStats(p.Stats.Completed),
			Failed:    statusStats(p.Stats.Failed),
		},
	}
	for _, v := range p.Payouts {
		view.Payouts = append(view.Payouts, Payout(v))
	}
	return view
}

func PayoutDetails(d *domain.PayoutDetails) PayoutDetailsView {
	view := PayoutDetailsView{
		PayoutView: Payout(d.PayoutView),
		Orders:     make([]OrderView, 0, len(d.Orders)),
	}
	for _, o := range d.Orders {
		order := OrderView{
			OrderID:    o.OrderID,
			CreatedAt:  timestamp(o.CreatedAt),
			Status:     string(o.Status),
			Commission: money(o.Commission),
			Items:      make([]ItemLineView, 0, len(o.Items)),
		}
		for _, it := range o.Items {
			order.Items = append(order.Items, ItemLineView{
				OrderItemID:   it.OrderItemID,
				ProductID:     it.ProductID,
				ProductName:   it.ProductName,
				Quantity:      it.Quantity,
				UnitPrice:     money(it.UnitPrice),
				ItemTotal:     money(it.ItemTotal),
				ProductRate:   it.ProductRate.String(),
				TierRate:      it.TierRate.String(),
				ProductAmount: money(it.ProductAmount),
				TierAmount:    money(it.TierAmount),
				TotalAmount:   money(it.TotalAmount),
			})
		}
		view.Orders = append(view.Orders, order)
	}
	return view
}

func SalesStats(s *domain.SalesStats) SalesStatsView {
	return SalesStatsView{
		InfluencerID:     s.InfluencerID,
		From:             timestamp(s.From),
		To:               timestamp(s.To),
		OrderCount:       s.OrderCount,
		SalesAmount:      money(s.SalesAmount),
		CommissionEarned: money(s.CommissionEarned),
		Clicks:           s.Clicks,
	}
}
