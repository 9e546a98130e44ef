package payout

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/LavaJover/kol-payout-service/internal/domain"
	"github.com/LavaJover/kol-payout-service/internal/infrastructure/notifier"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	v := dec(s)
	return &v
}

func strPtr(s string) *string { return &s }

// memStore is an in-memory ledger with serialized, rollback-capable transactions.
type memStore struct {
	mu       sync.Mutex
	items    []domain.LedgerItem
	payouts  map[string]*domain.Payout
	profiles map[string]domain.InfluencerProfile
	links    map[string]domain.AffiliateLink

	lockErr      error
	createErr    map[string]error
	beforeAssign func(s *memStore, itemIDs []string)
	statusErr    error
	listCalls    []domain.PayoutFilter
}

func newMemStore() *memStore {
	return &memStore{
		payouts:   make(map[string]*domain.Payout),
		profiles:  make(map[string]domain.InfluencerProfile),
		links:     make(map[string]domain.AffiliateLink),
		createErr: make(map[string]error),
	}
}

func (s *memStore) addInfluencer(id, tierRate string) domain.InfluencerProfile {
	p := domain.InfluencerProfile{
		ID:        id,
		Username:  id,
		Email:     id + "@example.com",
		FirstName: strings.ToUpper(id[:1]) + id[1:],
		LastName:  "Test",
		TierName:  "Silver",
		TierRate:  decPtr(tierRate),
	}
	s.profiles[id] = p
	return p
}

func (s *memStore) addItem(id, orderID, influencerID string, qty int64, price, productRate string) {
	s.items = append(s.items, domain.LedgerItem{
		OrderItemID:    id,
		OrderID:        orderID,
		OrderStatus:    domain.OrderStatusDelivered,
		OrderCreatedAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		Quantity:       qty,
		UnitPrice:      decPtr(price),
		LinkID:         "link-" + influencerID,
		ProductID:      "prod-" + id,
		ProductName:    "Product " + id,
		ProductRate:    decPtr(productRate),
		Influencer:     s.profiles[influencerID],
	})
	s.links["link-"+influencerID] = domain.AffiliateLink{ID: "link-" + influencerID, InfluencerID: influencerID}
}

func (s *memStore) item(id string) *domain.LedgerItem {
	for i := range s.items {
		if s.items[i].OrderItemID == id {
			return &s.items[i]
		}
	}
	return nil
}

func (s *memStore) markPaid(id, payoutID string) {
	s.item(id).PayoutID = &payoutID
}

func (s *memStore) payoutIDOf(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.item(id).PayoutID; p != nil {
		return *p
	}
	return ""
}

func containsStatus(statuses []domain.OrderStatus, st domain.OrderStatus) bool {
	for _, s := range statuses {
		if s == st {
			return true
		}
	}
	return false
}

func copyItem(it domain.LedgerItem) domain.LedgerItem {
	if it.PayoutID != nil {
		id := *it.PayoutID
		it.PayoutID = &id
	}
	return it
}

// LedgerRepository

func (s *memStore) FindEligibleItems(ctx context.Context, filter domain.EligibilityFilter) ([]domain.LedgerItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.LedgerItem
	for _, it := range s.items {
		if it.PayoutID != nil || it.LinkID == "" || !containsStatus(filter.FulfilledStatuses, it.OrderStatus) {
			continue
		}
		if filter.InfluencerID != "" && it.Influencer.ID != filter.InfluencerID {
			continue
		}
		out = append(out, copyItem(it))
	}
	return out, nil
}

func (s *memStore) FindItemsByPayout(ctx context.Context, payoutID string) ([]domain.LedgerItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.LedgerItem
	for _, it := range s.items {
		if it.PayoutID != nil && *it.PayoutID == payoutID {
			out = append(out, copyItem(it))
		}
	}
	return out, nil
}

func (s *memStore) FindInfluencerItems(ctx context.Context, influencerID string, statuses []domain.OrderStatus, from, to time.Time) ([]domain.LedgerItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.LedgerItem
	for _, it := range s.items {
		if it.Influencer.ID != influencerID || !containsStatus(statuses, it.OrderStatus) {
			continue
		}
		if it.OrderCreatedAt.Before(from) || it.OrderCreatedAt.After(to) {
			continue
		}
		out = append(out, copyItem(it))
	}
	return out, nil
}

func (s *memStore) GetInfluencerProfile(ctx context.Context, influencerID string) (*domain.InfluencerProfile, error) {
	p, ok := s.profiles[influencerID]
	if !ok {
		return nil, domain.ErrInfluencerNotFound
	}
	return &p, nil
}

func (s *memStore) GetAffiliateLink(ctx context.Context, linkID string) (*domain.AffiliateLink, error) {
	l, ok := s.links[linkID]
	if !ok {
		return nil, domain.ErrAffiliateLinkNotFound
	}
	return &l, nil
}

// PayoutRepository

func (s *memStore) WithinTx(ctx context.Context, fn func(tx domain.PayoutTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	itemsBackup := make([]domain.LedgerItem, len(s.items))
	for i, it := range s.items {
		itemsBackup[i] = copyItem(it)
	}
	payoutsBackup := make(map[string]*domain.Payout, len(s.payouts))
	for k, v := range s.payouts {
		payoutsBackup[k] = v
	}

	if err := fn(&memTx{s: s}); err != nil {
		s.items = itemsBackup
		s.payouts = payoutsBackup
		return err
	}
	return nil
}

func (s *memStore) GetPayoutByID(ctx context.Context, payoutID string) (*domain.PayoutView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payouts[payoutID]
	if !ok {
		return nil, domain.ErrPayoutNotFound
	}
	return &domain.PayoutView{Payout: *p, Influencer: s.profiles[p.InfluencerID]}, nil
}

func (s *memStore) UpdatePayoutStatus(ctx context.Context, payoutID string, status domain.PaymentStatus, notes *string, modifiedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statusErr != nil {
		return s.statusErr
	}
	p, ok := s.payouts[payoutID]
	if !ok {
		return domain.ErrPayoutNotFound
	}
	updated := *p
	updated.Status = status
	updated.Notes = notes
	updated.ModifiedAt = modifiedAt
	s.payouts[payoutID] = &updated
	return nil
}

func (s *memStore) ListPayouts(ctx context.Context, filter domain.PayoutFilter) ([]domain.PayoutView, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls = append(s.listCalls, filter)
	var out []domain.PayoutView
	for _, p := range s.payouts {
		if filter.Status != "" && string(p.Status) != filter.Status {
			continue
		}
		if filter.InfluencerID != "" && p.InfluencerID != filter.InfluencerID {
			continue
		}
		out = append(out, domain.PayoutView{Payout: *p, Influencer: s.profiles[p.InfluencerID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (s *memStore) PayoutStats(ctx context.Context, filter domain.PayoutFilter) (*domain.PayoutStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &domain.PayoutStats{}
	for _, p := range s.payouts {
		stats.All.Count++
		stats.All.TotalAmount = stats.All.TotalAmount.Add(p.TotalAmount)
	}
	return stats, nil
}

func (s *memStore) payoutCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payouts)
}

type memTx struct {
	s *memStore
}

func (tx *memTx) LockUnpaidItems(ctx context.Context, influencerID string, itemIDs []string, statuses []domain.OrderStatus) ([]domain.LedgerItem, error) {
	if tx.s.lockErr != nil {
		return nil, tx.s.lockErr
	}
	want := make(map[string]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		want[id] = struct{}{}
	}
	var out []domain.LedgerItem
	for _, it := range tx.s.items {
		if _, ok := want[it.OrderItemID]; !ok {
			continue
		}
		if it.PayoutID != nil || it.Influencer.ID != influencerID || !containsStatus(statuses, it.OrderStatus) {
			continue
		}
		out = append(out, copyItem(it))
	}
	return out, nil
}

func (tx *memTx) CreatePayout(ctx context.Context, payout *domain.Payout) error {
	if err := tx.s.createErr[payout.InfluencerID]; err != nil {
		return err
	}
	p := *payout
	tx.s.payouts[p.ID] = &p
	return nil
}

func (tx *memTx) AssignPayout(ctx context.Context, payoutID string, itemIDs []string, modifiedAt time.Time) error {
	if tx.s.beforeAssign != nil {
		tx.s.beforeAssign(tx.s, itemIDs)
	}
	var free []*domain.LedgerItem
	for _, id := range itemIDs {
		if it := tx.s.item(id); it != nil && it.PayoutID == nil {
			free = append(free, it)
		}
	}
	if len(free) != len(itemIDs) {
		return domain.ErrConcurrentPayment
	}
	for _, it := range free {
		id := payoutID
		it.PayoutID = &id
	}
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	msgs   []domain.Message
}

func (p *recordingPublisher) Publish(topic string, msgs ...domain.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range msgs {
		p.topics = append(p.topics, topic)
		p.msgs = append(p.msgs, m)
	}
	return nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	payloads []notifier.CallbackPayload
}

func (n *recordingNotifier) SendCallback(ctx context.Context, payload notifier.CallbackPayload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.payloads = append(n.payloads, payload)
	return nil
}

type recordingRunLogger struct {
	runs []domain.PayoutRun
}

func (l *recordingRunLogger) LogRun(ctx context.Context, run domain.PayoutRun) error {
	l.runs = append(l.runs, run)
	return nil
}

type memClicks struct {
	counts map[string]int64
}

func (c *memClicks) IncrClick(ctx context.Context, influencerID string, at time.Time) (int64, error) {
	if c.counts == nil {
		c.counts = make(map[string]int64)
	}
	c.counts[influencerID]++
	return c.counts[influencerID], nil
}

func (c *memClicks) CountClicks(ctx context.Context, influencerID string, from, to time.Time) (int64, error) {
	return c.counts[influencerID], nil
}
