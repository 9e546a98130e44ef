package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/LavaJover/kol-payout-service/internal/domain"
	"github.com/LavaJover/kol-payout-service/internal/infrastructure/postgres/models"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var baseTime = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func strPtr(s string) *string { return &s }

type fixture struct {
	t  *testing.T
	db *gorm.DB
}

func (f fixture) create(values ...any) {
	f.t.Helper()
	for _, v := range values {
		if err := f.db.Create(v).Error; err != nil {
			f.t.Fatalf("seed %T: %v", v, err)
		}
	}
}

func (f fixture) influencer(id, tierRate string) {
	f.create(
		&models.UserModel{UserID: "u-" + id, Username: id, Email: id + "@example.com", FirstName: "First", LastName: strings.ToUpper(id), PhoneNum: "+100"},
		&models.InfluencerTierModel{TierID: "t-" + id, TierName: "Gold", CommissionRate: decimal.RequireFromString(tierRate)},
		&models.InfluencerModel{InfluencerID: id, UserID: "u-" + id, TierID: strPtr("t-" + id), CreatedAt: baseTime},
	)
}

// item seeds an order item sold through a dedicated affiliate link.
func (f fixture) item(itemID, orderID, status, influencerID string, qty int64, price, productRate string) {
	f.t.Helper()
	var count int64
	f.db.Model(&models.OrderModel{}).Where("order_id = ?", orderID).Count(&count)
	if count == 0 {
		f.create(&models.OrderModel{OrderID: orderID, Status: status, CreationAt: baseTime, ModifiedAt: baseTime})
	}
	f.create(
		&models.ProductModel{ProductID: "p-" + itemID, ProductName: "Product " + itemID, CommissionRate: decPtr(productRate)},
		&models.ProductInventoryModel{InventoryID: "inv-" + itemID, ProductID: "p-" + itemID, Price: decPtr(price)},
		&models.AffiliateLinkModel{LinkID: "l-" + itemID, InfluencerID: influencerID, ProductID: "p-" + itemID, CreatedAt: baseTime},
		&models.OrderItemModel{OrderItemID: itemID, OrderID: orderID, InventoryID: "inv-" + itemID, Quantity: qty, LinkID: strPtr("l-" + itemID), ModifiedAt: baseTime},
	)
}

// drop deletes one row, leaving whatever referenced it dangling.
func (f fixture) drop(model any, where string, id string) {
	f.t.Helper()
	if err := f.db.Where(where+" = ?", id).Delete(model).Error; err != nil {
		f.t.Fatalf("delete %T %s: %v", model, id, err)
	}
}

func seedStorefront(t *testing.T, db *gorm.DB) {
	f := fixture{t: t, db: db}
	f.influencer("kol-a", "10")
	f.influencer("kol-b", "5")
	f.item("i1", "o1", "delivered", "kol-a", 2, "50.00", "5")
	f.item("i2", "o2", "completed", "kol-b", 1, "40.00", "0")
	f.item("i3", "o1", "delivered", "kol-a", 1, "20.00", "10")
	f.item("i4", "o3", "pending", "kol-a", 1, "99.00", "10")
	// no affiliate link
	f.create(&models.OrderItemModel{OrderItemID: "i5", OrderID: "o2", InventoryID: "inv-i2", Quantity: 1, ModifiedAt: baseTime})
}

func itemIDs(items []domain.LedgerItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.OrderItemID)
	}
	return out
}

func TestFindEligibleItems_FiltersUnpaidFulfilledAttributed(t *testing.T) {
	db := openTestDB(t)
	seedStorefront(t, db)
	repo := NewDefaultLedgerRepository(db)

	items, err := repo.FindEligibleItems(context.Background(), domain.EligibilityFilter{
		FulfilledStatuses: domain.DefaultFulfilledStatuses(),
	})
	if err != nil {
		t.Fatalf("FindEligibleItems: %v", err)
	}
	if got := strings.Join(itemIDs(items), ","); got != "i1,i2,i3" {
		t.Fatalf("items = %s, want i1,i2,i3", got)
	}

	first := items[0]
	if first.Quantity != 2 || !first.UnitPrice.Equal(decimal.RequireFromString("50")) {
		t.Errorf("i1 quantity=%d price=%v", first.Quantity, first.UnitPrice)
	}
	if !first.ProductRate.Equal(decimal.RequireFromString("5")) || !first.Influencer.TierRate.Equal(decimal.RequireFromString("10")) {
		t.Errorf("i1 rates product=%v tier=%v", first.ProductRate, first.Influencer.TierRate)
	}
	if first.Influencer.ID != "kol-a" || first.Influencer.Username != "kol-a" || first.Influencer.TierName != "Gold" {
		t.Errorf("i1 influencer = %+v", first.Influencer)
	}
	if first.OrderStatus != domain.OrderStatusDelivered || !first.OrderCreatedAt.Equal(baseTime) {
		t.Errorf("i1 order status=%s created=%s", first.OrderStatus, first.OrderCreatedAt)
	}

	onlyB, err := repo.FindEligibleItems(context.Background(), domain.EligibilityFilter{
		InfluencerID:      "kol-b",
		FulfilledStatuses: domain.DefaultFulfilledStatuses(),
	})
	if err != nil {
		t.Fatalf("FindEligibleItems kol-b: %v", err)
	}
	if got := strings.Join(itemIDs(onlyB), ","); got != "i2" {
		t.Errorf("kol-b items = %s, want i2", got)
	}

	after := baseTime.Add(time.Hour)
	none, err := repo.FindEligibleItems(context.Background(), domain.EligibilityFilter{
		CreatedFrom:       &after,
		FulfilledStatuses: domain.DefaultFulfilledStatuses(),
	})
	if err != nil {
		t.Fatalf("FindEligibleItems window: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no items after %s, got %v", after, itemIDs(none))
	}
}

func TestFindEligibleItems_BrokenReferencesComeBackEmpty(t *testing.T) {
	db := openTestDB(t)
	seedStorefront(t, db)
	f := fixture{t: t, db: db}
	f.drop(&models.ProductModel{}, "product_id", "p-i1")
	f.drop(&models.ProductInventoryModel{}, "inventory_id", "inv-i3")
	f.drop(&models.InfluencerModel{}, "influencer_id", "kol-b")

	items, err := NewDefaultLedgerRepository(db).FindEligibleItems(context.Background(), domain.EligibilityFilter{
		FulfilledStatuses: domain.DefaultFulfilledStatuses(),
	})
	if err != nil {
		t.Fatalf("FindEligibleItems: %v", err)
	}
	byID := make(map[string]domain.LedgerItem, len(items))
	for _, it := range items {
		byID[it.OrderItemID] = it
	}
	if len(byID) != 3 {
		t.Fatalf("items = %v, want i1,i2,i3", itemIDs(items))
	}

	// rates and ids come from the joined rows, not from the link
	if it := byID["i1"]; it.ProductID != "" || it.ProductRate != nil || it.LinkID != "l-i1" {
		t.Errorf("i1 without product: product=%q rate=%v link=%q", it.ProductID, it.ProductRate, it.LinkID)
	}
	if it := byID["i3"]; it.UnitPrice != nil || it.ProductID != "p-i3" {
		t.Errorf("i3 without inventory: price=%v product=%q", it.UnitPrice, it.ProductID)
	}
	if it := byID["i2"]; it.Influencer.ID != "" || it.Influencer.TierRate != nil {
		t.Errorf("i2 without influencer: %+v", it.Influencer)
	}
}

func TestGetInfluencerProfileAndLink(t *testing.T) {
	db := openTestDB(t)
	seedStorefront(t, db)
	repo := NewDefaultLedgerRepository(db)
	ctx := context.Background()

	profile, err := repo.GetInfluencerProfile(ctx, "kol-a")
	if err != nil {
		t.Fatalf("GetInfluencerProfile: %v", err)
	}
	if profile.Email != "kol-a@example.com" || profile.DisplayName() != "First KOL-A" {
		t.Errorf("profile = %+v", profile)
	}
	if _, err := repo.GetInfluencerProfile(ctx, "ghost"); !errors.Is(err, domain.ErrInfluencerNotFound) {
		t.Errorf("missing influencer: got %v", err)
	}

	link, err := repo.GetAffiliateLink(ctx, "l-i2")
	if err != nil {
		t.Fatalf("GetAffiliateLink: %v", err)
	}
	if link.InfluencerID != "kol-b" {
		t.Errorf("link influencer = %s", link.InfluencerID)
	}
	withRate, err := repo.GetAffiliateLink(ctx, "l-i1")
	if err != nil {
		t.Fatalf("GetAffiliateLink l-i1: %v", err)
	}
	if withRate.ProductID != "p-i1" || withRate.ProductRate == nil || !withRate.ProductRate.Equal(decimal.RequireFromString("5")) {
		t.Errorf("link l-i1 product=%s rate=%v", withRate.ProductID, withRate.ProductRate)
	}
	if _, err := repo.GetAffiliateLink(ctx, "nope"); !errors.Is(err, domain.ErrAffiliateLinkNotFound) {
		t.Errorf("missing link: got %v", err)
	}
}

func newPayout(id, influencerID, total string, status domain.PaymentStatus, at time.Time) *domain.Payout {
	amount := decimal.RequireFromString(total)
	return &domain.Payout{
		ID:                id,
		Reference:         "KOL-" + strings.ToUpper(id),
		InfluencerID:      influencerID,
		ProductCommission: decimal.Zero,
		TierCommission:    amount,
		TotalAmount:       amount,
		ItemCount:         1,
		OrderCount:        1,
		Status:            status,
		PayoutDate:        at,
		CreatedAt:         at,
		ModifiedAt:        at,
	}
}

func TestWithinTx_LockCreateAssign(t *testing.T) {
	db := openTestDB(t)
	seedStorefront(t, db)
	repo, err := NewDefaultPayoutRepository(db, "")
	if err != nil {
		t.Fatalf("NewDefaultPayoutRepository: %v", err)
	}
	ledger := NewDefaultLedgerRepository(db)
	ctx := context.Background()

	err = repo.WithinTx(ctx, func(tx domain.PayoutTx) error {
		// i4 is pending, i2 belongs to kol-b
		items, err := tx.LockUnpaidItems(ctx, "kol-a", []string{"i1", "i2", "i3", "i4"}, domain.DefaultFulfilledStatuses())
		if err != nil {
			return err
		}
		if got := strings.Join(itemIDs(items), ","); got != "i1,i3" {
			return fmt.Errorf("locked items = %s", got)
		}
		if err := tx.CreatePayout(ctx, newPayout("p1", "kol-a", "19.00", domain.PaymentStatusPending, baseTime)); err != nil {
			return err
		}
		return tx.AssignPayout(ctx, "p1", itemIDs(items), baseTime)
	})
	if err != nil {
		t.Fatalf("WithinTx: %v", err)
	}

	paid, err := ledger.FindItemsByPayout(ctx, "p1")
	if err != nil {
		t.Fatalf("FindItemsByPayout: %v", err)
	}
	if got := strings.Join(itemIDs(paid), ","); got != "i1,i3" {
		t.Errorf("paid items = %s", got)
	}

	err = repo.WithinTx(ctx, func(tx domain.PayoutTx) error {
		items, err := tx.LockUnpaidItems(ctx, "kol-a", []string{"i1", "i3"}, domain.DefaultFulfilledStatuses())
		if err != nil {
			return err
		}
		if len(items) != 0 {
			return fmt.Errorf("paid items must not be locked again: %v", itemIDs(items))
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestAssignPayout_ConflictRollsBack(t *testing.T) {
	db := openTestDB(t)
	seedStorefront(t, db)
	repo, err := NewDefaultPayoutRepository(db, "")
	if err != nil {
		t.Fatalf("NewDefaultPayoutRepository: %v", err)
	}
	ctx := context.Background()

	err = repo.WithinTx(ctx, func(tx domain.PayoutTx) error {
		if err := tx.CreatePayout(ctx, newPayout("p1", "kol-a", "5.00", domain.PaymentStatusPending, baseTime)); err != nil {
			return err
		}
		return tx.AssignPayout(ctx, "p1", []string{"i1"}, baseTime)
	})
	if err != nil {
		t.Fatalf("first payout: %v", err)
	}

	err = repo.WithinTx(ctx, func(tx domain.PayoutTx) error {
		if err := tx.CreatePayout(ctx, newPayout("p2", "kol-a", "9.00", domain.PaymentStatusPending, baseTime)); err != nil {
			return err
		}
		return tx.AssignPayout(ctx, "p2", []string{"i1", "i3"}, baseTime)
	})
	if !errors.Is(err, domain.ErrConcurrentPayment) {
		t.Fatalf("expected ErrConcurrentPayment, got %v", err)
	}

	if _, err := repo.GetPayoutByID(ctx, "p2"); !errors.Is(err, domain.ErrPayoutNotFound) {
		t.Errorf("p2 must be rolled back, got %v", err)
	}
	var i3 models.OrderItemModel
	if err := db.First(&i3, "order_item_id = ?", "i3").Error; err != nil {
		t.Fatalf("load i3: %v", err)
	}
	if i3.PayoutID != nil {
		t.Errorf("i3 must stay unpaid, got payout %s", *i3.PayoutID)
	}
}

func TestPayoutQueries(t *testing.T) {
	db := openTestDB(t)
	seedStorefront(t, db)
	repo, err := NewDefaultPayoutRepository(db, "")
	if err != nil {
		t.Fatalf("NewDefaultPayoutRepository: %v", err)
	}
	ctx := context.Background()

	seed := []*domain.Payout{
		newPayout("p1", "kol-a", "10.00", domain.PaymentStatusPending, baseTime),
		newPayout("p2", "kol-a", "20.50", domain.PaymentStatusCompleted, baseTime.Add(time.Hour)),
		newPayout("p3", "kol-b", "5.25", domain.PaymentStatusFailed, baseTime.Add(2*time.Hour)),
	}
	for _, p := range seed {
		p := p
		if err := repo.WithinTx(ctx, func(tx domain.PayoutTx) error { return tx.CreatePayout(ctx, p) }); err != nil {
			t.Fatalf("create %s: %v", p.ID, err)
		}
	}

	view, err := repo.GetPayoutByID(ctx, "p2")
	if err != nil {
		t.Fatalf("GetPayoutByID: %v", err)
	}
	if view.Influencer.Username != "kol-a" || !view.TotalAmount.Equal(decimal.RequireFromString("20.50")) || view.Status != domain.PaymentStatusCompleted {
		t.Errorf("view = %+v", view)
	}

	t.Run("sorted page", func(t *testing.T) {
		list, total, err := repo.ListPayouts(ctx, domain.PayoutFilter{SortBy: "total_amount", SortDesc: true, Page: 1, Limit: 2})
		if err != nil {
			t.Fatalf("ListPayouts: %v", err)
		}
		if total != 3 || len(list) != 2 {
			t.Fatalf("total=%d len=%d", total, len(list))
		}
		if list[0].ID != "p2" || list[1].ID != "p1" {
			t.Errorf("order = %s, %s", list[0].ID, list[1].ID)
		}

		rest, _, err := repo.ListPayouts(ctx, domain.PayoutFilter{SortBy: "total_amount", SortDesc: true, Page: 2, Limit: 2})
		if err != nil {
			t.Fatalf("ListPayouts page 2: %v", err)
		}
		if len(rest) != 1 || rest[0].ID != "p3" {
			t.Errorf("page 2 = %+v", rest)
		}
	})

	t.Run("status and search", func(t *testing.T) {
		list, total, err := repo.ListPayouts(ctx, domain.PayoutFilter{Status: "failed", SortBy: "payout_date", Limit: 10})
		if err != nil {
			t.Fatalf("ListPayouts: %v", err)
		}
		if total != 1 || list[0].ID != "p3" {
			t.Errorf("failed payouts = %d", total)
		}

		list, total, err = repo.ListPayouts(ctx, domain.PayoutFilter{Search: "KOL-A@", SortBy: "payout_date", Limit: 10})
		if err != nil {
			t.Fatalf("ListPayouts search: %v", err)
		}
		if total != 2 || len(list) != 2 {
			t.Errorf("search by email matched %d", total)
		}
	})

	t.Run("stats", func(t *testing.T) {
		stats, err := repo.PayoutStats(ctx, domain.PayoutFilter{})
		if err != nil {
			t.Fatalf("PayoutStats: %v", err)
		}
		if stats.All.Count != 3 || !stats.All.TotalAmount.Equal(decimal.RequireFromString("35.75")) {
			t.Errorf("all = %+v", stats.All)
		}
		if stats.Pending.Count != 1 || stats.Completed.Count != 1 || stats.Failed.Count != 1 {
			t.Errorf("stats = %+v", stats)
		}
		if !stats.Completed.TotalAmount.Equal(decimal.RequireFromString("20.5")) {
			t.Errorf("completed amount = %s", stats.Completed.TotalAmount)
		}
	})

	t.Run("update status", func(t *testing.T) {
		if err := repo.UpdatePayoutStatus(ctx, "p1", domain.PaymentStatusCompleted, strPtr("paid by wire"), baseTime.Add(3*time.Hour)); err != nil {
			t.Fatalf("UpdatePayoutStatus: %v", err)
		}
		view, err := repo.GetPayoutByID(ctx, "p1")
		if err != nil {
			t.Fatalf("GetPayoutByID: %v", err)
		}
		if view.Status != domain.PaymentStatusCompleted || view.Notes == nil || *view.Notes != "paid by wire" {
			t.Errorf("updated view = %+v", view)
		}

		err = repo.UpdatePayoutStatus(ctx, "missing", domain.PaymentStatusFailed, nil, baseTime)
		if !errors.Is(err, domain.ErrPayoutNotFound) {
			t.Errorf("missing payout: got %v", err)
		}
	})
}

func TestNewDefaultPayoutRepository_IsolationLevel(t *testing.T) {
	db := openTestDB(t)
	cases := []struct {
		level   string
		wantErr bool
	}{
		{"", false},
		{"read_committed", false},
		{"SERIALIZABLE", false},
		{"repeatable_read", false},
		{"chaos", true},
	}
	for _, c := range cases {
		_, err := NewDefaultPayoutRepository(db, c.level)
		if (err != nil) != c.wantErr {
			t.Errorf("level %q: err = %v", c.level, err)
		}
	}
}

func TestWithinTx_ConcurrentWritersPayOnce(t *testing.T) {
	db := openTestDB(t)
	seedStorefront(t, db)
	repo, err := NewDefaultPayoutRepository(db, "")
	if err != nil {
		t.Fatalf("NewDefaultPayoutRepository: %v", err)
	}
	ctx := context.Background()

	const writers = 4
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		paid int
	)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			id := fmt.Sprintf("p%d", w)
			err := repo.WithinTx(ctx, func(tx domain.PayoutTx) error {
				items, err := tx.LockUnpaidItems(ctx, "kol-a", []string{"i1", "i3"}, domain.DefaultFulfilledStatuses())
				if err != nil {
					return err
				}
				if len(items) == 0 {
					return domain.ErrAllItemsPaid
				}
				if err := tx.CreatePayout(ctx, newPayout(id, "kol-a", "19.00", domain.PaymentStatusPending, baseTime)); err != nil {
					return err
				}
				return tx.AssignPayout(ctx, id, itemIDs(items), baseTime)
			})
			if err == nil {
				mu.Lock()
				paid++
				mu.Unlock()
			} else if !errors.Is(err, domain.ErrAllItemsPaid) && !errors.Is(err, domain.ErrConcurrentPayment) {
				t.Errorf("writer %d: %v", w, err)
			}
		}(w)
	}
	wg.Wait()

	if paid != 1 {
		t.Fatalf("%d writers paid the same items, want exactly 1", paid)
	}
	var payouts int64
	db.Model(&models.PayoutModel{}).Count(&payouts)
	if payouts != 1 {
		t.Errorf("payouts stored = %d, want 1", payouts)
	}
}
