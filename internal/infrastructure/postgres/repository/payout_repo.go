package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/LavaJover/kol-payout-service/internal/domain"
	"github.com/LavaJover/kol-payout-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/kol-payout-service/internal/infrastructure/postgres/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const payoutColumns = `kp.*, u.username, u.email, u.first_name, u.last_name, u.phone_num,
	t.tier_id, t.tier_name, t.commission_rate AS tier_rate`

var payoutSortColumns = map[string]string{
	"payout_date":  "kp.payout_date",
	"total_amount": "kp.total_amount",
	"created_at":   "kp.created_at",
}

// ParseIsolationLevel maps the config value; empty means the driver default.
func ParseIsolationLevel(level string) (*sql.TxOptions, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "":
		return nil, nil
	case "read_committed":
		return &sql.TxOptions{Isolation: sql.LevelReadCommitted}, nil
	case "repeatable_read":
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead}, nil
	case "serializable":
		return &sql.TxOptions{Isolation: sql.LevelSerializable}, nil
	default:
		return nil, fmt.Errorf("unsupported isolation level %q", level)
	}
}

type DefaultPayoutRepository struct {
	DB        *gorm.DB
	txOptions *sql.TxOptions
	lockRows  bool
}

func NewDefaultPayoutRepository(db *gorm.DB, isolationLevel string) (*DefaultPayoutRepository, error) {
	opts, err := ParseIsolationLevel(isolationLevel)
	if err != nil {
		return nil, err
	}
	return &DefaultPayoutRepository{
		DB:        db,
		txOptions: opts,
		// row locks are only issued where the dialect supports SELECT ... FOR UPDATE
		lockRows: db.Dialector.Name() == "postgres",
	}, nil
}

func (r *DefaultPayoutRepository) WithinTx(ctx context.Context, fn func(tx domain.PayoutTx) error) error {
	var opts []*sql.TxOptions
	if r.txOptions != nil {
		opts = append(opts, r.txOptions)
	}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&payoutTx{db: tx, lockRows: r.lockRows})
	}, opts...)
	return storageErr(err)
}

type payoutTx struct {
	db       *gorm.DB
	lockRows bool
}

func (t *payoutTx) LockUnpaidItems(ctx context.Context, influencerID string, itemIDs []string, statuses []domain.OrderStatus) ([]domain.LedgerItem, error) {
	q := ledgerQuery(t.db.WithContext(ctx)).
		Where("oi.order_item_id IN ?", itemIDs).
		Where("oi.link_id IS NOT NULL").
		Where("oi.payout_id IS NULL").
		Where("l.influencer_id = ?", influencerID).
		Where("o.status IN ?", statusStrings(statuses)).
		Order("oi.order_item_id")
	if t.lockRows {
		q = q.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "oi"}})
	}

	var rows []models.LedgerItemRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, storageErr(err)
	}
	return mappers.ToDomainLedgerItems(rows), nil
}

func (t *payoutTx) CreatePayout(ctx context.Context, payout *domain.Payout) error {
	if err := t.db.WithContext(ctx).Create(mappers.ToGORMPayout(payout)).Error; err != nil {
		return storageErr(err)
	}
	return nil
}

// AssignPayout sets payout_id only where it is still NULL. Fewer affected rows
// than requested means another transaction paid some of them first.
func (t *payoutTx) AssignPayout(ctx context.Context, payoutID string, itemIDs []string, modifiedAt time.Time) error {
	res := t.db.WithContext(ctx).
		Model(&models.OrderItemModel{}).
		Where("order_item_id IN ? AND payout_id IS NULL", itemIDs).
		Updates(map[string]any{
			"payout_id":   payoutID,
			"modified_at": modifiedAt,
		})
	if res.Error != nil {
		return storageErr(res.Error)
	}
	if res.RowsAffected != int64(len(itemIDs)) {
		return fmt.Errorf("%w: %d of %d items updated", domain.ErrConcurrentPayment, res.RowsAffected, len(itemIDs))
	}
	return nil
}

func (r *DefaultPayoutRepository) payoutQuery(ctx context.Context, filter domain.PayoutFilter) *gorm.DB {
	q := r.DB.WithContext(ctx).Table("kol_payouts AS kp").
		Joins("LEFT JOIN influencers i ON i.influencer_id = kp.influencer_id").
		Joins("LEFT JOIN users u ON u.user_id = i.user_id").
		Joins("LEFT JOIN influencer_tiers t ON t.tier_id = i.tier_id")

	if filter.Status != "" {
		q = q.Where("kp.payment_status = ?", filter.Status)
	}
	if filter.InfluencerID != "" {
		q = q.Where("kp.influencer_id = ?", filter.InfluencerID)
	}
	if filter.From != nil {
		q = q.Where("kp.payout_date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("kp.payout_date <= ?", *filter.To)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		q = q.Where(
			"LOWER(u.username) LIKE ? OR LOWER(u.email) LIKE ? OR LOWER(u.first_name) LIKE ? OR LOWER(u.last_name) LIKE ? OR LOWER(kp.reference) LIKE ?",
			like, like, like, like, like,
		)
	}
	return q
}

func (r *DefaultPayoutRepository) GetPayoutByID(ctx context.Context, payoutID string) (*domain.PayoutView, error) {
	var rows []models.PayoutRow
	err := r.payoutQuery(ctx, domain.PayoutFilter{}).
		Select(payoutColumns).
		Where("kp.payout_id = ?", payoutID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, storageErr(err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrPayoutNotFound
	}
	view := mappers.ToDomainPayoutView(&rows[0])
	return &view, nil
}

func (r *DefaultPayoutRepository) UpdatePayoutStatus(ctx context.Context, payoutID string, status domain.PaymentStatus, notes *string, modifiedAt time.Time) error {
	res := r.DB.WithContext(ctx).
		Model(&models.PayoutModel{}).
		Where("payout_id = ?", payoutID).
		Updates(map[string]any{
			"payment_status": string(status),
			"notes":          notes,
			"modified_at":    modifiedAt,
		})
	if res.Error != nil {
		return storageErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrPayoutNotFound
	}
	return nil
}

func (r *DefaultPayoutRepository) ListPayouts(ctx context.Context, filter domain.PayoutFilter) ([]domain.PayoutView, int64, error) {
	var total int64
	if err := r.payoutQuery(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, storageErr(err)
	}

	sortColumn, ok := payoutSortColumns[filter.SortBy]
	if !ok {
		sortColumn = payoutSortColumns["payout_date"]
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	q := r.payoutQuery(ctx, filter).
		Select(payoutColumns).
		Order(sortColumn + " " + direction).
		Order("kp.payout_id")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
		if filter.Page > 1 {
			q = q.Offset((filter.Page - 1) * filter.Limit)
		}
	}

	var rows []models.PayoutRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, 0, storageErr(err)
	}

	out := make([]domain.PayoutView, 0, len(rows))
	for i := range rows {
		out = append(out, mappers.ToDomainPayoutView(&rows[i]))
	}
	return out, total, nil
}

func (r *DefaultPayoutRepository) PayoutStats(ctx context.Context, filter domain.PayoutFilter) (*domain.PayoutStats, error) {
	var aggs []models.PayoutStatusAggregate
	err := r.payoutQuery(ctx, filter).
		Select("kp.payment_status AS payment_status, COUNT(*) AS count, SUM(kp.total_amount) AS amount").
		Group("kp.payment_status").
		Scan(&aggs).Error
	if err != nil {
		return nil, storageErr(err)
	}

	zero := domain.PayoutStatusStats{TotalAmount: decimal.Zero}
	stats := &domain.PayoutStats{All: zero, Pending: zero, Completed: zero, Failed: zero}
	for _, a := range aggs {
		amount := decimal.Zero
		if a.Amount.Valid {
			amount = a.Amount.Decimal
		}
		entry := domain.PayoutStatusStats{Count: a.Count, TotalAmount: amount}

		switch domain.PaymentStatus(a.PaymentStatus) {
		case domain.PaymentStatusPending:
			stats.Pending = entry
		case domain.PaymentStatusCompleted:
			stats.Completed = entry
		case domain.PaymentStatusFailed:
			stats.Failed = entry
		}
		stats.All.Count += entry.Count
		stats.All.TotalAmount = stats.All.TotalAmount.Add(entry.TotalAmount)
	}
	return stats, nil
}
