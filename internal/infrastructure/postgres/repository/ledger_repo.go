package repository

import (
	"context"
	"time"

	"github.com/LavaJover/kol-payout-service/internal/domain"
	"github.com/LavaJover/kol-payout-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/kol-payout-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

const ledgerColumns = `oi.order_item_id, oi.order_id, o.status AS order_status, o.creation_at AS order_created_at,
	oi.quantity, inv.price AS unit_price, oi.link_id, p.product_id, p.product_name,
	p.commission_rate AS product_rate, oi.tier_commission_rate AS tier_rate_snapshot, oi.payout_id,
	i.influencer_id, u.username, u.email, u.first_name, u.last_name, u.phone_num,
	t.tier_id, t.tier_name, t.commission_rate AS tier_rate`

// ledgerQuery joins an order item with everything needed for its commission.
// Outer joins keep items with broken references so callers can report them:
// product and influencer columns come from the joined rows, never from link
// foreign keys, so a dangling link yields empty ids.
func ledgerQuery(db *gorm.DB) *gorm.DB {
	return db.Table("order_items AS oi").
		Select(ledgerColumns).
		Joins("JOIN orders o ON o.order_id = oi.order_id").
		Joins("LEFT JOIN product_inventories inv ON inv.inventory_id = oi.inventory_id").
		Joins("LEFT JOIN influencer_affiliate_links l ON l.link_id = oi.link_id").
		Joins("LEFT JOIN products p ON p.product_id = l.product_id").
		Joins("LEFT JOIN influencers i ON i.influencer_id = l.influencer_id").
		Joins("LEFT JOIN users u ON u.user_id = i.user_id").
		Joins("LEFT JOIN influencer_tiers t ON t.tier_id = i.tier_id")
}

func statusStrings(statuses []domain.OrderStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

type DefaultLedgerRepository struct {
	DB *gorm.DB
}

func NewDefaultLedgerRepository(db *gorm.DB) *DefaultLedgerRepository {
	return &DefaultLedgerRepository{DB: db}
}

func (r *DefaultLedgerRepository) FindEligibleItems(ctx context.Context, filter domain.EligibilityFilter) ([]domain.LedgerItem, error) {
	q := ledgerQuery(r.DB.WithContext(ctx)).
		Where("o.status IN ?", statusStrings(filter.FulfilledStatuses)).
		Where("oi.link_id IS NOT NULL").
		Where("oi.payout_id IS NULL")

	if filter.InfluencerID != "" {
		q = q.Where("l.influencer_id = ?", filter.InfluencerID)
	}
	if filter.CreatedFrom != nil {
		q = q.Where("o.creation_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		q = q.Where("o.creation_at <= ?", *filter.CreatedTo)
	}

	var rows []models.LedgerItemRow
	if err := q.Order("oi.order_item_id").Scan(&rows).Error; err != nil {
		return nil, storageErr(err)
	}
	return mappers.ToDomainLedgerItems(rows), nil
}

func (r *DefaultLedgerRepository) FindItemsByPayout(ctx context.Context, payoutID string) ([]domain.LedgerItem, error) {
	var rows []models.LedgerItemRow
	err := ledgerQuery(r.DB.WithContext(ctx)).
		Where("oi.payout_id = ?", payoutID).
		Order("o.creation_at, oi.order_id, oi.order_item_id").
		Scan(&rows).Error
	if err != nil {
		return nil, storageErr(err)
	}
	return mappers.ToDomainLedgerItems(rows), nil
}

func (r *DefaultLedgerRepository) FindInfluencerItems(ctx context.Context, influencerID string, statuses []domain.OrderStatus, from, to time.Time) ([]domain.LedgerItem, error) {
	var rows []models.LedgerItemRow
	err := ledgerQuery(r.DB.WithContext(ctx)).
		Where("l.influencer_id = ?", influencerID).
		Where("o.status IN ?", statusStrings(statuses)).
		Where("o.creation_at BETWEEN ? AND ?", from, to).
		Order("oi.order_item_id").
		Scan(&rows).Error
	if err != nil {
		return nil, storageErr(err)
	}
	return mappers.ToDomainLedgerItems(rows), nil
}

func (r *DefaultLedgerRepository) GetInfluencerProfile(ctx context.Context, influencerID string) (*domain.InfluencerProfile, error) {
	var rows []models.LedgerItemRow
	err := r.DB.WithContext(ctx).Table("influencers AS i").
		Select("i.influencer_id, u.username, u.email, u.first_name, u.last_name, u.phone_num, t.tier_id, t.tier_name, t.commission_rate AS tier_rate").
		Joins("LEFT JOIN users u ON u.user_id = i.user_id").
		Joins("LEFT JOIN influencer_tiers t ON t.tier_id = i.tier_id").
		Where("i.influencer_id = ?", influencerID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, storageErr(err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrInfluencerNotFound
	}
	profile := mappers.ToDomainLedgerItem(&rows[0]).Influencer
	return &profile, nil
}

func (r *DefaultLedgerRepository) GetAffiliateLink(ctx context.Context, linkID string) (*domain.AffiliateLink, error) {
	var rows []models.AffiliateLinkRow
	err := r.DB.WithContext(ctx).Table("influencer_affiliate_links AS l").
		Select("l.link_id, l.influencer_id, p.product_id, p.commission_rate AS product_rate, l.created_at").
		Joins("LEFT JOIN products p ON p.product_id = l.product_id").
		Where("l.link_id = ?", linkID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, storageErr(err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrAffiliateLinkNotFound
	}
	return mappers.ToDomainAffiliateLink(&rows[0]), nil
}
