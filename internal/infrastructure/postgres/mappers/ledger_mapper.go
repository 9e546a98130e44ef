package mappers

import (
	"github.com/LavaJover/kol-payout-service/internal/domain"
	"github.com/LavaJover/kol-payout-service/internal/infrastructure/postgres/models"
)

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ToDomainLedgerItem(row *models.LedgerItemRow) domain.LedgerItem {
	return domain.LedgerItem{
		OrderItemID:      row.OrderItemID,
		OrderID:          row.OrderID,
		OrderStatus:      domain.OrderStatus(row.OrderStatus),
		OrderCreatedAt:   row.OrderCreatedAt,
		Quantity:         row.Quantity,
		UnitPrice:        row.UnitPrice,
		LinkID:           deref(row.LinkID),
		ProductID:        deref(row.ProductID),
		ProductName:      deref(row.ProductName),
		ProductRate:      row.ProductRate,
		TierRateSnapshot: row.TierRateSnapshot,
		PayoutID:         row.PayoutID,
		Influencer: domain.InfluencerProfile{
			ID:        deref(row.InfluencerID),
			Username:  deref(row.Username),
			Email:     deref(row.Email),
			FirstName: deref(row.FirstName),
			LastName:  deref(row.LastName),
			Phone:     deref(row.PhoneNum),
			TierID:    deref(row.TierID),
			TierName:  deref(row.TierName),
			TierRate:  row.TierRate,
		},
	}
}

func ToDomainLedgerItems(rows []models.LedgerItemRow) []domain.LedgerItem {
	out := make([]domain.LedgerItem, 0, len(rows))
	for i := range rows {
		out = append(out, ToDomainLedgerItem(&rows[i]))
	}
	return out
}

func ToDomainAffiliateLink(row *models.AffiliateLinkRow) *domain.AffiliateLink {
	return &domain.AffiliateLink{
		ID:           row.LinkID,
		InfluencerID: row.InfluencerID,
		ProductID:    deref(row.ProductID),
		ProductRate:  row.ProductRate,
		CreatedAt:    row.CreatedAt,
	}
}
