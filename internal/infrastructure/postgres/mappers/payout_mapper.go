package mappers

import (
	"github.com/LavaJover/kol-payout-service/internal/domain"
	"github.com/LavaJover/kol-payout-service/internal/infrastructure/postgres/models"
)

func ToGORMPayout(p *domain.Payout) *models.PayoutModel {
	return &models.PayoutModel{
		PayoutID:          p.ID,
		Reference:         p.Reference,
		InfluencerID:      p.InfluencerID,
		ProductCommission: p.ProductCommission,
		TierCommission:    p.TierCommission,
		TotalAmount:       p.TotalAmount,
		ItemCount:         p.ItemCount,
		OrderCount:        p.OrderCount,
		PaymentStatus:     string(p.Status),
		Notes:             p.Notes,
		PayoutDate:        p.PayoutDate,
		CreatedAt:         p.CreatedAt,
		ModifiedAt:        p.ModifiedAt,
	}
}

func ToDomainPayout(m *models.PayoutModel) domain.Payout {
	return domain.Payout{
		ID:                m.PayoutID,
		Reference:         m.Reference,
		InfluencerID:      m.InfluencerID,
		ProductCommission: m.ProductCommission,
		TierCommission:    m.TierCommission,
		TotalAmount:       m.TotalAmount,
		ItemCount:         m.ItemCount,
		OrderCount:        m.OrderCount,
		Status:            domain.PaymentStatus(m.PaymentStatus),
		Notes:             m.Notes,
		PayoutDate:        m.PayoutDate,
		CreatedAt:         m.CreatedAt,
		ModifiedAt:        m.ModifiedAt,
	}
}

func ToDomainPayoutView(row *models.PayoutRow) domain.PayoutView {
	return domain.PayoutView{
		Payout: ToDomainPayout(&row.PayoutModel),
		Influencer: domain.InfluencerProfile{
			ID:        row.InfluencerID,
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
