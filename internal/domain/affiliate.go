package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type InfluencerTier struct {
	ID             string
	Name           string
	CommissionRate decimal.Decimal
}

type Influencer struct {
	ID        string
	UserID    string
	Tier      *InfluencerTier
	CreatedAt time.Time
}

type AffiliateLink struct {
	ID           string
	InfluencerID string
	ProductID    string
	ProductRate  *decimal.Decimal
	CreatedAt    time.Time
}

// InfluencerProfile - денормализованные данные KOL для отчетов
type InfluencerProfile struct {
	ID        string
	Username  string
	Email     string
	FirstName string
	LastName  string
	Phone     string
	TierID    string
	TierName  string
	TierRate  *decimal.Decimal
}

func (p InfluencerProfile) DisplayName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
