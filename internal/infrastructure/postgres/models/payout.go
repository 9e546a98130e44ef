package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PayoutModel struct {
	PayoutID          string          `gorm:"column:payout_id;primaryKey;type:varchar(64)"`
	Reference         string          `gorm:"type:varchar(32);uniqueIndex"`
	InfluencerID      string          `gorm:"type:varchar(64);index"`
	ProductCommission decimal.Decimal `gorm:"type:decimal(18,2)"`
	TierCommission    decimal.Decimal `gorm:"type:decimal(18,2)"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(18,2)"`
	ItemCount         int
	OrderCount        int
	PaymentStatus     string `gorm:"type:varchar(16);index"`
	Notes             *string
	PayoutDate        time.Time `gorm:"index"`
	CreatedAt         time.Time
	ModifiedAt        time.Time
}

func (PayoutModel) TableName() string {
	return "kol_payouts"
}

// PayoutRow - выплата вместе с профилем KOL
type PayoutRow struct {
	PayoutModel
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	PhoneNum  *string
	TierID    *string
	TierName  *string
	TierRate  *decimal.Decimal
}

type PayoutStatusAggregate struct {
	PaymentStatus string
	Count         int64
	Amount        decimal.NullDecimal
}

// All - модели для AutoMigrate в локальной разработке и тестах
func All() []any {
	return []any{
		&OrderModel{},
		&OrderItemModel{},
		&ProductModel{},
		&ProductInventoryModel{},
		&UserModel{},
		&InfluencerTierModel{},
		&InfluencerModel{},
		&AffiliateLinkModel{},
		&PayoutModel{},
	}
}
