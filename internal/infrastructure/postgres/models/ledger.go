package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Таблицы витрины; сервис пишет только order_items.payout_id и modified_at

type OrderModel struct {
	OrderID    string    `gorm:"column:order_id;primaryKey;type:varchar(64)"`
	Status     string    `gorm:"type:varchar(32);index"`
	CreationAt time.Time `gorm:"column:creation_at;index"`
	ModifiedAt time.Time
}

func (OrderModel) TableName() string {
	return "orders"
}

type OrderItemModel struct {
	OrderItemID        string `gorm:"column:order_item_id;primaryKey;type:varchar(64)"`
	OrderID            string `gorm:"type:varchar(64);index"`
	InventoryID        string `gorm:"type:varchar(64)"`
	Quantity           int64
	LinkID             *string          `gorm:"type:varchar(64);index"`
	PayoutID           *string          `gorm:"type:varchar(64);index"`
	TierCommissionRate *decimal.Decimal `gorm:"type:decimal(5,2)"`
	ModifiedAt         time.Time
}

func (OrderItemModel) TableName() string {
	return "order_items"
}

type ProductModel struct {
	ProductID      string `gorm:"column:product_id;primaryKey;type:varchar(64)"`
	ProductName    string
	CommissionRate *decimal.Decimal `gorm:"type:decimal(5,2)"`
}

func (ProductModel) TableName() string {
	return "products"
}

type ProductInventoryModel struct {
	InventoryID string           `gorm:"column:inventory_id;primaryKey;type:varchar(64)"`
	ProductID   string           `gorm:"type:varchar(64);index"`
	Price       *decimal.Decimal `gorm:"type:decimal(18,2)"`
}

func (ProductInventoryModel) TableName() string {
	return "product_inventories"
}

type UserModel struct {
	UserID    string `gorm:"column:user_id;primaryKey;type:varchar(64)"`
	Username  string
	Email     string
	FirstName string
	LastName  string
	PhoneNum  string
}

func (UserModel) TableName() string {
	return "users"
}

type InfluencerTierModel struct {
	TierID         string `gorm:"column:tier_id;primaryKey;type:varchar(64)"`
	TierName       string
	CommissionRate decimal.Decimal `gorm:"type:decimal(5,2)"`
}

func (InfluencerTierModel) TableName() string {
	return "influencer_tiers"
}

type InfluencerModel struct {
	InfluencerID string  `gorm:"column:influencer_id;primaryKey;type:varchar(64)"`
	UserID       string  `gorm:"type:varchar(64);index"`
	TierID       *string `gorm:"type:varchar(64)"`
	CreatedAt    time.Time
}

func (InfluencerModel) TableName() string {
	return "influencers"
}

type AffiliateLinkModel struct {
	LinkID       string `gorm:"column:link_id;primaryKey;type:varchar(64)"`
	InfluencerID string `gorm:"type:varchar(64);index"`
	ProductID    string `gorm:"type:varchar(64)"`
	CreatedAt    time.Time
}

func (AffiliateLinkModel) TableName() string {
	return "influencer_affiliate_links"
}

// AffiliateLinkRow - ссылка вместе со ставкой товара; ProductID пуст, если товара нет
type AffiliateLinkRow struct {
	LinkID       string
	InfluencerID string
	ProductID    *string
	ProductRate  *decimal.Decimal
	CreatedAt    time.Time
}

// LedgerItemRow - строка выборки позиций заказа со всеми связями
type LedgerItemRow struct {
	OrderItemID      string
	OrderID          string
	OrderStatus      string
	OrderCreatedAt   time.Time
	Quantity         int64
	UnitPrice        *decimal.Decimal
	LinkID           *string
	ProductID        *string
	ProductName      *string
	ProductRate      *decimal.Decimal
	TierRateSnapshot *decimal.Decimal
	PayoutID         *string
	InfluencerID     *string
	Username         *string
	Email            *string
	FirstName        *string
	LastName         *string
	PhoneNum         *string
	TierID           *string
	TierName         *string
	TierRate         *decimal.Decimal
}
