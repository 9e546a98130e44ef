package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// DefaultFulfilledStatuses - статусы заказа, после которых комиссия KOL считается заработанной
func DefaultFulfilledStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusDelivered, OrderStatusCompleted}
}

// OrderItem is one line of an order as stored by the storefront ledger.
// PayoutID is nil until the item is attached to a payout and never changes afterwards.
type OrderItem struct {
	ID               string
	OrderID          string
	InventoryID      string
	Quantity         int64
	LinkID           *string
	PayoutID         *string
	TierRateSnapshot *decimal.Decimal
	ModifiedAt       time.Time
}

// LedgerItem is the read model joined from order, inventory, affiliate link,
// product, influencer and tier rows. Pointer fields are nil when the joined
// row is missing.
type LedgerItem struct {
	OrderItemID      string
	OrderID          string
	OrderStatus      OrderStatus
	OrderCreatedAt   time.Time
	Quantity         int64
	UnitPrice        *decimal.Decimal
	LinkID           string
	ProductID        string
	ProductName      string
	ProductRate      *decimal.Decimal
	TierRateSnapshot *decimal.Decimal
	PayoutID         *string
	Influencer       InfluencerProfile
}
