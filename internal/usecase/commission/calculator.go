package commission

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
)

// Input - данные одной позиции заказа для расчета комиссии
type Input struct {
	Quantity    int64
	UnitPrice   decimal.Decimal
	ProductRate decimal.Decimal // percent, 0..100
	TierRate    decimal.Decimal // percent, 0..100
}

// Breakdown is the two-part commission of one order item.
// Amounts are not rounded; callers round at the presentation boundary.
type Breakdown struct {
	ItemTotal     decimal.Decimal
	ProductRate   decimal.Decimal
	TierRate      decimal.Decimal
	ProductAmount decimal.Decimal
	TierAmount    decimal.Decimal
	TotalAmount   decimal.Decimal
}

// Calculate applies the product rate and the tier rate to the same item subtotal
// and sums both components.
func Calculate(in Input) Breakdown {
	quantity := in.Quantity
	if quantity < 0 {
		quantity = 0
	}
	price := in.UnitPrice
	if price.IsNegative() {
		price = decimal.Zero
	}
	productRate := clampRate(in.ProductRate)
	tierRate := clampRate(in.TierRate)

	itemTotal := price.Mul(decimal.NewFromInt(quantity))
	productAmount := itemTotal.Mul(productRate).Div(hundred)
	tierAmount := itemTotal.Mul(tierRate).Div(hundred)

	return Breakdown{
		ItemTotal:     itemTotal,
		ProductRate:   productRate,
		TierRate:      tierRate,
		ProductAmount: productAmount,
		TierAmount:    tierAmount,
		TotalAmount:   productAmount.Add(tierAmount),
	}
}

// RateOrZero dereferences an optional rate; missing rates count as 0.
func RateOrZero(rate *decimal.Decimal) decimal.Decimal {
	if rate == nil {
		return decimal.Zero
	}
	return *rate
}

func clampRate(rate decimal.Decimal) decimal.Decimal {
	if rate.IsNegative() {
		return decimal.Zero
	}
	if rate.GreaterThan(hundred) {
		return hundred
	}
	return rate
}

// Combination decides how product and tier rates form one "effective" rate
// in read-only sales reports. Payout generation always uses Calculate.
type Combination string

const (
	Additive     Combination = "additive"
	ProductFirst Combination = "product_first"
	Maximum      Combination = "max"
)

func ParseCombination(raw string) (Combination, error) {
	switch Combination(strings.ToLower(strings.TrimSpace(raw))) {
	case "", Additive:
		return Additive, nil
	case ProductFirst:
		return ProductFirst, nil
	case Maximum:
		return Maximum, nil
	default:
		return "", fmt.Errorf("unknown rate combination %q", raw)
	}
}

// EffectiveRate returns the single rate a sales report applies to an item total.
// ProductFirst reproduces the storefront's legacy stats view: the product rate
// wins whenever it is set, otherwise the tier rate applies. Maximum takes the
// larger of the two.
func EffectiveRate(productRate, tierRate decimal.Decimal, combination Combination) decimal.Decimal {
	productRate = clampRate(productRate)
	tierRate = clampRate(tierRate)
	switch combination {
	case ProductFirst:
		if productRate.IsPositive() {
			return productRate
		}
		return tierRate
	case Maximum:
		return decimal.Max(productRate, tierRate)
	}
	return productRate.Add(tierRate)
}

// Round2 rounds a monetary amount for presentation and persistence.
func Round2(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}
