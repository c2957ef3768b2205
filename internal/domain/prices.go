package domain

import "github.com/shopspring/decimal"

// PriceLookup supplies unit prices for product valuation.
type PriceLookup interface {
	UnitPrice(productID string) (decimal.Decimal, bool)
}

// PriceList is an in-memory PriceLookup keyed by product id.
type PriceList map[string]decimal.Decimal

// UnitPrice implements PriceLookup.
func (p PriceList) UnitPrice(productID string) (decimal.Decimal, bool) {
	d, ok := p[productID]
	return d, ok
}
