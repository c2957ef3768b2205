package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Order is the canonical input model for promotion evaluation.
type Order struct {
	ID            string     `json:"id"`
	DistributorID string     `json:"distributor_id"`
	Date          time.Time  `json:"date"`
	Items         []LineItem `json:"items"`
}

// LineItem is a single product line of an order.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Subtotal returns quantity * unit price.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(li.Quantity))
}

// Validate checks that the order can be considered for promotion.
func (o *Order) Validate() error {
	if len(o.Items) == 0 {
		return fmt.Errorf("order %s: items must not be empty: %w", o.ID, ErrInvalidConfiguration)
	}
	for i, li := range o.Items {
		if li.ProductID == "" {
			return fmt.Errorf("order %s: items[%d]: product_id is required: %w", o.ID, i, ErrInvalidConfiguration)
		}
		if li.Quantity <= 0 {
			return fmt.Errorf("order %s: items[%d]: quantity must be > 0, got %d: %w", o.ID, i, li.Quantity, ErrInvalidConfiguration)
		}
		if li.UnitPrice.IsNegative() {
			return fmt.Errorf("order %s: items[%d]: unit_price must be >= 0, got %s: %w", o.ID, i, li.UnitPrice, ErrInvalidConfiguration)
		}
	}
	return nil
}

// Total sums the subtotals of every line.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, li := range o.Items {
		total = total.Add(li.Subtotal())
	}
	return total
}

// QuantityOf sums the quantities of all lines for productID.
func (o *Order) QuantityOf(productID string) int64 {
	var n int64
	for _, li := range o.Items {
		if li.ProductID == productID {
			n += li.Quantity
		}
	}
	return n
}

// SubtotalOf sums the subtotals of all lines for productID.
func (o *Order) SubtotalOf(productID string) decimal.Decimal {
	total := decimal.Zero
	for _, li := range o.Items {
		if li.ProductID == productID {
			total = total.Add(li.Subtotal())
		}
	}
	return total
}

// FormatMoney renders an amount without trailing zeros, e.g. "45000" or "12.5".
func FormatMoney(d decimal.Decimal) string {
	return d.String()
}
