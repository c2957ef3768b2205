package condition

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gyaneshwarpardhi/promoengine/internal/domain"
)

// Kind discriminates the condition variants.
type Kind string

const (
	KindDateRange          Kind = "date_range"
	KindCustomerHierarchy  Kind = "customer_hierarchy"
	KindProductHierarchy   Kind = "product_hierarchy"
	KindProductPurchase    Kind = "product_purchase"
	KindTotalOrderValue    Kind = "total_order_value"
	KindTotalOrderQuantity Kind = "total_order_quantity"
)

// Condition is the closed set of predicates a rule can AND together.
// Values are only obtainable through the New* constructors, which validate parameters.
type Condition interface {
	Kind() Kind
	String() string
	sealed()
}

// -----------------------------------------------------------------------
// DateRange
// -----------------------------------------------------------------------

// DateRange passes when the order date falls on or between two calendar days.
type DateRange struct {
	start time.Time
	end   time.Time
}

// NewDateRange requires both days set and start not after end.
func NewDateRange(start, end time.Time) (DateRange, error) {
	if start.IsZero() || end.IsZero() {
		return DateRange{}, fmt.Errorf("date_range: start and end are required: %w", domain.ErrInvalidConfiguration)
	}
	s, e := calendarDay(start), calendarDay(end)
	if s.After(e) {
		return DateRange{}, fmt.Errorf("date_range: start %s is after end %s: %w",
			s.Format(time.DateOnly), e.Format(time.DateOnly), domain.ErrInvalidConfiguration)
	}
	return DateRange{start: s, end: e}, nil
}

func (DateRange) Kind() Kind         { return KindDateRange }
func (DateRange) sealed()            {}
func (c DateRange) Start() time.Time { return c.start }
func (c DateRange) End() time.Time   { return c.end }
func (c DateRange) String() string {
	return fmt.Sprintf("date in %s..%s", c.start.Format(time.DateOnly), c.end.Format(time.DateOnly))
}

// calendarDay drops the clock part of t's UTC date.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// -----------------------------------------------------------------------
// CustomerHierarchy
// -----------------------------------------------------------------------

// CustomerHierarchy passes when the ordering distributor sits under any target node.
type CustomerHierarchy struct {
	targets []string
}

// NewCustomerHierarchy requires at least one non-empty target id.
func NewCustomerHierarchy(targets ...string) (CustomerHierarchy, error) {
	ids, err := validIDs(KindCustomerHierarchy, "targets", targets, false)
	if err != nil {
		return CustomerHierarchy{}, err
	}
	return CustomerHierarchy{targets: ids}, nil
}

func (CustomerHierarchy) Kind() Kind          { return KindCustomerHierarchy }
func (CustomerHierarchy) sealed()             {}
func (c CustomerHierarchy) Targets() []string { return cloneIDs(c.targets) }
func (c CustomerHierarchy) String() string    { return "customer under " + formatIDs(c.targets) }

// -----------------------------------------------------------------------
// ProductHierarchy
// -----------------------------------------------------------------------

// ProductHierarchy passes when at least one order line's product sits under any target node.
type ProductHierarchy struct {
	targets []string
}

// NewProductHierarchy requires at least one non-empty target id.
func NewProductHierarchy(targets ...string) (ProductHierarchy, error) {
	ids, err := validIDs(KindProductHierarchy, "targets", targets, false)
	if err != nil {
		return ProductHierarchy{}, err
	}
	return ProductHierarchy{targets: ids}, nil
}

func (ProductHierarchy) Kind() Kind          { return KindProductHierarchy }
func (ProductHierarchy) sealed()             {}
func (c ProductHierarchy) Targets() []string { return cloneIDs(c.targets) }
func (c ProductHierarchy) String() string    { return "product under " + formatIDs(c.targets) }

// -----------------------------------------------------------------------
// ProductPurchase
// -----------------------------------------------------------------------

// ProductPurchase passes when the order buys at least MinQuantity of one product.
type ProductPurchase struct {
	productID   string
	minQuantity int64
}

// NewProductPurchase requires a product id and a minimum quantity of at least 1.
func NewProductPurchase(productID string, minQuantity int64) (ProductPurchase, error) {
	if strings.TrimSpace(productID) == "" {
		return ProductPurchase{}, fmt.Errorf("product_purchase: product_id is required: %w", domain.ErrInvalidConfiguration)
	}
	if minQuantity < 1 {
		return ProductPurchase{}, fmt.Errorf("product_purchase: min_quantity must be >= 1, got %d: %w", minQuantity, domain.ErrInvalidConfiguration)
	}
	return ProductPurchase{productID: productID, minQuantity: minQuantity}, nil
}

func (ProductPurchase) Kind() Kind           { return KindProductPurchase }
func (ProductPurchase) sealed()              {}
func (c ProductPurchase) ProductID() string  { return c.productID }
func (c ProductPurchase) MinQuantity() int64 { return c.minQuantity }
func (c ProductPurchase) String() string {
	return fmt.Sprintf("buy >= %d of %s", c.minQuantity, c.productID)
}

// -----------------------------------------------------------------------
// TotalOrderValue
// -----------------------------------------------------------------------

// TotalOrderValue passes when the summed line value reaches MinValue.
// A non-empty scope restricts the sum to lines under those product nodes.
type TotalOrderValue struct {
	minValue decimal.Decimal
	scope    []string
}

// NewTotalOrderValue rejects a negative minimum and empty scope ids.
func NewTotalOrderValue(minValue decimal.Decimal, scope ...string) (TotalOrderValue, error) {
	if minValue.IsNegative() {
		return TotalOrderValue{}, fmt.Errorf("total_order_value: min_value must be >= 0, got %s: %w", minValue, domain.ErrInvalidConfiguration)
	}
	ids, err := validIDs(KindTotalOrderValue, "scope", scope, true)
	if err != nil {
		return TotalOrderValue{}, err
	}
	return TotalOrderValue{minValue: minValue, scope: ids}, nil
}

func (TotalOrderValue) Kind() Kind                  { return KindTotalOrderValue }
func (TotalOrderValue) sealed()                     {}
func (c TotalOrderValue) MinValue() decimal.Decimal { return c.minValue }
func (c TotalOrderValue) Scope() []string           { return cloneIDs(c.scope) }
func (c TotalOrderValue) String() string {
	return "order value >= " + domain.FormatMoney(c.minValue) + scopeSuffix(c.scope)
}

// -----------------------------------------------------------------------
// TotalOrderQuantity
// -----------------------------------------------------------------------

// TotalOrderQuantity passes when the summed line quantity reaches MinQuantity.
type TotalOrderQuantity struct {
	minQuantity int64
	scope       []string
}

// NewTotalOrderQuantity requires a minimum of at least 1 and rejects empty scope ids.
func NewTotalOrderQuantity(minQuantity int64, scope ...string) (TotalOrderQuantity, error) {
	if minQuantity < 1 {
		return TotalOrderQuantity{}, fmt.Errorf("total_order_quantity: min_quantity must be >= 1, got %d: %w", minQuantity, domain.ErrInvalidConfiguration)
	}
	ids, err := validIDs(KindTotalOrderQuantity, "scope", scope, true)
	if err != nil {
		return TotalOrderQuantity{}, err
	}
	return TotalOrderQuantity{minQuantity: minQuantity, scope: ids}, nil
}

func (TotalOrderQuantity) Kind() Kind           { return KindTotalOrderQuantity }
func (TotalOrderQuantity) sealed()              {}
func (c TotalOrderQuantity) MinQuantity() int64 { return c.minQuantity }
func (c TotalOrderQuantity) Scope() []string    { return cloneIDs(c.scope) }
func (c TotalOrderQuantity) String() string {
	return fmt.Sprintf("order quantity >= %d%s", c.minQuantity, scopeSuffix(c.scope))
}

// -----------------------------------------------------------------------
// helpers
// -----------------------------------------------------------------------

func validIDs(kind Kind, field string, ids []string, allowEmpty bool) ([]string, error) {
	if len(ids) == 0 && !allowEmpty {
		return nil, fmt.Errorf("%s: %s must not be empty: %w", kind, field, domain.ErrInvalidConfiguration)
	}
	for i, id := range ids {
		if strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("%s: %s[%d] is empty: %w", kind, field, i, domain.ErrInvalidConfiguration)
		}
	}
	return cloneIDs(ids), nil
}

func cloneIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

func formatIDs(ids []string) string {
	return "[" + strings.Join(ids, " ") + "]"
}

func scopeSuffix(scope []string) string {
	if len(scope) == 0 {
		return ""
	}
	return " under " + formatIDs(scope)
}
