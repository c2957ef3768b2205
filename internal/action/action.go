package action

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gyaneshwarpardhi/promoengine/internal/domain"
)

// Kind discriminates the action variants.
type Kind string

const (
	KindPercentageDiscount Kind = "percentage_discount"
	KindFixedDiscount      Kind = "fixed_discount"
	KindFreeProduct        Kind = "free_product"
	KindBundlePrice        Kind = "bundle_price"
)

var hundred = decimal.NewFromInt(100)

// Action is the closed set of effects a rule can grant.
// Every variant may carry a product-hierarchy scope; an empty scope means the whole order.
type Action interface {
	Kind() Kind
	Scope() []string
	String() string
	sealed()
}

// PercentageDiscount takes Percent off every in-scope line.
type PercentageDiscount struct {
	percent decimal.Decimal
	scope   []string
}

// NewPercentageDiscount requires percent in (0, 100].
func NewPercentageDiscount(percent decimal.Decimal, scope ...string) (PercentageDiscount, error) {
	if !percent.IsPositive() || percent.GreaterThan(hundred) {
		return PercentageDiscount{}, fmt.Errorf("percentage_discount: percent must be in (0,100], got %s: %w", percent, domain.ErrInvalidConfiguration)
	}
	ids, err := validIDs(KindPercentageDiscount, "scope", scope, true)
	if err != nil {
		return PercentageDiscount{}, err
	}
	return PercentageDiscount{percent: percent, scope: ids}, nil
}

func (PercentageDiscount) Kind() Kind                 { return KindPercentageDiscount }
func (PercentageDiscount) sealed()                    {}
func (a PercentageDiscount) Percent() decimal.Decimal { return a.percent }
func (a PercentageDiscount) Scope() []string          { return cloneIDs(a.scope) }
func (a PercentageDiscount) String() string {
	return a.percent.String() + "% off" + scopeSuffix(a.scope)
}

// FixedDiscount takes a flat Amount off, never more than the in-scope value.
type FixedDiscount struct {
	amount decimal.Decimal
	scope  []string
}

// NewFixedDiscount rejects a negative amount and empty scope ids.
func NewFixedDiscount(amount decimal.Decimal, scope ...string) (FixedDiscount, error) {
	if amount.IsNegative() {
		return FixedDiscount{}, fmt.Errorf("fixed_discount: amount must be >= 0, got %s: %w", amount, domain.ErrInvalidConfiguration)
	}
	ids, err := validIDs(KindFixedDiscount, "scope", scope, true)
	if err != nil {
		return FixedDiscount{}, err
	}
	return FixedDiscount{amount: amount, scope: ids}, nil
}

func (FixedDiscount) Kind() Kind                { return KindFixedDiscount }
func (FixedDiscount) sealed()                   {}
func (a FixedDiscount) Amount() decimal.Decimal { return a.amount }
func (a FixedDiscount) Scope() []string         { return cloneIDs(a.scope) }
func (a FixedDiscount) String() string {
	return domain.FormatMoney(a.amount) + " off" + scopeSuffix(a.scope)
}

// FreeProduct gives Quantity units of ProductID away.
// A non-empty scope requires at least one in-scope line for the gift to apply.
type FreeProduct struct {
	productID string
	quantity  int64
	scope     []string
}

// NewFreeProduct requires a product id and a quantity of at least 1.
func NewFreeProduct(productID string, quantity int64, scope ...string) (FreeProduct, error) {
	if strings.TrimSpace(productID) == "" {
		return FreeProduct{}, fmt.Errorf("free_product: product_id is required: %w", domain.ErrInvalidConfiguration)
	}
	if quantity < 1 {
		return FreeProduct{}, fmt.Errorf("free_product: quantity must be >= 1, got %d: %w", quantity, domain.ErrInvalidConfiguration)
	}
	ids, err := validIDs(KindFreeProduct, "scope", scope, true)
	if err != nil {
		return FreeProduct{}, err
	}
	return FreeProduct{productID: productID, quantity: quantity, scope: ids}, nil
}

func (FreeProduct) Kind() Kind          { return KindFreeProduct }
func (FreeProduct) sealed()             {}
func (a FreeProduct) ProductID() string { return a.productID }
func (a FreeProduct) Quantity() int64   { return a.quantity }
func (a FreeProduct) Scope() []string   { return cloneIDs(a.scope) }
func (a FreeProduct) String() string {
	return fmt.Sprintf("%d x %s free%s", a.quantity, a.productID, scopeSuffix(a.scope))
}

// BundlePrice sells ProductIDs together for Price when all of them are ordered.
type BundlePrice struct {
	productIDs []string
	price      decimal.Decimal
}

// NewBundlePrice requires a non-negative price and at least one distinct product id.
func NewBundlePrice(price decimal.Decimal, productIDs ...string) (BundlePrice, error) {
	if price.IsNegative() {
		return BundlePrice{}, fmt.Errorf("bundle_price: price must be >= 0, got %s: %w", price, domain.ErrInvalidConfiguration)
	}
	ids, err := validIDs(KindBundlePrice, "product_ids", productIDs, false)
	if err != nil {
		return BundlePrice{}, err
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return BundlePrice{}, fmt.Errorf("bundle_price: duplicate product %q: %w", id, domain.ErrInvalidConfiguration)
		}
		seen[id] = struct{}{}
	}
	return BundlePrice{productIDs: ids, price: price}, nil
}

func (BundlePrice) Kind() Kind               { return KindBundlePrice }
func (BundlePrice) sealed()                  {}
func (a BundlePrice) Price() decimal.Decimal { return a.price }
func (a BundlePrice) ProductIDs() []string   { return cloneIDs(a.productIDs) }

// Scope of a bundle is its product list.
func (a BundlePrice) Scope() []string { return cloneIDs(a.productIDs) }
func (a BundlePrice) String() string {
	return "bundle " + formatIDs(a.productIDs) + " at " + domain.FormatMoney(a.price)
}

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
