package condition

import (
	"github.com/shopspring/decimal"

	"github.com/gyaneshwarpardhi/promoengine/internal/domain"
	"github.com/gyaneshwarpardhi/promoengine/internal/hierarchy"
)

// Context carries the read-only master data one evaluation runs against.
type Context struct {
	Org      *hierarchy.Forest
	Products *hierarchy.Forest
	Prices   domain.PriceLookup

	// DistributorID overrides Order.DistributorID when set.
	DistributorID string
}

// Distributor returns the distributor the order is attributed to.
func (c *Context) Distributor(o *domain.Order) string {
	if c != nil && c.DistributorID != "" {
		return c.DistributorID
	}
	return o.DistributorID
}

// UnitPrice looks a product up in the price list.
func (c *Context) UnitPrice(productID string) (decimal.Decimal, bool) {
	if c == nil || c.Prices == nil {
		return decimal.Zero, false
	}
	return c.Prices.UnitPrice(productID)
}

func (c *Context) products() *hierarchy.Forest {
	if c == nil {
		return nil
	}
	return c.Products
}

func (c *Context) org() *hierarchy.Forest {
	if c == nil {
		return nil
	}
	return c.Org
}

// ScopedLines returns the order lines whose product lies under any scope id.
// An empty scope returns every line.
func ScopedLines(o *domain.Order, ctx *Context, scope []string) ([]domain.LineItem, error) {
	if len(scope) == 0 {
		return o.Items, nil
	}
	products := ctx.products()
	var out []domain.LineItem
	for _, li := range o.Items {
		ok, err := products.Matches(li.ProductID, scope)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, li)
		}
	}
	return out, nil
}

// MissingProducts returns the scope ids absent from the product hierarchy.
func MissingProducts(ctx *Context, ids []string) []string {
	return ctx.products().Missing(ids)
}
