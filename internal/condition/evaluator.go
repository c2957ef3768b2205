package condition

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gyaneshwarpardhi/promoengine/internal/domain"
)

// DetailNotFound prefixes the detail of any condition that references unknown master data.
const DetailNotFound = "referenced id not found"

// Outcome is the verdict of one condition against one order.
type Outcome struct {
	Passed bool
	Detail string
}

// Evaluate dispatches c to its kind-specific evaluator.
// Business mismatches yield Passed=false; only structural data problems return an error.
func Evaluate(c Condition, o *domain.Order, ctx *Context) (Outcome, error) {
	switch cond := c.(type) {
	case DateRange:
		return cond.Evaluate(o, ctx)
	case CustomerHierarchy:
		return cond.Evaluate(o, ctx)
	case ProductHierarchy:
		return cond.Evaluate(o, ctx)
	case ProductPurchase:
		return cond.Evaluate(o, ctx)
	case TotalOrderValue:
		return cond.Evaluate(o, ctx)
	case TotalOrderQuantity:
		return cond.Evaluate(o, ctx)
	default:
		return Outcome{}, fmt.Errorf("unknown condition type %T: %w", c, domain.ErrInvalidConfiguration)
	}
}

// Evaluate checks the order date against the inclusive day range.
func (c DateRange) Evaluate(o *domain.Order, _ *Context) (Outcome, error) {
	day := calendarDay(o.Date)
	rng := fmt.Sprintf("%s..%s", c.start.Format(time.DateOnly), c.end.Format(time.DateOnly))
	if day.Before(c.start) || day.After(c.end) {
		return fail("order date %s outside %s", day.Format(time.DateOnly), rng), nil
	}
	return pass("order date %s within %s", day.Format(time.DateOnly), rng), nil
}

// Evaluate checks that the order's distributor sits under any target.
func (c CustomerHierarchy) Evaluate(o *domain.Order, ctx *Context) (Outcome, error) {
	org := ctx.org()
	dist := ctx.Distributor(o)
	if dist == "" {
		return notFound("(no distributor)"), nil
	}
	if !org.Has(dist) {
		return notFound(dist), nil
	}
	if missing := org.Missing(c.targets); len(missing) > 0 {
		return notFound(missing...), nil
	}
	target, ok, err := org.IsDescendantOfAny(dist, c.targets)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s: distributor %s: %w", c.Kind(), dist, err)
	}
	if !ok {
		return fail("distributor %s not under %s", dist, formatIDs(c.targets)), nil
	}
	return pass("distributor %s under %s", dist, target), nil
}

// Evaluate checks that at least one line's product sits under any target.
func (c ProductHierarchy) Evaluate(o *domain.Order, ctx *Context) (Outcome, error) {
	if missing := MissingProducts(ctx, c.targets); len(missing) > 0 {
		return notFound(missing...), nil
	}
	lines, err := ScopedLines(o, ctx, c.targets)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s: %w", c.Kind(), err)
	}
	if len(lines) == 0 {
		return fail("0 of %d lines under %s", len(o.Items), formatIDs(c.targets)), nil
	}
	return pass("%d of %d lines under %s", len(lines), len(o.Items), formatIDs(c.targets)), nil
}

// Evaluate checks the purchased quantity of a single product.
func (c ProductPurchase) Evaluate(o *domain.Order, ctx *Context) (Outcome, error) {
	if missing := MissingProducts(ctx, []string{c.productID}); len(missing) > 0 {
		return notFound(missing...), nil
	}
	qty := o.QuantityOf(c.productID)
	return threshold(fmt.Sprintf("quantity of %s %d", c.productID, qty), qty >= c.minQuantity,
		fmt.Sprintf("%d", c.minQuantity)), nil
}

// Evaluate checks the summed value of the in-scope lines.
func (c TotalOrderValue) Evaluate(o *domain.Order, ctx *Context) (Outcome, error) {
	if missing := MissingProducts(ctx, c.scope); len(missing) > 0 {
		return notFound(missing...), nil
	}
	lines, err := ScopedLines(o, ctx, c.scope)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s: %w", c.Kind(), err)
	}
	value := decimal.Zero
	for _, li := range lines {
		value = value.Add(li.Subtotal())
	}
	label := "order value" + scopeSuffix(c.scope) + " " + domain.FormatMoney(value)
	return threshold(label, value.GreaterThanOrEqual(c.minValue), domain.FormatMoney(c.minValue)), nil
}

// Evaluate checks the summed quantity of the in-scope lines.
func (c TotalOrderQuantity) Evaluate(o *domain.Order, ctx *Context) (Outcome, error) {
	if missing := MissingProducts(ctx, c.scope); len(missing) > 0 {
		return notFound(missing...), nil
	}
	lines, err := ScopedLines(o, ctx, c.scope)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s: %w", c.Kind(), err)
	}
	var qty int64
	for _, li := range lines {
		qty += li.Quantity
	}
	label := fmt.Sprintf("order quantity%s %d", scopeSuffix(c.scope), qty)
	return threshold(label, qty >= c.minQuantity, fmt.Sprintf("%d", c.minQuantity)), nil
}

// threshold renders "<label> >= <min>: pass" or "<label> < <min>: fail".
func threshold(label string, ok bool, limit string) Outcome {
	if ok {
		return pass("%s >= %s", label, limit)
	}
	return fail("%s < %s", label, limit)
}

func pass(format string, args ...interface{}) Outcome {
	return Outcome{Passed: true, Detail: fmt.Sprintf(format, args...) + ": pass"}
}

func fail(format string, args ...interface{}) Outcome {
	return Outcome{Passed: false, Detail: fmt.Sprintf(format, args...) + ": fail"}
}

func notFound(ids ...string) Outcome {
	return Outcome{Passed: false, Detail: DetailNotFound + ": " + strings.Join(ids, ", ")}
}
