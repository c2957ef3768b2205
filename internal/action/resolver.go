package action

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gyaneshwarpardhi/promoengine/internal/condition"
	"github.com/gyaneshwarpardhi/promoengine/internal/domain"
)

const (
	DetailNoMatchingLines  = "no matching lines"
	DetailBundleIncomplete = "not all bundle products present"
)

// ResolvedAction is the concrete effect of one action on one order.
// NumericEffect is the monetary benefit to the buyer, rounded to 2 dp.
type ResolvedAction struct {
	Kind          Kind            `json:"kind"`
	Description   string          `json:"description"`
	NumericEffect decimal.Decimal `json:"numeric_effect"`
}

// Resolve dispatches a to its kind-specific resolver. The order is never mutated.
func Resolve(a Action, o *domain.Order, ctx *condition.Context) (ResolvedAction, error) {
	switch act := a.(type) {
	case PercentageDiscount:
		return act.Resolve(o, ctx)
	case FixedDiscount:
		return act.Resolve(o, ctx)
	case FreeProduct:
		return act.Resolve(o, ctx)
	case BundlePrice:
		return act.Resolve(o, ctx)
	default:
		return ResolvedAction{}, fmt.Errorf("unknown action type %T: %w", a, domain.ErrInvalidConfiguration)
	}
}

// Resolve sums percent of every in-scope line subtotal.
func (a PercentageDiscount) Resolve(o *domain.Order, ctx *condition.Context) (ResolvedAction, error) {
	lines, res, err := scoped(a, o, ctx)
	if err != nil || res != nil {
		return deref(res), err
	}
	base := decimal.Zero
	for _, li := range lines {
		base = base.Add(li.Subtotal())
	}
	effect := decimal.Min(base.Mul(a.percent).Div(hundred), base)
	return effected(a, effect, "%s%% of %s%s = %s",
		a.percent, domain.FormatMoney(base), scopeSuffix(a.scope), domain.FormatMoney(effect.RoundFloor(2))), nil
}

// Resolve clamps the flat amount to the in-scope order value.
func (a FixedDiscount) Resolve(o *domain.Order, ctx *condition.Context) (ResolvedAction, error) {
	lines, res, err := scoped(a, o, ctx)
	if err != nil || res != nil {
		return deref(res), err
	}
	base := decimal.Zero
	for _, li := range lines {
		base = base.Add(li.Subtotal())
	}
	if a.amount.GreaterThan(base) {
		return effected(a, base, "%s off clamped to order value %s%s",
			domain.FormatMoney(a.amount), domain.FormatMoney(base), scopeSuffix(a.scope)), nil
	}
	return effected(a, a.amount, "%s off%s", domain.FormatMoney(a.amount), scopeSuffix(a.scope)), nil
}

// Resolve values the gift at the looked-up unit price.
func (a FreeProduct) Resolve(o *domain.Order, ctx *condition.Context) (ResolvedAction, error) {
	_, res, err := scoped(a, o, ctx)
	if err != nil || res != nil {
		return deref(res), err
	}
	price, ok := ctx.UnitPrice(a.productID)
	if !ok {
		return zero(a, "%s: price of %s", condition.DetailNotFound, a.productID), nil
	}
	value := price.Mul(decimal.NewFromInt(a.quantity))
	return effected(a, value, "%d x %s free worth %s", a.quantity, a.productID, domain.FormatMoney(value)), nil
}

// Resolve credits the difference between the lines' subtotal and the bundle price.
func (a BundlePrice) Resolve(o *domain.Order, _ *condition.Context) (ResolvedAction, error) {
	var missing []string
	original := decimal.Zero
	for _, id := range a.productIDs {
		if o.QuantityOf(id) == 0 {
			missing = append(missing, id)
			continue
		}
		original = original.Add(o.SubtotalOf(id))
	}
	if len(missing) > 0 {
		return zero(a, "%s: missing %s", DetailBundleIncomplete, strings.Join(missing, ", ")), nil
	}
	effect := original.Sub(a.price)
	if effect.IsNegative() {
		effect = decimal.Zero
	}
	return effected(a, effect, "bundle %s at %s vs %s",
		formatIDs(a.productIDs), domain.FormatMoney(a.price), domain.FormatMoney(original)), nil
}

// scoped returns the in-scope lines, or a ready zero-effect result when the
// scope references unknown products or matches nothing.
func scoped(a Action, o *domain.Order, ctx *condition.Context) ([]domain.LineItem, *ResolvedAction, error) {
	scope := a.Scope()
	if missing := condition.MissingProducts(ctx, scope); len(missing) > 0 {
		r := zero(a, "%s: %s", condition.DetailNotFound, strings.Join(missing, ", "))
		return nil, &r, nil
	}
	lines, err := condition.ScopedLines(o, ctx, scope)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", a.Kind(), err)
	}
	if len(lines) == 0 {
		r := zero(a, "%s%s", DetailNoMatchingLines, scopeSuffix(scope))
		return nil, &r, nil
	}
	return lines, nil, nil
}

// effected truncates to paise so a clamped effect never rounds past its bound.
func effected(a Action, effect decimal.Decimal, format string, args ...interface{}) ResolvedAction {
	return ResolvedAction{
		Kind:          a.Kind(),
		Description:   fmt.Sprintf(format, args...),
		NumericEffect: effect.RoundFloor(2),
	}
}

func zero(a Action, format string, args ...interface{}) ResolvedAction {
	return effected(a, decimal.Zero, format, args...)
}

func deref(r *ResolvedAction) ResolvedAction {
	if r == nil {
		return ResolvedAction{}
	}
	return *r
}
