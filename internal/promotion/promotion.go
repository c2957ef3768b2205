// Package promotion picks the single best promotion for an order among
// candidate promotions, each backed by one rule.
package promotion

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gyaneshwarpardhi/promoengine/internal/action"
	"github.com/gyaneshwarpardhi/promoengine/internal/condition"
	"github.com/gyaneshwarpardhi/promoengine/internal/domain"
	"github.com/gyaneshwarpardhi/promoengine/internal/hierarchy"
	"github.com/gyaneshwarpardhi/promoengine/internal/rule"
)

// Promotion is a named, selectable rule.
type Promotion struct {
	ID   string
	Name string
	Rule *rule.Rule
}

// New validates and returns a Promotion.
func New(id, name string, r *rule.Rule) (*Promotion, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("promotion: id is required: %w", domain.ErrInvalidConfiguration)
	}
	if r == nil {
		return nil, fmt.Errorf("promotion %s: rule is required: %w", id, domain.ErrInvalidConfiguration)
	}
	return &Promotion{ID: id, Name: name, Rule: r}, nil
}

// Policy decides how applicable promotions are ranked.
type Policy string

const (
	// PolicyGreatestEffect ranks by total numeric effect, then narrowest
	// coverage, then smallest id.
	PolicyGreatestEffect Policy = "greatest_effect"
	// PolicyGreatestPercent ranks by the highest single percentage discount
	// first and falls back to PolicyGreatestEffect.
	PolicyGreatestPercent Policy = "greatest_percent"
)

// DefaultPolicy is used when no policy is configured.
const DefaultPolicy = PolicyGreatestEffect

// ParsePolicy maps a configured name to a Policy. Empty means DefaultPolicy.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.TrimSpace(s)); p {
	case "":
		return DefaultPolicy, nil
	case PolicyGreatestEffect, PolicyGreatestPercent:
		return p, nil
	default:
		return "", fmt.Errorf("unknown selection policy %q: %w", s, domain.ErrInvalidConfiguration)
	}
}

// Coverage measures how broad a promotion's targeting is: the number of
// organization nodes its customer conditions reach plus the number of product
// nodes its product conditions and action scopes reach. A dimension the
// promotion does not target counts as the whole forest.
func Coverage(p *Promotion, ctx *condition.Context) int {
	var orgIDs, productIDs []string
	for _, c := range p.Rule.Conditions {
		switch cond := c.(type) {
		case condition.CustomerHierarchy:
			orgIDs = append(orgIDs, cond.Targets()...)
		case condition.ProductHierarchy:
			productIDs = append(productIDs, cond.Targets()...)
		case condition.ProductPurchase:
			productIDs = append(productIDs, cond.ProductID())
		case condition.TotalOrderValue:
			productIDs = append(productIDs, cond.Scope()...)
		case condition.TotalOrderQuantity:
			productIDs = append(productIDs, cond.Scope()...)
		}
	}
	for _, a := range p.Rule.Actions {
		productIDs = append(productIDs, a.Scope()...)
	}

	if ctx == nil {
		ctx = &condition.Context{}
	}
	return dimension(ctx.Org, orgIDs) + dimension(ctx.Products, productIDs)
}

// maxPercent is the highest percentage discount among p's actions, or zero.
func maxPercent(p *Promotion) decimal.Decimal {
	pct := decimal.Zero
	for _, a := range p.Rule.Actions {
		if pd, ok := a.(action.PercentageDiscount); ok && pd.Percent().GreaterThan(pct) {
			pct = pd.Percent()
		}
	}
	return pct
}

func dimension(f *hierarchy.Forest, ids []string) int {
	if len(ids) == 0 {
		return f.Len()
	}
	return f.CoverageOf(ids)
}
