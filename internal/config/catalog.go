package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gyaneshwarpardhi/promoengine/internal/action"
	"github.com/gyaneshwarpardhi/promoengine/internal/condition"
	"github.com/gyaneshwarpardhi/promoengine/internal/domain"
	"github.com/gyaneshwarpardhi/promoengine/internal/hierarchy"
	"github.com/gyaneshwarpardhi/promoengine/internal/promotion"
	"github.com/gyaneshwarpardhi/promoengine/internal/rule"
)

// Catalog is the immutable, decoded form of a CatalogConfig: master data plus
// the enabled promotions in file order. A reload builds a new Catalog.
type Catalog struct {
	Version    string
	Org        *hierarchy.Forest
	Products   *hierarchy.Forest
	Prices     domain.PriceList
	Promotions []*promotion.Promotion
	Policy     promotion.Policy

	byID     map[string]*promotion.Promotion
	disabled int
}

// Registries bundles the decoders used to turn definitions into typed values.
type Registries struct {
	Conditions *condition.Registry
	Actions    *action.Registry
}

// DefaultRegistries returns the built-in condition and action decoders.
func DefaultRegistries() Registries {
	return Registries{Conditions: condition.DefaultRegistry(), Actions: action.DefaultRegistry()}
}

// Build decodes cfg into a Catalog. Every hierarchy node is walked once so a
// cyclic or dangling snapshot is rejected here instead of on a live request.
// All problems are reported together.
func Build(cfg *CatalogConfig, reg Registries) (*Catalog, error) {
	var errs []string
	fail := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	policy, err := promotion.ParsePolicy(cfg.Engine.SelectionPolicy)
	if err != nil {
		fail("engine: %v", err)
	}

	org := buildForest("organization", cfg.Hierarchies.Organization, fail)
	products := buildForest("products", cfg.Hierarchies.Products, fail)

	prices := make(domain.PriceList, len(cfg.Prices))
	for _, id := range sortedKeys(cfg.Prices) {
		price, err := cfg.Prices.Decimal(id)
		switch {
		case err != nil:
			fail("prices: %v", err)
		case price.IsNegative():
			fail("prices: %s must not be negative", id)
		default:
			prices[id] = price
		}
	}

	cat := &Catalog{
		Version:  cfg.Version,
		Org:      org,
		Products: products,
		Prices:   prices,
		Policy:   policy,
		byID:     make(map[string]*promotion.Promotion),
	}
	for _, def := range cfg.Promotions {
		p, err := buildPromotion(def, reg)
		if err != nil {
			fail("%v", err)
			continue
		}
		if !def.Enabled {
			cat.disabled++
			continue
		}
		cat.Promotions = append(cat.Promotions, p)
		cat.byID[p.ID] = p
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: catalog build errors:\n  - %s", domain.ErrInvalidConfiguration, strings.Join(errs, "\n  - "))
	}
	return cat, nil
}

func buildForest(name string, nodes []hierarchy.Node, fail func(string, ...interface{})) *hierarchy.Forest {
	f, err := hierarchy.NewForest(nodes)
	if err != nil {
		fail("hierarchies.%s: %v", name, err)
		return nil
	}
	for _, n := range nodes {
		if _, err := f.AncestorsOf(n.ID); err != nil {
			fail("hierarchies.%s: %v", name, err)
		}
	}
	return f
}

func buildPromotion(def PromotionDef, reg Registries) (*promotion.Promotion, error) {
	var problems []string
	conds := make([]condition.Condition, 0, len(def.Rule.Conditions))
	for i, d := range def.Rule.Conditions {
		c, err := reg.Conditions.Decode(d.Type, d.Params)
		if err != nil {
			problems = append(problems, fmt.Sprintf("conditions[%d]: %v", i, err))
			continue
		}
		conds = append(conds, c)
	}
	acts := make([]action.Action, 0, len(def.Rule.Actions))
	for i, d := range def.Rule.Actions {
		a, err := reg.Actions.Decode(d.Type, d.Params)
		if err != nil {
			problems = append(problems, fmt.Sprintf("actions[%d]: %v", i, err))
			continue
		}
		acts = append(acts, a)
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("promotion %s: %s", def.ID, strings.Join(problems, "; "))
	}

	r, err := rule.New(def.Rule.ID, def.Rule.Name, conds, acts)
	if err != nil {
		return nil, fmt.Errorf("promotion %s: %w", def.ID, err)
	}
	return promotion.New(def.ID, def.Name, r)
}

// Context returns an evaluation context over the catalog's master data.
func (c *Catalog) Context() *condition.Context {
	return &condition.Context{Org: c.Org, Products: c.Products, Prices: c.Prices}
}

// Promotion looks up an enabled promotion by id.
func (c *Catalog) Promotion(id string) (*promotion.Promotion, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// Candidates returns the promotions named by ids, in the given order, or every
// enabled promotion when ids is empty. Unknown ids fail with domain.ErrNotFound.
func (c *Catalog) Candidates(ids []string) ([]*promotion.Promotion, error) {
	if len(ids) == 0 {
		return c.Promotions, nil
	}
	out := make([]*promotion.Promotion, 0, len(ids))
	var missing []string
	for _, id := range ids {
		p, ok := c.byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		out = append(out, p)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("promotions %s: %w", strings.Join(missing, ", "), domain.ErrNotFound)
	}
	return out, nil
}

// Disabled returns how many promotions were skipped because enabled is false.
func (c *Catalog) Disabled() int { return c.disabled }

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
