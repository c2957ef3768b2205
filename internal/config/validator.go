package config

import (
	"fmt"
	"strings"

	"github.com/gyaneshwarpardhi/promoengine/internal/domain"
	"github.com/gyaneshwarpardhi/promoengine/internal/hierarchy"
	"github.com/gyaneshwarpardhi/promoengine/internal/promotion"
)

// Validate checks the catalog for:
//   - Required fields on nodes, promotions, rules and definitions
//   - Duplicate ids across hierarchy nodes, promotions and rules
//   - Known selection policy and sane engine settings
//
// Every problem is reported in one error. Parameter-level checks happen in Build,
// where each definition is decoded by its registry.
func Validate(cfg *CatalogConfig) error {
	if cfg.Version == "" {
		return fmt.Errorf("config: version is required: %w", domain.ErrInvalidConfiguration)
	}
	var errs []string

	if _, err := promotion.ParsePolicy(cfg.Engine.SelectionPolicy); err != nil {
		errs = append(errs, fmt.Sprintf("engine: %v", err))
	}
	if cfg.Engine.RequestWorkers < 0 || cfg.Engine.QueueDepth < 0 || cfg.Engine.EvaluationConcurrency < 0 {
		errs = append(errs, "engine: worker, queue and concurrency settings must not be negative")
	}

	validateNodes("organization", cfg.Hierarchies.Organization, &errs)
	validateNodes("products", cfg.Hierarchies.Products, &errs)

	for id := range cfg.Prices {
		if strings.TrimSpace(id) == "" {
			errs = append(errs, "prices: empty product id")
		}
	}

	ids := make(map[string]string) // id → location
	for i, p := range cfg.Promotions {
		if p.ID == "" {
			errs = append(errs, fmt.Sprintf("promotions[%d]: id is required", i))
			continue
		}
		loc := fmt.Sprintf("promotion %s", p.ID)
		claim(ids, p.ID, loc, &errs)
		if p.Rule.ID == "" {
			errs = append(errs, fmt.Sprintf("%s: rule.id is required", loc))
		} else if p.Rule.ID != p.ID {
			claim(ids, p.Rule.ID, fmt.Sprintf("rule %s", p.Rule.ID), &errs)
		}
		validateDefs(loc, "conditions", p.Rule.Conditions, &errs)
		validateDefs(loc, "actions", p.Rule.Actions, &errs)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: config validation errors:\n  - %s", domain.ErrInvalidConfiguration, strings.Join(errs, "\n  - "))
	}
	return nil
}

func claim(ids map[string]string, id, loc string, errs *[]string) {
	if prev, ok := ids[id]; ok {
		*errs = append(*errs, fmt.Sprintf("duplicate id %q (first seen at %s, again at %s)", id, prev, loc))
		return
	}
	ids[id] = loc
}

func validateNodes(name string, nodes []hierarchy.Node, errs *[]string) {
	seen := make(map[string]struct{}, len(nodes))
	for i, n := range nodes {
		if n.ID == "" {
			*errs = append(*errs, fmt.Sprintf("hierarchies.%s[%d]: id is required", name, i))
			continue
		}
		if _, dup := seen[n.ID]; dup {
			*errs = append(*errs, fmt.Sprintf("hierarchies.%s: duplicate node id %q", name, n.ID))
		}
		seen[n.ID] = struct{}{}
	}
}

func validateDefs(parent, field string, defs []Def, errs *[]string) {
	for j, d := range defs {
		if d.Type == "" {
			*errs = append(*errs, fmt.Sprintf("%s.%s[%d]: type is required", parent, field, j))
		}
	}
}
