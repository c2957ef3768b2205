package config

import (
	"github.com/gyaneshwarpardhi/promoengine/internal/hierarchy"
	"github.com/gyaneshwarpardhi/promoengine/internal/params"
)

// CatalogConfig is the top-level YAML structure.
type CatalogConfig struct {
	Version     string          `yaml:"version"`
	Engine      EngineConf      `yaml:"engine"`
	Hierarchies HierarchiesConf `yaml:"hierarchies"`
	// Prices maps product id to unit price. Values may be numbers or numeric strings.
	Prices     params.Params  `yaml:"prices"`
	Promotions []PromotionDef `yaml:"promotions"`
}

// EngineConf holds tunable concurrency and selection settings.
type EngineConf struct {
	RequestWorkers        int    `yaml:"request_workers"`
	QueueDepth            int    `yaml:"queue_depth"`
	RequestTimeoutMs      int    `yaml:"request_timeout_ms"`
	EvaluationConcurrency int    `yaml:"evaluation_concurrency"`
	SelectionPolicy       string `yaml:"selection_policy"`
}

// HierarchiesConf is the master-data snapshot: both forests as flat node lists.
type HierarchiesConf struct {
	Organization []hierarchy.Node `yaml:"organization"`
	Products     []hierarchy.Node `yaml:"products"`
}

// PromotionDef is one selectable promotion. Disabled promotions are loaded
// for validation but never offered as candidates.
type PromotionDef struct {
	ID      string  `yaml:"id"`
	Name    string  `yaml:"name"`
	Enabled bool    `yaml:"enabled"`
	Rule    RuleDef `yaml:"rule"`
}

// RuleDef lists conditions (ANDed) and actions in declaration order.
type RuleDef struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Conditions []Def  `yaml:"conditions"`
	Actions    []Def  `yaml:"actions"`
}

// Def is a typed condition or action; Params are decoded by the kind's registry entry.
type Def struct {
	Type   string        `yaml:"type"`
	Params params.Params `yaml:"params"`
}
