package rule

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gyaneshwarpardhi/promoengine/internal/action"
	"github.com/gyaneshwarpardhi/promoengine/internal/condition"
	"github.com/gyaneshwarpardhi/promoengine/internal/domain"
)

// Rule ANDs its conditions; when all hold, every action applies.
// A rule with no conditions is always applicable.
type Rule struct {
	ID         string
	Name       string
	Conditions []condition.Condition
	Actions    []action.Action
}

// New validates and returns a Rule. Conditions and actions are copied so the
// caller's slices can be reused.
func New(id, name string, conds []condition.Condition, acts []action.Action) (*Rule, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("rule: id is required: %w", domain.ErrInvalidConfiguration)
	}
	for i, c := range conds {
		if c == nil {
			return nil, fmt.Errorf("rule %s: conditions[%d] is nil: %w", id, i, domain.ErrInvalidConfiguration)
		}
	}
	for i, a := range acts {
		if a == nil {
			return nil, fmt.Errorf("rule %s: actions[%d] is nil: %w", id, i, domain.ErrInvalidConfiguration)
		}
	}
	r := &Rule{
		ID:         id,
		Name:       name,
		Conditions: append([]condition.Condition(nil), conds...),
		Actions:    append([]action.Action(nil), acts...),
	}
	return r, nil
}

// TraceEntry records the verdict of one condition.
type TraceEntry struct {
	ConditionKind condition.Kind `json:"condition_kind"`
	Passed        bool           `json:"passed"`
	Detail        string         `json:"detail"`
}

// Trace is ordered like the rule's conditions; it is never pruned.
type Trace []TraceEntry

// Result is the outcome of evaluating one rule against one order.
type Result struct {
	RuleID         string                  `json:"rule_id"`
	Applicable     bool                    `json:"applicable"`
	Trace          Trace                   `json:"trace"`
	AppliedActions []action.ResolvedAction `json:"applied_actions"`
}

// TotalEffect sums the numeric effect of every applied action.
func (r *Result) TotalEffect() decimal.Decimal {
	total := decimal.Zero
	for _, a := range r.AppliedActions {
		total = total.Add(a.NumericEffect)
	}
	return total
}
