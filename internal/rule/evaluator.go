package rule

import (
	"fmt"

	"github.com/gyaneshwarpardhi/promoengine/internal/action"
	"github.com/gyaneshwarpardhi/promoengine/internal/condition"
	"github.com/gyaneshwarpardhi/promoengine/internal/domain"
)

// Evaluate runs every condition of r against o in declaration order, without
// short-circuiting, and resolves the actions only when all of them passed.
//
// A structural data problem (malformed hierarchy) in one condition is recorded
// as a failed trace entry; the remaining conditions are still evaluated and the
// first such error is returned alongside the complete result.
func Evaluate(r *Rule, o *domain.Order, ctx *condition.Context) (*Result, error) {
	res := &Result{
		RuleID:         r.ID,
		Applicable:     true,
		Trace:          make(Trace, 0, len(r.Conditions)),
		AppliedActions: []action.ResolvedAction{},
	}

	var errs []error
	for i, c := range r.Conditions {
		out, err := condition.Evaluate(c, o, ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("rule %s: conditions[%d] %s: %w", r.ID, i, c.Kind(), err))
			out = condition.Outcome{Passed: false, Detail: "error: " + err.Error()}
		}
		res.Trace = append(res.Trace, TraceEntry{
			ConditionKind: c.Kind(),
			Passed:        out.Passed,
			Detail:        out.Detail,
		})
		if !out.Passed {
			res.Applicable = false
		}
	}
	if len(errs) > 0 {
		return res, errs[0]
	}
	if !res.Applicable {
		return res, nil
	}

	for i, a := range r.Actions {
		ra, err := action.Resolve(a, o, ctx)
		if err != nil {
			// Partially resolved actions are not reported.
			res.Applicable = false
			res.AppliedActions = []action.ResolvedAction{}
			return res, fmt.Errorf("rule %s: actions[%d] %s: %w", r.ID, i, a.Kind(), err)
		}
		res.AppliedActions = append(res.AppliedActions, ra)
	}
	return res, nil
}
