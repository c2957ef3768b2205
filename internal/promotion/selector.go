package promotion

import (
	"fmt"

	"github.com/gyaneshwarpardhi/promoengine/internal/action"
	"github.com/gyaneshwarpardhi/promoengine/internal/condition"
	"github.com/gyaneshwarpardhi/promoengine/internal/domain"
	"github.com/gyaneshwarpardhi/promoengine/internal/rule"
)

// Result is one candidate's evaluation, reported whether or not it was chosen.
type Result struct {
	PromotionID string       `json:"promotion_id"`
	Name        string       `json:"name,omitempty"`
	Result      *rule.Result `json:"result"`
	Coverage    int          `json:"coverage"`
	Error       string       `json:"error,omitempty"`
}

// Selection is the outcome of SelectBest. BestID is nil when no candidate applies.
type Selection struct {
	BestID  *string  `json:"best_id"`
	Policy  Policy   `json:"policy"`
	Results []Result `json:"results"`
}

// Best returns the chosen promotion id, if any.
func (s *Selection) Best() (string, bool) {
	if s == nil || s.BestID == nil {
		return "", false
	}
	return *s.BestID, true
}

// Evaluate runs one candidate. An evaluation error is recorded on the result
// instead of being returned, so a bad candidate cannot block the others.
func Evaluate(p *Promotion, o *domain.Order, ctx *condition.Context) Result {
	out := Result{PromotionID: p.ID, Name: p.Name}
	if p.Rule == nil {
		out.Result = &rule.Result{Trace: rule.Trace{}, AppliedActions: []action.ResolvedAction{}}
		out.Error = fmt.Sprintf("promotion %s: no rule: %v", p.ID, domain.ErrInvalidConfiguration)
		return out
	}
	res, err := rule.Evaluate(p.Rule, o, ctx)
	out.Result = res
	out.Coverage = Coverage(p, ctx)
	if err != nil {
		out.Error = err.Error()
		out.Result.Applicable = false
		out.Result.AppliedActions = []action.ResolvedAction{}
	}
	return out
}

// SelectBest evaluates every candidate in order and picks the best applicable one.
func SelectBest(candidates []*Promotion, o *domain.Order, ctx *condition.Context, policy Policy) Selection {
	results := make([]Result, len(candidates))
	for i, p := range candidates {
		results[i] = Evaluate(p, o, ctx)
	}
	return Choose(candidates, results, policy)
}

// Choose ranks already evaluated candidates. results[i] must belong to candidates[i].
func Choose(candidates []*Promotion, results []Result, policy Policy) Selection {
	if policy == "" {
		policy = DefaultPolicy
	}
	sel := Selection{Policy: policy, Results: results}
	best := -1
	for i := range results {
		r := results[i]
		if r.Error != "" || r.Result == nil || !r.Result.Applicable {
			continue
		}
		if best < 0 || better(policy, candidates[i], &r, candidates[best], &results[best]) {
			best = i
		}
	}
	if best >= 0 {
		id := results[best].PromotionID
		sel.BestID = &id
	}
	return sel
}

// better reports whether candidate a outranks candidate b.
func better(policy Policy, pa *Promotion, a *Result, pb *Promotion, b *Result) bool {
	if policy == PolicyGreatestPercent {
		if c := maxPercent(pa).Cmp(maxPercent(pb)); c != 0 {
			return c > 0
		}
	}
	if c := a.Result.TotalEffect().Cmp(b.Result.TotalEffect()); c != 0 {
		return c > 0
	}
	if a.Coverage != b.Coverage {
		return a.Coverage < b.Coverage
	}
	return a.PromotionID < b.PromotionID
}
