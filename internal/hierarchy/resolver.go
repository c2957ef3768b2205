package hierarchy

import (
	"fmt"

	"github.com/gyaneshwarpardhi/promoengine/internal/domain"
)

// AncestorsOf returns the chain of ids from id up to its root, both inclusive.
func (f *Forest) AncestorsOf(id string) ([]string, error) {
	n, ok := f.Node(id)
	if !ok {
		return nil, fmt.Errorf("node %q: %w", id, domain.ErrNotFound)
	}
	chain := []string{n.ID}
	seen := map[string]struct{}{n.ID: {}}
	for n.ParentID != "" {
		if len(chain) >= MaxDepth {
			return nil, fmt.Errorf("node %q: depth exceeds %d: %w", id, MaxDepth, domain.ErrMalformedHierarchy)
		}
		parent, ok := f.nodes[n.ParentID]
		if !ok {
			return nil, fmt.Errorf("node %q: dangling parent %q: %w", n.ID, n.ParentID, domain.ErrMalformedHierarchy)
		}
		if _, loop := seen[parent.ID]; loop {
			return nil, fmt.Errorf("node %q: cycle through %q: %w", id, parent.ID, domain.ErrMalformedHierarchy)
		}
		seen[parent.ID] = struct{}{}
		chain = append(chain, parent.ID)
		n = parent
	}
	return chain, nil
}

// IsDescendantOf reports whether ancestorID is id itself or one of its ancestors.
func (f *Forest) IsDescendantOf(id, ancestorID string) (bool, error) {
	chain, err := f.AncestorsOf(id)
	if err != nil {
		return false, err
	}
	for _, a := range chain {
		if a == ancestorID {
			return true, nil
		}
	}
	return false, nil
}

// IsDescendantOfAny is IsDescendantOf over a set of candidate ancestors.
// It returns the first matching ancestor id.
func (f *Forest) IsDescendantOfAny(id string, ancestorIDs []string) (string, bool, error) {
	chain, err := f.AncestorsOf(id)
	if err != nil {
		return "", false, err
	}
	for _, a := range chain {
		for _, target := range ancestorIDs {
			if a == target {
				return target, true, nil
			}
		}
	}
	return "", false, nil
}

// SubtreeSize counts id and all of its descendants.
// Unknown ids count as zero.
func (f *Forest) SubtreeSize(id string) int {
	return f.CoverageOf([]string{id})
}

// CoverageOf counts the distinct nodes under any of ids.
func (f *Forest) CoverageOf(ids []string) int {
	seen := make(map[string]struct{})
	var stack []string
	for _, id := range ids {
		if f.Has(id) {
			stack = append(stack, id)
		}
	}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[cur]; ok {
			continue
		}
		seen[cur] = struct{}{}
		stack = append(stack, f.children[cur]...)
	}
	return len(seen)
}

// Matches reports whether id lies under any id in scope. An empty scope matches
// everything; an id missing from the forest matches nothing.
func (f *Forest) Matches(id string, scope []string) (bool, error) {
	if len(scope) == 0 {
		return true, nil
	}
	if !f.Has(id) {
		return false, nil
	}
	_, ok, err := f.IsDescendantOfAny(id, scope)
	return ok, err
}

// Missing returns the ids that are not part of the forest, in input order.
func (f *Forest) Missing(ids []string) []string {
	var out []string
	for _, id := range ids {
		if !f.Has(id) {
			out = append(out, id)
		}
	}
	return out
}
