package hierarchy_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gyaneshwarpardhi/promoengine/internal/domain"
	"github.com/gyaneshwarpardhi/promoengine/internal/hierarchy"
)

func buildOrgForest(t *testing.T) *hierarchy.Forest {
	t.Helper()
	f, err := hierarchy.NewForest([]hierarchy.Node{
		{ID: "REG-N", Name: "North", Level: hierarchy.LevelRegion},
		{ID: "ST-DL", Name: "Delhi", Level: hierarchy.LevelState, ParentID: "REG-N"},
		{ID: "AR-01", Name: "Central Delhi", Level: hierarchy.LevelArea, ParentID: "ST-DL"},
		{ID: "DIST-01", Name: "Sharma Traders", Level: hierarchy.LevelDistributor, ParentID: "AR-01"},
		{ID: "DIST-02", Name: "Gupta Agencies", Level: hierarchy.LevelDistributor, ParentID: "AR-01"},
		{ID: "REG-S", Name: "South", Level: hierarchy.LevelRegion},
		{ID: "DIST-09", Name: "Iyer Stores", Level: hierarchy.LevelDistributor, ParentID: "REG-S"},
	})
	if err != nil {
		t.Fatalf("NewForest error: %v", err)
	}
	return f
}

func TestAncestorsOf(t *testing.T) {
	f := buildOrgForest(t)

	got, err := f.AncestorsOf("DIST-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"DIST-01", "AR-01", "ST-DL", "REG-N"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AncestorsOf mismatch (-want +got):\n%s", diff)
	}

	root, err := f.AncestorsOf("REG-S")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"REG-S"}, root); diff != "" {
		t.Errorf("root chain mismatch (-want +got):\n%s", diff)
	}
}

func TestAncestorsOf_NotFound(t *testing.T) {
	f := buildOrgForest(t)
	if _, err := f.AncestorsOf("DIST-404"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.IsDescendantOf("DIST-404", "REG-N"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAncestorsOf_Cycle(t *testing.T) {
	f, err := hierarchy.NewForest([]hierarchy.Node{
		{ID: "A", ParentID: "C"},
		{ID: "B", ParentID: "A"},
		{ID: "C", ParentID: "B"},
	})
	if err != nil {
		t.Fatalf("NewForest error: %v", err)
	}
	for _, id := range []string{"A", "B", "C"} {
		if _, err := f.AncestorsOf(id); !errors.Is(err, domain.ErrMalformedHierarchy) {
			t.Errorf("AncestorsOf(%s): expected ErrMalformedHierarchy, got %v", id, err)
		}
	}
}

func TestAncestorsOf_SelfParent(t *testing.T) {
	f, err := hierarchy.NewForest([]hierarchy.Node{{ID: "A", ParentID: "A"}})
	if err != nil {
		t.Fatalf("NewForest error: %v", err)
	}
	if _, err := f.AncestorsOf("A"); !errors.Is(err, domain.ErrMalformedHierarchy) {
		t.Fatalf("expected ErrMalformedHierarchy, got %v", err)
	}
}

func TestAncestorsOf_DanglingParent(t *testing.T) {
	f, err := hierarchy.NewForest([]hierarchy.Node{{ID: "A", ParentID: "GHOST"}})
	if err != nil {
		t.Fatalf("NewForest error: %v", err)
	}
	if _, err := f.AncestorsOf("A"); !errors.Is(err, domain.ErrMalformedHierarchy) {
		t.Fatalf("expected ErrMalformedHierarchy, got %v", err)
	}
}

func TestAncestorsOf_DepthBound(t *testing.T) {
	nodes := []hierarchy.Node{{ID: "N0"}}
	for i := 1; i <= hierarchy.MaxDepth; i++ {
		nodes = append(nodes, hierarchy.Node{ID: fmt.Sprintf("N%d", i), ParentID: fmt.Sprintf("N%d", i-1)})
	}
	f, err := hierarchy.NewForest(nodes)
	if err != nil {
		t.Fatalf("NewForest error: %v", err)
	}

	// A chain of exactly MaxDepth nodes is fine.
	chain, err := f.AncestorsOf(fmt.Sprintf("N%d", hierarchy.MaxDepth-1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chain) != hierarchy.MaxDepth {
		t.Errorf("chain length = %d, want %d", len(chain), hierarchy.MaxDepth)
	}

	// One more level exceeds the bound.
	if _, err := f.AncestorsOf(fmt.Sprintf("N%d", hierarchy.MaxDepth)); !errors.Is(err, domain.ErrMalformedHierarchy) {
		t.Fatalf("expected ErrMalformedHierarchy, got %v", err)
	}
}

func TestNewForest_Duplicate(t *testing.T) {
	_, err := hierarchy.NewForest([]hierarchy.Node{{ID: "A"}, {ID: "A"}})
	if !errors.Is(err, domain.ErrMalformedHierarchy) {
		t.Fatalf("expected ErrMalformedHierarchy, got %v", err)
	}
	_, err = hierarchy.NewForest([]hierarchy.Node{{Name: "nameless"}})
	if !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestIsDescendantOf(t *testing.T) {
	f := buildOrgForest(t)
	cases := []struct {
		id, ancestor string
		want         bool
	}{
		{"DIST-01", "REG-N", true},
		{"DIST-01", "DIST-01", true},
		{"DIST-01", "REG-S", false},
		{"REG-N", "DIST-01", false},
		{"DIST-09", "REG-S", true},
	}
	for _, tc := range cases {
		t.Run(tc.id+"_"+tc.ancestor, func(t *testing.T) {
			got, err := f.IsDescendantOf(tc.id, tc.ancestor)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("IsDescendantOf(%s, %s) = %v, want %v", tc.id, tc.ancestor, got, tc.want)
			}
		})
	}
}

func TestSubtreeSizeAndCoverage(t *testing.T) {
	f := buildOrgForest(t)
	if got := f.SubtreeSize("REG-N"); got != 5 {
		t.Errorf("SubtreeSize(REG-N) = %d, want 5", got)
	}
	if got := f.SubtreeSize("DIST-02"); got != 1 {
		t.Errorf("SubtreeSize(DIST-02) = %d, want 1", got)
	}
	if got := f.SubtreeSize("MISSING"); got != 0 {
		t.Errorf("SubtreeSize(MISSING) = %d, want 0", got)
	}
	// Overlapping targets are counted once.
	if got := f.CoverageOf([]string{"AR-01", "DIST-01", "REG-S"}); got != 5 {
		t.Errorf("CoverageOf = %d, want 5", got)
	}
	if got := f.Len(); got != 7 {
		t.Errorf("Len() = %d, want 7", got)
	}
}
