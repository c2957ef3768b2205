package hierarchy

import (
	"fmt"

	"github.com/gyaneshwarpardhi/promoengine/internal/domain"
)

// MaxDepth bounds every ancestor walk so that cyclic master data fails fast.
const MaxDepth = 64

// Level names the tier a node sits on.
type Level string

const (
	LevelRegion      Level = "region"
	LevelState       Level = "state"
	LevelArea        Level = "area"
	LevelDistributor Level = "distributor"
	LevelRetailer    Level = "retailer"

	LevelCategory Level = "category"
	LevelBrand    Level = "brand"
	LevelSKU      Level = "sku"
)

// Node is one entry of an organization or product hierarchy.
// Root nodes have an empty ParentID.
type Node struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Level    Level  `json:"level" yaml:"level"`
	ParentID string `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
}

// Forest holds nodes and their parent→children adjacency list.
// It is immutable once built; a reload builds a new Forest.
type Forest struct {
	nodes    map[string]Node
	children map[string][]string // parent id → ordered child ids
	roots    []string
}

// NewForest indexes nodes. Empty and duplicate ids are rejected; parent links are
// not checked here so that malformed data surfaces on the walk that touches it.
func NewForest(nodes []Node) (*Forest, error) {
	f := &Forest{
		nodes:    make(map[string]Node, len(nodes)),
		children: make(map[string][]string),
	}
	for i, n := range nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("hierarchy: nodes[%d]: id is required: %w", i, domain.ErrInvalidConfiguration)
		}
		if _, dup := f.nodes[n.ID]; dup {
			return nil, fmt.Errorf("hierarchy: duplicate node id %q: %w", n.ID, domain.ErrMalformedHierarchy)
		}
		f.nodes[n.ID] = n
		if n.ParentID == "" {
			f.roots = append(f.roots, n.ID)
			continue
		}
		f.children[n.ParentID] = append(f.children[n.ParentID], n.ID)
	}
	return f, nil
}

// Node returns a node by id.
func (f *Forest) Node(id string) (Node, bool) {
	if f == nil {
		return Node{}, false
	}
	n, ok := f.nodes[id]
	return n, ok
}

// Has reports whether id is part of the forest.
func (f *Forest) Has(id string) bool {
	_, ok := f.Node(id)
	return ok
}

// Children returns the direct child ids of a node.
func (f *Forest) Children(id string) []string {
	if f == nil {
		return nil
	}
	return f.children[id]
}

// Roots returns the ids of nodes without a parent.
func (f *Forest) Roots() []string {
	if f == nil {
		return nil
	}
	return f.roots
}

// Len returns the total number of nodes.
func (f *Forest) Len() int {
	if f == nil {
		return 0
	}
	return len(f.nodes)
}
