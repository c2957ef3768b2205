package condition

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gyaneshwarpardhi/promoengine/internal/domain"
	"github.com/gyaneshwarpardhi/promoengine/internal/params"
)

// Decoder builds a validated Condition from a definition's params.
type Decoder func(p params.Params) (Condition, error)

// Registry maps condition type strings to their decoders.
// It is safe for concurrent reads; Register should only be called at startup.
type Registry struct {
	mu       sync.RWMutex
	decoders map[Kind]Decoder
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{decoders: make(map[Kind]Decoder)}
}

// DefaultRegistry returns a Registry with every built-in condition kind.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(KindDateRange, decodeDateRange)
	r.Register(KindCustomerHierarchy, decodeCustomerHierarchy)
	r.Register(KindProductHierarchy, decodeProductHierarchy)
	r.Register(KindProductPurchase, decodeProductPurchase)
	r.Register(KindTotalOrderValue, decodeTotalOrderValue)
	r.Register(KindTotalOrderQuantity, decodeTotalOrderQuantity)
	return r
}

// Register adds a decoder. Panics on duplicate kind to surface misconfiguration early.
func (r *Registry) Register(kind Kind, d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.decoders[kind]; exists {
		panic(fmt.Sprintf("condition registry: duplicate type %q", kind))
	}
	r.decoders[kind] = d
}

// Decode builds a condition of the given type.
func (r *Registry) Decode(kind string, p params.Params) (Condition, error) {
	r.mu.RLock()
	d, ok := r.decoders[Kind(kind)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no decoder registered for condition type %q: %w", kind, domain.ErrInvalidConfiguration)
	}
	c, err := d(p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, wrapInvalid(err))
	}
	return c, nil
}

// Kinds returns all registered condition types, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.decoders))
	for k := range r.decoders {
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}

func decodeDateRange(p params.Params) (Condition, error) {
	start, err := p.Date("start")
	if err != nil {
		return nil, err
	}
	end, err := p.Date("end")
	if err != nil {
		return nil, err
	}
	return NewDateRange(start, end)
}

func decodeCustomerHierarchy(p params.Params) (Condition, error) {
	targets, err := p.Strings("targets")
	if err != nil {
		return nil, err
	}
	return NewCustomerHierarchy(targets...)
}

func decodeProductHierarchy(p params.Params) (Condition, error) {
	targets, err := p.Strings("targets")
	if err != nil {
		return nil, err
	}
	return NewProductHierarchy(targets...)
}

func decodeProductPurchase(p params.Params) (Condition, error) {
	id, err := p.String("product_id")
	if err != nil {
		return nil, err
	}
	qty, err := p.Int("min_quantity")
	if err != nil {
		return nil, err
	}
	return NewProductPurchase(id, qty)
}

func decodeTotalOrderValue(p params.Params) (Condition, error) {
	minValue, err := p.Decimal("min_value")
	if err != nil {
		return nil, err
	}
	scope, err := p.Strings("scope")
	if err != nil {
		return nil, err
	}
	return NewTotalOrderValue(minValue, scope...)
}

func decodeTotalOrderQuantity(p params.Params) (Condition, error) {
	qty, err := p.Int("min_quantity")
	if err != nil {
		return nil, err
	}
	scope, err := p.Strings("scope")
	if err != nil {
		return nil, err
	}
	return NewTotalOrderQuantity(qty, scope...)
}

// wrapInvalid marks param decoding failures as configuration errors.
func wrapInvalid(err error) error {
	if errors.Is(err, domain.ErrInvalidConfiguration) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrInvalidConfiguration, err)
}
