package action

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gyaneshwarpardhi/promoengine/internal/domain"
	"github.com/gyaneshwarpardhi/promoengine/internal/params"
)

// Decoder builds a validated Action from a definition's params.
type Decoder func(p params.Params) (Action, error)

// Registry maps action type strings to their decoders.
// It is safe for concurrent reads; Register should only be called at startup.
type Registry struct {
	mu       sync.RWMutex
	decoders map[Kind]Decoder
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{decoders: make(map[Kind]Decoder)}
}

// DefaultRegistry returns a Registry with every built-in action kind.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(KindPercentageDiscount, decodePercentageDiscount)
	r.Register(KindFixedDiscount, decodeFixedDiscount)
	r.Register(KindFreeProduct, decodeFreeProduct)
	r.Register(KindBundlePrice, decodeBundlePrice)
	return r
}

// Register adds a decoder. Panics on duplicate kind to surface misconfiguration early.
func (r *Registry) Register(kind Kind, d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.decoders[kind]; exists {
		panic(fmt.Sprintf("action registry: duplicate type %q", kind))
	}
	r.decoders[kind] = d
}

// Decode builds an action of the given type.
func (r *Registry) Decode(kind string, p params.Params) (Action, error) {
	r.mu.RLock()
	d, ok := r.decoders[Kind(kind)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no decoder registered for action type %q: %w", kind, domain.ErrInvalidConfiguration)
	}
	a, err := d(p)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidConfiguration) {
			err = fmt.Errorf("%w: %w", domain.ErrInvalidConfiguration, err)
		}
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	return a, nil
}

// Kinds returns all registered action types, sorted.
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

func decodePercentageDiscount(p params.Params) (Action, error) {
	pct, err := p.Decimal("percent")
	if err != nil {
		return nil, err
	}
	scope, err := p.Strings("scope")
	if err != nil {
		return nil, err
	}
	return NewPercentageDiscount(pct, scope...)
}

func decodeFixedDiscount(p params.Params) (Action, error) {
	amount, err := p.Decimal("amount")
	if err != nil {
		return nil, err
	}
	scope, err := p.Strings("scope")
	if err != nil {
		return nil, err
	}
	return NewFixedDiscount(amount, scope...)
}

func decodeFreeProduct(p params.Params) (Action, error) {
	id, err := p.String("product_id")
	if err != nil {
		return nil, err
	}
	qty, err := p.Int("quantity")
	if err != nil {
		return nil, err
	}
	scope, err := p.Strings("scope")
	if err != nil {
		return nil, err
	}
	return NewFreeProduct(id, qty, scope...)
}

func decodeBundlePrice(p params.Params) (Action, error) {
	price, err := p.Decimal("price")
	if err != nil {
		return nil, err
	}
	ids, err := p.Strings("product_ids")
	if err != nil {
		return nil, err
	}
	return NewBundlePrice(price, ids...)
}
