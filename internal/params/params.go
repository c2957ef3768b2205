// Package params reads typed values out of loosely-typed YAML/JSON parameter maps.
package params

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Params is the decoded params block of a condition or action definition.
type Params map[string]interface{}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String returns a required string value.
func (p Params) String(key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", fmt.Errorf("param %q is required", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("param %q must be a string, got %T", key, v)
	}
	return s, nil
}

// Decimal returns a required numeric value. Numeric strings are accepted.
func (p Params) Decimal(key string) (decimal.Decimal, error) {
	v, ok := p[key]
	if !ok {
		return decimal.Zero, fmt.Errorf("param %q is required", key)
	}
	if s, ok := v.(string); ok {
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return decimal.Zero, fmt.Errorf("param %q: %w", key, err)
		}
		return d, nil
	}
	f, ok := toFloat64(v)
	if !ok {
		return decimal.Zero, fmt.Errorf("param %q must be numeric, got %T", key, v)
	}
	return decimal.NewFromFloat(f), nil
}

// Int returns a required whole-number value.
func (p Params) Int(key string) (int64, error) {
	v, ok := p[key]
	if !ok {
		return 0, fmt.Errorf("param %q is required", key)
	}
	f, ok := toFloat64(v)
	if !ok {
		return 0, fmt.Errorf("param %q must be numeric, got %T", key, v)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("param %q must be a whole number, got %v", key, f)
	}
	return int64(f), nil
}

// Strings returns an optional list of strings. A single string is treated as a one-element list.
func (p Params) Strings(key string) ([]string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch list := v.(type) {
	case string:
		return []string{list}, nil
	case []string:
		return list, nil
	case []interface{}:
		out := make([]string, 0, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("param %q[%d] must be a string, got %T", key, i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("param %q must be a list of strings, got %T", key, v)
	}
}

// Date returns a required date given as YYYY-MM-DD or RFC 3339.
func (p Params) Date(key string) (time.Time, error) {
	v, ok := p[key]
	if !ok {
		return time.Time{}, fmt.Errorf("param %q is required", key)
	}
	switch d := v.(type) {
	case time.Time:
		return d, nil
	case string:
		for _, layout := range []string{time.DateOnly, time.RFC3339} {
			if t, err := time.Parse(layout, strings.TrimSpace(d)); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("param %q: cannot parse date %q", key, d)
	default:
		return time.Time{}, fmt.Errorf("param %q must be a date, got %T", key, v)
	}
}

// toFloat64 coerces a numeric value to float64.
func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
