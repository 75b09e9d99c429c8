package docstore

import (
	"strings"

	"logistics-scheduler-service/internal/ports"
)

// compareValues orders two scalar field values. Strings compare byte-wise,
// numbers numerically; other combinations are incomparable.
func compareValues(a, b any) (int, bool) {
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(as, bs), true
	}

	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}

	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok && ab == bb {
			return 0, true
		}
	}

	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func matchesFilter(data map[string]any, f ports.Filter) bool {
	v, ok := data[f.Field]
	if !ok {
		return false
	}

	c, ok := compareValues(v, f.Value)
	if !ok {
		return false
	}

	switch f.Op {
	case ports.OpEqual:
		return c == 0
	case ports.OpLessThan:
		return c < 0
	case ports.OpLessThanOrEqual:
		return c <= 0
	default:
		return false
	}
}

func matchesAll(data map[string]any, filters []ports.Filter) bool {
	for _, f := range filters {
		if !matchesFilter(data, f) {
			return false
		}
	}
	return true
}

func satisfies(data map[string]any, precondition map[string]any) bool {
	for k, want := range precondition {
		if !matchesFilter(data, ports.Filter{Field: k, Op: ports.OpEqual, Value: want}) {
			return false
		}
	}
	return true
}
