package core

import (
	"fmt"
	"sort"
	"strconv"
)

// CoerceVector normalizes the possible shapes of a decoded embedding payload
// into a flat []float32.
//
// Embedding producers are not consistent about shape: a JSON corpus may carry
// a plain array of numbers, a nested single-row array (the raw output of a
// pooling layer), or an index-keyed object such as {"0": 0.1, "1": 0.2}.
// All arithmetic in this module works on flat vectors, so every shape is
// resolved here, at the decoding boundary, rather than at call sites.
//
// An empty payload or an unrecognized shape yields ErrInvalidVector.
func CoerceVector(v any) ([]float32, error) {
	switch raw := v.(type) {
	case []float32:
		if len(raw) == 0 {
			return nil, fmt.Errorf("%w: empty vector", ErrInvalidVector)
		}
		return raw, nil

	case []float64:
		if len(raw) == 0 {
			return nil, fmt.Errorf("%w: empty vector", ErrInvalidVector)
		}
		out := make([]float32, len(raw))
		for i, f := range raw {
			out[i] = float32(f)
		}
		return out, nil

	case []any:
		if len(raw) == 0 {
			return nil, fmt.Errorf("%w: empty vector", ErrInvalidVector)
		}
		// A single-element array wrapping another array is a nested
		// one-row matrix. Unwrap and coerce the row.
		if len(raw) == 1 {
			if inner, ok := raw[0].([]any); ok {
				return CoerceVector(inner)
			}
		}
		out := make([]float32, len(raw))
		for i, elem := range raw {
			f, ok := elem.(float64)
			if !ok {
				return nil, fmt.Errorf("%w: element %d is %T, not a number", ErrInvalidVector, i, elem)
			}
			out[i] = float32(f)
		}
		return out, nil

	case map[string]any:
		if len(raw) == 0 {
			return nil, fmt.Errorf("%w: empty vector", ErrInvalidVector)
		}
		// Index-keyed mapping: keys must be the decimal indices 0..n-1.
		indices := make([]int, 0, len(raw))
		values := make(map[int]float32, len(raw))
		for key, elem := range raw {
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("%w: key %q is not a vector index", ErrInvalidVector, key)
			}
			f, ok := elem.(float64)
			if !ok {
				return nil, fmt.Errorf("%w: element %q is %T, not a number", ErrInvalidVector, key, elem)
			}
			indices = append(indices, idx)
			values[idx] = float32(f)
		}
		sort.Ints(indices)
		out := make([]float32, 0, len(indices))
		for i, idx := range indices {
			if idx != i {
				return nil, fmt.Errorf("%w: non-contiguous index %d", ErrInvalidVector, idx)
			}
			out = append(out, values[idx])
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: unsupported shape %T", ErrInvalidVector, v)
	}
}
