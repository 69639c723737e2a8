package similarity

import (
	"errors"
	"fmt"
	"math"
)

// ErrLengthMismatch is returned when two vectors of different lengths are compared.
// Vectors produced by different models are not comparable, so this is surfaced
// explicitly instead of truncating to the shorter vector.
var ErrLengthMismatch = errors.New("vector length mismatch")

// Cosine computes the cosine similarity dot(a,b) / (||a||·||b||) between two
// equal-length vectors. The result lies in [-1, 1] for non-zero inputs.
//
// If either vector has zero magnitude the quotient is undefined; by policy
// Cosine returns 0 in that case so a degenerate vector sorts below every
// genuine match instead of propagating NaN through the ranking.
func Cosine(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, nil
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}

	if magA == 0 || magB == 0 {
		return 0, nil
	}

	return float32(dot / (math.Sqrt(magA) * math.Sqrt(magB))), nil
}

// Normalize rescales a vector to unit length.
// Returns a new vector. A zero vector normalizes to a zero vector.
func Normalize(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var magnitude float64
	for _, val := range v {
		magnitude += float64(val) * float64(val)
	}
	magnitude = math.Sqrt(magnitude)

	result := make([]float32, len(v))
	if magnitude == 0 {
		return result
	}
	for i, val := range v {
		result[i] = float32(float64(val) / magnitude)
	}
	return result
}
