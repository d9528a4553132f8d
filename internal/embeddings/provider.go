package embeddings

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// ErrNoEmbedding indicates the provider returned nothing usable. Callers
// degrade to topic-overlap comparison rather than fabricating a vector.
var ErrNoEmbedding = errors.New("no embedding available")

// DimensionMismatchError is the hard failure raised when two vectors of
// different lengths are compared. Never silently coerced to zero.
type DimensionMismatchError struct {
	LenA, LenB int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: %d vs %d", e.LenA, e.LenB)
}

// Provider maps normalized text to a fixed-length vector. Implementations
// perform network I/O; everything else in the engine is pure computation.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Cosine computes the cosine similarity of two vectors of equal length.
// Result is in [-1, 1]; a zero vector yields 0.
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, &DimensionMismatchError{LenA: len(a), LenB: len(b)}
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	sim := dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))

	// Floating error can push the ratio a hair outside the valid range.
	return math.Max(-1, math.Min(1, sim)), nil
}
