package core

import "math"

// NormalizeVector scales a vector to unit length, returning a new vector.
// The denominator carries a small epsilon so a zero vector maps to a zero
// vector instead of dividing by zero; callers rely on this when a listing
// has no embeddable images.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var magnitude float64
	for _, val := range v {
		magnitude += float64(val) * float64(val)
	}
	magnitude = math.Sqrt(magnitude) + 1e-10

	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = float32(float64(val) / magnitude)
	}
	return result
}

// DotProduct computes the inner product of two vectors. For unit-norm
// inputs this is their cosine similarity. Mismatched lengths yield zero.
func DotProduct(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// MeanVector computes the unit-norm mean of the non-nil slots. Slots whose
// length differs from the first non-nil slot are skipped. Returns nil when
// every slot is nil, which callers treat as "no usable vector".
func MeanVector(vectors [][]float32) []float32 {
	var sum []float64
	count := 0
	for _, v := range vectors {
		if v == nil {
			continue
		}
		if sum == nil {
			sum = make([]float64, len(v))
		}
		if len(v) != len(sum) {
			continue
		}
		for i, x := range v {
			sum[i] += float64(x)
		}
		count++
	}
	if count == 0 {
		return nil
	}

	mean := make([]float32, len(sum))
	for i, x := range sum {
		mean[i] = float32(x / float64(count))
	}
	return NormalizeVector(mean)
}
