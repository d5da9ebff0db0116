package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeVector(t *testing.T) {
	tests := []struct {
		name     string
		input    []float32
		expected []float32
	}{
		{
			name:     "unit vector remains unchanged",
			input:    []float32{1.0, 0.0, 0.0},
			expected: []float32{1.0, 0.0, 0.0},
		},
		{
			name:     "scale non-unit vector",
			input:    []float32{3.0, 4.0},
			expected: []float32{0.6, 0.8},
		},
		{
			name:     "negative values",
			input:    []float32{-1.0, 1.0},
			expected: []float32{-1.0 / float32(math.Sqrt(2)), 1.0 / float32(math.Sqrt(2))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeVector(tt.input)
			require.Equal(t, len(tt.expected), len(result), "vector length mismatch")

			for i := range result {
				assert.InDelta(t, tt.expected[i], result[i], 1e-6, "element %d", i)
			}

			// Verify magnitude is 1.0 within the unit-norm tolerance
			var magnitude float64
			for _, v := range result {
				magnitude += float64(v) * float64(v)
			}
			magnitude = math.Sqrt(magnitude)
			assert.InDelta(t, 1.0, magnitude, 1e-6, "magnitude should be 1.0")
		})
	}
}

func TestNormalizeVector_ZeroVector(t *testing.T) {
	input := []float32{0.0, 0.0, 0.0}
	result := NormalizeVector(input)

	// The epsilon in the denominator maps a zero vector to a zero vector
	require.Len(t, result, 3)
	for i, v := range result {
		assert.Equal(t, float32(0.0), v, "element %d should be 0", i)
	}
}

func TestNormalizeVector_EmptyVector(t *testing.T) {
	input := []float32{}
	result := NormalizeVector(input)
	assert.Empty(t, result, "empty vector should return empty vector")
}

func TestNormalizeVector_DoesNotMutateInput(t *testing.T) {
	input := []float32{3.0, 4.0}
	_ = NormalizeVector(input)

	assert.Equal(t, []float32{3.0, 4.0}, input)
}

func TestDotProduct(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{
			name:     "orthogonal vectors",
			a:        []float32{1, 0},
			b:        []float32{0, 1},
			expected: 0,
		},
		{
			name:     "identical unit vectors",
			a:        []float32{0.6, 0.8},
			b:        []float32{0.6, 0.8},
			expected: 1.0,
		},
		{
			name:     "opposite vectors",
			a:        []float32{1, 0},
			b:        []float32{-1, 0},
			expected: -1.0,
		},
		{
			name:     "mismatched lengths yield zero",
			a:        []float32{1, 2, 3},
			b:        []float32{1, 2},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, DotProduct(tt.a, tt.b), 1e-6)
		})
	}
}

func TestMeanVector(t *testing.T) {
	t.Run("averages non-nil slots", func(t *testing.T) {
		result := MeanVector([][]float32{
			{1, 0},
			nil,
			{0, 1},
		})

		// Mean of the two unit vectors, re-normalized.
		require.Len(t, result, 2)
		expected := float32(1.0 / math.Sqrt(2))
		assert.InDelta(t, expected, result[0], 1e-6)
		assert.InDelta(t, expected, result[1], 1e-6)
	})

	t.Run("all slots nil", func(t *testing.T) {
		assert.Nil(t, MeanVector([][]float32{nil, nil}))
		assert.Nil(t, MeanVector(nil))
	})

	t.Run("skips length mismatches", func(t *testing.T) {
		result := MeanVector([][]float32{
			{0, 1},
			{1, 2, 3},
		})

		require.Len(t, result, 2)
		assert.InDelta(t, 0.0, result[0], 1e-6)
		assert.InDelta(t, 1.0, result[1], 1e-6)
	})

	t.Run("single vector is normalized", func(t *testing.T) {
		result := MeanVector([][]float32{{3, 4}})

		require.Len(t, result, 2)
		assert.InDelta(t, 0.6, result[0], 1e-6)
		assert.InDelta(t, 0.8, result[1], 1e-6)
	})
}
