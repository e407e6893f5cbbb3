package mixer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dudk/zen/mixer"
)

func TestSum(t *testing.T) {
	tests := []struct {
		description string
		sources     [][]float64
		expected    []float64
	}{
		{
			description: "no sources",
			expected:    []float64{0, 0, 0},
		},
		{
			description: "single source",
			sources:     [][]float64{{1, 2, 3}},
			expected:    []float64{1, 2, 3},
		},
		{
			description: "three sources",
			sources:     [][]float64{{1, 2, 3}, {0.5, 0.5, 0.5}, {-1, 0, 1}},
			expected:    []float64{0.5, 2.5, 4.5},
		},
	}
	for _, test := range tests {
		dst := []float64{9, 9, 9}
		mixer.Sum(dst, test.sources...)
		assert.Equal(t, test.expected, dst, test.description)
	}
}

func TestArithmetic(t *testing.T) {
	dst := make([]float64, 3)
	mixer.Multiply(dst, []float64{1, 2, 3}, []float64{2, 2, 0.5})
	assert.Equal(t, []float64{2, 4, 1.5}, dst)

	mixer.Scale(dst, []float64{1, 2, 3}, 0.5)
	assert.Equal(t, []float64{0.5, 1, 1.5}, dst)

	mixer.Add(dst, []float64{0.5, 0, -1.5})
	assert.Equal(t, []float64{1, 1, 0}, dst)

	mixer.Subtract(dst, []float64{1, 2, 3}, []float64{0.5, 3, 0})
	assert.Equal(t, []float64{0.5, -1, 3}, dst)

	mixer.MultiplyInPlace(dst, []float64{2, 2, 0})
	assert.Equal(t, []float64{1, -2, 0}, dst)

	mixer.Fill(dst, 0.25)
	assert.Equal(t, []float64{0.25, 0.25, 0.25}, dst)
	mixer.Zero(dst)
	assert.Equal(t, []float64{0, 0, 0}, dst)
}
