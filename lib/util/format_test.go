package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatChange(t *testing.T) {
	assert.Equal(t, "+1.50", FormatChange(1.5))
	assert.Equal(t, "-0.25", FormatChange(-0.25))
	assert.Equal(t, "0.00", FormatChange(0))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "10.00", FormatFloat(10))
	assert.Equal(t, "2.35", FormatFloat(2.349))
}

func TestCalculatePercentageChange(t *testing.T) {
	assert.InDelta(t, 25.0, CalculatePercentageChange(5, 4), 1e-12)
	assert.InDelta(t, -50.0, CalculatePercentageChange(2, 4), 1e-12)
	assert.Equal(t, 0.0, CalculatePercentageChange(5, 0))
	assert.Equal(t, 0.0, CalculatePercentageChange(math.NaN(), 1))
	assert.Equal(t, 0.0, CalculatePercentageChange(1, math.NaN()))
}

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{512, "512.00B"},
		{1536, "1.50KiB"},
		{50 * 1024 * 1024, "50.00MiB"},
		{3 * 1024 * 1024 * 1024, "3.00GiB"},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, FormatBytes(c.in))
	}
}
