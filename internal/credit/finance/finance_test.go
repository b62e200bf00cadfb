package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmortize(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		tenor     int
		rate      float64
		expected  float64
	}{
		{name: "zero rate is equal installments", principal: 1_000_000, tenor: 12, rate: 0, expected: 83333.33},
		{name: "standard annuity", principal: 100_000, tenor: 12, rate: 24, expected: 9455.96},
		{name: "zero tenor yields zero", principal: 100_000, tenor: 0, rate: 24, expected: 0},
		{name: "negative tenor yields zero", principal: 100_000, tenor: -3, rate: 0, expected: 0},
		{name: "zero principal yields zero", principal: 0, tenor: 12, rate: 24, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Amortize(tt.principal, tt.tenor, tt.rate), 0.01)
		})
	}
}

func TestMaxPrincipal(t *testing.T) {
	assert.InDelta(t, 420_000, MaxPrincipal(35_000, 12, 0), 1e-9)
	assert.InDelta(t, 84_000, MaxPrincipal(7_000, 12, 0), 1e-9)
	assert.Zero(t, MaxPrincipal(0, 12, 10))
	assert.Zero(t, MaxPrincipal(35_000, 0, 10))
}

func TestMaxPrincipal_InvertsAmortize(t *testing.T) {
	for _, rate := range []float64{0, 5, 18.5, 36} {
		for _, tenor := range []int{1, 3, 6, 12, 24} {
			principal := MaxPrincipal(25_000, tenor, rate)
			assert.InDelta(t, 25_000, Amortize(principal, tenor, rate), 1e-6, "rate=%v tenor=%d", rate, tenor)
		}
	}
}

func TestMaxPrincipal_IncreasesWithTenor(t *testing.T) {
	for _, rate := range []float64{0.5, 12, 30} {
		prev := 0.0
		for tenor := 1; tenor <= 36; tenor++ {
			p := MaxPrincipal(10_000, tenor, rate)
			assert.Greater(t, p, prev, "rate=%v tenor=%d", rate, tenor)
			prev = p
		}
	}
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 83333.33, Round2(83333.3333333))
	assert.Equal(t, 0.35, Round4(0.35000001))
	assert.Equal(t, 1.01, Round2(1.005))
}

func TestNaira(t *testing.T) {
	assert.Equal(t, "₦1,000,000", Naira(1_000_000))
	assert.Equal(t, "₦30,000", Naira(29_999.6))
	assert.Equal(t, "₦500", Naira(500))
}
