package fees

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/perito/internal/common"
)

func TestCompute_TenHours(t *testing.T) {
	p, err := Compute(10, 300)
	require.NoError(t, err)
	assert.Equal(t, 3000.00, p.TotalFee)
	assert.Equal(t, Allocation{SiteVisit: 4, DocumentReview: 3, ReportDrafting: 3}, p.Allocation)
}

func TestCompute_Truncates(t *testing.T) {
	p, err := Compute(7, 250.5)
	require.NoError(t, err)
	assert.Equal(t, 1753.5, p.TotalFee)
	// 2.8 / 2.1 / 2.1
	assert.Equal(t, Allocation{SiteVisit: 2, DocumentReview: 2, ReportDrafting: 2}, p.Allocation)
}

func TestCompute_FractionalHours(t *testing.T) {
	p, err := Compute(12.5, 180)
	require.NoError(t, err)
	assert.Equal(t, 2250.0, p.TotalFee)
	assert.Equal(t, Allocation{SiteVisit: 5, DocumentReview: 3, ReportDrafting: 3}, p.Allocation)
}

func TestCompute_RejectsNonPositive(t *testing.T) {
	for _, tc := range []struct{ hours, rate float64 }{
		{0, 300},
		{10, 0},
		{-1, 300},
		{10, -5},
	} {
		_, err := Compute(tc.hours, tc.rate)
		require.Error(t, err, "hours=%v rate=%v", tc.hours, tc.rate)
		assert.True(t, common.HasCode(err, common.CodeInvalidInput))
	}
}

func TestCompute_RejectsOutOfRange(t *testing.T) {
	for _, tc := range []struct{ hours, rate float64 }{
		{1e20, 300},
		{100000.5, 300},
		{10, 1e12},
		{math.Inf(1), 300},
		{math.NaN(), 300},
	} {
		_, err := Compute(tc.hours, tc.rate)
		require.Error(t, err, "hours=%v rate=%v", tc.hours, tc.rate)
		assert.True(t, common.HasCode(err, common.CodeInvalidInput))
	}

	p, err := Compute(100000, 1000000)
	require.NoError(t, err)
	assert.Equal(t, 40000, p.Allocation.SiteVisit)
}

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "R$ 3.000,00", FormatBRL(3000))
	assert.Equal(t, "R$ 1.753,50", FormatBRL(1753.5))
	assert.Equal(t, "R$ 0,99", FormatBRL(0.99))
	assert.Equal(t, "R$ 1.234.567,89", FormatBRL(1234567.891))
	assert.Equal(t, "R$ 300,00", FormatBRL(300))
}

func TestFormatHours(t *testing.T) {
	assert.Equal(t, "10", FormatHours(10))
	assert.Equal(t, "12,5", FormatHours(12.5))
}
