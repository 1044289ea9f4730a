// Package fees computes the expert fee proposal from operator-entered hours
// and hourly rate.
package fees

import (
	"fmt"
	"math"
	"strings"

	"github.com/joseph-ayodele/perito/internal/common"
)

// Allocation proportions, in percent of the total hours.
const (
	SiteVisitPercent      = 40
	DocumentReviewPercent = 30
	ReportDraftingPercent = 30
)

// Input is what the operator types in. The upper bounds keep the hour shares
// inside int range; they also reject +Inf.
type Input struct {
	TotalHours float64 `validate:"gt=0,lte=100000"`
	HourlyRate float64 `validate:"gt=0,lte=1000000"`
}

// Allocation splits the hours across the fixed work categories. It is a
// display aid, not a schedule; truncation means it may not sum to the total.
type Allocation struct {
	SiteVisit      int
	DocumentReview int
	ReportDrafting int
}

type Proposal struct {
	TotalHours float64
	HourlyRate float64
	TotalFee   float64 // rounded to cents
	Allocation Allocation
}

// Compute derives the total fee and the hour allocation.
func Compute(totalHours, hourlyRate float64) (Proposal, error) {
	in := Input{TotalHours: totalHours, HourlyRate: hourlyRate}
	if err := common.ValidateStruct(in); err != nil {
		return Proposal{}, err
	}

	return Proposal{
		TotalHours: totalHours,
		HourlyRate: hourlyRate,
		TotalFee:   math.Round(totalHours*hourlyRate*100) / 100,
		Allocation: Allocation{
			SiteVisit:      share(totalHours, SiteVisitPercent),
			DocumentReview: share(totalHours, DocumentReviewPercent),
			ReportDrafting: share(totalHours, ReportDraftingPercent),
		},
	}, nil
}

// share truncates percent% of hours; the epsilon absorbs binary rounding so
// 10h * 30% is 3, not 2.
func share(hours float64, percent int) int {
	return int(math.Floor(hours*float64(percent)/100 + 1e-9))
}

// FormatBRL renders v as Brazilian currency, e.g. "R$ 3.000,00".
func FormatBRL(v float64) string {
	neg := v < 0
	cents := int64(math.Round(math.Abs(v) * 100))
	intPart := fmt.Sprintf("%d", cents/100)

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := fmt.Sprintf("R$ %s,%02d", b.String(), cents%100)
	if neg {
		out = "-" + out
	}
	return out
}

// FormatHours renders hours without trailing zeros, using a decimal comma.
func FormatHours(h float64) string {
	s := fmt.Sprintf("%.2f", h)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	return strings.Replace(s, ".", ",", 1)
}
