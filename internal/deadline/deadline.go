// Package deadline computes procedural deadlines counted in business days.
package deadline

import (
	"fmt"
	"time"

	"github.com/joseph-ayodele/perito/internal/common"
)

// DateLayout is the dd/mm/yyyy layout used in court documents.
const DateLayout = "02/01/2006"

var weekdaysPT = [...]string{
	time.Sunday:    "domingo",
	time.Monday:    "segunda-feira",
	time.Tuesday:   "terça-feira",
	time.Wednesday: "quarta-feira",
	time.Thursday:  "quinta-feira",
	time.Friday:    "sexta-feira",
	time.Saturday:  "sábado",
}

var monthsPT = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// ComputeDeadline returns the date businessDays business days after start.
//
// Counting starts on the day after start; only Monday through Friday count.
// Business days only, holidays not excluded. The time of day is dropped and
// start's location is kept. Zero days returns start's date.
func ComputeDeadline(start time.Time, businessDays int) (time.Time, error) {
	if businessDays < 0 {
		return time.Time{}, common.InvalidInputErrorf("business days must be >= 0, got %d", businessDays)
	}

	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	for counted := 0; counted < businessDays; {
		day = day.AddDate(0, 0, 1)
		if IsBusinessDay(day) {
			counted++
		}
	}
	return day, nil
}

// IsBusinessDay reports whether t falls on Monday through Friday.
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// WeekdayPT returns the Portuguese weekday name of t.
func WeekdayPT(t time.Time) string {
	return weekdaysPT[t.Weekday()]
}

// FormatBR renders t as "dd/mm/yyyy (weekday)".
func FormatBR(t time.Time) string {
	return fmt.Sprintf("%s (%s)", t.Format(DateLayout), WeekdayPT(t))
}

// FormatLongPT renders t as used in petition closings, e.g. "15 de outubro de 2026".
func FormatLongPT(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), monthsPT[t.Month()-1], t.Year())
}

// ParseDate accepts dd/mm/yyyy or ISO yyyy-mm-dd in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range []string{DateLayout, time.DateOnly} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, common.InvalidInputErrorf("invalid date %q (use dd/mm/yyyy or yyyy-mm-dd)", s)
}
