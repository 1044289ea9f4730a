package constants

import (
	"strings"
)

// TaskKind is the closed set of procedural events the analyzer may report.
type TaskKind string

const (
	Appointment     TaskKind = "APPOINTMENT"
	Interrogatories TaskKind = "INTERROGATORIES"
	Notice          TaskKind = "NOTICE"
	FeeProposal     TaskKind = "FEE_PROPOSAL"
)

var allTaskKinds = []TaskKind{
	Appointment,
	Interrogatories,
	Notice,
	FeeProposal,
}

// AllTaskKinds returns the kinds in their canonical order.
func AllTaskKinds() []TaskKind {
	out := make([]TaskKind, len(allTaskKinds))
	copy(out, allTaskKinds)
	return out
}

func TaskKindsAsStrings(kinds []TaskKind) []string {
	result := make([]string, len(kinds))
	for i, k := range kinds {
		result[i] = string(k)
	}
	return result
}

// Valid reports whether k is one of the known kinds.
func (k TaskKind) Valid() bool {
	for _, known := range allTaskKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Label is the Portuguese label shown to the operator.
func (k TaskKind) Label() string {
	switch k {
	case Appointment:
		return "Nomeação"
	case Interrogatories:
		return "Quesitos"
	case Notice:
		return "Intimação"
	case FeeProposal:
		return "Proposta de Honorários"
	default:
		return string(k)
	}
}

// CanonicalizeTaskKind maps model output (including the Portuguese labels the
// model tends to fall back to) onto a TaskKind.
func CanonicalizeTaskKind(input string) (TaskKind, bool) {
	if input == "" {
		return "", false
	}

	normalized := strings.ToUpper(strings.TrimSpace(input))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)

	synonyms := map[string]TaskKind{
		"NOMEACAO":               Appointment,
		"NOMEAÇÃO":               Appointment,
		"APPOINTMENT_OF_EXPERT":  Appointment,
		"QUESITOS":               Interrogatories,
		"QUESTIONS":              Interrogatories,
		"INTERROGATORY":          Interrogatories,
		"INTIMACAO":              Notice,
		"INTIMAÇÃO":              Notice,
		"DEADLINE":               Notice,
		"PRAZO":                  Notice,
		"HONORARIOS":             FeeProposal,
		"HONORÁRIOS":             FeeProposal,
		"PROPOSTA_HONORARIOS":    FeeProposal,
		"PROPOSTA_DE_HONORARIOS": FeeProposal,
		"FEES":                   FeeProposal,
	}

	if k, ok := synonyms[normalized]; ok {
		return k, true
	}
	for _, k := range allTaskKinds {
		if normalized == string(k) {
			return k, true
		}
	}
	return "", false
}
