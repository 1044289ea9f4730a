package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/perito/constants"
	"github.com/joseph-ayodele/perito/internal/entity"
)

// Generator is an opaque text-in/text-out model service. One call per
// analysis; implementations must not retry.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// AnalysisMode selects which task kinds the model is asked to report.
type AnalysisMode string

const (
	ModeFull            AnalysisMode = "full"
	ModeAppointment     AnalysisMode = "appointment"
	ModeInterrogatories AnalysisMode = "interrogatories"
)

// ParseAnalysisMode accepts the mode names used on the command line; empty
// means full.
func ParseAnalysisMode(s string) (AnalysisMode, error) {
	switch AnalysisMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeFull:
		return ModeFull, nil
	case ModeAppointment:
		return ModeAppointment, nil
	case ModeInterrogatories:
		return ModeInterrogatories, nil
	default:
		return "", fmt.Errorf("unknown analysis mode %q", s)
	}
}

// AllowedKinds lists the task kinds a response may contain in this mode.
func (m AnalysisMode) AllowedKinds() []constants.TaskKind {
	switch m {
	case ModeAppointment:
		return []constants.TaskKind{constants.Appointment}
	case ModeInterrogatories:
		return []constants.TaskKind{constants.Interrogatories}
	default:
		return constants.AllTaskKinds()
	}
}

// TaskExtractor is the interface the workflows depend on.
type TaskExtractor interface {
	Analyze(ctx context.Context, documentText string, mode AnalysisMode) (*entity.AnalysisResult, error)
}
