package entity

import (
	"github.com/joseph-ayodele/perito/constants"
)

// ProcessMetadata identifies the lawsuit. Fields are nil when the model
// omitted them.
type ProcessMetadata struct {
	CaseNumber *string `json:"case_number"`
	Plaintiff  *string `json:"plaintiff"`
	Defendant  *string `json:"defendant"`
	Court      *string `json:"court"`
}

// Task is one procedural event that needs the expert's action.
//
// Payload fields depend on Kind: Questions for INTERROGATORIES,
// RelevantExcerpt for APPOINTMENT and NOTICE, nothing for FEE_PROPOSAL.
// SourcePage is opaque provenance as reported by the model.
type Task struct {
	Kind        constants.TaskKind `json:"kind"`
	SourcePage  string             `json:"source_page"`
	Description string             `json:"description"`
	Title       string             `json:"title,omitempty"`
	EventDate   string             `json:"event_date,omitempty"` // dd/mm/yyyy as written in the source

	Questions       []string `json:"questions,omitempty"`
	Party           string   `json:"party,omitempty"`
	RelevantExcerpt string   `json:"relevant_excerpt,omitempty"`
}

// AnalysisResult is the complete outcome of one successful extraction.
type AnalysisResult struct {
	Summary  string          `json:"summary"`
	Metadata ProcessMetadata `json:"metadata"`
	Tasks    []Task          `json:"tasks"`
}

// TasksOfKind returns the indices of tasks with the given kind, in order.
func (r *AnalysisResult) TasksOfKind(kind constants.TaskKind) []int {
	if r == nil {
		return nil
	}
	var idx []int
	for i, t := range r.Tasks {
		if t.Kind == kind {
			idx = append(idx, i)
		}
	}
	return idx
}

// Deref returns the string a metadata field points to, or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
