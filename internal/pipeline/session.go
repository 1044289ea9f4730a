package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/perito/internal/common"
	"github.com/joseph-ayodele/perito/internal/entity"
	"github.com/joseph-ayodele/perito/internal/llm"
)

// Session holds the state of one interactive session. It is owned by the
// caller and replaces any process-wide state.
type Session struct {
	ID         uuid.UUID
	ExpertName string

	// set by the last successful analysis
	Result     *entity.AnalysisResult
	SourceName string
	Mode       llm.AnalysisMode
	AnalyzedAt time.Time
}

func NewSession(expertName string) *Session {
	return &Session{ID: uuid.New(), ExpertName: expertName}
}

// Task returns the task at index i of the current result.
func (s *Session) Task(i int) (entity.Task, error) {
	if s == nil || s.Result == nil {
		return entity.Task{}, common.InvalidInputError("no analysis result in session")
	}
	if i < 0 || i >= len(s.Result.Tasks) {
		return entity.Task{}, common.InvalidInputErrorf("task index %d out of range (0..%d)", i, len(s.Result.Tasks)-1)
	}
	return s.Result.Tasks[i], nil
}
