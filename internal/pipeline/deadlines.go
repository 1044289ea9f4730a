package pipeline

import (
	"time"

	"github.com/joseph-ayodele/perito/constants"
	"github.com/joseph-ayodele/perito/internal/deadline"
)

// DefaultNoticeDays is the business-day term offered for a notice when the
// operator does not enter one.
const DefaultNoticeDays = 15

type DeadlineResult struct {
	Start        time.Time
	BusinessDays int
	Due          time.Time
	Display      string // dd/mm/yyyy (weekday)
	SourcePage   string
}

// Deadline is the standalone calculator.
func (p *Processor) Deadline(start time.Time, businessDays int) (DeadlineResult, error) {
	due, err := deadline.ComputeDeadline(start, businessDays)
	if err != nil {
		return DeadlineResult{}, err
	}
	p.Logger.Debug("pipeline.deadline.ok", "start", start.Format(time.DateOnly), "days", businessDays, "due", due.Format(time.DateOnly))
	return DeadlineResult{
		Start:        start,
		BusinessDays: businessDays,
		Due:          due,
		Display:      deadline.FormatBR(due),
	}, nil
}

// NoticeDeadline computes the due date for a NOTICE task counted from start.
func (p *Processor) NoticeDeadline(sess *Session, taskIndex int, start time.Time, businessDays int) (DeadlineResult, error) {
	task, err := taskOfKind(sess, taskIndex, constants.Notice)
	if err != nil {
		return DeadlineResult{}, err
	}
	res, err := p.Deadline(start, businessDays)
	if err != nil {
		return DeadlineResult{}, err
	}
	res.SourcePage = task.SourcePage
	return res, nil
}
