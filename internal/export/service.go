package export

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/perito/internal/entity"
)

const (
	SheetTasks     = "Tarefas"
	SheetQuestions = "Quesitos"
	SheetProcess   = "Processo"
)

// Service produces XLSX bytes for the current analysis.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ExportTasksXLSX returns a workbook with the task list, every interrogatory
// question on its own row, and the process metadata.
func (s *Service) ExportTasksXLSX(res *entity.AnalysisResult, sourceName string) ([]byte, error) {
	if res == nil {
		return nil, errors.New("export: no analysis result")
	}
	start := time.Now()

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close_failed", "error", err)
		}
	}()

	// the default sheet is renamed so the workbook opens on the task list
	if err := f.SetSheetName("Sheet1", SheetTasks); err != nil {
		return nil, fmt.Errorf("xlsx rename sheet: %w", err)
	}
	for _, name := range []string{SheetQuestions, SheetProcess} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("xlsx new sheet %s: %w", name, err)
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}

	writeRow(f, SheetTasks, 1, []any{"#", "Tipo", "Título", "Página", "Data", "Descrição", "Parte", "Quesitos", "Trecho"})
	_ = f.SetRowStyle(SheetTasks, 1, 1, bold)
	writeRow(f, SheetQuestions, 1, []any{"Tarefa", "Parte", "Página", "Nº", "Quesito"})
	_ = f.SetRowStyle(SheetQuestions, 1, 1, bold)

	qRow := 2
	for i, t := range res.Tasks {
		writeRow(f, SheetTasks, i+2, []any{
			i,
			t.Kind.Label(),
			t.Title,
			t.SourcePage,
			t.EventDate,
			t.Description,
			t.Party,
			len(t.Questions),
			truncate(t.RelevantExcerpt, 500),
		})
		for n, q := range t.Questions {
			writeRow(f, SheetQuestions, qRow, []any{i, t.Party, t.SourcePage, n + 1, q})
			qRow++
		}
	}

	md := res.Metadata
	process := [][]any{
		{"Arquivo", sourceName},
		{"Resumo", res.Summary},
		{"Processo", entity.Deref(md.CaseNumber)},
		{"Juízo", entity.Deref(md.Court)},
		{"Autor", entity.Deref(md.Plaintiff)},
		{"Réu", entity.Deref(md.Defendant)},
	}
	for i, r := range process {
		writeRow(f, SheetProcess, i+1, r)
	}
	_ = f.SetColStyle(SheetProcess, "A", bold)

	// Widen a few columns
	_ = f.SetColWidth(SheetTasks, "A", "A", 5)
	_ = f.SetColWidth(SheetTasks, "B", "C", 24)
	_ = f.SetColWidth(SheetTasks, "D", "E", 12)
	_ = f.SetColWidth(SheetTasks, "F", "F", 48)
	_ = f.SetColWidth(SheetTasks, "I", "I", 60)
	_ = f.SetColWidth(SheetQuestions, "E", "E", 90)
	_ = f.SetColWidth(SheetProcess, "A", "A", 14)
	_ = f.SetColWidth(SheetProcess, "B", "B", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"tasks", len(res.Tasks),
		"questions", qRow-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	cell, _ := excelize.CoordinatesToCellName(1, row)
	_ = f.SetSheetRow(sheet, cell, &values)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
