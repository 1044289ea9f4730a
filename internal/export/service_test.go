package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/perito/constants"
	"github.com/joseph-ayodele/perito/internal/entity"
)

func TestExportTasksXLSX(t *testing.T) {
	num := "0801234-56.2023.8.14.0301"
	res := &entity.AnalysisResult{
		Summary:  "Ação indenizatória",
		Metadata: entity.ProcessMetadata{CaseNumber: &num},
		Tasks: []entity.Task{
			{Kind: constants.Appointment, SourcePage: "3", Description: "Nomeação"},
			{Kind: constants.Interrogatories, SourcePage: "5", Party: "autor", Questions: []string{"Q1", "Q2"}},
		},
	}

	data, err := NewService(nil).ExportTasksXLSX(res, "processo.pdf")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetTasks, SheetQuestions, SheetProcess}, f.GetSheetList())

	rows, err := f.GetRows(SheetTasks)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Tipo", rows[0][1])
	assert.Equal(t, "Nomeação", rows[1][1])
	assert.Equal(t, "Quesitos", rows[2][1])
	assert.Equal(t, "2", rows[2][7])

	qs, err := f.GetRows(SheetQuestions)
	require.NoError(t, err)
	require.Len(t, qs, 3)
	assert.Equal(t, []string{"1", "autor", "5", "2", "Q2"}, qs[2])

	v, err := f.GetCellValue(SheetProcess, "B3")
	require.NoError(t, err)
	assert.Equal(t, num, v)
}

func TestExportTasksXLSX_NilResult(t *testing.T) {
	_, err := NewService(nil).ExportTasksXLSX(nil, "")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "açã…", truncate("açãoxyz", 4))
	assert.Equal(t, 4, len([]rune(truncate(strings.Repeat("é", 10), 4))))
}
