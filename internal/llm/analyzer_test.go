package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/perito/constants"
	"github.com/joseph-ayodele/perito/internal/common"
)

type fakeGenerator struct {
	answer string
	err    error
	calls  int
	prompt string
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	return f.answer, f.err
}

func newTestAnalyzer(gen Generator) *Analyzer {
	return NewAnalyzer(gen, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

const fullAnswer = "```json\n" + `{
  "summary": "Ação indenizatória - erro médico",
  "metadata": {"case_number": "0801234-56.2023.8.14.0301", "plaintiff": "Maria", "defendant": "Hospital X", "court": null},
  "tasks": [
    {"kind": "APPOINTMENT", "source_page": "3", "description": "Nomeação do perito", "relevant_excerpt": "Nomeio como perito..."},
    {"kind": "INTERROGATORIES", "source_page": "5", "description": "Quesitos do autor", "party": "autor",
     "questions": ["Qual a causa do dano?", "Há nexo causal?"]},
    {"kind": "NOTICE", "source_page": "7", "description": "Prazo de 15 dias", "event_date": "08/01/2024"},
    {"kind": "FEE_PROPOSAL", "source_page": "7", "description": "Apresentar proposta"}
  ]
}` + "\n```"

func TestAnalyze_FullMode(t *testing.T) {
	gen := &fakeGenerator{answer: fullAnswer}
	a := newTestAnalyzer(gen)

	text := "--- PAGE 3 ---\nNomeio como perito o Dr. Fulano\n--- PAGE 5 ---\nQuesitos do autor\n"
	res, err := a.Analyze(context.Background(), text, ModeFull)
	require.NoError(t, err)

	assert.Equal(t, 1, gen.calls)
	assert.True(t, strings.HasSuffix(gen.prompt, text), "document text must be last and untruncated")
	assert.Contains(t, gen.prompt, "--- PAGE n ---")
	assert.Contains(t, gen.prompt, `"source_page"`)

	assert.Equal(t, "Ação indenizatória - erro médico", res.Summary)
	require.NotNil(t, res.Metadata.Plaintiff)
	assert.Equal(t, "Maria", *res.Metadata.Plaintiff)
	assert.Nil(t, res.Metadata.Court)

	require.Len(t, res.Tasks, 4)
	assert.Equal(t, constants.Appointment, res.Tasks[0].Kind)
	assert.Equal(t, "3", res.Tasks[0].SourcePage)
	assert.Equal(t, []string{"Qual a causa do dano?", "Há nexo causal?"}, res.Tasks[1].Questions)
	assert.Equal(t, "autor", res.Tasks[1].Party)
	assert.Equal(t, "08/01/2024", res.Tasks[2].EventDate)
	assert.Equal(t, constants.FeeProposal, res.Tasks[3].Kind)
	assert.Equal(t, []int{1}, res.TasksOfKind(constants.Interrogatories))
}

func TestAnalyze_DefaultsForMissingFields(t *testing.T) {
	a := newTestAnalyzer(&fakeGenerator{answer: `{"tasks":[{"kind":"INTERROGATORIES","source_page":"9","description":"sem lista"}]}`})

	res, err := a.Analyze(context.Background(), "x", ModeInterrogatories)
	require.NoError(t, err)
	require.Len(t, res.Tasks, 1)
	assert.NotNil(t, res.Tasks[0].Questions)
	assert.Empty(t, res.Tasks[0].Questions)
	assert.Nil(t, res.Metadata.CaseNumber)
	assert.Empty(t, res.Summary)
}

func TestAnalyze_NoTasks(t *testing.T) {
	a := newTestAnalyzer(&fakeGenerator{answer: `{"summary":"nada","tasks":null}`})
	res, err := a.Analyze(context.Background(), "x", ModeFull)
	require.NoError(t, err)
	assert.NotNil(t, res.Tasks)
	assert.Empty(t, res.Tasks)
}

func TestAnalyze_ServiceErrors(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{"transport failure", &fakeGenerator{err: errors.New("quota exceeded")}},
		{"empty answer", &fakeGenerator{answer: "  \n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestAnalyzer(tt.gen).Analyze(context.Background(), "x", ModeFull)
			require.Error(t, err)
			assert.True(t, common.HasCode(err, common.CodeExtractionService))
			assert.Equal(t, 1, tt.gen.calls, "no retries")
		})
	}
}

func TestAnalyze_TimeoutIsServiceError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gen := &fakeGenerator{err: errors.New("request aborted")}

	_, err := newTestAnalyzer(gen).Analyze(ctx, "x", ModeFull)
	require.Error(t, err)
	assert.True(t, common.HasCode(err, common.CodeExtractionService))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyze_ParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		mode   AnalysisMode
	}{
		{"prose only", "Não encontrei eventos.", ModeFull},
		{"missing source page", `{"tasks":[{"kind":"NOTICE","description":"x"}]}`, ModeFull},
		{"unknown kind", `{"tasks":[{"kind":"SENTENCE","source_page":"1","description":"x"}]}`, ModeFull},
		{"kind outside mode", `{"tasks":[{"kind":"NOTICE","source_page":"1","description":"x"}]}`, ModeAppointment},
		{"tasks not a list", `{"tasks":"none"}`, ModeFull},
		{
			"questions as objects",
			`{"tasks":[{"kind":"INTERROGATORIES","source_page":"5","description":"Quesitos do autor",` +
				`"questions":[{"numero":1,"texto":"Qual a causa do dano?"},{"numero":2,"texto":"Há nexo causal?"}]}]}`,
			ModeFull,
		},
		{
			"one question not a string",
			`{"tasks":[{"kind":"INTERROGATORIES","source_page":"5","description":"x","questions":["Qual a causa?",2]}]}`,
			ModeInterrogatories,
		},
		{"metadata value not a string", `{"metadata":{"court":{"nome":"1ª Vara Cível"}},"tasks":[]}`, ModeFull},
		{"metadata not an object", `{"metadata":"0801234-56.2023","tasks":[]}`, ModeFull},
		{"summary not a string", `{"summary":{"texto":"Ação indenizatória"},"tasks":[]}`, ModeFull},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestAnalyzer(&fakeGenerator{answer: tt.answer}).Analyze(context.Background(), "x", tt.mode)
			require.Error(t, err)
			assert.True(t, common.HasCode(err, common.CodeExtractionParse))

			var appErr *common.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.answer, appErr.Detail)
		})
	}
}

func TestParseAnalysisMode(t *testing.T) {
	m, err := ParseAnalysisMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeFull, m)

	m, err = ParseAnalysisMode(" Interrogatories ")
	require.NoError(t, err)
	assert.Equal(t, ModeInterrogatories, m)

	_, err = ParseAnalysisMode("everything")
	assert.Error(t, err)

	assert.Equal(t, []constants.TaskKind{constants.Appointment}, ModeAppointment.AllowedKinds())
	assert.Len(t, ModeFull.AllowedKinds(), 4)
}

func TestBuildPrompt_ModeInstructions(t *testing.T) {
	p := BuildPrompt("TEXTO", ModeAppointment)
	assert.Contains(t, p, "APPOINTMENT")
	assert.NotContains(t, p, `"NOTICE"`)
	assert.True(t, strings.HasSuffix(p, "TEXTO"))
}
