package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/perito/internal/common"
	"github.com/joseph-ayodele/perito/internal/entity"
)

// Analyzer turns annotated document text into an AnalysisResult using a
// Generator.
type Analyzer struct {
	gen    Generator
	logger *slog.Logger
}

func NewAnalyzer(gen Generator, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{gen: gen, logger: logger}
}

var _ TaskExtractor = (*Analyzer)(nil)

// Analyze makes exactly one Generate call. Service failures (network,
// quota, timeout, empty answer) are EXTRACTION_SERVICE; answers that carry
// no valid payload for the mode are EXTRACTION_PARSE with the raw answer.
func (a *Analyzer) Analyze(ctx context.Context, documentText string, mode AnalysisMode) (*entity.AnalysisResult, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
	}
	start := time.Now()
	if mode == "" {
		mode = ModeFull
	}

	prompt := BuildPrompt(documentText, mode)
	a.logger.Info("llm.analyze.start",
		"req_id", rid,
		"session_id", common.SessionIDFromContext(ctx),
		"provider", a.gen.Name(),
		"mode", mode,
		"text_len", len(documentText),
		"prompt_len", len(prompt),
	)

	raw, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		a.logger.Error("llm.analyze.service_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, common.ExtractionServiceError(err)
	}
	if strings.TrimSpace(raw) == "" {
		a.logger.Error("llm.analyze.empty_answer", "req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, common.ExtractionServiceError(errors.New("empty answer"))
	}

	res, err := a.parse(raw, mode, rid)
	if err != nil {
		a.logger.Error("llm.analyze.parse_error",
			"req_id", rid, "error", err, "raw_len", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	a.logger.Info("llm.analyze.ok",
		"req_id", rid,
		"mode", mode,
		"tasks", len(res.Tasks),
		"case_number", entity.Deref(res.Metadata.CaseNumber),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// ParseAnalysis runs the post-processing chain on a raw model answer:
// sanitize, normalize, validate against the mode's schema, decode.
func ParseAnalysis(raw string, mode AnalysisMode, logger *slog.Logger) (*entity.AnalysisResult, error) {
	a := &Analyzer{logger: logger}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a.parse(raw, mode, "")
}

func (a *Analyzer) parse(raw string, mode AnalysisMode, rid string) (*entity.AnalysisResult, error) {
	payload, err := SanitizeAndExtract(raw)
	if err != nil {
		return nil, err
	}

	normalized, _, err := NormalizeAnalysisJSON(payload, a.logger.With("req_id", rid))
	if err != nil {
		return nil, common.ExtractionParseError("answer is not a JSON object", raw, err)
	}

	schema := BuildAnalysisJSONSchema(mode.AllowedKinds())
	if err := ValidateJSONAgainstSchema(schema, normalized); err != nil {
		return nil, common.ExtractionParseError("answer does not match the analysis schema", raw, err)
	}

	var out entity.AnalysisResult
	if err := json.Unmarshal(normalized, &out); err != nil {
		return nil, common.ExtractionParseError("decode analysis", raw, err)
	}

	allowed := mode.AllowedKinds()
	if out.Tasks == nil {
		out.Tasks = []entity.Task{}
	}
	for i := range out.Tasks {
		t := &out.Tasks[i]
		if !slices.Contains(allowed, t.Kind) {
			return nil, common.ExtractionParseError(
				fmt.Sprintf("task kind %s not allowed in %s mode", t.Kind, mode), raw, nil)
		}
		if t.Questions == nil {
			t.Questions = []string{}
		}
	}
	return &out, nil
}
