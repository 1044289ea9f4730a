package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/perito/internal/common"
	"github.com/joseph-ayodele/perito/internal/entity"
	"github.com/joseph-ayodele/perito/internal/llm"
	"github.com/joseph-ayodele/perito/internal/ocr"
)

// TextExtractor is stage 1: PDF bytes -> page-annotated text.
type TextExtractor interface {
	ExtractText(ctx context.Context, pdf []byte) (ocr.ExtractionResult, error)
}

// TemplateSource supplies the default petition template.
type TemplateSource interface {
	Default() ([]byte, error)
}

type Config struct {
	Timeout  time.Duration  // around the model call; 0 disables
	City     string         // signature city on petitions
	Location *time.Location // for dates printed on documents
}

// Processor coordinates text extraction, analysis and document generation.
type Processor struct {
	Logger    *slog.Logger
	Text      TextExtractor
	Analyzer  llm.TaskExtractor
	Templates TemplateSource

	cfg Config
	now func() time.Time
}

func NewProcessor(logger *slog.Logger, text TextExtractor, analyzer llm.TaskExtractor, templates TemplateSource, cfg Config) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Processor{
		Logger:    logger,
		Text:      text,
		Analyzer:  analyzer,
		Templates: templates,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Analyze extracts the document's text and asks the analyzer for its task
// list. On success the session's result is replaced wholesale; on any error
// the previous result is kept.
func (p *Processor) Analyze(ctx context.Context, sess *Session, sourceName string, pdf []byte, mode llm.AnalysisMode) (*entity.AnalysisResult, error) {
	if sess == nil {
		return nil, common.InvalidInputError("session is required")
	}
	start := time.Now()
	ctx = common.WithSessionID(ctx, sess.ID.String())
	ctx = common.WithRequestID(ctx, uuid.New().String())
	log := p.Logger.With(
		"session_id", sess.ID.String(),
		"req_id", common.RequestIDFromContext(ctx),
		"source", sourceName,
		"mode", string(mode),
	)

	if info, err := ocr.Inspect(pdf); err == nil {
		log.Info("pipeline.analyze.document", "pages", info.PageCount, "encrypted", info.Encrypted, "bytes", info.Bytes)
	}

	text, err := p.Text.ExtractText(ctx, pdf)
	if err != nil {
		log.Error("pipeline.analyze.text_failed", "error", err)
		return nil, err
	}
	if strings.TrimSpace(text.Text) == "" {
		log.Error("pipeline.analyze.no_text", "pages", text.TotalPages)
		return nil, common.UnreadableDocumentError(errors.New("no extractable text on any page"))
	}
	log.Info("pipeline.analyze.text_ok",
		"pages", text.TotalPages,
		"skipped", text.SkippedPages,
		"chars", len(text.Text),
		"method", text.Method,
	)

	llmCtx, cancel := common.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	res, err := p.Analyzer.Analyze(llmCtx, text.Text, mode)
	if err != nil {
		if errors.Is(llmCtx.Err(), context.DeadlineExceeded) && !common.HasCode(err, common.CodeExtractionService) {
			err = common.ExtractionServiceError(err)
		}
		log.Error("pipeline.analyze.error", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}

	sess.Result = res
	sess.SourceName = sourceName
	sess.Mode = mode
	sess.AnalyzedAt = p.now()

	log.Info("pipeline.analyze.ok",
		"tasks", len(res.Tasks),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}
