package ocr

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/perito/internal/common"
)

const (
	BackendNative    = "native"
	BackendPdftotext = "pdftotext"
)

type Config struct {
	Backend   string // BackendNative (default) | BackendPdftotext
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
}

// PageText is the text of one page that yielded content.
type PageText struct {
	Number int
	Text   string
}

type ExtractionResult struct {
	Text         string // annotated with "--- PAGE n ---" markers
	Pages        []PageText
	TotalPages   int
	SkippedPages int
	Method       string // "pdf-native" | "pdftotext"
	Duration     time.Duration
	Warnings     []string
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendNative
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// WithRunner swaps the command runner used by the pdftotext backend.
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}

// ExtractText turns a PDF into one text blob with a page marker before each
// page that yielded text. Pages without text are skipped, not reported as
// errors. Bytes that cannot be opened as a PDF fail with UNREADABLE_DOCUMENT.
func (e *Extractor) ExtractText(ctx context.Context, data []byte) (ExtractionResult, error) {
	start := time.Now()
	if !looksLikePDF(data) {
		e.logger.Warn("ocr.pdf.not_a_pdf", "bytes", len(data))
		return ExtractionResult{}, common.UnreadableDocumentError(fmt.Errorf("missing %%PDF header"))
	}

	var (
		pages []PageText
		total int
		warns []string
		err   error
		res   ExtractionResult
	)
	switch e.cfg.Backend {
	case BackendPdftotext:
		res.Method = "pdftotext"
		pages, total, warns, err = e.pdfToText(ctx, data)
	case BackendNative:
		res.Method = "pdf-native"
		pages, total, warns, err = e.nativeText(ctx, data)
	default:
		return ExtractionResult{}, fmt.Errorf("unsupported pdf backend: %q", e.cfg.Backend)
	}
	res.Duration = time.Since(start)
	res.Warnings = warns
	if err != nil {
		e.logger.Error("ocr.pdf.extract_failed", "method", res.Method, "error", err)
		return res, err
	}

	kept := make([]PageText, 0, len(pages))
	for _, p := range pages {
		txt := Normalize(p.Text)
		if txt == "" {
			e.logger.Debug("ocr.pdf.page_skipped", "page", p.Number)
			continue
		}
		kept = append(kept, PageText{Number: p.Number, Text: txt})
	}

	res.Pages = kept
	res.TotalPages = total
	res.SkippedPages = total - len(kept)
	res.Text = Annotate(kept)

	e.logger.Info("ocr.pdf.extract_ok",
		"method", res.Method,
		"pages", total,
		"skipped", res.SkippedPages,
		"chars", len(res.Text),
		"warnings", len(warns),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// Annotate joins pages, each prefixed by its "--- PAGE n ---" marker line.
func Annotate(pages []PageText) string {
	var b strings.Builder
	for _, p := range pages {
		fmt.Fprintf(&b, "--- PAGE %d ---\n", p.Number)
		b.WriteString(p.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// looksLikePDF checks for the header within the first KiB, where readers
// tolerate leading junk.
func looksLikePDF(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(head, []byte("%PDF-"))
}
