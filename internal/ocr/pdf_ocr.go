package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/perito/internal/common"
)

// pdfToText runs poppler's pdftotext, which separates pages with a form feed.
func (e *Extractor) pdfToText(ctx context.Context, data []byte) (pages []PageText, total int, warnings []string, err error) {
	tmpDir, err := os.MkdirTemp("", "perito-pdf-*")
	if err != nil {
		return nil, 0, nil, err
	}
	defer func(path string) {
		if err := os.RemoveAll(path); err != nil {
			e.logger.Warn("ocr.pdf.tmp_cleanup_failed", "dir", path, "error", err)
		}
	}(tmpDir)

	in := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(in, data, 0o600); err != nil {
		return nil, 0, nil, err
	}

	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", in, "-")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || ctx.Err() != nil {
			return nil, 0, nil, fmt.Errorf("pdftotext: %w", err)
		}
		return nil, 0, []string{string(errb)}, common.UnreadableDocumentError(fmt.Errorf("pdftotext: %w", err))
	}

	chunks := strings.Split(string(out), "\f")
	// a trailing form feed follows the last page
	if len(chunks) > 1 && strings.TrimSpace(chunks[len(chunks)-1]) == "" {
		chunks = chunks[:len(chunks)-1]
	}
	for i, c := range chunks {
		pages = append(pages, PageText{Number: i + 1, Text: c})
	}
	return pages, len(chunks), nil, nil
}
