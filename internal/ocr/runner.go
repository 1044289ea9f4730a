package ocr

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Runner executes the poppler command-line tools (pdftotext). Tests swap in
// a fake that returns canned page text.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// execRunner runs the tool as a child process bound to ctx, so a cancelled
// analysis also stops a long extraction.
type execRunner struct {
	logger *slog.Logger
}

const maxLoggedStderr = 4 << 10

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		r.logger.Error("ocr.exec.failed",
			"cmd", name,
			"args", strings.Join(args, " "),
			"elapsed_ms", elapsed,
			"error", err,
			"stderr", clip(errb.String(), maxLoggedStderr),
		)
		return out.Bytes(), errb.Bytes(), err
	}
	r.logger.Debug("ocr.exec.ok",
		"cmd", name,
		"elapsed_ms", elapsed,
		"stdout_bytes", out.Len(),
	)
	return out.Bytes(), errb.Bytes(), nil
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}
