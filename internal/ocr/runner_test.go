package ocr

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner_CapturesOutput(t *testing.T) {
	r := execRunner{logger: quietLogger()}
	out, _, err := r.Run(context.Background(), "sh", "-c", "printf 'pagina 1'")
	require.NoError(t, err)
	assert.Equal(t, "pagina 1", string(out))
}

func TestExecRunner_FailureLogsClippedStderr(t *testing.T) {
	var logs bytes.Buffer
	r := execRunner{logger: slog.New(slog.NewTextHandler(&logs, nil))}

	_, stderr, err := r.Run(context.Background(), "sh", "-c", "echo 'Syntax Error' >&2; exit 3")
	require.Error(t, err)
	assert.Equal(t, "Syntax Error\n", string(stderr))
	assert.Contains(t, logs.String(), "msg=ocr.exec.failed")
	assert.Contains(t, logs.String(), "elapsed_ms=")
}

func TestClip(t *testing.T) {
	assert.Equal(t, "abc", clip("abc", 5))
	long := strings.Repeat("x", 10)
	assert.Equal(t, "xxxx...(truncated)", clip(long, 4))
}
