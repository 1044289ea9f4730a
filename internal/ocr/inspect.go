package ocr

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/joseph-ayodele/perito/internal/common"
)

// Info is structural information about a PDF, independent of its text.
type Info struct {
	PageCount int
	Encrypted bool
	Bytes     int
}

// Inspect parses the PDF structure with pdfcpu.
func Inspect(data []byte) (info Info, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = common.UnreadableDocumentError(fmt.Errorf("pdfcpu: %v", r))
		}
	}()

	if !looksLikePDF(data) {
		return Info{}, common.UnreadableDocumentError(fmt.Errorf("missing %%PDF header"))
	}
	pdfCtx, err := api.ReadContext(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return Info{}, common.UnreadableDocumentError(err)
	}
	return Info{
		PageCount: pdfCtx.PageCount,
		Encrypted: pdfCtx.Encrypt != nil,
		Bytes:     len(data),
	}, nil
}
