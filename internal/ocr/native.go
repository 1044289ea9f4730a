package ocr

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/perito/internal/common"
)

// nativeText reads pages in-process. The reader panics on some malformed
// files; a panic while opening is an unreadable document, a panic on one page
// only skips that page.
func (e *Extractor) nativeText(ctx context.Context, data []byte) (pages []PageText, total int, warnings []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = common.UnreadableDocumentError(fmt.Errorf("pdf reader: %v", r))
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, 0, nil, common.UnreadableDocumentError(err)
	}

	total = r.NumPage()
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, total, warnings, err
		}
		txt, perr := pageText(r, i)
		if perr != nil {
			warnings = append(warnings, fmt.Sprintf("page %d: %v", i, perr))
			e.logger.Warn("ocr.pdf.page_error", "page", i, "error", perr)
			continue
		}
		pages = append(pages, PageText{Number: i, Text: txt})
	}
	return pages, total, warnings, nil
}

func pageText(r *pdf.Reader, n int) (txt string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("extract text: %v", rec)
		}
	}()
	p := r.Page(n)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}
