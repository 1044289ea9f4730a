package docx

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/gomutex/godocx"
	wdoc "github.com/gomutex/godocx/docx"
	"github.com/gomutex/godocx/wml/ctypes"
	"github.com/gomutex/godocx/wml/stypes"
)

const (
	twipsPerCM = 567.0

	// A4 in twips.
	pageWidth  = 11906
	pageHeight = 16838

	bodyFont = "Times New Roman"
	bodySize = 24 // half-points
	bodyLang = "pt-BR"
)

// Margins are page margins in centimetres.
type Margins struct {
	Top, Bottom, Left, Right float64
}

// DefaultMargins is 3 cm top/left and 2 cm bottom/right.
var DefaultMargins = Margins{Top: 3, Bottom: 2, Left: 3, Right: 2}

// Run is a span of text inside a paragraph. Newlines become line breaks.
type Run struct {
	Text string
	Bold bool
}

func Plain(s string) Run { return Run{Text: s} }
func Bold(s string) Run { return Run{Text: s, Bold: true} }

type Alignment string

const (
	AlignLeft    Alignment = ""
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "both"
)

type block struct {
	style string
	align Alignment
	runs  []Run
}

// Builder assembles a document from blocks and serializes it once.
type Builder struct {
	margins Margins
	blocks  []block
}

func NewBuilder() *Builder {
	return &Builder{margins: DefaultMargins}
}

func (b *Builder) Margins(m Margins) *Builder {
	b.margins = m
	return b
}

func (b *Builder) Title(text string) *Builder {
	b.blocks = append(b.blocks, block{style: "Title", align: AlignCenter, runs: []Run{Plain(text)}})
	return b
}

// Heading adds a heading; level is clamped to 1..3.
func (b *Builder) Heading(level int, text string) *Builder {
	level = max(1, min(level, 3))
	b.blocks = append(b.blocks, block{style: fmt.Sprintf("Heading%d", level), runs: []Run{Plain(text)}})
	return b
}

func (b *Builder) Paragraph(runs ...Run) *Builder {
	b.blocks = append(b.blocks, block{runs: runs})
	return b
}

func (b *Builder) AlignedParagraph(align Alignment, runs ...Run) *Builder {
	b.blocks = append(b.blocks, block{align: align, runs: runs})
	return b
}

// Text adds a plain paragraph.
func (b *Builder) Text(s string) *Builder {
	return b.Paragraph(Plain(s))
}

// Bytes serializes the document into a DOCX package.
func (b *Builder) Bytes() ([]byte, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("docx: new document: %w", err)
	}
	setDefaults(doc)

	for _, blk := range b.blocks {
		p := doc.AddEmptyParagraph()
		if blk.style != "" {
			p.Style(blk.style)
		}
		if blk.align != AlignLeft {
			p.Justification(stypes.Justification(blk.align))
		}
		for _, r := range blk.runs {
			addRun(p, r)
		}
	}
	setPage(doc, b.margins)

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, fmt.Errorf("docx: write package: %w", err)
	}
	return buf.Bytes(), nil
}

func addRun(p *wdoc.Paragraph, r Run) {
	lines := strings.Split(r.Text, "\n")
	for i, line := range lines {
		run := p.AddText(line)
		if r.Bold {
			run.Bold(true)
		}
		if i < len(lines)-1 {
			run.AddBreak(nil)
		}
	}
}

// setDefaults makes Times New Roman 12pt in Brazilian Portuguese the base
// run style of the document.
func setDefaults(doc *wdoc.RootDoc) {
	if doc.DocStyles == nil {
		doc.DocStyles = &ctypes.Styles{}
	}
	st := doc.DocStyles
	if st.DocDefaults == nil {
		st.DocDefaults = &ctypes.DocDefault{}
	}
	if st.DocDefaults.RunProp == nil {
		st.DocDefaults.RunProp = &ctypes.RunPropDefault{}
	}
	if st.DocDefaults.RunProp.RunProp == nil {
		st.DocDefaults.RunProp.RunProp = &ctypes.RunProperty{}
	}
	rp := st.DocDefaults.RunProp.RunProp
	rp.Fonts = &ctypes.RunFonts{Ascii: bodyFont, HAnsi: bodyFont, CS: bodyFont}
	rp.Size = ctypes.NewFontSize(bodySize)
	rp.Lang = &ctypes.Lang{Val: ptr(bodyLang)}
}

func setPage(doc *wdoc.RootDoc, m Margins) {
	body := doc.Document.Body
	if body.SectPr == nil {
		body.SectPr = ctypes.NewSectionProper()
	}
	body.SectPr.PageSize = &ctypes.PageSize{Width: ptr(uint64(pageWidth)), Height: ptr(uint64(pageHeight))}
	body.SectPr.PageMargin = &ctypes.PageMargin{
		Top:    ptr(twips(m.Top)),
		Right:  ptr(twips(m.Right)),
		Bottom: ptr(twips(m.Bottom)),
		Left:   ptr(twips(m.Left)),
		Header: ptr(708),
		Footer: ptr(708),
		Gutter: ptr(0),
	}
}

func twips(cm float64) int {
	return int(math.Round(cm * twipsPerCM))
}

func ptr[T any](v T) *T { return &v }
