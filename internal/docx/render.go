package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/valyala/fasttemplate"

	"github.com/joseph-ayodele/perito/internal/common"
)

// RenderContext maps placeholder names to values.
type RenderContext map[string]string

const (
	startTag = "{{"
	endTag   = "}}"

	// NUL cannot occur in XML, so it safely marks where a nested paragraph
	// sat while its parent is rewritten.
	nestedMark = "\x00p%d\x00"
)

var (
	reParaTag  = regexp.MustCompile(`<w:p(?:\s[^>]*)?>|</w:p>`)
	reTextRun  = regexp.MustCompile(`(?s)(<w:t(?:\s[^>]*)?>)(.*?)(</w:t>)`)
	reTextOrBr = regexp.MustCompile(`(?s)<w:t(?:\s[^>]*)?>.*?</w:t>|<w:br\s*/>|<w:br></w:br>`)
)

// Render fills {{name}} placeholders in the body, headers and footers of a
// DOCX template and returns the new package. Whitespace inside the braces is
// ignored. Placeholders with no value in ctx are left as they are.
//
// Word often splits a placeholder over several runs; when a paragraph holds a
// placeholder its text is merged into the first run before substitution, so
// that paragraph keeps only the first run's formatting.
func Render(template []byte, ctx RenderContext) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, common.TemplateRenderError("template is not a DOCX package", err)
	}

	var found bool
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			found = true
			break
		}
	}
	if !found {
		return nil, common.TemplateRenderError("template has no word/document.xml", nil)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		data, err := readZipFile(f)
		if err != nil {
			return nil, common.TemplateRenderError("read "+f.Name, err)
		}
		if isTextPart(f.Name) {
			data = []byte(renderPart(string(data), ctx))
		}

		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: f.Method, Modified: f.Modified})
		if err != nil {
			return nil, common.TemplateRenderError("write "+f.Name, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, common.TemplateRenderError("write "+f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, common.TemplateRenderError("close package", err)
	}
	return buf.Bytes(), nil
}

// Placeholders lists the distinct placeholder names found in a template.
func Placeholders(template []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, common.TemplateRenderError("template is not a DOCX package", err)
	}
	seen := map[string]bool{}
	var names []string
	for _, f := range zr.File {
		if !isTextPart(f.Name) {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return nil, common.TemplateRenderError("read "+f.Name, err)
		}
		walkParagraphs(string(data), func(own string) string {
			text := html.UnescapeString(paragraphText(own))
			_ = fasttemplate.ExecuteFuncString(text, startTag, endTag, func(w io.Writer, tag string) (int, error) {
				tag = strings.TrimSpace(tag)
				if !seen[tag] {
					seen[tag] = true
					names = append(names, tag)
				}
				return 0, nil
			})
			return own
		})
	}
	return names, nil
}

func isTextPart(name string) bool {
	if name == "word/document.xml" {
		return true
	}
	dir, file := path.Split(name)
	return dir == "word/" && strings.HasSuffix(file, ".xml") &&
		(strings.HasPrefix(file, "header") || strings.HasPrefix(file, "footer"))
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func renderPart(xmlText string, ctx RenderContext) string {
	return walkParagraphs(xmlText, func(own string) string {
		if !strings.Contains(paragraphText(own), startTag) {
			return own
		}
		return renderParagraph(own, ctx)
	})
}

// walkParagraphs calls fn with the content of every w:p element in x and
// splices the result back. A paragraph nested inside another one (a text
// box, for instance) is handled on its own and appears in its parent's
// content only as an opaque marker.
func walkParagraphs(x string, fn func(own string) string) string {
	var out strings.Builder
	for {
		start, end, ok := nextParagraph(x)
		if !ok {
			out.WriteString(x)
			return out.String()
		}
		out.WriteString(x[:start])
		out.WriteString(walkParagraph(x[start:end], fn))
		x = x[end:]
	}
}

func walkParagraph(p string, fn func(own string) string) string {
	if strings.HasSuffix(p, "/>") {
		return p
	}
	open := strings.IndexByte(p, '>') + 1
	inner := p[open : len(p)-len("</w:p>")]

	var own strings.Builder
	var nested []string
	for {
		start, end, ok := nextParagraph(inner)
		if !ok {
			own.WriteString(inner)
			break
		}
		own.WriteString(inner[:start])
		fmt.Fprintf(&own, nestedMark, len(nested))
		nested = append(nested, walkParagraph(inner[start:end], fn))
		inner = inner[end:]
	}

	body := fn(own.String())
	for i, n := range nested {
		body = strings.Replace(body, fmt.Sprintf(nestedMark, i), n, 1)
	}
	return p[:open] + body + "</w:p>"
}

// nextParagraph finds the first complete top-level w:p element in x,
// self-closing ones included. Unbalanced markup yields ok == false.
func nextParagraph(x string) (start, end int, ok bool) {
	depth, pos := 0, 0
	for {
		m := reParaTag.FindStringIndex(x[pos:])
		if m == nil {
			return 0, 0, false
		}
		a, b := pos+m[0], pos+m[1]
		pos = b

		tag := x[a:b]
		switch {
		case tag == "</w:p>":
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				return start, b, true
			}
		case strings.HasSuffix(tag, "/>"):
			if depth == 0 {
				return a, b, true
			}
		default:
			if depth == 0 {
				start = a
			}
			depth++
		}
	}
}

// paragraphText concatenates the paragraph's text, with plain line breaks
// as newlines.
func paragraphText(p string) string {
	var b strings.Builder
	for _, el := range reTextOrBr.FindAllString(p, -1) {
		if strings.HasPrefix(el, "<w:br") {
			b.WriteString("\n")
			continue
		}
		b.WriteString(reTextRun.FindStringSubmatch(el)[2])
	}
	return b.String()
}

// renderParagraph moves the paragraph's text and line breaks into its first
// w:t element, empties the others and substitutes placeholders.
func renderParagraph(p string, ctx RenderContext) string {
	merged := html.UnescapeString(paragraphText(p))
	filled := substitute(merged, ctx)

	first := true
	return reTextOrBr.ReplaceAllStringFunc(p, func(el string) string {
		if strings.HasPrefix(el, "<w:br") {
			return ""
		}
		m := reTextRun.FindStringSubmatch(el)
		if !first {
			return m[1] + m[3]
		}
		first = false
		return `<w:t xml:space="preserve">` + textWithBreaks(filled) + m[3]
	})
}

func substitute(text string, ctx RenderContext) string {
	return fasttemplate.ExecuteFuncString(text, startTag, endTag, func(w io.Writer, tag string) (int, error) {
		if v, ok := ctx[strings.TrimSpace(tag)]; ok {
			return w.Write([]byte(v))
		}
		return w.Write([]byte(startTag + tag + endTag))
	})
}

func textWithBreaks(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = escapeText(l)
	}
	return strings.Join(lines, `</w:t><w:br/><w:t xml:space="preserve">`)
}

func escapeText(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
