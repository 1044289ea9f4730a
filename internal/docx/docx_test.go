package docx

import (
	"archive/zip"
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/perito/internal/common"
)

const nsW = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

func readPart(t *testing.T, pkg []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			require.NoError(t, err)
			defer rc.Close()
			b, err := io.ReadAll(rc)
			require.NoError(t, err)
			return string(b)
		}
	}
	t.Fatalf("part %s not found", name)
	return ""
}

func packageWith(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func wrapBody(paragraphs string) string {
	return `<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="` + nsW + `"><w:body>` + paragraphs + `</w:body></w:document>`
}

func TestRender_DefaultTemplateRoundTrip(t *testing.T) {
	tpl, err := DefaultTemplate()
	require.NoError(t, err)

	out, err := Render(tpl, RenderContext{KeyCaseNumber: "123-45", KeyExpertName: "Dra. Ana"})
	require.NoError(t, err)

	doc := readPart(t, out, "word/document.xml")
	assert.Contains(t, doc, "123-45")
	assert.NotContains(t, doc, "{{numero_processo}}")
	assert.Contains(t, doc, "Dra. Ana")
	// no value supplied: token stays visible
	assert.Contains(t, doc, "{{vara}}")

	// the rest of the package is carried over
	assert.Equal(t, readPart(t, tpl, "word/styles.xml"), readPart(t, out, "word/styles.xml"))
}

func TestRender_SplitRuns(t *testing.T) {
	tpl := packageWith(t, map[string]string{
		"word/document.xml": wrapBody(
			`<w:p w:rsidR="00A1"><w:r><w:t xml:space="preserve">Proc. {{numero_</w:t></w:r>` +
				`<w:r><w:rPr><w:b/></w:rPr><w:t>processo}}</w:t></w:r><w:r><w:t> fim</w:t></w:r></w:p>` +
				`<w:p><w:r><w:t>sem marcador</w:t></w:r></w:p>`),
	})

	out, err := Render(tpl, RenderContext{"numero_processo": "123-45"})
	require.NoError(t, err)

	doc := readPart(t, out, "word/document.xml")
	assert.Contains(t, doc, `<w:t xml:space="preserve">Proc. 123-45 fim</w:t>`)
	assert.Contains(t, doc, `<w:rPr><w:b/></w:rPr><w:t></w:t>`)
	assert.Contains(t, doc, `<w:t>sem marcador</w:t>`)
	assert.NotContains(t, doc, "{{")
}

func TestRender_ValuesAndTokens(t *testing.T) {
	tpl := packageWith(t, map[string]string{
		"word/document.xml": wrapBody(
			`<w:p><w:r><w:t>Data: {{ data_atual }}</w:t></w:r></w:p>` +
				`<w:p><w:r><w:t>Partes: {{autor}}</w:t></w:r></w:p>` +
				`<w:p><w:r><w:t>Corpo: {{corpo_peticao}}</w:t></w:r></w:p>` +
				`<w:p><w:r><w:t>Aberto {{sem_fim</w:t></w:r></w:p>`),
		"word/header1.xml": `<w:hdr xmlns:w="` + nsW + `"><w:p><w:r><w:t>{{numero_processo}}</w:t></w:r></w:p></w:hdr>`,
		"word/footer2.xml": `<w:ftr xmlns:w="` + nsW + `"><w:p><w:r><w:t>{{nome_perito}}</w:t></w:r></w:p></w:ftr>`,
		"word/other.xml":   `<x>{{numero_processo}}</x>`,
	})

	out, err := Render(tpl, RenderContext{
		"data_atual":      "15 de outubro de 2026",
		"autor":           "A & B <Ltda>",
		"corpo_peticao":   "linha 1\nlinha 2",
		"numero_processo": "0001",
		"nome_perito":     "Dr. Perito",
		"ignored":         "extra keys are fine",
	})
	require.NoError(t, err)

	doc := readPart(t, out, "word/document.xml")
	assert.Contains(t, doc, "Data: 15 de outubro de 2026")
	assert.Contains(t, doc, "Partes: A &amp; B &lt;Ltda&gt;")
	assert.Contains(t, doc, `Corpo: linha 1</w:t><w:br/><w:t xml:space="preserve">linha 2`)
	assert.Contains(t, doc, "Aberto {{sem_fim")

	assert.Contains(t, readPart(t, out, "word/header1.xml"), ">0001<")
	assert.Contains(t, readPart(t, out, "word/footer2.xml"), ">Dr. Perito<")
	assert.Equal(t, `<x>{{numero_processo}}</x>`, readPart(t, out, "word/other.xml"))
}

func TestRender_EscapedTextSurvives(t *testing.T) {
	tpl := packageWith(t, map[string]string{
		"word/document.xml": wrapBody(`<w:p><w:r><w:t>R&amp;D {{x}} &lt;ok&gt;</w:t></w:r></w:p>`),
	})
	out, err := Render(tpl, RenderContext{"x": "1"})
	require.NoError(t, err)
	assert.Contains(t, readPart(t, out, "word/document.xml"), "R&amp;D 1 &lt;ok&gt;")
}

func TestRender_MalformedTemplate(t *testing.T) {
	_, err := Render([]byte("not a zip"), RenderContext{})
	require.Error(t, err)
	assert.True(t, common.HasCode(err, common.CodeTemplateRender))

	noDoc := packageWith(t, map[string]string{"word/styles.xml": "<w:styles/>"})
	_, err = Render(noDoc, RenderContext{})
	require.Error(t, err)
	assert.True(t, common.HasCode(err, common.CodeTemplateRender))
}

func TestPlaceholders(t *testing.T) {
	tpl, err := DefaultTemplate()
	require.NoError(t, err)

	names, err := Placeholders(tpl)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		KeyCourt, KeyCaseNumber, KeyPlaintiff, KeyDefendant, KeyBody, KeyCity, KeyDate, KeyExpertName,
	}, names)
}

func TestBuilder_Document(t *testing.T) {
	pkg, err := NewBuilder().
		Title("LAUDO PERICIAL").
		Heading(1, "1. QUESITOS DO AUTOR").
		Paragraph(Bold("1. Qual a causa?")).
		Text("RESPOSTA: _______________________").
		AlignedParagraph(AlignCenter, Plain("assinatura\nPerito Judicial")).
		Bytes()
	require.NoError(t, err)

	doc := readPart(t, pkg, "word/document.xml")
	assert.Contains(t, doc, `<w:pStyle w:val="Title">`)
	assert.Contains(t, doc, `<w:pStyle w:val="Heading1">`)
	assert.Contains(t, doc, `<w:jc w:val="center">`)
	assert.Contains(t, doc, `<w:b w:val="true">`)
	assert.Contains(t, doc, "<w:t>1. Qual a causa?</w:t>")
	assert.Contains(t, doc, `<w:pgSz w:w="11906" w:h="16838">`)
	for _, attr := range []string{`w:top="1701"`, `w:left="1701"`, `w:right="1134"`, `w:bottom="1134"`} {
		assert.Contains(t, doc, attr)
	}
	assert.Less(t, strings.Index(doc, "Qual a causa"), strings.Index(doc, "RESPOSTA"))
	assert.Less(t, strings.Index(doc, "assinatura"), strings.Index(doc, "<w:br></w:br>"))

	styles := readPart(t, pkg, "word/styles.xml")
	assert.Contains(t, styles, `w:ascii="Times New Roman"`)
	assert.Contains(t, styles, `w:val="pt-BR"`)

	types := readPart(t, pkg, "[Content_Types].xml")
	assert.Contains(t, types, "wordprocessingml.document.main+xml")
}

func TestBuilder_CustomMargins(t *testing.T) {
	pkg, err := NewBuilder().Margins(Margins{Top: 1, Bottom: 1, Left: 2.5, Right: 2.5}).Text("x").Bytes()
	require.NoError(t, err)

	doc := readPart(t, pkg, "word/document.xml")
	assert.Contains(t, doc, `w:top="567"`)
	assert.Contains(t, doc, `w:left="1418"`)
}

func TestRender_BuilderOutputAsTemplate(t *testing.T) {
	tpl, err := NewBuilder().
		AlignedParagraph(AlignCenter, Plain("___\n{{nome_perito}}\nPerito Judicial")).
		Bytes()
	require.NoError(t, err)

	out, err := Render(tpl, RenderContext{KeyExpertName: "Dra. Ana"})
	require.NoError(t, err)

	doc := readPart(t, out, "word/document.xml")
	assert.Contains(t, doc, `___</w:t><w:br/><w:t xml:space="preserve">Dra. Ana</w:t><w:br/><w:t xml:space="preserve">Perito Judicial`)
	assert.NotContains(t, doc, "<w:br></w:br>")
}

func TestRender_NestedTextBox(t *testing.T) {
	textBox := `<w:r><w:pict><v:shape><v:textbox><w:txbxContent>` +
		`<w:p><w:r><w:t>Caixa {{vara}}</w:t></w:r></w:p>` +
		`</w:txbxContent></v:textbox></v:shape></w:pict></w:r>`
	tpl := packageWith(t, map[string]string{
		"word/document.xml": wrapBody(
			`<w:p><w:r><w:t xml:space="preserve">Antes {{autor}} </w:t></w:r>` + textBox +
				`<w:r><w:t>depois {{reu}}</w:t></w:r></w:p>` +
				`<w:p w:rsidR="00B2"/>` +
				`<w:p><w:r><w:t>Fim {{numero_processo}}</w:t></w:r></w:p>`),
	})

	out, err := Render(tpl, RenderContext{"autor": "Maria", "reu": "José", "vara": "2ª Vara", "numero_processo": "0001"})
	require.NoError(t, err)

	doc := readPart(t, out, "word/document.xml")
	// the text box keeps its own text and the outer paragraph its own
	assert.Contains(t, doc, `<w:txbxContent><w:p><w:r><w:t xml:space="preserve">Caixa 2ª Vara</w:t></w:r></w:p></w:txbxContent>`)
	assert.Contains(t, doc, `<w:t xml:space="preserve">Antes Maria depois José</w:t>`)
	assert.Contains(t, doc, `<w:p w:rsidR="00B2"/>`)
	assert.Contains(t, doc, "Fim 0001")
	assert.NotContains(t, doc, "{{")
	assert.NotContains(t, doc, "\x00")

	names, err := Placeholders(tpl)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"autor", "vara", "reu", "numero_processo"}, names)
}

func TestTemplateStore_ProvisionsOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "templates", "template_padrao.docx")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	first, err := NewTemplateStore(path, logger).Default()
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)

	// a fresh store must reuse the file, not rewrite it
	second, err := NewTemplateStore(path, logger).Default()
	require.NoError(t, err)
	info2, err := os.Stat(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, info.ModTime(), info2.ModTime())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestTemplateStore_KeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.docx")
	custom := packageWith(t, map[string]string{"word/document.xml": wrapBody("")})
	require.NoError(t, os.WriteFile(path, custom, 0o644))

	s := NewTemplateStore(path, nil)
	got, err := s.Default()
	require.NoError(t, err)
	assert.Equal(t, custom, got)

	// cached: the file can disappear without affecting the store
	require.NoError(t, os.Remove(path))
	got, err = s.Default()
	require.NoError(t, err)
	assert.Equal(t, custom, got)
}
