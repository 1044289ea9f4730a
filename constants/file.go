package constants

import "strings"

const (
	PDF  = "PDF"
	DOCX = "DOCX"
)

// DocxMIME is the content type of every generated document.
const DocxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// DocumentKind is the file-name stem of a generated document.
type DocumentKind string

const (
	AcceptancePetitionDoc    DocumentKind = "Aceite"
	InterrogatoriesWorksheet DocumentKind = "Laudo_Quesitos"
	FeeProposalDoc           DocumentKind = "Proposta_Honorarios"
)

// AllowedExtensions holds the accepted input extensions and their format.
var AllowedExtensions = map[string]string{
	"pdf":  PDF,
	"docx": DOCX,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns the input format for an extension, or "" if unsupported.
func MapExtToFormat(ext string) string {
	return AllowedExtensions[NormalizeExt(ext)]
}
