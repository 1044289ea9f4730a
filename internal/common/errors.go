package common

import (
	"errors"
	"fmt"
)

// Error codes surfaced at the workflow boundary.
const (
	CodeUnreadableDocument = "UNREADABLE_DOCUMENT"
	CodeExtractionService  = "EXTRACTION_SERVICE"
	CodeExtractionParse    = "EXTRACTION_PARSE"
	CodeTemplateRender     = "TEMPLATE_RENDER"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeConfig             = "CONFIG_ERROR"
)

// AppError represents application-specific errors.
// Detail carries diagnostic payloads such as the raw model answer.
type AppError struct {
	Code    string
	Message string
	Cause   error
	Detail  string
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNoPayload    = errors.New("no structured payload found")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func UnreadableDocumentError(cause error) *AppError {
	return NewAppError(CodeUnreadableDocument, "document could not be opened as PDF", cause)
}

func ExtractionServiceError(cause error) *AppError {
	return NewAppError(CodeExtractionService, "extraction service call failed", cause)
}

// ExtractionParseError keeps the offending raw text for diagnostics.
func ExtractionParseError(message, raw string, cause error) *AppError {
	e := NewAppError(CodeExtractionParse, message, cause)
	e.Detail = raw
	return e
}

func TemplateRenderError(message string, cause error) *AppError {
	return NewAppError(CodeTemplateRender, message, cause)
}

func InvalidInputError(message string) *AppError {
	return NewAppError(CodeInvalidInput, message, ErrInvalidInput)
}

func InvalidInputErrorf(format string, args ...any) *AppError {
	return InvalidInputError(fmt.Sprintf(format, args...))
}

// HasCode reports whether any AppError in err's chain carries code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	for err != nil {
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// UserMessage renders err as the human-readable message shown to the operator.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case HasCode(err, CodeUnreadableDocument):
		return "Não foi possível ler o PDF. Verifique o arquivo e envie novamente."
	case HasCode(err, CodeExtractionService):
		return "O serviço de análise não respondeu. Tente novamente em instantes."
	case HasCode(err, CodeExtractionParse):
		return "A resposta da análise veio em formato inesperado. Tente novamente ou preencha os dados manualmente."
	case HasCode(err, CodeTemplateRender):
		return "Não foi possível gerar o documento. Verifique o modelo .docx enviado."
	case HasCode(err, CodeInvalidInput):
		return "Dados inválidos: " + err.Error()
	case HasCode(err, CodeConfig):
		return "Configuração inválida: " + err.Error()
	default:
		return "Erro inesperado: " + err.Error()
	}
}
