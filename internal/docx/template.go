package docx

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/joseph-ayodele/perito/internal/common"
)

// Placeholder names understood by the default template.
const (
	KeyCourt      = "vara"
	KeyCaseNumber = "numero_processo"
	KeyPlaintiff  = "autor"
	KeyDefendant  = "reu"
	KeyBody       = "corpo_peticao"
	KeyDate       = "data_atual"
	KeyExpertName = "nome_perito"
	KeyCity       = "cidade"
	KeySourcePage = "pagina"
)

// DefaultTemplate builds the built-in petition template.
func DefaultTemplate() ([]byte, error) {
	return NewBuilder().
		Title("PETIÇÃO").
		Text("Exmo. Sr. Dr. Juiz de Direito da {{vara}}").
		Text("Processo nº {{numero_processo}}").
		Text("Autor: {{autor}} | Réu: {{reu}}").
		AlignedParagraph(AlignJustify, Plain("{{corpo_peticao}}")).
		Text("Nestes termos, pede deferimento.").
		AlignedParagraph(AlignRight, Plain("{{cidade}}, {{data_atual}}.")).
		AlignedParagraph(AlignCenter, Plain("___________________________\n{{nome_perito}}\nPerito Judicial")).
		Bytes()
}

// TemplateStore provisions the default template on disk once and keeps its
// bytes in memory afterwards.
type TemplateStore struct {
	path   string
	logger *slog.Logger

	mu     sync.Mutex
	cached []byte
}

func NewTemplateStore(path string, logger *slog.Logger) *TemplateStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &TemplateStore{path: path, logger: logger}
}

func (s *TemplateStore) Path() string { return s.path }

// Default returns the default template, writing it to the store path first
// if no file exists there. An existing file is never overwritten, so an
// operator may replace it with their own letterhead.
func (s *TemplateStore) Default() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil {
		return s.cached, nil
	}

	data, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		s.logger.Debug("docx.template.loaded", "path", s.path, "bytes", len(data))
	case errors.Is(err, fs.ErrNotExist):
		data, err = s.provision()
		if err != nil {
			return nil, err
		}
	default:
		return nil, common.TemplateRenderError("read default template", err)
	}

	s.cached = data
	return data, nil
}

func (s *TemplateStore) provision() ([]byte, error) {
	data, err := DefaultTemplate()
	if err != nil {
		return nil, common.TemplateRenderError("build default template", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, common.TemplateRenderError("create template dir", err)
	}
	tmp, err := os.CreateTemp(dir, ".template-*.docx")
	if err != nil {
		return nil, common.TemplateRenderError("create temp template", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once renamed
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return nil, common.TemplateRenderError("write temp template", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, common.TemplateRenderError("close temp template", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return nil, common.TemplateRenderError(fmt.Sprintf("install template at %s", s.path), err)
	}

	s.logger.Info("docx.template.provisioned", "path", s.path, "bytes", len(data))
	return data, nil
}
