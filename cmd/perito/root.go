package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/perito/internal/common"
	"github.com/joseph-ayodele/perito/internal/docx"
	"github.com/joseph-ayodele/perito/internal/llm"
	"github.com/joseph-ayodele/perito/internal/llm/gemini"
	"github.com/joseph-ayodele/perito/internal/llm/openai"
	"github.com/joseph-ayodele/perito/internal/ocr"
	"github.com/joseph-ayodele/perito/internal/pipeline"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg    *common.Config
	logger *slog.Logger

	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "perito",
		Short:         "Assistente do perito judicial: tarefas, prazos e documentos a partir dos autos",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := common.LoadConfig()
			if err != nil {
				return err
			}
			if a.logLevel != "" {
				cfg.Log.Level = a.logLevel
			}
			if a.logFormat != "" {
				cfg.Log.Format = a.logFormat
			}
			a.cfg = cfg
			a.logger = common.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
			slog.SetDefault(a.logger)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (default from LOG_LEVEL)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: text or json (default from LOG_FORMAT)")

	root.AddCommand(
		newAnalyzeCmd(a),
		newDeadlineCmd(a),
		newFeeCmd(a),
		newTextCmd(a),
		newInspectCmd(a),
		newTemplateCmd(a),
	)
	return root
}

func (a *app) extractor() *ocr.Extractor {
	return ocr.NewExtractor(ocr.Config{Backend: a.cfg.PDF.Backend, Pdftotext: a.cfg.PDF.Pdftotext}, a.logger)
}

func (a *app) templates() *docx.TemplateStore {
	return docx.NewTemplateStore(a.cfg.Documents.DefaultTemplatePath, a.logger)
}

func (a *app) generator(ctx context.Context) (llm.Generator, error) {
	c := a.cfg.LLM
	switch c.Provider {
	case common.ProviderOpenAI:
		return openai.NewClient(openai.Config{
			APIKey:      c.APIKey,
			BaseURL:     c.BaseURL,
			Model:       c.Model,
			Temperature: c.Temperature,
			Timeout:     c.Timeout,
		}, a.logger), nil
	case common.ProviderGemini:
		gc, err := gemini.NewClient(ctx, gemini.Config{APIKey: c.APIKey, Model: c.Model, Temperature: c.Temperature}, a.logger)
		if err != nil {
			return nil, err
		}
		return gc, nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", c.Provider)
	}
}

// processor wires the full analysis pipeline; it needs a valid credential.
func (a *app) processor(ctx context.Context) (*pipeline.Processor, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	gen, err := a.generator(ctx)
	if err != nil {
		return nil, common.NewAppError(common.CodeConfig, "create model client", err)
	}
	return a.documents(llm.NewAnalyzer(gen, a.logger)), nil
}

// documents wires a processor usable for document generation and deadlines
// without a model client.
func (a *app) documents(analyzer llm.TaskExtractor) *pipeline.Processor {
	return pipeline.NewProcessor(a.logger, a.extractor(), analyzer, a.templates(), pipeline.Config{
		Timeout: a.cfg.LLM.Timeout,
		City:    a.cfg.Documents.SignatureCity,
	})
}
