package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/perito/constants"
	"github.com/joseph-ayodele/perito/internal/common"
	"github.com/joseph-ayodele/perito/internal/deadline"
	"github.com/joseph-ayodele/perito/internal/entity"
	"github.com/joseph-ayodele/perito/internal/export"
	"github.com/joseph-ayodele/perito/internal/llm"
	"github.com/joseph-ayodele/perito/internal/pipeline"
)

type analyzeOptions struct {
	mode     string
	outDir   string
	template string
	jsonOut  bool
	xlsxPath string
	generate bool
	hours    float64
	rate     float64
	days     int
	start    string
}

func newAnalyzeCmd(a *app) *cobra.Command {
	o := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze <processo.pdf>",
		Short: "Analisa os autos e lista as tarefas do perito",
		Long: `Extrai o texto do PDF, identifica nomeações, quesitos, intimações e pedidos de
proposta de honorários, e opcionalmente gera os documentos de cada tarefa.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, a, o, args[0])
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.mode, "mode", "m", string(llm.ModeFull), "analysis mode: full, appointment, interrogatories")
	f.StringVarP(&o.outDir, "out", "o", "", "output directory for generated documents (default OUTPUT_DIR)")
	f.StringVar(&o.template, "template", "", "DOCX template for the acceptance petition (default: built-in template)")
	f.BoolVar(&o.jsonOut, "json", false, "print the analysis result as JSON")
	f.StringVar(&o.xlsxPath, "xlsx", "", "also write the task list to this XLSX file")
	f.BoolVarP(&o.generate, "generate", "g", false, "generate the document of every task")
	f.Float64Var(&o.hours, "hours", 0, "estimated hours for fee proposals")
	f.Float64Var(&o.rate, "rate", 0, "hourly rate (R$) for fee proposals")
	f.IntVar(&o.days, "days", pipeline.DefaultNoticeDays, "business days for notice deadlines")
	f.StringVar(&o.start, "start", "", "notice date, dd/mm/yyyy (default: today)")
	return cmd
}

func runAnalyze(cmd *cobra.Command, a *app, o *analyzeOptions, path string) error {
	mode, err := llm.ParseAnalysisMode(o.mode)
	if err != nil {
		return common.InvalidInputError(err.Error())
	}
	if constants.MapExtToFormat(filepath.Ext(path)) != constants.PDF {
		return common.InvalidInputErrorf("%s is not a PDF file", path)
	}
	if o.template != "" && constants.MapExtToFormat(filepath.Ext(o.template)) != constants.DOCX {
		return common.InvalidInputErrorf("template %s is not a .docx file", o.template)
	}
	pdf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	ctx := cmd.Context()
	proc, err := a.processor(ctx)
	if err != nil {
		return err
	}
	sess := pipeline.NewSession(a.cfg.Documents.ExpertName)
	res, err := proc.Analyze(ctx, sess, filepath.Base(path), pdf, mode)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if o.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		printResult(out, res)
	}

	if o.xlsxPath != "" {
		data, err := export.NewService(a.logger).ExportTasksXLSX(res, sess.SourceName)
		if err != nil {
			return err
		}
		if err := os.WriteFile(o.xlsxPath, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", o.xlsxPath, err)
		}
		fmt.Fprintf(out, "Planilha: %s\n", o.xlsxPath)
	}

	if !o.generate {
		return nil
	}
	return generateAll(out, a, o, proc, sess)
}

func generateAll(out io.Writer, a *app, o *analyzeOptions, proc *pipeline.Processor, sess *pipeline.Session) error {
	dir := o.outDir
	if dir == "" {
		dir = a.cfg.Documents.OutputDir
	}
	var tpl []byte
	if o.template != "" {
		b, err := os.ReadFile(o.template)
		if err != nil {
			return fmt.Errorf("read template: %w", err)
		}
		tpl = b
	}
	start := time.Now()
	if o.start != "" {
		t, err := deadline.ParseDate(o.start, time.Local)
		if err != nil {
			return err
		}
		start = t
	}

	var artifacts []pipeline.Artifact
	for i, t := range sess.Result.Tasks {
		switch t.Kind {
		case constants.Appointment:
			art, err := proc.AcceptancePetition(sess, i, pipeline.AcceptanceInput{Template: tpl})
			if err != nil {
				return err
			}
			artifacts = append(artifacts, art)
		case constants.Interrogatories:
			art, err := proc.InterrogatoriesWorksheet(sess, i)
			if err != nil {
				return err
			}
			artifacts = append(artifacts, art)
		case constants.Notice:
			d, err := proc.NoticeDeadline(sess, i, start, o.days)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "[%d] Prazo (pág. %s): %d dias úteis a partir de %s vencem em %s\n",
				i, d.SourcePage, d.BusinessDays, d.Start.Format(deadline.DateLayout), d.Display)
		case constants.FeeProposal:
			if o.hours <= 0 || o.rate <= 0 {
				fmt.Fprintf(out, "[%d] Proposta de honorários: informe --hours e --rate para gerar o documento\n", i)
				continue
			}
			art, _, err := proc.FeeProposal(sess, i, pipeline.FeeInput{TotalHours: o.hours, HourlyRate: o.rate})
			if err != nil {
				return err
			}
			artifacts = append(artifacts, art)
		}
	}
	if len(sess.Result.TasksOfKind(constants.Interrogatories)) > 1 {
		art, err := proc.InterrogatoriesReport(sess)
		if err != nil {
			return err
		}
		artifacts = append(artifacts, art)
	}

	if len(artifacts) > 0 {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	for _, art := range artifacts {
		p := filepath.Join(dir, art.FileName)
		if err := os.WriteFile(p, art.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", p, err)
		}
		fmt.Fprintf(out, "Documento: %s\n", p)
	}
	return nil
}

func printResult(w io.Writer, res *entity.AnalysisResult) {
	if res.Summary != "" {
		fmt.Fprintf(w, "Resumo: %s\n", res.Summary)
	}
	md := res.Metadata
	for _, f := range []struct {
		label string
		value *string
	}{
		{"Processo", md.CaseNumber},
		{"Juízo", md.Court},
		{"Autor", md.Plaintiff},
		{"Réu", md.Defendant},
	} {
		if f.value != nil {
			fmt.Fprintf(w, "%s: %s\n", f.label, *f.value)
		}
	}
	if len(res.Tasks) == 0 {
		fmt.Fprintln(w, "Nenhuma pendência encontrada nestes autos.")
		return
	}
	fmt.Fprintln(w)
	for i, t := range res.Tasks {
		title := t.Title
		if title == "" {
			title = t.Kind.Label()
		}
		fmt.Fprintf(w, "[%d] %s (pág. %s)", i, title, t.SourcePage)
		if t.EventDate != "" {
			fmt.Fprintf(w, " - %s", t.EventDate)
		}
		fmt.Fprintln(w)
		if t.Description != "" {
			fmt.Fprintf(w, "    %s\n", t.Description)
		}
		for n, q := range t.Questions {
			fmt.Fprintf(w, "    %d. %s\n", n+1, q)
		}
	}
}
