package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/perito/internal/deadline"
	"github.com/joseph-ayodele/perito/internal/docx"
	"github.com/joseph-ayodele/perito/internal/fees"
	"github.com/joseph-ayodele/perito/internal/ocr"
	"github.com/joseph-ayodele/perito/internal/pipeline"
)

func newDeadlineCmd(a *app) *cobra.Command {
	var (
		start string
		days  int
	)
	cmd := &cobra.Command{
		Use:   "deadline",
		Short: "Calcula o vencimento de um prazo em dias úteis (feriados não são considerados)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from := time.Now()
			if start != "" {
				t, err := deadline.ParseDate(start, time.Local)
				if err != nil {
					return err
				}
				from = t
			}
			res, err := a.documents(nil).Deadline(from, days)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Vencimento: %s\n", res.Display)
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "start date, dd/mm/yyyy or yyyy-mm-dd (default: today)")
	cmd.Flags().IntVar(&days, "days", pipeline.DefaultNoticeDays, "business days")
	return cmd
}

func newFeeCmd(a *app) *cobra.Command {
	var hours, rate float64
	cmd := &cobra.Command{
		Use:   "fee",
		Short: "Calcula a proposta de honorários",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := fees.Compute(hours, rate)
			if err != nil {
				return err
			}
			a.logger.Debug("cli.fee.ok", "total_fee", p.TotalFee)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total: %s (%s h x %s)\n", fees.FormatBRL(p.TotalFee), fees.FormatHours(p.TotalHours), fees.FormatBRL(p.HourlyRate))
			fmt.Fprintf(out, "Vistoria e diligências: %d h\n", p.Allocation.SiteVisit)
			fmt.Fprintf(out, "Análise documental: %d h\n", p.Allocation.DocumentReview)
			fmt.Fprintf(out, "Elaboração do laudo: %d h\n", p.Allocation.ReportDrafting)
			return nil
		},
	}
	cmd.Flags().Float64Var(&hours, "hours", 0, "total estimated hours")
	cmd.Flags().Float64Var(&rate, "rate", 0, "hourly rate in R$")
	_ = cmd.MarkFlagRequired("hours")
	_ = cmd.MarkFlagRequired("rate")
	return cmd
}

func newTextCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "text <arquivo.pdf>",
		Short: "Extrai o texto do PDF, com marcadores de página",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			res, err := a.extractor().ExtractText(cmd.Context(), data)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), res.Text)
			for _, w := range res.Warnings {
				a.logger.Warn("cli.text.warning", "warning", w)
			}
			return nil
		},
	}
}

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <arquivo.pdf>",
		Short: "Mostra número de páginas e criptografia do PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			info, err := ocr.Inspect(data)
			if err != nil {
				return err
			}
			a.logger.Debug("cli.inspect.ok", "pages", info.PageCount)
			fmt.Fprintf(cmd.OutOrStdout(), "Páginas: %d\nCriptografado: %t\nTamanho: %d bytes\n", info.PageCount, info.Encrypted, info.Bytes)
			return nil
		},
	}
}

func newTemplateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Gerencia o modelo de petição",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Cria o modelo padrão em DEFAULT_TEMPLATE_PATH, se ainda não existir",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				store := a.templates()
				if _, err := store.Default(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Modelo: %s\n", store.Path())
				return nil
			},
		},
		&cobra.Command{
			Use:   "fields [modelo.docx]",
			Short: "Lista os campos {{...}} de um modelo (padrão: o modelo embutido)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var (
					tpl []byte
					err error
				)
				if len(args) == 1 {
					tpl, err = os.ReadFile(args[0])
				} else {
					tpl, err = a.templates().Default()
				}
				if err != nil {
					return err
				}
				names, err := docx.Placeholders(tpl)
				if err != nil {
					return err
				}
				for _, n := range names {
					fmt.Fprintln(cmd.OutOrStdout(), n)
				}
				return nil
			},
		},
	)
	return cmd
}
