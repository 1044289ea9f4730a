package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/perito/constants"
	"github.com/joseph-ayodele/perito/internal/common"
	"github.com/joseph-ayodele/perito/internal/deadline"
	"github.com/joseph-ayodele/perito/internal/docx"
	"github.com/joseph-ayodele/perito/internal/entity"
	"github.com/joseph-ayodele/perito/internal/fees"
)

const (
	answerBlank           = "RESPOSTA: _______________________"
	defaultAcceptanceBody = "O Perito nomeado vem, respeitosamente, à presença de Vossa Excelência, ACEITAR o honroso encargo que lhe foi confiado, " +
		"informando que está à disposição deste Juízo para a realização dos trabalhos periciais."
)

// Artifact is a generated document ready to be saved or downloaded.
type Artifact struct {
	FileName string
	MIMEType string
	Data     []byte
}

// AcceptanceInput customizes the acceptance petition. Zero values fall back
// to the default template, the task's excerpt and today's date.
type AcceptanceInput struct {
	Template []byte
	Body     string
	Date     time.Time
}

// AcceptancePetition renders the acceptance petition for an APPOINTMENT task.
func (p *Processor) AcceptancePetition(sess *Session, taskIndex int, in AcceptanceInput) (Artifact, error) {
	task, err := taskOfKind(sess, taskIndex, constants.Appointment)
	if err != nil {
		return Artifact{}, err
	}

	tpl := in.Template
	if len(tpl) == 0 {
		if p.Templates == nil {
			return Artifact{}, common.TemplateRenderError("no template available", nil)
		}
		if tpl, err = p.Templates.Default(); err != nil {
			return Artifact{}, err
		}
	}

	body := firstNonEmpty(in.Body, task.RelevantExcerpt, defaultAcceptanceBody)
	date := in.Date
	if date.IsZero() {
		date = p.now()
	}

	ctx := p.baseContext(sess, date)
	ctx[docx.KeyBody] = body
	ctx[docx.KeySourcePage] = task.SourcePage

	out, err := docx.Render(tpl, ctx)
	if err != nil {
		p.Logger.Error("pipeline.acceptance.render_failed", "task", taskIndex, "error", err)
		return Artifact{}, err
	}
	p.Logger.Info("pipeline.acceptance.ok", "task", taskIndex, "page", task.SourcePage, "bytes", len(out))
	return docxArtifact(fmt.Sprintf("%s_Pag_%s", constants.AcceptancePetitionDoc, fileLabel(task.SourcePage)), out), nil
}

// InterrogatoriesWorksheet builds an answer sheet for one INTERROGATORIES task:
// each question in bold followed by an answer blank, in source order.
func (p *Processor) InterrogatoriesWorksheet(sess *Session, taskIndex int) (Artifact, error) {
	task, err := taskOfKind(sess, taskIndex, constants.Interrogatories)
	if err != nil {
		return Artifact{}, err
	}

	b := docx.NewBuilder().Title("LAUDO PERICIAL")
	writeHeader(b, sess.Result.Metadata)
	b.Heading(1, partyHeading(task.Party))
	b.Text("Quesitos extraídos da página " + task.SourcePage)
	writeQuestions(b, task.Questions)

	data, err := b.Bytes()
	if err != nil {
		return Artifact{}, common.TemplateRenderError("build worksheet", err)
	}
	p.Logger.Info("pipeline.worksheet.ok", "task", taskIndex, "questions", len(task.Questions))
	return docxArtifact(fmt.Sprintf("%s_Pag_%s", constants.InterrogatoriesWorksheet, fileLabel(task.SourcePage)), data), nil
}

// InterrogatoriesReport combines every INTERROGATORIES task into one report,
// one numbered section per task.
func (p *Processor) InterrogatoriesReport(sess *Session) (Artifact, error) {
	if sess == nil || sess.Result == nil {
		return Artifact{}, common.InvalidInputError("no analysis result in session")
	}
	idx := sess.Result.TasksOfKind(constants.Interrogatories)
	if len(idx) == 0 {
		return Artifact{}, common.InvalidInputError("no interrogatories in the current analysis")
	}

	b := docx.NewBuilder().Title("LAUDO PERICIAL")
	writeHeader(b, sess.Result.Metadata)
	total := 0
	for n, i := range idx {
		task := sess.Result.Tasks[i]
		b.Heading(1, fmt.Sprintf("%d. %s (pág. %s)", n+1, partyHeading(task.Party), task.SourcePage))
		writeQuestions(b, task.Questions)
		total += len(task.Questions)
	}

	data, err := b.Bytes()
	if err != nil {
		return Artifact{}, common.TemplateRenderError("build report", err)
	}
	p.Logger.Info("pipeline.report.ok", "sections", len(idx), "questions", total)
	return docxArtifact(string(constants.InterrogatoriesWorksheet), data), nil
}

// FeeInput is what the operator enters for a fee proposal.
type FeeInput struct {
	TotalHours float64
	HourlyRate float64
	Date       time.Time
}

// FeeProposal computes the fee for a FEE_PROPOSAL task and renders the
// proposal document.
func (p *Processor) FeeProposal(sess *Session, taskIndex int, in FeeInput) (Artifact, fees.Proposal, error) {
	task, err := taskOfKind(sess, taskIndex, constants.FeeProposal)
	if err != nil {
		return Artifact{}, fees.Proposal{}, err
	}
	prop, err := fees.Compute(in.TotalHours, in.HourlyRate)
	if err != nil {
		return Artifact{}, fees.Proposal{}, err
	}
	date := in.Date
	if date.IsZero() {
		date = p.now()
	}

	b := docx.NewBuilder().Title("PROPOSTA DE HONORÁRIOS PERICIAIS")
	writeHeader(b, sess.Result.Metadata)
	if task.Description != "" {
		b.Text("Referência: " + task.Description + " (pág. " + task.SourcePage + ")")
	}
	b.AlignedParagraph(docx.AlignJustify, docx.Plain(
		"O Perito nomeado vem apresentar a estimativa de honorários para a realização dos trabalhos, conforme o detalhamento abaixo."))
	b.Heading(2, "Estimativa de horas")
	b.Text(fmt.Sprintf("Vistoria e diligências: %d h", prop.Allocation.SiteVisit))
	b.Text(fmt.Sprintf("Análise documental: %d h", prop.Allocation.DocumentReview))
	b.Text(fmt.Sprintf("Elaboração do laudo: %d h", prop.Allocation.ReportDrafting))
	b.Text("Total de horas: " + fees.FormatHours(prop.TotalHours))
	b.Text("Valor da hora técnica: " + fees.FormatBRL(prop.HourlyRate))
	b.Paragraph(docx.Bold("Valor total dos honorários: " + fees.FormatBRL(prop.TotalFee)))
	writeSignature(b, p.cfg.City, p.dateIn(date), sess.ExpertName)

	data, err := b.Bytes()
	if err != nil {
		return Artifact{}, fees.Proposal{}, common.TemplateRenderError("build fee proposal", err)
	}
	p.Logger.Info("pipeline.fee_proposal.ok", "task", taskIndex, "total_fee", prop.TotalFee)
	return docxArtifact(fmt.Sprintf("%s_%d", constants.FeeProposalDoc, taskIndex), data), prop, nil
}

// baseContext holds the placeholders shared by every petition. Missing
// metadata is left out so its tokens stay visible in the output.
func (p *Processor) baseContext(sess *Session, date time.Time) docx.RenderContext {
	ctx := docx.RenderContext{
		docx.KeyDate: deadline.FormatLongPT(p.dateIn(date)),
	}
	md := sess.Result.Metadata
	for key, v := range map[string]*string{
		docx.KeyCaseNumber: md.CaseNumber,
		docx.KeyCourt:      md.Court,
		docx.KeyPlaintiff:  md.Plaintiff,
		docx.KeyDefendant:  md.Defendant,
	} {
		if v != nil {
			ctx[key] = *v
		}
	}
	if sess.ExpertName != "" {
		ctx[docx.KeyExpertName] = sess.ExpertName
	}
	if p.cfg.City != "" {
		ctx[docx.KeyCity] = p.cfg.City
	}
	return ctx
}

func (p *Processor) dateIn(t time.Time) time.Time {
	return t.In(p.cfg.Location)
}

func taskOfKind(sess *Session, i int, kind constants.TaskKind) (entity.Task, error) {
	task, err := sess.Task(i)
	if err != nil {
		return entity.Task{}, err
	}
	if task.Kind != kind {
		return entity.Task{}, common.InvalidInputErrorf("task %d is %s, not %s", i, task.Kind, kind)
	}
	return task, nil
}

func writeHeader(b *docx.Builder, md entity.ProcessMetadata) {
	lines := []struct {
		label string
		value *string
	}{
		{"Processo nº ", md.CaseNumber},
		{"Juízo: ", md.Court},
		{"Autor: ", md.Plaintiff},
		{"Réu: ", md.Defendant},
	}
	for _, l := range lines {
		if l.value != nil {
			b.Paragraph(docx.Bold(l.label), docx.Plain(*l.value))
		}
	}
}

func writeQuestions(b *docx.Builder, questions []string) {
	if len(questions) == 0 {
		b.Text("Nenhum quesito identificado.")
		return
	}
	for _, q := range questions {
		b.Paragraph(docx.Bold(q))
		b.Text(answerBlank)
	}
}

func writeSignature(b *docx.Builder, city string, date time.Time, expert string) {
	place := deadline.FormatLongPT(date)
	if city != "" {
		place = city + ", " + place
	}
	b.AlignedParagraph(docx.AlignRight, docx.Plain(place+"."))
	b.AlignedParagraph(docx.AlignCenter, docx.Plain("___________________________\n"+expert+"\nPerito Judicial"))
}

func partyHeading(party string) string {
	switch strings.ToLower(strings.TrimSpace(party)) {
	case "autor", "autora", "requerente", "plaintiff":
		return "QUESITOS DO AUTOR"
	case "réu", "reu", "ré", "requerido", "requerida", "defendant":
		return "QUESITOS DO RÉU"
	case "juízo", "juizo", "juiz", "court":
		return "QUESITOS DO JUÍZO"
	case "":
		return "QUESITOS"
	default:
		return "QUESITOS - " + strings.ToUpper(strings.TrimSpace(party))
	}
}

func docxArtifact(base string, data []byte) Artifact {
	return Artifact{FileName: base + ".docx", MIMEType: constants.DocxMIME, Data: data}
}

// fileLabel makes a page label safe for a file name.
func fileLabel(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "sn"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
