package llm

import (
	"encoding/json"
	"strings"
)

// BuildPrompt composes the single analysis prompt: role, mode instructions,
// the JSON Schema with exact field names, formatting rules, and finally the
// complete document text. The text is never truncated.
func BuildPrompt(documentText string, mode AnalysisMode) string {
	schema := BuildAnalysisJSONSchema(mode.AllowedKinds())

	parts := []string{
		"Você atua como assistente jurídico sênior de um perito judicial.",
		modeInstructions(mode),
		"Retorne APENAS um objeto JSON que siga exatamente o JSON Schema abaixo, sem texto antes ou depois e sem blocos de código.",
		"JSON Schema:\n" + mustJSON(schema),
		"Regras:",
		"- 'source_page' é o número da página onde o evento aparece, lido do marcador '--- PAGE n ---' que precede o trecho; use apenas o número, como texto.",
		"- 'questions' contém cada quesito na íntegra, na ordem do documento, sem resumir nem reescrever. Inclua quesitos iniciais e quesitos suplementares.",
		"- 'party' indica quem formulou os quesitos: autor, réu ou juízo.",
		"- 'event_date' usa o formato dd/mm/aaaa quando a data estiver no texto.",
		"- Em 'metadata', use null para o que não constar no documento. Nunca invente dados.",
		"- Se não houver eventos, retorne 'tasks' como lista vazia.",
	}

	var b strings.Builder
	b.WriteString(strings.Join(parts, "\n"))
	b.WriteString("\n\nTEXTO DO PROCESSO:\n")
	b.WriteString(documentText)
	return b.String()
}

func modeInstructions(mode AnalysisMode) string {
	switch mode {
	case ModeAppointment:
		return strings.Join([]string{
			"Localize a decisão que NOMEIA o perito e extraia os dados do processo.",
			"Reporte uma tarefa APPOINTMENT por nomeação encontrada.",
			"Em 'relevant_excerpt', redija o parágrafo central de uma petição de aceite do encargo, citando a decisão de nomeação e o prazo fixado, em linguagem formal.",
		}, " ")
	case ModeInterrogatories:
		return strings.Join([]string{
			"Extraia TODOS os quesitos (perguntas ao perito) apresentados no processo.",
			"Reporte uma tarefa INTERROGATORIES por parte que apresentou quesitos (autor, réu, juízo), com a página onde a lista começa.",
			"Quesitos suplementares da mesma parte entram na mesma tarefa, após os iniciais.",
		}, " ")
	default:
		return strings.Join([]string{
			"Analise o processo e crie uma LISTA DE TAREFAS para o perito, apenas com eventos que exigem ação ativa:",
			"APPOINTMENT quando o juiz nomeia o perito (ação: aceitar o encargo);",
			"INTERROGATORIES quando há quesitos a responder (ação: laudo);",
			"NOTICE quando há intimação, prazo correndo ou ordem para iniciar (ação: calcular prazo);",
			"FEE_PROPOSAL quando o perito deve apresentar proposta de honorários.",
			"Em 'summary', escreva um resumo de uma linha do caso.",
		}, " ")
	}
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
