package synth

import (
	"fmt"
	"strings"

	"github.com/go-ports/lexmemory/internal/models"
)

// NoResultsMessage is the whole response when nothing matched.
const NoResultsMessage = "No se encontraron casos relevantes para la consulta."

const (
	maxCasesShown  = 5
	maxCrisesShown = 3
)

// Synthesize derives insights from matches and renders the response text.
// An empty match set yields NoResultsMessage and empty insights.
func Synthesize(query string, matches []models.ScoredMatch) (string, models.Insights) {
	if len(matches) == 0 {
		return NoResultsMessage, models.Insights{}
	}
	ins := DeriveInsights(matches)
	return Render(query, matches, ins), ins
}

// Render formats the response text. It performs no derivation of its own:
// insights are computed by DeriveInsights and passed in.
func Render(query string, matches []models.ScoredMatch, ins models.Insights) string {
	if len(matches) == 0 {
		return NoResultsMessage
	}

	var cases, crises []models.ScoredMatch
	for _, m := range matches {
		switch m.Type {
		case models.TypeCase:
			cases = append(cases, m)
		case models.TypeCrisis:
			crises = append(crises, m)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Análisis de evolución legal para: '%s'\n\n", query)
	sb.WriteString("Basado en el análisis del dataset Legal Evolution Dataset con Reality Filter:\n\n")

	if len(cases) > 0 {
		sb.WriteString("📊 CASOS DE EVOLUCIÓN LEGAL RELEVANTES:\n")
		for i, m := range cases[:min(len(cases), maxCasesShown)] {
			fmt.Fprintf(&sb, "%d. Área: %s, Inicio: %s, Éxito: %s (Score: %.2f)\n",
				i+1, m.Metadata[models.MetaLegalArea], m.Metadata[models.MetaStartDate],
				m.Metadata[models.MetaSuccess], m.Score)
		}
		sb.WriteString("\n")
	}

	if len(crises) > 0 {
		sb.WriteString("⚡ PERÍODOS DE CRISIS RELEVANTES:\n")
		for i, m := range crises[:min(len(crises), maxCrisesShown)] {
			fmt.Fprintf(&sb, "%d. Tipo: %s, Severidad: %s, Inicio: %s (Score: %.2f)\n",
				i+1, m.Metadata[models.MetaCrisisType], m.Metadata[models.MetaSeverity],
				m.Metadata[models.MetaStartDate], m.Score)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("🎯 INSIGHTS PRINCIPALES:\n")
	sb.WriteString(InsightLines(ins))
	return sb.String()
}

// InsightLines renders insights as "- " bullet lines.
func InsightLines(ins models.Insights) string {
	if ins.Empty() {
		return "No se generaron insights suficientes.\n"
	}
	var lines []string
	if ins.HasDominantCategory {
		lines = append(lines, "- Área legal más relevante: "+ins.DominantCategory)
	}
	if ins.HasSuccessRate {
		lines = append(lines, fmt.Sprintf("- Tasa de éxito en casos relevantes: %.1f%%", ins.SuccessRate))
	}
	if ins.HasTemporalSpan {
		lines = append(lines, "- Período temporal: "+ins.EarliestYear+"-"+ins.LatestYear)
	}
	return strings.Join(lines, "\n") + "\n"
}
