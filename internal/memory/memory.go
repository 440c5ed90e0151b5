// Package memory renders legal records into the text + metadata form that
// the index scores against.
package memory

import (
	"strings"
	"unicode/utf8"

	"github.com/go-ports/lexmemory/internal/models"
)

// BuildCase renders an evolution case. Line order is fixed; missing fields
// render as empty values.
func BuildCase(c *models.Case) models.MemoryEntry {
	var sb strings.Builder
	line(&sb, "Legal Evolution Case", c.Name)
	line(&sb, "Legal Area", c.LegalArea)
	line(&sb, "Period", c.StartDate+" to "+c.EndDate)
	line(&sb, "Evolution Type", c.SelectionType)
	line(&sb, "Origin", c.Origin)
	line(&sb, "Success Level", c.Success)
	line(&sb, "Environmental Pressure", c.EnvironmentalPressure)
	line(&sb, "Key Actors", c.KeyActors)
	line(&sb, "Primary Legislation", c.PrimaryLegislation)
	line(&sb, "Relevant Rulings", c.RelevantRulings)
	line(&sb, "Survival Years", c.SurvivalYears)
	line(&sb, "Mutations", c.Mutations)
	line(&sb, "International Diffusion", c.InternationalDiffusion)
	line(&sb, "Notes", c.Notes)

	return models.MemoryEntry{
		Key:     models.Key{Type: models.TypeCase, ID: c.ID},
		Content: sb.String(),
		Metadata: map[string]string{
			models.MetaLegalArea: c.LegalArea,
			models.MetaStartDate: c.StartDate,
			models.MetaSuccess:   c.Success,
			models.MetaType:      string(models.TypeCase),
		},
	}
}

// BuildCrisis renders a crisis period.
func BuildCrisis(p *models.CrisisPeriod) models.MemoryEntry {
	var sb strings.Builder
	line(&sb, "Crisis Period", p.Name)
	line(&sb, "Duration", p.StartDate+" to "+p.EndDate)
	line(&sb, "Type", p.CrisisType)
	line(&sb, "Severity", p.SeverityLevel)
	line(&sb, "Legal Changes", p.LegalChangesCount)
	line(&sb, "Emergency Decrees", p.EmergencyDecrees)
	line(&sb, "New Laws", p.NewLaws)
	line(&sb, "Acceleration Factor", p.AccelerationFactor)
	line(&sb, "Economic Indicators", p.EconomicIndicators)
	line(&sb, "Recovery Timeline", p.RecoveryTimelineMonths+" months")
	line(&sb, "Long-term Impact", p.LongTermImpact)

	return models.MemoryEntry{
		Key:     models.Key{Type: models.TypeCrisis, ID: p.ID},
		Content: sb.String(),
		Metadata: map[string]string{
			models.MetaCrisisType: p.CrisisType,
			models.MetaSeverity:   p.SeverityLevel,
			models.MetaStartDate:  p.StartDate,
			models.MetaType:       string(models.TypeCrisis),
		},
	}
}

// Truncate caps content at maxRunes runes. maxRunes <= 0 disables the cap.
func Truncate(content string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(content) <= maxRunes {
		return content
	}
	runes := []rune(content)
	return string(runes[:maxRunes])
}

func line(sb *strings.Builder, label, value string) {
	sb.WriteString(label)
	sb.WriteString(": ")
	sb.WriteString(value)
	sb.WriteString("\n")
}
