package synth

import (
	"regexp"
	"sort"
	"strings"

	"github.com/go-ports/lexmemory/internal/models"
)

var (
	evolutionMechanisms = []string{"acumulativa", "artificial", "mixta", "transplante", "endogeno", "hibrido"}
	successTerms        = []string{"exitoso", "parcial", "fracaso", "en_desarrollo"}
	crisisTerms         = []string{"crisis", "emergencia", "hiperinflacion", "default", "devaluacion"}
)

var yearRe = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)

// sourcePatterns match citation-like references to Argentine legal sources.
var sourcePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Ley \d+\.\d+`),
	regexp.MustCompile(`(?i)Decreto \d+/\d+`),
	regexp.MustCompile(`(?i)Fallos \d+:\d+`),
	regexp.MustCompile(`(?i)InfoLeg`),
	regexp.MustCompile(`(?i)SAIJ`),
	regexp.MustCompile(`(?i)CSJN`),
	regexp.MustCompile(`(?i)BCRA`),
	regexp.MustCompile(`(?i)CNV`),
}

// Analyze scans a synthesized response for configured legal domains, fixed
// mechanism/outcome/crisis vocabularies and 19xx/20xx years.
func Analyze(response string, legalDomains []string) models.Analysis {
	lower := strings.ToLower(response)
	return models.Analysis{
		LegalAreasMentioned: present(lower, legalDomains),
		TemporalPatterns:    uniqSorted(yearRe.FindAllString(response, -1)),
		EvolutionMechanisms: present(lower, evolutionMechanisms),
		SuccessIndicators:   present(lower, successTerms),
		CrisisIndicators:    present(lower, crisisTerms),
	}
}

// ExtractSources returns the distinct citation-like substrings of response,
// sorted.
func ExtractSources(response string) []string {
	var found []string
	for _, re := range sourcePatterns {
		found = append(found, re.FindAllString(response, -1)...)
	}
	return uniqSorted(found)
}

// present returns the terms contained in lower, in term order.
func present(lower string, terms []string) []string {
	out := make([]string, 0)
	for _, term := range terms {
		if term != "" && strings.Contains(lower, strings.ToLower(term)) {
			out = append(out, term)
		}
	}
	return out
}

func uniqSorted(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
