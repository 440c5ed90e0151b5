package search_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/lexmemory/internal/models"
	"github.com/go-ports/lexmemory/internal/search"
)

// ---------------------------------------------------------------------------
// ExtractKeywords
// ---------------------------------------------------------------------------

func TestExtractKeywords_HappyPath(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"empty input", "", []string{}},
		{"single keyword", "fideicomiso", []string{"fideicomiso"}},
		{"lowercased and deduplicated", "Amparo amparo AMPARO", []string{"amparo"}},
		{"short tokens dropped", "ley de la crisis", []string{"crisis"}},
		{"stop word para dropped", "para reforma", []string{"reforma"}},
		{"accented letters kept in token", "¿Cómo evolucionó el fideicomiso?", []string{"cómo", "evolucionó", "fideicomiso"}},
		{"four rune accented token kept", "país", []string{"país"}},
		{"digits are word characters", "crisis de 2001", []string{"2001", "crisis"}},
		{"punctuation splits tokens", "hiper-inflación,default", []string{"default", "hiper", "inflación"}},
		{"underscore joins tokens", "en_desarrollo", []string{"en_desarrollo"}},
	}

	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			c.Assert(search.ExtractKeywords(tc.in), qt.DeepEquals, tc.want)
		})
	}
}

func TestExtractKeywords_Deterministic(t *testing.T) {
	c := qt.New(t)
	q := "¿Qué impacto tuvo la hiperinflación en la evolución legal?"
	c.Assert(search.ExtractKeywords(q), qt.DeepEquals, search.ExtractKeywords(q))
}

// ---------------------------------------------------------------------------
// Score
// ---------------------------------------------------------------------------

func TestScore_HappyPath(t *testing.T) {
	c := qt.New(t)

	content := "Legal Evolution Case: Fideicomiso financiero\nLegal Area: civil\n"

	cases := []struct {
		name     string
		keywords []string
		want     float64
	}{
		{"empty keyword set", []string{}, 0},
		{"nil keyword set", nil, 0},
		{"all keywords present", []string{"fideicomiso", "financiero"}, 1},
		{"half present", []string{"fideicomiso", "amparo"}, 0.5},
		{"none present", []string{"amparo"}, 0},
		{"case-insensitive content", []string{"legal"}, 1},
		{"substring containment", []string{"fidei"}, 1},
	}

	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			c.Assert(search.Score(content, tc.keywords), qt.Equals, tc.want)
		})
	}
}

func TestScore_Bounds(t *testing.T) {
	c := qt.New(t)

	contents := []string{"", "civil", "crisis crisis crisis", "Fideicomiso financiero 1995"}
	keywordSets := [][]string{{"crisis"}, {"civil", "crisis"}, {"x", "y", "z"}, {"fideicomiso", "1995", "nada"}}

	for _, content := range contents {
		for _, kws := range keywordSets {
			s := search.Score(content, kws)
			c.Assert(s >= 0 && s <= 1, qt.IsTrue, qt.Commentf("content=%q keywords=%v score=%v", content, kws, s))
		}
	}
}

func TestScore_RepeatedOccurrencesCountOnce(t *testing.T) {
	c := qt.New(t)
	c.Assert(search.Score("crisis crisis crisis", []string{"crisis", "amparo"}), qt.Equals, 0.5)
}

// ---------------------------------------------------------------------------
// Retrieve
// ---------------------------------------------------------------------------

type fakeSource map[models.RecordType][]models.MemoryEntry

func (f fakeSource) Entries(t models.RecordType) []models.MemoryEntry { return f[t] }

func entry(t models.RecordType, id, content string) models.MemoryEntry {
	return models.MemoryEntry{
		Key:      models.Key{Type: t, ID: id},
		Content:  content,
		Metadata: map[string]string{"type": string(t)},
	}
}

func newSource() fakeSource {
	return fakeSource{
		models.TypeCase: {
			entry(models.TypeCase, "C1", "fideicomiso financiero"),
			entry(models.TypeCase, "C2", "amparo constitucional"),
			entry(models.TypeCase, "C3", "fideicomiso crisis"),
			entry(models.TypeCase, "C4", "nothing relevant"),
		},
		models.TypeCrisis: {
			entry(models.TypeCrisis, "CR1", "crisis 2001 financiero"),
			entry(models.TypeCrisis, "C1", "crisis hiperinflacion"),
		},
	}
}

func ids(ms []models.ScoredMatch) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = string(m.Type) + "/" + m.ID
	}
	return out
}

func TestRetrieve_HappyPath(t *testing.T) {
	c := qt.New(t)
	src := newSource()

	c.Run("ranks by score with stable scan-order ties", func(c *qt.C) {
		got := search.Retrieve(src, []string{"crisis", "fideicomiso"}, "", 20)
		c.Assert(ids(got), qt.DeepEquals, []string{
			"evolution_case/C3",
			"evolution_case/C1",
			"crisis_period/CR1",
			"crisis_period/C1",
		})
		c.Assert(got[0].Score, qt.Equals, 1.0)
		c.Assert(got[1].Score, qt.Equals, 0.5)
	})

	c.Run("case filter scans only cases", func(c *qt.C) {
		got := search.Retrieve(src, []string{"crisis"}, models.TypeCase, 20)
		c.Assert(ids(got), qt.DeepEquals, []string{"evolution_case/C3"})
	})

	c.Run("crisis filter scans only crises", func(c *qt.C) {
		got := search.Retrieve(src, []string{"crisis"}, models.TypeCrisis, 20)
		c.Assert(ids(got), qt.DeepEquals, []string{"crisis_period/CR1", "crisis_period/C1"})
	})

	c.Run("same id in both partitions is kept apart", func(c *qt.C) {
		got := search.Retrieve(src, []string{"fideicomiso", "hiperinflacion"}, "", 20)
		c.Assert(ids(got), qt.DeepEquals, []string{
			"evolution_case/C1",
			"evolution_case/C3",
			"crisis_period/C1",
		})
	})

	c.Run("truncates to topK", func(c *qt.C) {
		got := search.Retrieve(src, []string{"crisis", "fideicomiso"}, "", 2)
		c.Assert(got, qt.HasLen, 2)
	})

	c.Run("non-positive topK uses default", func(c *qt.C) {
		got := search.Retrieve(src, []string{"crisis"}, "", 0)
		c.Assert(got, qt.HasLen, 3)
	})
}

func TestRetrieve_EmptyResults(t *testing.T) {
	c := qt.New(t)

	c.Run("no overlap returns empty slice", func(c *qt.C) {
		got := search.Retrieve(newSource(), []string{"tributario"}, "", 20)
		c.Assert(got, qt.IsNotNil)
		c.Assert(got, qt.HasLen, 0)
	})

	c.Run("empty keywords return empty slice", func(c *qt.C) {
		c.Assert(search.Retrieve(newSource(), nil, "", 20), qt.HasLen, 0)
	})

	c.Run("empty partitions return empty slice", func(c *qt.C) {
		c.Assert(search.Retrieve(fakeSource{}, []string{"crisis"}, "", 20), qt.HasLen, 0)
	})

	c.Run("nil source returns empty slice", func(c *qt.C) {
		c.Assert(search.Retrieve(nil, []string{"crisis"}, "", 20), qt.HasLen, 0)
	})
}

func TestRetrieve_SortedAndBounded(t *testing.T) {
	c := qt.New(t)
	src := newSource()

	for topK := 1; topK <= 5; topK++ {
		got := search.Retrieve(src, []string{"crisis", "fideicomiso", "financiero"}, "", topK)
		c.Assert(len(got) <= topK, qt.IsTrue)
		for i := 1; i < len(got); i++ {
			c.Assert(got[i-1].Score >= got[i].Score, qt.IsTrue)
		}
	}
}
