// Package index builds the immutable lookup structures over the legal
// memory corpus: the by-id store plus keyword, year and category postings.
package index

import (
	"log/slog"
	"sort"
	"unicode/utf8"

	"github.com/go-ports/lexmemory/internal/memory"
	"github.com/go-ports/lexmemory/internal/models"
	"github.com/go-ports/lexmemory/internal/search"
)

// Options tunes how records are rendered before indexing.
type Options struct {
	// MaxMemoryLength caps memory content in runes. Zero disables the cap.
	MaxMemoryLength int
}

// Index is built once and never mutated afterwards. Rebuilding means calling
// Build again and replacing the reference.
type Index struct {
	byID       map[models.Key]models.MemoryEntry
	order      map[models.RecordType][]models.MemoryEntry
	keywords   map[string][]models.Key
	years      map[string][]models.Key
	categories map[string][]models.Key
	warnings   []*models.ValidationError
}

// Stats summarises an index.
type Stats struct {
	Cases      int `json:"cases"`
	Crises     int `json:"crises"`
	Keywords   int `json:"keywords"`
	Years      int `json:"years"`
	Categories int `json:"categories"`
	Skipped    int `json:"skipped"`
}

// Build renders every record and populates all lookup structures. Records
// without an id, or repeating an id already seen in the same variant, are
// skipped and reported through Warnings; they never abort the build.
func Build(cases []models.Case, crises []models.CrisisPeriod, opts Options) *Index {
	b := &builder{
		idx: &Index{
			byID:       make(map[models.Key]models.MemoryEntry, len(cases)+len(crises)),
			order:      make(map[models.RecordType][]models.MemoryEntry, len(models.RecordTypes)),
			keywords:   make(map[string][]models.Key),
			years:      make(map[string][]models.Key),
			categories: make(map[string][]models.Key),
		},
		seen: make(map[string]map[models.Key]bool),
		opts: opts,
	}

	for i := range cases {
		cs := &cases[i]
		b.add(i, memory.BuildCase(cs), cs.Name+" "+cs.Notes, cs.StartDate, cs.LegalArea)
	}
	for i := range crises {
		cp := &crises[i]
		b.add(i, memory.BuildCrisis(cp), cp.Name+" "+cp.LongTermImpact, cp.StartDate, cp.CrisisType)
	}

	for _, w := range b.idx.warnings {
		slog.Warn("index: skipped record", "type", w.Type, "row", w.Row, "id", w.ID, "err", w.Err)
	}
	slog.Info("index built",
		"cases", b.idx.Len(models.TypeCase),
		"crises", b.idx.Len(models.TypeCrisis),
		"keywords", len(b.idx.keywords),
		"skipped", len(b.idx.warnings),
	)
	return b.idx
}

type builder struct {
	idx  *Index
	seen map[string]map[models.Key]bool // posting map name -> keys already posted
	opts Options
}

func (b *builder) add(row int, entry models.MemoryEntry, keywordText, startDate, category string) {
	key := entry.Key
	if key.ID == "" {
		b.warn(row, key, models.ErrMissingID)
		return
	}
	if _, dup := b.idx.byID[key]; dup {
		b.warn(row, key, models.ErrDuplicateID)
		return
	}

	entry.Content = memory.Truncate(entry.Content, b.opts.MaxMemoryLength)
	b.idx.byID[key] = entry
	b.idx.order[key.Type] = append(b.idx.order[key.Type], entry)

	for _, kw := range search.ExtractKeywords(keywordText) {
		b.post(b.idx.keywords, "kw:"+kw, kw, key)
	}
	if year, ok := yearPrefix(startDate); ok {
		b.post(b.idx.years, "year:"+year, year, key)
	}
	if category != "" {
		b.post(b.idx.categories, "cat:"+category, category, key)
	}
}

// post appends key to postings[term] once per (term, key) pair.
func (b *builder) post(postings map[string][]models.Key, seenKey, term string, key models.Key) {
	set, ok := b.seen[seenKey]
	if !ok {
		set = make(map[models.Key]bool)
		b.seen[seenKey] = set
	}
	if set[key] {
		return
	}
	set[key] = true
	postings[term] = append(postings[term], key)
}

func (b *builder) warn(row int, key models.Key, err error) {
	b.idx.warnings = append(b.idx.warnings, &models.ValidationError{
		Type: key.Type,
		Row:  row,
		ID:   key.ID,
		Err:  err,
	})
}

// yearPrefix returns the first four runes of a date string.
func yearPrefix(date string) (string, bool) {
	if utf8.RuneCountInString(date) < 4 {
		return "", false
	}
	return string([]rune(date)[:4]), true
}

// ---------------------------------------------------------------------------
// Read-only accessors
// ---------------------------------------------------------------------------

// Entry returns the memory stored under key.
func (x *Index) Entry(key models.Key) (models.MemoryEntry, bool) {
	e, ok := x.byID[key]
	return e, ok
}

// Entries returns the entries of one partition in insertion order. Callers
// must not modify the returned slice.
func (x *Index) Entries(t models.RecordType) []models.MemoryEntry {
	return x.order[t]
}

// Len returns the number of entries in one partition.
func (x *Index) Len(t models.RecordType) int {
	return len(x.order[t])
}

// Keyword returns the keys posted under a lowercase keyword.
func (x *Index) Keyword(kw string) []models.Key { return clone(x.keywords[kw]) }

// Year returns the keys whose start date begins with year.
func (x *Index) Year(year string) []models.Key { return clone(x.years[year]) }

// Category returns the keys filed under a legal area or crisis type.
func (x *Index) Category(cat string) []models.Key { return clone(x.categories[cat]) }

// Keywords returns every indexed keyword, sorted.
func (x *Index) Keywords() []string { return sortedKeys(x.keywords) }

// Years returns every indexed year, sorted.
func (x *Index) Years() []string { return sortedKeys(x.years) }

// Categories returns every indexed category, sorted.
func (x *Index) Categories() []string { return sortedKeys(x.categories) }

// Warnings returns the records skipped during Build.
func (x *Index) Warnings() []*models.ValidationError {
	out := make([]*models.ValidationError, len(x.warnings))
	copy(out, x.warnings)
	return out
}

// Stats returns entry and posting counts.
func (x *Index) Stats() Stats {
	return Stats{
		Cases:      x.Len(models.TypeCase),
		Crises:     x.Len(models.TypeCrisis),
		Keywords:   len(x.keywords),
		Years:      len(x.years),
		Categories: len(x.categories),
		Skipped:    len(x.warnings),
	}
}

func clone(keys []models.Key) []models.Key {
	out := make([]models.Key, len(keys))
	copy(out, keys)
	return out
}

func sortedKeys(m map[string][]models.Key) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
