// Package loader reads the legal-evolution CSV datasets into typed records.
//
// Columns are matched to struct fields by the field's json tag. Unknown
// columns are ignored and missing columns leave the field empty, so partial
// exports still load.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-ports/lexmemory/internal/models"
)

// Files names the dataset files to load. An empty name skips that dataset.
type Files struct {
	Cases       string
	Crises      string
	Velocity    string
	Transplants string
}

// Load reads every dataset in files. A missing file is logged and yields an
// empty dataset. Malformed files also yield an empty dataset and are
// reported in the returned (joined) error; the corpus is always usable.
func Load(files Files) (*models.Corpus, error) {
	corpus := &models.Corpus{}
	var errs []error

	var err error
	if corpus.Cases, err = readDataset[models.Case](files.Cases, "evolution_cases"); err != nil {
		errs = append(errs, err)
	}
	if corpus.Crises, err = readDataset[models.CrisisPeriod](files.Crises, "crisis_periods"); err != nil {
		errs = append(errs, err)
	}
	if corpus.Velocity, err = readDataset[models.VelocityMetric](files.Velocity, "velocity_metrics"); err != nil {
		errs = append(errs, err)
	}
	if corpus.Transplants, err = readDataset[models.Transplant](files.Transplants, "transplants_tracking"); err != nil {
		errs = append(errs, err)
	}

	return corpus, errors.Join(errs...)
}

func readDataset[T any](path, name string) ([]T, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("dataset not found", "dataset", name, "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loader.Load: %s: %w", name, err)
	}
	defer f.Close()

	rows, err := Decode[T](f)
	if err != nil {
		return nil, fmt.Errorf("loader.Load: %s: %w", name, err)
	}
	slog.Debug("dataset loaded", "dataset", name, "records", len(rows))
	return rows, nil
}

// Decode reads a CSV stream with a header row into a slice of T. T must be
// a struct whose string (or *float64) fields carry json tags naming their
// columns. Blank lines are skipped; short rows leave trailing fields empty.
func Decode[T any](r io.Reader) ([]T, error) {
	typ := reflect.TypeFor[T]()
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("loader.Decode: %s is not a struct", typ)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loader.Decode: header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := columns[h]; !dup {
			columns[h] = i
		}
	}

	// fieldCol[i] is the column index for struct field i, or -1.
	fieldCol := make([]int, typ.NumField())
	for i := range typ.NumField() {
		fieldCol[i] = -1
		tag, _, _ := strings.Cut(typ.Field(i).Tag.Get("json"), ",")
		if col, ok := columns[tag]; ok && tag != "" {
			fieldCol[i] = col
		}
	}

	out := make([]T, 0)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("loader.Decode: %w", err)
		}
		if blank(rec) {
			continue
		}

		var item T
		v := reflect.ValueOf(&item).Elem()
		for i, col := range fieldCol {
			if col < 0 || col >= len(rec) {
				continue
			}
			setField(v.Field(i), strings.TrimSpace(rec[col]))
		}
		out = append(out, item)
	}
	return out, nil
}

var floatPtrType = reflect.TypeFor[*float64]()

func setField(f reflect.Value, raw string) {
	switch {
	case f.Kind() == reflect.String:
		f.SetString(raw)
	case f.Type() == floatPtrType:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			f.Set(reflect.ValueOf(&n))
		}
	}
}

func blank(rec []string) bool {
	for _, s := range rec {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}
