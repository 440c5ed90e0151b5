// Package report assembles the comprehensive JSON report: dataset summary,
// the three aggregate analyses and a set of sample queries.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yalp/jsonpath"

	"github.com/go-ports/lexmemory/internal/buildinfo"
	"github.com/go-ports/lexmemory/internal/models"
	"github.com/go-ports/lexmemory/internal/service"
)

// SystemName identifies the generator in report metadata.
const SystemName = "Legal Evolution Memory Index"

// DefaultOutput is the report file written when no path is given.
const DefaultOutput = "legal_evolution_report.json"

// SampleQueries are answered in every report.
var SampleQueries = []string{
	"¿Cómo evolucionó el fideicomiso en Argentina?",
	"¿Qué impacto tuvo la crisis de 2001 en la evolución legal?",
	"¿Cuáles fueron los transplantes legales más exitosos?",
}

// Source is what Generate needs from the query service.
type Source interface {
	Query(ctx context.Context, text string, filter models.RecordType) (*models.QueryResult, error)
	AnalyzeVelocity(ctx context.Context, area string) (*models.VelocitySummary, error)
	TrackTransplants(ctx context.Context, origin string) (*models.TransplantSummary, error)
	CrisisImpact(ctx context.Context, crisisType string) (*models.CrisisSummary, error)
	Stats() service.Stats
}

// Metadata describes when and from what the report was generated.
type Metadata struct {
	GeneratedAt    time.Time            `json:"generated_at"`
	System         string               `json:"system"`
	Version        string               `json:"version"`
	DatasetSummary models.DatasetCounts `json:"dataset_summary"`
}

// Analyses holds the unfiltered aggregate analyses.
type Analyses struct {
	Velocity    *models.VelocitySummary   `json:"velocity_analysis"`
	Transplants *models.TransplantSummary `json:"transplant_analysis"`
	Crisis      *models.CrisisSummary     `json:"crisis_analysis"`
}

// SampleQuery summarizes one sample query. Error is set instead of Analysis
// when the query failed.
type SampleQuery struct {
	Query         string           `json:"query"`
	Confidence    float64          `json:"confidence"`
	RelevantCases int              `json:"relevant_cases"`
	Analysis      *models.Analysis `json:"analysis,omitempty"`
	Error         string           `json:"error,omitempty"`
}

// Report is the comprehensive report document.
type Report struct {
	Metadata      Metadata      `json:"metadata"`
	Analyses      Analyses      `json:"analyses"`
	SampleQueries []SampleQuery `json:"sample_queries"`
}

// Generate runs the aggregate analyses and sample queries against src.
// Failed sample queries are recorded in the report; only aggregate failures
// abort generation.
func Generate(ctx context.Context, src Source) (*Report, error) {
	r := &Report{
		Metadata: Metadata{
			GeneratedAt:    time.Now().UTC(),
			System:         SystemName,
			Version:        buildinfo.Version,
			DatasetSummary: src.Stats().Datasets,
		},
		SampleQueries: make([]SampleQuery, 0, len(SampleQueries)),
	}

	var err error
	if r.Analyses.Velocity, err = src.AnalyzeVelocity(ctx, ""); err != nil {
		return nil, fmt.Errorf("report.Generate: %w", err)
	}
	if r.Analyses.Transplants, err = src.TrackTransplants(ctx, ""); err != nil {
		return nil, fmt.Errorf("report.Generate: %w", err)
	}
	if r.Analyses.Crisis, err = src.CrisisImpact(ctx, ""); err != nil {
		return nil, fmt.Errorf("report.Generate: %w", err)
	}

	for _, q := range SampleQueries {
		res, err := src.Query(ctx, q, "")
		if err != nil {
			var qerr *models.QueryError
			msg := err.Error()
			if errors.As(err, &qerr) {
				msg = qerr.Failure().Error
			}
			r.SampleQueries = append(r.SampleQueries, SampleQuery{Query: q, Error: msg})
			continue
		}
		analysis := res.Analysis
		r.SampleQueries = append(r.SampleQueries, SampleQuery{
			Query:         q,
			Confidence:    res.Confidence,
			RelevantCases: len(res.RelevantCaseIDs),
			Analysis:      &analysis,
		})
	}
	return r, nil
}

// Marshal encodes r as indented JSON without HTML escaping.
func Marshal(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("report.Marshal: %w", err)
	}
	return buf.Bytes(), nil
}

// Write saves r as indented JSON at path, creating parent directories.
func Write(path string, r *Report) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("report.Write: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("report.Write: %w", err)
	}
	return nil
}

// Select evaluates a JSONPath expression against the JSON form of r.
func Select(r *Report, path string) (any, error) {
	data, err := Marshal(r)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("report.Select: %w", err)
	}
	out, err := jsonpath.Read(doc, path)
	if err != nil {
		return nil, fmt.Errorf("report.Select %q: %w", path, err)
	}
	return out, nil
}
