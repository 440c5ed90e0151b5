// Package service implements the Service orchestrator that wires together
// configuration, dataset loading, the memory index, retrieval, synthesis and
// the aggregate store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/go-ports/lexmemory/internal/config"
	"github.com/go-ports/lexmemory/internal/db"
	"github.com/go-ports/lexmemory/internal/index"
	"github.com/go-ports/lexmemory/internal/loader"
	"github.com/go-ports/lexmemory/internal/models"
	"github.com/go-ports/lexmemory/internal/search"
	"github.com/go-ports/lexmemory/internal/synth"
)

// ErrClosed is returned by operations on a closed Service.
var ErrClosed = errors.New("service closed")

// snapshot is everything a query reads. It is built completely before being
// published and never mutated afterwards.
type snapshot struct {
	cfg    *config.Config
	corpus *models.Corpus
	index  *index.Index
	store  *db.DB
}

// Service answers legal-evolution queries over a loaded corpus.
type Service struct {
	// DataDir is empty for services built from in-memory records.
	DataDir string

	snap   atomic.Pointer[snapshot]
	source func(ctx context.Context) (*config.Config, *models.Corpus, error)
	now    func() time.Time
	mu     sync.Mutex // serializes Reload and Close
}

// New loads config.yaml and the datasets from dataDir and builds the index.
// Config problems and missing or malformed datasets are logged and degrade
// to defaults or empty datasets.
func New(ctx context.Context, dataDir string) (*Service, error) {
	s := &Service{DataDir: dataDir, now: time.Now}
	s.source = func(context.Context) (*config.Config, *models.Corpus, error) {
		cfg, corpus := loadDir(dataDir)
		return cfg, corpus, nil
	}
	if err := s.Reload(ctx); err != nil {
		return nil, fmt.Errorf("service.New: %w", err)
	}
	return s, nil
}

// NewFromRecords builds a Service over an in-memory corpus. A nil cfg means
// config.Default().
func NewFromRecords(ctx context.Context, cfg *config.Config, corpus *models.Corpus) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if corpus == nil {
		corpus = &models.Corpus{}
	}
	s := &Service{now: time.Now}
	s.source = func(context.Context) (*config.Config, *models.Corpus, error) {
		return cfg, corpus, nil
	}
	if err := s.Reload(ctx); err != nil {
		return nil, fmt.Errorf("service.NewFromRecords: %w", err)
	}
	return s, nil
}

func loadDir(dataDir string) (*config.Config, *models.Corpus) {
	cfg, err := config.Load(filepath.Join(dataDir, config.FileName))
	if err != nil {
		slog.Warn("config fallback to defaults", "err", err)
	}

	corpus, err := loader.Load(loader.Files{
		Cases:       config.DatasetPath(dataDir, cfg.Datasets.EvolutionCases),
		Crises:      config.DatasetPath(dataDir, cfg.Datasets.CrisisPeriods),
		Velocity:    config.DatasetPath(dataDir, cfg.Datasets.VelocityMetrics),
		Transplants: config.DatasetPath(dataDir, cfg.Datasets.TransplantsTracking),
	})
	if err != nil {
		slog.Warn("dataset load degraded", "err", err)
	}
	return cfg, corpus
}

// Reload rebuilds the whole snapshot from the service's source and swaps it
// in. Queries running concurrently keep reading the previous snapshot.
func (s *Service) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, corpus, err := s.source(ctx)
	if err != nil {
		return fmt.Errorf("service.Reload: %w", err)
	}

	store, err := db.Open()
	if err != nil {
		return fmt.Errorf("service.Reload: %w", err)
	}
	if err := store.Load(ctx, corpus); err != nil {
		_ = store.Close()
		return fmt.Errorf("service.Reload: %w", err)
	}

	next := &snapshot{
		cfg:    cfg,
		corpus: corpus,
		index:  index.Build(corpus.Cases, corpus.Crises, index.Options{MaxMemoryLength: cfg.MaxMemoryLength}),
		store:  store,
	}

	if prev := s.snap.Swap(next); prev != nil {
		if err := prev.store.Close(); err != nil {
			slog.Warn("closing previous aggregate store", "err", err)
		}
	}
	return nil
}

// Close releases all resources held by the service.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.snap.Swap(nil)
	if prev == nil {
		return nil
	}
	return prev.store.Close()
}

// Config returns the configuration of the current snapshot.
func (s *Service) Config() *config.Config {
	if snap := s.snap.Load(); snap != nil {
		return snap.cfg
	}
	return config.Default()
}

// ---------------------------------------------------------------------------
// Query
// ---------------------------------------------------------------------------

// Query answers text with the configured retrieval_top_k. An empty filter
// searches both record types.
func (s *Service) Query(ctx context.Context, text string, filter models.RecordType) (*models.QueryResult, error) {
	return s.QueryTopK(ctx, text, filter, 0)
}

// QueryTopK answers text keeping at most topK matches; a non-positive topK
// uses the configured value. A non-nil error is always a *models.QueryError
// carrying the query text and timestamp.
func (s *Service) QueryTopK(ctx context.Context, text string, filter models.RecordType, topK int) (res *models.QueryResult, err error) {
	ts := s.now().UTC()
	fail := func(kind models.QueryErrorKind, cause error) (*models.QueryResult, error) {
		qerr := &models.QueryError{Kind: kind, Query: text, Timestamp: ts, Err: cause}
		slog.Warn("query failed", "query", text, "kind", kind, "err", cause)
		return nil, qerr
	}

	defer func() {
		if r := recover(); r != nil {
			res, err = fail(models.QueryErrInternal, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return fail(models.QueryErrCanceled, err)
	}
	snap := s.snap.Load()
	if snap == nil {
		return fail(models.QueryErrNoIndex, ErrClosed)
	}
	if topK <= 0 {
		topK = snap.cfg.RetrievalTopK
	}

	keywords := search.ExtractKeywords(text)
	matches := search.Retrieve(snap.index, keywords, filter, topK)
	response, insights := synth.Synthesize(text, matches)

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}

	res = &models.QueryResult{
		ID:              ulid.MustNew(ulid.Timestamp(ts), ulid.DefaultEntropy()).String(),
		Query:           text,
		Response:        response,
		Analysis:        synth.Analyze(response, snap.cfg.LegalDomains),
		Insights:        insights,
		Matches:         matches,
		RelevantCaseIDs: ids,
		Confidence:      synth.Confidence(matches, len(keywords)),
		Sources:         synth.ExtractSources(response),
		Timestamp:       ts,
	}
	slog.Debug("query processed",
		"id", res.ID,
		"keywords", len(keywords),
		"matches", len(matches),
		"confidence", res.Confidence,
	)
	return res, nil
}

// ---------------------------------------------------------------------------
// Aggregates
// ---------------------------------------------------------------------------

// AnalyzeVelocity summarizes velocity metrics for area, or all areas when
// area is empty.
func (s *Service) AnalyzeVelocity(ctx context.Context, area string) (*models.VelocitySummary, error) {
	snap := s.snap.Load()
	if snap == nil {
		return nil, ErrClosed
	}
	out, err := snap.store.Velocity(ctx, area)
	if err != nil {
		return nil, fmt.Errorf("service.AnalyzeVelocity: %w", err)
	}
	return out, nil
}

// TrackTransplants summarizes legal transplants from origin, or from all
// origins when origin is empty.
func (s *Service) TrackTransplants(ctx context.Context, origin string) (*models.TransplantSummary, error) {
	snap := s.snap.Load()
	if snap == nil {
		return nil, ErrClosed
	}
	out, err := snap.store.Transplants(ctx, origin)
	if err != nil {
		return nil, fmt.Errorf("service.TrackTransplants: %w", err)
	}
	return out, nil
}

// CrisisImpact summarizes crises whose type contains crisisType.
func (s *Service) CrisisImpact(ctx context.Context, crisisType string) (*models.CrisisSummary, error) {
	snap := s.snap.Load()
	if snap == nil {
		return nil, ErrClosed
	}
	out, err := snap.store.CrisisImpact(ctx, crisisType)
	if err != nil {
		return nil, fmt.Errorf("service.CrisisImpact: %w", err)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

// Stats describes the loaded corpus and its index.
type Stats struct {
	DataDir          string                  `json:"data_dir,omitempty"`
	Datasets         models.DatasetCounts    `json:"datasets"`
	Index            index.Stats             `json:"index"`
	Warnings         []string                `json:"warnings"`
	TemporalAnalysis config.TemporalAnalysis `json:"temporal_analysis"`
}

// Stats returns counts for the current snapshot.
func (s *Service) Stats() Stats {
	out := Stats{DataDir: s.DataDir, Warnings: []string{}}
	snap := s.snap.Load()
	if snap == nil {
		return out
	}
	out.Datasets = models.DatasetCounts{
		EvolutionCases:  len(snap.corpus.Cases),
		VelocityMetrics: len(snap.corpus.Velocity),
		TransplantCases: len(snap.corpus.Transplants),
		CrisisPeriods:   len(snap.corpus.Crises),
	}
	out.Index = snap.index.Stats()
	for _, w := range snap.index.Warnings() {
		out.Warnings = append(out.Warnings, w.Error())
	}
	out.TemporalAnalysis = snap.cfg.TemporalAnalysis
	return out
}
