package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/go-ports/lexmemory/internal/config"
	"github.com/go-ports/lexmemory/internal/models"
	"github.com/go-ports/lexmemory/internal/service"
	"github.com/go-ports/lexmemory/internal/synth"
)

// newTestService builds a Service over corpus and registers t.Cleanup to
// close it.
func newTestService(t *testing.T, cfg *config.Config, corpus *models.Corpus) *service.Service {
	t.Helper()
	svc, err := service.NewFromRecords(context.Background(), cfg, corpus)
	if err != nil {
		t.Fatalf("newTestService: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func singleCaseCorpus() *models.Corpus {
	return &models.Corpus{
		Cases: []models.Case{{
			ID:        "C1",
			Name:      "fideicomiso financiero",
			LegalArea: "civil",
			StartDate: "1995-01-01",
			Success:   "Exitoso",
		}},
	}
}

func sampleCorpus() *models.Corpus {
	v := 4.0
	return &models.Corpus{
		Cases: []models.Case{
			{ID: "C1", Name: "Fideicomiso financiero", LegalArea: "civil", StartDate: "1995-01-01", Success: "Exitoso", Notes: "Ley 24.441"},
			{ID: "C2", Name: "Fideicomiso de garantía", LegalArea: "civil", StartDate: "2001-06-01", Success: "Parcial"},
			{ID: "", Name: "Fideicomiso sin identificador", LegalArea: "comercial"},
			{ID: "C3", Name: "Amparo colectivo", LegalArea: "constitucional", StartDate: "1994-08-22", Success: "Exitoso", Origin: "transplante"},
		},
		Crises: []models.CrisisPeriod{
			{ID: "CR1", Name: "Crisis del corralito", StartDate: "2001-12-01", CrisisType: "Economica", SeverityLevel: "Alta", AccelerationFactor: "3.5", LongTermImpact: "Emergencia prolongada"},
		},
		Velocity: []models.VelocityMetric{
			{LegalArea: "civil", Period: "1990-2000", MetricType: "Reform_Frequency", Value: &v},
		},
		Transplants: []models.Transplant{
			{ID: "T1", Institution: "Amparo", OriginCountry: "Estados Unidos", SuccessLevel: "High", AdaptationRequired: "Alta"},
		},
	}
}

// ---------------------------------------------------------------------------
// Query
// ---------------------------------------------------------------------------

func TestQuery_SingleCaseScenario(t *testing.T) {
	c := qt.New(t)
	svc := newTestService(t, nil, singleCaseCorpus())

	res, err := svc.Query(context.Background(), "fideicomiso", "")
	c.Assert(err, qt.IsNil)
	c.Assert(res.Matches, qt.HasLen, 1)
	c.Assert(res.Matches[0].ID, qt.Equals, "C1")
	c.Assert(res.Matches[0].Score, qt.Equals, 1.0)
	c.Assert(res.RelevantCaseIDs, qt.DeepEquals, []string{"C1"})
	c.Assert(res.Confidence, qt.CmpEquals(cmpopts.EquateApprox(0, 1e-9)), 0.95)
	c.Assert(res.Insights.DominantCategory, qt.Equals, "civil")
	c.Assert(res.Analysis.LegalAreasMentioned, qt.Contains, "civil")
	c.Assert(res.Analysis.TemporalPatterns, qt.DeepEquals, []string{"1995"})
	c.Assert(res.Query, qt.Equals, "fideicomiso")
	c.Assert(res.ID, qt.HasLen, 26)
	c.Assert(res.Timestamp.IsZero(), qt.IsFalse)
}

func TestQuery_NoOverlap(t *testing.T) {
	c := qt.New(t)
	svc := newTestService(t, nil, sampleCorpus())

	res, err := svc.Query(context.Background(), "astronomía planetaria", "")
	c.Assert(err, qt.IsNil)
	c.Assert(res.Matches, qt.HasLen, 0)
	c.Assert(res.RelevantCaseIDs, qt.HasLen, 0)
	c.Assert(res.Confidence, qt.Equals, 0.0)
	c.Assert(res.Response, qt.Equals, synth.NoResultsMessage)
	c.Assert(res.Insights.Empty(), qt.IsTrue)
}

func TestQuery_EmptyCorpus(t *testing.T) {
	c := qt.New(t)
	svc := newTestService(t, nil, nil)

	res, err := svc.Query(context.Background(), "fideicomiso", "")
	c.Assert(err, qt.IsNil)
	c.Assert(res.Matches, qt.HasLen, 0)
	c.Assert(res.Confidence, qt.Equals, 0.0)
}

func TestQuery_RankingAndFilters(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	svc := newTestService(t, nil, sampleCorpus())

	c.Run("dominant category over two civil matches", func(c *qt.C) {
		res, err := svc.Query(ctx, "fideicomiso", "")
		c.Assert(err, qt.IsNil)
		c.Assert(res.RelevantCaseIDs, qt.DeepEquals, []string{"C1", "C2"})
		c.Assert(res.Insights.DominantCategory, qt.Equals, "civil")
		c.Assert(res.Insights.SuccessRate, qt.Equals, 50.0)
		c.Assert(res.Sources, qt.DeepEquals, []string{})
	})

	c.Run("type filter restricts partitions", func(c *qt.C) {
		res, err := svc.Query(ctx, "2001", models.TypeCrisis)
		c.Assert(err, qt.IsNil)
		c.Assert(res.RelevantCaseIDs, qt.DeepEquals, []string{"CR1"})
	})

	c.Run("top k override", func(c *qt.C) {
		res, err := svc.QueryTopK(ctx, "fideicomiso", "", 1)
		c.Assert(err, qt.IsNil)
		c.Assert(res.Matches, qt.HasLen, 1)
	})

	c.Run("configured top k", func(c *qt.C) {
		cfg := config.Default()
		cfg.RetrievalTopK = 1
		small := newTestService(t, cfg, sampleCorpus())
		res, err := small.Query(ctx, "fideicomiso", "")
		c.Assert(err, qt.IsNil)
		c.Assert(res.Matches, qt.HasLen, 1)
	})
}

func TestQuery_CanceledContext(t *testing.T) {
	c := qt.New(t)
	svc := newTestService(t, nil, sampleCorpus())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := svc.Query(ctx, "fideicomiso", "")
	c.Assert(res, qt.IsNil)

	var qerr *models.QueryError
	c.Assert(errors.As(err, &qerr), qt.IsTrue)
	c.Assert(qerr.Kind, qt.Equals, models.QueryErrCanceled)
	c.Assert(qerr.Query, qt.Equals, "fideicomiso")
	c.Assert(qerr.Timestamp.IsZero(), qt.IsFalse)
	c.Assert(errors.Is(err, context.Canceled), qt.IsTrue)
}

func TestQuery_AfterClose(t *testing.T) {
	c := qt.New(t)
	svc, err := service.NewFromRecords(context.Background(), nil, sampleCorpus())
	c.Assert(err, qt.IsNil)
	c.Assert(svc.Close(), qt.IsNil)
	c.Assert(svc.Close(), qt.IsNil)

	_, err = svc.Query(context.Background(), "fideicomiso", "")
	var qerr *models.QueryError
	c.Assert(errors.As(err, &qerr), qt.IsTrue)
	c.Assert(qerr.Kind, qt.Equals, models.QueryErrNoIndex)
	c.Assert(errors.Is(err, service.ErrClosed), qt.IsTrue)
}

// ---------------------------------------------------------------------------
// Aggregates and stats
// ---------------------------------------------------------------------------

func TestAggregates(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	svc := newTestService(t, nil, sampleCorpus())

	vel, err := svc.AnalyzeVelocity(ctx, "")
	c.Assert(err, qt.IsNil)
	c.Assert(vel.TotalMetrics, qt.Equals, 1)
	c.Assert(vel.KeyInsights, qt.DeepEquals, []string{"Frecuencia promedio de reformas: 4.00"})

	tr, err := svc.TrackTransplants(ctx, "Estados Unidos")
	c.Assert(err, qt.IsNil)
	c.Assert(tr.TotalTransplants, qt.Equals, 1)

	cr, err := svc.CrisisImpact(ctx, "Econ")
	c.Assert(err, qt.IsNil)
	c.Assert(cr.TotalCrises, qt.Equals, 1)
	c.Assert(*cr.ImpactSummary.MaxAcceleration, qt.Equals, 3.5)
}

func TestStats(t *testing.T) {
	c := qt.New(t)
	svc := newTestService(t, nil, sampleCorpus())

	st := svc.Stats()
	c.Assert(st.Datasets, qt.Equals, models.DatasetCounts{
		EvolutionCases:  4,
		VelocityMetrics: 1,
		TransplantCases: 1,
		CrisisPeriods:   1,
	})
	c.Assert(st.Index.Cases, qt.Equals, 3)
	c.Assert(st.Index.Crises, qt.Equals, 1)
	c.Assert(st.Index.Skipped, qt.Equals, 1)
	c.Assert(st.Warnings, qt.HasLen, 1)
	c.Assert(st.TemporalAnalysis, qt.Equals, config.TemporalAnalysis{StartYear: 1950, EndYear: 2024})
}

// ---------------------------------------------------------------------------
// New / Reload
// ---------------------------------------------------------------------------

func writeFile(c *qt.C, dir, name, body string) {
	c.Assert(os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600), qt.IsNil)
}

func TestNew_FromDataDir(t *testing.T) {
	c := qt.New(t)
	dir := c.TempDir()
	writeFile(c, dir, "evolution_cases.csv",
		"case_id,nombre_caso,area_derecho,fecha_inicio,exito\nC1,Fideicomiso financiero,civil,1995-01-01,Exitoso\n")
	writeFile(c, dir, config.FileName, "retrieval_top_k: 3\n")

	svc, err := service.New(context.Background(), dir)
	c.Assert(err, qt.IsNil)
	defer svc.Close()

	c.Assert(svc.DataDir, qt.Equals, dir)
	c.Assert(svc.Config().RetrievalTopK, qt.Equals, 3)
	c.Assert(svc.Stats().Datasets.EvolutionCases, qt.Equals, 1)
	c.Assert(svc.Stats().Datasets.CrisisPeriods, qt.Equals, 0)

	res, err := svc.Query(context.Background(), "fideicomiso", "")
	c.Assert(err, qt.IsNil)
	c.Assert(res.Confidence, qt.CmpEquals(cmpopts.EquateApprox(0, 1e-9)), 0.95)
}

func TestNew_MalformedConfigFallsBack(t *testing.T) {
	c := qt.New(t)
	dir := c.TempDir()
	writeFile(c, dir, config.FileName, "retrieval_top_k: [\n")

	svc, err := service.New(context.Background(), dir)
	c.Assert(err, qt.IsNil)
	defer svc.Close()
	c.Assert(svc.Config().RetrievalTopK, qt.Equals, 20)
}

func TestReload_PicksUpNewData(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	dir := c.TempDir()
	writeFile(c, dir, "evolution_cases.csv", "case_id,nombre_caso\nC1,Fideicomiso\n")

	svc, err := service.New(ctx, dir)
	c.Assert(err, qt.IsNil)
	defer svc.Close()

	res, err := svc.Query(ctx, "amparo", "")
	c.Assert(err, qt.IsNil)
	c.Assert(res.Matches, qt.HasLen, 0)

	writeFile(c, dir, "evolution_cases.csv", "case_id,nombre_caso\nC1,Fideicomiso\nC2,Amparo\n")
	c.Assert(svc.Reload(ctx), qt.IsNil)

	res, err = svc.Query(ctx, "amparo", "")
	c.Assert(err, qt.IsNil)
	c.Assert(res.RelevantCaseIDs, qt.DeepEquals, []string{"C2"})

	// The aggregate store of the new snapshot is usable.
	_, err = svc.AnalyzeVelocity(ctx, "")
	c.Assert(err, qt.IsNil)
}
