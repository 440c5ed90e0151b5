package db_test

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/lexmemory/internal/db"
	"github.com/go-ports/lexmemory/internal/models"
)

func ptr(f float64) *float64 { return &f }

// openTestDB opens a fresh in-memory database loaded with corpus and
// registers t.Cleanup to close it.
func openTestDB(t *testing.T, corpus *models.Corpus) *db.DB {
	t.Helper()
	d, err := db.Open()
	if err != nil {
		t.Fatalf("openTestDB: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	if corpus != nil {
		if err := d.Load(context.Background(), corpus); err != nil {
			t.Fatalf("openTestDB load: %v", err)
		}
	}
	return d
}

func sampleCorpus() *models.Corpus {
	return &models.Corpus{
		Velocity: []models.VelocityMetric{
			{LegalArea: "civil", Period: "1990-2000", MetricType: "Reform_Frequency", Value: ptr(2)},
			{LegalArea: "civil", Period: "2000-2010", MetricType: "Reform_Frequency", Value: ptr(3)},
			{LegalArea: "civil", Period: "2000-2010", MetricType: "Adoption_Speed", Value: ptr(1)},
			{LegalArea: "laboral", Period: "1990-2000", MetricType: "Reform_Frequency", Value: ptr(5)},
			{LegalArea: "laboral", Period: "", MetricType: "", Value: nil},
		},
		Transplants: []models.Transplant{
			{ID: "T1", OriginCountry: "Estados Unidos", SuccessLevel: "High", AdaptationRequired: "Alta"},
			{ID: "T2", OriginCountry: "Estados Unidos", SuccessLevel: "Medium", AdaptationRequired: "Alta"},
			{ID: "T3", OriginCountry: "Francia", SuccessLevel: "High", AdaptationRequired: "Baja"},
			{ID: "T4", OriginCountry: "Francia", SuccessLevel: "", AdaptationRequired: ""},
		},
		Crises: []models.CrisisPeriod{
			{ID: "CR1", CrisisType: "Economica", SeverityLevel: "Alta", AccelerationFactor: "3.5"},
			{ID: "CR2", CrisisType: "Economica_Financiera", SeverityLevel: "Alta", AccelerationFactor: "2.5"},
			{ID: "CR3", CrisisType: "Politica", SeverityLevel: "Media", AccelerationFactor: "n/d"},
		},
	}
}

// ---------------------------------------------------------------------------
// Open
// ---------------------------------------------------------------------------

func TestOpen_HappyPath(t *testing.T) {
	c := qt.New(t)
	d := openTestDB(t, nil)
	c.Assert(d, qt.IsNotNil)
}

func TestOpen_DatabasesAreIsolated(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	openTestDB(t, sampleCorpus())
	empty := openTestDB(t, nil)

	got, err := empty.Velocity(ctx, "")
	c.Assert(err, qt.IsNil)
	c.Assert(got.TotalMetrics, qt.Equals, 0)
}

// ---------------------------------------------------------------------------
// Velocity
// ---------------------------------------------------------------------------

func TestVelocity(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	d := openTestDB(t, sampleCorpus())

	c.Run("all areas", func(c *qt.C) {
		got, err := d.Velocity(ctx, "")
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.DeepEquals, &models.VelocitySummary{
			LegalArea:    "All",
			TotalMetrics: 5,
			Detail: &models.VelocityDetail{
				PeriodsAnalyzed: 2,
				MetricTypes:     map[string]int{"Reform_Frequency": 3, "Adoption_Speed": 1},
				AreasCovered:    2,
			},
			KeyInsights: []string{"Frecuencia promedio de reformas: 3.33"},
		})
	})

	c.Run("single area", func(c *qt.C) {
		got, err := d.Velocity(ctx, "civil")
		c.Assert(err, qt.IsNil)
		c.Assert(got.TotalMetrics, qt.Equals, 3)
		c.Assert(got.Detail.AreasCovered, qt.Equals, 1)
		c.Assert(got.KeyInsights, qt.DeepEquals, []string{"Frecuencia promedio de reformas: 2.50"})
	})

	c.Run("unknown area", func(c *qt.C) {
		got, err := d.Velocity(ctx, "ambiental")
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.DeepEquals, &models.VelocitySummary{
			Error:     "No velocity metrics available",
			LegalArea: "ambiental",
		})
	})
}

// ---------------------------------------------------------------------------
// Transplants
// ---------------------------------------------------------------------------

func TestTransplants(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	d := openTestDB(t, sampleCorpus())

	c.Run("all origins", func(c *qt.C) {
		got, err := d.Transplants(ctx, "")
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.DeepEquals, &models.TransplantSummary{
			OriginCountry:      "All",
			TotalTransplants:   4,
			SuccessAnalysis:    map[string]int{"High": 2, "Medium": 1},
			AdaptationPatterns: map[string]int{"Alta": 2, "Baja": 1},
			KeyInsights:        []string{"Tasa de éxito alto: 50.0%"},
		})
	})

	c.Run("single origin", func(c *qt.C) {
		got, err := d.Transplants(ctx, "Estados Unidos")
		c.Assert(err, qt.IsNil)
		c.Assert(got.TotalTransplants, qt.Equals, 2)
		c.Assert(got.KeyInsights, qt.DeepEquals, []string{"Tasa de éxito alto: 50.0%"})
	})

	c.Run("unknown origin", func(c *qt.C) {
		got, err := d.Transplants(ctx, "Alemania")
		c.Assert(err, qt.IsNil)
		c.Assert(got.Error, qt.Equals, "No transplant data available")
		c.Assert(got.TotalTransplants, qt.Equals, 0)
	})
}

// ---------------------------------------------------------------------------
// CrisisImpact
// ---------------------------------------------------------------------------

func TestCrisisImpact(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	d := openTestDB(t, sampleCorpus())

	c.Run("all crises", func(c *qt.C) {
		got, err := d.CrisisImpact(ctx, "")
		c.Assert(err, qt.IsNil)
		c.Assert(got.TotalCrises, qt.Equals, 3)
		c.Assert(*got.ImpactSummary.AvgAcceleration, qt.Equals, 3.0)
		c.Assert(*got.ImpactSummary.MaxAcceleration, qt.Equals, 3.5)
		c.Assert(got.ImpactSummary.SeverityDistribution, qt.DeepEquals, map[string]int{"Alta": 2, "Media": 1})
		c.Assert(got.KeyInsights, qt.DeepEquals, []string{"Factor de aceleración promedio: 3.00"})
	})

	c.Run("substring filter", func(c *qt.C) {
		got, err := d.CrisisImpact(ctx, "Economica")
		c.Assert(err, qt.IsNil)
		c.Assert(got.CrisisTypeFilter, qt.Equals, "Economica")
		c.Assert(got.TotalCrises, qt.Equals, 2)
	})

	c.Run("filter is case-sensitive", func(c *qt.C) {
		got, err := d.CrisisImpact(ctx, "economica")
		c.Assert(err, qt.IsNil)
		c.Assert(got.Error, qt.Equals, "No crisis data available")
	})

	c.Run("no numeric factor", func(c *qt.C) {
		got, err := d.CrisisImpact(ctx, "Politica")
		c.Assert(err, qt.IsNil)
		c.Assert(got.ImpactSummary.AvgAcceleration, qt.IsNil)
		c.Assert(got.KeyInsights, qt.HasLen, 0)
	})
}
