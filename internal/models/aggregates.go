package models

// AllFilter is reported as the filter value when none was given.
const AllFilter = "All"

// VelocityDetail summarizes the velocity metrics that passed the filter.
type VelocityDetail struct {
	PeriodsAnalyzed int            `json:"periods_analyzed"`
	MetricTypes     map[string]int `json:"metric_types"`
	AreasCovered    int            `json:"areas_covered"`
}

// VelocitySummary is the result of a velocity analysis. Error is set, and
// Detail nil, when no metric matched.
type VelocitySummary struct {
	Error        string          `json:"error,omitempty"`
	LegalArea    string          `json:"legal_area"`
	TotalMetrics int             `json:"total_metrics"`
	Detail       *VelocityDetail `json:"velocity_summary,omitempty"`
	KeyInsights  []string        `json:"key_insights,omitempty"`
}

// TransplantSummary is the result of a legal-transplant analysis.
type TransplantSummary struct {
	Error              string         `json:"error,omitempty"`
	OriginCountry      string         `json:"origin_country"`
	TotalTransplants   int            `json:"total_transplants"`
	SuccessAnalysis    map[string]int `json:"success_analysis,omitempty"`
	AdaptationPatterns map[string]int `json:"adaptation_patterns,omitempty"`
	KeyInsights        []string       `json:"key_insights,omitempty"`
}

// CrisisImpactDetail aggregates the acceleration and severity of crises.
// The acceleration fields are nil when no crisis carries a numeric factor.
type CrisisImpactDetail struct {
	AvgAcceleration      *float64       `json:"avg_acceleration,omitempty"`
	MaxAcceleration      *float64       `json:"max_acceleration,omitempty"`
	SeverityDistribution map[string]int `json:"severity_distribution"`
}

// CrisisSummary is the result of a crisis-impact analysis.
type CrisisSummary struct {
	Error            string              `json:"error,omitempty"`
	CrisisTypeFilter string              `json:"crisis_type_filter"`
	TotalCrises      int                 `json:"total_crises"`
	ImpactSummary    *CrisisImpactDetail `json:"impact_summary,omitempty"`
	KeyInsights      []string            `json:"key_insights,omitempty"`
}

// DatasetCounts is the number of rows loaded per dataset.
type DatasetCounts struct {
	EvolutionCases  int `json:"evolution_cases"`
	VelocityMetrics int `json:"velocity_metrics"`
	TransplantCases int `json:"transplant_cases"`
	CrisisPeriods   int `json:"crisis_periods"`
}
