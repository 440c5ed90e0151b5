// Package models defines the core data types for the legal evolution memory.
package models

import (
	"fmt"
	"strings"
)

// RecordType tags which dataset a record belongs to.
type RecordType string

const (
	TypeCase   RecordType = "evolution_case"
	TypeCrisis RecordType = "crisis_period"
)

// RecordTypes lists the indexed variants in scan order.
var RecordTypes = []RecordType{TypeCase, TypeCrisis}

// ParseRecordType maps user-facing filter names to a RecordType.
// An empty string returns ("", nil), meaning "no filter".
func ParseRecordType(s string) (RecordType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "case", "cases", "evolution_case", "evolution_cases":
		return TypeCase, nil
	case "crisis", "crises", "crisis_period", "crisis_periods":
		return TypeCrisis, nil
	}
	return "", fmt.Errorf("unknown record type %q: use case or crisis", s)
}

// SuccessSentinel is the outcome value counted as a successful evolution.
const SuccessSentinel = "Exitoso"

// Case is one row of evolution_cases.csv.
type Case struct {
	ID                     string `json:"case_id"`
	Name                   string `json:"nombre_caso"`
	LegalArea              string `json:"area_derecho"`
	StartDate              string `json:"fecha_inicio"`
	EndDate                string `json:"fecha_fin"`
	SelectionType          string `json:"tipo_seleccion"`
	Origin                 string `json:"origen"`
	Success                string `json:"exito"`
	EnvironmentalPressure  string `json:"presion_ambiental"`
	KeyActors              string `json:"actores_principales"`
	PrimaryLegislation     string `json:"normativa_primaria"`
	RelevantRulings        string `json:"fallos_relevantes"`
	SurvivalYears          string `json:"supervivencia_anos"`
	Mutations              string `json:"mutaciones_identificadas"`
	InternationalDiffusion string `json:"difusion_otras_jurisdicciones"`
	Notes                  string `json:"notas"`
}

// CrisisPeriod is one row of crisis_periods.csv.
type CrisisPeriod struct {
	ID                     string `json:"crisis_id"`
	Name                   string `json:"crisis_name"`
	StartDate              string `json:"start_date"`
	EndDate                string `json:"end_date"`
	CrisisType             string `json:"crisis_type"`
	SeverityLevel          string `json:"severity_level"`
	LegalChangesCount      string `json:"legal_changes_count"`
	EmergencyDecrees       string `json:"emergency_decrees"`
	NewLaws                string `json:"new_laws"`
	AccelerationFactor     string `json:"acceleration_factor"`
	EconomicIndicators     string `json:"economic_indicators"`
	RecoveryTimelineMonths string `json:"recovery_timeline_months"`
	LongTermImpact         string `json:"long_term_institutional_impact"`
}

// VelocityMetric is one row of velocity_metrics.csv. Value is nil when the
// source cell is empty or not numeric.
type VelocityMetric struct {
	LegalArea  string   `json:"area_derecho"`
	Period     string   `json:"period"`
	MetricType string   `json:"metric_type"`
	Value      *float64 `json:"value"`
}

// Transplant is one row of transplants_tracking.csv.
type Transplant struct {
	ID                 string `json:"transplant_id"`
	Institution        string `json:"institution"`
	OriginCountry      string `json:"origin_country"`
	TargetArea         string `json:"target_area"`
	AdoptionYear       string `json:"adoption_year"`
	SuccessLevel       string `json:"success_level"`
	AdaptationRequired string `json:"adaptation_required"`
}

// Corpus is the full set of datasets handed to the core by the loader.
type Corpus struct {
	Cases       []Case
	Crises      []CrisisPeriod
	Velocity    []VelocityMetric
	Transplants []Transplant
}

// Key identifies an indexed record. IDs are only unique within a RecordType.
type Key struct {
	Type RecordType
	ID   string
}

func (k Key) String() string { return string(k.Type) + "/" + k.ID }

// MemoryEntry is the denormalised text + metadata rendering of a record.
type MemoryEntry struct {
	Key      Key
	Content  string
	Metadata map[string]string
}

// Metadata keys shared by the memory builder and the insight derivation.
const (
	MetaLegalArea  = "legal_area"
	MetaStartDate  = "start_date"
	MetaSuccess    = "success"
	MetaCrisisType = "crisis_type"
	MetaSeverity   = "severity"
	MetaType       = "type"
)
