// Package config handles configuration loading and data directory resolution.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/go-ports/lexmemory/internal/models"
)

// FileName is the per-data-dir config file name.
const FileName = "config.yaml"

// EnvDataDir overrides the persisted data directory.
const EnvDataDir = "LEXMEM_DATA"

// ---------------------------------------------------------------------------
// Config types
// ---------------------------------------------------------------------------

// TemporalAnalysis is the year window reported alongside the corpus.
type TemporalAnalysis struct {
	StartYear int `yaml:"start_year"`
	EndYear   int `yaml:"end_year"`
}

// RealityFilter describes the primary sources answers are attributed to.
type RealityFilter struct {
	Enabled               bool     `yaml:"enabled"`
	PrimarySources        []string `yaml:"primary_sources"`
	VerificationThreshold float64  `yaml:"verification_threshold"`
}

// Datasets holds dataset file names, relative to the data directory.
type Datasets struct {
	EvolutionCases      string `yaml:"evolution_cases"`
	VelocityMetrics     string `yaml:"velocity_metrics"`
	TransplantsTracking string `yaml:"transplants_tracking"`
	CrisisPeriods       string `yaml:"crisis_periods"`
}

// Config is the root per-data-dir configuration.
type Config struct {
	RetrievalTopK    int              `yaml:"retrieval_top_k"`
	LegalDomains     []string         `yaml:"legal_domains"`
	MaxMemoryLength  int              `yaml:"max_memory_length"`
	TemporalAnalysis TemporalAnalysis `yaml:"temporal_analysis"`
	RealityFilter    RealityFilter    `yaml:"reality_filter"`
	Datasets         Datasets         `yaml:"datasets"`
}

// Default returns a Config populated with the built-in defaults.
func Default() *Config {
	return &Config{
		RetrievalTopK: 20,
		LegalDomains: []string{
			"constitucional", "civil", "comercial", "financiero",
			"administrativo", "procesal", "criminal", "laboral",
			"tributario", "cambiario", "bancario", "ambiental",
		},
		MaxMemoryLength: 10000,
		TemporalAnalysis: TemporalAnalysis{
			StartYear: 1950,
			EndYear:   2024,
		},
		RealityFilter: RealityFilter{
			Enabled:               true,
			PrimarySources:        []string{"InfoLeg", "SAIJ", "CSJN", "Boletín Oficial"},
			VerificationThreshold: 0.95,
		},
		Datasets: Datasets{
			EvolutionCases:      "evolution_cases.csv",
			VelocityMetrics:     "velocity_metrics.csv",
			TransplantsTracking: "transplants_tracking.csv",
			CrisisPeriods:       "crisis_periods.csv",
		},
	}
}

// Load reads a config.yaml from path. It always returns a usable config:
// a missing file yields Default() with no error, and every malformed or
// invalid part keeps its default and is reported as a *models.ConfigError
// (joined when there are several).
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, &models.ConfigError{Err: err}
	}

	// Unmarshal into a plain map so we can apply only the keys that are present.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, &models.ConfigError{Err: err}
	}

	var errs []error
	invalid := func(key string, v any) {
		errs = append(errs, &models.ConfigError{Key: key, Err: fmt.Errorf("invalid value %v", v)})
	}

	if v, ok := raw["retrieval_top_k"]; ok {
		if n, ok := v.(int); ok && n > 0 {
			cfg.RetrievalTopK = n
		} else {
			invalid("retrieval_top_k", v)
		}
	}
	if v, ok := raw["legal_domains"]; ok {
		if list, ok := stringList(v); ok && len(list) > 0 {
			cfg.LegalDomains = list
		} else {
			invalid("legal_domains", v)
		}
	}
	if v, ok := raw["max_memory_length"]; ok {
		if n, ok := v.(int); ok && n >= 0 {
			cfg.MaxMemoryLength = n
		} else {
			invalid("max_memory_length", v)
		}
	}

	if ta, ok := raw["temporal_analysis"].(map[string]any); ok {
		if v, ok := ta["start_year"].(int); ok {
			cfg.TemporalAnalysis.StartYear = v
		}
		if v, ok := ta["end_year"].(int); ok {
			cfg.TemporalAnalysis.EndYear = v
		}
		if cfg.TemporalAnalysis.StartYear > cfg.TemporalAnalysis.EndYear {
			invalid("temporal_analysis", ta)
			cfg.TemporalAnalysis = Default().TemporalAnalysis
		}
	}

	if rf, ok := raw["reality_filter"].(map[string]any); ok {
		if v, ok := rf["enabled"].(bool); ok {
			cfg.RealityFilter.Enabled = v
		}
		if list, ok := stringList(rf["primary_sources"]); ok {
			cfg.RealityFilter.PrimarySources = list
		}
		if v, ok := number(rf["verification_threshold"]); ok {
			if v >= 0 && v <= 1 {
				cfg.RealityFilter.VerificationThreshold = v
			} else {
				invalid("reality_filter.verification_threshold", v)
			}
		}
	}

	if ds, ok := raw["datasets"].(map[string]any); ok {
		if v, ok := ds["evolution_cases"].(string); ok && v != "" {
			cfg.Datasets.EvolutionCases = v
		}
		if v, ok := ds["velocity_metrics"].(string); ok && v != "" {
			cfg.Datasets.VelocityMetrics = v
		}
		if v, ok := ds["transplants_tracking"].(string); ok && v != "" {
			cfg.Datasets.TransplantsTracking = v
		}
		if v, ok := ds["crisis_periods"].(string); ok && v != "" {
			cfg.Datasets.CrisisPeriods = v
		}
	}

	return cfg, errors.Join(errs...)
}

// Save writes cfg as YAML to path, creating parent directories.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config.Save: %w", err)
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config.Save: %w", err)
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fmt.Errorf("config.Save: %w", err)
	}
	return nil
}

// DatasetPath joins a dataset file name onto dataDir unless it is absolute.
func DatasetPath(dataDir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dataDir, name)
}

func stringList(v any) ([]string, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// ---------------------------------------------------------------------------
// Data directory resolution
// ---------------------------------------------------------------------------

// globalConfigPath returns the path to the global lexmem config file.
// This file stores only data_dir.
func globalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "lexmem", "config.yaml"), nil
}

// normalizePath expands ~ and makes the path absolute.
func normalizePath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[2:])
	}
	return filepath.Abs(os.ExpandEnv(path))
}

// ResolveDataDir returns the data directory and the source of the resolution.
// Priority: flag → LEXMEM_DATA env → persisted global config → current dir.
// source is one of "flag", "env", "config", or "default".
func ResolveDataDir(flag string) (path, source string) {
	if flag != "" {
		if p, err := normalizePath(flag); err == nil {
			return p, "flag"
		}
	}

	if env := os.Getenv(EnvDataDir); env != "" {
		if p, err := normalizePath(env); err == nil {
			return p, "env"
		}
	}

	if persisted, ok, _ := GetPersistedDataDir(); ok {
		return persisted, "config"
	}

	if wd, err := os.Getwd(); err == nil {
		return wd, "default"
	}
	return ".", "default"
}

// GetPersistedDataDir reads data_dir from the global config.
// Returns ("", false, nil) if not set.
func GetPersistedDataDir() (string, bool, error) {
	raw, _, err := readGlobal()
	if err != nil || raw == nil {
		return "", false, err
	}

	val, _ := raw["data_dir"].(string)
	val = strings.TrimSpace(val)
	if val == "" {
		return "", false, nil
	}

	p, err := normalizePath(val)
	if err != nil {
		return "", false, err
	}
	return p, true, nil
}

// SetPersistedDataDir normalizes path and persists it in the global config.
// Returns the normalized path.
func SetPersistedDataDir(path string) (string, error) {
	normalized, err := normalizePath(path)
	if err != nil {
		return "", err
	}

	raw, cfgPath, err := readGlobal()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return "", err
	}
	if raw == nil {
		raw = make(map[string]any)
	}
	raw["data_dir"] = normalized

	out, err := yaml.Marshal(raw)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(cfgPath, out, 0o600); err != nil {
		return "", err
	}
	return normalized, nil
}

// ClearPersistedDataDir removes data_dir from the global config.
// Returns true if the key was present and removed.
// If the file becomes empty after removal it is deleted.
func ClearPersistedDataDir() (bool, error) {
	raw, cfgPath, err := readGlobal()
	if err != nil || raw == nil {
		return false, err
	}

	if _, ok := raw["data_dir"]; !ok {
		return false, nil
	}
	delete(raw, "data_dir")

	if len(raw) == 0 {
		_ = os.Remove(cfgPath)
		return true, nil
	}

	out, err := yaml.Marshal(raw)
	if err != nil {
		return false, err
	}
	return true, os.WriteFile(cfgPath, out, 0o600)
}

// readGlobal returns the parsed global config, or a nil map when the file
// is absent or unparsable.
func readGlobal() (map[string]any, string, error) {
	cfgPath, err := globalConfigPath()
	if err != nil {
		return nil, "", err
	}

	data, err := os.ReadFile(cfgPath)
	if os.IsNotExist(err) {
		return nil, cfgPath, nil
	}
	if err != nil {
		return nil, cfgPath, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, cfgPath, nil
	}
	return raw, cfgPath, nil
}
