// Package config defines the locator's configuration surface (SPEC_FULL.md
// §6 / §10): a JSON-loadable Config with validator/v10 struct tags, in the
// teacher's internal/config.TuningConfig idiom — plain value fields that a
// JSON file overlays on a Defaults() base, then a Validate() pass, rather than a bespoke
// hand-rolled validator.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Config holds every recognized scalar option from SPEC_FULL.md §6.
type Config struct {
	TTimeTable      string `json:"ttime_table" validate:"required"`
	LocalVmodelFile string `json:"local_vmodel_file,omitempty"`
	EtopoFile       string `json:"etopo_file,omitempty"`
	EtopoNlon       int    `json:"etopo_nlon,omitempty" validate:"omitempty,gt=0"`
	EtopoNlat       int    `json:"etopo_nlat,omitempty" validate:"omitempty,gt=0"`
	EtopoRes        float64 `json:"etopo_res,omitempty" validate:"omitempty,gt=0"`

	DefaultDepth float64 `json:"default_depth" validate:"gte=0,lte=700"`

	MinIterations int `json:"min_iterations" validate:"gte=1"`
	MaxIterations int `json:"max_iterations" validate:"gtefield=MinIterations"`

	MinNdefPhases  int     `json:"min_ndef_phases" validate:"gte=1"`
	SigmaThreshold float64 `json:"sigma_threshold" validate:"gt=0"`

	DoCorrelatedErrors bool `json:"do_correlated_errors"`
	AllowDamping       bool `json:"allow_damping"`
	ConfidenceLevel    float64 `json:"confidence_level" validate:"gt=0,lt=1"`

	PctVarianceRetained float64 `json:"pct_variance_retained" validate:"gt=0,lt=1"`

	MinDepthPhases         int `json:"min_depth_phases" validate:"gte=1"`
	MindDepthPhaseAgencies int `json:"mind_depth_phase_agencies" validate:"gte=1"`
	MaxLocalDistDeg        float64 `json:"max_local_dist_deg" validate:"gt=0"`
	MinLocalStations       int     `json:"min_local_stations" validate:"gte=1"`
	MaxSPDistDeg           float64 `json:"max_sp_dist_deg" validate:"gt=0"`
	MinSPpairs             int     `json:"min_sp_pairs" validate:"gte=1"`
	MinCorePhases          int     `json:"min_core_phases" validate:"gte=1"`
	MaxShallowDepthError   float64 `json:"max_shallow_depth_error" validate:"gt=0"`
	MaxDeepDepthError      float64 `json:"max_deep_depth_error" validate:"gt=0"`

	DoGridSearch   bool    `json:"do_grid_search"`
	NASearchRadius float64 `json:"na_search_radius" validate:"gt=0"`
	NASearchDepth  float64 `json:"na_search_depth" validate:"gt=0"`
	NASearchOT     float64 `json:"na_search_ot" validate:"gt=0"`
	NALpNorm       float64 `json:"na_lp_norm" validate:"gte=1,lte=2"`
	NAIterMax      int     `json:"na_iter_max" validate:"gte=1"`
	NAInitialSample int    `json:"na_initial_sample" validate:"gte=1"`
	NANextSample    int    `json:"na_next_sample" validate:"gte=1"`
	NACells         int    `json:"na_cells" validate:"gte=1"`
	Iseed           int64  `json:"iseed"`

	UseRSTTPnSn     bool `json:"use_rstt_pn_sn"`
	UseRSTTPgLg     bool `json:"use_rstt_pg_lg"`
	MaxLocalTTDelta float64 `json:"max_local_tt_delta" validate:"gte=0"`

	DoNotUseAgencies []string `json:"do_not_use_agencies,omitempty"`
	TrustedAgency    string   `json:"trusted_agency,omitempty"`
}

// Numerical constants that affect wire-level output (§6); these are not
// user-configurable, but are named here so every package references the
// same values.
const (
	DEPSILON    = 1e-8
	ConvTol     = 1e-8
	SametimeTol = 0.1 // seconds
	EpiwalkKm   = 5.0
	MaxRSTTDistDeg = 15.0
)

// Defaults returns the locator's production-default configuration, the
// values SPEC_FULL.md §6 lists as recognized options.
func Defaults() *Config {
	return &Config{
		TTimeTable:          "iasp91",
		DefaultDepth:        10,
		MinIterations:       4,
		MaxIterations:       40,
		MinNdefPhases:       4,
		SigmaThreshold:      4.0,
		DoCorrelatedErrors:  true,
		AllowDamping:        true,
		ConfidenceLevel:     0.90,
		PctVarianceRetained: 0.99,

		MinDepthPhases:         3,
		MindDepthPhaseAgencies: 2,
		MaxLocalDistDeg:        1.35, // ~150 km
		MinLocalStations:       3,
		MaxSPDistDeg:           2.0,
		MinSPpairs:             2,
		MinCorePhases:          3,
		MaxShallowDepthError:   30,
		MaxDeepDepthError:      60,

		DoGridSearch:    true,
		NASearchRadius:  5.0,
		NASearchDepth:   100.0,
		NASearchOT:      30.0,
		NALpNorm:        1.0,
		NAIterMax:       10,
		NAInitialSample: 200,
		NANextSample:    100,
		NACells:         20,
		Iseed:           12345,

		UseRSTTPnSn:     false,
		UseRSTTPgLg:     false,
		MaxLocalTTDelta: 3.0,
	}
}

var validate = validator.New()

// Validate checks the configuration using validator/v10 struct tags only;
// no rule beyond what the tags express is applied.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Load reads a JSON configuration file on top of Defaults() and validates
// the result, the way the teacher's LoadTuningConfig layers a partial JSON
// file over baked-in defaults.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config: file must have .json extension, got %q", ext)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %q: %w", cleanPath, err)
	}
	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %q: %w", cleanPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RejectSet returns DoNotUseAgencies as a lookup set.
func (c *Config) RejectSet() map[string]bool {
	m := make(map[string]bool, len(c.DoNotUseAgencies))
	for _, a := range c.DoNotUseAgencies {
		m[a] = true
	}
	return m
}
