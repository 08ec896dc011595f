// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

// Package config holds the scheduler's configuration surface (SPEC_FULL.md
// §6): exposure timing, planner/plugger tuning, SN2 thresholds, set
// arrangement limits, and field-catalogue inputs. Loading is a plain YAML
// file override over a set of defaults; resolving any of it against a live
// external source (a catalog service, a drilling database) stays out of
// scope and is represented elsewhere by opaque reader interfaces.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	scherrors "github.com/sdss-manga/scheduler/pkg/errors"
)

// Config is the scheduler's full configuration surface.
type Config struct {
	Exposure       ExposureConfig       `yaml:"exposure"`
	Planner        PlannerConfig        `yaml:"planner"`
	Plugger        PluggerConfig        `yaml:"plugger"`
	SN2Thresholds  SN2ThresholdsConfig  `yaml:"sn2Thresholds"`
	Set            SetConfig            `yaml:"set"`
	SetArrangement SetArrangementConfig `yaml:"setArrangement"`
	Fields         FieldsConfig         `yaml:"fields"`

	// DateAtAPO is a path to the tile/dateAtAPO table, or "none" to disable
	// it (any plate with no listed date is always considered available).
	DateAtAPO string `yaml:"dateAtAPO"`

	MangaCarts   []string `yaml:"mangaCarts"`
	OfflineCarts []string `yaml:"offlineCarts"`
}

// ExposureConfig holds the single shared per-exposure timing parameter.
type ExposureConfig struct {
	// ExposureTime is the nominal exposure time in seconds, before
	// dividing by observing efficiency.
	ExposureTime float64 `yaml:"exposureTime"`
}

// PlannerConfig tunes the multi-night planner driver.
type PlannerConfig struct {
	Efficiency          float64 `yaml:"efficiency"`
	GoodWeatherFraction float64 `yaml:"goodWeatherFraction"`
	NoPlugPriority      int     `yaml:"noPlugPriority"`
	Seed                int64   `yaml:"seed"`
	MaxAltitude         float64 `yaml:"maxAltitude"`
}

// PluggerConfig tunes the real-time, single-night plugging mode.
type PluggerConfig struct {
	Efficiency  float64 `yaml:"efficiency"`
	MaxAltitude float64 `yaml:"maxAltitude"`
}

// SN2ThresholdsConfig holds the SN² acceptance thresholds the quality
// evaluator and plate-completion math are measured against.
type SN2ThresholdsConfig struct {
	PlateBlue float64 `yaml:"plateBlue"`
	PlateRed  float64 `yaml:"plateRed"`

	SetExcellentBlue float64 `yaml:"setExcellentBlue"`
	SetExcellentRed  float64 `yaml:"setExcellentRed"`
	SetGoodBlue      float64 `yaml:"setGoodBlue"`
	SetGoodRed       float64 `yaml:"setGoodRed"`

	// Acceptance bounds the ensemble scalars (seeing, sky brightness,
	// airmass) a set's exposures must stay within to avoid a Bad status.
	// A zero Max* field disables that particular bound.
	Acceptance AcceptanceConfig `yaml:"acceptance"`
}

// AcceptanceConfig mirrors internal/quality.AcceptanceWindow.
type AcceptanceConfig struct {
	MaxSeeing        float64 `yaml:"maxSeeing"`
	MaxSkyBrightness float64 `yaml:"maxSkyBrightness"`
	MaxAirmass       float64 `yaml:"maxAirmass"`
}

// SetConfig holds set-arrangement tuning not specific to permutation
// limits.
type SetConfig struct {
	DitherPositions        []string `yaml:"ditherPositions"`
	SetRearrangementFactor float64  `yaml:"setRearrangementFactor"`
}

// SetArrangementConfig bounds the brute-force rearrangement search.
type SetArrangementConfig struct {
	PermutationLimitPlate      int `yaml:"permutationLimitPlate"`
	PermutationLimitIncomplete int `yaml:"permutationLimitIncomplete"`
}

// FieldsConfig configures the undrilled-field fallback catalogue.
type FieldsConfig struct {
	ScienceCatalogue string `yaml:"scienceCatalogue"`
	MinTargetsInTile int    `yaml:"minTargetsInTile"`
	TilesBeingDrilled []int `yaml:"tilesBeingDrilled"`

	// TileWeights is a path to the manga_tileid/ancillary_weight table, or
	// "" to disable it (every tile then carries weight zero).
	TileWeights string `yaml:"tileWeights"`
}

// NewDefault returns a Config populated with the reference survey's
// nominal values, suitable as the base that Load overrides.
func NewDefault() *Config {
	return &Config{
		Exposure: ExposureConfig{ExposureTime: 900},
		Planner: PlannerConfig{
			Efficiency:          0.76,
			GoodWeatherFraction: 0.5,
			NoPlugPriority:      2,
			Seed:                1,
			MaxAltitude:         85,
		},
		Plugger: PluggerConfig{
			Efficiency:  0.76,
			MaxAltitude: 85,
		},
		SN2Thresholds: SN2ThresholdsConfig{
			PlateBlue: 5560, PlateRed: 1350,
			SetExcellentBlue: 1300, SetExcellentRed: 415,
			SetGoodBlue: 928, SetGoodRed: 292,
			Acceptance: AcceptanceConfig{MaxSeeing: 2.0, MaxSkyBrightness: 19.5, MaxAirmass: 1.5},
		},
		Set: SetConfig{
			DitherPositions:        []string{"N", "S", "E"},
			SetRearrangementFactor: 0.9,
		},
		SetArrangement: SetArrangementConfig{
			PermutationLimitPlate:      1000,
			PermutationLimitIncomplete: 100,
		},
		Fields: FieldsConfig{
			MinTargetsInTile: 1,
		},
		DateAtAPO:    "none",
		MangaCarts:   []string{"1", "2", "3", "4", "5", "6", "7", "9"},
		OfflineCarts: nil,
	}
}

// Load parses path as a YAML override of c's current values. A missing or
// malformed file is reported as a ConfigError rather than a bare I/O error.
func (c *Config) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return scherrors.NewConfigError(path, err.Error())
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return scherrors.NewConfigError(path, "invalid YAML: "+err.Error())
	}
	return nil
}

// Validate reports the first structurally invalid field it finds, wrapped
// as a ConfigError. It does not require optional inputs (DateAtAPO,
// ScienceCatalogue) to be set — their absence is a PlannerWarning at use
// time, not a config-time failure.
func (c *Config) Validate() error {
	switch {
	case c.Exposure.ExposureTime <= 0:
		return scherrors.NewConfigError("exposure.exposureTime", "must be positive")
	case c.Planner.Efficiency <= 0 || c.Planner.Efficiency > 1:
		return scherrors.NewConfigError("planner.efficiency", "must be in (0, 1]")
	case c.Plugger.Efficiency <= 0 || c.Plugger.Efficiency > 1:
		return scherrors.NewConfigError("plugger.efficiency", "must be in (0, 1]")
	case c.Planner.GoodWeatherFraction < 0 || c.Planner.GoodWeatherFraction > 1:
		return scherrors.NewConfigError("planner.goodWeatherFraction", "must be in [0, 1]")
	case c.Planner.MaxAltitude <= 0 || c.Planner.MaxAltitude > 90:
		return scherrors.NewConfigError("planner.maxAltitude", "must be in (0, 90]")
	case c.Plugger.MaxAltitude <= 0 || c.Plugger.MaxAltitude > 90:
		return scherrors.NewConfigError("plugger.maxAltitude", "must be in (0, 90]")
	case c.Set.SetRearrangementFactor <= 0 || c.Set.SetRearrangementFactor > 1:
		return scherrors.NewConfigError("set.setRearrangementFactor", "must be in (0, 1]")
	case c.SetArrangement.PermutationLimitPlate <= 0:
		return scherrors.NewConfigError("setArrangement.permutationLimitPlate", "must be positive")
	case c.SetArrangement.PermutationLimitIncomplete <= 0:
		return scherrors.NewConfigError("setArrangement.permutationLimitIncomplete", "must be positive")
	case len(c.Set.DitherPositions) == 0:
		return scherrors.NewConfigError("set.ditherPositions", "must list at least one dither position")
	}
	return nil
}
