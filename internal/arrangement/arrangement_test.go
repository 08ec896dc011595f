// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

package arrangement

import (
	"github.com/sdss-manga/scheduler/internal/model"
	"github.com/sdss-manga/scheduler/internal/persistence"
	"github.com/sdss-manga/scheduler/internal/quality"
	"github.com/sdss-manga/scheduler/pkg/metrics"
)

func testEvaluator() *quality.Evaluator {
	return quality.NewEvaluator(
		quality.SN2Thresholds{
			PlateBlue:        100,
			PlateRed:         100,
			SetExcellentBlue: 30,
			SetExcellentRed:  30,
			SetGoodBlue:      15,
			SetGoodRed:       15,
		},
		quality.AcceptanceWindow{MaxSeeing: 2.0, MaxSkyBrightness: 19.5, MaxAirmass: 1.5},
	)
}

func testConfig() Config {
	return Config{
		BlueThreshold:              100,
		RedThreshold:               100,
		PermutationLimitAll:        1000,
		PermutationLimitIncomplete: 1000,
		SetRearrangementFactor:     0.9,
	}
}

func newTestEngine(store persistence.Port) *Engine {
	return NewEngine(store, testEvaluator(), nil, testConfig(), metrics.NewRecorder(nil))
}

func ptr(n int) *int { return &n }

func goodExposure(no int, dither model.DitherPosition, sn model.SNVector) *model.Exposure {
	return &model.Exposure{
		ExposureNo:     no,
		DitherPosition: dither,
		SN2:            sn,
		Valid:          true,
		Seeing:         1.0,
		SkyBrightness:  18.0,
		Airmass:        1.1,
	}
}
