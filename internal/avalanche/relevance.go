package avalanche

import (
	"fmt"
	"time"

	"trailsafe/internal/types"
)

// RelevanceInput carries the signals the evaluator weighs. Weather fields
// are pointers because an unavailable snapshot must not read as calm and
// warm.
type RelevanceInput struct {
	Coverage     CoverageStatus
	ElevationFt  float64
	LatitudeDeg  float64
	Start        time.Time
	TemperatureF *float64
	FeelsLikeF   *float64
	SnowExpected bool
	Snowpack     *types.SnowpackObservation
	OffSeason    bool
}

const (
	materialDepthIn   = 6.0
	materialSweIn     = 1.5
	measurableDepthIn = 2.0
	measurableSweIn   = 0.5
	bareDepthIn       = 1.0
	bareSweIn         = 0.25

	highElevationFt = 8500.0
	midElevationFt  = 6500.0
	highLatitudeDeg = 42.0
)

// Relevance decides whether avalanche hazard should be surfaced for this
// objective and start time. Every branch returns a reason; the evaluator
// never returns relevant without one.
func Relevance(in RelevanceInput) (bool, string) {
	// An expired bulletin still reflects real coverage; it is shown stale
	// rather than hidden.
	switch in.Coverage {
	case CoverageExpired:
		return true, "an official avalanche bulletin exists but has expired for the selected start time"
	case CoverageReported:
		return true, "an avalanche center issues current official forecasts for this zone"
	}

	if wintry(in) {
		return true, "wintry weather is expected around the planned start"
	}

	if in.Snowpack != nil && in.Snowpack.HasMeasurement() {
		depth := deref(in.Snowpack.DepthInches)
		swe := deref(in.Snowpack.SweInches)
		if depth >= materialDepthIn || swe >= materialSweIn {
			return true, fmt.Sprintf("nearby stations report a material snowpack (%.0f in depth, %.1f in SWE)", depth, swe)
		}
		if depth >= measurableDepthIn || swe >= measurableSweIn {
			return true, fmt.Sprintf("nearby stations report a measurable snowpack (%.0f in depth, %.1f in SWE)", depth, swe)
		}
		if depth < bareDepthIn && swe < bareSweIn && (in.OffSeason || in.Coverage == CoverageNoActiveForecast || in.Coverage == CoverageNoCenter) {
			return false, "the snowpack is effectively bare and no active avalanche forecast covers this area"
		}
	}

	month := in.Start.Month()
	if in.ElevationFt >= highElevationFt && winterOrShoulder(month) {
		return true, fmt.Sprintf("high-elevation objective (%.0f ft) during the avalanche season window", in.ElevationFt)
	}
	if in.ElevationFt >= midElevationFt && in.LatitudeDeg >= highLatitudeDeg && winter(month) {
		return true, fmt.Sprintf("mid-elevation objective (%.0f ft) at high latitude in winter", in.ElevationFt)
	}

	return false, "no wintry weather, material snowpack, or seasonal elevation signal for this objective"
}

func wintry(in RelevanceInput) bool {
	if in.SnowExpected {
		return true
	}
	if in.TemperatureF != nil && *in.TemperatureF <= 32 {
		return true
	}
	if in.FeelsLikeF != nil && *in.FeelsLikeF <= 25 {
		return true
	}
	return false
}

func winter(m time.Month) bool {
	switch m {
	case time.December, time.January, time.February, time.March:
		return true
	}
	return false
}

func winterOrShoulder(m time.Month) bool {
	switch m {
	case time.October, time.November, time.April, time.May:
		return true
	}
	return winter(m)
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
