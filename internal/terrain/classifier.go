// Package terrain classifies the expected trail surface from weather,
// snowpack, and precipitation-history signals.
package terrain

import (
	"fmt"

	"trailsafe/internal/types"
	"trailsafe/internal/weather"
)

// Label is the coded surface condition.
type Label string

const (
	LabelSnowIce     Label = "snow_ice"
	LabelWetMud      Label = "wet_mud"
	LabelDry         Label = "dry"
	LabelUnavailable Label = "unavailable"
)

// ConfidenceTier grades how well-supported the classification is.
type ConfidenceTier string

const (
	ConfidenceHigh   ConfidenceTier = "high"
	ConfidenceMedium ConfidenceTier = "medium"
	ConfidenceLow    ConfidenceTier = "low"
)

// Condition is the classifier's output.
type Condition struct {
	Label      Label          `json:"label"`
	Confidence ConfidenceTier `json:"confidence"`
	Reasons    []string       `json:"reasons,omitempty"`
}

// Input carries the signals the classifier weighs. All of them are
// optional; the classifier degrades to low confidence or unavailable.
type Input struct {
	Snapshot         *weather.Snapshot
	Snowpack         *types.SnowpackObservation
	RainfallPast24In *float64
	SnowfallPast24In *float64
}

// Per-hour trend thresholds. Precipitation in a forecast hour is judged
// against that hour's own temperature, not the current one: an afternoon
// rain shower after a freezing morning is mud, not ice.
const (
	precipChanceThreshold = 40.0
	freezingCutoffF       = 34.0
)

// Classify runs a small scored decision table over the available signals.
func Classify(in Input) Condition {
	weatherUsable := in.Snapshot != nil && in.Snapshot.Status != weather.StatusUnavailable
	if !weatherUsable && in.Snowpack == nil {
		return Condition{
			Label:      LabelUnavailable,
			Confidence: ConfidenceLow,
			Reasons:    []string{"no weather or snowpack data available"},
		}
	}

	var (
		snowScore, wetScore int
		reasons             []string
		signals             int
	)

	if in.Snowpack != nil && in.Snowpack.DepthInches != nil {
		depth := *in.Snowpack.DepthInches
		signals++
		switch {
		case depth >= 2:
			snowScore += 3
			reasons = append(reasons, fmt.Sprintf("%.0f in standing snow at %s", depth, in.Snowpack.StationName))
		case depth >= 0.5:
			snowScore++
			reasons = append(reasons, fmt.Sprintf("patchy snow (%.1f in) at %s", depth, in.Snowpack.StationName))
		}
	}

	if in.SnowfallPast24In != nil && *in.SnowfallPast24In >= 1 {
		snowScore += 2
		signals++
		reasons = append(reasons, fmt.Sprintf("%.1f in of snow fell in the last 24 hours", *in.SnowfallPast24In))
	}
	if in.RainfallPast24In != nil {
		switch rain := *in.RainfallPast24In; {
		case rain >= 0.3:
			wetScore += 2
			signals++
			reasons = append(reasons, fmt.Sprintf("%.2f in of rain fell in the last 24 hours", rain))
		case rain >= 0.1:
			wetScore++
			signals++
			reasons = append(reasons, fmt.Sprintf("light rain (%.2f in) in the last 24 hours", rain))
		}
	}

	if weatherUsable {
		snowHours, rainHours := trendPrecipHours(in.Snapshot.Trend)
		if snowHours > 0 {
			snowScore += snowHours
			signals++
			reasons = append(reasons, fmt.Sprintf("snow likely in %d of the next trend hours", snowHours))
		}
		if rainHours > 0 {
			wetScore += rainHours
			signals++
			reasons = append(reasons, fmt.Sprintf("rain likely in %d of the next trend hours", rainHours))
		}
		if in.Snapshot.TemperatureF != nil && *in.Snapshot.TemperatureF <= 32 &&
			in.Snowpack != nil && in.Snowpack.DepthInches != nil && *in.Snowpack.DepthInches > 0 {
			snowScore++
			reasons = append(reasons, "freezing temperature over standing snow")
		}
	}

	label := LabelDry
	winner, runnerUp := snowScore, wetScore
	switch {
	case snowScore == 0 && wetScore == 0:
		reasons = append(reasons, "no recent or expected precipitation signals")
	case snowScore >= wetScore:
		label = LabelSnowIce
	default:
		label = LabelWetMud
		winner, runnerUp = wetScore, snowScore
	}

	return Condition{
		Label:      label,
		Confidence: confidence(signals, winner-runnerUp, weatherUsable),
		Reasons:    reasons,
	}
}

// trendPrecipHours counts trend hours with a material precipitation chance,
// split by each hour's own temperature or weather code.
func trendPrecipHours(trend []weather.TrendPoint) (snowHours, rainHours int) {
	for _, point := range trend {
		if point.WeatherCode != nil {
			switch {
			case point.WeatherCode.IsSnow() || point.WeatherCode.IsFreezing():
				snowHours++
				continue
			case point.WeatherCode.IsRain():
				rainHours++
				continue
			}
		}
		if point.PrecipPct == nil || *point.PrecipPct < precipChanceThreshold {
			continue
		}
		if point.TemperatureF != nil && *point.TemperatureF <= freezingCutoffF {
			snowHours++
		} else {
			rainHours++
		}
	}
	return snowHours, rainHours
}

func confidence(signals, margin int, weatherUsable bool) ConfidenceTier {
	if !weatherUsable {
		return ConfidenceLow
	}
	switch {
	case signals >= 3 && margin >= 2:
		return ConfidenceHigh
	case signals >= 2:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
