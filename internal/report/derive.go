package report

import (
	"fmt"
	"strings"
	"time"

	"trailsafe/internal/providers/nws"
	"trailsafe/internal/providers/openmeteo"
	"trailsafe/internal/types"
	"trailsafe/internal/weather"
)

// hourIndexAt finds the fallback-forecast hour matching the given instant.
// The fallback reports local wall-clock times, so the instant is rendered
// in the objective's timezone before comparing.
func hourIndexAt(times []string, tz string, at time.Time) int {
	loc, err := time.LoadLocation(tz)
	if err != nil || tz == "" {
		loc = time.UTC
	}
	target := at.In(loc).Format("2006-01-02T15")
	for i, ts := range times {
		if len(ts) >= len(target) && ts[:len(target)] == target {
			return i
		}
	}
	return -1
}

// rainfallTotals computes rolling rain/snow totals around the planned
// start from the fallback forecast's hourly series, which includes past
// days of history.
func rainfallTotals(fallback *openmeteo.ForecastAPIResponse, tz string, start time.Time, windowHours int, generatedAt time.Time) *RainfallSection {
	section := &RainfallSection{Status: SectionUnavailable, GeneratedAt: generatedAt}
	if fallback == nil {
		return section
	}
	idx := hourIndexAt(fallback.Hourly.Time, tz, start)
	if idx < 0 {
		return section
	}

	h := fallback.Hourly
	section.Status = SectionOK
	section.RainPast24h = sumWindow(h.Rain, idx-24, idx)
	section.RainPast72h = sumWindow(h.Rain, idx-72, idx)
	section.SnowPast24h = sumWindow(h.Snowfall, idx-24, idx)
	section.SnowPast72h = sumWindow(h.Snowfall, idx-72, idx)
	section.RainExpected = sumWindow(h.Rain, idx, idx+windowHours)
	section.SnowExpected = sumWindow(h.Snowfall, idx, idx+windowHours)
	return section
}

// sumWindow totals a series over [from, to), clamped to the series bounds.
// A window that falls entirely outside the series yields nil, not zero.
func sumWindow(series []float64, from, to int) *types.Precipitation {
	if from < 0 {
		from = 0
	}
	if to > len(series) {
		to = len(series)
	}
	if from >= to {
		return nil
	}
	total := 0.0
	for i := from; i < to; i++ {
		total += series[i]
	}
	p := types.NewPrecipitationFromInches(total)
	return &p
}

// solarTimes extracts sunrise/sunset for the planned start's local date.
func solarTimes(fallback *openmeteo.ForecastAPIResponse, tz string, start time.Time, generatedAt time.Time) *SolarSection {
	section := &SolarSection{Status: SectionUnavailable, GeneratedAt: generatedAt}
	if fallback == nil {
		return section
	}
	loc, err := time.LoadLocation(tz)
	if err != nil || tz == "" {
		loc = time.UTC
	}
	date := start.In(loc).Format("2006-01-02")

	d := fallback.Daily
	for i, day := range d.Time {
		if day != date {
			continue
		}
		if i < len(d.Sunrise) {
			section.Sunrise = parseLocalTime(d.Sunrise[i], loc)
		}
		if i < len(d.Sunset) {
			section.Sunset = parseLocalTime(d.Sunset[i], loc)
		}
		break
	}
	if section.Sunrise != nil || section.Sunset != nil {
		section.Status = SectionOK
	}
	return section
}

func parseLocalTime(s string, loc *time.Location) *time.Time {
	for _, layout := range []string{"2006-01-02T15:04", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return &t
		}
	}
	return nil
}

// gridSnowpack reads the modeled snow depth at the start hour, used when
// no station within range reported. Open-Meteo reports depth in meters.
func gridSnowpack(fallback *openmeteo.ForecastAPIResponse, tz string, start time.Time) *types.SnowpackObservation {
	if fallback == nil {
		return nil
	}
	idx := hourIndexAt(fallback.Hourly.Time, tz, start)
	if idx < 0 || idx >= len(fallback.Hourly.SnowDepth) {
		return nil
	}
	depthIn := fallback.Hourly.SnowDepth[idx] / 0.0254
	return &types.SnowpackObservation{DepthInches: &depthIn}
}

// snowExpected reports whether the trend window carries any snow signal.
func snowExpected(snap *weather.Snapshot) bool {
	if snap == nil {
		return false
	}
	for _, p := range snap.Trend {
		if p.SnowfallIn != nil && *p.SnowfallIn > 0 {
			return true
		}
		if p.WeatherCode != nil && p.WeatherCode.IsSnow() {
			return true
		}
		if strings.Contains(strings.ToLower(p.Description), "snow") {
			return true
		}
	}
	return false
}

// filterAlerts keeps alerts whose window contains the planned start
// instant. An absent bound is treated as open on that side.
func filterAlerts(features []nws.AlertFeature, start time.Time) []nws.AlertFeature {
	var active []nws.AlertFeature
	for _, f := range features {
		begins := f.Properties.Onset
		if begins == nil {
			begins = f.Properties.Effective
		}
		ends := f.Properties.Ends
		if ends == nil {
			ends = f.Properties.Expires
		}
		if begins != nil && start.Before(*begins) {
			continue
		}
		if ends != nil && start.After(*ends) {
			continue
		}
		active = append(active, f)
	}
	return active
}

var fireLabels = [...]string{"none", "elevated", "high", "extreme"}

// fireRisk derives a coarse fire/heat danger level from heat, dryness,
// and wind. Recent rain pulls the level back down.
func fireRisk(snap *weather.Snapshot, rainPast72 *types.Precipitation, generatedAt time.Time) *FireSection {
	section := &FireSection{Status: SectionUnavailable, GeneratedAt: generatedAt}
	if snap == nil || snap.Status == weather.StatusUnavailable || snap.TemperatureF == nil {
		return section
	}

	var (
		score   int
		reasons []string
	)
	temp := *snap.TemperatureF
	if temp >= 100 {
		score += 2
		reasons = append(reasons, fmt.Sprintf("extreme heat (%.0f F)", temp))
	} else if temp >= 90 {
		score++
		reasons = append(reasons, fmt.Sprintf("high temperature (%.0f F)", temp))
	}
	if snap.HumidityPct != nil {
		switch humidity := *snap.HumidityPct; {
		case humidity <= 12:
			score += 2
			reasons = append(reasons, fmt.Sprintf("critically dry air (%.0f%% humidity)", humidity))
		case humidity <= 20:
			score++
			reasons = append(reasons, fmt.Sprintf("dry air (%.0f%% humidity)", humidity))
		}
	}
	if snap.WindSpeedMph != nil && *snap.WindSpeedMph >= 20 && score > 0 {
		score++
		reasons = append(reasons, fmt.Sprintf("wind %.0f mph would drive fire spread", *snap.WindSpeedMph))
	}
	if rainPast72 != nil && rainPast72.Inches >= 0.5 && score > 0 {
		score--
		reasons = append(reasons, fmt.Sprintf("%.1f in of rain in the past 72 h dampens fuels", rainPast72.Inches))
	}

	level := score
	if level > 3 {
		level = 3
	}
	if level < 0 {
		level = 0
	}
	if level == 0 && len(reasons) == 0 {
		reasons = []string{"no heat or dryness signal"}
	}

	section.Status = SectionOK
	section.Level = &level
	section.Label = fireLabels[level]
	section.Reasons = reasons
	return section
}

// aqiCategory maps a US AQI value onto its EPA category name.
func aqiCategory(aqi float64) string {
	switch {
	case aqi <= 50:
		return "Good"
	case aqi <= 100:
		return "Moderate"
	case aqi <= 150:
		return "Unhealthy for Sensitive Groups"
	case aqi <= 200:
		return "Unhealthy"
	case aqi <= 300:
		return "Very Unhealthy"
	default:
		return "Hazardous"
	}
}
