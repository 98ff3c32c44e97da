// Package report orchestrates every hazard section into one risk report.
// Upstream failures degrade individual sections; the report itself only
// fails on invalid input.
package report

import (
	"time"

	"trailsafe/internal/avalanche"
	"trailsafe/internal/providers/nws"
	"trailsafe/internal/safety"
	"trailsafe/internal/terrain"
	"trailsafe/internal/types"
	"trailsafe/internal/weather"
	"trailsafe/internal/zones"
)

// SectionStatus is the availability state of one report section.
type SectionStatus string

const (
	SectionOK          SectionStatus = "ok"
	SectionUnavailable SectionStatus = "unavailable"
)

// Request is the inbound contract: a coordinate plus an optional planned
// date, start clock time, and travel-window length.
type Request struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Date        string  `json:"date,omitempty"`      // YYYY-MM-DD in the objective's timezone
	StartTime   string  `json:"startTime,omitempty"` // HH:MM in the objective's timezone
	WindowHours int     `json:"windowHours,omitempty"`
}

// RequestEcho reflects the request back with the resolved objective and
// zone match, so a client can see what the report was actually built for.
type RequestEcho struct {
	Coordinates       types.Coords    `json:"coordinates"`
	Start             time.Time       `json:"start"`
	WindowHours       int             `json:"windowHours"`
	Elevation         types.Elevation `json:"elevation"`
	Timezone          string          `json:"timezone"`
	ZoneMatchMode     zones.MatchMode `json:"zoneMatchMode"`
	ZoneFallbackKm    float64         `json:"zoneFallbackKm,omitempty"`
	ResolvedObjective bool            `json:"resolvedObjective"`
}

// WeatherSection is the blended snapshot stamped with its own generation
// time.
type WeatherSection struct {
	*weather.Snapshot
	GeneratedAt time.Time `json:"generatedAt"`
}

// SolarSection carries sunrise/sunset for the planned start's local date.
type SolarSection struct {
	Sunrise     *time.Time    `json:"sunrise,omitempty"`
	Sunset      *time.Time    `json:"sunset,omitempty"`
	Status      SectionStatus `json:"status"`
	GeneratedAt time.Time     `json:"generatedAt"`
}

// AvalancheSection wraps the assembled bulletin.
type AvalancheSection struct {
	*avalanche.Bulletin
	GeneratedAt time.Time `json:"generatedAt"`
}

// Alert is one official alert reduced to the fields the report surfaces.
type Alert struct {
	Event    string     `json:"event"`
	Severity string     `json:"severity,omitempty"`
	Headline string     `json:"headline,omitempty"`
	Onset    *time.Time `json:"onset,omitempty"`
	Ends     *time.Time `json:"ends,omitempty"`
}

// AlertsSection lists alerts active at the planned start time, not merely
// alerts currently in effect.
type AlertsSection struct {
	Alerts      []Alert       `json:"alerts"`
	Status      SectionStatus `json:"status"`
	GeneratedAt time.Time     `json:"generatedAt"`

	// active keeps the raw filtered features for the score synthesizer.
	active []nws.AlertFeature
}

// AirQualitySection carries the current US AQI and particulates.
type AirQualitySection struct {
	USAqi       *float64      `json:"usAqi,omitempty"`
	PM25        *float64      `json:"pm25,omitempty"`
	PM10        *float64      `json:"pm10,omitempty"`
	Category    string        `json:"category,omitempty"`
	Status      SectionStatus `json:"status"`
	GeneratedAt time.Time     `json:"generatedAt"`
}

// RainfallSection reports rolling precipitation totals plus the
// forward-looking expected total over the travel window.
type RainfallSection struct {
	RainPast24h  *types.Precipitation `json:"rainPast24h,omitempty"`
	RainPast72h  *types.Precipitation `json:"rainPast72h,omitempty"`
	SnowPast24h  *types.Precipitation `json:"snowPast24h,omitempty"`
	SnowPast72h  *types.Precipitation `json:"snowPast72h,omitempty"`
	RainExpected *types.Precipitation `json:"rainExpected,omitempty"`
	SnowExpected *types.Precipitation `json:"snowExpected,omitempty"`
	Status       SectionStatus        `json:"status"`
	GeneratedAt  time.Time            `json:"generatedAt"`
}

// SnowpackSource tells whether the observation came from a station or a
// gridded model value.
type SnowpackSource string

const (
	SnowpackStation SnowpackSource = "station"
	SnowpackGrid    SnowpackSource = "grid"
)

// SnowpackSection is the nearest standing-snow observation.
type SnowpackSection struct {
	*types.SnowpackObservation
	Source      SnowpackSource `json:"source,omitempty"`
	Status      SectionStatus  `json:"status"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

// FireSection is the heat/dryness/wind derivative. Level runs 0 (none) to
// 3 (extreme); nil means the derivation had no weather to work from.
type FireSection struct {
	Level       *int          `json:"level,omitempty"`
	Label       string        `json:"label,omitempty"`
	Reasons     []string      `json:"reasons,omitempty"`
	Status      SectionStatus `json:"status"`
	GeneratedAt time.Time     `json:"generatedAt"`
}

// TerrainSection is the classified trail surface condition.
type TerrainSection struct {
	terrain.Condition
	GeneratedAt time.Time `json:"generatedAt"`
}

// SafetySection is the composite score payload.
type SafetySection struct {
	*safety.Score
	GeneratedAt time.Time `json:"generatedAt"`
}

// Report is the unified response payload.
type Report struct {
	Request     RequestEcho        `json:"request"`
	Weather     *WeatherSection    `json:"weather"`
	Solar       *SolarSection      `json:"solar"`
	Avalanche   *AvalancheSection  `json:"avalanche"`
	Alerts      *AlertsSection     `json:"alerts"`
	AirQuality  *AirQualitySection `json:"airQuality"`
	Rainfall    *RainfallSection   `json:"rainfall"`
	Snowpack    *SnowpackSection   `json:"snowpack"`
	Fire        *FireSection       `json:"fire"`
	Terrain     *TerrainSection    `json:"terrain"`
	Safety      *SafetySection     `json:"safety"`
	PartialData bool               `json:"partialData,omitempty"`
	APIWarning  string             `json:"apiWarning,omitempty"`
	GeneratedAt time.Time          `json:"generatedAt"`
}
