package weather

import (
	"time"

	"trailsafe/internal/types"
)

// Status is the availability state of a snapshot.
type Status string

const (
	StatusOK          Status = "ok"
	StatusDegraded    Status = "degraded"
	StatusUnavailable Status = "unavailable"
)

// Source identifies which provider a field came from.
type Source string

const (
	SourcePrimary   Source = "primary"
	SourceSecondary Source = "secondary"
)

// unavailableDescription is the exact description an all-providers-down
// snapshot carries; clients key off it.
const unavailableDescription = "Weather data unavailable"

// TrendPoint is one hour of the forecast trend. Numeric fields are
// pointers: a nil field was not reported, which is different from zero.
type TrendPoint struct {
	Time         time.Time          `json:"time"`
	TemperatureF *float64           `json:"temperatureF,omitempty"`
	FeelsLikeF   *float64           `json:"feelsLikeF,omitempty"`
	WindSpeedMph *float64           `json:"windSpeedMph,omitempty"`
	WindGustMph  *float64           `json:"windGustMph,omitempty"`
	PrecipPct    *float64           `json:"precipPct,omitempty"`
	SnowfallIn   *float64           `json:"snowfallIn,omitempty"`
	RainIn       *float64           `json:"rainIn,omitempty"`
	WeatherCode  *types.WeatherCode `json:"weatherCode,omitempty"`
	Description  string             `json:"description,omitempty"`
	Daylight     *bool              `json:"daylight,omitempty"`
}

// BandProjection is a lapse-rate temperature projection for an elevation
// band relative to the objective.
type BandProjection struct {
	Name         string   `json:"name"`
	ElevationFt  float64  `json:"elevationFt"`
	TemperatureF *float64 `json:"temperatureF,omitempty"`
	FeelsLikeF   *float64 `json:"feelsLikeF,omitempty"`
}

// Snapshot is the blended current-conditions picture anchored to the
// objective elevation. Every numeric field is either a finite value behind
// a pointer or nil; an unavailable snapshot must never read as calm and
// warm through zero values.
type Snapshot struct {
	Status          Status            `json:"status"`
	Description     string            `json:"description"`
	TemperatureF    *float64          `json:"temperatureF,omitempty"`
	FeelsLikeF      *float64          `json:"feelsLikeF,omitempty"`
	DewPointF       *float64          `json:"dewPointF,omitempty"`
	HumidityPct     *float64          `json:"humidityPct,omitempty"`
	CloudCoverPct   *float64          `json:"cloudCoverPct,omitempty"`
	PressureHpa     *float64          `json:"pressureHpa,omitempty"`
	PrecipPct       *float64          `json:"precipPct,omitempty"`
	WindSpeedMph    *float64          `json:"windSpeedMph,omitempty"`
	WindGustMph     *float64          `json:"windGustMph,omitempty"`
	WindDirDegrees  *float64          `json:"windDirDegrees,omitempty"`
	WindCardinal    string            `json:"windCardinal,omitempty"`
	Daylight        *bool             `json:"daylight,omitempty"`
	IssuedAt        *time.Time        `json:"issuedAt,omitempty"`
	FetchedAt       time.Time         `json:"fetchedAt"`
	Provenance      map[string]Source `json:"provenance,omitempty"`
	Trend           []TrendPoint      `json:"trend,omitempty"`
	BandProjections []BandProjection  `json:"bandProjections,omitempty"`
}

// Unavailable builds the explicit all-providers-down snapshot. All numeric
// fields stay nil.
func Unavailable(fetchedAt time.Time) *Snapshot {
	return &Snapshot{
		Status:      StatusUnavailable,
		Description: unavailableDescription,
		FetchedAt:   fetchedAt,
	}
}
