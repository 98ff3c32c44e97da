package weather

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"trailsafe/internal/config"
	"trailsafe/internal/providers/nws"
	"trailsafe/internal/providers/openmeteo"
	"trailsafe/internal/types"
)

// PointForecastProvider is the primary hourly forecast source.
type PointForecastProvider interface {
	GetPoint(ctx context.Context, latitude, longitude float64) (*nws.PointAPIResponse, error)
	GetHourlyForecast(ctx context.Context, forecastURL string) (*nws.HourlyForecastResponse, error)
}

// FallbackForecastProvider is the secondary global forecast source.
type FallbackForecastProvider interface {
	GetForecast(ctx context.Context, latitude, longitude, elevationMeters float64, forecastDays, pastDays int) (*openmeteo.ForecastAPIResponse, error)
}

// Result is a blended snapshot plus the raw fallback forecast. The fallback
// is returned so other sections (rainfall totals, solar times, terrain) can
// reuse the same fetch instead of calling the provider again.
type Result struct {
	Snapshot *Snapshot
	Fallback *openmeteo.ForecastAPIResponse
}

type Service interface {
	GetSnapshot(ctx context.Context, objective types.Objective, start time.Time, windowHours int) *Result
}

type weatherService struct {
	primary   PointForecastProvider
	secondary FallbackForecastProvider
	cfg       *config.Config
	logger    *slog.Logger
	now       func() time.Time
}

// pastDays of fallback history fetched for rolling rainfall totals.
const pastDays = 3

// minTrendPoints is the trend length under which the primary trend is
// considered truncated and rebuilt from the fallback.
const minTrendPoints = 6

func NewService(primary PointForecastProvider, secondary FallbackForecastProvider, cfg *config.Config, logger *slog.Logger) Service {
	return NewServiceWithClock(primary, secondary, cfg, logger, time.Now)
}

func NewServiceWithClock(primary PointForecastProvider, secondary FallbackForecastProvider, cfg *config.Config, logger *slog.Logger, now func() time.Time) Service {
	return &weatherService{
		primary:   primary,
		secondary: secondary,
		cfg:       cfg,
		logger:    logger.With("component", "weather-service"),
		now:       now,
	}
}

// GetSnapshot fetches both providers concurrently and blends the results.
// Provider failures degrade the snapshot; they are never returned as
// errors, and the worst case is an explicit unavailable snapshot.
func (s *weatherService) GetSnapshot(ctx context.Context, objective types.Objective, start time.Time, windowHours int) *Result {
	if windowHours <= 0 {
		windowHours = s.cfg.App.TravelWindowHours
	}

	var (
		primary  *nws.HourlyForecastResponse
		fallback *openmeteo.ForecastAPIResponse
	)
	coords := objective.Coordinates

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		point, err := s.primary.GetPoint(gctx, coords.Latitude, coords.Longitude)
		if err != nil {
			s.logger.Warn("primary point lookup failed", "error", err)
			return nil
		}
		hourly, err := s.primary.GetHourlyForecast(gctx, point.Properties.ForecastHourly)
		if err != nil {
			s.logger.Warn("primary hourly forecast failed", "error", err)
			return nil
		}
		primary = hourly
		return nil
	})
	g.Go(func() error {
		f, err := s.secondary.GetForecast(gctx, coords.Latitude, coords.Longitude, objective.Elevation.Meters, s.cfg.App.ForecastDays, pastDays)
		if err != nil {
			s.logger.Warn("fallback forecast failed", "error", err)
			return nil
		}
		fallback = f
		return nil
	})
	_ = g.Wait()

	snap := Blend(primary, fallback, objective, start, windowHours, s.now())
	s.logger.Debug("blended weather snapshot",
		"status", snap.Status, "trend_points", len(snap.Trend),
		"primary", primary != nil, "fallback", fallback != nil)
	return &Result{Snapshot: snap, Fallback: fallback}
}

// Blend merges the primary forecast with the fallback field by field. Fields
// present in the primary are never overwritten; only missing ones are copied
// in, with provenance tracked per field. Pure; exercised directly by tests.
func Blend(primary *nws.HourlyForecastResponse, fallback *openmeteo.ForecastAPIResponse, objective types.Objective, start time.Time, windowHours int, fetchedAt time.Time) *Snapshot {
	var snap *Snapshot
	switch {
	case primary != nil && len(primary.Properties.Periods) > 0:
		snap = fromPrimary(primary, start, windowHours, fetchedAt)
		if fallback != nil && len(fallback.Hourly.Time) > 0 {
			fillFromFallback(snap, fallback, objective, start, windowHours)
		}
	case fallback != nil && len(fallback.Hourly.Time) > 0:
		snap = fromFallback(fallback, objective, start, windowHours, fetchedAt)
	default:
		return Unavailable(fetchedAt)
	}

	finalizeStatus(snap)
	snap.BandProjections = projectBands(snap, objective)
	return snap
}

func fromPrimary(primary *nws.HourlyForecastResponse, start time.Time, windowHours int, fetchedAt time.Time) *Snapshot {
	periods := primary.Properties.Periods
	idx := periodIndexAt(periods, start)
	p := periods[idx]

	snap := &Snapshot{
		Status:       StatusOK,
		Description:  p.ShortForecast,
		TemperatureF: periodTemperatureF(p),
		DewPointF:    temperatureValueF(p.Dewpoint),
		HumidityPct:  qvValue(p.RelativeHumidity),
		PrecipPct:    qvValue(p.ProbabilityOfPrecipitation),
		WindSpeedMph: parseWindMph(p.WindSpeed),
		WindGustMph:  parseWindMph(p.WindGust),
		WindCardinal: p.WindDirection,
		Daylight:     boolPtr(p.IsDaytime),
		FetchedAt:    fetchedAt,
		Provenance:   make(map[string]Source),
	}
	if t := primary.Properties.UpdateTime; !t.IsZero() {
		snap.IssuedAt = &t
		snap.Provenance["issuedAt"] = SourcePrimary
	}

	for field, present := range map[string]bool{
		"temperature":   snap.TemperatureF != nil,
		"dewPoint":      snap.DewPointF != nil,
		"humidity":      snap.HumidityPct != nil,
		"precipChance":  snap.PrecipPct != nil,
		"wind":          snap.WindSpeedMph != nil,
		"windGust":      snap.WindGustMph != nil,
		"windDirection": snap.WindCardinal != "",
		"daylight":      true,
		"description":   snap.Description != "",
	} {
		if present {
			snap.Provenance[field] = SourcePrimary
		}
	}

	end := idx + windowHours
	if end > len(periods) {
		end = len(periods)
	}
	for _, period := range periods[idx:end] {
		snap.Trend = append(snap.Trend, TrendPoint{
			Time:         period.StartTime,
			TemperatureF: periodTemperatureF(period),
			WindSpeedMph: parseWindMph(period.WindSpeed),
			WindGustMph:  parseWindMph(period.WindGust),
			PrecipPct:    qvValue(period.ProbabilityOfPrecipitation),
			Description:  period.ShortForecast,
			Daylight:     boolPtr(period.IsDaytime),
		})
	}
	if len(snap.Trend) > 0 {
		snap.Provenance["trend"] = SourcePrimary
	}
	return snap
}

// fillFromFallback copies only missing fields into a primary-sourced
// snapshot and marks their provenance as secondary.
func fillFromFallback(snap *Snapshot, fallback *openmeteo.ForecastAPIResponse, objective types.Objective, start time.Time, windowHours int) {
	idx := fallbackIndexAt(fallback, objective.Timezone, start)
	if idx < 0 {
		return
	}

	fill := func(field string, dst **float64, series []float64) {
		if *dst != nil || idx >= len(series) {
			return
		}
		v := series[idx]
		*dst = &v
		snap.Provenance[field] = SourceSecondary
	}

	h := fallback.Hourly
	fill("temperature", &snap.TemperatureF, h.Temperature2M)
	fill("feelsLike", &snap.FeelsLikeF, h.ApparentTemperature)
	fill("dewPoint", &snap.DewPointF, h.DewPoint2M)
	fill("humidity", &snap.HumidityPct, h.RelativeHumidity2M)
	fill("cloudCover", &snap.CloudCoverPct, h.CloudCover)
	fill("pressure", &snap.PressureHpa, h.SurfacePressure)
	fill("precipChance", &snap.PrecipPct, h.PrecipitationProbability)
	fill("wind", &snap.WindSpeedMph, h.WindSpeed10M)
	fill("windGust", &snap.WindGustMph, h.WindGusts10M)

	if snap.WindDirDegrees == nil && idx < len(h.WindDirection10M) {
		deg := h.WindDirection10M[idx]
		snap.WindDirDegrees = &deg
		if snap.WindCardinal == "" {
			snap.WindCardinal = types.CardinalDirection(deg)
			snap.Provenance["windDirection"] = SourceSecondary
		}
	}
	if snap.Daylight == nil && idx < len(h.IsDay) {
		snap.Daylight = boolPtr(h.IsDay[idx] == 1)
		snap.Provenance["daylight"] = SourceSecondary
	}
	if snap.Description == "" && idx < len(h.WeatherCode) {
		snap.Description = types.WeatherCode(h.WeatherCode[idx]).Description()
		snap.Provenance["description"] = SourceSecondary
	}

	if len(snap.Trend) < minTrendPoints {
		if trend := fallbackTrend(fallback, idx, windowHours); len(trend) > len(snap.Trend) {
			snap.Trend = trend
			snap.Provenance["trend"] = SourceSecondary
		}
	}
}

// fromFallback builds the whole snapshot from the secondary provider when
// the primary fetch failed entirely.
func fromFallback(fallback *openmeteo.ForecastAPIResponse, objective types.Objective, start time.Time, windowHours int, fetchedAt time.Time) *Snapshot {
	idx := fallbackIndexAt(fallback, objective.Timezone, start)
	if idx < 0 {
		idx = 0
	}

	snap := &Snapshot{
		Status:     StatusDegraded,
		FetchedAt:  fetchedAt,
		Provenance: make(map[string]Source),
	}
	h := fallback.Hourly

	set := func(field string, dst **float64, series []float64) {
		if idx >= len(series) {
			return
		}
		v := series[idx]
		*dst = &v
		snap.Provenance[field] = SourceSecondary
	}
	set("temperature", &snap.TemperatureF, h.Temperature2M)
	set("feelsLike", &snap.FeelsLikeF, h.ApparentTemperature)
	set("dewPoint", &snap.DewPointF, h.DewPoint2M)
	set("humidity", &snap.HumidityPct, h.RelativeHumidity2M)
	set("cloudCover", &snap.CloudCoverPct, h.CloudCover)
	set("pressure", &snap.PressureHpa, h.SurfacePressure)
	set("precipChance", &snap.PrecipPct, h.PrecipitationProbability)
	set("wind", &snap.WindSpeedMph, h.WindSpeed10M)
	set("windGust", &snap.WindGustMph, h.WindGusts10M)
	set("windDirection", &snap.WindDirDegrees, h.WindDirection10M)

	if snap.WindDirDegrees != nil {
		snap.WindCardinal = types.CardinalDirection(*snap.WindDirDegrees)
	}
	if idx < len(h.IsDay) {
		snap.Daylight = boolPtr(h.IsDay[idx] == 1)
		snap.Provenance["daylight"] = SourceSecondary
	}
	if idx < len(h.WeatherCode) {
		snap.Description = types.WeatherCode(h.WeatherCode[idx]).Description()
		snap.Provenance["description"] = SourceSecondary
	}

	snap.Trend = fallbackTrend(fallback, idx, windowHours)
	snap.Provenance["trend"] = SourceSecondary
	return snap
}

func fallbackTrend(fallback *openmeteo.ForecastAPIResponse, idx, windowHours int) []TrendPoint {
	h := fallback.Hourly
	end := idx + windowHours
	if end > len(h.Time) {
		end = len(h.Time)
	}

	var trend []TrendPoint
	for i := idx; i < end; i++ {
		point := TrendPoint{}
		if t := parseFallbackTime(h.Time[i]); t != nil {
			point.Time = *t
		}
		point.TemperatureF = seriesValue(h.Temperature2M, i)
		point.FeelsLikeF = seriesValue(h.ApparentTemperature, i)
		point.WindSpeedMph = seriesValue(h.WindSpeed10M, i)
		point.WindGustMph = seriesValue(h.WindGusts10M, i)
		point.PrecipPct = seriesValue(h.PrecipitationProbability, i)
		point.SnowfallIn = seriesValue(h.Snowfall, i)
		point.RainIn = seriesValue(h.Rain, i)
		if i < len(h.WeatherCode) {
			code := types.WeatherCode(h.WeatherCode[i])
			point.WeatherCode = &code
			point.Description = code.Description()
		}
		if i < len(h.IsDay) {
			point.Daylight = boolPtr(h.IsDay[i] == 1)
		}
		trend = append(trend, point)
	}
	return trend
}

// finalizeStatus demotes a snapshot that still lacks safety-relevant fields
// after blending. A status of ok guarantees those fields are present.
func finalizeStatus(snap *Snapshot) {
	if snap.Status != StatusOK {
		return
	}
	if snap.TemperatureF == nil || snap.WindSpeedMph == nil || snap.WindGustMph == nil || snap.PrecipPct == nil {
		snap.Status = StatusDegraded
	}
}

// Lapse-rate projection bands relative to the objective elevation.
const (
	bandOffsetFt    = 2000.0
	lapseFPerKiloFt = 3.5
)

func projectBands(snap *Snapshot, objective types.Objective) []BandProjection {
	if snap.TemperatureF == nil {
		return nil
	}
	base := objective.Elevation.Feet
	bands := []struct {
		name   string
		offset float64
	}{
		{"valley", -bandOffsetFt},
		{"objective", 0},
		{"ridge", bandOffsetFt},
	}

	out := make([]BandProjection, 0, len(bands))
	for _, b := range bands {
		proj := BandProjection{Name: b.name, ElevationFt: base + b.offset}
		t := *snap.TemperatureF - b.offset/1000*lapseFPerKiloFt
		proj.TemperatureF = &t
		if snap.FeelsLikeF != nil {
			fl := *snap.FeelsLikeF - b.offset/1000*lapseFPerKiloFt
			proj.FeelsLikeF = &fl
		}
		out = append(out, proj)
	}
	return out
}

func periodIndexAt(periods []nws.ForecastPeriod, start time.Time) int {
	for i, p := range periods {
		if !start.Before(p.StartTime) && start.Before(p.EndTime) {
			return i
		}
	}
	for i, p := range periods {
		if !p.StartTime.Before(start) {
			return i
		}
	}
	return len(periods) - 1
}

// fallbackIndexAt finds the fallback hour matching the start time. The
// fallback reports local wall-clock times, so the start is rendered in the
// objective's timezone before comparing.
func fallbackIndexAt(fallback *openmeteo.ForecastAPIResponse, tz string, start time.Time) int {
	loc, err := time.LoadLocation(tz)
	if err != nil || tz == "" {
		loc = time.UTC
	}
	target := start.In(loc).Format("2006-01-02T15")
	for i, ts := range fallback.Hourly.Time {
		if len(ts) >= len(target) && ts[:len(target)] == target {
			return i
		}
	}
	return -1
}

func parseFallbackTime(s string) *time.Time {
	for _, layout := range []string{"2006-01-02T15:04", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

var windNumberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// parseWindMph parses NWS wind strings like "10 mph" or "10 to 20 mph",
// keeping the upper bound of a range. Empty or unparsable strings yield nil,
// never zero.
func parseWindMph(s string) *float64 {
	matches := windNumberPattern.FindAllString(s, -1)
	if len(matches) == 0 {
		return nil
	}
	v, err := strconv.ParseFloat(matches[len(matches)-1], 64)
	if err != nil {
		return nil
	}
	return &v
}

func periodTemperatureF(p nws.ForecastPeriod) *float64 {
	t := p.Temperature
	if p.TemperatureUnit == "C" {
		t = types.NewTemperatureFromCelsius(t).Fahrenheit
	}
	return &t
}

// temperatureValueF converts a quantitative value reported in Celsius.
func temperatureValueF(qv nws.QuantitativeValue) *float64 {
	if qv.Value == nil {
		return nil
	}
	v := *qv.Value
	if strings.HasSuffix(qv.UnitCode, "degC") {
		v = types.NewTemperatureFromCelsius(v).Fahrenheit
	}
	return &v
}

func qvValue(qv nws.QuantitativeValue) *float64 {
	if qv.Value == nil {
		return nil
	}
	v := *qv.Value
	return &v
}

func seriesValue(series []float64, i int) *float64 {
	if i >= len(series) {
		return nil
	}
	v := series[i]
	return &v
}

func boolPtr(b bool) *bool { return &b }
