package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"trailsafe/internal/avalanche"
	"trailsafe/internal/config"
	"trailsafe/internal/location"
	"trailsafe/internal/providers/nac"
	"trailsafe/internal/providers/nws"
	"trailsafe/internal/providers/openmeteo"
	"trailsafe/internal/safety"
	"trailsafe/internal/snowpack"
	"trailsafe/internal/terrain"
	"trailsafe/internal/types"
	"trailsafe/internal/weather"
	"trailsafe/internal/zones"
)

// Validation sentinels. These are the only errors BuildReport returns;
// everything upstream degrades into placeholder sections instead.
var (
	ErrInvalidCoordinates = errors.New("coordinates out of range")
	ErrMalformedDate      = errors.New("malformed date or start time")
	ErrDateOutOfRange     = errors.New("date outside the available forecast range")
)

// CatalogProvider is the zone-catalog slice the orchestrator needs.
type CatalogProvider interface {
	Get(ctx context.Context) (*nac.MapLayerResponse, error)
}

// ZoneResolver maps a point to a catalog zone.
type ZoneResolver interface {
	Resolve(coords types.Coords, catalog *nac.MapLayerResponse) zones.Match
}

// AlertsProvider fetches active official alerts for a point.
type AlertsProvider interface {
	GetActiveAlerts(ctx context.Context, latitude, longitude float64) (*nws.AlertsResponse, error)
}

// AirQualityProvider fetches the current air quality for a point.
type AirQualityProvider interface {
	GetAirQuality(ctx context.Context, latitude, longitude float64) (*openmeteo.AirQualityAPIResponse, error)
}

// Service builds the unified risk report.
type Service interface {
	BuildReport(ctx context.Context, req Request) (*Report, error)
}

type reportService struct {
	location   location.Service
	weather    weather.Service
	avalanche  avalanche.Service
	snowpack   snowpack.Service
	catalog    CatalogProvider
	resolver   ZoneResolver
	alerts     AlertsProvider
	airQuality AirQualityProvider
	cfg        *config.Config
	logger     *slog.Logger
	now        func() time.Time
}

// Deps bundles the services the orchestrator sequences.
type Deps struct {
	Location   location.Service
	Weather    weather.Service
	Avalanche  avalanche.Service
	Snowpack   snowpack.Service
	Catalog    CatalogProvider
	Resolver   ZoneResolver
	Alerts     AlertsProvider
	AirQuality AirQualityProvider
}

func NewService(deps Deps, cfg *config.Config, logger *slog.Logger) Service {
	return NewServiceWithClock(deps, cfg, logger, time.Now)
}

func NewServiceWithClock(deps Deps, cfg *config.Config, logger *slog.Logger, now func() time.Time) Service {
	return &reportService{
		location:   deps.Location,
		weather:    deps.Weather,
		avalanche:  deps.Avalanche,
		snowpack:   deps.Snowpack,
		catalog:    deps.Catalog,
		resolver:   deps.Resolver,
		alerts:     deps.Alerts,
		airQuality: deps.AirQuality,
		cfg:        cfg,
		logger:     logger.With("component", "report-service"),
		now:        now,
	}
}

// BuildReport validates the request, fans out to every provider, and
// assembles the unified payload. Only input validation fails the call;
// upstream failures produce placeholder sections plus a partial-data flag.
func (s *reportService) BuildReport(ctx context.Context, req Request) (*Report, error) {
	coords := types.NewCoords(req.Latitude, req.Longitude)
	if !coords.Valid() {
		return nil, fmt.Errorf("%w: lat=%f, lon=%f", ErrInvalidCoordinates, req.Latitude, req.Longitude)
	}

	now := s.now()
	var warnings []string

	objective, resolved := s.resolveObjective(ctx, coords)
	if !resolved {
		warnings = append(warnings, "location details (elevation, timezone) could not be resolved")
	}

	start, err := s.parseStart(req, objective.Timezone, now)
	if err != nil {
		return nil, err
	}
	windowHours := req.WindowHours
	if windowHours <= 0 {
		windowHours = s.cfg.App.TravelWindowHours
	}

	// Batch 1: weather (with solar/rainfall source) and the zone catalog.
	var (
		weatherResult *weather.Result
		catalog       *nac.MapLayerResponse
		catalogErr    error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		weatherResult = s.weather.GetSnapshot(gctx, *objective, start, windowHours)
		return nil
	})
	g.Go(func() error {
		catalog, catalogErr = s.catalog.Get(gctx)
		if catalogErr != nil {
			s.logger.Warn("zone catalog unavailable", "error", catalogErr)
		}
		return nil
	})
	_ = g.Wait()

	snapshot := weatherResult.Snapshot
	if snapshot.Status == weather.StatusUnavailable {
		warnings = append(warnings, "weather data unavailable")
	}

	// Zone resolution threads into the bulletin cascade.
	var (
		match    zones.Match
		bulletin *avalanche.Bulletin
	)
	if catalogErr != nil {
		match = zones.Match{Mode: zones.MatchNone}
		bulletin = catalogUnavailableBulletin()
		warnings = append(warnings, "avalanche zone catalog unavailable")
	} else {
		match = s.resolver.Resolve(coords, catalog)
		bulletin = s.avalanche.GetBulletin(ctx, coords, match, start)
	}

	// Batch 2: alerts, air quality, snowpack. Rainfall totals reuse the
	// fallback forecast already fetched in batch 1.
	var (
		alertsResp  *nws.AlertsResponse
		alertsErr   error
		aqResp      *openmeteo.AirQualityAPIResponse
		aqErr       error
		stationObs  *types.SnowpackObservation
		snowpackErr error
	)
	g2, g2ctx := errgroup.WithContext(ctx)
	g2.Go(func() error {
		alertsResp, alertsErr = s.alerts.GetActiveAlerts(g2ctx, coords.Latitude, coords.Longitude)
		if alertsErr != nil {
			s.logger.Warn("alerts fetch failed", "error", alertsErr)
		}
		return nil
	})
	g2.Go(func() error {
		aqResp, aqErr = s.airQuality.GetAirQuality(g2ctx, coords.Latitude, coords.Longitude)
		if aqErr != nil {
			s.logger.Warn("air quality fetch failed", "error", aqErr)
		}
		return nil
	})
	g2.Go(func() error {
		stationObs, snowpackErr = s.snowpack.GetNearest(g2ctx, coords)
		if snowpackErr != nil {
			s.logger.Debug("station snowpack unavailable", "error", snowpackErr)
		}
		return nil
	})
	_ = g2.Wait()

	rainfall := rainfallTotals(weatherResult.Fallback, objective.Timezone, start, windowHours, s.now())
	solar := solarTimes(weatherResult.Fallback, objective.Timezone, start, s.now())

	snowpackSection := s.buildSnowpack(stationObs, weatherResult.Fallback, objective.Timezone, start)
	if snowpackSection.Status == SectionUnavailable {
		warnings = append(warnings, "snowpack observations unavailable")
	}

	// Relevance runs after snowpack so the station/grid signal is in hand.
	var offSeason bool
	if match.Feature != nil {
		offSeason = match.Feature.Properties.OffSeason
	}
	bulletin.Relevant, bulletin.RelevanceReason = avalanche.Relevance(avalanche.RelevanceInput{
		Coverage:     bulletin.CoverageStatus,
		ElevationFt:  objective.Elevation.Feet,
		LatitudeDeg:  coords.Latitude,
		Start:        start,
		TemperatureF: snapshot.TemperatureF,
		FeelsLikeF:   snapshot.FeelsLikeF,
		SnowExpected: snowExpected(snapshot),
		Snowpack:     snowpackSection.SnowpackObservation,
		OffSeason:    offSeason,
	})

	alertsSection := s.buildAlerts(alertsResp, alertsErr, start)
	if alertsSection.Status == SectionUnavailable {
		warnings = append(warnings, "official alerts unavailable")
	}
	airQualitySection := s.buildAirQuality(aqResp, aqErr)
	if airQualitySection.Status == SectionUnavailable {
		warnings = append(warnings, "air quality unavailable")
	}

	fire := fireRisk(snapshot, rainfall.RainPast72h, s.now())

	terrainCondition := terrain.Classify(terrain.Input{
		Snapshot:         snapshot,
		Snowpack:         snowpackSection.SnowpackObservation,
		RainfallPast24In: precipInches(rainfall.RainPast24h),
		SnowfallPast24In: precipInches(rainfall.SnowPast24h),
	})

	score := safety.Evaluate(safety.Inputs{
		Bulletin:        bulletin,
		Weather:         snapshot,
		Alerts:          alertsSection.active,
		AlertsOK:        alertsSection.Status == SectionOK,
		AirQualityAqi:   airQualitySection.USAqi,
		AirQualityOK:    airQualitySection.Status == SectionOK,
		FireDangerLevel: fire.Level,
		Start:           start,
		Now:             now,
	})

	report := &Report{
		Request: RequestEcho{
			Coordinates:       coords,
			Start:             start,
			WindowHours:       windowHours,
			Elevation:         objective.Elevation,
			Timezone:          objective.Timezone,
			ZoneMatchMode:     match.Mode,
			ZoneFallbackKm:    match.FallbackDistanceKm,
			ResolvedObjective: resolved,
		},
		Weather:     &WeatherSection{Snapshot: snapshot, GeneratedAt: s.now()},
		Solar:       solar,
		Avalanche:   &AvalancheSection{Bulletin: bulletin, GeneratedAt: s.now()},
		Alerts:      alertsSection,
		AirQuality:  airQualitySection,
		Rainfall:    rainfall,
		Snowpack:    snowpackSection,
		Fire:        fire,
		Terrain:     &TerrainSection{Condition: terrainCondition, GeneratedAt: s.now()},
		Safety:      &SafetySection{Score: score, GeneratedAt: s.now()},
		GeneratedAt: now,
	}
	if len(warnings) > 0 {
		report.PartialData = true
		report.APIWarning = strings.Join(warnings, "; ")
	}

	s.logger.Info("built report",
		"lat", coords.Latitude, "lon", coords.Longitude,
		"zone_mode", match.Mode, "coverage", bulletin.CoverageStatus,
		"score", score.Score, "confidence", score.Confidence,
		"partial", report.PartialData)
	return report, nil
}

// resolveObjective degrades to a bare-coordinate objective when elevation
// or timezone lookup fails; the report is still built, flagged partial.
func (s *reportService) resolveObjective(ctx context.Context, coords types.Coords) (*types.Objective, bool) {
	objective, err := s.location.ResolveObjective(ctx, coords)
	if err != nil {
		s.logger.Warn("objective resolution failed", "error", err)
		return &types.Objective{Coordinates: coords}, false
	}
	return objective, true
}

// parseStart interprets the optional date and start clock time in the
// objective's local timezone and validates the date against the forecast
// horizon.
func (s *reportService) parseStart(req Request, tz string, now time.Time) (time.Time, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil || tz == "" {
		loc = time.UTC
	}

	if req.Date == "" && req.StartTime == "" {
		return now.In(loc).Truncate(time.Hour), nil
	}

	date := req.Date
	if date == "" {
		date = now.In(loc).Format("2006-01-02")
	}
	clock := req.StartTime
	if clock == "" {
		clock = "08:00"
	}

	start, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q %q", ErrMalformedDate, req.Date, req.StartTime)
	}

	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	horizon := today.AddDate(0, 0, s.cfg.App.ForecastDays)
	if start.Before(today) || start.After(horizon) {
		return time.Time{}, fmt.Errorf("%w: available range is %s to %s",
			ErrDateOutOfRange, today.Format("2006-01-02"), horizon.Format("2006-01-02"))
	}
	return start, nil
}

// buildSnowpack prefers a station observation and falls back to the
// gridded model depth from the fallback forecast.
func (s *reportService) buildSnowpack(station *types.SnowpackObservation, fallback *openmeteo.ForecastAPIResponse, tz string, start time.Time) *SnowpackSection {
	section := &SnowpackSection{Status: SectionUnavailable, GeneratedAt: s.now()}
	if station != nil {
		section.SnowpackObservation = station
		section.Source = SnowpackStation
		section.Status = SectionOK
		return section
	}
	if grid := gridSnowpack(fallback, tz, start); grid != nil {
		section.SnowpackObservation = grid
		section.Source = SnowpackGrid
		section.Status = SectionOK
	}
	return section
}

func (s *reportService) buildAlerts(resp *nws.AlertsResponse, err error, start time.Time) *AlertsSection {
	section := &AlertsSection{Alerts: []Alert{}, Status: SectionUnavailable, GeneratedAt: s.now()}
	if err != nil || resp == nil {
		return section
	}
	section.Status = SectionOK
	section.active = filterAlerts(resp.Features, start)
	for _, f := range section.active {
		section.Alerts = append(section.Alerts, Alert{
			Event:    f.Properties.Event,
			Severity: f.Properties.Severity,
			Headline: f.Properties.Headline,
			Onset:    f.Properties.Onset,
			Ends:     f.Properties.Ends,
		})
	}
	return section
}

func (s *reportService) buildAirQuality(resp *openmeteo.AirQualityAPIResponse, err error) *AirQualitySection {
	section := &AirQualitySection{Status: SectionUnavailable, GeneratedAt: s.now()}
	if err != nil || resp == nil {
		return section
	}
	section.Status = SectionOK
	section.USAqi = resp.Current.USAqi
	section.PM25 = resp.Current.PM25
	section.PM10 = resp.Current.PM10
	if section.USAqi != nil {
		section.Category = aqiCategory(*section.USAqi)
	}
	return section
}

// catalogUnavailableBulletin is the placeholder when even the zone catalog
// could not be fetched and no cascade could run.
func catalogUnavailableBulletin() *avalanche.Bulletin {
	return &avalanche.Bulletin{
		DangerLevel:    avalanche.DangerNoRating,
		RiskLabel:      avalanche.DangerNoRating.Label(),
		DangerUnknown:  true,
		CoverageStatus: avalanche.CoverageUnavailable,
		BottomLine:     "Avalanche zone data is temporarily unavailable; coverage for this location could not be determined.",
		Source:         avalanche.SourceOfficialSummary,
	}
}

func precipInches(p *types.Precipitation) *float64 {
	if p == nil {
		return nil
	}
	v := p.Inches
	return &v
}
