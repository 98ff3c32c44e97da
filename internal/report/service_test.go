package report

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"

	"trailsafe/internal/avalanche"
	"trailsafe/internal/config"
	"trailsafe/internal/providers/nac"
	"trailsafe/internal/providers/nws"
	"trailsafe/internal/providers/openmeteo"
	"trailsafe/internal/types"
	"trailsafe/internal/weather"
	"trailsafe/internal/zones"
)

var (
	reportNow   = time.Date(2026, time.January, 17, 18, 0, 0, 0, time.UTC)
	reportStart = time.Date(2026, time.January, 18, 8, 0, 0, 0, time.UTC)
)

var errProviderDown = errors.New("provider down")

type mockLocation struct {
	resolveFn func(ctx context.Context, coords types.Coords) (*types.Objective, error)
}

func (m *mockLocation) ResolveObjective(ctx context.Context, coords types.Coords) (*types.Objective, error) {
	if m.resolveFn == nil {
		return &types.Objective{
			Coordinates: coords,
			Elevation:   types.NewElevationFromFeet(10800),
			Timezone:    "UTC",
		}, nil
	}
	return m.resolveFn(ctx, coords)
}

type mockWeather struct {
	snapshotFn func(ctx context.Context, objective types.Objective, start time.Time, windowHours int) *weather.Result
}

func (m *mockWeather) GetSnapshot(ctx context.Context, objective types.Objective, start time.Time, windowHours int) *weather.Result {
	return m.snapshotFn(ctx, objective, start, windowHours)
}

type mockAvalanche struct {
	bulletinFn func(ctx context.Context, coords types.Coords, match zones.Match, start time.Time) *avalanche.Bulletin
}

func (m *mockAvalanche) GetBulletin(ctx context.Context, coords types.Coords, match zones.Match, start time.Time) *avalanche.Bulletin {
	return m.bulletinFn(ctx, coords, match, start)
}

type mockSnowpack struct {
	nearestFn func(ctx context.Context, coords types.Coords) (*types.SnowpackObservation, error)
}

func (m *mockSnowpack) GetNearest(ctx context.Context, coords types.Coords) (*types.SnowpackObservation, error) {
	return m.nearestFn(ctx, coords)
}

type mockCatalog struct {
	getFn func(ctx context.Context) (*nac.MapLayerResponse, error)
}

func (m *mockCatalog) Get(ctx context.Context) (*nac.MapLayerResponse, error) {
	return m.getFn(ctx)
}

type mockAlerts struct {
	alertsFn func(ctx context.Context, latitude, longitude float64) (*nws.AlertsResponse, error)
}

func (m *mockAlerts) GetActiveAlerts(ctx context.Context, latitude, longitude float64) (*nws.AlertsResponse, error) {
	return m.alertsFn(ctx, latitude, longitude)
}

type mockAirQuality struct {
	aqFn func(ctx context.Context, latitude, longitude float64) (*openmeteo.AirQualityAPIResponse, error)
}

func (m *mockAirQuality) GetAirQuality(ctx context.Context, latitude, longitude float64) (*openmeteo.AirQualityAPIResponse, error) {
	return m.aqFn(ctx, latitude, longitude)
}

// aspenCatalog has a single polygon zone containing the test coordinate.
func aspenCatalog() *nac.MapLayerResponse {
	return &nac.MapLayerResponse{
		Type: "FeatureCollection",
		Features: []nac.MapLayerFeature{{
			Id: 419,
			Properties: nac.MapLayerProperties{
				Name:     "Aspen",
				CenterId: "CAIC",
				Link:     "https://avalanche.state.co.us/?zone=aspen",
			},
			Geometry: orb.Polygon{orb.Ring{
				{-107.2, 38.9}, {-106.4, 38.9}, {-106.4, 39.5}, {-107.2, 39.5}, {-107.2, 38.9},
			}},
		}},
	}
}

func okSnapshot(now time.Time) *weather.Snapshot {
	f := func(v float64) *float64 { return &v }
	issued := now.Add(-2 * time.Hour)
	snap := &weather.Snapshot{
		Status:       weather.StatusOK,
		Description:  "Partly cloudy",
		TemperatureF: f(22),
		FeelsLikeF:   f(14),
		HumidityPct:  f(60),
		PrecipPct:    f(20),
		WindSpeedMph: f(12),
		WindGustMph:  f(18),
		WindCardinal: "NW",
		IssuedAt:     &issued,
		FetchedAt:    now,
	}
	for i := 0; i < 6; i++ {
		snap.Trend = append(snap.Trend, weather.TrendPoint{Time: reportStart.Add(time.Duration(i) * time.Hour)})
	}
	return snap
}

func reportedBulletin() *avalanche.Bulletin {
	published := reportNow.Add(-4 * time.Hour)
	return &avalanche.Bulletin{
		Center:         "Colorado Avalanche Information Center",
		CenterId:       "CAIC",
		Zone:           "Aspen",
		DangerLevel:    avalanche.DangerModerate,
		RiskLabel:      avalanche.DangerModerate.Label(),
		CoverageStatus: avalanche.CoverageReported,
		BottomLine:     strings.Repeat("Watch for wind slabs near ridgelines. ", 5),
		PublishedTime:  &published,
		Source:         avalanche.SourceDetailed,
	}
}

type serviceOverrides func(*Deps)

func newTestService(t *testing.T, overrides ...serviceOverrides) Service {
	t.Helper()
	depth := 24.0
	deps := Deps{
		Location: &mockLocation{},
		Weather: &mockWeather{snapshotFn: func(ctx context.Context, objective types.Objective, start time.Time, windowHours int) *weather.Result {
			return &weather.Result{
				Snapshot: okSnapshot(reportNow),
				Fallback: forecastWithHistory(reportStart, 72, 12, 0, 0.1),
			}
		}},
		Avalanche: &mockAvalanche{bulletinFn: func(ctx context.Context, coords types.Coords, match zones.Match, start time.Time) *avalanche.Bulletin {
			return reportedBulletin()
		}},
		Snowpack: &mockSnowpack{nearestFn: func(ctx context.Context, coords types.Coords) (*types.SnowpackObservation, error) {
			return &types.SnowpackObservation{DepthInches: &depth, StationName: "Independence Pass"}, nil
		}},
		Catalog: &mockCatalog{getFn: func(ctx context.Context) (*nac.MapLayerResponse, error) {
			return aspenCatalog(), nil
		}},
		Resolver: zones.NewResolver(40, 90),
		Alerts: &mockAlerts{alertsFn: func(ctx context.Context, latitude, longitude float64) (*nws.AlertsResponse, error) {
			return &nws.AlertsResponse{}, nil
		}},
		AirQuality: &mockAirQuality{aqFn: func(ctx context.Context, latitude, longitude float64) (*openmeteo.AirQualityAPIResponse, error) {
			resp := &openmeteo.AirQualityAPIResponse{}
			aqi := 40.0
			resp.Current.USAqi = &aqi
			return resp, nil
		}},
	}
	for _, o := range overrides {
		o(&deps)
	}
	cfg := &config.Config{App: config.AppConfig{ForecastDays: 7, TravelWindowHours: 6}}
	return NewServiceWithClock(deps, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), func() time.Time { return reportNow })
}

func winterRequest() Request {
	return Request{Latitude: 39.18, Longitude: -106.82, Date: "2026-01-18", StartTime: "08:00"}
}

func TestBuildReport_FullyAvailable(t *testing.T) {
	svc := newTestService(t)

	report, err := svc.BuildReport(context.Background(), winterRequest())
	if err != nil {
		t.Fatalf("BuildReport returned error: %v", err)
	}

	if report.PartialData {
		t.Errorf("PartialData = true with all providers up, warning %q", report.APIWarning)
	}
	if report.Request.ZoneMatchMode != zones.MatchPolygon {
		t.Errorf("ZoneMatchMode = %q, want polygon", report.Request.ZoneMatchMode)
	}
	if !report.Request.Start.Equal(reportStart) {
		t.Errorf("Start = %v, want %v", report.Request.Start, reportStart)
	}
	if report.Weather.Status != weather.StatusOK {
		t.Errorf("weather status = %q, want ok", report.Weather.Status)
	}
	if report.Avalanche.CoverageStatus != avalanche.CoverageReported {
		t.Errorf("coverageStatus = %q, want reported", report.Avalanche.CoverageStatus)
	}
	if !report.Avalanche.Relevant || report.Avalanche.RelevanceReason == "" {
		t.Errorf("reported coverage must be relevant with a reason, got %v %q",
			report.Avalanche.Relevant, report.Avalanche.RelevanceReason)
	}
	if report.Safety.Score.Score < 0 || report.Safety.Score.Score > 100 {
		t.Errorf("score = %d, want within [0, 100]", report.Safety.Score.Score)
	}
	if report.Snowpack.Source != SnowpackStation {
		t.Errorf("snowpack source = %q, want station", report.Snowpack.Source)
	}
	if report.Rainfall.Status != SectionOK || report.Solar.Status != SectionOK {
		t.Errorf("rainfall/solar should be ok: %q / %q", report.Rainfall.Status, report.Solar.Status)
	}
	if report.Terrain.Label == "" {
		t.Error("terrain label missing")
	}
}

func TestBuildReport_AllWeatherDown(t *testing.T) {
	svc := newTestService(t, func(d *Deps) {
		d.Weather = &mockWeather{snapshotFn: func(ctx context.Context, objective types.Objective, start time.Time, windowHours int) *weather.Result {
			return &weather.Result{Snapshot: weather.Unavailable(reportNow)}
		}}
	})

	report, err := svc.BuildReport(context.Background(), winterRequest())
	if err != nil {
		t.Fatalf("degraded upstreams must not fail the report: %v", err)
	}

	if !report.PartialData {
		t.Error("PartialData = false, want true")
	}
	if report.Weather.Description != "Weather data unavailable" {
		t.Errorf("weather description = %q", report.Weather.Description)
	}
	if report.Weather.TemperatureF != nil || report.Weather.WindGustMph != nil {
		t.Error("unavailable snapshot must keep numeric fields nil")
	}
	if report.Rainfall.Status != SectionUnavailable || report.Solar.Status != SectionUnavailable {
		t.Error("rainfall and solar depend on the fallback forecast and should be unavailable")
	}
	if report.Safety == nil || report.Safety.Confidence >= 100 {
		t.Errorf("missing weather must cost confidence, got %+v", report.Safety)
	}
}

func TestBuildReport_InvalidCoordinates(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.BuildReport(context.Background(), Request{Latitude: 95, Longitude: -106.82})
	if !errors.Is(err, ErrInvalidCoordinates) {
		t.Fatalf("error = %v, want ErrInvalidCoordinates", err)
	}
}

func TestBuildReport_MalformedDate(t *testing.T) {
	svc := newTestService(t)

	req := winterRequest()
	req.Date = "01/18/2026"
	_, err := svc.BuildReport(context.Background(), req)
	if !errors.Is(err, ErrMalformedDate) {
		t.Fatalf("error = %v, want ErrMalformedDate", err)
	}
}

func TestBuildReport_DateBeyondHorizon(t *testing.T) {
	svc := newTestService(t)

	req := winterRequest()
	req.Date = "2026-02-10"
	_, err := svc.BuildReport(context.Background(), req)
	if !errors.Is(err, ErrDateOutOfRange) {
		t.Fatalf("error = %v, want ErrDateOutOfRange", err)
	}
	if !strings.Contains(err.Error(), "available range") {
		t.Errorf("error should name the available range, got %q", err.Error())
	}
}

func TestBuildReport_CatalogDown(t *testing.T) {
	svc := newTestService(t, func(d *Deps) {
		d.Catalog = &mockCatalog{getFn: func(ctx context.Context) (*nac.MapLayerResponse, error) {
			return nil, errProviderDown
		}}
	})

	report, err := svc.BuildReport(context.Background(), winterRequest())
	if err != nil {
		t.Fatalf("catalog failure must not fail the report: %v", err)
	}

	if !report.PartialData {
		t.Error("PartialData = false, want true")
	}
	if report.Avalanche.CoverageStatus != avalanche.CoverageUnavailable {
		t.Errorf("coverageStatus = %q, want temporarily_unavailable", report.Avalanche.CoverageStatus)
	}
	if !report.Avalanche.DangerUnknown {
		t.Error("placeholder bulletin must have DangerUnknown set")
	}
}

func TestBuildReport_SnowpackGridFallback(t *testing.T) {
	svc := newTestService(t, func(d *Deps) {
		d.Snowpack = &mockSnowpack{nearestFn: func(ctx context.Context, coords types.Coords) (*types.SnowpackObservation, error) {
			return nil, errProviderDown
		}}
	})

	report, err := svc.BuildReport(context.Background(), winterRequest())
	if err != nil {
		t.Fatalf("BuildReport returned error: %v", err)
	}

	if report.Snowpack.Status != SectionOK || report.Snowpack.Source != SnowpackGrid {
		t.Fatalf("snowpack = %q/%q, want ok/grid", report.Snowpack.Status, report.Snowpack.Source)
	}
	if report.Snowpack.DepthInches == nil || *report.Snowpack.DepthInches < 11 {
		t.Errorf("grid depth = %v, want ~11.8 in from 0.3 m", report.Snowpack.DepthInches)
	}
}

func TestBuildReport_AlertAtStartCountsAgainstScore(t *testing.T) {
	svc := newTestService(t, func(d *Deps) {
		d.Alerts = &mockAlerts{alertsFn: func(ctx context.Context, latitude, longitude float64) (*nws.AlertsResponse, error) {
			contained := alertWindow(reportStart.Add(-time.Hour), reportStart.Add(4*time.Hour))
			contained.Properties.Severity = "Severe"
			missed := alertWindow(reportStart.Add(10*time.Hour), reportStart.Add(14*time.Hour))
			return &nws.AlertsResponse{Features: []nws.AlertFeature{contained, missed}}, nil
		}}
	})

	report, err := svc.BuildReport(context.Background(), winterRequest())
	if err != nil {
		t.Fatalf("BuildReport returned error: %v", err)
	}

	if len(report.Alerts.Alerts) != 1 {
		t.Fatalf("alerts = %d, want 1 (only the window containing the start)", len(report.Alerts.Alerts))
	}
	found := false
	for _, f := range report.Safety.Factors {
		if f.Group == "alerts" {
			found = true
		}
	}
	if !found {
		t.Error("an active alert should surface as a safety factor")
	}
}
