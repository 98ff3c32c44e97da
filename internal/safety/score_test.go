package safety

import (
	"testing"
	"time"

	"trailsafe/internal/avalanche"
	"trailsafe/internal/providers/nws"
	"trailsafe/internal/weather"
)

var (
	testNow   = time.Date(2026, time.January, 17, 18, 0, 0, 0, time.UTC)
	testStart = time.Date(2026, time.January, 18, 8, 0, 0, 0, time.UTC)
)

func fptr(v float64) *float64 { return &v }
func bptr(b bool) *bool       { return &b }
func iptr(v int) *int         { return &v }

func freshWeather() *weather.Snapshot {
	issued := testNow.Add(-2 * time.Hour)
	snap := &weather.Snapshot{
		Status:       weather.StatusOK,
		TemperatureF: fptr(25),
		FeelsLikeF:   fptr(18),
		WindSpeedMph: fptr(10),
		WindGustMph:  fptr(15),
		PrecipPct:    fptr(10),
		Daylight:     bptr(true),
		IssuedAt:     &issued,
	}
	for i := 0; i < 6; i++ {
		snap.Trend = append(snap.Trend, weather.TrendPoint{Time: testStart.Add(time.Duration(i) * time.Hour)})
	}
	return snap
}

func bulletin(level avalanche.DangerLevel) *avalanche.Bulletin {
	published := testNow.Add(-4 * time.Hour)
	return &avalanche.Bulletin{
		Zone:           "Aspen",
		DangerLevel:    level,
		RiskLabel:      level.Label(),
		CoverageStatus: avalanche.CoverageReported,
		PublishedTime:  &published,
		Relevant:       true,
		Source:         avalanche.SourceDetailed,
	}
}

func baseInputs() Inputs {
	return Inputs{
		Weather:         freshWeather(),
		AlertsOK:        true,
		AirQualityOK:    true,
		FireDangerLevel: iptr(0),
		Start:           testStart,
		Now:             testNow,
	}
}

func TestEvaluate_AvalancheGroupCap(t *testing.T) {
	in := baseInputs()
	in.Bulletin = bulletin(avalanche.DangerExtreme) // raw impact 70

	got := Evaluate(in)

	gi := got.GroupImpacts[GroupAvalanche]
	if gi.Raw != 70 {
		t.Errorf("avalanche raw = %d, want 70", gi.Raw)
	}
	if gi.Capped != 55 || gi.Cap != 55 {
		t.Errorf("avalanche capped/cap = %d/%d, want 55/55", gi.Capped, gi.Cap)
	}
	if got.Score != 45 {
		t.Errorf("Score = %d, want 100 - 55 = 45", got.Score)
	}
	if got.PrimaryHazard != "Avalanche danger: Extreme" {
		t.Errorf("PrimaryHazard = %q", got.PrimaryHazard)
	}
}

func TestEvaluate_NoHazards(t *testing.T) {
	got := Evaluate(baseInputs())

	if got.Score != 100 {
		t.Errorf("Score = %d, want 100", got.Score)
	}
	if got.PrimaryHazard != "" {
		t.Errorf("PrimaryHazard = %q, want empty", got.PrimaryHazard)
	}
	if got.Confidence != 100 {
		t.Errorf("Confidence = %d, want 100 with all feeds fresh", got.Confidence)
	}
	for _, f := range got.Factors {
		if f.Impact <= 0 {
			t.Errorf("factor %q emitted at impact %d", f.Label, f.Impact)
		}
	}
}

func TestEvaluate_FactorsSortedAndTieBrokenByEncounterOrder(t *testing.T) {
	in := baseInputs()
	in.Bulletin = bulletin(avalanche.DangerConsiderable) // 35
	in.Weather.WindGustMph = fptr(40)                    // 12
	in.Weather.FeelsLikeF = fptr(-15)                    // 14

	got := Evaluate(in)

	if got.PrimaryHazard != "Avalanche danger: Considerable" {
		t.Fatalf("PrimaryHazard = %q", got.PrimaryHazard)
	}
	for i := 1; i < len(got.Factors); i++ {
		if got.Factors[i].Impact > got.Factors[i-1].Impact {
			t.Fatalf("factors not sorted desc: %+v", got.Factors)
		}
	}
}

func TestEvaluate_AlertsCountAgainstAlertsCap(t *testing.T) {
	in := baseInputs()
	var alerts []nws.AlertFeature
	for i := 0; i < 3; i++ {
		var alert nws.AlertFeature
		alert.Properties.Event = "Winter Storm Warning"
		alert.Properties.Severity = "Severe"
		alerts = append(alerts, alert)
	}
	in.Alerts = alerts // raw 30 over a cap of 24

	got := Evaluate(in)

	gi := got.GroupImpacts[GroupAlerts]
	if gi.Raw != 30 || gi.Capped != 24 {
		t.Errorf("alerts raw/capped = %d/%d, want 30/24", gi.Raw, gi.Capped)
	}
	if got.Score != 100-24 {
		t.Errorf("Score = %d, want %d", got.Score, 100-24)
	}
}

func TestEvaluate_ConfidenceFloor(t *testing.T) {
	published := testNow.Add(-100 * time.Hour)
	in := Inputs{
		Weather: weather.Unavailable(testNow),
		Bulletin: &avalanche.Bulletin{
			DangerUnknown:  true,
			CoverageStatus: avalanche.CoverageUnavailable,
			PublishedTime:  &published,
			Relevant:       true,
		},
		AlertsOK:     false,
		AirQualityOK: false,
		Start:        testStart,
		Now:          testNow,
	}

	got := Evaluate(in)

	if got.Confidence != 20 {
		t.Errorf("Confidence = %d, want the floor 20", got.Confidence)
	}
	if len(got.ConfidenceReasons) < 4 {
		t.Errorf("ConfidenceReasons = %v, want one per penalty", got.ConfidenceReasons)
	}
}

func TestEvaluate_StaleWeatherPenalties(t *testing.T) {
	tests := []struct {
		name     string
		age      time.Duration
		expected int
	}{
		{"fresh", 2 * time.Hour, 100},
		{"over 6h", 8 * time.Hour, 92},
		{"over 10h", 12 * time.Hour, 85},
		{"over 18h", 24 * time.Hour, 75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInputs()
			issued := testNow.Add(-tt.age)
			in.Weather.IssuedAt = &issued

			if got := Evaluate(in); got.Confidence != tt.expected {
				t.Errorf("Confidence = %d, want %d", got.Confidence, tt.expected)
			}
		})
	}
}

func TestEvaluate_ScoreNeverNegative(t *testing.T) {
	in := baseInputs()
	in.Bulletin = bulletin(avalanche.DangerExtreme)
	in.Weather.WindGustMph = fptr(60)
	in.Weather.FeelsLikeF = fptr(-20)
	in.Weather.Daylight = bptr(false)
	var alert nws.AlertFeature
	alert.Properties.Event = "Blizzard Warning"
	alert.Properties.Severity = "Extreme"
	in.Alerts = []nws.AlertFeature{alert, alert, alert}
	in.AirQualityAqi = fptr(250)
	in.FireDangerLevel = iptr(3)

	got := Evaluate(in)

	if got.Score < 0 || got.Score > 100 {
		t.Errorf("Score = %d, want within [0, 100]", got.Score)
	}
}
