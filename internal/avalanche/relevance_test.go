package avalanche

import (
	"strings"
	"testing"
	"time"

	"trailsafe/internal/types"
)

func floatPtr(v float64) *float64 { return &v }

func julyStart() time.Time {
	return time.Date(2026, time.July, 18, 8, 0, 0, 0, time.UTC)
}

func januaryStart() time.Time {
	return time.Date(2026, time.January, 18, 8, 0, 0, 0, time.UTC)
}

func TestRelevance(t *testing.T) {
	tests := []struct {
		name       string
		in         RelevanceInput
		want       bool
		wantReason string
	}{
		{
			"expired bulletin is always relevant",
			RelevanceInput{Coverage: CoverageExpired, Start: julyStart()},
			true, "expired",
		},
		{
			"current official coverage is always relevant",
			RelevanceInput{Coverage: CoverageReported, Start: julyStart()},
			true, "official",
		},
		{
			"expected snowfall",
			RelevanceInput{Coverage: CoverageNoCenter, SnowExpected: true, Start: julyStart()},
			true, "wintry",
		},
		{
			"freezing temperature",
			RelevanceInput{Coverage: CoverageNoCenter, TemperatureF: floatPtr(28), Start: julyStart()},
			true, "wintry",
		},
		{
			"material snowpack",
			RelevanceInput{
				Coverage: CoverageNoActiveForecast,
				Snowpack: &types.SnowpackObservation{DepthInches: floatPtr(14), SweInches: floatPtr(3.2)},
				Start:    julyStart(),
			},
			true, "material",
		},
		{
			"measurable snowpack",
			RelevanceInput{
				Coverage: CoverageNoActiveForecast,
				Snowpack: &types.SnowpackObservation{DepthInches: floatPtr(3)},
				Start:    julyStart(),
			},
			true, "measurable",
		},
		{
			"bare snowpack out of season",
			RelevanceInput{
				Coverage:    CoverageNoActiveForecast,
				Snowpack:    &types.SnowpackObservation{DepthInches: floatPtr(0), SweInches: floatPtr(0)},
				ElevationFt: 9200,
				Start:       julyStart(),
			},
			false, "bare",
		},
		{
			"high elevation in winter with no official bulletin",
			RelevanceInput{Coverage: CoverageNoCenter, ElevationFt: 12000, Start: januaryStart()},
			true, "high-elevation",
		},
		{
			"high elevation in shoulder season",
			RelevanceInput{Coverage: CoverageNoCenter, ElevationFt: 9000, Start: time.Date(2026, time.April, 20, 8, 0, 0, 0, time.UTC)},
			true, "high-elevation",
		},
		{
			"mid elevation at high latitude in winter",
			RelevanceInput{Coverage: CoverageNoCenter, ElevationFt: 7000, LatitudeDeg: 47.5, Start: januaryStart()},
			true, "latitude",
		},
		{
			"mid elevation at low latitude in winter",
			RelevanceInput{Coverage: CoverageNoCenter, ElevationFt: 7000, LatitudeDeg: 35.0, Start: januaryStart()},
			false, "no wintry",
		},
		{
			"low elevation summer",
			RelevanceInput{Coverage: CoverageNoCenter, ElevationFt: 2400, TemperatureF: floatPtr(72), Start: julyStart()},
			false, "no wintry",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := Relevance(tt.in)
			if got != tt.want {
				t.Errorf("Relevance() = %v, want %v (reason %q)", got, tt.want, reason)
			}
			if reason == "" {
				t.Error("Relevance() returned an empty reason")
			}
			if !strings.Contains(strings.ToLower(reason), tt.wantReason) {
				t.Errorf("reason = %q, want it to mention %q", reason, tt.wantReason)
			}
		})
	}
}
