package snowpack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"trailsafe/internal/providers/snotel"
	"trailsafe/internal/types"
)

type mockProvider struct {
	stationCalls int
	stations     func() ([]snotel.StationMetadata, error)
	observations func(triplets []string) ([]snotel.StationData, error)
}

func (m *mockProvider) GetStations(_ context.Context) ([]snotel.StationMetadata, error) {
	m.stationCalls++
	return m.stations()
}

func (m *mockProvider) GetLatestObservations(_ context.Context, triplets []string) ([]snotel.StationData, error) {
	return m.observations(triplets)
}

func stationData(triplet string, depth, swe *float64) snotel.StationData {
	value := func(v *float64) string {
		if v == nil {
			return "null"
		}
		return fmt.Sprintf("%f", *v)
	}
	payload := fmt.Sprintf(`{
		"stationTriplet": %q,
		"data": [
			{"stationElement": {"elementCode": "SNWD"}, "values": [{"date": "2026-01-17", "value": %s}]},
			{"stationElement": {"elementCode": "WTEQ"}, "values": [{"date": "2026-01-17", "value": %s}]}
		]
	}`, triplet, value(depth), value(swe))

	var data snotel.StationData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		panic(err)
	}
	return data
}

func fptr(v float64) *float64 { return &v }

// Objective near Aspen; the near station is a few km away, the far one is
// across the state, outside the acceptance radius.
var (
	objCoords   = types.Coords{Latitude: 39.15, Longitude: -106.82}
	nearStation = snotel.StationMetadata{StationTriplet: "622:CO:SNTL", Name: "Independence Pass", Latitude: 39.07, Longitude: -106.61, ElevationFt: 10600}
	midStation  = snotel.StationMetadata{StationTriplet: "542:CO:SNTL", Name: "Ivanhoe", Latitude: 39.29, Longitude: -106.55, ElevationFt: 10400}
	farStation  = snotel.StationMetadata{StationTriplet: "322:CO:SNTL", Name: "Bison Lake", Latitude: 40.0, Longitude: -102.4, ElevationFt: 10880}
)

func newTestService(provider StationProvider) Service {
	return NewService(provider, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGetNearest_PicksClosestReportingStation(t *testing.T) {
	provider := &mockProvider{
		stations: func() ([]snotel.StationMetadata, error) {
			return []snotel.StationMetadata{farStation, midStation, nearStation}, nil
		},
		observations: func(triplets []string) ([]snotel.StationData, error) {
			return []snotel.StationData{
				stationData(nearStation.StationTriplet, fptr(34), fptr(8.2)),
				stationData(midStation.StationTriplet, fptr(40), fptr(9.9)),
			}, nil
		},
	}

	obs, err := newTestService(provider).GetNearest(context.Background(), objCoords)
	if err != nil {
		t.Fatalf("GetNearest: %v", err)
	}
	if obs.StationName != "Independence Pass" {
		t.Errorf("StationName = %q, want the closest station", obs.StationName)
	}
	if obs.DepthInches == nil || *obs.DepthInches != 34 {
		t.Errorf("DepthInches = %v, want 34", obs.DepthInches)
	}
	if obs.SweInches == nil || *obs.SweInches != 8.2 {
		t.Errorf("SweInches = %v, want 8.2", obs.SweInches)
	}
	if obs.DistanceKm <= 0 || obs.DistanceKm > maxStationKm {
		t.Errorf("DistanceKm = %f, want within (0, %f]", obs.DistanceKm, maxStationKm)
	}
}

func TestGetNearest_SkipsSilentStation(t *testing.T) {
	provider := &mockProvider{
		stations: func() ([]snotel.StationMetadata, error) {
			return []snotel.StationMetadata{nearStation, midStation}, nil
		},
		observations: func(triplets []string) ([]snotel.StationData, error) {
			return []snotel.StationData{
				stationData(nearStation.StationTriplet, nil, nil),
				stationData(midStation.StationTriplet, fptr(12), nil),
			}, nil
		},
	}

	obs, err := newTestService(provider).GetNearest(context.Background(), objCoords)
	if err != nil {
		t.Fatalf("GetNearest: %v", err)
	}
	if obs.StationName != "Ivanhoe" {
		t.Errorf("StationName = %q, want the next station over", obs.StationName)
	}
	if obs.SweInches != nil {
		t.Errorf("SweInches = %v, want nil when the station never reported it", obs.SweInches)
	}
}

func TestGetNearest_NoStationInRange(t *testing.T) {
	provider := &mockProvider{
		stations: func() ([]snotel.StationMetadata, error) {
			return []snotel.StationMetadata{farStation}, nil
		},
		observations: func([]string) ([]snotel.StationData, error) {
			t.Error("observations must not be fetched with no station in range")
			return nil, nil
		},
	}

	if _, err := newTestService(provider).GetNearest(context.Background(), objCoords); err == nil {
		t.Fatal("GetNearest should fail with no station in range")
	}
}

func TestGetNearest_StationListCached(t *testing.T) {
	provider := &mockProvider{
		observations: func(triplets []string) ([]snotel.StationData, error) {
			return []snotel.StationData{stationData(nearStation.StationTriplet, fptr(20), nil)}, nil
		},
	}
	provider.stations = func() ([]snotel.StationMetadata, error) {
		if provider.stationCalls > 1 {
			return nil, errors.New("station list fetched more than once within the TTL")
		}
		return []snotel.StationMetadata{nearStation}, nil
	}

	svc := newTestService(provider)
	for i := 0; i < 3; i++ {
		if _, err := svc.GetNearest(context.Background(), objCoords); err != nil {
			t.Fatalf("GetNearest call %d: %v", i, err)
		}
	}
	if provider.stationCalls != 1 {
		t.Errorf("stationCalls = %d, want 1 (cached)", provider.stationCalls)
	}
}
