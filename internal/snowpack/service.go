// Package snowpack reads standing-snow observations from SNOTEL stations,
// with the station list held in a process-wide TTL cache.
package snowpack

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"trailsafe/internal/cache"
	"trailsafe/internal/providers/snotel"
	"trailsafe/internal/types"
)

// StationProvider is the slice of the AWDB client the service needs.
type StationProvider interface {
	GetStations(ctx context.Context) ([]snotel.StationMetadata, error)
	GetLatestObservations(ctx context.Context, stationTriplets []string) ([]snotel.StationData, error)
}

// Service finds the nearest station observation for an objective.
type Service interface {
	GetNearest(ctx context.Context, coords types.Coords) (*types.SnowpackObservation, error)
}

const (
	// maxStationKm bounds how far away a station may be and still say
	// something about the objective's snowpack.
	maxStationKm = 50.0

	// stationCandidates is how many nearby stations are queried; the
	// nearest one that actually reported wins.
	stationCandidates = 3
)

type snowpackService struct {
	provider StationProvider
	stations *cache.TTL[[]snotel.StationMetadata]
	logger   *slog.Logger
}

func NewService(provider StationProvider, stationTTL time.Duration, logger *slog.Logger, opts ...cache.Option[[]snotel.StationMetadata]) Service {
	return &snowpackService{
		provider: provider,
		stations: cache.New(stationTTL, provider.GetStations, opts...),
		logger:   logger.With("component", "snowpack-service"),
	}
}

// GetNearest returns the closest station observation with at least one of
// depth or SWE reported, or an error when no station in range answered.
func (s *snowpackService) GetNearest(ctx context.Context, coords types.Coords) (*types.SnowpackObservation, error) {
	stations, stale, err := s.stations.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load station metadata: %w", err)
	}
	if stale {
		s.logger.Warn("station list refresh failed, serving last good list",
			"fetched_at", s.stations.FetchedAt())
	}

	candidates := nearestStations(stations, coords)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no snowpack station within %.0f km", maxStationKm)
	}

	triplets := make([]string, len(candidates))
	for i, c := range candidates {
		triplets[i] = c.station.StationTriplet
	}
	observations, err := s.provider.GetLatestObservations(ctx, triplets)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch station observations: %w", err)
	}

	byTriplet := make(map[string]*snotel.StationData, len(observations))
	for i := range observations {
		byTriplet[observations[i].StationTriplet] = &observations[i]
	}

	// Candidates are already in distance order; take the first that
	// actually reported.
	for _, c := range candidates {
		data, ok := byTriplet[c.station.StationTriplet]
		if !ok {
			continue
		}
		depth := data.LatestValue("SNWD")
		swe := data.LatestValue("WTEQ")
		if depth == nil && swe == nil {
			continue
		}
		obs := &types.SnowpackObservation{
			DepthInches: depth,
			SweInches:   swe,
			StationName: c.station.Name,
			DistanceKm:  c.distanceKm,
			ElevationFt: c.station.ElevationFt,
		}
		s.logger.Debug("nearest snowpack observation",
			"station", c.station.Name, "distance_km", c.distanceKm,
			"depth", depth, "swe", swe)
		return obs, nil
	}
	return nil, fmt.Errorf("no nearby station reported snowpack data")
}

type stationCandidate struct {
	station    snotel.StationMetadata
	distanceKm float64
}

func nearestStations(stations []snotel.StationMetadata, coords types.Coords) []stationCandidate {
	point := orb.Point{coords.Longitude, coords.Latitude}

	var candidates []stationCandidate
	for _, st := range stations {
		distKm := geo.Distance(point, orb.Point{st.Longitude, st.Latitude}) / 1000
		if distKm > maxStationKm {
			continue
		}
		candidates = append(candidates, stationCandidate{station: st, distanceKm: distKm})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].distanceKm < candidates[j].distanceKm })
	if len(candidates) > stationCandidates {
		candidates = candidates[:stationCandidates]
	}
	return candidates
}
