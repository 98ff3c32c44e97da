package location

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"trailsafe/internal/providers/openmeteo"
	"trailsafe/internal/providers/usgs"
	"trailsafe/internal/timezone"
	"trailsafe/internal/types"
)

// ElevationProvider is the primary elevation source.
type ElevationProvider interface {
	GetElevationPoint(ctx context.Context, latitude, longitude float64) (*usgs.ElevationPointAPIResponse, error)
}

// FallbackElevationProvider backs up the primary; it covers the globe but
// at a coarser grid.
type FallbackElevationProvider interface {
	GetElevation(ctx context.Context, latitude, longitude float64) (*openmeteo.ElevationAPIResponse, error)
}

// Service resolves a raw coordinate into a trip objective: elevation anchor
// plus local timezone.
type Service interface {
	ResolveObjective(ctx context.Context, coords types.Coords) (*types.Objective, error)
}

type locationService struct {
	elevation         ElevationProvider
	fallbackElevation FallbackElevationProvider
	timezoneService   timezone.Service
	logger            *slog.Logger
}

func NewService(elevation ElevationProvider, fallbackElevation FallbackElevationProvider, timezoneService timezone.Service, logger *slog.Logger) Service {
	return &locationService{
		elevation:         elevation,
		fallbackElevation: fallbackElevation,
		timezoneService:   timezoneService,
		logger:            logger.With("component", "location-service"),
	}
}

// ResolveObjective looks up elevation and timezone in parallel. Elevation
// falls back to the secondary provider; a missing timezone is an error
// because the planned start time cannot be interpreted without it.
func (s *locationService) ResolveObjective(ctx context.Context, coords types.Coords) (*types.Objective, error) {
	if !coords.Valid() {
		return nil, fmt.Errorf("coordinates out of range: lat=%f, lon=%f", coords.Latitude, coords.Longitude)
	}

	objective := &types.Objective{Coordinates: coords}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		elevation, err := s.resolveElevation(gctx, coords)
		if err != nil {
			return err
		}
		objective.Elevation = elevation
		return nil
	})
	g.Go(func() error {
		tz, err := s.timezoneService.GetTimezone(coords.Latitude, coords.Longitude)
		if err != nil {
			return fmt.Errorf("failed to determine timezone: %w", err)
		}
		objective.Timezone = tz
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Debug("resolved objective",
		"latitude", coords.Latitude, "longitude", coords.Longitude,
		"elevation_ft", objective.Elevation.Feet, "timezone", objective.Timezone)
	return objective, nil
}

func (s *locationService) resolveElevation(ctx context.Context, coords types.Coords) (types.Elevation, error) {
	point, err := s.elevation.GetElevationPoint(ctx, coords.Latitude, coords.Longitude)
	if err == nil {
		return types.NewElevationFromFeet(point.Value), nil
	}
	s.logger.Warn("primary elevation lookup failed, trying fallback", "error", err)

	fallback, fbErr := s.fallbackElevation.GetElevation(ctx, coords.Latitude, coords.Longitude)
	if fbErr != nil {
		return types.Elevation{}, fmt.Errorf("failed to resolve elevation: %w", fbErr)
	}
	return types.NewElevationFromMeters(fallback.Elevation[0]), nil
}
