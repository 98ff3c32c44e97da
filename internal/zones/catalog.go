// Package zones resolves an arbitrary coordinate to a hazard-forecast zone
// from the avalanche.org polygon catalog.
package zones

import (
	"context"
	"log/slog"
	"time"

	"trailsafe/internal/cache"
	"trailsafe/internal/providers/nac"
)

// MapLayerProvider fetches the catalog of forecast-zone polygons.
type MapLayerProvider interface {
	GetMapLayer(ctx context.Context) (*nac.MapLayerResponse, error)
}

// Catalog is the process-wide TTL-cached zone catalog. A failed refresh
// serves the last good catalog; requests never see a refresh error once a
// catalog has been fetched.
type Catalog struct {
	cache  *cache.TTL[*nac.MapLayerResponse]
	logger *slog.Logger
}

// NewCatalog creates a catalog cache over the provider.
func NewCatalog(provider MapLayerProvider, ttl time.Duration, logger *slog.Logger, opts ...cache.Option[*nac.MapLayerResponse]) *Catalog {
	return &Catalog{
		cache:  cache.New(ttl, provider.GetMapLayer, opts...),
		logger: logger.With("component", "zone-catalog"),
	}
}

// Get returns the current catalog, refreshing it when expired.
func (c *Catalog) Get(ctx context.Context) (*nac.MapLayerResponse, error) {
	catalog, stale, err := c.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	if stale {
		c.logger.Warn("catalog refresh failed, serving last good catalog",
			"fetched_at", c.cache.FetchedAt(),
		)
	}
	return catalog, nil
}
