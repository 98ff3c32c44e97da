package zones

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"

	"trailsafe/internal/providers/nac"
	"trailsafe/internal/types"
)

// MatchMode describes how a zone was matched to the point.
type MatchMode string

const (
	MatchPolygon MatchMode = "polygon"
	MatchNearest MatchMode = "nearest"
	MatchNone    MatchMode = "none"
)

// Match is the result of resolving a point against the catalog. Resolution
// is deterministic: the same point and catalog always produce the same match.
type Match struct {
	Feature            *nac.MapLayerFeature
	Mode               MatchMode
	FallbackDistanceKm float64
}

// Region is a named bounding box whose polygon coverage is known to be
// sparse; nearest-zone matching inside it is retried against a single
// issuing center with a wider distance cap.
type Region struct {
	Name     string
	CenterId string
	MinLat   float64
	MaxLat   float64
	MinLon   float64
	MaxLon   float64
	CapKm    float64
}

// Resolver maps points to catalog zones.
type Resolver struct {
	nearestCapKm   float64
	fallbackRegion Region
}

// easternSierra covers the east side of the Sierra Nevada, where the
// catalog polygons stop well short of terrain ESAC actually forecasts.
var easternSierra = Region{
	Name:     "Eastern Sierra",
	CenterId: "ESAC",
	MinLat:   36.5,
	MaxLat:   38.6,
	MinLon:   -120.0,
	MaxLon:   -117.5,
	CapKm:    90,
}

// NewResolver creates a resolver with the given generic nearest-zone cap
// and the region-specific cap for the Eastern Sierra fallback.
func NewResolver(nearestCapKm, sierraCapKm float64) *Resolver {
	region := easternSierra
	if sierraCapKm > 0 {
		region.CapKm = sierraCapKm
	}
	if nearestCapKm <= 0 {
		nearestCapKm = 40
	}
	// The regional cap widens the generic cap, never narrows it.
	if region.CapKm < nearestCapKm {
		region.CapKm = nearestCapKm
	}
	return &Resolver{
		nearestCapKm:   nearestCapKm,
		fallbackRegion: region,
	}
}

// Resolve finds the zone for a point: containment first, then the globally
// nearest zone within the generic cap, then the regional fallback.
func (r *Resolver) Resolve(coords types.Coords, catalog *nac.MapLayerResponse) Match {
	if catalog == nil {
		return Match{Mode: MatchNone}
	}

	point := orb.Point{coords.Longitude, coords.Latitude}

	// Containment: first hit in catalog order wins.
	for i := range catalog.Features {
		if contains(catalog.Features[i].Geometry, point) {
			return Match{Feature: &catalog.Features[i], Mode: MatchPolygon}
		}
	}

	// Nearest zone within the generic cap.
	if feature, distKm := nearest(catalog, point, ""); feature != nil && distKm <= r.nearestCapKm {
		return Match{Feature: feature, Mode: MatchNearest, FallbackDistanceKm: distKm}
	}

	// Regional fallback, restricted to the region's issuing center.
	if r.inFallbackRegion(coords) {
		if feature, distKm := nearest(catalog, point, r.fallbackRegion.CenterId); feature != nil && distKm <= r.fallbackRegion.CapKm {
			return Match{Feature: feature, Mode: MatchNearest, FallbackDistanceKm: distKm}
		}
	}

	return Match{Mode: MatchNone}
}

func (r *Resolver) inFallbackRegion(coords types.Coords) bool {
	reg := r.fallbackRegion
	return coords.Latitude >= reg.MinLat && coords.Latitude <= reg.MaxLat &&
		coords.Longitude >= reg.MinLon && coords.Longitude <= reg.MaxLon
}

// contains tests point-in-polygon for the supported geometry types.
// Features with missing or unexpected geometry are skipped.
func contains(geom orb.Geometry, point orb.Point) bool {
	switch g := geom.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, point)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, point)
	default:
		return false
	}
}

// nearest returns the feature with the minimum vertex distance to the
// point, optionally restricted to one issuing center, and that distance
// in kilometers.
func nearest(catalog *nac.MapLayerResponse, point orb.Point, centerId string) (*nac.MapLayerFeature, float64) {
	var best *nac.MapLayerFeature
	bestKm := math.Inf(1)

	for i := range catalog.Features {
		f := &catalog.Features[i]
		if centerId != "" && f.Properties.CenterId != centerId {
			continue
		}
		distKm := minVertexDistanceKm(f.Geometry, point)
		if distKm < bestKm {
			bestKm = distKm
			best = f
		}
	}
	return best, bestKm
}

func minVertexDistanceKm(geom orb.Geometry, point orb.Point) float64 {
	best := math.Inf(1)

	visit := func(ring orb.Ring) {
		for _, vertex := range ring {
			if d := geo.Distance(point, vertex) / 1000; d < best {
				best = d
			}
		}
	}

	switch g := geom.(type) {
	case orb.Polygon:
		for _, ring := range g {
			visit(ring)
		}
	case orb.MultiPolygon:
		for _, poly := range g {
			for _, ring := range poly {
				visit(ring)
			}
		}
	}
	return best
}
