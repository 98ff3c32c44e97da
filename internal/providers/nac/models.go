package nac

import (
	"encoding/json"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// MapLayerResponse is the GeoJSON FeatureCollection from the avalanche.org
// map-layer endpoint: one feature per forecast zone.
type MapLayerResponse struct {
	Type     string            `json:"type"`
	Features []MapLayerFeature `json:"features"`
}

// MapLayerFeature is one forecast-zone polygon with its properties.
// Geometry is nil when the feature's geometry failed to parse; resolvers
// skip such features rather than failing the whole catalog.
type MapLayerFeature struct {
	Id         int
	Properties MapLayerProperties
	Geometry   orb.Geometry
}

// MapLayerProperties carries the catalog-level zone metadata.
type MapLayerProperties struct {
	Name         string `json:"name"`
	CenterId     string `json:"center_id"`
	DangerLevel  int    `json:"danger_level"`
	Danger       string `json:"danger"`
	TravelAdvice string `json:"travel_advice"`
	Link         string `json:"link"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	OffSeason    bool   `json:"off_season"`
}

func (f *MapLayerFeature) UnmarshalJSON(data []byte) error {
	var raw struct {
		Id         int                `json:"id"`
		Properties MapLayerProperties `json:"properties"`
		Geometry   json.RawMessage    `json:"geometry"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.Id = raw.Id
	f.Properties = raw.Properties

	// Bad geometry on a single zone must not sink the catalog.
	var geom geojson.Geometry
	if err := json.Unmarshal(raw.Geometry, &geom); err == nil {
		f.Geometry = geom.Geometry()
	}
	return nil
}
