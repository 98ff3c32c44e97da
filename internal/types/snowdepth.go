package types

// SnowpackObservation is a station or grid measurement of the standing
// snowpack, as opposed to forecast snowfall.
type SnowpackObservation struct {
	DepthInches *float64 `json:"depthInches"`
	SweInches   *float64 `json:"sweInches"` // snow-water equivalent
	StationName string   `json:"stationName,omitempty"`
	DistanceKm  float64  `json:"distanceKm,omitempty"`
	ElevationFt float64  `json:"elevationFt,omitempty"`
}

// HasMeasurement reports whether at least one of depth or SWE was observed.
func (s SnowpackObservation) HasMeasurement() bool {
	return s.DepthInches != nil || s.SweInches != nil
}
