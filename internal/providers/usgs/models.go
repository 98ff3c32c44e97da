package usgs

// ElevationPointAPIResponse is the USGS EPQS point query response.
type ElevationPointAPIResponse struct {
	Value float64 `json:"value"` // elevation in the requested units
}
