package snotel

// StationMetadata describes one SNOTEL station from the AWDB station list.
type StationMetadata struct {
	StationTriplet string  `json:"stationTriplet"`
	Name           string  `json:"name"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	ElevationFt    float64 `json:"elevation"`
}

// StationData is one station's observation series from the AWDB data
// endpoint. Element codes: SNWD = snow depth (in), WTEQ = snow-water
// equivalent (in).
type StationData struct {
	StationTriplet string `json:"stationTriplet"`
	Data           []struct {
		StationElement struct {
			ElementCode string `json:"elementCode"`
		} `json:"stationElement"`
		Values []struct {
			Date  string   `json:"date"`
			Value *float64 `json:"value"`
		} `json:"values"`
	} `json:"data"`
}

// LatestValue returns the most recent non-null observation for the element
// code, or nil when the station never reported it.
func (d *StationData) LatestValue(elementCode string) *float64 {
	for _, series := range d.Data {
		if series.StationElement.ElementCode != elementCode {
			continue
		}
		for i := len(series.Values) - 1; i >= 0; i-- {
			if series.Values[i].Value != nil {
				return series.Values[i].Value
			}
		}
	}
	return nil
}
