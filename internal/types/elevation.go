package types

const FeetToMeters = 0.3048

type Elevation struct {
	Feet   float64 `json:"feet"`
	Meters float64 `json:"meters"`
}

func NewElevationFromFeet(feet float64) Elevation {
	return Elevation{
		Feet:   feet,
		Meters: feet * FeetToMeters,
	}
}

func NewElevationFromMeters(meters float64) Elevation {
	return Elevation{
		Feet:   meters / FeetToMeters,
		Meters: meters,
	}
}
