package types

const InchesToMm = 25.4

type Precipitation struct {
	Inches float64 `json:"inches"`
	Mm     float64 `json:"mm"`
}

func NewPrecipitationFromInches(inches float64) Precipitation {
	return Precipitation{
		Inches: inches,
		Mm:     inches * InchesToMm,
	}
}
