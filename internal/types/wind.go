package types

var cardinals = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// CardinalDirection converts degrees to a 16-point compass label.
func CardinalDirection(degrees float64) string {
	index := int(degrees/22.5+0.5) % 16 // .5 for rounding
	if index < 0 {
		index += 16
	}
	return cardinals[index]
}
