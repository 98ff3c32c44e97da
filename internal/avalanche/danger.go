package avalanche

// Overall collapses per-elevation-band ratings into one overall rating.
//
// The default rule is the plain maximum of the three bands, matching the
// avalanche-education convention of never downgrading the worst band. With
// almostWorstCase enabled, a single outlier band is stepped down one level:
// when exactly one band sits at the maximum and the spread between max and
// min is at least two levels, the overall becomes max-1 (floored at Low).
// The two rules must never be mixed within one deployment; the flag is set
// once from configuration.
func Overall(bands *ElevationBands, almostWorstCase bool) DangerLevel {
	if bands == nil {
		return DangerNoRating
	}

	levels := [3]DangerLevel{bands.Below.Level, bands.At.Level, bands.Above.Level}
	max, min := levels[0], levels[0]
	atMax := 0
	for _, l := range levels {
		if l > max {
			max = l
		}
		if l < min {
			min = l
		}
	}
	for _, l := range levels {
		if l == max {
			atMax++
		}
	}

	if almostWorstCase && atMax == 1 && max-min >= 2 {
		if max-1 < DangerLow {
			return DangerLow
		}
		return max - 1
	}
	return max
}
