package avalanche

import "testing"

func bandsOf(below, at, above DangerLevel) *ElevationBands {
	return &ElevationBands{
		Below: newBandRating(below),
		At:    newBandRating(at),
		Above: newBandRating(above),
	}
}

func TestOverall_MaxRule(t *testing.T) {
	tests := []struct {
		name  string
		bands *ElevationBands
		want  DangerLevel
	}{
		{"nil bands", nil, DangerNoRating},
		{"uniform", bandsOf(2, 2, 2), DangerModerate},
		{"single outlier keeps max", bandsOf(1, 1, 4), DangerHigh},
		{"max in middle band", bandsOf(2, 3, 2), DangerConsiderable},
		{"all no rating", bandsOf(0, 0, 0), DangerNoRating},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overall(tt.bands, false); got != tt.want {
				t.Errorf("Overall() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOverall_AlmostWorstCase(t *testing.T) {
	tests := []struct {
		name  string
		bands *ElevationBands
		want  DangerLevel
	}{
		{"single outlier steps down", bandsOf(1, 1, 4), DangerConsiderable},
		{"two bands at max keep max", bandsOf(1, 5, 5), DangerExtreme},
		{"narrow spread keeps max", bandsOf(3, 3, 4), DangerHigh},
		{"uniform unchanged", bandsOf(2, 2, 2), DangerModerate},
		{"floors at low", bandsOf(0, 0, 2), DangerLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overall(tt.bands, true); got != tt.want {
				t.Errorf("Overall() = %d, want %d", got, tt.want)
			}
		})
	}
}
