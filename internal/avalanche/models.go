package avalanche

import "time"

// DangerLevel is the North American avalanche danger scale (0 = no rating).
type DangerLevel int

const (
	DangerNoRating DangerLevel = iota
	DangerLow
	DangerModerate
	DangerConsiderable
	DangerHigh
	DangerExtreme
)

func (d DangerLevel) Label() string {
	switch d {
	case DangerLow:
		return "Low"
	case DangerModerate:
		return "Moderate"
	case DangerConsiderable:
		return "Considerable"
	case DangerHigh:
		return "High"
	case DangerExtreme:
		return "Extreme"
	default:
		return "No Rating"
	}
}

// ClampDanger maps an upstream integer onto the 0-5 scale. Centers encode
// "no rating" as -1 or 0 depending on the feed.
func ClampDanger(v int) DangerLevel {
	if v < 0 {
		return DangerNoRating
	}
	if v > int(DangerExtreme) {
		return DangerExtreme
	}
	return DangerLevel(v)
}

// CoverageStatus is the freshness/availability state of a bulletin.
type CoverageStatus string

const (
	CoverageReported         CoverageStatus = "reported"
	CoverageNoCenter         CoverageStatus = "no_center_coverage"
	CoverageUnavailable      CoverageStatus = "temporarily_unavailable"
	CoverageNoActiveForecast CoverageStatus = "no_active_forecast"
	CoverageExpired          CoverageStatus = "expired_for_selected_start"
)

// SourceKind records which path produced the bulletin content.
type SourceKind string

const (
	SourceDetailed        SourceKind = "detailed"
	SourcePageExtract     SourceKind = "page_extract"
	SourceOfficialSummary SourceKind = "official_summary"
)

// BandRating is one elevation band's danger rating.
type BandRating struct {
	Level DangerLevel `json:"level"`
	Label string      `json:"label"`
}

// ElevationBands carries per-band ratings for below/at/above treeline.
type ElevationBands struct {
	Below BandRating `json:"below"`
	At    BandRating `json:"at"`
	Above BandRating `json:"above"`
}

func newBandRating(level DangerLevel) BandRating {
	return BandRating{Level: level, Label: level.Label()}
}

// ProblemSummary is one avalanche problem reduced to categorical bands.
type ProblemSummary struct {
	Name       string   `json:"name"`
	Likelihood string   `json:"likelihood,omitempty"`
	Size       string   `json:"size,omitempty"`
	Terrain    []string `json:"terrain,omitempty"`
}

// Bulletin is the assembled avalanche hazard bulletin for one objective.
// When DangerUnknown is true, ElevationBands is nil and DangerLevel is 0.
type Bulletin struct {
	Center          string           `json:"center,omitempty"`
	CenterId        string           `json:"centerId,omitempty"`
	Zone            string           `json:"zone,omitempty"`
	DangerLevel     DangerLevel      `json:"dangerLevel"`
	RiskLabel       string           `json:"riskLabel"`
	DangerUnknown   bool             `json:"dangerUnknown"`
	CoverageStatus  CoverageStatus   `json:"coverageStatus"`
	ElevationBands  *ElevationBands  `json:"elevationBands,omitempty"`
	Problems        []ProblemSummary `json:"problems,omitempty"`
	BottomLine      string           `json:"bottomLine,omitempty"`
	TravelAdvice    string           `json:"travelAdvice,omitempty"`
	PublishedTime   *time.Time       `json:"publishedTime,omitempty"`
	ExpiresTime     *time.Time       `json:"expiresTime,omitempty"`
	ForecastURL     string           `json:"forecastUrl,omitempty"`
	Source          SourceKind       `json:"source,omitempty"`
	Relevant        bool             `json:"relevant"`
	RelevanceReason string           `json:"relevanceReason,omitempty"`
}

// LikelihoodBand maps a numeric likelihood (1-5) onto its categorical band.
func LikelihoodBand(v float64) string {
	switch {
	case v <= 0:
		return ""
	case v < 1.5:
		return "unlikely"
	case v < 2.5:
		return "possible"
	case v < 3.5:
		return "likely"
	case v < 4.5:
		return "very likely"
	default:
		return "almost certain"
	}
}

// SizeBand maps a destructive-size range onto its categorical band using
// the upper bound of the range.
func SizeBand(min, max float64) string {
	upper := max
	if upper <= 0 {
		upper = min
	}
	switch {
	case upper <= 0:
		return ""
	case upper < 1.5:
		return "small"
	case upper < 2.5:
		return "large"
	case upper < 3.5:
		return "very large"
	default:
		return "historic"
	}
}
