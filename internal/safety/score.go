// Package safety converts hazard and confidence signals into the composite
// safety score payload: deterministic arithmetic, per-group caps, and an
// independently decaying confidence measure.
package safety

import (
	"fmt"
	"sort"
	"time"

	"trailsafe/internal/avalanche"
	"trailsafe/internal/providers/nws"
	"trailsafe/internal/weather"
)

// Group fixes which cap a factor counts against.
type Group string

const (
	GroupAvalanche  Group = "avalanche"
	GroupWeather    Group = "weather"
	GroupAlerts     Group = "alerts"
	GroupAirQuality Group = "airQuality"
	GroupFire       Group = "fire"
)

// groupCaps bound the total deduction any single hazard group may
// contribute, so one hazard cannot drive the score to zero alone.
var groupCaps = map[Group]int{
	GroupAvalanche:  55,
	GroupWeather:    38,
	GroupAlerts:     24,
	GroupAirQuality: 20,
	GroupFire:       18,
}

// Factor is one hazard contribution. Factors below materiality thresholds
// are never emitted; impact is always positive.
type Factor struct {
	Label   string `json:"label"`
	Impact  int    `json:"impact"`
	Group   Group  `json:"group"`
	Message string `json:"message,omitempty"`
	Source  string `json:"source,omitempty"`
}

// GroupImpact reports a group's raw sum against its cap.
type GroupImpact struct {
	Raw    int `json:"raw"`
	Capped int `json:"capped"`
	Cap    int `json:"cap"`
}

// Score is the final composite payload.
type Score struct {
	Score             int                   `json:"score"`
	Confidence        int                   `json:"confidence"`
	PrimaryHazard     string                `json:"primaryHazard,omitempty"`
	Factors           []Factor              `json:"factors"`
	GroupImpacts      map[Group]GroupImpact `json:"groupImpacts"`
	ConfidenceReasons []string              `json:"confidenceReasons,omitempty"`
}

const (
	baseScore       = 100
	baseConfidence  = 100
	confidenceFloor = 20
)

// Inputs are the signals the synthesizer weighs. Unavailable sections cost
// confidence, never score.
type Inputs struct {
	Bulletin        *avalanche.Bulletin
	Weather         *weather.Snapshot
	Alerts          []nws.AlertFeature // pre-filtered to the planned start window
	AlertsOK        bool
	AirQualityAqi   *float64
	AirQualityOK    bool
	FireDangerLevel *int // 0 none .. 3 extreme; nil when the derivation had no data
	Start           time.Time
	Now             time.Time
}

// Evaluate collects factors, applies group caps, and decays confidence.
func Evaluate(in Inputs) *Score {
	factors := collectFactors(in)

	groupImpacts := make(map[Group]GroupImpact)
	for _, f := range factors {
		gi := groupImpacts[f.Group]
		gi.Raw += f.Impact
		gi.Cap = groupCaps[f.Group]
		groupImpacts[f.Group] = gi
	}

	total := 0
	for group, gi := range groupImpacts {
		gi.Capped = gi.Raw
		if gi.Capped > gi.Cap {
			gi.Capped = gi.Cap
		}
		groupImpacts[group] = gi
		total += gi.Capped
	}

	score := baseScore - total
	if score < 0 {
		score = 0
	}

	// Stable sort keeps encounter order as the tie-breaker for the
	// primary hazard.
	sort.SliceStable(factors, func(i, j int) bool { return factors[i].Impact > factors[j].Impact })
	primary := ""
	if len(factors) > 0 {
		primary = factors[0].Label
	}

	confidence, reasons := evaluateConfidence(in)
	return &Score{
		Score:             score,
		Confidence:        confidence,
		PrimaryHazard:     primary,
		Factors:           factors,
		GroupImpacts:      groupImpacts,
		ConfidenceReasons: reasons,
	}
}

var dangerImpacts = map[avalanche.DangerLevel]int{
	avalanche.DangerLow:          8,
	avalanche.DangerModerate:     20,
	avalanche.DangerConsiderable: 35,
	avalanche.DangerHigh:         55,
	avalanche.DangerExtreme:      70,
}

func collectFactors(in Inputs) []Factor {
	var factors []Factor
	add := func(label string, impact int, group Group, message, source string) {
		if impact <= 0 {
			return
		}
		factors = append(factors, Factor{Label: label, Impact: impact, Group: group, Message: message, Source: source})
	}

	if b := in.Bulletin; b != nil && b.Relevant {
		switch {
		case b.DangerUnknown:
			add("Avalanche danger unknown", 12, GroupAvalanche,
				"Avalanche hazard is relevant here but no rating is available; evaluate the snowpack yourself.", string(b.Source))
		default:
			msg := fmt.Sprintf("%s avalanche danger in the %s zone.", b.RiskLabel, b.Zone)
			if b.CoverageStatus == avalanche.CoverageExpired {
				msg = fmt.Sprintf("%s avalanche danger (stale bulletin) in the %s zone.", b.RiskLabel, b.Zone)
			}
			add(fmt.Sprintf("Avalanche danger: %s", b.RiskLabel), dangerImpacts[b.DangerLevel], GroupAvalanche, msg, string(b.Source))
		}
	}

	if w := in.Weather; w != nil && w.Status != weather.StatusUnavailable {
		factors = append(factors, weatherFactors(w, in.Start, in.Now)...)
	}

	for _, alert := range in.Alerts {
		p := alert.Properties
		add("Official alert: "+p.Event, alertImpact(p.Severity), GroupAlerts, p.Headline, "nws")
	}

	if in.AirQualityAqi != nil {
		aqi := *in.AirQualityAqi
		switch {
		case aqi >= 200:
			add("Very unhealthy air quality", 18, GroupAirQuality, fmt.Sprintf("US AQI %.0f.", aqi), "open-meteo")
		case aqi >= 150:
			add("Unhealthy air quality", 12, GroupAirQuality, fmt.Sprintf("US AQI %.0f.", aqi), "open-meteo")
		case aqi >= 100:
			add("Moderate air quality impact", 6, GroupAirQuality, fmt.Sprintf("US AQI %.0f.", aqi), "open-meteo")
		}
	}

	if in.FireDangerLevel != nil {
		switch *in.FireDangerLevel {
		case 3:
			add("Extreme fire and heat risk", 18, GroupFire, "Hot, dry, and windy conditions.", "derived")
		case 2:
			add("High fire and heat risk", 12, GroupFire, "Hot and dry conditions.", "derived")
		case 1:
			add("Elevated fire and heat risk", 6, GroupFire, "Dry conditions.", "derived")
		}
	}

	return factors
}

func weatherFactors(w *weather.Snapshot, start, now time.Time) []Factor {
	var factors []Factor
	add := func(label string, impact int, message string) {
		factors = append(factors, Factor{Label: label, Impact: impact, Group: GroupWeather, Message: message, Source: "blended-forecast"})
	}

	if w.WindGustMph != nil {
		switch gust := *w.WindGustMph; {
		case gust >= 50:
			add("Dangerous wind gusts", 18, fmt.Sprintf("Gusts to %.0f mph.", gust))
		case gust >= 35:
			add("Strong wind gusts", 12, fmt.Sprintf("Gusts to %.0f mph.", gust))
		case gust >= 25:
			add("Gusty wind", 6, fmt.Sprintf("Gusts to %.0f mph.", gust))
		}
	}

	snowfall := 0.0
	snowHours := 0
	thunder := false
	for _, p := range w.Trend {
		if p.SnowfallIn != nil {
			snowfall += *p.SnowfallIn
		}
		if p.WeatherCode != nil {
			if p.WeatherCode.IsSnow() {
				snowHours++
			}
			if *p.WeatherCode >= 95 {
				thunder = true
			}
		}
	}
	switch {
	case snowfall >= 3:
		add("Heavy snowfall during the travel window", 14, fmt.Sprintf("About %.1f in of snow expected.", snowfall))
	case snowfall >= 0.5 || snowHours >= 2:
		add("Snowfall during the travel window", 8, "Accumulating snow expected while out.")
	}
	if thunder {
		add("Thunderstorms possible", 12, "Thunderstorms forecast during the travel window.")
	}

	if w.FeelsLikeF != nil {
		switch feels := *w.FeelsLikeF; {
		case feels <= -10:
			add("Severe cold", 14, fmt.Sprintf("Feels like %.0f F.", feels))
		case feels <= 0:
			add("Dangerous cold", 10, fmt.Sprintf("Feels like %.0f F.", feels))
		case feels <= 10:
			add("Significant cold", 6, fmt.Sprintf("Feels like %.0f F.", feels))
		case feels >= 100:
			add("Dangerous heat", 12, fmt.Sprintf("Feels like %.0f F.", feels))
		case feels >= 90:
			add("Significant heat", 8, fmt.Sprintf("Feels like %.0f F.", feels))
		}
	}

	if w.Daylight != nil && !*w.Daylight {
		add("Darkness at the planned start", 6, "The planned start falls outside daylight hours.")
	}

	if lead := start.Sub(now); lead > 0 {
		switch {
		case lead > 120*time.Hour:
			add("Long forecast lead time", 10, "The start is more than five days out; forecasts at this range are unreliable.")
		case lead > 72*time.Hour:
			add("Forecast lead time", 6, "The start is more than three days out.")
		case lead > 48*time.Hour:
			add("Forecast lead time", 3, "The start is more than two days out.")
		}
	}

	return factors
}

func alertImpact(severity string) int {
	switch severity {
	case "Extreme":
		return 15
	case "Severe":
		return 10
	case "Moderate":
		return 6
	default:
		return 3
	}
}

func evaluateConfidence(in Inputs) (int, []string) {
	confidence := baseConfidence
	var reasons []string
	penalize := func(amount int, reason string) {
		confidence -= amount
		reasons = append(reasons, reason)
	}

	switch {
	case in.Weather == nil || in.Weather.Status == weather.StatusUnavailable:
		penalize(30, "weather data is unavailable")
	default:
		w := in.Weather
		if w.IssuedAt == nil {
			penalize(15, "weather issuance time is unknown")
		} else {
			switch age := in.Now.Sub(*w.IssuedAt); {
			case age > 18*time.Hour:
				penalize(25, "weather forecast issued more than 18 hours ago")
			case age > 10*time.Hour:
				penalize(15, "weather forecast issued more than 10 hours ago")
			case age > 6*time.Hour:
				penalize(8, "weather forecast issued more than 6 hours ago")
			}
		}
		if len(w.Trend) < 6 {
			penalize(8, "forecast trend is shorter than the travel window")
		}
	}

	if b := in.Bulletin; b != nil && b.Relevant {
		if b.DangerUnknown {
			penalize(15, "avalanche danger is unknown")
		}
		if b.PublishedTime != nil {
			switch age := in.Now.Sub(*b.PublishedTime); {
			case age > 72*time.Hour:
				penalize(20, "avalanche bulletin published more than 3 days ago")
			case age > 48*time.Hour:
				penalize(12, "avalanche bulletin published more than 2 days ago")
			case age > 24*time.Hour:
				penalize(6, "avalanche bulletin published more than a day ago")
			}
		}
	}

	if !in.AlertsOK {
		penalize(8, "the alerts feed is unavailable")
	}
	if !in.AirQualityOK {
		penalize(5, "the air quality feed is unavailable")
	}
	if in.FireDangerLevel == nil {
		penalize(4, "fire risk could not be derived")
	}

	if confidence < confidenceFloor {
		confidence = confidenceFloor
	}
	return confidence, reasons
}
