package nws

import "time"

// PointAPIResponse is the response from /points/{lat},{lon}.
type PointAPIResponse struct {
	Properties struct {
		GridId         string `json:"gridId"`
		GridX          int    `json:"gridX"`
		GridY          int    `json:"gridY"`
		Forecast       string `json:"forecast"`
		ForecastHourly string `json:"forecastHourly"`
		TimeZone       string `json:"timeZone"`
	} `json:"properties"`
}

// QuantitativeValue is NWS's unit-tagged nullable number. A null Value means
// the field was not reported, which downstream code must not read as zero.
type QuantitativeValue struct {
	UnitCode string   `json:"unitCode"`
	Value    *float64 `json:"value"`
}

// HourlyForecastResponse is the response from a gridpoint hourly forecast URL.
type HourlyForecastResponse struct {
	Properties struct {
		UpdateTime  time.Time        `json:"updateTime"`
		GeneratedAt time.Time        `json:"generatedAt"`
		Periods     []ForecastPeriod `json:"periods"`
	} `json:"properties"`
}

// ForecastPeriod is one hour of the NWS hourly forecast.
type ForecastPeriod struct {
	Number                     int               `json:"number"`
	StartTime                  time.Time         `json:"startTime"`
	EndTime                    time.Time         `json:"endTime"`
	IsDaytime                  bool              `json:"isDaytime"`
	Temperature                float64           `json:"temperature"`
	TemperatureUnit            string            `json:"temperatureUnit"`
	ProbabilityOfPrecipitation QuantitativeValue `json:"probabilityOfPrecipitation"`
	Dewpoint                   QuantitativeValue `json:"dewpoint"`
	RelativeHumidity           QuantitativeValue `json:"relativeHumidity"`
	WindSpeed                  string            `json:"windSpeed"` // e.g. "10 mph"
	WindGust                   string            `json:"windGust"`  // often empty
	WindDirection              string            `json:"windDirection"`
	ShortForecast              string            `json:"shortForecast"`
}

// AlertsResponse is the response from /alerts/active?point=.
type AlertsResponse struct {
	Features []AlertFeature `json:"features"`
}

// AlertFeature is one active alert.
type AlertFeature struct {
	Properties struct {
		Id          string     `json:"id"`
		Event       string     `json:"event"`
		Severity    string     `json:"severity"`
		Certainty   string     `json:"certainty"`
		Headline    string     `json:"headline"`
		Description string     `json:"description"`
		Onset       *time.Time `json:"onset"`
		Ends        *time.Time `json:"ends"`
		Effective   *time.Time `json:"effective"`
		Expires     *time.Time `json:"expires"`
	} `json:"properties"`
}
