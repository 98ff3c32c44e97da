package openmeteo

// ForecastAPIResponse is the Open-Meteo forecast response, requested in
// imperial units with past days included for rolling rainfall totals.
type ForecastAPIResponse struct {
	Timezone       string  `json:"timezone"`
	Elevation      float64 `json:"elevation"`
	UtcOffsetSecs  int     `json:"utc_offset_seconds"`
	GenerationTime float64 `json:"generationtime_ms"`
	Hourly         struct {
		Time                     []string  `json:"time"`
		Temperature2M            []float64 `json:"temperature_2m"`
		ApparentTemperature      []float64 `json:"apparent_temperature"`
		DewPoint2M               []float64 `json:"dew_point_2m"`
		RelativeHumidity2M       []float64 `json:"relative_humidity_2m"`
		CloudCover               []float64 `json:"cloud_cover"`
		SurfacePressure          []float64 `json:"surface_pressure"`
		PrecipitationProbability []float64 `json:"precipitation_probability"`
		Precipitation            []float64 `json:"precipitation"`
		Rain                     []float64 `json:"rain"`
		Snowfall                 []float64 `json:"snowfall"`
		SnowDepth                []float64 `json:"snow_depth"`
		WeatherCode              []int     `json:"weather_code"`
		WindSpeed10M             []float64 `json:"wind_speed_10m"`
		WindGusts10M             []float64 `json:"wind_gusts_10m"`
		WindDirection10M         []float64 `json:"wind_direction_10m"`
		IsDay                    []int     `json:"is_day"`
	} `json:"hourly"`
	Daily struct {
		Time    []string `json:"time"`
		Sunrise []string `json:"sunrise"`
		Sunset  []string `json:"sunset"`
	} `json:"daily"`
}

// AirQualityAPIResponse is the Open-Meteo air-quality response.
type AirQualityAPIResponse struct {
	Current struct {
		Time  string   `json:"time"`
		USAqi *float64 `json:"us_aqi"`
		PM25  *float64 `json:"pm2_5"`
		PM10  *float64 `json:"pm10"`
	} `json:"current"`
}

// ElevationAPIResponse is the Open-Meteo elevation response, used as the
// fallback when the USGS elevation service is down.
type ElevationAPIResponse struct {
	Elevation []float64 `json:"elevation"` // meters
}
