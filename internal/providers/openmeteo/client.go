package openmeteo

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"trailsafe/internal/gateway"
)

// API Docs: https://open-meteo.com/en/docs
// Sample request: https://api.open-meteo.com/v1/forecast?latitude=39.11&longitude=-107.65&hourly=temperature_2m,...&past_days=3&temperature_unit=fahrenheit
const (
	baseForecastURL   = "https://api.open-meteo.com/v1/forecast"
	baseAirQualityURL = "https://air-quality-api.open-meteo.com/v1/air-quality"
	baseElevationURL  = "https://api.open-meteo.com/v1/elevation"
)

// Client talks to Open-Meteo, the global fallback forecast provider. It also
// serves air quality, gridded snow depth, rolling rainfall history (via
// past_days) and solar times.
type Client struct {
	gw            *gateway.Client
	forecastURL   string
	airQualityURL string
	elevationURL  string
	logger        *slog.Logger
}

func NewClient(gw *gateway.Client, logger *slog.Logger) *Client {
	return &Client{
		gw:            gw,
		forecastURL:   baseForecastURL,
		airQualityURL: baseAirQualityURL,
		elevationURL:  baseElevationURL,
		logger:        logger.With("component", "openmeteo-client"),
	}
}

// GetForecast fetches the hourly forecast anchored to the objective
// elevation, including pastDays of history for rolling precipitation totals.
func (c *Client) GetForecast(ctx context.Context, latitude, longitude, elevationMeters float64, forecastDays, pastDays int) (*ForecastAPIResponse, error) {
	u, err := url.Parse(c.forecastURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	hourlyVars := []string{
		"temperature_2m",
		"apparent_temperature",
		"dew_point_2m",
		"relative_humidity_2m",
		"cloud_cover",
		"surface_pressure",
		"precipitation_probability",
		"precipitation",
		"rain",
		"snowfall",
		"snow_depth",
		"weather_code",
		"wind_speed_10m",
		"wind_gusts_10m",
		"wind_direction_10m",
		"is_day",
	}
	dailyVars := []string{"sunrise", "sunset"}

	q := u.Query()
	q.Set("latitude", fmt.Sprintf("%f", latitude))
	q.Set("longitude", fmt.Sprintf("%f", longitude))
	q.Set("elevation", fmt.Sprintf("%f", elevationMeters))
	q.Set("hourly", strings.Join(hourlyVars, ","))
	q.Set("daily", strings.Join(dailyVars, ","))
	q.Set("forecast_days", strconv.Itoa(forecastDays))
	q.Set("past_days", strconv.Itoa(pastDays))
	q.Set("timeformat", "iso8601")
	q.Set("timezone", "auto")
	q.Set("wind_speed_unit", "mph")
	q.Set("temperature_unit", "fahrenheit")
	q.Set("precipitation_unit", "inch")
	u.RawQuery = q.Encode()

	var apiResp ForecastAPIResponse
	if err := c.gw.GetJSON(ctx, u.String(), &apiResp); err != nil {
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}

	c.logger.Debug("fetched open-meteo forecast", "hours", len(apiResp.Hourly.Time))
	return &apiResp, nil
}

// GetAirQuality fetches the current air quality (US AQI and particulates).
func (c *Client) GetAirQuality(ctx context.Context, latitude, longitude float64) (*AirQualityAPIResponse, error) {
	u, err := url.Parse(c.airQualityURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("latitude", fmt.Sprintf("%f", latitude))
	q.Set("longitude", fmt.Sprintf("%f", longitude))
	q.Set("current", "us_aqi,pm2_5,pm10")
	u.RawQuery = q.Encode()

	var apiResp AirQualityAPIResponse
	if err := c.gw.GetJSON(ctx, u.String(), &apiResp); err != nil {
		return nil, fmt.Errorf("failed to fetch air quality: %w", err)
	}
	return &apiResp, nil
}

// GetElevation fetches terrain elevation in meters for the coordinate.
func (c *Client) GetElevation(ctx context.Context, latitude, longitude float64) (*ElevationAPIResponse, error) {
	u, err := url.Parse(c.elevationURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("latitude", fmt.Sprintf("%f", latitude))
	q.Set("longitude", fmt.Sprintf("%f", longitude))
	u.RawQuery = q.Encode()

	var apiResp ElevationAPIResponse
	if err := c.gw.GetJSON(ctx, u.String(), &apiResp); err != nil {
		return nil, fmt.Errorf("failed to fetch elevation: %w", err)
	}
	if len(apiResp.Elevation) == 0 {
		return nil, fmt.Errorf("elevation response is empty")
	}
	return &apiResp, nil
}
