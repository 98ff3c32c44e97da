package nws

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"trailsafe/internal/gateway"
)

// API Docs: https://www.weather.gov/documentation/services-web-api
// Sample requests:
// - https://api.weather.gov/points/39.1154,-107.65840
// - https://api.weather.gov/alerts/active?point=39.1154,-107.6584
const baseURL = "https://api.weather.gov"

// Client talks to the National Weather Service API, the primary hourly
// forecast and alerts source.
type Client struct {
	gw      *gateway.Client
	baseURL string
	logger  *slog.Logger
}

func NewClient(gw *gateway.Client, logger *slog.Logger) *Client {
	return &Client{
		gw:      gw,
		baseURL: baseURL,
		logger:  logger.With("component", "nws-client"),
	}
}

// GetPoint resolves a coordinate to its NWS gridpoint metadata, including
// the hourly forecast URL.
func (c *Client) GetPoint(ctx context.Context, latitude, longitude float64) (*PointAPIResponse, error) {
	u := fmt.Sprintf("%s/points/%.4f,%.4f", c.baseURL, latitude, longitude)

	var apiResp PointAPIResponse
	if err := c.gw.GetJSON(ctx, u, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to fetch NWS point: %w", err)
	}
	return &apiResp, nil
}

// GetHourlyForecast fetches the gridpoint hourly forecast at the URL the
// point lookup returned.
func (c *Client) GetHourlyForecast(ctx context.Context, forecastURL string) (*HourlyForecastResponse, error) {
	if forecastURL == "" {
		return nil, fmt.Errorf("empty hourly forecast URL")
	}

	var apiResp HourlyForecastResponse
	if err := c.gw.GetJSON(ctx, forecastURL, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to fetch NWS hourly forecast: %w", err)
	}

	c.logger.Debug("fetched NWS hourly forecast", "periods", len(apiResp.Properties.Periods))
	return &apiResp, nil
}

// GetActiveAlerts fetches currently issued alerts covering the point. The
// caller filters them against the planned start time.
func (c *Client) GetActiveAlerts(ctx context.Context, latitude, longitude float64) (*AlertsResponse, error) {
	u, err := url.Parse(c.baseURL + "/alerts/active")
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	q := u.Query()
	q.Set("point", fmt.Sprintf("%.4f,%.4f", latitude, longitude))
	u.RawQuery = q.Encode()

	var apiResp AlertsResponse
	if err := c.gw.GetJSON(ctx, u.String(), &apiResp); err != nil {
		return nil, fmt.Errorf("failed to fetch NWS alerts: %w", err)
	}

	c.logger.Debug("fetched NWS alerts", "count", len(apiResp.Features))
	return &apiResp, nil
}
