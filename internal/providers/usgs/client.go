package usgs

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"trailsafe/internal/gateway"
)

// API Docs: https://epqs.nationalmap.gov/v1/docs
// Sample request: https://epqs.nationalmap.gov/v1/json?x=-107.65840&y=39.0639&units=Feet
const baseElevationURL = "https://epqs.nationalmap.gov/v1/json"

// Client queries the USGS elevation point service, the primary elevation
// source for objectives inside the US.
type Client struct {
	gw      *gateway.Client
	baseURL string
	logger  *slog.Logger
}

func NewClient(gw *gateway.Client, logger *slog.Logger) *Client {
	return &Client{
		gw:      gw,
		baseURL: baseElevationURL,
		logger:  logger.With("component", "usgs-client"),
	}
}

// GetElevationPoint returns the terrain elevation at the coordinate in feet.
func (c *Client) GetElevationPoint(ctx context.Context, latitude, longitude float64) (*ElevationPointAPIResponse, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("y", fmt.Sprintf("%f", latitude))
	q.Set("x", fmt.Sprintf("%f", longitude))
	q.Set("units", "Feet")
	u.RawQuery = q.Encode()

	var apiResp ElevationPointAPIResponse
	if err := c.gw.GetJSON(ctx, u.String(), &apiResp); err != nil {
		return nil, fmt.Errorf("failed to fetch elevation: %w", err)
	}
	return &apiResp, nil
}
