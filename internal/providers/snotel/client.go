package snotel

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"trailsafe/internal/gateway"
)

// API Docs: https://wcc.sc.egov.usda.gov/awdbRestApi/swagger-ui/index.html
// Sample request: https://wcc.sc.egov.usda.gov/awdbRestApi/services/v1/data?stationTriplets=622:CO:SNTL&elements=SNWD,WTEQ&duration=DAILY
const baseAwdbURL = "https://wcc.sc.egov.usda.gov/awdbRestApi/services/v1"

// Client talks to the USDA AWDB REST API for SNOTEL snowpack stations.
// The station list changes rarely and is cached by the caller; only the
// observation fetch happens per request.
type Client struct {
	gw      *gateway.Client
	baseURL string
	logger  *slog.Logger
}

func NewClient(gw *gateway.Client, logger *slog.Logger) *Client {
	return &Client{
		gw:      gw,
		baseURL: baseAwdbURL,
		logger:  logger.With("component", "snotel-client"),
	}
}

// GetStations fetches metadata for all active SNOTEL stations.
func (c *Client) GetStations(ctx context.Context) ([]StationMetadata, error) {
	u, err := url.Parse(c.baseURL + "/stations")
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	q := u.Query()
	q.Set("networkCds", "SNTL")
	q.Set("activeOnly", "true")
	u.RawQuery = q.Encode()

	var stations []StationMetadata
	if err := c.gw.GetJSON(ctx, u.String(), &stations); err != nil {
		return nil, fmt.Errorf("failed to fetch stations: %w", err)
	}

	c.logger.Debug("fetched SNOTEL stations", "count", len(stations))
	return stations, nil
}

// GetLatestObservations fetches the recent daily snow depth and SWE series
// for the given stations.
func (c *Client) GetLatestObservations(ctx context.Context, stationTriplets []string) ([]StationData, error) {
	if len(stationTriplets) == 0 {
		return nil, fmt.Errorf("no station triplets given")
	}

	u, err := url.Parse(c.baseURL + "/data")
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	q := u.Query()
	q.Set("stationTriplets", strings.Join(stationTriplets, ","))
	q.Set("elements", "SNWD,WTEQ")
	q.Set("duration", "DAILY")
	q.Set("beginDate", "-3") // relative: last three days
	u.RawQuery = q.Encode()

	var data []StationData
	if err := c.gw.GetJSON(ctx, u.String(), &data); err != nil {
		return nil, fmt.Errorf("failed to fetch observations: %w", err)
	}
	return data, nil
}
