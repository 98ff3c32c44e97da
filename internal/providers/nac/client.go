package nac

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"trailsafe/internal/gateway"
)

// API Docs: https://api.avalanche.org (no formal docs; shapes vary by center)
const baseURL = "https://api.avalanche.org"

// Client talks to the avalanche.org aggregation API: the zone-polygon map
// layer plus several product endpoints whose payload shape and completeness
// differ per issuing center. Product fetches return raw bytes because a
// body may hold one JSON document, several concatenated ones, or trailing
// noise; the bulletin cascade parses them permissively.
type Client struct {
	gw      *gateway.Client
	baseURL string
	logger  *slog.Logger
}

func NewClient(gw *gateway.Client, logger *slog.Logger) *Client {
	return &Client{
		gw:      gw,
		baseURL: baseURL,
		logger:  logger.With("component", "nac-client"),
	}
}

// GetMapLayer fetches the GeoJSON map layer with all forecast zone polygons.
func (c *Client) GetMapLayer(ctx context.Context) (*MapLayerResponse, error) {
	u := c.baseURL + "/v2/public/products/map-layer"

	c.logger.Debug("fetching map layer", "url", u)

	var apiResp MapLayerResponse
	if err := c.gw.GetJSON(ctx, u, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to fetch map layer: %w", err)
	}

	c.logger.Debug("fetched map layer", "feature_count", len(apiResp.Features))
	return &apiResp, nil
}

// GetProductByZone fetches the forecast product for a center+zone pair.
func (c *Client) GetProductByZone(ctx context.Context, centerId string, zoneId int) ([]byte, error) {
	u, err := url.Parse(c.baseURL + "/v2/public/product")
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	q := u.Query()
	q.Set("type", "forecast")
	q.Set("center_id", centerId)
	q.Set("zone_id", strconv.Itoa(zoneId))
	u.RawQuery = q.Encode()

	return c.gw.Get(ctx, u.String())
}

// GetProductByID fetches a product by its numeric id.
func (c *Client) GetProductByID(ctx context.Context, productId int) ([]byte, error) {
	return c.gw.Get(ctx, fmt.Sprintf("%s/v2/public/product/%d", c.baseURL, productId))
}

// GetProductsBySlug fetches the center's product list filtered by zone slug.
func (c *Client) GetProductsBySlug(ctx context.Context, centerId, slug string) ([]byte, error) {
	u, err := url.Parse(fmt.Sprintf("%s/v2/public/products/%s", c.baseURL, url.PathEscape(centerId)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	q := u.Query()
	q.Set("zone_slug", slug)
	u.RawQuery = q.Encode()

	return c.gw.Get(ctx, u.String())
}

// GetPage fetches a zone's public page for the scrape fallback.
func (c *Client) GetPage(ctx context.Context, pageURL string) (string, error) {
	body, err := c.gw.Get(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	return string(body), nil
}

// GetAdvisoryFeed fetches a center-specific machine-readable advisory
// endpoint and returns the decoded document.
func (c *Client) GetAdvisoryFeed(ctx context.Context, feedURL string) (map[string]json.RawMessage, error) {
	var doc map[string]json.RawMessage
	if err := c.gw.GetJSON(ctx, feedURL, &doc); err != nil {
		return nil, fmt.Errorf("failed to fetch advisory feed: %w", err)
	}
	return doc, nil
}
