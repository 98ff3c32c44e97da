package avalanche

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"trailsafe/internal/providers/nac"
	"trailsafe/internal/types"
	"trailsafe/internal/zones"
)

// ProductProvider is the slice of the avalanche.org client the cascade
// needs; tests swap in a mock.
type ProductProvider interface {
	GetProductByZone(ctx context.Context, centerId string, zoneId int) ([]byte, error)
	GetProductByID(ctx context.Context, productId int) ([]byte, error)
	GetProductsBySlug(ctx context.Context, centerId, slug string) ([]byte, error)
	GetPage(ctx context.Context, pageURL string) (string, error)
	GetAdvisoryFeed(ctx context.Context, feedURL string) (map[string]json.RawMessage, error)
}

// Service assembles a hazard bulletin for a resolved zone. Provider
// failures degrade the bulletin; they are never returned as errors.
type Service interface {
	GetBulletin(ctx context.Context, coords types.Coords, match zones.Match, start time.Time) *Bulletin
}

type service struct {
	products        ProductProvider
	almostWorstCase bool
	logger          *slog.Logger
}

func NewService(products ProductProvider, almostWorstCase bool, logger *slog.Logger) Service {
	return &service{
		products:        products,
		almostWorstCase: almostWorstCase,
		logger:          logger.With("component", "avalanche-service"),
	}
}

// Centers whose detail API is chronically an empty shell but that publish
// a machine-readable advisory elsewhere.
var advisoryFeeds = map[string]string{
	"CAIC": "https://avalanche.state.co.us/api-proxy/avid?_api_proxy_uri=/products/all",
}

var centerNames = map[string]string{
	"CAIC":   "Colorado Avalanche Information Center",
	"NWAC":   "Northwest Avalanche Center",
	"ESAC":   "Eastern Sierra Avalanche Center",
	"SAC":    "Sierra Avalanche Center",
	"BTAC":   "Bridger-Teton Avalanche Center",
	"UAC":    "Utah Avalanche Center",
	"CNFAIC": "Chugach National Forest Avalanche Information Center",
	"GNFAC":  "Gallatin National Forest Avalanche Center",
	"SNFAC":  "Sawtooth Avalanche Center",
	"MSAC":   "Mount Shasta Avalanche Center",
}

// cascadeResult holds everything the concurrent fetch batch produced. The
// structured endpoints and the scrape fallback run together so the scrape's
// latency is not paid serially when it turns out to be needed.
type cascadeResult struct {
	bodies   [][]byte
	page     string
	advisory map[string]json.RawMessage
}

func (s *service) GetBulletin(ctx context.Context, coords types.Coords, match zones.Match, start time.Time) *Bulletin {
	if match.Mode == zones.MatchNone || match.Feature == nil {
		return &Bulletin{
			DangerLevel:    DangerNoRating,
			RiskLabel:      DangerNoRating.Label(),
			DangerUnknown:  true,
			CoverageStatus: CoverageNoCenter,
			BottomLine:     "No avalanche forecast center covers this location.",
		}
	}

	feature := match.Feature
	props := feature.Properties
	slug := SlugFromLink(props.Link)

	b := &Bulletin{
		Center:       centerNames[props.CenterId],
		CenterId:     props.CenterId,
		Zone:         props.Name,
		TravelAdvice: StripHTML(props.TravelAdvice),
		ForecastURL:  props.Link,
	}
	if b.Center == "" {
		b.Center = props.CenterId
	}

	if props.OffSeason {
		b.CoverageStatus = CoverageNoActiveForecast
		b.DangerUnknown = true
		b.DangerLevel = DangerNoRating
		b.RiskLabel = DangerNoRating.Label()
		b.BottomLine = offSeasonBottomLine(props)
		b.Source = SourceOfficialSummary
		s.applyLinkOverrides(b, coords, slug)
		return b
	}

	res := s.fetchAll(ctx, feature, slug)
	best, bestScore := s.pickCandidate(res.bodies, zoneExpectation{Id: feature.Id, Name: props.Name, Slug: slug})

	if best != nil {
		b.Source = SourceDetailed
		b.BottomLine = best.BottomLine
		b.Problems = best.Problems
		b.ElevationBands = best.Bands
		b.PublishedTime = best.PublishedTime
		b.ExpiresTime = best.ExpiresTime
		if best.TravelAdvice != "" {
			b.TravelAdvice = best.TravelAdvice
		}
		if best.Link != "" {
			b.ForecastURL = best.Link
		}
	}

	// Secondary extraction fills the gaps a shell candidate leaves; it
	// never overwrites structured content.
	if best == nil || !isQuality(*best) {
		s.supplement(b, res)
	}

	s.finishDanger(b, props)
	s.finishBottomLine(b, props)
	s.applyExpiry(b, start, props)
	s.applyLinkOverrides(b, coords, slug)

	s.logger.Debug("assembled bulletin",
		"center", b.CenterId, "zone", b.Zone, "coverage", b.CoverageStatus,
		"source", b.Source, "danger", int(b.DangerLevel), "candidate_score", bestScore)
	return b
}

// fetchAll runs every candidate endpoint, the page scrape, and any known
// advisory feed concurrently. Failures are logged and absorbed; goroutines
// return nil so one dead endpoint cannot cancel its siblings.
func (s *service) fetchAll(ctx context.Context, feature *nac.MapLayerFeature, slug string) cascadeResult {
	props := feature.Properties
	res := cascadeResult{bodies: make([][]byte, 3)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		body, err := s.products.GetProductByID(gctx, feature.Id)
		if err != nil {
			s.logger.Debug("product by id failed", "zone_id", feature.Id, "error", err)
			return nil
		}
		res.bodies[0] = body
		return nil
	})
	g.Go(func() error {
		body, err := s.products.GetProductByZone(gctx, props.CenterId, feature.Id)
		if err != nil {
			s.logger.Debug("product by center+zone failed", "center", props.CenterId, "zone_id", feature.Id, "error", err)
			return nil
		}
		res.bodies[1] = body
		return nil
	})
	if slug != "" {
		g.Go(func() error {
			body, err := s.products.GetProductsBySlug(gctx, props.CenterId, slug)
			if err != nil {
				s.logger.Debug("products by slug failed", "center", props.CenterId, "slug", slug, "error", err)
				return nil
			}
			res.bodies[2] = body
			return nil
		})
	}
	if props.Link != "" {
		g.Go(func() error {
			page, err := s.products.GetPage(gctx, props.Link)
			if err != nil {
				s.logger.Debug("page fetch failed", "url", props.Link, "error", err)
				return nil
			}
			res.page = page
			return nil
		})
	}
	if feedURL, ok := advisoryFeeds[props.CenterId]; ok {
		g.Go(func() error {
			doc, err := s.products.GetAdvisoryFeed(gctx, feedURL)
			if err != nil {
				s.logger.Debug("advisory feed failed", "center", props.CenterId, "error", err)
				return nil
			}
			res.advisory = doc
			return nil
		})
	}
	_ = g.Wait()
	return res
}

// pickCandidate parses every fetched body and returns the highest-scoring
// candidate above the minimum threshold.
func (s *service) pickCandidate(bodies [][]byte, want zoneExpectation) (*candidate, int) {
	var best *candidate
	bestScore := 0
	for _, body := range bodies {
		if len(body) == 0 {
			continue
		}
		for _, c := range decodeCandidates(body) {
			c := c
			if score := scoreCandidate(c, want); score > bestScore {
				best, bestScore = &c, score
			}
		}
	}
	if bestScore < minCandidateScore {
		return nil, bestScore
	}
	return best, bestScore
}

// bottomLineFields are the advisory-feed keys that may carry a bottom line,
// in preference order.
var bottomLineFields = []string{
	"bottom_line", "bottomLine", "highlights", "hazard_discussion", "summary", "advisory",
}

func (s *service) supplement(b *Bulletin, res cascadeResult) {
	if b.BottomLine == "" || len(b.BottomLine) < qualityBottomLineLen {
		if text := advisoryBottomLine(res.advisory); len(text) > len(b.BottomLine) {
			b.BottomLine = text
			b.Source = SourceDetailed
		}
	}
	if res.page == "" {
		return
	}
	if b.BottomLine == "" || len(b.BottomLine) < qualityBottomLineLen {
		if text := extractBottomLine(res.page); len(text) > len(b.BottomLine) {
			b.BottomLine = text
			b.Source = SourcePageExtract
		}
	}
	if len(b.Problems) == 0 {
		b.Problems = extractProblemNames(res.page)
	}
	if b.ElevationBands == nil {
		b.ElevationBands = extractBandDangers(res.page)
	}
}

func advisoryBottomLine(doc map[string]json.RawMessage) string {
	if doc == nil {
		return ""
	}
	for _, key := range bottomLineFields {
		raw, ok := doc[key]
		if !ok {
			continue
		}
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			continue
		}
		if text = StripHTML(text); text != "" {
			return text
		}
	}
	return ""
}

// finishDanger derives the overall rating from elevation bands, falling
// back to the catalog's zone-level rating when no bands were recovered.
func (s *service) finishDanger(b *Bulletin, props nac.MapLayerProperties) {
	level := Overall(b.ElevationBands, s.almostWorstCase)
	if level == DangerNoRating {
		level = ClampDanger(props.DangerLevel)
	}
	if level == DangerNoRating {
		b.DangerUnknown = true
		b.ElevationBands = nil
		b.CoverageStatus = CoverageUnavailable
	} else {
		b.CoverageStatus = CoverageReported
	}
	b.DangerLevel = level
	b.RiskLabel = level.Label()
}

// finishBottomLine keeps the catalog's minimal advisory text when every
// richer path came back empty, labeled as an official summary rather than
// a detailed bulletin.
func (s *service) finishBottomLine(b *Bulletin, props nac.MapLayerProperties) {
	if b.BottomLine != "" {
		return
	}
	if text := firstNonEmptyText(props.TravelAdvice, props.Danger); text != "" {
		b.BottomLine = text
		b.Source = SourceOfficialSummary
		return
	}
	b.BottomLine = "Avalanche bulletin details are temporarily unavailable for this zone."
	b.Source = SourceOfficialSummary
	if b.CoverageStatus == CoverageReported && b.DangerUnknown {
		b.CoverageStatus = CoverageUnavailable
	}
}

// applyExpiry marks a bulletin that will have lapsed before the planned
// start. The rating is kept (shown stale), never blanked.
func (s *service) applyExpiry(b *Bulletin, start time.Time, props nac.MapLayerProperties) {
	expires := b.ExpiresTime
	if expires == nil && props.EndDate != "" {
		expires = parseProductTime(props.EndDate)
	}
	if expires == nil || b.DangerUnknown || !start.After(*expires) {
		return
	}
	b.CoverageStatus = CoverageExpired
	b.ExpiresTime = expires
	b.BottomLine = fmt.Sprintf("This forecast expired %s, before the planned start time; conditions may have changed. %s",
		expires.Format("Jan 2 15:04 MST"), b.BottomLine)
}

// applyLinkOverrides patches two centers whose catalog links are not
// trustworthy: CAIC links are always recomputed from coordinates, and
// NWAC's generic API links are replaced with the direct forecast page.
func (s *service) applyLinkOverrides(b *Bulletin, coords types.Coords, slug string) {
	switch b.CenterId {
	case "CAIC":
		b.ForecastURL = fmt.Sprintf(
			"https://avalanche.state.co.us/forecasts/backcountry-avalanche/?lat=%.5f&lng=%.5f",
			coords.Latitude, coords.Longitude)
	case "NWAC":
		link := b.ForecastURL
		if link == "" || len(link) < 12 || strings.Contains(link, "api.avalanche.org") {
			pageSlug := slug
			if pageSlug == "" {
				pageSlug = slugify(b.Zone)
			}
			b.ForecastURL = "https://nwac.us/avalanche-forecast/#/" + pageSlug
		}
	}
}

func offSeasonBottomLine(props nac.MapLayerProperties) string {
	if text := firstNonEmptyText(props.TravelAdvice, props.Danger); text != "" {
		return text
	}
	return "This zone is not currently issuing avalanche forecasts (off season)."
}

func slugify(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var sb strings.Builder
	lastDash := true
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				sb.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(sb.String(), "-")
}
