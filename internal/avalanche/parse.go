package avalanche

import (
	"bytes"
	"encoding/json"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// candidate is the normalized intermediate shape a raw product document is
// reduced to before scoring. Issuing centers disagree on field names and
// nesting, so everything funnels through this struct and the scoring stays
// independent of any one center's payload.
type candidate struct {
	ProductId     int
	BottomLine    string
	TravelAdvice  string
	Problems      []ProblemSummary
	Bands         *ElevationBands
	PublishedTime *time.Time
	ExpiresTime   *time.Time
	Link          string
	ZoneIds       []int
	ZoneNames     []string
	ZoneSlugs     []string
}

func (c candidate) isEmpty() bool {
	return c.BottomLine == "" && len(c.Problems) == 0 && c.Bands == nil &&
		len(c.ZoneIds) == 0 && len(c.ZoneNames) == 0 && len(c.ZoneSlugs) == 0
}

// zoneExpectation identifies the zone a candidate is supposed to describe.
type zoneExpectation struct {
	Id   int
	Name string
	Slug string
}

const (
	// minCandidateScore is the floor below which a parsed document is not
	// trusted at all, even as the best of a bad lot.
	minCandidateScore = 2

	// qualityBottomLineLen is the length under which a bottom line is
	// treated as an empty shell and the secondary extraction path runs.
	qualityBottomLineLen = 120
)

// scoreCandidate rates how usable a parsed document is for the expected
// zone. Pure; exercised directly by tests.
func scoreCandidate(c candidate, want zoneExpectation) int {
	score := 0
	if len(c.Problems) > 0 {
		score += 3
	}
	if strings.TrimSpace(c.BottomLine) != "" {
		score += 2
	}
	if matchesZone(c, want) {
		score += 2
	}
	return score
}

// isQuality reports whether a winning candidate is rich enough to skip the
// secondary extraction path.
func isQuality(c candidate) bool {
	return len(c.BottomLine) >= qualityBottomLineLen && len(c.Problems) > 0
}

func matchesZone(c candidate, want zoneExpectation) bool {
	for _, id := range c.ZoneIds {
		if id != 0 && id == want.Id {
			return true
		}
	}
	if want.Slug != "" {
		for _, slug := range c.ZoneSlugs {
			if strings.EqualFold(slug, want.Slug) {
				return true
			}
		}
	}
	if want.Name != "" {
		wantName := strings.ToLower(want.Name)
		for _, name := range c.ZoneNames {
			name = strings.ToLower(name)
			if name != "" && (strings.Contains(name, wantName) || strings.Contains(wantName, name)) {
				return true
			}
		}
	}
	return false
}

// decodeCandidates greedily parses a product body. A body may hold one JSON
// document, several concatenated ones, or trailing non-JSON noise; every
// decodable document is collected and arrays are flattened.
func decodeCandidates(body []byte) []candidate {
	var out []candidate
	dec := json.NewDecoder(bytes.NewReader(body))
	for {
		var doc json.RawMessage
		if err := dec.Decode(&doc); err != nil {
			// Trailing noise or exhausted input; keep what decoded.
			break
		}
		out = append(out, candidatesFromDocument(doc)...)
	}
	return out
}

func candidatesFromDocument(doc json.RawMessage) []candidate {
	trimmed := bytes.TrimSpace(doc)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil
		}
		var out []candidate
		for _, item := range items {
			out = append(out, candidatesFromDocument(item)...)
		}
		return out
	}

	var raw rawProduct
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil
	}
	c := raw.normalize()
	if c.isEmpty() {
		return nil
	}
	return []candidate{c}
}

// rawProduct accepts the union of field names seen across centers. The
// same concept surfaces under different keys depending on the issuer.
type rawProduct struct {
	Id               int          `json:"id"`
	BottomLine       string       `json:"bottom_line"`
	BottomLineCamel  string       `json:"bottomLine"`
	Highlights       string       `json:"highlights"`
	HazardDiscussion string       `json:"hazard_discussion"`
	TravelAdvice     string       `json:"travel_advice"`
	PublishedTime    string       `json:"published_time"`
	ExpiresTime      string       `json:"expires_time"`
	Danger           []rawDanger  `json:"danger"`
	Problems         []rawProblem `json:"forecast_avalanche_problems"`
	ProblemsAlt      []rawProblem `json:"avalanche_problems"`
	ForecastZone     []rawZone    `json:"forecast_zone"`
}

type rawDanger struct {
	ValidDay string     `json:"valid_day"`
	Lower    *flexFloat `json:"lower"`
	Middle   *flexFloat `json:"middle"`
	Upper    *flexFloat `json:"upper"`
}

type rawProblem struct {
	Name       string         `json:"name"`
	Likelihood flexLikelihood `json:"likelihood"`
	Size       []flexFloat    `json:"size"`
	Location   []string       `json:"location"`
}

type rawZone struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	Url  string `json:"url"`
}

// flexFloat decodes a JSON number or a numeric string; centers serialize
// danger levels and avalanche sizes both ways.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	*f = flexFloat(v)
	return nil
}

// flexLikelihood decodes a categorical likelihood string, or the numeric
// 1-5 scale some centers serialize instead, onto the lowercase band name.
type flexLikelihood string

func (l *flexLikelihood) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		*l = flexLikelihood(LikelihoodBand(v))
		return nil
	}
	if data[0] == '"' {
		*l = flexLikelihood(strings.ToLower(raw))
	}
	return nil
}

func (r rawProduct) normalize() candidate {
	c := candidate{
		ProductId:     r.Id,
		BottomLine:    firstNonEmptyText(r.BottomLine, r.BottomLineCamel, r.Highlights, r.HazardDiscussion),
		TravelAdvice:  StripHTML(r.TravelAdvice),
		PublishedTime: parseProductTime(r.PublishedTime),
		ExpiresTime:   parseProductTime(r.ExpiresTime),
	}

	problems := r.Problems
	if len(problems) == 0 {
		problems = r.ProblemsAlt
	}
	for _, p := range problems {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		summary := ProblemSummary{
			Name:       strings.TrimSpace(p.Name),
			Likelihood: string(p.Likelihood),
			Terrain:    p.Location,
		}
		if len(p.Size) > 0 {
			min := float64(p.Size[0])
			max := float64(p.Size[len(p.Size)-1])
			summary.Size = SizeBand(min, max)
		}
		c.Problems = append(c.Problems, summary)
	}

	c.Bands = bandsFromDanger(r.Danger)

	for _, z := range r.ForecastZone {
		if z.Id != 0 {
			c.ZoneIds = append(c.ZoneIds, z.Id)
		}
		if z.Name != "" {
			c.ZoneNames = append(c.ZoneNames, z.Name)
		}
		if z.Slug != "" {
			c.ZoneSlugs = append(c.ZoneSlugs, z.Slug)
		}
		if c.Link == "" && z.Url != "" {
			c.Link = z.Url
		}
	}
	return c
}

// bandsFromDanger picks the "current" day's entry, falling back to the
// first entry, and builds elevation bands when any band carries a rating.
func bandsFromDanger(entries []rawDanger) *ElevationBands {
	var chosen *rawDanger
	for i := range entries {
		if strings.EqualFold(entries[i].ValidDay, "current") {
			chosen = &entries[i]
			break
		}
	}
	if chosen == nil && len(entries) > 0 {
		chosen = &entries[0]
	}
	if chosen == nil {
		return nil
	}

	lower := bandLevel(chosen.Lower)
	middle := bandLevel(chosen.Middle)
	upper := bandLevel(chosen.Upper)
	if lower == DangerNoRating && middle == DangerNoRating && upper == DangerNoRating {
		return nil
	}
	return &ElevationBands{
		Below: newBandRating(lower),
		At:    newBandRating(middle),
		Above: newBandRating(upper),
	}
}

func bandLevel(v *flexFloat) DangerLevel {
	if v == nil {
		return DangerNoRating
	}
	return ClampDanger(int(*v))
}

func parseProductTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func firstNonEmptyText(fields ...string) string {
	for _, f := range fields {
		if text := StripHTML(f); text != "" {
			return text
		}
	}
	return ""
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// StripHTML reduces an HTML fragment to plain collapsed text. Bulletin
// bottom lines arrive as markup from most centers.
func StripHTML(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}

// SlugFromLink derives a zone slug from the last path segment of the
// zone's public link.
func SlugFromLink(link string) string {
	link = strings.TrimRight(strings.TrimSpace(link), "/")
	if link == "" {
		return ""
	}
	if idx := strings.IndexAny(link, "?#"); idx >= 0 {
		link = strings.TrimRight(link[:idx], "/")
	}
	if idx := strings.LastIndex(link, "/"); idx >= 0 {
		link = link[idx+1:]
	}
	if strings.Contains(link, ".") || strings.EqualFold(link, "forecast") {
		return ""
	}
	return strings.ToLower(link)
}
