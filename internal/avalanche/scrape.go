package avalanche

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Page extraction is the last structured-free resort: several centers serve
// a detail API that returns an empty shell while the public page carries a
// full narrative. Extraction collects bottom-line candidates from a handful
// of patterns and scores them, rather than trusting any single selector.

var (
	bottomLineBlockPattern = regexp.MustCompile(`(?is)<(?:div|section|span)[^>]*(?:class|id)="[^"]*bottom[-_ ]?line[^"]*"[^>]*>(.*?)</(?:div|section|span)>`)
	metaDescriptionPattern = regexp.MustCompile(`(?is)<meta[^>]+(?:name|property)="(?:og:)?description"[^>]+content="([^"]+)"`)
	paragraphPattern       = regexp.MustCompile(`(?is)<p[^>]*>(.*?)</p>`)

	bottomLineKeywords = []string{
		"avalanche", "slab", "snowpack", "danger", "wind", "persistent",
		"cornice", "loose", "storm", "trigger", "unstable",
	}

	// knownProblemNames is ordered by specificity so "Deep Persistent Slab"
	// is not shadowed by "Persistent Slab".
	knownProblemNames = []string{
		"Deep Persistent Slab", "Persistent Slab", "Storm Slab", "Wind Slab",
		"Wet Slab", "Loose Wet", "Loose Dry", "Cornice Fall",
		"Glide Avalanche", "Normal Caution",
	}

	bandDigitPatterns = map[string]*regexp.Regexp{
		"above": regexp.MustCompile(`(?is)above\s+treeline\D{0,60}?([1-5])`),
		"at":    regexp.MustCompile(`(?is)(?:near|at)\s+treeline\D{0,60}?([1-5])`),
		"below": regexp.MustCompile(`(?is)below\s+treeline\D{0,60}?([1-5])`),
	}
)

const (
	// extractLengthCap stops enormous boilerplate blocks from outscoring a
	// genuine three-sentence bottom line on length alone.
	extractLengthCap     = 600
	extractKeywordBonus  = 40
	extractMinTextLength = 40
)

// extractBottomLine returns the best bottom-line candidate found in the
// page, or "" when nothing scores.
func extractBottomLine(page string) string {
	var best string
	bestScore := 0

	consider := func(text string) {
		text = StripHTML(text)
		if len(text) < extractMinTextLength {
			return
		}
		score := scoreExtractedText(text)
		if score > bestScore {
			best, bestScore = text, score
		}
	}

	for _, m := range bottomLineBlockPattern.FindAllStringSubmatch(page, -1) {
		consider(m[1])
	}
	for _, m := range metaDescriptionPattern.FindAllStringSubmatch(page, -1) {
		consider(m[1])
	}
	for _, m := range paragraphPattern.FindAllStringSubmatch(page, -1) {
		consider(m[1])
	}
	return best
}

func scoreExtractedText(text string) int {
	score := len(text)
	if score > extractLengthCap {
		score = extractLengthCap
	}
	lower := strings.ToLower(text)
	for _, kw := range bottomLineKeywords {
		if strings.Contains(lower, kw) {
			score += extractKeywordBonus
		}
	}
	return score
}

// extractProblemNames scans the page text for known avalanche problem
// names, deduplicated in order of first appearance.
func extractProblemNames(page string) []ProblemSummary {
	text := strings.ToLower(StripHTML(page))
	type hit struct {
		name string
		pos  int
	}
	var hits []hit

	// Mask each match so "Persistent Slab" cannot re-match inside an
	// already-claimed "Deep Persistent Slab".
	for _, name := range knownProblemNames {
		lower := strings.ToLower(name)
		if idx := strings.Index(text, lower); idx >= 0 {
			hits = append(hits, hit{name: name, pos: idx})
			text = text[:idx] + strings.Repeat("#", len(lower)) + text[idx+len(lower):]
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	out := make([]ProblemSummary, 0, len(hits))
	for _, h := range hits {
		out = append(out, ProblemSummary{Name: h.name})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// extractBandDangers pulls per-band danger digits out of the page. All
// three bands must be present; a partial read is worse than none.
func extractBandDangers(page string) *ElevationBands {
	levels := make(map[string]DangerLevel, 3)
	for band, pattern := range bandDigitPatterns {
		m := pattern.FindStringSubmatch(page)
		if m == nil {
			return nil
		}
		v, err := strconv.Atoi(m[1])
		if err != nil {
			return nil
		}
		levels[band] = ClampDanger(v)
	}
	return &ElevationBands{
		Below: newBandRating(levels["below"]),
		At:    newBandRating(levels["at"]),
		Above: newBandRating(levels["above"]),
	}
}
