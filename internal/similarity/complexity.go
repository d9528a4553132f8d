package similarity

import (
	"math"
	"strings"

	"github.com/forthing17-ops/signalcast-sub000/internal/core"
)

// Keyword tiers used to estimate how demanding a piece of content is. The
// same 0..1 scale feeds builds_on direction and cluster complexity.
var (
	introductoryMarkers = []string{
		"introduction", "beginner", "basics", "getting started", "tutorial",
		"what is", "simple", "first steps",
	}
	advancedMarkers = []string{
		"advanced", "optimization", "architecture", "internals", "scalability",
		"distributed", "performance", "concurrency", "deep dive",
	}
)

// ComplexityScore estimates content complexity in [0,1] from framing
// keywords, body length, and topic breadth. A heuristic, not a model: it
// only has to separate introductory from demanding content well enough to
// direct builds_on edges.
func ComplexityScore(item core.ContentItem) float64 {
	text := strings.ToLower(item.Title + " " + item.Body)

	score := 0.4

	for _, marker := range introductoryMarkers {
		if strings.Contains(text, marker) {
			score -= 0.1
		}
	}
	for _, marker := range advancedMarkers {
		if strings.Contains(text, marker) {
			score += 0.1
		}
	}

	// Long-form content trends deeper.
	switch length := len(item.Body); {
	case length > 5000:
		score += 0.15
	case length > 2000:
		score += 0.05
	case length < 300:
		score -= 0.1
	}

	// Breadth of topic tags correlates with scope.
	if len(item.Topics) > 3 {
		score += 0.05
	}

	return math.Max(0, math.Min(1, score))
}
