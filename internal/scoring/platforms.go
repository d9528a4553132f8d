package scoring

import (
	"math"
	"strings"

	"github.com/forthing17-ops/signalcast-sub000/internal/core"
)

// platformHeuristic maps one platform's engagement signals to a 0..100
// quality sub-score.
type platformHeuristic func(item core.ContentItem) float64

// platformHeuristics registers per-platform quality scoring. Unknown
// platforms fall back to genericQuality.
var platformHeuristics = map[string]platformHeuristic{
	"reddit":      redditQuality,
	"hackernews":  hackerNewsQuality,
	"producthunt": productHuntQuality,
}

// qualityScore dispatches to the platform heuristic, or the generic
// content-shape heuristic when the platform is unknown.
func qualityScore(item core.ContentItem) float64 {
	if heuristic, ok := platformHeuristics[strings.ToLower(item.Platform)]; ok {
		return clamp100(heuristic(item))
	}
	return clamp100(genericQuality(item))
}

// redditQuality scores on upvotes, comment count, and an allow-list bonus
// for substantive subreddit categories.
func redditQuality(item core.ContentItem) float64 {
	score := 20.0

	upvotes := metadataNumber(item, "upvotes", "ups", "score")
	score += 40 * saturate(upvotes/500)

	comments := metadataNumber(item, "comments", "num_comments")
	score += 25 * saturate(comments/100)

	allowedCategories := []string{"programming", "engineering", "science", "technology", "datascience"}
	if category, ok := item.Metadata["category"].(string); ok {
		for _, allowed := range allowedCategories {
			if strings.EqualFold(category, allowed) {
				score += 15
				break
			}
		}
	}

	return score
}

// hackerNewsQuality scores on points and discussion volume.
func hackerNewsQuality(item core.ContentItem) float64 {
	score := 25.0
	score += 45 * saturate(metadataNumber(item, "points", "score")/300)
	score += 30 * saturate(metadataNumber(item, "comments", "descendants")/150)
	return score
}

// productHuntQuality scores on votes with a small bonus for topic breadth.
func productHuntQuality(item core.ContentItem) float64 {
	score := 25.0
	score += 50 * saturate(metadataNumber(item, "votes", "votes_count")/400)
	score += math.Min(25, float64(len(item.Topics))*5)
	return score
}

// genericQuality is the fallback for platforms without a registered
// heuristic: content length plus topic coverage.
func genericQuality(item core.ContentItem) float64 {
	score := 30.0

	length := len(item.Body)
	switch {
	case length > 2000:
		score += 40
	case length > 500:
		score += 25
	case length < 100:
		score -= 20
	}

	score += math.Min(30, float64(len(item.Topics))*10)

	return score
}

// metadataNumber reads the first numeric metadata field matching one of the
// given keys. JSON unmarshaling produces float64; ingested records may also
// carry int.
func metadataNumber(item core.ContentItem, keys ...string) float64 {
	for _, key := range keys {
		switch v := item.Metadata[key].(type) {
		case float64:
			return v
		case int:
			return float64(v)
		}
	}
	return 0
}

// saturate clamps a ratio to [0,1].
func saturate(ratio float64) float64 {
	return math.Max(0, math.Min(1, ratio))
}

func clamp100(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
