package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/forthing17-ops/signalcast-sub000/internal/config"
	"github.com/forthing17-ops/signalcast-sub000/internal/core"
	"github.com/forthing17-ops/signalcast-sub000/internal/textutil"
)

// Weights defines the relative importance of the scoring factors. After any
// override the weights are re-normalized to sum to 1.
type Weights struct {
	Relevance float64 `json:"relevance"` // Weight for profile-match relevance
	Quality   float64 `json:"quality"`   // Weight for platform quality signals
	Recency   float64 `json:"recency"`   // Weight for content freshness
	Diversity float64 `json:"diversity"` // Weight for the repetition penalty
}

// normalized returns the weights scaled so they sum to 1. Zero or negative
// totals fall back to the configured defaults.
func (w Weights) normalized(fallback Weights) Weights {
	sum := w.Relevance + w.Quality + w.Recency + w.Diversity
	if sum <= 0 {
		return fallback
	}
	return Weights{
		Relevance: w.Relevance / sum,
		Quality:   w.Quality / sum,
		Recency:   w.Recency / sum,
		Diversity: w.Diversity / sum,
	}
}

// Score is the result of scoring one content item.
type Score struct {
	ContentID string             `json:"content_id"`
	Value     float64            `json:"value"`     // Composite score, 0..100
	Factors   map[string]float64 `json:"factors"`   // Individual sub-scores (relevance, quality, recency, diversity_penalty)
	Reasoning string             `json:"reasoning"` // Human-readable explanation of the score
}

// Scorer combines relevance, quality, recency, and diversity signals into a
// single 0..100 score per content item. Pure: scoring has no side effects,
// and batch results depend only on input order.
type Scorer struct {
	cfg      config.Scoring
	defaults Weights
}

// NewScorer creates a scorer from the engine configuration.
func NewScorer(cfg config.Scoring) *Scorer {
	return &Scorer{
		cfg: cfg,
		defaults: Weights{
			Relevance: cfg.RelevanceWeight,
			Quality:   cfg.QualityWeight,
			Recency:   cfg.RecencyWeight,
			Diversity: cfg.DiversityWeight,
		}.normalized(Weights{Relevance: 0.4, Quality: 0.3, Recency: 0.2, Diversity: 0.1}),
	}
}

// Score calculates the composite score for a single item. alreadyScored is
// the window of items the user was already shown in this batch; the
// diversity penalty is evaluated against it.
func (s *Scorer) Score(item core.ContentItem, profile core.UserProfile, alreadyScored []core.ContentItem) Score {
	return s.score(item, profile, alreadyScored, s.defaults)
}

// ScoreWithWeights is Score with a caller-supplied weight override. The
// override is re-normalized so the weights always sum to 1.
func (s *Scorer) ScoreWithWeights(item core.ContentItem, profile core.UserProfile, alreadyScored []core.ContentItem, weights Weights) Score {
	return s.score(item, profile, alreadyScored, weights.normalized(s.defaults))
}

// ScoreBatch scores items in input order. Each item's diversity penalty
// sees only previously processed items, so results are deterministic and
// reproducible for a fixed input order.
func (s *Scorer) ScoreBatch(items []core.ContentItem, profile core.UserProfile) []Score {
	scores := make([]Score, 0, len(items))
	for i, item := range items {
		scores = append(scores, s.Score(item, profile, items[:i]))
	}
	return scores
}

func (s *Scorer) score(item core.ContentItem, profile core.UserProfile, alreadyScored []core.ContentItem, weights Weights) Score {
	factors := make(map[string]float64)

	factors["relevance"] = s.relevanceScore(item, profile)
	factors["quality"] = qualityScore(item)
	factors["recency"] = s.recencyScore(item, time.Now().UTC())
	factors["diversity_penalty"] = diversityPenalty(item, alreadyScored)

	value := factors["relevance"]*weights.Relevance +
		factors["quality"]*weights.Quality +
		factors["recency"]*weights.Recency -
		factors["diversity_penalty"]*weights.Diversity

	value = math.Max(0, math.Min(100, value))

	return Score{
		ContentID: item.ID,
		Value:     value,
		Factors:   factors,
		Reasoning: reasoning(factors),
	}
}

// relevanceScore measures profile match: +10 per matched interest (cap 50),
// +8 per matched tech-stack entry (cap 40), +10 if a role keyword appears.
// Matching is case-insensitive substring matching widened by the synonym
// table.
func (s *Scorer) relevanceScore(item core.ContentItem, profile core.UserProfile) float64 {
	text := strings.ToLower(item.Title + " " + item.Body + " " + strings.Join(item.Topics, " "))

	interestScore := 0.0
	for _, interest := range profile.Interests {
		if textutil.ContainsAny(text, s.cfg.ExpandKeyword(interest)) {
			interestScore += 10
		}
	}
	interestScore = math.Min(50, interestScore)

	stackScore := 0.0
	for _, tech := range profile.TechStack {
		if textutil.ContainsAny(text, s.cfg.ExpandKeyword(tech)) {
			stackScore += 8
		}
	}
	stackScore = math.Min(40, stackScore)

	roleScore := 0.0
	if textutil.ContainsAny(text, textutil.Words(profile.Role)) {
		roleScore = 10
	}

	return math.Min(100, interestScore+stackScore+roleScore)
}

// recencyScore decays linearly from 100 at age zero to 0 at the configured
// horizon. Content older than the horizon scores 0, never negative.
func (s *Scorer) recencyScore(item core.ContentItem, now time.Time) float64 {
	maxAge := s.cfg.MaxAgeHours
	if maxAge <= 0 {
		maxAge = 168
	}

	ageHours := now.Sub(item.PublishedAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	if ageHours >= maxAge {
		return 0
	}
	return 100 * (1 - ageHours/maxAge)
}

// diversityPenalty accumulates penalty tiers for word overlap with each
// already-scored item: >0.7 adds 50, >0.5 adds 30, >0.3 adds 15. Capped
// at 100.
func diversityPenalty(item core.ContentItem, alreadyScored []core.ContentItem) float64 {
	if len(alreadyScored) == 0 {
		return 0
	}

	itemWords := textutil.WordSet(item.Title + " " + item.Body)

	penalty := 0.0
	for _, prior := range alreadyScored {
		overlap := textutil.JaccardSets(itemWords, textutil.WordSet(prior.Title+" "+prior.Body))
		switch {
		case overlap > 0.7:
			penalty += 50
		case overlap > 0.5:
			penalty += 30
		case overlap > 0.3:
			penalty += 15
		}
	}

	return math.Min(100, penalty)
}

// reasoning creates a human-readable explanation of the score.
func reasoning(factors map[string]float64) string {
	var reasons []string

	if factors["relevance"] >= 50 {
		reasons = append(reasons, "Strong profile match")
	} else if factors["relevance"] < 15 {
		reasons = append(reasons, "Weak profile match")
	}

	if factors["quality"] >= 70 {
		reasons = append(reasons, "High quality signals")
	}

	if factors["recency"] >= 80 {
		reasons = append(reasons, "Very recent")
	} else if factors["recency"] == 0 {
		reasons = append(reasons, "Past freshness horizon")
	}

	if factors["diversity_penalty"] >= 30 {
		reasons = append(reasons, fmt.Sprintf("Similar to %d%% of recent items", int(factors["diversity_penalty"])))
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "Mixed relevance indicators")
	}

	return strings.Join(reasons, "; ")
}
