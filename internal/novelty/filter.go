package novelty

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/forthing17-ops/signalcast-sub000/internal/config"
	"github.com/forthing17-ops/signalcast-sub000/internal/core"
	"github.com/forthing17-ops/signalcast-sub000/internal/similarity"
	"github.com/forthing17-ops/signalcast-sub000/internal/store"
)

// Filter decides whether a candidate item is too similar to content the
// user has already been delivered. Only the delivery log is consulted, not
// all historical content.
type Filter struct {
	cfg        config.Novelty
	engine     *similarity.Engine
	deliveries store.DeliveryLog
}

// NewFilter creates an anti-repetition filter over the similarity engine
// and the user's delivery log.
func NewFilter(cfg config.Novelty, engine *similarity.Engine, deliveries store.DeliveryLog) *Filter {
	return &Filter{cfg: cfg, engine: engine, deliveries: deliveries}
}

// EffectiveThreshold computes the similarity threshold for a novelty
// preference: base high threshold minus noveltyPreference times the scale.
// Higher novelty preference means lower tolerance for similar content, so
// the threshold is monotonically non-increasing in the preference.
func (f *Filter) EffectiveThreshold(noveltyPreference float64) float64 {
	noveltyPreference = math.Max(0, math.Min(1, noveltyPreference))
	return f.cfg.HighThreshold - noveltyPreference*f.cfg.NoveltyScale
}

// IsRepetitive compares the candidate against every item delivered to the
// user. Cached similarity records are reused through the engine's cache.
// All matches at or above the threshold are returned, not just a boolean.
func (f *Filter) IsRepetitive(ctx context.Context, candidate core.ContentItem, userID string, noveltyPreference float64, delivered []core.ContentItem) (core.RepetitionVerdict, error) {
	threshold := f.EffectiveThreshold(noveltyPreference)
	verdict := core.RepetitionVerdict{
		ContentID:     candidate.ID,
		ThresholdUsed: threshold,
	}

	deliveredIDs, err := f.deliveries.ListDelivered(userID)
	if err != nil {
		return verdict, fmt.Errorf("failed to read delivery log for %s: %w", userID, err)
	}

	deliveredSet := make(map[string]bool, len(deliveredIDs))
	for _, id := range deliveredIDs {
		deliveredSet[id] = true
	}

	for _, item := range delivered {
		if !deliveredSet[item.ID] || item.ID == candidate.ID {
			continue
		}

		// CompareDelivered, not Compare: the topic prefilter must not hide
		// a near-duplicate whose tags happen to differ.
		cmp, err := f.engine.CompareDelivered(ctx, candidate, item)
		if err != nil {
			return verdict, fmt.Errorf("failed to compare %s with delivered %s: %w", candidate.ID, item.ID, err)
		}

		if cmp.Similarity >= threshold {
			verdict.Matches = append(verdict.Matches, core.RepetitionMatch{
				ContentID:  item.ID,
				Similarity: cmp.Similarity,
			})
		}
	}

	sort.Slice(verdict.Matches, func(i, j int) bool {
		if verdict.Matches[i].Similarity != verdict.Matches[j].Similarity {
			return verdict.Matches[i].Similarity > verdict.Matches[j].Similarity
		}
		return verdict.Matches[i].ContentID < verdict.Matches[j].ContentID
	})

	verdict.IsRepetitive = len(verdict.Matches) > 0
	return verdict, nil
}
