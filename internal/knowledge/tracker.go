package knowledge

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/forthing17-ops/signalcast-sub000/internal/config"
	"github.com/forthing17-ops/signalcast-sub000/internal/core"
	"github.com/forthing17-ops/signalcast-sub000/internal/logger"
	"github.com/forthing17-ops/signalcast-sub000/internal/store"
)

// Confidence adjustments applied per interaction. The base delta rewards
// any engagement; modifiers shift it on explicit signals.
const (
	baseConfidenceDelta = 0.05
	unhelpfulPenalty    = 0.02
	easyBonus           = 0.01
	hardBonus           = 0.03
	comprehensionScale  = 0.1
	contentCountWeight  = 0.3
	confidenceWeight    = 0.7
)

// Tracker owns per-(user, topic) knowledge state and the rules for
// advancing a topic between depth tiers. Updates for a given key are
// serialized through a striped lock; different users never contend on the
// same stripe semantics-wise (read-modify-write stays atomic per key).
type Tracker struct {
	cfg   config.Knowledge
	store store.KnowledgeStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewTracker creates a tracker over the given knowledge store.
func NewTracker(cfg config.Knowledge, knowledgeStore store.KnowledgeStore) *Tracker {
	return &Tracker{
		cfg:   cfg,
		store: knowledgeStore,
		locks: make(map[string]*sync.Mutex),
	}
}

// keyLock returns the mutex serializing updates for one (user, topic) key.
func (t *Tracker) keyLock(userID, topic string) *sync.Mutex {
	key := userID + "\x00" + topic

	t.mu.Lock()
	defer t.mu.Unlock()

	lock, ok := t.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[key] = lock
	}
	return lock
}

// RecordInteraction applies one interaction to every topic it touches and
// returns the updated states. A brand-new topic starts at beginner with
// whatever confidence the first interaction yields.
func (t *Tracker) RecordInteraction(userID string, interaction core.Interaction) ([]core.KnowledgeState, error) {
	var updated []core.KnowledgeState

	for _, topic := range interaction.Topics {
		topic = strings.ToLower(strings.TrimSpace(topic))
		if topic == "" {
			continue
		}

		state, err := t.recordTopicInteraction(userID, topic, interaction)
		if err != nil {
			return updated, err
		}
		updated = append(updated, state)
	}

	return updated, nil
}

// recordTopicInteraction performs the serialized read-modify-write for one
// (user, topic) key.
func (t *Tracker) recordTopicInteraction(userID, topic string, interaction core.Interaction) (core.KnowledgeState, error) {
	lock := t.keyLock(userID, topic)
	lock.Lock()
	defer lock.Unlock()

	existing, err := t.store.GetState(userID, topic)
	if err != nil {
		return core.KnowledgeState{}, fmt.Errorf("failed to load knowledge state for %s/%s: %w", userID, topic, err)
	}

	var state core.KnowledgeState
	if existing != nil {
		state = *existing
	} else {
		state = core.KnowledgeState{
			UserID:         userID,
			Topic:          topic,
			KnowledgeDepth: core.DepthBeginner,
		}
	}

	previousDepth := state.KnowledgeDepth
	state = t.apply(state, interaction)

	if err := t.store.PutState(state); err != nil {
		return core.KnowledgeState{}, fmt.Errorf("failed to persist knowledge state for %s/%s: %w", userID, topic, err)
	}

	if state.KnowledgeDepth != previousDepth {
		logger.Info("knowledge depth advanced",
			"user", userID, "topic", topic,
			"from", string(previousDepth), "to", string(state.KnowledgeDepth))
	}

	return state, nil
}

// apply computes the next state for one interaction. Pure with respect to
// its inputs; depth advancement is derived here and nowhere else.
func (t *Tracker) apply(state core.KnowledgeState, interaction core.Interaction) core.KnowledgeState {
	state.ContentCount++

	delta := baseConfidenceDelta
	if interaction.Unhelpful {
		delta -= unhelpfulPenalty
	}
	switch strings.ToLower(interaction.Difficulty) {
	case "easy":
		delta += easyBonus
	case "hard":
		delta += hardBonus
	}
	if interaction.Comprehension != nil {
		delta += comprehensionScale * (*interaction.Comprehension - 0.5)
	}

	state.ConfidenceLevel = clamp01(state.ConfidenceLevel + delta)

	occurredAt := interaction.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	state.LastInteraction = occurredAt

	if t.canAdvance(state) {
		state.KnowledgeDepth = state.KnowledgeDepth.Next()
	}

	return state
}

// depthThreshold returns the confidence required to leave the given depth.
func (t *Tracker) depthThreshold(depth core.KnowledgeDepth) float64 {
	switch depth {
	case core.DepthBeginner:
		return t.cfg.BeginnerThreshold
	case core.DepthIntermediate:
		return t.cfg.IntermediateThreshold
	default:
		return 1.0
	}
}

// Progression returns the normalized readiness to advance one depth tier.
// A value of 1.0 or above means the blend of content count and confidence
// has cleared the threshold for the current depth. Advanced is already
// maximal and returns 1.0.
func (t *Tracker) Progression(state core.KnowledgeState) float64 {
	if state.KnowledgeDepth == core.DepthAdvanced {
		return 1.0
	}

	countFactor := math.Min(1, float64(state.ContentCount)/float64(t.cfg.MinContentCount))
	blend := countFactor*contentCountWeight + state.ConfidenceLevel*confidenceWeight

	threshold := t.depthThreshold(state.KnowledgeDepth)
	if threshold <= 0 {
		return 1.0
	}
	return blend / threshold
}

// canAdvance applies the advancement rule: enough interactions, confidence
// at or above the per-tier threshold, and progression at 1.0 or better.
// Depth never regresses.
func (t *Tracker) canAdvance(state core.KnowledgeState) bool {
	if state.KnowledgeDepth == core.DepthAdvanced {
		return false
	}
	if state.ContentCount < t.cfg.MinContentCount {
		return false
	}
	if state.ConfidenceLevel < t.depthThreshold(state.KnowledgeDepth) {
		return false
	}
	return t.Progression(state) >= 1.0
}

// CanProgress reports whether the state is ready to advance and, if so, the
// tier it would advance to.
func (t *Tracker) CanProgress(state core.KnowledgeState) (bool, core.KnowledgeDepth) {
	if t.canAdvance(state) {
		return true, state.KnowledgeDepth.Next()
	}
	return false, state.KnowledgeDepth
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
