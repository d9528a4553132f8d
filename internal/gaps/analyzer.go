package gaps

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/forthing17-ops/signalcast-sub000/internal/config"
	"github.com/forthing17-ops/signalcast-sub000/internal/core"
)

// Analyzer combines the static prerequisite graph with live knowledge state
// to classify gaps, score their severity, and order a learning path.
// Stateless between calls: analysis is derived, recomputed each time, and
// idempotent for unchanged inputs.
type Analyzer struct {
	cfg     config.Gaps
	prereqs *config.Prerequisites
}

// NewAnalyzer creates an analyzer over a loaded, validated prerequisite
// graph.
func NewAnalyzer(cfg config.Gaps, prereqs *config.Prerequisites) *Analyzer {
	return &Analyzer{cfg: cfg, prereqs: prereqs}
}

// detectionRule is one pure gap-detection predicate. Rules run in slice
// order so detection precedence stays explicit and independently testable.
type detectionRule struct {
	name   string
	detect func(a *Analyzer, states map[string]core.KnowledgeState, profile core.UserProfile) []core.KnowledgeGap
}

var detectionRules = []detectionRule{
	{name: "prerequisite", detect: (*Analyzer).prerequisiteGaps},
	{name: "shallow", detect: (*Analyzer).shallowGaps},
	{name: "outdated", detect: (*Analyzer).outdatedGaps},
	{name: "missing_interest", detect: (*Analyzer).interestGaps},
}

// Analyze runs all detection rules over the user's knowledge state and
// declared interests, producing the sorted gap set and learning path.
func (a *Analyzer) Analyze(userID string, states []core.KnowledgeState, profile core.UserProfile) (core.GapAnalysisResult, error) {
	byTopic := make(map[string]core.KnowledgeState, len(states))
	for _, state := range states {
		byTopic[strings.ToLower(state.Topic)] = state
	}

	var gaps []core.KnowledgeGap
	for _, rule := range detectionRules {
		gaps = append(gaps, rule.detect(a, byTopic, profile)...)
	}

	sortGaps(gaps)

	path, err := a.learningPath(gaps)
	if err != nil {
		return core.GapAnalysisResult{}, fmt.Errorf("failed to build learning path: %w", err)
	}

	counts := make(map[core.GapSeverity]int)
	for _, gap := range gaps {
		counts[gap.Severity]++
	}

	return core.GapAnalysisResult{
		UserID:             userID,
		Gaps:               gaps,
		CountsBySeverity:   counts,
		LearningPath:       path,
		RecommendedActions: recommendedActions(gaps),
		AnalyzedAt:         time.Now().UTC(),
	}, nil
}

// prerequisiteGaps walks the prerequisite list of every topic the user has
// engaged with. A prerequisite with no knowledge-state row, or confidence
// below the detection threshold, is flagged.
func (a *Analyzer) prerequisiteGaps(states map[string]core.KnowledgeState, _ core.UserProfile) []core.KnowledgeGap {
	// One merged gap per weak prerequisite, tracking every dependent topic.
	type pending struct {
		gap        core.KnowledgeGap
		dependents []string
		combined   float64
	}
	merged := make(map[string]*pending)

	for _, topic := range sortedKeys(states) {
		dependent := a.prereqs.Get(topic)
		for _, prereq := range dependent.Prerequisites {
			state, engaged := states[prereq]
			if engaged && state.ConfidenceLevel >= a.cfg.DetectionThreshold {
				continue
			}

			foundational := a.FoundationalImportance(prereq)
			combined := (dependent.Importance + foundational) / 2

			entry, ok := merged[prereq]
			if !ok {
				entry = &pending{
					gap: core.KnowledgeGap{
						Topic:        prereq,
						Type:         core.GapPrerequisite,
						Foundational: foundational,
						SuggestedContent: []string{
							fmt.Sprintf("introductory %s material", prereq),
							fmt.Sprintf("%s fundamentals before returning to %s", prereq, topic),
						},
					},
				}
				merged[prereq] = entry
			}
			entry.dependents = append(entry.dependents, topic)
			// A prerequisite blocking several topics takes the strongest signal.
			entry.combined = math.Max(entry.combined, combined)
		}
	}

	var gaps []core.KnowledgeGap
	for _, prereq := range sortedPendingKeys(merged) {
		entry := merged[prereq]
		entry.gap.RelatedTopics = entry.dependents
		entry.gap.Severity = severityFromImportance(entry.combined)
		entry.gap.Priority = clamp01(entry.combined)
		gaps = append(gaps, entry.gap)
	}
	return gaps
}

// shallowGaps flags topics with sustained engagement but low confidence.
func (a *Analyzer) shallowGaps(states map[string]core.KnowledgeState, _ core.UserProfile) []core.KnowledgeGap {
	var gaps []core.KnowledgeGap
	for _, topic := range sortedKeys(states) {
		state := states[topic]
		if state.ConfidenceLevel < a.cfg.ShallowThreshold && state.ContentCount >= 3 {
			gaps = append(gaps, core.KnowledgeGap{
				Topic:        topic,
				Type:         core.GapShallow,
				Severity:     core.SeverityMedium,
				Priority:     clamp01(a.cfg.ShallowThreshold - state.ConfidenceLevel + 0.5),
				Foundational: a.FoundationalImportance(topic),
				SuggestedContent: []string{
					fmt.Sprintf("deeper %s content with worked examples", topic),
				},
			})
		}
	}
	return gaps
}

// outdatedGaps flags topics the user once knew well but has not touched for
// the configured staleness window.
func (a *Analyzer) outdatedGaps(states map[string]core.KnowledgeState, _ core.UserProfile) []core.KnowledgeGap {
	staleAfter := time.Duration(a.cfg.OutdatedAfterDays) * 24 * time.Hour
	cutoff := time.Now().UTC().Add(-staleAfter)

	var gaps []core.KnowledgeGap
	for _, topic := range sortedKeys(states) {
		state := states[topic]
		if state.ConfidenceLevel > a.cfg.OutdatedThreshold && !state.LastInteraction.IsZero() && state.LastInteraction.Before(cutoff) {
			gaps = append(gaps, core.KnowledgeGap{
				Topic:        topic,
				Type:         core.GapOutdated,
				Severity:     core.SeverityLow,
				Priority:     0.3,
				Foundational: a.FoundationalImportance(topic),
				SuggestedContent: []string{
					fmt.Sprintf("recent developments in %s", topic),
				},
			})
		}
	}
	return gaps
}

// interestGaps flags declared interests and curiosity topics with no
// knowledge state at all.
func (a *Analyzer) interestGaps(states map[string]core.KnowledgeState, profile core.UserProfile) []core.KnowledgeGap {
	declared := append(append([]string{}, profile.Interests...), profile.CuriosityTopics...)

	seen := make(map[string]bool)
	var gaps []core.KnowledgeGap
	for _, topic := range declared {
		topic = strings.ToLower(strings.TrimSpace(topic))
		if topic == "" || seen[topic] {
			continue
		}
		seen[topic] = true

		if _, engaged := states[topic]; engaged {
			continue
		}

		gaps = append(gaps, core.KnowledgeGap{
			Topic:        topic,
			Type:         core.GapMissing,
			Severity:     core.SeverityMedium,
			Priority:     0.5,
			Foundational: a.FoundationalImportance(topic),
			SuggestedContent: []string{
				fmt.Sprintf("starter %s content matched to your stack", topic),
			},
		})
	}
	return gaps
}

// FoundationalImportance is the topic's base importance plus a bonus
// proportional to how many other topics list it as a prerequisite, capped
// at 1.
func (a *Analyzer) FoundationalImportance(topic string) float64 {
	base := a.prereqs.Get(topic).Importance
	bonus := 0.05 * float64(a.prereqs.FanIn(topic))
	return clamp01(base + bonus)
}

// Readiness returns the fraction of a topic's direct prerequisites whose
// confidence meets the detection threshold. A topic with no prerequisites
// is fully ready.
func (a *Analyzer) Readiness(topic string, states []core.KnowledgeState) float64 {
	prereqs := a.prereqs.DirectPrerequisites(topic)
	if len(prereqs) == 0 {
		return 1.0
	}

	byTopic := make(map[string]core.KnowledgeState, len(states))
	for _, state := range states {
		byTopic[strings.ToLower(state.Topic)] = state
	}

	met := 0
	for _, prereq := range prereqs {
		if state, ok := byTopic[prereq]; ok && state.ConfidenceLevel >= a.cfg.DetectionThreshold {
			met++
		}
	}
	return float64(met) / float64(len(prereqs))
}

// severityFromImportance maps combined importance to severity bands.
func severityFromImportance(combined float64) core.GapSeverity {
	switch {
	case combined > 0.8:
		return core.SeverityCritical
	case combined > 0.6:
		return core.SeverityHigh
	case combined > 0.4:
		return core.SeverityMedium
	default:
		return core.SeverityLow
	}
}

// sortGaps orders by severity desc, then priority desc, then topic for a
// stable, idempotent result.
func sortGaps(gaps []core.KnowledgeGap) {
	sort.SliceStable(gaps, func(i, j int) bool {
		if gaps[i].Severity.Rank() != gaps[j].Severity.Rank() {
			return gaps[i].Severity.Rank() > gaps[j].Severity.Rank()
		}
		if gaps[i].Priority != gaps[j].Priority {
			return gaps[i].Priority > gaps[j].Priority
		}
		return gaps[i].Topic < gaps[j].Topic
	})
}

// recommendedActions derives next-step text from the highest-ranked gaps.
func recommendedActions(gaps []core.KnowledgeGap) []string {
	var actions []string
	for _, gap := range gaps {
		if len(actions) == 3 {
			break
		}
		switch gap.Type {
		case core.GapPrerequisite:
			actions = append(actions, fmt.Sprintf("Build a foundation in %s; it blocks %s", gap.Topic, strings.Join(gap.RelatedTopics, ", ")))
		case core.GapShallow:
			actions = append(actions, fmt.Sprintf("Go deeper on %s; engagement is there but confidence is not", gap.Topic))
		case core.GapOutdated:
			actions = append(actions, fmt.Sprintf("Refresh %s; your knowledge there is getting stale", gap.Topic))
		case core.GapMissing:
			actions = append(actions, fmt.Sprintf("Start exploring %s from your declared interests", gap.Topic))
		}
	}
	return actions
}

func sortedKeys(states map[string]core.KnowledgeState) []string {
	keys := make([]string, 0, len(states))
	for topic := range states {
		keys = append(keys, topic)
	}
	sort.Strings(keys)
	return keys
}

func sortedPendingKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
