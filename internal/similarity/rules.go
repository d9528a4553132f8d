package similarity

import (
	"math"
	"strings"

	"github.com/forthing17-ops/signalcast-sub000/internal/config"
	"github.com/forthing17-ops/signalcast-sub000/internal/core"
)

// ruleOutcome is a classification decision: the relationship type plus the
// direction, when direction matters.
type ruleOutcome struct {
	relType  core.RelationshipType
	parentID string
	childID  string
}

// classificationRule is one pure predicate in the ordered rule cascade. The
// first rule to return an outcome wins, which keeps the precedence explicit
// and each rule independently testable.
type classificationRule struct {
	name  string
	apply func(cfg config.Similarity, cmp Comparison, a, b core.ContentItem, complexityA, complexityB float64) *ruleOutcome
}

var classificationRules = []classificationRule{
	{name: "strong_relation", apply: strongRelationRule},
	{name: "moderate_prerequisite", apply: moderatePrerequisiteRule},
	{name: "contrast", apply: contrastRule},
}

// classifyPair runs the ordered rules. A nil result means no relationship.
func classifyPair(cfg config.Similarity, cmp Comparison, a, b core.ContentItem, complexityA, complexityB float64) *ruleOutcome {
	for _, rule := range classificationRules {
		if outcome := rule.apply(cfg, cmp, a, b, complexityA, complexityB); outcome != nil {
			return outcome
		}
	}
	return nil
}

// strongRelationRule: similarity above the strong threshold. A complexity
// spread wider than the configured delta makes the pair builds_on, directed
// from the simpler item to the more complex one; otherwise related.
func strongRelationRule(cfg config.Similarity, cmp Comparison, a, b core.ContentItem, complexityA, complexityB float64) *ruleOutcome {
	if cmp.Similarity <= cfg.StrongThreshold {
		return nil
	}

	if math.Abs(complexityA-complexityB) > cfg.ComplexityDelta {
		parent, child := a.ID, b.ID
		if complexityB < complexityA {
			parent, child = b.ID, a.ID
		}
		return &ruleOutcome{relType: core.RelBuildsOn, parentID: parent, childID: child}
	}
	return &ruleOutcome{relType: core.RelRelated, parentID: a.ID, childID: b.ID}
}

// moderatePrerequisiteRule: moderate similarity with high topic overlap.
// Keyword heuristics decide whether one item reads as foundational and the
// other as advanced; if so the pair is a prerequisite directed from the
// fundamental item, otherwise related.
func moderatePrerequisiteRule(cfg config.Similarity, cmp Comparison, a, b core.ContentItem, _, _ float64) *ruleOutcome {
	if cmp.Similarity <= cfg.ModerateThreshold || cmp.Similarity > cfg.StrongThreshold {
		return nil
	}
	if cmp.Overlap <= 0.5 {
		return nil
	}

	aFundamental, aAdvanced := languageSignals(a)
	bFundamental, bAdvanced := languageSignals(b)

	if aFundamental && bAdvanced && !aAdvanced {
		return &ruleOutcome{relType: core.RelPrerequisite, parentID: a.ID, childID: b.ID}
	}
	if bFundamental && aAdvanced && !bAdvanced {
		return &ruleOutcome{relType: core.RelPrerequisite, parentID: b.ID, childID: a.ID}
	}
	return &ruleOutcome{relType: core.RelRelated, parentID: a.ID, childID: b.ID}
}

// contrastRule: low similarity despite meaningful topic overlap means the
// two items treat the same subject in divergent ways.
func contrastRule(cfg config.Similarity, cmp Comparison, a, b core.ContentItem, _, _ float64) *ruleOutcome {
	if cmp.Similarity >= cfg.ContrastThreshold {
		return nil
	}
	if cmp.Overlap <= 0.3 {
		return nil
	}
	return &ruleOutcome{relType: core.RelContrasts, parentID: a.ID, childID: b.ID}
}

var fundamentalKeywords = []string{
	"introduction", "intro to", "getting started", "fundamental", "basics",
	"beginner", "primer", "101", "what is", "guide to",
}

var advancedKeywords = []string{
	"advanced", "optimization", "deep dive", "internals", "performance tuning",
	"scaling", "production", "mastering", "expert",
}

// languageSignals detects foundational vs advanced framing in an item's
// title and body.
func languageSignals(item core.ContentItem) (fundamental, advanced bool) {
	text := strings.ToLower(item.Title + " " + item.Body)
	for _, kw := range fundamentalKeywords {
		if strings.Contains(text, kw) {
			fundamental = true
			break
		}
	}
	for _, kw := range advancedKeywords {
		if strings.Contains(text, kw) {
			advanced = true
			break
		}
	}
	return fundamental, advanced
}
