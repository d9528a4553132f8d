package gaps

import (
	"testing"
	"time"

	"github.com/forthing17-ops/signalcast-sub000/internal/config"
	"github.com/forthing17-ops/signalcast-sub000/internal/core"
)

func testGapsConfig() config.Gaps {
	return config.Gaps{
		DetectionThreshold: 0.3,
		ShallowThreshold:   0.5,
		OutdatedThreshold:  0.7,
		OutdatedAfterDays:  180,
	}
}

func testAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	prereqs, err := config.LoadPrerequisites(&config.Config{})
	if err != nil {
		t.Fatalf("LoadPrerequisites failed: %v", err)
	}
	return NewAnalyzer(testGapsConfig(), prereqs)
}

func TestPrerequisiteGapMissingFoundation(t *testing.T) {
	analyzer := testAnalyzer(t)

	// Engaged with react, javascript and css known, html never touched.
	states := []core.KnowledgeState{
		{UserID: "u", Topic: "react", ConfidenceLevel: 0.6, ContentCount: 5},
		{UserID: "u", Topic: "javascript", ConfidenceLevel: 0.8, ContentCount: 10},
		{UserID: "u", Topic: "css", ConfidenceLevel: 0.5, ContentCount: 4},
	}

	result, err := analyzer.Analyze("u", states, core.UserProfile{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	var htmlGap *core.KnowledgeGap
	for i := range result.Gaps {
		if result.Gaps[i].Topic == "html" && result.Gaps[i].Type == core.GapPrerequisite {
			htmlGap = &result.Gaps[i]
		}
	}
	if htmlGap == nil {
		t.Fatalf("Expected a prerequisite gap for html, got %+v", result.Gaps)
	}

	// html blocks react directly and also css and javascript (both list it).
	foundReact := false
	for _, dep := range htmlGap.RelatedTopics {
		if dep == "react" {
			foundReact = true
		}
	}
	if !foundReact {
		t.Errorf("Expected react among dependents of the html gap, got %v", htmlGap.RelatedTopics)
	}
	if htmlGap.Foundational == 0 {
		t.Error("Expected html to carry foundational importance")
	}
	if len(htmlGap.SuggestedContent) == 0 {
		t.Error("Expected suggested content for the gap")
	}
}

func TestPrerequisiteGapLowConfidence(t *testing.T) {
	analyzer := testAnalyzer(t)

	// javascript exists but sits below the detection threshold.
	states := []core.KnowledgeState{
		{UserID: "u", Topic: "typescript", ConfidenceLevel: 0.6, ContentCount: 4},
		{UserID: "u", Topic: "javascript", ConfidenceLevel: 0.2, ContentCount: 1},
	}

	result, err := analyzer.Analyze("u", states, core.UserProfile{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	found := false
	for _, gap := range result.Gaps {
		if gap.Topic == "javascript" && gap.Type == core.GapPrerequisite {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a prerequisite gap for low-confidence javascript, got %+v", result.Gaps)
	}
}

func TestPrerequisiteMetIsNotAGap(t *testing.T) {
	analyzer := testAnalyzer(t)

	states := []core.KnowledgeState{
		{UserID: "u", Topic: "typescript", ConfidenceLevel: 0.6, ContentCount: 4},
		{UserID: "u", Topic: "javascript", ConfidenceLevel: 0.7, ContentCount: 8},
		{UserID: "u", Topic: "html", ConfidenceLevel: 0.6, ContentCount: 6},
	}

	result, err := analyzer.Analyze("u", states, core.UserProfile{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	for _, gap := range result.Gaps {
		if gap.Type == core.GapPrerequisite {
			t.Errorf("Expected no prerequisite gaps with all foundations met, got %+v", gap)
		}
	}
}

func TestShallowGap(t *testing.T) {
	analyzer := testAnalyzer(t)

	states := []core.KnowledgeState{
		{UserID: "u", Topic: "golang", ConfidenceLevel: 0.3, ContentCount: 5},
		{UserID: "u", Topic: "rust", ConfidenceLevel: 0.3, ContentCount: 2}, // too few interactions
		{UserID: "u", Topic: "python", ConfidenceLevel: 0.6, ContentCount: 8},
	}

	result, err := analyzer.Analyze("u", states, core.UserProfile{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	shallow := make(map[string]bool)
	for _, gap := range result.Gaps {
		if gap.Type == core.GapShallow {
			shallow[gap.Topic] = true
		}
	}
	if !shallow["golang"] {
		t.Error("Expected a shallow gap for golang")
	}
	if shallow["rust"] {
		t.Error("Expected no shallow gap for rust with only 2 interactions")
	}
	if shallow["python"] {
		t.Error("Expected no shallow gap for confident python")
	}
}

func TestOutdatedGap(t *testing.T) {
	analyzer := testAnalyzer(t)

	states := []core.KnowledgeState{
		{UserID: "u", Topic: "sql", ConfidenceLevel: 0.9, ContentCount: 20, LastInteraction: time.Now().Add(-200 * 24 * time.Hour)},
		{UserID: "u", Topic: "git", ConfidenceLevel: 0.9, ContentCount: 20, LastInteraction: time.Now().Add(-10 * 24 * time.Hour)},
		{UserID: "u", Topic: "linux", ConfidenceLevel: 0.5, ContentCount: 20, LastInteraction: time.Now().Add(-200 * 24 * time.Hour)},
	}

	result, err := analyzer.Analyze("u", states, core.UserProfile{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	outdated := make(map[string]bool)
	for _, gap := range result.Gaps {
		if gap.Type == core.GapOutdated {
			outdated[gap.Topic] = true
		}
	}
	if !outdated["sql"] {
		t.Error("Expected an outdated gap for stale high-confidence sql")
	}
	if outdated["git"] {
		t.Error("Expected no outdated gap for recently touched git")
	}
	if outdated["linux"] {
		t.Error("Expected no outdated gap for low-confidence linux")
	}
}

func TestInterestGap(t *testing.T) {
	analyzer := testAnalyzer(t)

	profile := core.UserProfile{
		Interests:       []string{"Kubernetes", "golang"},
		CuriosityTopics: []string{"rust", "kubernetes"}, // duplicate, different case
	}
	states := []core.KnowledgeState{
		{UserID: "u", Topic: "golang", ConfidenceLevel: 0.6, ContentCount: 5},
	}

	result, err := analyzer.Analyze("u", states, profile)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	missing := make(map[string]int)
	for _, gap := range result.Gaps {
		if gap.Type == core.GapMissing {
			missing[gap.Topic]++
		}
	}
	if missing["kubernetes"] != 1 {
		t.Errorf("Expected exactly one missing gap for kubernetes, got %d", missing["kubernetes"])
	}
	if missing["rust"] != 1 {
		t.Errorf("Expected a missing gap for rust, got %d", missing["rust"])
	}
	if missing["golang"] != 0 {
		t.Error("Expected no missing gap for engaged golang")
	}
}

func TestGapOrderingAndIdempotency(t *testing.T) {
	analyzer := testAnalyzer(t)

	states := []core.KnowledgeState{
		{UserID: "u", Topic: "react", ConfidenceLevel: 0.6, ContentCount: 5},
		{UserID: "u", Topic: "golang", ConfidenceLevel: 0.3, ContentCount: 5},
		{UserID: "u", Topic: "sql", ConfidenceLevel: 0.9, ContentCount: 20, LastInteraction: time.Now().Add(-365 * 24 * time.Hour)},
	}
	profile := core.UserProfile{Interests: []string{"kubernetes"}}

	first, err := analyzer.Analyze("u", states, profile)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	second, err := analyzer.Analyze("u", states, profile)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(first.Gaps) != len(second.Gaps) {
		t.Fatalf("Expected identical gap counts across runs, got %d and %d", len(first.Gaps), len(second.Gaps))
	}
	for i := range first.Gaps {
		if first.Gaps[i].Topic != second.Gaps[i].Topic || first.Gaps[i].Type != second.Gaps[i].Type {
			t.Errorf("Expected identical gap ordering, position %d differs: %v vs %v", i, first.Gaps[i], second.Gaps[i])
		}
	}

	for i := 1; i < len(first.Gaps); i++ {
		prev, cur := first.Gaps[i-1], first.Gaps[i]
		if cur.Severity.Rank() > prev.Severity.Rank() {
			t.Errorf("Expected severity to be non-increasing, got %s after %s", cur.Severity, prev.Severity)
		}
		if cur.Severity == prev.Severity && cur.Priority > prev.Priority {
			t.Errorf("Expected priority to be non-increasing within a severity band")
		}
	}

	total := 0
	for _, count := range first.CountsBySeverity {
		total += count
	}
	if total != len(first.Gaps) {
		t.Errorf("Expected severity counts to sum to %d, got %d", len(first.Gaps), total)
	}

	if len(first.RecommendedActions) == 0 || len(first.RecommendedActions) > 3 {
		t.Errorf("Expected 1 to 3 recommended actions, got %d", len(first.RecommendedActions))
	}
}

func TestLearningPathTopologicalOrder(t *testing.T) {
	analyzer := testAnalyzer(t)

	states := []core.KnowledgeState{
		{UserID: "u", Topic: "react", ConfidenceLevel: 0.6, ContentCount: 5},
	}

	result, err := analyzer.Analyze("u", states, core.UserProfile{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(result.LearningPath) == 0 {
		t.Fatal("Expected a non-empty learning path")
	}

	position := make(map[string]int, len(result.LearningPath))
	for i, topic := range result.LearningPath {
		position[topic] = i
	}

	for topic, pos := range position {
		for _, prereq := range analyzer.prereqs.DirectPrerequisites(topic) {
			prereqPos, ok := position[prereq]
			if !ok {
				continue
			}
			if prereqPos >= pos {
				t.Errorf("Expected %s before %s in learning path %v", prereq, topic, result.LearningPath)
			}
		}
	}
}

func TestLearningPathEmptyWithoutGaps(t *testing.T) {
	analyzer := testAnalyzer(t)

	result, err := analyzer.Analyze("u", nil, core.UserProfile{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(result.Gaps) != 0 {
		t.Errorf("Expected no gaps for empty input, got %+v", result.Gaps)
	}
	if len(result.LearningPath) != 0 {
		t.Errorf("Expected empty learning path, got %v", result.LearningPath)
	}
}

func TestReadiness(t *testing.T) {
	analyzer := testAnalyzer(t)

	states := []core.KnowledgeState{
		{UserID: "u", Topic: "javascript", ConfidenceLevel: 0.8},
		{UserID: "u", Topic: "html", ConfidenceLevel: 0.1}, // below detection threshold
	}

	// react has three prerequisites; only javascript is met.
	got := analyzer.Readiness("react", states)
	want := 1.0 / 3.0
	if got < want-0.0001 || got > want+0.0001 {
		t.Errorf("Expected readiness %f, got %f", want, got)
	}

	if got := analyzer.Readiness("html", states); got != 1.0 {
		t.Errorf("Expected full readiness for a topic with no prerequisites, got %f", got)
	}

	if got := analyzer.Readiness("unknown-topic", states); got != 1.0 {
		t.Errorf("Expected full readiness for an unknown topic, got %f", got)
	}
}

func TestFoundationalImportanceCapped(t *testing.T) {
	analyzer := testAnalyzer(t)

	// javascript is listed by several topics; base 0.9 plus fan-in bonus
	// must still clamp at 1.
	got := analyzer.FoundationalImportance("javascript")
	if got > 1.0 {
		t.Errorf("Expected foundational importance capped at 1, got %f", got)
	}
	base := analyzer.FoundationalImportance("rust") // nothing depends on rust
	if base != 0.6 {
		t.Errorf("Expected plain importance for a leaf topic, got %f", base)
	}
}
