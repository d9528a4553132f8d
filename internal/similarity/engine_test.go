package similarity

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/forthing17-ops/signalcast-sub000/internal/config"
	"github.com/forthing17-ops/signalcast-sub000/internal/core"
	"github.com/forthing17-ops/signalcast-sub000/internal/embeddings"
	"github.com/forthing17-ops/signalcast-sub000/internal/store"
)

func testSimilarityConfig() config.Similarity {
	return config.Similarity{
		OverlapPrefilter:  0.1,
		StrongThreshold:   0.7,
		ModerateThreshold: 0.4,
		ContrastThreshold: 0.2,
		ComplexityDelta:   0.3,
		MinStrength:       0.3,
		CrossDomainMin:    0.4,
		SimilarityWeight:  0.7,
		OverlapWeight:     0.3,
		Workers:           4,
	}
}

func TestComparePrefilterSkips(t *testing.T) {
	engine := NewEngine(testSimilarityConfig(), nil, nil)

	a := core.ContentItem{ID: "a", Topics: []string{"go"}}
	b := core.ContentItem{ID: "b", Topics: []string{"gardening"}}

	cmp, err := engine.Compare(context.Background(), a, b)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if cmp.Method != "skipped" {
		t.Errorf("Expected disjoint topics to be skipped, got method %q", cmp.Method)
	}
	if cmp.Similarity != 0 {
		t.Errorf("Expected zero similarity on skip, got %f", cmp.Similarity)
	}
}

func TestCompareUsesPrecomputedEmbeddings(t *testing.T) {
	engine := NewEngine(testSimilarityConfig(), nil, nil)

	a := core.ContentItem{ID: "a", Topics: []string{"go"}, Embedding: []float64{1, 0}}
	b := core.ContentItem{ID: "b", Topics: []string{"go"}, Embedding: []float64{1, 0}}

	cmp, err := engine.Compare(context.Background(), a, b)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if cmp.Method != "embedding" {
		t.Errorf("Expected embedding comparison, got %q", cmp.Method)
	}
	if cmp.Similarity < 0.999 {
		t.Errorf("Expected similarity ~1 for identical vectors, got %f", cmp.Similarity)
	}
}

func TestCompareDimensionMismatchIsHardError(t *testing.T) {
	engine := NewEngine(testSimilarityConfig(), nil, nil)

	a := core.ContentItem{ID: "a", Topics: []string{"go"}, Embedding: []float64{1, 0}}
	b := core.ContentItem{ID: "b", Topics: []string{"go"}, Embedding: []float64{1, 0, 0}}

	_, err := engine.Compare(context.Background(), a, b)
	var mismatch *embeddings.DimensionMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Expected DimensionMismatchError, got %v", err)
	}
}

func TestCompareDegradesToTopicOverlap(t *testing.T) {
	// No provider and no precomputed embeddings: comparison falls back to
	// the topic-overlap value instead of failing.
	engine := NewEngine(testSimilarityConfig(), nil, nil)

	a := core.ContentItem{ID: "a", Topics: []string{"go", "testing"}}
	b := core.ContentItem{ID: "b", Topics: []string{"go", "ci"}}

	cmp, err := engine.Compare(context.Background(), a, b)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if cmp.Method != "topic_overlap" {
		t.Errorf("Expected topic_overlap degradation, got %q", cmp.Method)
	}
	if cmp.Similarity != cmp.Overlap {
		t.Errorf("Expected similarity to equal overlap when degraded, got %f vs %f", cmp.Similarity, cmp.Overlap)
	}
}

func TestCompareDeliveredSkipsPrefilter(t *testing.T) {
	engine := NewEngine(testSimilarityConfig(), nil, nil)

	// Disjoint topics but identical vectors: a repetition check must still
	// see the duplicate.
	a := core.ContentItem{ID: "a", Topics: []string{"go"}, Embedding: []float64{1, 0}}
	b := core.ContentItem{ID: "b", Topics: []string{"kubernetes"}, Embedding: []float64{1, 0}}

	cmp, err := engine.CompareDelivered(context.Background(), a, b)
	if err != nil {
		t.Fatalf("CompareDelivered failed: %v", err)
	}
	if cmp.Method != "embedding" {
		t.Errorf("Expected embedding comparison despite zero overlap, got %q", cmp.Method)
	}
	if cmp.Similarity < 0.999 {
		t.Errorf("Expected similarity ~1 for identical vectors, got %f", cmp.Similarity)
	}

	// Compare still applies the prefilter for the same pair.
	cmp, err = engine.Compare(context.Background(), a, b)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if cmp.Method != "skipped" {
		t.Errorf("Expected Compare to keep the prefilter, got %q", cmp.Method)
	}
}

func TestCompareUpgradesDegradedCachedRecord(t *testing.T) {
	memStore := store.NewMemoryStore()
	engine := NewEngine(testSimilarityConfig(), nil, memStore)

	a := core.ContentItem{ID: "a", Topics: []string{"go"}}
	b := core.ContentItem{ID: "b", Topics: []string{"go"}}

	first, err := engine.Compare(context.Background(), a, b)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if first.Method != "topic_overlap" {
		t.Fatalf("Expected topic_overlap without embeddings, got %q", first.Method)
	}

	// Embeddings become available later: the degraded record must be
	// recomputed, not served from cache.
	a.Embedding, b.Embedding = []float64{1, 0}, []float64{0, 1}
	second, err := engine.Compare(context.Background(), a, b)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if second.Method != "embedding" {
		t.Errorf("Expected cached record to be upgraded, got %q", second.Method)
	}
	if second.Similarity > 0.001 {
		t.Errorf("Expected ~0 similarity for orthogonal vectors, got %f", second.Similarity)
	}

	// The upgraded result replaces the degraded cache entry.
	record, err := memStore.GetSimilarity("a", "b")
	if err != nil {
		t.Fatalf("GetSimilarity failed: %v", err)
	}
	if record == nil || record.Comparison != "embedding" {
		t.Errorf("Expected the cache to hold the embedding record, got %+v", record)
	}
}

func TestCompareReusesCachedRecord(t *testing.T) {
	memStore := store.NewMemoryStore()
	engine := NewEngine(testSimilarityConfig(), nil, memStore)

	a := core.ContentItem{ID: "a", Topics: []string{"go"}, Embedding: []float64{1, 0}}
	b := core.ContentItem{ID: "b", Topics: []string{"go"}, Embedding: []float64{0, 1}}

	first, err := engine.Compare(context.Background(), a, b)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	// Strip the embeddings: a cache hit must answer without recomputing.
	a.Embedding, b.Embedding = nil, nil
	second, err := engine.Compare(context.Background(), b, a) // reversed order
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if second.Similarity != first.Similarity {
		t.Errorf("Expected cached similarity %f, got %f", first.Similarity, second.Similarity)
	}
	if second.Method != "embedding" {
		t.Errorf("Expected cached method to survive, got %q", second.Method)
	}
}

func TestTopicOverlap(t *testing.T) {
	a := core.ContentItem{Topics: []string{"Go", "testing", "ci"}}
	b := core.ContentItem{Topics: []string{"go", "testing"}}

	// Intersection 2, union 3.
	got := topicOverlap(a, b)
	want := 2.0 / 3.0
	if got < want-0.0001 || got > want+0.0001 {
		t.Errorf("Expected overlap %f, got %f", want, got)
	}

	if got := topicOverlap(core.ContentItem{}, b); got != 0 {
		t.Errorf("Expected 0 overlap with empty topics, got %f", got)
	}
}

func TestClassifyPairBuildsOnDirection(t *testing.T) {
	cfg := testSimilarityConfig()

	a := core.ContentItem{ID: "intro"}
	b := core.ContentItem{ID: "deep"}
	cmp := Comparison{A: "intro", B: "deep", Similarity: 0.75, Overlap: 0.6}

	// Complexity 0.2 vs 0.6: spread above the delta, simpler item is parent.
	outcome := classifyPair(cfg, cmp, a, b, 0.2, 0.6)
	if outcome == nil {
		t.Fatal("Expected a classification outcome")
	}
	if outcome.relType != core.RelBuildsOn {
		t.Errorf("Expected builds_on, got %s", outcome.relType)
	}
	if outcome.parentID != "intro" || outcome.childID != "deep" {
		t.Errorf("Expected direction intro -> deep, got %s -> %s", outcome.parentID, outcome.childID)
	}

	// Same spread with roles swapped must flip the direction.
	outcome = classifyPair(cfg, cmp, a, b, 0.6, 0.2)
	if outcome.parentID != "deep" || outcome.childID != "intro" {
		t.Errorf("Expected direction deep -> intro, got %s -> %s", outcome.parentID, outcome.childID)
	}
}

func TestClassifyPairStrongSimilarDepth(t *testing.T) {
	cfg := testSimilarityConfig()
	cmp := Comparison{Similarity: 0.8, Overlap: 0.6}

	outcome := classifyPair(cfg, cmp, core.ContentItem{ID: "a"}, core.ContentItem{ID: "b"}, 0.5, 0.6)
	if outcome == nil || outcome.relType != core.RelRelated {
		t.Fatalf("Expected related for comparable complexity, got %+v", outcome)
	}
}

func TestClassifyPairPrerequisite(t *testing.T) {
	cfg := testSimilarityConfig()

	intro := core.ContentItem{ID: "intro", Title: "Getting started with Kafka", Body: "A beginner guide to topics and partitions."}
	deep := core.ContentItem{ID: "deep", Title: "Kafka in production", Body: "Scaling consumer groups under load."}
	cmp := Comparison{A: "intro", B: "deep", Similarity: 0.55, Overlap: 0.6}

	outcome := classifyPair(cfg, cmp, intro, deep, 0.3, 0.5)
	if outcome == nil {
		t.Fatal("Expected a classification outcome")
	}
	if outcome.relType != core.RelPrerequisite {
		t.Errorf("Expected prerequisite, got %s", outcome.relType)
	}
	if outcome.parentID != "intro" {
		t.Errorf("Expected the fundamental item as parent, got %s", outcome.parentID)
	}

	// Without directional language signals the band classifies as related.
	plainA := core.ContentItem{ID: "a", Title: "Kafka patterns", Body: "Topic layout choices."}
	plainB := core.ContentItem{ID: "b", Title: "Kafka layouts", Body: "Partition sizing notes."}
	outcome = classifyPair(cfg, Comparison{A: "a", B: "b", Similarity: 0.55, Overlap: 0.6}, plainA, plainB, 0.4, 0.4)
	if outcome == nil || outcome.relType != core.RelRelated {
		t.Fatalf("Expected related without language signals, got %+v", outcome)
	}
}

func TestClassifyPairContrast(t *testing.T) {
	cfg := testSimilarityConfig()
	cmp := Comparison{Similarity: 0.1, Overlap: 0.5}

	outcome := classifyPair(cfg, cmp, core.ContentItem{ID: "a"}, core.ContentItem{ID: "b"}, 0.4, 0.4)
	if outcome == nil || outcome.relType != core.RelContrasts {
		t.Fatalf("Expected contrasts, got %+v", outcome)
	}

	// Low similarity with low overlap is just unrelated.
	cmp = Comparison{Similarity: 0.1, Overlap: 0.2}
	if outcome := classifyPair(cfg, cmp, core.ContentItem{ID: "a"}, core.ContentItem{ID: "b"}, 0.4, 0.4); outcome != nil {
		t.Errorf("Expected no outcome for unrelated pair, got %+v", outcome)
	}

	// The dead band between contrast and moderate yields nothing.
	cmp = Comparison{Similarity: 0.3, Overlap: 0.6}
	if outcome := classifyPair(cfg, cmp, core.ContentItem{ID: "a"}, core.ContentItem{ID: "b"}, 0.4, 0.4); outcome != nil {
		t.Errorf("Expected no outcome in the dead band, got %+v", outcome)
	}
}

func TestClassifyStrengthFloor(t *testing.T) {
	engine := NewEngine(testSimilarityConfig(), nil, nil)

	// Contrast outcome with strength 0.7*0.1 + 0.3*0.5 = 0.22 < 0.3.
	cmp := Comparison{A: "a", B: "b", Similarity: 0.1, Overlap: 0.5}
	rel := engine.classify(cmp, core.ContentItem{ID: "a"}, core.ContentItem{ID: "b"}, 0.4, 0.4)
	if rel != nil {
		t.Errorf("Expected strength floor to drop the relationship, got %+v", rel)
	}

	// Strong pair clears the floor: 0.7*0.8 + 0.3*0.6 = 0.74.
	cmp = Comparison{A: "a", B: "b", Similarity: 0.8, Overlap: 0.6}
	rel = engine.classify(cmp, core.ContentItem{ID: "a"}, core.ContentItem{ID: "b"}, 0.4, 0.4)
	if rel == nil {
		t.Fatal("Expected a relationship above the floor")
	}
	if rel.Strength < 0.739 || rel.Strength > 0.741 {
		t.Errorf("Expected strength ~0.74, got %f", rel.Strength)
	}
	if rel.ID == "" {
		t.Error("Expected a generated relationship ID")
	}
}

func TestAnalyzeEndToEnd(t *testing.T) {
	engine := NewEngine(testSimilarityConfig(), nil, store.NewMemoryStore())

	items := []core.ContentItem{
		{ID: "intro-go", Title: "Introduction to Go basics", Body: "A beginner tutorial covering syntax.", Topics: []string{"go"}, Embedding: []float64{1, 0, 0}},
		{ID: "deep-go", Title: "Advanced Go concurrency internals", Body: "Deep dive into the scheduler, performance, distributed patterns, and architecture at scale. " + longBody(), Topics: []string{"go"}, Embedding: []float64{0.9, 0.1, 0}},
		{ID: "gardening", Title: "Tomato planting", Body: "Soil advice.", Topics: []string{"gardening"}, Embedding: []float64{0, 0, 1}},
	}

	analysis, err := engine.Analyze(context.Background(), items)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(analysis.Relationships) != 1 {
		t.Fatalf("Expected exactly one relationship, got %+v", analysis.Relationships)
	}
	rel := analysis.Relationships[0]
	if rel.Type != core.RelBuildsOn {
		t.Errorf("Expected builds_on between the go items, got %s", rel.Type)
	}
	if rel.ParentID != "intro-go" || rel.ChildID != "deep-go" {
		t.Errorf("Expected intro-go -> deep-go, got %s -> %s", rel.ParentID, rel.ChildID)
	}

	// Connection map holds both directions.
	if got := analysis.ConnectionMap["intro-go"]; len(got) != 1 || got[0] != "deep-go" {
		t.Errorf("Expected intro-go connected to deep-go, got %v", got)
	}
	if got := analysis.ConnectionMap["deep-go"]; len(got) != 1 || got[0] != "intro-go" {
		t.Errorf("Expected deep-go connected to intro-go, got %v", got)
	}

	// Learning path orders the foundation first.
	introPos, deepPos := -1, -1
	for i, id := range analysis.LearningPath {
		switch id {
		case "intro-go":
			introPos = i
		case "deep-go":
			deepPos = i
		}
	}
	if introPos == -1 || deepPos == -1 || introPos > deepPos {
		t.Errorf("Expected intro-go before deep-go in path %v", analysis.LearningPath)
	}

	// Clusters by primary topic: go (2 members) and gardening (1).
	if len(analysis.Clusters) != 2 {
		t.Fatalf("Expected 2 clusters, got %+v", analysis.Clusters)
	}
	for _, cluster := range analysis.Clusters {
		switch cluster.Topic {
		case "go":
			if len(cluster.MemberIDs) != 2 {
				t.Errorf("Expected 2 members in go cluster, got %v", cluster.MemberIDs)
			}
		case "gardening":
			if cluster.CentralID != "gardening" {
				t.Errorf("Expected singleton cluster to be its own center, got %s", cluster.CentralID)
			}
		default:
			t.Errorf("Unexpected cluster topic %s", cluster.Topic)
		}
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	engine := NewEngine(testSimilarityConfig(), nil, nil)

	items := []core.ContentItem{
		{ID: "a", Title: "Go basics tutorial", Body: "beginner syntax", Topics: []string{"go"}, Embedding: []float64{1, 0}},
		{ID: "b", Title: "Go testing", Body: "table tests", Topics: []string{"go"}, Embedding: []float64{0.95, 0.05}},
		{ID: "c", Title: "Go tooling", Body: "modules and vet", Topics: []string{"go"}, Embedding: []float64{0.9, 0.1}},
	}

	first, err := engine.Analyze(context.Background(), items)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	second, err := engine.Analyze(context.Background(), items)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(first.Relationships) != len(second.Relationships) {
		t.Fatalf("Expected stable relationship count, got %d and %d", len(first.Relationships), len(second.Relationships))
	}
	for i := range first.Relationships {
		f, s := first.Relationships[i], second.Relationships[i]
		if f.ParentID != s.ParentID || f.ChildID != s.ChildID || f.Type != s.Type {
			t.Errorf("Expected identical relationship ordering at %d: %+v vs %+v", i, f, s)
		}
	}
}

func TestComplexityScore(t *testing.T) {
	intro := core.ContentItem{Title: "Getting started with Go", Body: "A beginner tutorial."}
	deep := core.ContentItem{Title: "Advanced distributed architecture internals", Body: longBody()}

	introScore := ComplexityScore(intro)
	deepScore := ComplexityScore(deep)
	if introScore >= deepScore {
		t.Errorf("Expected introductory content to score below advanced, got %f vs %f", introScore, deepScore)
	}
	if introScore < 0 || introScore > 1 || deepScore < 0 || deepScore > 1 {
		t.Errorf("Expected scores in [0,1], got %f and %f", introScore, deepScore)
	}
}

func TestInferDomain(t *testing.T) {
	cases := []struct {
		item core.ContentItem
		want core.Domain
	}{
		{core.ContentItem{Title: "New API framework for cloud developers", Body: "software infrastructure"}, core.DomainTechnology},
		{core.ContentItem{Title: "Startup revenue growth", Body: "market strategy and pricing for customer acquisition"}, core.DomainBusiness},
		{core.ContentItem{Title: "Accessibility in UX design", Body: "usability and typography for visual prototypes"}, core.DomainDesign},
		{core.ContentItem{Title: "Untagged piece", Body: "nothing matches here"}, core.DomainTechnology},
	}

	for _, tc := range cases {
		if got := InferDomain(tc.item); got != tc.want {
			t.Errorf("Expected domain %s for %q, got %s", tc.want, tc.item.Title, got)
		}
	}
}

func TestCrossDomainConnections(t *testing.T) {
	engine := NewEngine(testSimilarityConfig(), nil, nil)

	tech := core.ContentItem{ID: "tech", Title: "Platform automation for developers", Body: "software infrastructure and api workflow automation", Topics: []string{"automation", "platform"}}
	biz := core.ContentItem{ID: "biz", Title: "Automation strategy for revenue growth", Body: "market pricing and customer workflow automation strategy", Topics: []string{"automation", "strategy"}}

	comparisons := []Comparison{{A: "tech", B: "biz", Similarity: 0.5, Overlap: 0.33, Method: "embedding"}}
	connections := engine.crossDomainConnections([]core.ContentItem{tech, biz}, comparisons)

	if len(connections) != 1 {
		t.Fatalf("Expected one cross-domain connection, got %+v", connections)
	}
	conn := connections[0]
	if conn.SourceDomain == conn.TargetDomain {
		t.Errorf("Expected distinct domains, got %s on both sides", conn.SourceDomain)
	}
	if conn.Type != core.CrossTransformative {
		t.Errorf("Expected transformative for business/technology, got %s", conn.Type)
	}
	if len(conn.BridgingConcepts) == 0 {
		t.Error("Expected bridging concepts for shared automation topic")
	}
	if conn.Opportunity == "" {
		t.Error("Expected an opportunity note")
	}
	if conn.Synergy == "" {
		t.Error("Expected a synergy note")
	}
	if conn.Risk == "" {
		t.Error("Expected a risk note")
	}

	// Below the similarity bar nothing is emitted.
	weak := []Comparison{{A: "tech", B: "biz", Similarity: 0.3, Overlap: 0.33, Method: "embedding"}}
	if got := engine.crossDomainConnections([]core.ContentItem{tech, biz}, weak); len(got) != 0 {
		t.Errorf("Expected no connection below the similarity bar, got %+v", got)
	}
}

func TestLookupCrossDomainTypeUnordered(t *testing.T) {
	ab := lookupCrossDomainType(core.DomainBusiness, core.DomainTechnology)
	ba := lookupCrossDomainType(core.DomainTechnology, core.DomainBusiness)
	if ab != ba {
		t.Errorf("Expected order-independent lookup, got %s and %s", ab, ba)
	}
	if got := lookupCrossDomainType(core.DomainDesign, core.DomainSecurity); got != core.CrossComplementary {
		t.Errorf("Expected complementary default for unlisted pairs, got %s", got)
	}
}

func TestNarrativeForKeyedByPairAndType(t *testing.T) {
	ab := narrativeFor(core.DomainBusiness, core.DomainTechnology, core.CrossTransformative)
	ba := narrativeFor(core.DomainTechnology, core.DomainBusiness, core.CrossTransformative)
	if ab != ba {
		t.Errorf("Expected order-independent narrative lookup, got %+v and %+v", ab, ba)
	}
	want := crossDomainNarratives[[2]core.Domain{core.DomainBusiness, core.DomainTechnology}][core.CrossTransformative]
	if ab != want {
		t.Errorf("Expected the pair-specific narrative, got %+v", ab)
	}

	// Unlisted pairs fall back to the per-type templates with the domain
	// names filled in.
	generic := narrativeFor(core.DomainDesign, core.DomainSecurity, core.CrossComplementary)
	for _, text := range []string{generic.opportunity, generic.synergy, generic.risk} {
		if text == "" {
			t.Fatal("Expected non-empty fallback narrative")
		}
		if strings.Contains(text, "%s") {
			t.Errorf("Expected domain names to be interpolated, got %q", text)
		}
	}
	if !strings.Contains(generic.opportunity, string(core.DomainDesign)) {
		t.Errorf("Expected the source domain in the fallback text, got %q", generic.opportunity)
	}
}

// longBody pads content past the long-form complexity threshold.
func longBody() string {
	body := make([]byte, 0, 5200)
	for len(body) < 5100 {
		body = append(body, "performance and scalability in distributed systems. "...)
	}
	return string(body)
}
