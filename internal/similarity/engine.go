package similarity

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/forthing17-ops/signalcast-sub000/internal/config"
	"github.com/forthing17-ops/signalcast-sub000/internal/core"
	"github.com/forthing17-ops/signalcast-sub000/internal/embeddings"
	"github.com/forthing17-ops/signalcast-sub000/internal/logger"
	"github.com/forthing17-ops/signalcast-sub000/internal/store"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Comparison is the outcome of comparing one content pair.
type Comparison struct {
	A, B       string  // Content IDs
	Similarity float64 // Cosine similarity, or topic overlap when degraded
	Overlap    float64 // Topic-tag Jaccard index
	Method     string  // "embedding", "topic_overlap", or "skipped"
}

// Engine computes pairwise content similarity, classifies relationships,
// and derives connection maps, learning paths, and clusters. Pairwise work
// fans out across workers; the only shared mutable state is the append-only
// similarity cache, whose writes are idempotent.
type Engine struct {
	cfg      config.Similarity
	provider embeddings.Provider   // Optional; nil means overlap-only comparison
	cache    store.SimilarityStore // Optional; nil disables record caching
}

// NewEngine creates a similarity engine. Both the provider and the cache
// may be nil; the engine degrades per the comparison rules.
func NewEngine(cfg config.Similarity, provider embeddings.Provider, cache store.SimilarityStore) *Engine {
	return &Engine{cfg: cfg, provider: provider, cache: cache}
}

// Compare computes similarity for one pair. Topic overlap below the
// prefilter skips the expensive work entirely. A dimension mismatch between
// two present embeddings is a hard failure; a missing embedding degrades to
// topic-overlap-only comparison.
func (e *Engine) Compare(ctx context.Context, a, b core.ContentItem) (Comparison, error) {
	return e.compare(ctx, a, b, true)
}

// CompareDelivered computes similarity for a repetition check. The topic
// prefilter does not apply here: a delivered item may be tagged differently
// (or not at all) yet still duplicate the candidate, so the embedding
// comparison runs whenever vectors are available.
func (e *Engine) CompareDelivered(ctx context.Context, a, b core.ContentItem) (Comparison, error) {
	return e.compare(ctx, a, b, false)
}

func (e *Engine) compare(ctx context.Context, a, b core.ContentItem, prefilter bool) (Comparison, error) {
	cmp := Comparison{A: a.ID, B: b.ID}

	cmp.Overlap = topicOverlap(a, b)
	if prefilter && cmp.Overlap < e.cfg.OverlapPrefilter {
		cmp.Method = "skipped"
		return cmp, nil
	}

	if cached := e.cachedSimilarity(a.ID, b.ID); cached != nil && !e.canUpgrade(cached, a, b) {
		cmp.Similarity = cached.Similarity
		cmp.Method = cached.Comparison
		return cmp, nil
	}

	vecA, vecB, err := e.vectors(ctx, a, b)
	if err != nil {
		var mismatch *embeddings.DimensionMismatchError
		if errors.As(err, &mismatch) {
			return cmp, err
		}
		// Provider failure or no embedding: fall back to topic overlap.
		cmp.Similarity = cmp.Overlap
		cmp.Method = "topic_overlap"
		e.cacheSimilarity(cmp)
		return cmp, nil
	}

	sim, err := embeddings.Cosine(vecA, vecB)
	if err != nil {
		return cmp, err
	}

	cmp.Similarity = sim
	cmp.Method = "embedding"
	e.cacheSimilarity(cmp)
	return cmp, nil
}

// canUpgrade reports whether a cached record degraded to topic overlap can
// now be replaced by a true embedding comparison. Overlap-only records are
// served only while no embedding source exists for either item.
func (e *Engine) canUpgrade(record *core.SimilarityRecord, a, b core.ContentItem) bool {
	if record.Comparison != "topic_overlap" {
		return false
	}
	return e.canEmbed(a) && e.canEmbed(b)
}

func (e *Engine) canEmbed(item core.ContentItem) bool {
	return len(item.Embedding) > 0 || e.provider != nil
}

// vectors resolves the embedding for both items, preferring precomputed
// vectors and falling back to the provider.
func (e *Engine) vectors(ctx context.Context, a, b core.ContentItem) ([]float64, []float64, error) {
	vecA, err := e.vector(ctx, a)
	if err != nil {
		return nil, nil, err
	}
	vecB, err := e.vector(ctx, b)
	if err != nil {
		return nil, nil, err
	}
	return vecA, vecB, nil
}

func (e *Engine) vector(ctx context.Context, item core.ContentItem) ([]float64, error) {
	if len(item.Embedding) > 0 {
		return item.Embedding, nil
	}
	if e.provider == nil {
		return nil, embeddings.ErrNoEmbedding
	}
	return e.provider.Embed(ctx, item.Title+"\n\n"+item.Body)
}

// cachedSimilarity looks up a prior record for the pair. Records are stable
// because content is immutable post-creation.
func (e *Engine) cachedSimilarity(a, b string) *core.SimilarityRecord {
	if e.cache == nil {
		return nil
	}
	record, err := e.cache.GetSimilarity(a, b)
	if err != nil {
		logger.Warn("similarity cache read failed", "error", err.Error())
		return nil
	}
	return record
}

func (e *Engine) cacheSimilarity(cmp Comparison) {
	if e.cache == nil || cmp.Method == "skipped" {
		return
	}
	a, b := core.PairKey(cmp.A, cmp.B)
	err := e.cache.PutSimilarity(core.SimilarityRecord{
		ContentA:   a,
		ContentB:   b,
		Similarity: cmp.Similarity,
		Comparison: cmp.Method,
		ComputedAt: time.Now().UTC(),
	})
	if err != nil {
		logger.Warn("similarity cache write failed", "error", err.Error())
	}
}

// Analyze runs the full relationship-discovery pass over a content set:
// pairwise comparison (fanned out across workers), classification,
// connection map, learning path, clusters, and cross-domain connections.
// One failed pair never blocks the batch.
func (e *Engine) Analyze(ctx context.Context, items []core.ContentItem) (core.RelationshipAnalysis, error) {
	type pair struct{ i, j int }

	var pairs []pair
	for i := range items {
		for j := i + 1; j < len(items); j++ {
			pairs = append(pairs, pair{i, j})
		}
	}

	complexities := make([]float64, len(items))
	for i, item := range items {
		complexities[i] = ComplexityScore(item)
	}

	// Results are indexed by pair so output order never depends on worker
	// scheduling.
	relationships := make([]*core.ContentRelationship, len(pairs))
	comparisons := make([]*Comparison, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workerCount())

	var skipped sync.Map
	for idx, p := range pairs {
		g.Go(func() error {
			cmp, err := e.Compare(gctx, items[p.i], items[p.j])
			if err != nil {
				var mismatch *embeddings.DimensionMismatchError
				if errors.As(err, &mismatch) {
					return err
				}
				skipped.Store(idx, err)
				return nil
			}
			if cmp.Method == "skipped" {
				return nil
			}

			comparisons[idx] = &cmp
			relationships[idx] = e.classify(cmp, items[p.i], items[p.j], complexities[p.i], complexities[p.j])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return core.RelationshipAnalysis{}, err
	}

	skippedCount := 0
	skipped.Range(func(_, _ any) bool { skippedCount++; return true })
	if skippedCount > 0 {
		logger.Warn("some pairs skipped during relationship analysis", "count", skippedCount)
	}

	var emitted []core.ContentRelationship
	for _, rel := range relationships {
		if rel != nil {
			emitted = append(emitted, *rel)
		}
	}

	var compared []Comparison
	for _, cmp := range comparisons {
		if cmp != nil {
			compared = append(compared, *cmp)
		}
	}

	connectionMap := buildConnectionMap(emitted)

	return core.RelationshipAnalysis{
		Relationships: emitted,
		ConnectionMap: connectionMap,
		LearningPath:  learningPath(items, emitted, complexities),
		Clusters:      buildClusters(items, connectionMap, complexities),
		CrossDomain:   e.crossDomainConnections(items, compared),
		AnalyzedAt:    time.Now().UTC(),
	}, nil
}

func (e *Engine) workerCount() int {
	if e.cfg.Workers < 1 {
		return 1
	}
	return e.cfg.Workers
}

// classify applies the ordered relationship rules and the minimum-strength
// floor. Returns nil when no relationship should be emitted.
func (e *Engine) classify(cmp Comparison, a, b core.ContentItem, complexityA, complexityB float64) *core.ContentRelationship {
	outcome := classifyPair(e.cfg, cmp, a, b, complexityA, complexityB)
	if outcome == nil {
		return nil
	}

	strength := e.cfg.SimilarityWeight*cmp.Similarity + e.cfg.OverlapWeight*cmp.Overlap
	strength = clamp01(strength)
	if strength < e.cfg.MinStrength {
		return nil
	}

	return &core.ContentRelationship{
		ID:       uuid.NewString(),
		ParentID: outcome.parentID,
		ChildID:  outcome.childID,
		Type:     outcome.relType,
		Strength: strength,
	}
}

// topicOverlap is the Jaccard index over lower-cased topic tag sets.
func topicOverlap(a, b core.ContentItem) float64 {
	setA := make(map[string]bool, len(a.Topics))
	for _, t := range a.Topics {
		setA[strings.ToLower(strings.TrimSpace(t))] = true
	}
	setB := make(map[string]bool, len(b.Topics))
	for _, t := range b.Topics {
		setB[strings.ToLower(strings.TrimSpace(t))] = true
	}
	delete(setA, "")
	delete(setB, "")

	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for t := range setA {
		if setB[t] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// buildConnectionMap builds the undirected adjacency list from emitted
// relationships. Both directions are stored for graph-navigation queries.
func buildConnectionMap(relationships []core.ContentRelationship) map[string][]string {
	connections := make(map[string]map[string]bool)
	add := func(from, to string) {
		if connections[from] == nil {
			connections[from] = make(map[string]bool)
		}
		connections[from][to] = true
	}

	for _, rel := range relationships {
		add(rel.ParentID, rel.ChildID)
		add(rel.ChildID, rel.ParentID)
	}

	adjacency := make(map[string][]string, len(connections))
	for id, neighbors := range connections {
		list := make([]string, 0, len(neighbors))
		for neighbor := range neighbors {
			list = append(list, neighbor)
		}
		sort.Strings(list)
		adjacency[id] = list
	}
	return adjacency
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
