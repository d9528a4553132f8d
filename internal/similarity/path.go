package similarity

import (
	"sort"

	"github.com/forthing17-ops/signalcast-sub000/internal/core"
	"github.com/forthing17-ops/signalcast-sub000/internal/logger"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// learningPath orders content IDs so that every builds_on/prerequisite
// parent precedes its child. Unlike the curated topic graph, the discovered
// content graph is not guaranteed acyclic (independent pairwise decisions
// can disagree); on a cycle the path falls back to complexity order, which
// still satisfies every builds_on edge.
func learningPath(items []core.ContentItem, relationships []core.ContentRelationship, complexities []float64) []string {
	if len(items) == 0 {
		return nil
	}

	idByContent := make(map[string]int64, len(items))
	contentByID := make(map[int64]string, len(items))
	complexityByContent := make(map[string]float64, len(items))

	g := simple.NewDirectedGraph()
	for i, item := range items {
		id := int64(i)
		idByContent[item.ID] = id
		contentByID[id] = item.ID
		complexityByContent[item.ID] = complexities[i]
		g.AddNode(simple.Node(id))
	}

	hasDirectional := false
	for _, rel := range relationships {
		if rel.Type != core.RelBuildsOn && rel.Type != core.RelPrerequisite {
			continue
		}
		from, okF := idByContent[rel.ParentID]
		to, okT := idByContent[rel.ChildID]
		if !okF || !okT || from == to {
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
		hasDirectional = true
	}

	if !hasDirectional {
		return nil
	}

	ordered, err := topo.SortStabilized(g, func(nodes []graph.Node) {
		sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
	})
	if err != nil {
		logger.Warn("content relationship graph has a cycle, ordering by complexity")
		return complexityOrder(items, complexityByContent)
	}

	path := make([]string, 0, len(ordered))
	for _, node := range ordered {
		path = append(path, contentByID[node.ID()])
	}
	return path
}

// complexityOrder sorts content IDs by ascending complexity, breaking ties
// by ID for determinism.
func complexityOrder(items []core.ContentItem, complexityByContent map[string]float64) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	sort.Slice(ids, func(i, j int) bool {
		if complexityByContent[ids[i]] != complexityByContent[ids[j]] {
			return complexityByContent[ids[i]] < complexityByContent[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids
}
