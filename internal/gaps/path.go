package gaps

import (
	"fmt"
	"sort"

	"github.com/forthing17-ops/signalcast-sub000/internal/core"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// learningPath orders the gap topics plus their transitive prerequisites so
// that every prerequisite precedes its dependents. The static graph was
// cycle-checked at configuration load, so a sort failure here means the
// loaded graph was bypassed; it is reported, not swallowed.
func (a *Analyzer) learningPath(gaps []core.KnowledgeGap) ([]string, error) {
	if len(gaps) == 0 {
		return nil, nil
	}

	topics := make([]string, 0, len(gaps))
	for _, gap := range gaps {
		topics = append(topics, gap.Topic)
	}
	closure := a.prereqs.TransitiveClosure(topics)

	// Stable topic -> node ID assignment keeps the sort deterministic.
	names := make([]string, 0, len(closure))
	for topic := range closure {
		names = append(names, topic)
	}
	sort.Strings(names)

	idByTopic := make(map[string]int64, len(names))
	topicByID := make(map[int64]string, len(names))
	g := simple.NewDirectedGraph()
	for i, topic := range names {
		id := int64(i)
		idByTopic[topic] = id
		topicByID[id] = topic
		g.AddNode(simple.Node(id))
	}

	// Edge prerequisite -> dependent, so prerequisites sort first.
	for _, topic := range names {
		for _, prereq := range a.prereqs.Get(topic).Prerequisites {
			if !closure[prereq] {
				continue
			}
			from, to := idByTopic[prereq], idByTopic[topic]
			if from != to {
				g.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
			}
		}
	}

	ordered, err := topo.SortStabilized(g, func(nodes []graph.Node) {
		sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
	})
	if err != nil {
		return nil, fmt.Errorf("prerequisite graph is not a DAG: %w", err)
	}

	path := make([]string, 0, len(ordered))
	for _, node := range ordered {
		path = append(path, topicByID[node.ID()])
	}
	return path, nil
}
