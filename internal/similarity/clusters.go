package similarity

import (
	"sort"
	"strings"

	"github.com/forthing17-ops/signalcast-sub000/internal/core"
)

// buildClusters groups content by its primary (first) topic tag. Clusters
// with two or more members get a central member: the item with the most
// relationship edges touching it.
func buildClusters(items []core.ContentItem, connectionMap map[string][]string, complexities []float64) []core.ContentCluster {
	complexityByContent := make(map[string]float64, len(items))
	members := make(map[string][]string)

	for i, item := range items {
		complexityByContent[item.ID] = complexities[i]

		if len(item.Topics) == 0 {
			continue
		}
		primary := strings.ToLower(strings.TrimSpace(item.Topics[0]))
		if primary == "" {
			continue
		}
		members[primary] = append(members[primary], item.ID)
	}

	topics := make([]string, 0, len(members))
	for topic := range members {
		topics = append(topics, topic)
	}
	sort.Strings(topics)

	var clusters []core.ContentCluster
	for _, topic := range topics {
		ids := members[topic]
		sort.Strings(ids)

		var total float64
		for _, id := range ids {
			total += complexityByContent[id]
		}

		cluster := core.ContentCluster{
			Topic:         topic,
			MemberIDs:     ids,
			AvgComplexity: total / float64(len(ids)),
		}

		if len(ids) >= 2 {
			cluster.CentralID = centralMember(ids, connectionMap)
		} else {
			cluster.CentralID = ids[0]
		}

		clusters = append(clusters, cluster)
	}
	return clusters
}

// centralMember picks the member with the highest degree in the connection
// map, breaking ties by ID.
func centralMember(ids []string, connectionMap map[string][]string) string {
	best := ids[0]
	bestDegree := len(connectionMap[best])

	for _, id := range ids[1:] {
		degree := len(connectionMap[id])
		if degree > bestDegree || (degree == bestDegree && id < best) {
			best = id
			bestDegree = degree
		}
	}
	return best
}
