package dedupe

import (
	"errors"
	"sort"

	"github.com/dominikbraun/graph"
	"github.com/eapache/queue"

	"github.com/doctoralliance/patient-dedupe/patients"
)

const ruleAttributeKey = "rule"

// clusterTransitive builds a graph with one edge per duplicate pair and
// extracts connected components with a BFS traversal. A record joins the
// cluster when it is a duplicate of any member, not only of the anchor.
func (g *Grouper) clusterTransitive(records []patients.Patient) ([]Group, error) {
	duplicates := graph.New(func(p patients.Patient) string { return p.Id })
	position := make(map[string]int, len(records))

	for i, record := range records {
		if err := duplicates.AddVertex(record); err != nil {
			return nil, err
		}
		position[record.Id] = i
	}
	for i, a := range records {
		for _, b := range records[i+1:] {
			classification := g.classifier.Classify(a, b)
			if !classification.IsDuplicate {
				continue
			}
			attributes := graph.EdgeAttribute(ruleAttributeKey, classification.Rule)
			if err := duplicates.AddEdge(a.Id, b.Id, attributes); err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
				return nil, err
			}
		}
	}

	adjacencyMap, err := duplicates.AdjacencyMap()
	if err != nil {
		return nil, err
	}

	visited := map[string]struct{}{}
	groups := make([]Group, 0)

	// BFS traversal from each record in list order keeps the output stable.
	for _, record := range records {
		if _, ok := visited[record.Id]; ok {
			continue
		}

		var members []patients.Patient
		q := queue.New()
		q.Add(record.Id)
		for q.Length() != 0 {
			id := q.Remove().(string)
			if _, ok := visited[id]; ok {
				continue
			}
			visited[id] = struct{}{}

			member, err := duplicates.Vertex(id)
			if err != nil {
				return nil, err
			}
			members = append(members, member)

			for neighbor := range adjacencyMap[id] {
				q.Add(neighbor)
			}
		}

		if len(members) > 1 {
			sort.Slice(members, func(i, j int) bool {
				return position[members[i].Id] < position[members[j].Id]
			})
			groups = append(groups, Group{Members: members})
		}
	}

	return groups, nil
}
