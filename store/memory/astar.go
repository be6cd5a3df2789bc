package memory

import (
	"container/heap"
	"context"
	"math"

	"github.com/aerosync/vertiport-routing/store"
)

// AStar runs a hand-rolled A* search over the given edge set with a
// Euclidean heuristic over the edges' lon/lat coordinates (in degrees),
// mirroring the pgRouting contract:
// unidirectional edges (reverse_cost = -1 blocks reverse traversal), result
// is the ordered (seq, edge_id, cost) sequence. This in-process
// implementation satisfies the same §4.2 contract as a pgr_astar-backed
// adapter would.
func (s *Store) AStar(ctx context.Context, edges []store.Edge, sourceNodeID, targetNodeID string) ([]store.PathStep, error) {
	if sourceNodeID == targetNodeID {
		return nil, nil
	}

	type adjEdge struct {
		edge store.Edge
	}
	adj := make(map[string][]adjEdge)
	coords := make(map[string][2]float64) // nodeID -> (x,y)
	for _, e := range edges {
		if e.ReverseCost >= 0 {
			adj[e.TargetID] = append(adj[e.TargetID], adjEdge{edge: store.Edge{
				ID: e.ID, SourceID: e.TargetID, TargetID: e.SourceID, Cost: e.ReverseCost,
				SourceX: e.TargetX, SourceY: e.TargetY, TargetX: e.SourceX, TargetY: e.SourceY,
			}})
		}
		adj[e.SourceID] = append(adj[e.SourceID], adjEdge{edge: e})
		coords[e.SourceID] = [2]float64{e.SourceX, e.SourceY}
		coords[e.TargetID] = [2]float64{e.TargetX, e.TargetY}
	}

	targetXY, haveTarget := coords[targetNodeID]
	heuristic := func(nodeID string) float64 {
		if !haveTarget {
			return 0
		}
		xy, ok := coords[nodeID]
		if !ok {
			return 0
		}
		dx := xy[0] - targetXY[0]
		dy := xy[1] - targetXY[1]
		return math.Sqrt(dx*dx + dy*dy)
	}

	gScore := map[string]float64{sourceNodeID: 0}
	cameFrom := map[string]cameFromEntry{}
	visited := map[string]bool{}

	pq := &priorityQueue{}
	heap.Init(pq)
	heap.Push(pq, &pqItem{nodeID: sourceNodeID, priority: heuristic(sourceNodeID)})

	for pq.Len() > 0 {
		current := heap.Pop(pq).(*pqItem)
		if visited[current.nodeID] {
			continue
		}
		visited[current.nodeID] = true

		if current.nodeID == targetNodeID {
			return reconstructPath(cameFrom, targetNodeID), nil
		}

		for _, ae := range adj[current.nodeID] {
			tentativeG := gScore[current.nodeID] + ae.edge.Cost
			if existing, ok := gScore[ae.edge.TargetID]; !ok || tentativeG < existing {
				gScore[ae.edge.TargetID] = tentativeG
				cameFrom[ae.edge.TargetID] = cameFromEntry{nodeID: current.nodeID, edge: ae.edge}
				heap.Push(pq, &pqItem{nodeID: ae.edge.TargetID, priority: tentativeG + heuristic(ae.edge.TargetID)})
			}
		}
	}

	// No path is found; this is not an error (spec.md 4.5).
	return nil, nil
}

type cameFromEntry struct {
	nodeID string
	edge   store.Edge
}

func reconstructPath(cameFrom map[string]cameFromEntry, target string) []store.PathStep {
	var rev []store.Edge
	node := target
	for {
		entry, ok := cameFrom[node]
		if !ok {
			break
		}
		rev = append(rev, entry.edge)
		node = entry.nodeID
	}
	steps := make([]store.PathStep, len(rev))
	for i := range rev {
		e := rev[len(rev)-1-i]
		steps[i] = store.PathStep{Seq: i, EdgeID: e.ID, Cost: e.Cost}
	}
	return steps
}

type pqItem struct {
	nodeID   string
	priority float64
	index    int
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].priority < pq[j].priority }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i]; pq[i].index = i; pq[j].index = j }
func (pq *priorityQueue) Push(x interface{}) {
	item := x.(*pqItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}
