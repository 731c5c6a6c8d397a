package proofdb

import (
	"container/heap"
	"sort"

	crevid "github.com/womingyoutian/crev/id"
	"github.com/womingyoutian/crev/proof"
)

// TrustDistanceParams parameterizes the trust-distance flood (spec.md §4.6):
// each non-distrust trust level contributes its own edge weight, and ids
// further than MaxDistance from the viewer fall out of the trust set.
type TrustDistanceParams struct {
	HighTrustDistance   uint64
	MediumTrustDistance uint64
	LowTrustDistance    uint64
	MaxDistance         uint64
}

// edgeWeight returns the edge weight for level and whether the level
// participates in the positive flood at all. None is +infinity (edge
// ignored); Distrust is handled by the Phase 2 overlay, never here.
func edgeWeight(level proof.TrustLevel, params TrustDistanceParams) (uint64, bool) {
	switch level {
	case proof.TrustHigh:
		return params.HighTrustDistance, true
	case proof.TrustMedium:
		return params.MediumTrustDistance, true
	case proof.TrustLow:
		return params.LowTrustDistance, true
	default:
		return 0, false
	}
}

// TrustSet is the result of CalculateTrustSet: every id the viewer
// transitively trusts within MaxDistance, after distrust revocation
// (spec.md §4.6).
type TrustSet struct {
	distances  map[crevid.Id]uint64
	distrusted map[crevid.Id]struct{}
}

// TrustedIds returns the trusted ids in a deterministic (lexicographic)
// order.
func (s TrustSet) TrustedIds() []crevid.Id {
	out := make([]crevid.Id, 0, len(s.distances))
	for id := range s.distances {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Distance reports the shortest trust distance to id, if id is trusted.
func (s TrustSet) Distance(id crevid.Id) (uint64, bool) {
	d, ok := s.distances[id]
	return d, ok
}

// IsDistrusted reports whether id was removed from the trust set by the
// distrust overlay.
func (s TrustSet) IsDistrusted(id crevid.Id) bool {
	_, ok := s.distrusted[id]
	return ok
}

//---------------------------------------------------------------------
// Dijkstra priority queue
//---------------------------------------------------------------------

type pqItem struct {
	id   crevid.Id
	dist uint64
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

//---------------------------------------------------------------------
// CalculateTrustSet
//---------------------------------------------------------------------

// CalculateTrustSet runs the positive-flood / distrust-overlay fixed point
// described in spec.md §4.6. It never fails (spec.md §4.7): an empty or
// disconnected graph simply yields a trust set containing only viewer.
func (db *ProofDB) CalculateTrustSet(viewer crevid.Id, params TrustDistanceParams) TrustSet {
	excluded := map[crevid.Id]struct{}{}

	var distances map[crevid.Id]uint64
	for {
		distances = db.shortestPaths(viewer, params, excluded)
		newly := db.findNewlyDistrusted(viewer, distances, params, excluded)
		if len(newly) == 0 {
			break
		}
		for id := range newly {
			excluded[id] = struct{}{}
		}
	}

	trusted := map[crevid.Id]uint64{}
	for id, d := range distances {
		if d <= params.MaxDistance {
			trusted[id] = d
		}
	}
	return TrustSet{distances: trusted, distrusted: excluded}
}

// shortestPaths runs Dijkstra over the subgraph of High/Medium/Low trust
// edges whose endpoints are not in excluded (spec.md §4.6 Phase 1, rerun
// each fixed-point iteration over the surviving node set).
func (db *ProofDB) shortestPaths(viewer crevid.Id, params TrustDistanceParams, excluded map[crevid.Id]struct{}) map[crevid.Id]uint64 {
	dist := map[crevid.Id]uint64{viewer: 0}
	visited := map[crevid.Id]struct{}{}

	pq := &priorityQueue{{id: viewer, dist: 0}}
	heap.Init(pq)

	// adjacency is rebuilt per call: ProofDB graphs are small enough
	// (single-writer, in-memory) that precomputing a persistent adjacency
	// list would only pay off across many trust-set queries on an
	// unchanging snapshot, which is not this package's usage pattern.
	adjacency := db.positiveAdjacency(params)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pqItem)
		if _, done := visited[cur.id]; done {
			continue
		}
		visited[cur.id] = struct{}{}

		for _, edge := range adjacency[cur.id] {
			if _, isExcluded := excluded[edge.to]; isExcluded {
				continue
			}
			nd := cur.dist + edge.weight
			if existing, ok := dist[edge.to]; !ok || nd < existing {
				dist[edge.to] = nd
				heap.Push(pq, pqItem{id: edge.to, dist: nd})
			}
		}
	}
	return dist
}

type weightedEdge struct {
	to     crevid.Id
	weight uint64
}

func (db *ProofDB) positiveAdjacency(params TrustDistanceParams) map[crevid.Id][]weightedEdge {
	adjacency := map[crevid.Id][]weightedEdge{}
	for key, rec := range db.trustEdges {
		w, ok := edgeWeight(rec.Level, params)
		if !ok {
			continue
		}
		adjacency[key.From] = append(adjacency[key.From], weightedEdge{to: key.To, weight: w})
	}
	return adjacency
}

// findNewlyDistrusted implements spec.md §4.6 Phase 2: for every Distrust
// edge (u, v) where u is candidate-trusted and v is not already excluded,
// v becomes newly distrusted. The viewer is never marked distrusted: it is
// the fixed point of every flood by definition (distance 0), and excluding
// it would leave CalculateTrustSet with no starting node.
func (db *ProofDB) findNewlyDistrusted(viewer crevid.Id, distances map[crevid.Id]uint64, params TrustDistanceParams, excluded map[crevid.Id]struct{}) map[crevid.Id]struct{} {
	newly := map[crevid.Id]struct{}{}
	for key, rec := range db.trustEdges {
		if rec.Level != proof.TrustDistrust {
			continue
		}
		if key.To == viewer {
			continue
		}
		if _, already := excluded[key.To]; already {
			continue
		}
		d, ok := distances[key.From]
		if ok && d <= params.MaxDistance {
			newly[key.To] = struct{}{}
		}
	}
	return newly
}
