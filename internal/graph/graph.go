// Package graph implements an immutable undirected simple graph over
// consecutive integer node ids, with the adjacency and connectivity
// queries the clique enumerator and percolation engine need.
package graph

import (
	"fmt"
	"sort"

	"github.com/aaronmcdaid/cpm/pkg/cpmerrors"
)

// Edge is an unordered pair of node ids, canonicalized so Lo < Hi.
type Edge struct {
	Lo, Hi int32
}

// Graph is an immutable undirected simple graph: V = {0,...,N-1}.
type Graph struct {
	numNodes int
	edges    []Edge        // endpoints[r] = (lo, hi), lo < hi
	inc      [][]int32     // inc[v] = strictly increasing edge ids incident to v
	neigh    [][]int32     // neigh[v] = strictly increasing neighbour node ids, derived from inc[v]
}

// New builds a Graph from a node count and a list of edges. Duplicate
// edges are collapsed. An edge with Lo == Hi (a self-loop) is rejected.
func New(numNodes int, edges []Edge) (*Graph, error) {
	if numNodes < 0 {
		return nil, cpmerrors.Wrap(cpmerrors.CodeInvalidArgument, "numNodes must be >= 0", nil)
	}

	dedup := make(map[[2]int32]struct{}, len(edges))
	canon := make([]Edge, 0, len(edges))
	for _, e := range edges {
		lo, hi := e.Lo, e.Hi
		if lo == hi {
			return nil, cpmerrors.Wrap(cpmerrors.CodeSelfLoopRejected,
				fmt.Sprintf("self-loop rejected at node %d", lo), nil)
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		if lo < 0 || int(hi) >= numNodes {
			return nil, cpmerrors.Wrap(cpmerrors.CodeInvalidArgument,
				fmt.Sprintf("edge (%d,%d) out of range for %d nodes", lo, hi, numNodes), nil)
		}
		key := [2]int32{lo, hi}
		if _, seen := dedup[key]; seen {
			continue
		}
		dedup[key] = struct{}{}
		canon = append(canon, Edge{Lo: lo, Hi: hi})
	}

	inc := make([][]int32, numNodes)
	for r, e := range canon {
		inc[e.Lo] = append(inc[e.Lo], int32(r))
		inc[e.Hi] = append(inc[e.Hi], int32(r))
	}

	neigh := make([][]int32, numNodes)
	for v := 0; v < numNodes; v++ {
		rels := append([]int32(nil), inc[v]...) // sort a copy: inc[v] stays in edge-id order
		sort.Slice(rels, func(i, j int) bool {
			return otherEndpoint(canon, rels[i], int32(v)) < otherEndpoint(canon, rels[j], int32(v))
		})
		ns := make([]int32, len(rels))
		for i, r := range rels {
			ns[i] = otherEndpoint(canon, r, int32(v))
		}
		neigh[v] = ns
	}

	return &Graph{numNodes: numNodes, edges: canon, inc: inc, neigh: neigh}, nil
}

func otherEndpoint(edges []Edge, relID, node int32) int32 {
	e := edges[relID]
	if e.Lo == node {
		return e.Hi
	}
	return e.Lo
}

// NumNodes returns the number of nodes N.
func (g *Graph) NumNodes() int { return g.numNodes }

// NumEdges returns the number of edges R.
func (g *Graph) NumEdges() int { return len(g.edges) }

// Degree returns the number of neighbours of v.
func (g *Graph) Degree(v int32) int { return len(g.neigh[v]) }

// Neighbours returns the strictly increasing neighbour list of v. The
// returned slice is a view into the graph's storage and must not be
// mutated or retained past the Graph's lifetime.
func (g *Graph) Neighbours(v int32) []int32 { return g.neigh[v] }

// EndPoints returns the canonical (lo, hi) pair for an edge id.
func (g *Graph) EndPoints(edgeID int32) Edge { return g.edges[edgeID] }

// AreConnected reports whether there is an edge between u and v, via a
// binary search in the lower-degree endpoint's neighbour list.
func (g *Graph) AreConnected(u, v int32) bool {
	if g.Degree(v) < g.Degree(u) {
		u, v = v, u
	}
	ns := g.neigh[u]
	lo, hi := 0, len(ns)
	for lo < hi {
		mid := (lo + hi) / 2
		switch {
		case ns[mid] == v:
			return true
		case ns[mid] < v:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return false
}
