// Package clique streams every maximal clique of size >= kMin out of a
// graph.Graph, using a Bron-Kerbosch search with pivoting and a
// per-source-vertex split, grounded on aaronmcdaid/MaximalCliques'
// cliques.cpp.
package clique

import (
	"sort"

	"github.com/aaronmcdaid/cpm/internal/graph"
	"github.com/aaronmcdaid/cpm/internal/ordered"
	"github.com/aaronmcdaid/cpm/pkg/cpmerrors"
)

// Clique is a strictly increasing sequence of node ids, every pair of
// which is adjacent in the source graph.
type Clique = []int32

// Set is an immutable array of cliques. Its index is a clique's permanent id.
type Set [][]int32

// Sink receives one maximal clique at a time. The callee must not retain
// the slice past the call — Enumerate may reuse or mutate it afterward.
type Sink func(c Clique)

// Enumerate calls sink exactly once for every maximal clique of the graph
// with size >= kMin, each delivered sorted ascending and with no
// duplicates. It fails with cpmerrors.ErrInvalidArgument if kMin < 3.
func Enumerate(g *graph.Graph, kMin int, sink Sink) error {
	if kMin < 3 {
		return cpmerrors.Wrap(cpmerrors.CodeInvalidArgument,
			"kMin for clique enumeration must be at least 3", nil)
	}

	for v := int32(0); int(v) < g.NumNodes(); v++ {
		enumerateForNode(g, kMin, sink, v)
	}
	return nil
}

// ToSet runs Enumerate and collects the results into a Set.
func ToSet(g *graph.Graph, kMin int) (Set, error) {
	var out Set
	err := Enumerate(g, kMin, func(c Clique) {
		cp := make(Clique, len(c))
		copy(cp, c)
		out = append(out, cp)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func enumerateForNode(g *graph.Graph, kMin int, sink Sink, v int32) {
	d := g.Degree(v)
	if d+1 < kMin {
		return // degree too small for any clique containing v to reach kMin
	}

	neighbours := g.Neighbours(v)
	var not, cands []int32
	for _, u := range neighbours {
		if u < v {
			not = append(not, u)
		} else if u > v {
			cands = append(cands, u)
		}
	}

	compsub := make([]int32, 1, kMin+4)
	compsub[0] = v
	expand(g, kMin, sink, compsub, ordered.NewIntSet(not), ordered.NewIntSet(cands))
}

// expand implements the recursive Bron-Kerbosch step described in the
// spec: pivot selection minimizes disc(p) = |Cands \ N(p)|, ties broken
// by first-encountered order in the Not-then-Candidates scan.
func expand(g *graph.Graph, kMin int, sink Sink, compsub []int32, not, cands ordered.IntSet) {
	if len(compsub)+cands.Len() < kMin {
		return
	}
	if cands.Len() == 0 {
		if not.Len() == 0 && len(compsub) >= kMin {
			emit(sink, compsub)
		}
		return
	}

	pivot, pivotInCands, pivotDisc := selectPivot(g, not, cands)
	if !pivotInCands && pivotDisc == 0 {
		// A Not-vertex is connected to every remaining candidate: no new
		// maximal clique can be found from here.
		return
	}

	// Iterate the candidates disconnected from the pivot; a snapshot is
	// taken because cands is mutated during the loop.
	snapshot := append([]int32(nil), cands.Slice()...)
	for _, v := range snapshot {
		if v == pivot || g.AreConnected(v, pivot) {
			continue
		}
		if len(compsub)+cands.Len() < kMin {
			return
		}

		cands.RemoveSorted(v)
		tryCandidate(g, kMin, sink, compsub, not, cands, v)
		not.InsertSorted(v)
	}

	if pivotInCands {
		if len(compsub)+cands.Len() < kMin {
			return
		}
		cands.RemoveSorted(pivot)
		tryCandidate(g, kMin, sink, compsub, not, cands, pivot)
	}
}

// selectPivot scans Not then Candidates (in that order, so ties break
// toward the first-encountered vertex) and returns the vertex minimizing
// disc(p) = |Cands \ N(p)|, along with whether it came from Candidates.
func selectPivot(g *graph.Graph, not, cands ordered.IntSet) (pivot int32, pivotInCands bool, fewestDisc int) {
	fewestDisc = cands.Len() + 1
	pivot = cands.At(0)
	pivotInCands = true

	consider := func(v int32, fromCands bool) bool {
		discs := 0
		for i := 0; i < cands.Len(); i++ {
			c := cands.At(i)
			if c == v {
				continue
			}
			if !g.AreConnected(v, c) {
				discs++
			}
		}
		if fromCands {
			// v has no self-loop, so it counts as vacuously disconnected
			// from itself; a Not-sourced v is never a member of cands and
			// needs no such correction.
			discs++
		}
		if discs < fewestDisc {
			fewestDisc = discs
			pivot = v
			pivotInCands = fromCands
			if !fromCands && discs == 0 {
				return true // signal: stop scanning, dominating Not-vertex found
			}
		}
		return false
	}

	for i := 0; i < not.Len(); i++ {
		if consider(not.At(i), false) {
			return pivot, pivotInCands, fewestDisc
		}
	}
	for i := 0; i < cands.Len(); i++ {
		consider(cands.At(i), true)
	}
	return pivot, pivotInCands, fewestDisc
}

func tryCandidate(g *graph.Graph, kMin int, sink Sink, compsub []int32, not, cands ordered.IntSet, selected int32) {
	compsub = append(compsub, selected)

	newCands := ordered.Intersect(cands, g.Neighbours(selected))
	newNot := ordered.Intersect(not, g.Neighbours(selected))

	expand(g, kMin, sink, compsub, newNot, newCands)
}

func emit(sink Sink, compsub []int32) {
	out := make([]int32, len(compsub))
	copy(out, compsub)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	sink(out)
}
