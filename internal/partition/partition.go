// Package partition implements the disjoint-set-like bookkeeping the
// percolation engine needs at each level: a mapping from clique id to
// component id, with O(1) moves and O(1) empty-component reuse via an
// intrusive doubly linked list over clique ids (so Members never
// allocates more than its own snapshot).
package partition

import "github.com/aaronmcdaid/cpm/pkg/cpmerrors"

const sentinel = -1

// Store is a mutable clique-id -> component-id partition for one
// percolation level.
type Store struct {
	componentOf []int32 // clique id -> component id
	head        []int32 // component id -> first clique id in its list, or sentinel
	next        []int32 // clique id -> next clique id in its component's list, or sentinel
	prev        []int32 // clique id -> previous clique id in its component's list, or sentinel
	emptyStack  []int32 // free-list of component ids with no members
	numComps    int32
}

// NewSingleComponent creates a store with every clique placed in
// component 0 — the seed used for the first percolation level (k_min),
// and also the starting point for building a later level's store: component
// 0 there plays the role of an unused catch-all, cliques that qualify for
// the next level get moved out of it into a fresh source component.
func NewSingleComponent(numCliques int) *Store {
	s := &Store{
		componentOf: make([]int32, numCliques),
		head:        []int32{sentinel},
		next:        make([]int32, numCliques),
		prev:        make([]int32, numCliques),
		numComps:    1,
	}
	for c := 0; c < numCliques; c++ {
		s.componentOf[c] = 0
		s.linkFront(0, int32(c))
	}
	return s
}

// ComponentOf returns the component id a clique currently belongs to.
func (s *Store) ComponentOf(c int32) int32 { return s.componentOf[c] }

// CreateEmptyComponent allocates a new, empty component and returns its id.
func (s *Store) CreateEmptyComponent() int32 {
	cid := s.numComps
	s.numComps++
	s.head = append(s.head, sentinel)
	return cid
}

// TopEmptyComponent returns the component id at the top of the
// empty-components free list, if any is currently empty and has been
// pushed there by a prior MoveNode that drained a component.
func (s *Store) TopEmptyComponent() (int32, bool) {
	if len(s.emptyStack) == 0 {
		return 0, false
	}
	return s.emptyStack[len(s.emptyStack)-1], true
}

// MoveNode moves clique c from component fromCid to component newCid.
// Preconditions: c's current component is fromCid, newCid != fromCid,
// and newCid already exists (was returned by CreateEmptyComponent).
func (s *Store) MoveNode(c, newCid, fromCid int32) {
	cpmerrors.Invariant(s.componentOf[c] == fromCid,
		"MoveNode: clique %d is in component %d, not %d", c, s.componentOf[c], fromCid)
	cpmerrors.Invariant(newCid != fromCid, "MoveNode: newCid == fromCid (%d)", newCid)

	s.unlink(fromCid, c)
	if s.head[fromCid] == sentinel {
		s.emptyStack = append(s.emptyStack, fromCid)
	}
	if s.head[newCid] == sentinel {
		if top, ok := s.TopEmptyComponent(); ok && top == newCid {
			s.emptyStack = s.emptyStack[:len(s.emptyStack)-1]
		}
	}
	s.componentOf[c] = newCid
	s.linkFront(newCid, c)
}

// Members returns a stable snapshot of the clique ids currently in cid.
func (s *Store) Members(cid int32) []int32 {
	var out []int32
	for c := s.head[cid]; c != sentinel; c = s.next[c] {
		out = append(out, c)
	}
	return out
}

func (s *Store) linkFront(cid, c int32) {
	old := s.head[cid]
	s.prev[c] = sentinel
	s.next[c] = old
	if old != sentinel {
		s.prev[old] = c
	}
	s.head[cid] = c
}

func (s *Store) unlink(cid, c int32) {
	p, n := s.prev[c], s.next[c]
	if p != sentinel {
		s.next[p] = n
	} else {
		s.head[cid] = n
	}
	if n != sentinel {
		s.prev[n] = p
	}
	s.prev[c] = sentinel
	s.next[c] = sentinel
}
