// Package bloomtree implements the perfect-binary-tree index over clique
// membership that prunes the percolation engine's adjacency search: a
// Bloom filter keyed by (tree-node id, graph-node id) summarizes, for
// every internal tree node, the union of node memberships of all
// descendant clique leaves, and a parallel AssignedBranches bitmap marks
// subtrees whose leaves are fully consumed.
//
// Grounded on cp5.cpp's `bloom` / `intersecting_clique_finder` /
// `assigned_branches_t`.
package bloomtree

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/aaronmcdaid/cpm/pkg/cpmerrors"
	"github.com/aaronmcdaid/cpm/pkg/collections"
)

// DefaultBits is the fixed Bloom filter width (~1.25 GiB at 1 bit each).
// It is a compile-time design constant, never auto-sized from input size.
const DefaultBits int64 = 10_000_000_000

// Tree is a perfect binary tree with P = nextPow2(numCliques) leaves,
// backed by a single large Bloom filter.
type Tree struct {
	powerUp int32
	bits    *collections.BigBitset
	calls   int64 // instrumentation: number of bits ever set, for tests/logging
}

// NextPow2 returns the smallest power of two >= n (n >= 1).
func NextPow2(n int) int32 {
	p := int32(1)
	for int(p) < n {
		p <<= 1
	}
	return p
}

// New builds an empty tree sized for numCliques leaves.
func New(numCliques int, bits int64) *Tree {
	if bits <= 0 {
		bits = DefaultBits
	}
	return &Tree{
		powerUp: NextPow2(numCliques),
		bits:    collections.NewBigBitset(bits),
	}
}

// PowerUp returns P, the number of leaves (a power of two).
func (t *Tree) PowerUp() int32 { return t.powerUp }

func (t *Tree) bitIndex(branch int32, node int32) int64 {
	var buf [8]byte
	key := (int64(branch) << 32) | int64(uint32(node))
	binary.LittleEndian.PutUint64(buf[:], uint64(key))
	return int64(xxhash.Sum64(buf[:]) % uint64(t.bits.Bits()))
}

// AddClique records the clique whose leaf is leafBranch (= P + clique id)
// into the leaf's own bucket and every ancestor bucket up to (but not
// including) the root.
func (t *Tree) AddClique(leafBranch int32, nodes []int32) {
	for b := leafBranch; b > 1; b >>= 1 {
		for _, n := range nodes {
			if t.bits.Set(t.bitIndex(b, n)) {
				t.calls++
			}
		}
	}
}

// OverlapEstimate returns a value >= |nodes ∩ summarized(branch)|, the
// upper-bound intersection size used to decide whether a branch is worth
// descending into. It short-circuits: returns threshold as soon as that
// many hits are found, and returns 0 as soon as the remaining unchecked
// nodes can no longer reach threshold. Calling with branch == 1 (the
// root, which is never populated) is an internal invariant violation.
func (t *Tree) OverlapEstimate(nodes []int32, branch int32, threshold int) int {
	cpmerrors.Invariant(branch > 1, "OverlapEstimate called on root branch")
	count := 0
	for i, n := range nodes {
		if t.bits.Test(t.bitIndex(branch, n)) {
			count++
			if count >= threshold {
				return count
			}
		}
		remaining := len(nodes) - i - 1
		if count+remaining < threshold {
			return 0
		}
	}
	return count
}

// Rebuild clears the filter and re-adds every clique whose component, as
// reported by componentOf, equals sourceComponent.
func (t *Tree) Rebuild(cliques [][]int32, componentOf func(int32) int32, sourceComponent int32) {
	t.bits.ClearAll()
	for c, nodes := range cliques {
		if componentOf(int32(c)) == sourceComponent {
			t.AddClique(t.powerUp+int32(c), nodes)
		}
	}
}

// AssignedBranches is a bitmap over the same perfect binary tree marking
// subtrees whose leaves are all either invalid (beyond the real clique
// count) or already consumed by the current community search.
type AssignedBranches struct {
	bits *collections.Bitset
}

// NewAssignedBranches builds the bitmap for a tree with the given powerUp
// (P) and number of real cliques (C), pre-marking the P-C invalid leaves
// [P+C, 2P) as done and propagating that upward.
func NewAssignedBranches(powerUp, numCliques int32) *AssignedBranches {
	a := &AssignedBranches{bits: collections.NewBitset(int(2 * powerUp))}
	for leaf := powerUp + numCliques; leaf < 2*powerUp; leaf++ {
		a.MarkAsDone(leaf)
	}
	return a
}

// MarkAsDone marks branch (leaf or internal) as done, then walks upward
// marking each ancestor done as soon as both its children are done, per
// the propagation invariant. It returns the number of branches newly
// marked this call (0 or 1 at the leaf itself — but the recursive
// ascent can mark several ancestors too).
func (a *AssignedBranches) MarkAsDone(branch int32) int {
	if a.bits.Test(int(branch)) {
		return 0
	}
	a.bits.Set(int(branch))
	marked := 1
	if branch > 1 {
		sibling := branch ^ 1
		if a.bits.Test(int(sibling)) {
			marked += a.MarkAsDone(branch >> 1)
		}
	}
	return marked
}

// IsDone reports whether branch (and therefore every leaf in its subtree)
// has been fully consumed.
func (a *AssignedBranches) IsDone(branch int32) bool {
	return a.bits.Test(int(branch))
}
