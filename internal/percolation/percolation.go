// Package percolation drives the level-by-level k-clique community search:
// for k = k_min..k_max it groups cliques of size >= k into communities where
// two cliques are adjacent iff they share at least t = k-1 nodes, reusing
// each level's communities as the next level's source components.
//
// Grounded on cp5.cpp's outer percolation loop and its BloomTree-pruned
// `find_neighbours` recursive tree search.
package percolation

import (
	"context"
	"math"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/aaronmcdaid/cpm/internal/bloomtree"
	"github.com/aaronmcdaid/cpm/internal/clique"
	"github.com/aaronmcdaid/cpm/internal/partition"
	"github.com/aaronmcdaid/cpm/pkg/cpmerrors"
	"github.com/aaronmcdaid/cpm/pkg/cpmlog"
)

// Options configures a single run of the percolation engine.
type Options struct {
	KMin, KMax   int // KMax 0 means "largest clique size"
	RebuildBloom bool
	BloomBits    int64
	Logger       cpmlog.Logger
	Tracer       trace.Tracer
	Meter        metric.Meter
}

// LevelResult is the set of communities found at one level k, as clique id
// membership lists (OutputWriter resolves these to node-id unions).
type LevelResult struct {
	K           int
	Communities [][]int32
}

// Engine holds the immutable clique set and run options across every level.
type Engine struct {
	cliques clique.Set
	opts    Options

	communitiesCounter metric.Int64Counter
	cliquesCounter     metric.Int64Counter
}

// NewEngine builds an Engine. Nil Logger/Tracer/Meter fields are treated as
// no-ops.
func NewEngine(cliques clique.Set, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = cpmlog.NopLogger{}
	}
	e := &Engine{cliques: cliques, opts: opts}
	if opts.Meter != nil {
		if c, err := opts.Meter.Int64Counter("cpm.communities_found"); err == nil {
			e.communitiesCounter = c
		}
		if c, err := opts.Meter.Int64Counter("cpm.cliques_examined"); err == nil {
			e.cliquesCounter = c
		}
	}
	return e
}

// Run executes the full k_min..k_max percolation sweep, calling emit once
// per level in increasing k order. It stops early (without error) once a
// level with no remaining source components is reached, and fails with
// cpmerrors.ErrNoCliquesAboveThreshold if the very first level (k_min)
// finds no communities at all.
func (e *Engine) Run(ctx context.Context, emit func(LevelResult) error) error {
	numCliques := len(e.cliques)
	if numCliques > math.MaxInt32 {
		return cpmerrors.Wrap(cpmerrors.CodeTooManyCliques,
			"clique count exceeds 32-bit id range", nil)
	}
	if numCliques == 0 {
		return cpmerrors.New(cpmerrors.CodeNoCliquesAboveThresh,
			"no cliques of size >= k_min were found")
	}

	kMax := e.opts.KMax
	if kMax == 0 {
		kMax = e.maxCliqueSize()
	}

	powerUp := bloomtree.NextPow2(numCliques)
	store := partition.NewSingleComponent(numCliques)
	sourceComponents := []int32{0}
	anyCommunityEver := false

	for k := e.opts.KMin; k <= kMax; k++ {
		t := k - 1

		ctx, span := e.startSpan(ctx, k)
		ab := bloomtree.NewAssignedBranches(powerUp, int32(numCliques))
		for c := 0; c < numCliques; c++ {
			if len(e.cliques[c]) <= t {
				ab.MarkAsDone(powerUp + int32(c))
			}
		}

		var foundCommunities [][]int32
		for len(sourceComponents) > 0 {
			s := sourceComponents[len(sourceComponents)-1]
			sourceComponents = sourceComponents[:len(sourceComponents)-1]

			tree := bloomtree.New(numCliques, e.bloomBits())
			tree.Rebuild(e.cliques, store.ComponentOf, s)
			cliquesInTree := len(store.Members(s))

			for {
				members := store.Members(s)
				if len(members) == 0 {
					break
				}
				seed := members[0]

				componentToGrow := store.CreateEmptyComponent()
				store.MoveNode(seed, componentToGrow, s)
				ab.MarkAsDone(powerUp + seed)

				frontier := []int32{seed}
				for len(frontier) > 0 {
					u := frontier[len(frontier)-1]
					frontier = frontier[:len(frontier)-1]

					remainingInS := len(store.Members(s))
					if e.opts.RebuildBloom && remainingInS > 100 && 2*remainingInS < cliquesInTree {
						tree.Rebuild(e.cliques, store.ComponentOf, s)
						cliquesInTree = remainingInS
					}

					newlyFound := e.searchNeighbours(tree, ab, powerUp, e.cliques[u], t, s, store)
					for _, c := range newlyFound {
						store.MoveNode(c, componentToGrow, s)
						frontier = append(frontier, c)
					}
				}

				foundCommunities = append(foundCommunities, store.Members(componentToGrow))
			}
		}

		if e.communitiesCounter != nil {
			e.communitiesCounter.Add(ctx, int64(len(foundCommunities)), metric.WithAttributes(attribute.Int("k", k)))
		}
		if e.cliquesCounter != nil {
			e.cliquesCounter.Add(ctx, int64(numCliques), metric.WithAttributes(attribute.Int("k", k)))
		}
		if len(foundCommunities) > 0 {
			anyCommunityEver = true
		}

		if err := emit(LevelResult{K: k, Communities: foundCommunities}); err != nil {
			e.endSpan(span, err)
			return err
		}
		e.endSpan(span, nil)

		if len(foundCommunities) == 0 {
			break
		}
		if k == kMax {
			break
		}

		store, sourceComponents = e.nextLevel(foundCommunities, k+1)
		if len(sourceComponents) == 0 {
			break
		}
	}

	if !anyCommunityEver {
		return cpmerrors.New(cpmerrors.CodeNoCliquesAboveThresh,
			"no communities found at k_min")
	}
	return nil
}

// nextLevel builds the PartitionStore and source_components stack for
// k+1: every found community that contains at least one clique of size
// >= k+1 becomes a new source component seeded with exactly those
// qualifying cliques; smaller cliques are dropped.
func (e *Engine) nextLevel(foundCommunities [][]int32, nextK int) (*partition.Store, []int32) {
	store := partition.NewSingleComponent(len(e.cliques))
	var sources []int32

	for _, community := range foundCommunities {
		var qualifying []int32
		for _, c := range community {
			if len(e.cliques[c]) >= nextK {
				qualifying = append(qualifying, c)
			}
		}
		if len(qualifying) == 0 {
			continue
		}
		s := store.CreateEmptyComponent()
		for _, c := range qualifying {
			store.MoveNode(c, s, 0)
		}
		sources = append(sources, s)
	}
	return store, sources
}

// searchNeighbours implements the BloomTree-pruned recursive tree search:
// starting from the (unpopulated) root, it descends only into subtrees
// whose Bloom-filter overlap estimate still reaches the threshold, and at
// each reachable leaf verifies the true intersection size before
// accepting a match.
func (e *Engine) searchNeighbours(tree *bloomtree.Tree, ab *bloomtree.AssignedBranches, powerUp int32, current clique.Clique, t int, source int32, store *partition.Store) []int32 {
	var found []int32
	var rec func(b int32)
	rec = func(b int32) {
		if ab.IsDone(b) {
			return
		}
		if b < powerUp {
			left, right := 2*b, 2*b+1
			leftDone, rightDone := ab.IsDone(left), ab.IsDone(right)
			if leftDone != rightDone {
				if leftDone {
					rec(right)
				} else {
					rec(left)
				}
				return
			}
		}
		if b > 1 {
			if tree.OverlapEstimate(current, b, t) < t {
				return
			}
		}
		if b >= powerUp {
			c := b - powerUp
			if store.ComponentOf(c) != source {
				return
			}
			if intersectSize(e.cliques[c], current) >= t {
				found = append(found, c)
				ab.MarkAsDone(b)
			}
			return
		}
		rec(2 * b)
		rec(2*b + 1)
	}
	rec(1)
	return found
}

func intersectSize(a, b []int32) int {
	count, i, j := 0, 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			count++
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return count
}

func (e *Engine) maxCliqueSize() int {
	max := 0
	for _, c := range e.cliques {
		if len(c) > max {
			max = len(c)
		}
	}
	return max
}

func (e *Engine) bloomBits() int64 {
	if e.opts.BloomBits > 0 {
		return e.opts.BloomBits
	}
	return bloomtree.DefaultBits
}

func (e *Engine) startSpan(ctx context.Context, k int) (context.Context, trace.Span) {
	if e.opts.Tracer == nil {
		return ctx, nil
	}
	ctx, span := e.opts.Tracer.Start(ctx, "percolation.level", trace.WithAttributes(attribute.Int("k", k)))
	return ctx, span
}

func (e *Engine) endSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
	}
	span.End()
}
