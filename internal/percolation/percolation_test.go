package percolation

import (
	"context"
	"sort"
	"testing"

	"github.com/aaronmcdaid/cpm/internal/clique"
	"github.com/aaronmcdaid/cpm/internal/graph"
	"github.com/aaronmcdaid/cpm/pkg/cpmerrors"
)

func cliquesFor(t *testing.T, n int, edges []graph.Edge, kMin int) clique.Set {
	t.Helper()
	g, err := graph.New(n, edges)
	if err != nil {
		t.Fatalf("graph.New: %v", err)
	}
	cs, err := clique.ToSet(g, kMin)
	if err != nil {
		t.Fatalf("clique.ToSet: %v", err)
	}
	return cs
}

func communityNodeSets(t *testing.T, cs clique.Set, level LevelResult) []string {
	t.Helper()
	var out []string
	for _, community := range level.Communities {
		nodes := map[int32]bool{}
		for _, cid := range community {
			for _, n := range cs[cid] {
				nodes[n] = true
			}
		}
		var ns []int
		for n := range nodes {
			ns = append(ns, int(n))
		}
		sort.Ints(ns)
		s := ""
		for i, n := range ns {
			if i > 0 {
				s += ","
			}
			s += string(rune('0' + n))
		}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func runLevels(t *testing.T, cs clique.Set, kMin, kMax int) map[int]LevelResult {
	t.Helper()
	e := NewEngine(cs, Options{KMin: kMin, KMax: kMax})
	results := map[int]LevelResult{}
	err := e.Run(context.Background(), func(lr LevelResult) error {
		results[lr.K] = lr
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return results
}

func TestTriangleOneCommunity(t *testing.T) {
	cs := cliquesFor(t, 3, []graph.Edge{{Lo: 0, Hi: 1}, {Lo: 1, Hi: 2}, {Lo: 0, Hi: 2}}, 3)
	levels := runLevels(t, cs, 3, 3)
	got := communityNodeSets(t, cs, levels[3])
	want := []string{"0,1,2"}
	assertEqualStr(t, got, want)
}

func TestTwoDisjointTrianglesTwoCommunities(t *testing.T) {
	cs := cliquesFor(t, 6, []graph.Edge{
		{Lo: 0, Hi: 1}, {Lo: 1, Hi: 2}, {Lo: 0, Hi: 2},
		{Lo: 3, Hi: 4}, {Lo: 4, Hi: 5}, {Lo: 3, Hi: 5},
	}, 3)
	levels := runLevels(t, cs, 3, 3)
	got := communityNodeSets(t, cs, levels[3])
	want := []string{"0,1,2", "3,4,5"}
	assertEqualStr(t, got, want)
}

func TestTwoTrianglesSharingEdgeMergeAtK3(t *testing.T) {
	cs := cliquesFor(t, 4, []graph.Edge{
		{Lo: 0, Hi: 1}, {Lo: 1, Hi: 2}, {Lo: 0, Hi: 2},
		{Lo: 1, Hi: 3}, {Lo: 2, Hi: 3},
	}, 3)
	levels := runLevels(t, cs, 3, 3)
	got := communityNodeSets(t, cs, levels[3])
	want := []string{"0,1,2,3"}
	assertEqualStr(t, got, want)
}

func TestK4AtK3AndK4(t *testing.T) {
	var edges []graph.Edge
	for i := int32(0); i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			edges = append(edges, graph.Edge{Lo: i, Hi: j})
		}
	}
	cs := cliquesFor(t, 4, edges, 3)
	levels := runLevels(t, cs, 3, 0)

	got3 := communityNodeSets(t, cs, levels[3])
	assertEqualStr(t, got3, []string{"0,1,2,3"})

	got4 := communityNodeSets(t, cs, levels[4])
	assertEqualStr(t, got4, []string{"0,1,2,3"})

	if _, ok := levels[5]; ok {
		t.Fatal("expected no level 5: max clique size is 4")
	}
}

func TestBowTieTwoCommunitiesSharingNode(t *testing.T) {
	cs := cliquesFor(t, 5, []graph.Edge{
		{Lo: 0, Hi: 1}, {Lo: 1, Hi: 2}, {Lo: 0, Hi: 2},
		{Lo: 2, Hi: 3}, {Lo: 3, Hi: 4}, {Lo: 2, Hi: 4},
	}, 3)
	levels := runLevels(t, cs, 3, 3)
	got := communityNodeSets(t, cs, levels[3])
	want := []string{"0,1,2", "2,3,4"}
	assertEqualStr(t, got, want)
}

func TestPathNoTrianglesReportsNoCliquesAboveThreshold(t *testing.T) {
	g, err := graph.New(4, []graph.Edge{{Lo: 0, Hi: 1}, {Lo: 1, Hi: 2}, {Lo: 2, Hi: 3}})
	if err != nil {
		t.Fatalf("graph.New: %v", err)
	}
	cs, err := clique.ToSet(g, 3)
	if err != nil {
		t.Fatalf("clique.ToSet: %v", err)
	}
	e := NewEngine(cs, Options{KMin: 3, KMax: 3})
	err = e.Run(context.Background(), func(LevelResult) error { return nil })
	if !cpmerrors.IsNoCliquesAboveThreshold(err) {
		t.Fatalf("Run error = %v, want NoCliquesAboveThreshold", err)
	}
}

func assertEqualStr(t *testing.T, got, want []string) {
	t.Helper()
	sort.Strings(got)
	sort.Strings(want)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
