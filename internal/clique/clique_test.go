package clique

import (
	"sort"
	"testing"

	"github.com/aaronmcdaid/cpm/internal/graph"
)

func mustGraph(t *testing.T, n int, edges []graph.Edge) *graph.Graph {
	t.Helper()
	g, err := graph.New(n, edges)
	if err != nil {
		t.Fatalf("graph.New: %v", err)
	}
	return g
}

func sortCliques(cs Set) []string {
	var out []string
	for _, c := range cs {
		out = append(out, formatClique(c))
	}
	sort.Strings(out)
	return out
}

func formatClique(c Clique) string {
	s := ""
	for i, v := range c {
		if i > 0 {
			s += ","
		}
		s += string(rune('0' + v))
	}
	return s
}

func TestTriangleSingleMaximalClique(t *testing.T) {
	g := mustGraph(t, 3, []graph.Edge{{Lo: 0, Hi: 1}, {Lo: 1, Hi: 2}, {Lo: 0, Hi: 2}})
	cs, err := ToSet(g, 3)
	if err != nil {
		t.Fatalf("ToSet: %v", err)
	}
	if len(cs) != 1 {
		t.Fatalf("got %d cliques, want 1: %v", len(cs), cs)
	}
	want := []int32{0, 1, 2}
	for i := range want {
		if cs[0][i] != want[i] {
			t.Fatalf("clique = %v, want %v", cs[0], want)
		}
	}
}

func TestTwoDisjointTriangles(t *testing.T) {
	g := mustGraph(t, 6, []graph.Edge{
		{Lo: 0, Hi: 1}, {Lo: 1, Hi: 2}, {Lo: 0, Hi: 2},
		{Lo: 3, Hi: 4}, {Lo: 4, Hi: 5}, {Lo: 3, Hi: 5},
	})
	cs, err := ToSet(g, 3)
	if err != nil {
		t.Fatalf("ToSet: %v", err)
	}
	got := sortCliques(cs)
	want := []string{"0,1,2", "3,4,5"}
	assertStrSlice(t, got, want)
}

func TestTwoTrianglesSharingAnEdge(t *testing.T) {
	g := mustGraph(t, 4, []graph.Edge{
		{Lo: 0, Hi: 1}, {Lo: 1, Hi: 2}, {Lo: 0, Hi: 2},
		{Lo: 1, Hi: 3}, {Lo: 2, Hi: 3},
	})
	cs, err := ToSet(g, 3)
	if err != nil {
		t.Fatalf("ToSet: %v", err)
	}
	got := sortCliques(cs)
	want := []string{"0,1,2", "1,2,3"}
	assertStrSlice(t, got, want)
}

func TestK4SingleMaximalClique(t *testing.T) {
	edges := []graph.Edge{}
	for i := int32(0); i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			edges = append(edges, graph.Edge{Lo: i, Hi: j})
		}
	}
	g := mustGraph(t, 4, edges)
	cs, err := ToSet(g, 3)
	if err != nil {
		t.Fatalf("ToSet: %v", err)
	}
	if len(cs) != 1 || len(cs[0]) != 4 {
		t.Fatalf("got %v, want one clique of size 4", cs)
	}
}

func TestBowTie(t *testing.T) {
	g := mustGraph(t, 5, []graph.Edge{
		{Lo: 0, Hi: 1}, {Lo: 1, Hi: 2}, {Lo: 0, Hi: 2},
		{Lo: 2, Hi: 3}, {Lo: 3, Hi: 4}, {Lo: 2, Hi: 4},
	})
	cs, err := ToSet(g, 3)
	if err != nil {
		t.Fatalf("ToSet: %v", err)
	}
	got := sortCliques(cs)
	want := []string{"0,1,2", "2,3,4"}
	assertStrSlice(t, got, want)
}

func TestPathHasNoTriangle(t *testing.T) {
	g := mustGraph(t, 4, []graph.Edge{{Lo: 0, Hi: 1}, {Lo: 1, Hi: 2}, {Lo: 2, Hi: 3}})
	cs, err := ToSet(g, 3)
	if err != nil {
		t.Fatalf("ToSet: %v", err)
	}
	if len(cs) != 0 {
		t.Fatalf("got %v, want no cliques", cs)
	}
}

func TestInvalidKMin(t *testing.T) {
	g := mustGraph(t, 3, []graph.Edge{{Lo: 0, Hi: 1}})
	_, err := ToSet(g, 2)
	if err == nil {
		t.Fatal("expected error for kMin < 3")
	}
}

func TestEveryCliqueSortedAndMaximal(t *testing.T) {
	// A graph with an overlapping clique structure: 0-1-2-3 complete,
	// plus 3-4-5 triangle hanging off node 3.
	edges := []graph.Edge{
		{Lo: 0, Hi: 1}, {Lo: 0, Hi: 2}, {Lo: 0, Hi: 3},
		{Lo: 1, Hi: 2}, {Lo: 1, Hi: 3}, {Lo: 2, Hi: 3},
		{Lo: 3, Hi: 4}, {Lo: 4, Hi: 5}, {Lo: 3, Hi: 5},
	}
	g := mustGraph(t, 6, edges)
	cs, err := ToSet(g, 3)
	if err != nil {
		t.Fatalf("ToSet: %v", err)
	}
	for _, c := range cs {
		for i := 1; i < len(c); i++ {
			if c[i-1] >= c[i] {
				t.Fatalf("clique %v not strictly ascending", c)
			}
		}
		for i := 0; i < len(c); i++ {
			for j := i + 1; j < len(c); j++ {
				if !g.AreConnected(c[i], c[j]) {
					t.Fatalf("clique %v has non-adjacent pair (%d,%d)", c, c[i], c[j])
				}
			}
		}
	}
	got := sortCliques(cs)
	want := []string{"0,1,2,3", "3,4,5"}
	assertStrSlice(t, got, want)
}

func assertStrSlice(t *testing.T, got, want []string) {
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
