package partition

import "testing"

func TestSingleComponentSeed(t *testing.T) {
	s := NewSingleComponent(4)
	for c := int32(0); c < 4; c++ {
		if s.ComponentOf(c) != 0 {
			t.Fatalf("clique %d in component %d, want 0", c, s.ComponentOf(c))
		}
	}
	members := s.Members(0)
	if len(members) != 4 {
		t.Fatalf("Members(0) = %v, want 4 entries", members)
	}
}

func TestMoveNodeAndEmptyReuse(t *testing.T) {
	s := NewSingleComponent(3)
	grow := s.CreateEmptyComponent()
	s.MoveNode(0, grow, 0)
	s.MoveNode(1, grow, 0)

	if s.ComponentOf(0) != grow || s.ComponentOf(1) != grow {
		t.Fatal("expected 0 and 1 in grow component")
	}
	members := s.Members(0)
	if len(members) != 1 || members[0] != 2 {
		t.Fatalf("Members(0) = %v, want [2]", members)
	}

	// drain component "grow" back to empty and check it's offered for reuse
	s.MoveNode(0, 0, grow)
	s.MoveNode(1, 0, grow)
	top, ok := s.TopEmptyComponent()
	if !ok || top != grow {
		t.Fatalf("TopEmptyComponent() = (%d, %v), want (%d, true)", top, ok, grow)
	}
}

func TestMembersDisjointAndComplete(t *testing.T) {
	s := NewSingleComponent(5)
	a := s.CreateEmptyComponent()
	b := s.CreateEmptyComponent()
	s.MoveNode(0, a, 0)
	s.MoveNode(1, a, 0)
	s.MoveNode(2, b, 0)

	total := len(s.Members(0)) + len(s.Members(a)) + len(s.Members(b))
	if total != 5 {
		t.Fatalf("total members = %d, want 5", total)
	}
	seen := map[int32]bool{}
	for _, cid := range []int32{0, a, b} {
		for _, c := range s.Members(cid) {
			if seen[c] {
				t.Fatalf("clique %d appears in more than one component", c)
			}
			seen[c] = true
		}
	}
}
