package syntax

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func leaf(typ string) *Node { return &Node{Type: typ} }

func branch(typ string, children ...*Node) *Node {
	return &Node{Type: typ, Children: children}
}

func TestWalk_PreOrderWithAncestors(t *testing.T) {
	root := branch("program",
		branch("array",
			branch("object", leaf("pair1"), leaf("pair2")),
		),
		leaf("tail"),
	)

	var visits []string
	Walk(root, func(n *Node, ancestors []*Node) bool {
		path := ""
		for _, a := range ancestors {
			path += a.Type + "/"
		}
		visits = append(visits, path+n.Type)
		return true
	})

	want := []string{
		"program",
		"program/array",
		"program/array/object",
		"program/array/object/pair1",
		"program/array/object/pair2",
		"program/tail",
	}
	if diff := cmp.Diff(want, visits); diff != "" {
		t.Errorf("visit order mismatch (-want +got):\n%s", diff)
	}
}

func TestWalk_Stop(t *testing.T) {
	root := branch("a", leaf("b"), leaf("c"), leaf("d"))

	var seen []string
	completed := Walk(root, func(n *Node, _ []*Node) bool {
		seen = append(seen, n.Type)
		return n.Type != "c"
	})

	if completed {
		t.Error("Walk reported completion after being stopped")
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, seen); diff != "" {
		t.Errorf("visits mismatch (-want +got):\n%s", diff)
	}
}

func TestWalk_Nil(t *testing.T) {
	called := false
	if !Walk(nil, func(*Node, []*Node) bool { called = true; return true }) {
		t.Error("Walk(nil) should report completion")
	}
	if called {
		t.Error("callback called for nil root")
	}
}

func TestAncestor(t *testing.T) {
	a, b, c := leaf("a"), leaf("b"), leaf("c")
	ancestors := []*Node{a, b, c}

	if got := Ancestor(ancestors, 1); got != c {
		t.Errorf("parent = %v, want c", got)
	}
	if got := Ancestor(ancestors, 2); got != b {
		t.Errorf("grandparent = %v, want b", got)
	}
	if got := Ancestor(ancestors, 4); got != nil {
		t.Errorf("past root = %v, want nil", got)
	}
	if got := Ancestor(ancestors, 0); got != nil {
		t.Errorf("up=0 = %v, want nil", got)
	}
}
