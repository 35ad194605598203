package event

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func buildPathTree() (root *Node, byLabel map[string]*Node) {
	ns := labelled("root", "a", "b", "b0", "b1", "b1x")
	byLabel = make(map[string]*Node, len(ns))
	for _, n := range ns {
		byLabel[n.Label()] = n
	}
	root = byLabel["root"]
	_ = root.Append(byLabel["a"])
	_ = root.Append(byLabel["b"])
	_ = byLabel["b"].Append(byLabel["b0"])
	_ = byLabel["b"].Append(byLabel["b1"])
	_ = byLabel["b1"].Append(byLabel["b1x"])
	return root, byLabel
}

func TestPath(t *testing.T) {
	root, byLabel := buildPathTree()

	tests := []struct {
		label string
		want  []int
	}{
		{"root", []int{}},
		{"a", []int{0}},
		{"b", []int{1}},
		{"b1", []int{1, 1}},
		{"b1x", []int{1, 1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			n := byLabel[tt.label]
			got := n.Path()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("unexpected path (-want +got):\n%s", diff)
			}
			back, err := root.NodeAt(got)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if back != n {
				t.Errorf("expected path to resolve to %s, got %s", n, back)
			}
			if n.Root() != root {
				t.Errorf("expected root, got %s", n.Root())
			}
		})
	}
}

func TestNodeAt_Relative(t *testing.T) {
	_, byLabel := buildPathTree()

	got, err := byLabel["b"].NodeAt([]int{1, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != byLabel["b1x"] {
		t.Errorf("expected b1x, got %s", got)
	}
}

func TestNodeAt_Invalid(t *testing.T) {
	root, _ := buildPathTree()

	for _, path := range [][]int{{2}, {-1}, {1, 1, 0, 0}} {
		_, err := root.NodeAt(path)
		if !errors.Is(err, ErrInvalidPath) {
			t.Errorf("path %v: expected ErrInvalidPath, got %v", path, err)
		}
		var pe *PathError
		if !errors.As(err, &pe) {
			t.Errorf("path %v: expected *PathError, got %T", path, err)
		}
	}

	_, err := root.NodeAt([]int{1, 5})
	var pe *PathError
	if errors.As(err, &pe) && (pe.Depth != 1 || pe.Children != 2) {
		t.Errorf("expected depth 1 with 2 children, got depth %d with %d", pe.Depth, pe.Children)
	}
}

func TestWalk_PreOrderAndSkip(t *testing.T) {
	root, _ := buildPathTree()

	var got []string
	root.Walk(func(n *Node, depth int) bool {
		got = append(got, n.Label())
		return n.Label() != "b1"
	})

	want := []string{"root", "a", "b", "b0", "b1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected walk (-want +got):\n%s", diff)
	}
}
