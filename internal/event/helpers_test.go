package event

import (
	"github.com/dshills/kins/internal/event/topic"
)

// reply returns a handler that always answers v.
func reply(v any) Handler {
	return HandlerFunc(func(*Event, any) any { return v })
}

// spy counts its invocations and answers with the visited node's label.
type spy struct {
	calls int
}

func (s *spy) Handle(evt *Event, _ any) any {
	s.calls++
	return evt.CurrentTarget().Label()
}

// labelled builds a detached node per label.
func labelled(labels ...string) []*Node {
	nodes := make([]*Node, len(labels))
	for i, l := range labels {
		nodes[i] = NewNode(WithLabel(l))
	}
	return nodes
}

// chain attaches each node under the previous one and returns the first.
func chain(nodes ...*Node) *Node {
	for i := 1; i < len(nodes); i++ {
		if err := nodes[i-1].Append(nodes[i]); err != nil {
			panic(err)
		}
	}
	return nodes[0]
}

// recount computes a node's interest map from scratch by visiting every
// strict descendant.
func recount(n *Node) map[topic.Topic]int {
	want := make(map[topic.Topic]int)
	for _, c := range n.children {
		c.Walk(func(d *Node, _ int) bool {
			d.fromParents.counts(func(name topic.Topic, k int) {
				want[name] += k
			})
			return true
		})
	}
	return want
}
