package event

import "github.com/dshills/kins/internal/event/topic"

// interest maps an event name to the number of subscribed-by-parents
// handlers registered in a node's strict descendant subtree. Names with a
// zero count are never stored.
type interest map[topic.Topic]int

func (in interest) has(name topic.Topic) bool {
	return in[name] > 0
}

// adjust adds delta to the count for name, deleting the entry when it
// reaches zero.
func (in interest) adjust(name topic.Topic, delta int) {
	if delta == 0 {
		return
	}
	v := in[name] + delta
	if v <= 0 {
		delete(in, name)
		return
	}
	in[name] = v
}

func (in interest) clone() map[topic.Topic]int {
	out := make(map[topic.Topic]int, len(in))
	for name, n := range in {
		out[name] = n
	}
	return out
}

// propagateInterest adds (sign=+1) or removes (sign=-1) the contribution of
// child's subtree to n and every ancestor of n. The contribution is child's
// own subscribed-by-parents handlers plus child's already aggregated
// interest; child's descendants are never visited individually.
func (n *Node) propagateInterest(child *Node, sign int) {
	for a := n; a != nil; a = a.parent {
		child.fromParents.counts(func(name topic.Topic, count int) {
			a.interest.adjust(name, sign*count)
		})
	}
	for a := n; a != nil; a = a.parent {
		for name, count := range child.interest {
			a.interest.adjust(name, sign*count)
		}
	}
}

// adjustAncestors applies delta for name to every strict ancestor of n.
func (n *Node) adjustAncestors(name topic.Topic, delta int) {
	for a := n.parent; a != nil; a = a.parent {
		a.interest.adjust(name, delta)
	}
}
