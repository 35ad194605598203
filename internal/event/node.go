package event

import (
	"fmt"

	"github.com/dshills/kins/internal/event/topic"
)

// Mirror is an external structure kept in step with the node tree, such as
// an element tree that is rendered. Tree edits call it before changing the
// node tree; an error aborts the edit.
type Mirror interface {
	AppendChild(child Mirror) error
	InsertBefore(child, ref Mirror) error
	RemoveChild(child Mirror) error
}

// Node is a member of the routing tree.
//
// A node owns its child sequence; the parent link is a back-reference used
// for ascending walks and path queries. Subscriptions belong to the node and
// survive detaching and reattaching it.
type Node struct {
	label        string
	parent       *Node
	children     []*Node
	fromParents  *Registry
	fromChildren *Registry
	interest     interest
	mirror       Mirror
	tracer       Tracer
}

// NodeOption configures a Node.
type NodeOption func(*Node)

// WithLabel sets a label used in logs and lookups. Labels need not be unique.
func WithLabel(label string) NodeOption {
	return func(n *Node) {
		n.label = label
	}
}

// WithMirror attaches an external structure that follows this node's edits.
func WithMirror(m Mirror) NodeOption {
	return func(n *Node) {
		n.mirror = m
	}
}

// WithTracer sets the tracer used for publishes from this node and from
// descendants that do not set their own.
func WithTracer(t Tracer) NodeOption {
	return func(n *Node) {
		n.tracer = t
	}
}

// NewNode creates a node with no parent, no children and no subscriptions.
func NewNode(opts ...NodeOption) *Node {
	n := &Node{
		fromParents:  NewRegistry(),
		fromChildren: NewRegistry(),
		interest:     make(interest),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Label returns the node's label.
func (n *Node) Label() string {
	return n.label
}

// String returns the label, or the node's address when unlabelled.
func (n *Node) String() string {
	if n.label != "" {
		return n.label
	}
	return fmt.Sprintf("node(%p)", n)
}

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns a copy of the child sequence.
func (n *Node) Children() []*Node {
	if len(n.children) == 0 {
		return nil
	}
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// Mirror returns the external structure attached to the node, if any.
func (n *Node) Mirror() Mirror {
	return n.mirror
}

// SetTracer replaces the node's tracer. A nil tracer makes the node inherit
// from its ancestors again.
func (n *Node) SetTracer(t Tracer) {
	n.tracer = t
}

// Interest returns how many subscribed-by-parents handlers for name exist
// in the node's descendants.
func (n *Node) Interest(name topic.Topic) int {
	return n.interest[name]
}

// InterestSnapshot returns a copy of the node's interest counts.
func (n *Node) InterestSnapshot() map[topic.Topic]int {
	return n.interest.clone()
}

// ParentSubscriptions returns the number of handlers the node registered for
// name with SubscribeToParents.
func (n *Node) ParentSubscriptions(name topic.Topic) int {
	return n.fromParents.Count(name)
}

// ChildSubscriptions returns the number of handlers the node registered for
// name with SubscribeToChildren.
func (n *Node) ChildSubscriptions(name topic.Topic) int {
	return n.fromChildren.Count(name)
}

// ParentSubscriptionNames returns the sorted names the node handles from
// its ancestors.
func (n *Node) ParentSubscriptionNames() []topic.Topic {
	return n.fromParents.Names()
}

// ChildSubscriptionNames returns the sorted names the node handles from its
// descendants.
func (n *Node) ChildSubscriptionNames() []topic.Topic {
	return n.fromChildren.Names()
}

// SubscribeToParents registers h to run when an ancestor publishes name to
// its children. Every ancestor's interest in name grows by one.
func (n *Node) SubscribeToParents(name topic.Topic, h Handler) *Node {
	mustSubscribe(name, h)
	n.fromParents.Add(name, h)
	n.adjustAncestors(name, 1)
	return n
}

// SubscribeToChildren registers h to run when a descendant publishes name
// to its parents.
func (n *Node) SubscribeToChildren(name topic.Topic, h Handler) *Node {
	mustSubscribe(name, h)
	n.fromChildren.Add(name, h)
	return n
}

// UnsubscribeFromParents removes every handler registered for name with
// SubscribeToParents and returns how many were removed. Ancestor interest
// shrinks by the same amount.
func (n *Node) UnsubscribeFromParents(name topic.Topic) int {
	removed := n.fromParents.RemoveAll(name)
	n.adjustAncestors(name, -removed)
	return removed
}

// UnsubscribeFromChildren removes every handler registered for name with
// SubscribeToChildren and returns how many were removed.
func (n *Node) UnsubscribeFromChildren(name topic.Topic) int {
	return n.fromChildren.RemoveAll(name)
}

func mustSubscribe(name topic.Topic, h Handler) {
	mustTopic(name)
	if h == nil {
		panic(ErrNilHandler)
	}
}

func mustTopic(name topic.Topic) {
	if !name.IsValid() {
		panic(fmt.Errorf("%w: %q", ErrInvalidTopic, name))
	}
}
