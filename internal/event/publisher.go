package event

import (
	"fmt"
	"time"

	"github.com/dshills/kins/internal/event/topic"
)

// publishFunc is the common signature of PublishToParents and PublishToChildren.
type publishFunc func(name topic.Topic, payload any, filter Filter, opts ...PublishOption) []any

// walk carries the state of one publish call. Each publish owns its walk,
// so handlers may publish again before returning.
type walk struct {
	evt     *Event
	filter  Filter
	replies []any
	tracer  Tracer
	start   time.Time
}

func (n *Node) beginWalk(dir Direction, name topic.Topic, payload any, filter Filter, opts []PublishOption) *walk {
	mustTopic(name)
	cfg := publishConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.tracer == nil {
		cfg.tracer = n.effectiveTracer()
	}

	w := &walk{
		evt:    newEvent(name, payload, dir, n),
		filter: filter,
		tracer: cfg.tracer,
	}
	if w.tracer != nil {
		w.start = time.Now()
		w.tracer.PublishStarted(w.evt)
	}
	return w
}

func (w *walk) finish() []any {
	if w.tracer != nil {
		w.tracer.PublishFinished(w.evt, w.replies, time.Since(w.start))
	}
	return w.replies
}

// visit runs handlers against node in order and reports whether the walk
// may continue.
func (w *walk) visit(node *Node, handlers []Handler) bool {
	w.evt.target = node
	for _, h := range handlers {
		reply := h.Handle(w.evt, w.evt.Payload)
		if w.filter.accepts(w.evt, reply) {
			w.replies = append(w.replies, reply)
		}
		if w.evt.stopped {
			return false
		}
	}
	return true
}

// PublishToParents delivers name to the subscribed-by-children handlers of
// every ancestor, nearest first, and returns the replies the filter accepts.
// Every ancestor is checked directly; interest counts are not consulted.
func (n *Node) PublishToParents(name topic.Topic, payload any, filter Filter, opts ...PublishOption) []any {
	w := n.beginWalk(Parents, name, payload, filter, opts)
	for cur := n.parent; cur != nil; cur = cur.parent {
		if !w.visit(cur, cur.fromChildren.Handlers(name)) {
			break
		}
	}
	return w.finish()
}

// PublishToChildren delivers name to the subscribed-by-parents handlers of
// n's descendants in pre-order and returns the replies the filter accepts.
// n's own handlers are not run. A node's children are only visited when its
// interest count for name is non-zero.
func (n *Node) PublishToChildren(name topic.Topic, payload any, filter Filter, opts ...PublishOption) []any {
	w := n.beginWalk(Children, name, payload, filter, opts)
	if n.interest.has(name) {
		stack := pushChildren(nil, n)
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !w.visit(cur, cur.fromParents.Handlers(name)) {
				break
			}
			if cur.interest.has(name) {
				stack = pushChildren(stack, cur)
			}
		}
	}
	return w.finish()
}

// pushChildren pushes node's children so that the first child is popped first.
func pushChildren(stack []*Node, node *Node) []*Node {
	for i := len(node.children) - 1; i >= 0; i-- {
		stack = append(stack, node.children[i])
	}
	return stack
}

// Publish delivers name in the given direction.
// It panics if dir is neither Parents nor Children.
func (n *Node) Publish(dir Direction, name topic.Topic, payload any, filter Filter, opts ...PublishOption) []any {
	return n.publisherFor(dir)(name, payload, filter, opts...)
}

func (n *Node) publisherFor(dir Direction) publishFunc {
	switch dir {
	case Parents:
		return n.PublishToParents
	case Children:
		return n.PublishToChildren
	default:
		panic(fmt.Errorf("%w: %d", ErrInvalidDirection, int(dir)))
	}
}
