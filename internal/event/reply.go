package event

import "github.com/dshills/kins/internal/event/topic"

// PublishUptoFirstReply publishes in dir and stops at the first reply.
func (n *Node) PublishUptoFirstReply(dir Direction, name topic.Topic, payload any, opts ...PublishOption) (any, bool) {
	publish := n.publisherFor(dir)

	var (
		first any
		found bool
	)
	publish(name, payload, func(evt *Event, reply any) bool {
		first, found = reply, true
		evt.Stop()
		return true
	}, opts...)

	return first, found
}

// PublishUptoFirstUsefulReply publishes in dir and stops at the first reply
// useful accepts. A nil useful accepts any reply.
func (n *Node) PublishUptoFirstUsefulReply(dir Direction, name topic.Topic, payload any, useful Filter, opts ...PublishOption) (any, bool) {
	publish := n.publisherFor(dir)

	var (
		found any
		ok    bool
	)
	publish(name, payload, func(evt *Event, reply any) bool {
		if useful.accepts(evt, reply) {
			found, ok = reply, true
			evt.Stop()
		}
		return true
	}, opts...)

	return found, ok
}

// PublishToParentsUptoFirstReply returns the reply of the nearest ancestor
// with a matching subscription. Farther ancestors are not visited.
func (n *Node) PublishToParentsUptoFirstReply(name topic.Topic, payload any, opts ...PublishOption) (any, bool) {
	return n.PublishUptoFirstReply(Parents, name, payload, opts...)
}

// PublishToChildrenUptoFirstReply returns the first reply in pre-order.
func (n *Node) PublishToChildrenUptoFirstReply(name topic.Topic, payload any, opts ...PublishOption) (any, bool) {
	return n.PublishUptoFirstReply(Children, name, payload, opts...)
}

// PublishToParentsUptoFirstUsefulReply returns the nearest ancestor reply that useful accepts.
func (n *Node) PublishToParentsUptoFirstUsefulReply(name topic.Topic, payload any, useful Filter, opts ...PublishOption) (any, bool) {
	return n.PublishUptoFirstUsefulReply(Parents, name, payload, useful, opts...)
}

// PublishToChildrenUptoFirstUsefulReply returns the first pre-order reply that useful accepts.
func (n *Node) PublishToChildrenUptoFirstUsefulReply(name topic.Topic, payload any, useful Filter, opts ...PublishOption) (any, bool) {
	return n.PublishUptoFirstUsefulReply(Children, name, payload, useful, opts...)
}
