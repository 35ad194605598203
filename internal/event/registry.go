package event

import (
	"sort"

	"github.com/dshills/kins/internal/event/topic"
)

// Registry holds a node's handlers for one direction, keyed by event name.
// Handlers for a name are kept in registration order. The zero value is not
// usable; create one with NewRegistry.
type Registry struct {
	subs  map[topic.Topic][]Handler
	total int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		subs: make(map[topic.Topic][]Handler),
	}
}

// Add appends a handler for name and returns how many handlers name now has.
func (r *Registry) Add(name topic.Topic, h Handler) int {
	r.subs[name] = append(r.subs[name], h)
	r.total++
	return len(r.subs[name])
}

// RemoveAll drops every handler for name and returns how many were dropped.
func (r *Registry) RemoveAll(name topic.Topic) int {
	n := len(r.subs[name])
	if n == 0 {
		return 0
	}
	delete(r.subs, name)
	r.total -= n
	return n
}

// Handlers returns the handlers for name in registration order.
// The returned slice is a copy, so subscriptions made while a walk is
// running take effect from the next publish.
func (r *Registry) Handlers(name topic.Topic) []Handler {
	subs := r.subs[name]
	if len(subs) == 0 {
		return nil
	}
	result := make([]Handler, len(subs))
	copy(result, subs)
	return result
}

// Count returns the number of handlers for name.
func (r *Registry) Count(name topic.Topic) int {
	return len(r.subs[name])
}

// Len returns the total number of handlers across all names.
func (r *Registry) Len() int {
	return r.total
}

// Names returns the names with at least one handler, sorted.
func (r *Registry) Names() []topic.Topic {
	names := make([]topic.Topic, 0, len(r.subs))
	for name := range r.subs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// counts calls fn with the handler count of every subscribed name.
func (r *Registry) counts(fn func(name topic.Topic, n int)) {
	for name, subs := range r.subs {
		fn(name, len(subs))
	}
}
