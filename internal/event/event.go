package event

import (
	"github.com/google/uuid"

	"github.com/dshills/kins/internal/event/topic"
)

// Event is the envelope created once per publish call and handed to every
// handler the walk reaches. Handlers should treat it as read-only apart from
// the two stop methods.
type Event struct {
	// ID uniquely identifies this publish.
	ID string

	// Name is the topic handlers were subscribed under.
	Name topic.Topic

	// Payload is passed through to handlers unmodified.
	Payload any

	// Direction is the way this publish travels.
	Direction Direction

	source             *Node
	target             *Node
	propagationStopped bool
	stopped            bool
}

func newEvent(name topic.Topic, payload any, dir Direction, source *Node) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Name:      name,
		Payload:   payload,
		Direction: dir,
		source:    source,
		target:    source,
	}
}

// Source returns the node that published the event.
func (e *Event) Source() *Node {
	return e.source
}

// CurrentTarget returns the node whose handlers are currently running.
func (e *Event) CurrentTarget() *Node {
	return e.target
}

// Stop ends the walk. No further handler runs, on this node or any other.
func (e *Event) Stop() {
	e.stopped = true
}

// Stopped reports whether Stop has been called.
func (e *Event) Stopped() bool {
	return e.stopped
}

// StopPropagation marks the event as not to be propagated further. The tree
// publishers record the flag but do not act on it; it is available to
// handlers that cooperate through it.
func (e *Event) StopPropagation() {
	e.propagationStopped = true
}

// PropagationStopped reports whether StopPropagation has been called.
func (e *Event) PropagationStopped() bool {
	return e.propagationStopped
}
