package event

import (
	"fmt"
	"strings"
)

// Direction selects which way a publish travels through the tree.
type Direction int

const (
	// Parents publishes from a node toward the root.
	Parents Direction = iota + 1

	// Children publishes from a node into its descendants.
	Children
)

// String returns a human-readable direction name.
func (d Direction) String() string {
	switch d {
	case Parents:
		return "parents"
	case Children:
		return "children"
	default:
		return "unknown"
	}
}

// Arrow returns the glyph used in event logs and profile keys.
func (d Direction) Arrow() string {
	switch d {
	case Parents:
		return "▲"
	case Children:
		return "▼"
	default:
		return "?"
	}
}

// ParseDirection converts "parents" or "children" to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "parents", "up":
		return Parents, nil
	case "children", "down":
		return Children, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

// Handler reacts to a published event and returns a reply.
// The node being visited is evt.CurrentTarget(). A nil reply is still a reply.
type Handler interface {
	Handle(evt *Event, payload any) any
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(evt *Event, payload any) any

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(evt *Event, payload any) any {
	return f(evt, payload)
}

// Filter decides whether a reply is kept in the result of a publish.
// A nil Filter keeps every reply. A Filter may call evt.Stop to end the walk.
type Filter func(evt *Event, reply any) bool

// Accept returns a Filter that keeps every reply when keep is true and none otherwise.
func Accept(keep bool) Filter {
	return func(*Event, any) bool { return keep }
}

func (f Filter) accepts(evt *Event, reply any) bool {
	if f == nil {
		return true
	}
	return f(evt, reply)
}
