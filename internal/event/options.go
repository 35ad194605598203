package event

import "time"

// Tracer observes publishes. Logging, profiling and recording are tracers;
// none of them is global state, they are handed to a node with WithTracer
// or to a single publish with WithPublishTracer.
type Tracer interface {
	// PublishStarted is called after the event is created and before any
	// handler runs.
	PublishStarted(evt *Event)

	// PublishFinished is called once the walk is over with the accepted
	// replies and the time the walk took.
	PublishFinished(evt *Event, replies []any, elapsed time.Duration)
}

// Tracers fans one publish out to several tracers, in order.
type Tracers []Tracer

// PublishStarted implements Tracer.
func (ts Tracers) PublishStarted(evt *Event) {
	for _, t := range ts {
		t.PublishStarted(evt)
	}
}

// PublishFinished implements Tracer.
func (ts Tracers) PublishFinished(evt *Event, replies []any, elapsed time.Duration) {
	for _, t := range ts {
		t.PublishFinished(evt, replies, elapsed)
	}
}

// PublishOption configures a single publish.
type PublishOption func(*publishConfig)

type publishConfig struct {
	tracer Tracer
}

// WithPublishTracer traces this publish with t instead of the tracer
// inherited from the publishing node.
func WithPublishTracer(t Tracer) PublishOption {
	return func(c *publishConfig) {
		c.tracer = t
	}
}

// effectiveTracer returns the nearest tracer on n or its ancestors.
func (n *Node) effectiveTracer() Tracer {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.tracer != nil {
			return cur.tracer
		}
	}
	return nil
}
