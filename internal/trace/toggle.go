package trace

import (
	"sync/atomic"
	"time"

	"github.com/dshills/kins/internal/event"
)

// Toggle forwards to another tracer while enabled. Its switch may be flipped
// from another goroutine, such as a config watcher.
//
// A publish that started while enabled is always reported as finished, even
// if the toggle is switched off in between.
type Toggle struct {
	next    event.Tracer
	enabled atomic.Bool
	open    map[string]struct{}
}

// NewToggle wraps next, initially enabled or not.
func NewToggle(next event.Tracer, enabled bool) *Toggle {
	t := &Toggle{
		next: next,
		open: make(map[string]struct{}),
	}
	t.enabled.Store(enabled)
	return t
}

// SetEnabled switches forwarding on or off.
func (t *Toggle) SetEnabled(enabled bool) {
	t.enabled.Store(enabled)
}

// Enabled reports whether the toggle is forwarding.
func (t *Toggle) Enabled() bool {
	return t.enabled.Load()
}

// PublishStarted implements event.Tracer.
func (t *Toggle) PublishStarted(evt *event.Event) {
	if !t.enabled.Load() {
		return
	}
	t.open[evt.ID] = struct{}{}
	t.next.PublishStarted(evt)
}

// PublishFinished implements event.Tracer.
func (t *Toggle) PublishFinished(evt *event.Event, replies []any, elapsed time.Duration) {
	if _, ok := t.open[evt.ID]; !ok {
		return
	}
	delete(t.open, evt.ID)
	t.next.PublishFinished(evt, replies, elapsed)
}
