package trace

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/kins/internal/event"
)

// LogTracer writes one line when a publish starts and one when it finishes.
// Publishes made from inside a handler are logged one level deeper.
type LogTracer struct {
	logger zerolog.Logger
	level  zerolog.Level
	depth  int
}

// LogOption configures a LogTracer.
type LogOption func(*LogTracer)

// WithLevel sets the level event lines are logged at. The default is debug.
func WithLevel(level zerolog.Level) LogOption {
	return func(t *LogTracer) {
		t.level = level
	}
}

// NewLogTracer creates a LogTracer writing to logger.
func NewLogTracer(logger zerolog.Logger, opts ...LogOption) *LogTracer {
	t := &LogTracer{
		logger: logger,
		level:  zerolog.DebugLevel,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// PublishStarted implements event.Tracer.
func (t *LogTracer) PublishStarted(evt *event.Event) {
	t.depth++
	e := t.logger.WithLevel(t.level).
		Str("event_id", evt.ID).
		Str("event", evt.Name.String()).
		Str("direction", evt.Direction.String()).
		Str("source", evt.Source().String()).
		Int("depth", t.depth)
	if evt.Payload != nil {
		e = e.Interface("payload", evt.Payload)
	}
	e.Msg(indent(t.depth) + evt.Direction.Arrow() + " " + evt.Name.String())
}

// PublishFinished implements event.Tracer.
func (t *LogTracer) PublishFinished(evt *event.Event, replies []any, elapsed time.Duration) {
	t.logger.WithLevel(t.level).
		Str("event_id", evt.ID).
		Str("event", evt.Name.String()).
		Int("depth", t.depth).
		Int("replies", len(replies)).
		Interface("reply_values", replies).
		Bool("stopped", evt.Stopped()).
		Dur("elapsed", elapsed).
		Msg(indent(t.depth) + evt.Name.String())
	if t.depth > 0 {
		t.depth--
	}
}

// Depth returns the number of publishes currently in progress.
func (t *LogTracer) Depth() int {
	return t.depth
}

func indent(depth int) string {
	if depth <= 1 {
		return ""
	}
	return strings.Repeat(" |  ", depth-1)
}
