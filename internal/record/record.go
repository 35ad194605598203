package record

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/kins/internal/event"
)

// ErrStoreClosed is returned by stores after Close.
var ErrStoreClosed = errors.New("record store is closed")

// Record is one captured publish.
type Record struct {
	// ID is the ID of the recorded event.
	ID string `json:"id"`

	// Path is the publishing node's child-index path from the root.
	Path []int `json:"path"`

	// Direction is "parents" or "children".
	Direction string `json:"direction"`

	// Event is the event name.
	Event string `json:"event"`

	// Payload is the JSON encoding of the payload; "null" for none.
	Payload json.RawMessage `json:"payload"`

	// At is when the publish started.
	At time.Time `json:"at"`
}

// Store persists records in the order they were appended.
type Store interface {
	Append(ctx context.Context, r Record) error
	List(ctx context.Context) ([]Record, error)
	Clear(ctx context.Context) error
	Close() error
}

// Recorder appends every top-level publish to a Store.
type Recorder struct {
	store  Store
	logger zerolog.Logger
	depth  int
	paused bool
	err    error
	now    func() time.Time
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithLogger sets the logger used to report store and encoding failures.
func WithLogger(logger zerolog.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithClock replaces time.Now for record timestamps.
func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) {
		r.now = now
	}
}

// NewRecorder creates a Recorder writing to store.
func NewRecorder(store Store, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store:  store,
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Pause stops recording until Resume is called.
func (r *Recorder) Pause() {
	r.paused = true
}

// Resume restarts recording after Pause.
func (r *Recorder) Resume() {
	r.paused = false
}

// Paused reports whether recording is paused.
func (r *Recorder) Paused() bool {
	return r.paused
}

// Err returns the last store error, if any.
func (r *Recorder) Err() error {
	return r.err
}

// PublishStarted implements event.Tracer.
func (r *Recorder) PublishStarted(evt *event.Event) {
	r.depth++
	if r.depth > 1 || r.paused {
		return
	}

	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		r.logger.Warn().Err(err).
			Str("event", evt.Name.String()).
			Msg("payload not recordable, storing null")
		payload = json.RawMessage("null")
	}

	rec := Record{
		ID:        evt.ID,
		Path:      evt.Source().Path(),
		Direction: evt.Direction.String(),
		Event:     evt.Name.String(),
		Payload:   payload,
		At:        r.now(),
	}
	if err := r.store.Append(context.Background(), rec); err != nil {
		r.err = err
		r.logger.Error().Err(err).
			Str("event", rec.Event).
			Ints("path", rec.Path).
			Msg("failed to record event")
	}
}

// PublishFinished implements event.Tracer.
func (r *Recorder) PublishFinished(*event.Event, []any, time.Duration) {
	if r.depth > 0 {
		r.depth--
	}
}
