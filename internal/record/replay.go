package record

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dshills/kins/internal/event"
	"github.com/dshills/kins/internal/event/topic"
)

// Replayer re-issues recorded publishes against a tree.
type Replayer struct {
	store    Store
	recorder *Recorder
	logger   zerolog.Logger
}

// ReplayOption configures a Replayer.
type ReplayOption func(*Replayer)

// PausingRecorder pauses rec for the duration of a replay so replayed
// publishes are not recorded a second time.
func PausingRecorder(rec *Recorder) ReplayOption {
	return func(r *Replayer) {
		r.recorder = rec
	}
}

// WithReplayLogger sets the logger used to report each replayed record.
func WithReplayLogger(logger zerolog.Logger) ReplayOption {
	return func(r *Replayer) {
		r.logger = logger
	}
}

// NewReplayer creates a Replayer reading from store.
func NewReplayer(store Store, opts ...ReplayOption) *Replayer {
	r := &Replayer{
		store:  store,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result is the outcome of replaying one record.
type Result struct {
	Record  Record
	Replies []any
}

// Replay resolves every record relative to root, in order, and publishes it
// again. It stops at the first record that cannot be replayed.
func (r *Replayer) Replay(ctx context.Context, root *event.Node) ([]Result, error) {
	records, err := r.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}

	if r.recorder != nil && !r.recorder.Paused() {
		r.recorder.Pause()
		defer r.recorder.Resume()
	}

	results := make([]Result, 0, len(records))
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		replies, err := replayOne(root, rec)
		if err != nil {
			return results, fmt.Errorf("replaying record %s: %w", rec.ID, err)
		}
		r.logger.Debug().
			Str("event", rec.Event).
			Ints("path", rec.Path).
			Int("replies", len(replies)).
			Msg("replayed event")
		results = append(results, Result{Record: rec, Replies: replies})
	}
	return results, nil
}

func replayOne(root *event.Node, rec Record) ([]any, error) {
	node, err := root.NodeAt(rec.Path)
	if err != nil {
		return nil, err
	}
	dir, err := event.ParseDirection(rec.Direction)
	if err != nil {
		return nil, err
	}
	name := topic.Topic(rec.Event)
	if !name.IsValid() {
		return nil, fmt.Errorf("%w: %q", event.ErrInvalidTopic, rec.Event)
	}

	var payload any
	if len(rec.Payload) > 0 {
		if err := json.Unmarshal(rec.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decoding payload: %w", err)
		}
	}
	return node.Publish(dir, name, payload, nil), nil
}

// Replay replays every record in store against root.
func Replay(ctx context.Context, root *event.Node, store Store, opts ...ReplayOption) ([]Result, error) {
	return NewReplayer(store, opts...).Replay(ctx, root)
}
