package record

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/dshills/kins/internal/event"
)

// fixture builds root -> (a -> a1, b) with the recorder on root.
func fixture(rec *Recorder) (root, a, a1, b *event.Node) {
	root = event.NewNode(event.WithLabel("root"), event.WithTracer(rec))
	a = event.NewNode(event.WithLabel("a"))
	a1 = event.NewNode(event.WithLabel("a1"))
	b = event.NewNode(event.WithLabel("b"))
	_ = root.Append(a)
	_ = root.Append(b)
	_ = a.Append(a1)
	return root, a, a1, b
}

func fixedClock() func() time.Time {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return func() time.Time { return at }
}

func TestRecorder_TopLevelOnly(t *testing.T) {
	store := NewMemoryStore()
	rec := NewRecorder(store, WithClock(fixedClock()))
	root, a, a1, _ := fixture(rec)

	root.SubscribeToChildren("ping", event.HandlerFunc(func(evt *event.Event, payload any) any {
		// nested publish from inside a handler
		a.PublishToChildren("pong", nil, nil)
		return "ok"
	}))
	a1.SubscribeToParents("pong", event.HandlerFunc(func(*event.Event, any) any { return nil }))

	a1.PublishToParents("ping", map[string]any{"n": 1}, nil)

	records, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	got := records[0]
	if got.Event != "ping" {
		t.Errorf("expected event ping, got %q", got.Event)
	}
	if got.Direction != "parents" {
		t.Errorf("expected direction parents, got %q", got.Direction)
	}
	if diff := cmp.Diff([]int{0, 0}, got.Path); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
	if string(got.Payload) != `{"n":1}` {
		t.Errorf("expected payload {\"n\":1}, got %s", got.Payload)
	}
	if got.ID == "" {
		t.Error("expected record to carry the event ID")
	}
	if !got.At.Equal(fixedClock()()) {
		t.Errorf("expected timestamp from clock, got %v", got.At)
	}
}

func TestRecorder_Pause(t *testing.T) {
	store := NewMemoryStore()
	rec := NewRecorder(store)
	root, _, _, b := fixture(rec)
	_ = root

	rec.Pause()
	b.PublishToParents("x", nil, nil)
	rec.Resume()
	b.PublishToParents("y", nil, nil)

	records, _ := store.List(context.Background())
	if len(records) != 1 || records[0].Event != "y" {
		t.Fatalf("expected only y recorded, got %+v", records)
	}
}

func TestRecorder_UnencodablePayload(t *testing.T) {
	var buf bytes.Buffer
	store := NewMemoryStore()
	rec := NewRecorder(store, WithLogger(zerolog.New(&buf)))
	_, _, _, b := fixture(rec)

	b.PublishToParents("x", func() {}, nil)

	records, _ := store.List(context.Background())
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if string(records[0].Payload) != "null" {
		t.Errorf("expected null payload, got %s", records[0].Payload)
	}
	if !strings.Contains(buf.String(), "payload not recordable") {
		t.Errorf("expected warning to be logged, got %q", buf.String())
	}
}

func TestRecorder_StoreError(t *testing.T) {
	store := NewMemoryStore()
	_ = store.Close()
	rec := NewRecorder(store)
	_, _, _, b := fixture(rec)

	b.PublishToParents("x", nil, nil)

	if !errors.Is(rec.Err(), ErrStoreClosed) {
		t.Errorf("expected ErrStoreClosed, got %v", rec.Err())
	}
}

func TestReplay(t *testing.T) {
	store := NewMemoryStore()
	rec := NewRecorder(store)
	root, a, a1, b := fixture(rec)

	var seen []any
	root.SubscribeToChildren("click", event.HandlerFunc(func(evt *event.Event, payload any) any {
		seen = append(seen, payload)
		return evt.Source().Label()
	}))
	a.SubscribeToParents("reset", event.HandlerFunc(func(*event.Event, any) any { return "a" }))
	_ = a1

	b.PublishToParents("click", "first", nil)
	a1.PublishToParents("click", float64(2), nil)
	root.PublishToChildren("reset", nil, nil)

	seen = nil
	results, err := Replay(context.Background(), root, store, PausingRecorder(rec))
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	if diff := cmp.Diff([]any{"first", float64(2)}, seen); diff != "" {
		t.Errorf("replayed payloads mismatch (-want +got):\n%s", diff)
	}
	wantReplies := [][]any{{"b"}, {"a1"}, {"a"}}
	for i, res := range results {
		if diff := cmp.Diff(wantReplies[i], res.Replies); diff != "" {
			t.Errorf("result %d replies mismatch (-want +got):\n%s", i, diff)
		}
	}

	records, _ := store.List(context.Background())
	if len(records) != 3 {
		t.Errorf("expected replay not to record, got %d records", len(records))
	}
	if rec.Paused() {
		t.Error("expected recorder to be resumed after replay")
	}
}

func TestReplay_BadPath(t *testing.T) {
	store := NewMemoryStore()
	_ = store.Append(context.Background(), Record{
		ID:        "r1",
		Path:      []int{5},
		Direction: "parents",
		Event:     "x",
		Payload:   json.RawMessage("null"),
	})
	root := event.NewNode()

	_, err := Replay(context.Background(), root, store)
	if !errors.Is(err, event.ErrInvalidPath) {
		t.Errorf("expected ErrInvalidPath, got %v", err)
	}
}

func TestReplay_BadDirection(t *testing.T) {
	store := NewMemoryStore()
	_ = store.Append(context.Background(), Record{ID: "r1", Path: []int{}, Direction: "sideways", Event: "x"})

	_, err := Replay(context.Background(), event.NewNode(), store)
	if !errors.Is(err, event.ErrInvalidDirection) {
		t.Errorf("expected ErrInvalidDirection, got %v", err)
	}
}

func TestReplay_Canceled(t *testing.T) {
	store := NewMemoryStore()
	_ = store.Append(context.Background(), Record{ID: "r1", Path: []int{}, Direction: "parents", Event: "x"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := Replay(ctx, event.NewNode(), store)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestStores(t *testing.T) {
	open := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"sqlite": func(t *testing.T) Store {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "records.db"))
			if err != nil {
				t.Fatalf("OpenSQLite failed: %v", err)
			}
			return s
		},
	}

	at := time.Unix(0, 1700000000123456789)
	want := []Record{
		{ID: "1", Path: []int{}, Direction: "children", Event: "refresh", Payload: json.RawMessage("null"), At: at},
		{ID: "2", Path: []int{0, 2}, Direction: "parents", Event: "click", Payload: json.RawMessage(`{"x":1}`), At: at.Add(time.Second)},
	}

	for name, newStore := range open {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)
			defer s.Close()

			for _, r := range want {
				if err := s.Append(ctx, r); err != nil {
					t.Fatalf("Append failed: %v", err)
				}
			}

			got, err := s.List(ctx)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(got) != len(want) {
				t.Fatalf("expected %d records, got %d", len(want), len(got))
			}
			for i := range want {
				if got[i].ID != want[i].ID || got[i].Event != want[i].Event || got[i].Direction != want[i].Direction {
					t.Errorf("record %d: expected %+v, got %+v", i, want[i], got[i])
				}
				if diff := cmp.Diff(want[i].Path, got[i].Path); diff != "" {
					t.Errorf("record %d path mismatch (-want +got):\n%s", i, diff)
				}
				if string(got[i].Payload) != string(want[i].Payload) {
					t.Errorf("record %d: expected payload %s, got %s", i, want[i].Payload, got[i].Payload)
				}
				if !got[i].At.Equal(want[i].At) {
					t.Errorf("record %d: expected at %v, got %v", i, want[i].At, got[i].At)
				}
			}

			if err := s.Clear(ctx); err != nil {
				t.Fatalf("Clear failed: %v", err)
			}
			got, _ = s.List(ctx)
			if len(got) != 0 {
				t.Errorf("expected empty store after Clear, got %d", len(got))
			}

			if err := s.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}
			if err := s.Close(); err != nil {
				t.Errorf("expected second Close to be a no-op, got %v", err)
			}
			if err := s.Append(ctx, want[0]); !errors.Is(err, ErrStoreClosed) {
				t.Errorf("expected ErrStoreClosed from Append, got %v", err)
			}
			if _, err := s.List(ctx); !errors.Is(err, ErrStoreClosed) {
				t.Errorf("expected ErrStoreClosed from List, got %v", err)
			}
			if err := s.Clear(ctx); !errors.Is(err, ErrStoreClosed) {
				t.Errorf("expected ErrStoreClosed from Clear, got %v", err)
			}
		})
	}
}

func TestSQLiteStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")
	ctx := context.Background()

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	_ = s.Append(ctx, Record{ID: "1", Path: []int{1}, Direction: "parents", Event: "x", At: time.Now()})
	_ = s.Close()

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	got, _ := s.List(ctx)
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("expected persisted record, got %+v", got)
	}
	if string(got[0].Payload) != "null" {
		t.Errorf("expected empty payload stored as null, got %s", got[0].Payload)
	}
}
