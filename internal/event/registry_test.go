package event

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/kins/internal/event/topic"
)

func TestRegistry_AddAndCount(t *testing.T) {
	r := NewRegistry()

	if got := r.Add("X", reply(1)); got != 1 {
		t.Errorf("expected 1 handler for X, got %d", got)
	}
	if got := r.Add("X", reply(2)); got != 2 {
		t.Errorf("expected 2 handlers for X, got %d", got)
	}
	r.Add("Y", reply(3))

	if r.Count("X") != 2 || r.Count("Y") != 1 || r.Count("Z") != 0 {
		t.Errorf("unexpected counts X=%d Y=%d Z=%d", r.Count("X"), r.Count("Y"), r.Count("Z"))
	}
	if r.Len() != 3 {
		t.Errorf("expected total 3, got %d", r.Len())
	}
	if diff := cmp.Diff([]topic.Topic{"X", "Y"}, r.Names()); diff != "" {
		t.Errorf("unexpected names (-want +got):\n%s", diff)
	}
}

func TestRegistry_HandlersOrderAndCopy(t *testing.T) {
	r := NewRegistry()
	r.Add("X", reply("first"))
	r.Add("X", reply("second"))

	hs := r.Handlers("X")
	if len(hs) != 2 {
		t.Fatalf("expected 2 handlers, got %d", len(hs))
	}
	if hs[0].Handle(nil, nil) != "first" || hs[1].Handle(nil, nil) != "second" {
		t.Error("expected handlers in registration order")
	}

	r.Add("X", reply("third"))
	if len(hs) != 2 {
		t.Error("expected returned slice to be unaffected by later subscriptions")
	}
	if r.Handlers("missing") != nil {
		t.Error("expected nil for a name without handlers")
	}
}

func TestRegistry_RemoveAll(t *testing.T) {
	r := NewRegistry()
	r.Add("X", reply(1))
	r.Add("X", reply(2))
	r.Add("Y", reply(3))

	if got := r.RemoveAll("X"); got != 2 {
		t.Errorf("expected 2 removed, got %d", got)
	}
	if got := r.RemoveAll("X"); got != 0 {
		t.Errorf("expected 0 removed, got %d", got)
	}
	if r.Len() != 1 {
		t.Errorf("expected total 1, got %d", r.Len())
	}
}

func TestNode_SubscriptionNames(t *testing.T) {
	n := NewNode()
	n.SubscribeToParents("b", reply(1))
	n.SubscribeToParents("a", reply(1))
	n.SubscribeToParents("a", reply(2))
	n.SubscribeToChildren("c", reply(3))

	if diff := cmp.Diff([]topic.Topic{"a", "b"}, n.ParentSubscriptionNames()); diff != "" {
		t.Errorf("parent names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]topic.Topic{"c"}, n.ChildSubscriptionNames()); diff != "" {
		t.Errorf("child names mismatch (-want +got):\n%s", diff)
	}
	if got := n.ParentSubscriptions("a"); got != 2 {
		t.Errorf("expected 2 handlers for a, got %d", got)
	}
}
