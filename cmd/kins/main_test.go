package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const todo = "testdata/todo.yaml"

// runCLI executes args and returns stdout and stderr.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	c := newCLI()
	c.stderr = &stderr
	err := execute(context.Background(), c, args, strings.NewReader(stdin), &stdout)
	return stdout.String(), stderr.String(), err
}

func decodeLines(t *testing.T, out string) []any {
	t.Helper()
	var values []any
	dec := json.NewDecoder(strings.NewReader(out))
	for dec.More() {
		var v any
		if err := dec.Decode(&v); err != nil {
			t.Fatalf("decoding %q: %v", out, err)
		}
		values = append(values, v)
	}
	return values
}

func TestPublish(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want any
	}{
		{
			name: "all replies",
			args: []string{"publish", todo, "-d", "children", "-e", "count"},
			want: []any{float64(1), float64(1)},
		},
		{
			name: "from label",
			args: []string{"publish", todo, "--from", "second", "-d", "parents", "-e", "WHO_ARE_YOU"},
			want: []any{"app"},
		},
		{
			name: "no replies",
			args: []string{"publish", todo, "-d", "children", "-e", "nothing"},
			want: []any{},
		},
		{
			name: "first",
			args: []string{"publish", todo, "-d", "children", "-e", "refresh", "--first"},
			want: "list saw 2",
		},
		{
			name: "payload with set",
			args: []string{"publish", todo, "--from", "first", "-d", "up", "-e", "item.toggled",
				"--payload", `{"done":false}`, "--set", "done=true", "--first"},
			want: map[string]any{"from": "first", "done": true},
		},
		{
			name: "useful",
			args: []string{"publish", todo, "--from", "first", "-d", "parents", "-e", "item.toggled",
				"--set", "done=true", "--useful", "done"},
			want: map[string]any{"from": "first", "done": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, stderr, err := runCLI(t, "", tt.args...)
			if err != nil {
				t.Fatalf("publish failed: %v (stderr %q)", err, stderr)
			}
			got := decodeLines(t, out)
			if len(got) != 1 {
				t.Fatalf("expected one JSON value, got %q", out)
			}
			if diff := cmp.Diff(tt.want, got[0]); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPublish_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing event", []string{"publish", todo, "-d", "parents"}, `"event"`},
		{"unknown label", []string{"publish", todo, "--from", "nobody", "-d", "parents", "-e", "x"}, "nobody"},
		{"bad direction", []string{"publish", todo, "-d", "sideways", "-e", "x"}, "invalid publish direction"},
		{"bad event", []string{"publish", todo, "-d", "parents", "-e", ""}, "invalid topic"},
		{"bad payload", []string{"publish", todo, "-d", "parents", "-e", "x", "--payload", "{"}, "invalid JSON"},
		{"bad set", []string{"publish", todo, "-d", "parents", "-e", "x", "--set", "novalue"}, "PATH=VALUE"},
		{"no useful reply", []string{"publish", todo, "--from", "first", "-d", "parents", "-e", "item.toggled",
			"--set", "done=false", "--useful", "done"}, "no reply"},
		{"missing scene", []string{"publish", "testdata/absent.yaml", "-d", "parents", "-e", "x"}, "absent.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, "", tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestPublish_NoReplyIsSentinel(t *testing.T) {
	_, _, err := runCLI(t, "", "publish", todo, "-d", "children", "-e", "nothing", "--first")
	if !errors.Is(err, errNoReply) {
		t.Errorf("expected errNoReply, got %v", err)
	}
}

func TestRender(t *testing.T) {
	out, _, err := runCLI(t, "", "render", todo)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.HasPrefix(out, `<main class="todo-app"><h1>Todos</h1>`) {
		t.Errorf("unexpected markup %q", out)
	}
	if !strings.HasSuffix(out, "</ul></main>\n") {
		t.Errorf("unexpected markup ending %q", out)
	}
}

func TestTree(t *testing.T) {
	out, _, err := runCLI(t, "", "tree", todo)
	if err != nil {
		t.Fatalf("tree failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	want := []string{
		"app <main> [] children=WHO_ARE_YOU,item.toggled interest=count:2,refresh:2",
		"  header <h1> [0]",
		"  entry <input> [1]",
		"  list <ul> [2] parents=refresh interest=count:2,refresh:1",
		"    first <li> [2 0] parents=count",
		"    second <li> [2 1] parents=count,refresh",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordAndReplay(t *testing.T) {
	db := filepath.Join(t.TempDir(), "run.db")

	if _, _, err := runCLI(t, "", "--record", db, "publish", todo, "--from", "first", "-d", "parents",
		"-e", "item.toggled", "--set", "done=true"); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if _, _, err := runCLI(t, "", "--record", db, "publish", todo, "-d", "children", "-e", "refresh"); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	out, _, err := runCLI(t, "", "--record", db, "replay", todo, "--db", db)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	lines := decodeLines(t, out)
	if len(lines) != 2 {
		t.Fatalf("expected 2 replayed publishes, got %q", out)
	}

	first := lines[0].(map[string]any)
	if first["event"] != "item.toggled" || first["direction"] != "parents" {
		t.Errorf("unexpected first record %v", first)
	}
	if diff := cmp.Diff([]any{float64(2), float64(0)}, first["path"]); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
	wantReplies := []any{map[string]any{"from": "first", "done": true}}
	if diff := cmp.Diff(wantReplies, first["replies"]); diff != "" {
		t.Errorf("replies mismatch (-want +got):\n%s", diff)
	}

	second := lines[1].(map[string]any)
	if diff := cmp.Diff([]any{"list saw 2", "second"}, second["replies"]); diff != "" {
		t.Errorf("replies mismatch (-want +got):\n%s", diff)
	}

	// Replaying with recording on must not grow the log.
	out, _, err = runCLI(t, "", "replay", todo, "--db", db)
	if err != nil {
		t.Fatalf("second replay failed: %v", err)
	}
	if n := len(decodeLines(t, out)); n != 2 {
		t.Errorf("expected 2 records after replay, got %d", n)
	}
}

func TestSession(t *testing.T) {
	input := strings.Join([]string{
		"# warm up",
		". children count",
		"second parents WHO_ARE_YOU",
		`first parents item.toggled {"done": true}`,
		"first sideways x",
		"profile",
		"",
	}, "\n")

	out, _, err := runCLI(t, input, "--profile", "session", todo)
	if err != nil {
		t.Fatalf("session failed: %v", err)
	}

	lines := decodeLines(t, out)
	if len(lines) != 5 {
		t.Fatalf("expected 5 output lines, got %q", out)
	}
	if diff := cmp.Diff([]any{float64(1), float64(1)}, lines[0]); diff != "" {
		t.Errorf("count mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{"app"}, lines[1]); diff != "" {
		t.Errorf("WHO_ARE_YOU mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{map[string]any{"from": "first", "done": true}}, lines[2]); diff != "" {
		t.Errorf("toggle mismatch (-want +got):\n%s", diff)
	}
	if e, ok := lines[3].(map[string]any); !ok || !strings.Contains(e["error"].(string), "invalid publish direction") {
		t.Errorf("expected direction error, got %v", lines[3])
	}
	if profiles, ok := lines[4].([]any); !ok || len(profiles) != 3 {
		t.Errorf("expected 3 profile entries, got %v", lines[4])
	}
}

func TestEventsFlagLogs(t *testing.T) {
	_, stderr, err := runCLI(t, "", "--events", "--log-level", "debug", "publish", todo, "-d", "children", "-e", "refresh")
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if !strings.Contains(stderr, "▼ refresh") || !strings.Contains(stderr, "count") {
		t.Errorf("expected nested event log, got %q", stderr)
	}
}

func TestMetricsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kins.prom")
	if _, _, err := runCLI(t, "", "--metrics-file", path, "publish", todo, "-d", "children", "-e", "count"); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading metrics: %v", err)
	}
	if !strings.Contains(string(b), `kins_events_published_total{direction="children",event="count"} 1`) {
		t.Errorf("expected published counter, got:\n%s", b)
	}
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kins.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: debug\n  events: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, stderr, err := runCLI(t, "", "--config", path, "publish", todo, "-d", "children", "-e", "count")
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if !strings.Contains(stderr, "count") {
		t.Errorf("expected event log from config, got %q", stderr)
	}

	if err := os.WriteFile(path, []byte("log: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, "", "--config", path, "tree", todo); err == nil {
		t.Error("expected bad config to fail")
	}
}

func TestExecute_LogsErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kins.toml")
	if err := os.WriteFile(path, []byte("[log]\nformat = \"json\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, stderr, err := runCLI(t, "", "--config", path, "publish", todo, "-d", "sideways", "-e", "x")
	if err == nil {
		t.Fatal("expected publish to fail")
	}
	var entry map[string]any
	for _, line := range strings.Split(strings.TrimSpace(stderr), "\n") {
		var m map[string]any
		if json.Unmarshal([]byte(line), &m) == nil && m["message"] == "command failed" {
			entry = m
		}
	}
	if entry == nil {
		t.Fatalf("expected a command failed log entry, got %q", stderr)
	}
	if entry["level"] != "error" || !strings.Contains(entry["error"].(string), "invalid publish direction") {
		t.Errorf("unexpected log entry %v", entry)
	}

	// Errors raised before the App exists still reach the log.
	_, stderr, err = runCLI(t, "", "publish", todo, "-d", "parents")
	if err == nil {
		t.Fatal("expected missing flag to fail")
	}
	if !strings.Contains(stderr, "command failed") || !strings.Contains(stderr, "event") {
		t.Errorf("expected console error log, got %q", stderr)
	}
}
