package trace

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/kins/internal/event"
)

// Profile is the accumulated cost of one event name in one direction.
type Profile struct {
	Key   string        `json:"key"`
	Count int           `json:"count"`
	Total time.Duration `json:"total_ns"`
}

// Profiler accumulates the time spent in publishes, keyed by direction
// arrow and event name ("▲who-are-you", "▼refresh"). Nested publishes are
// counted inside their caller's time as well as under their own key.
// A Profiler is safe for concurrent use.
type Profiler struct {
	mu      sync.Mutex
	entries map[string]*Profile
}

// NewProfiler creates an empty profiler.
func NewProfiler() *Profiler {
	return &Profiler{entries: make(map[string]*Profile)}
}

// PublishStarted implements event.Tracer.
func (p *Profiler) PublishStarted(*event.Event) {}

// PublishFinished implements event.Tracer.
func (p *Profiler) PublishFinished(evt *event.Event, _ []any, elapsed time.Duration) {
	key := Key(evt.Direction, evt.Name.String())

	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[key]
	if !ok {
		entry = &Profile{Key: key}
		p.entries[key] = entry
	}
	entry.Count++
	entry.Total += elapsed
}

// Snapshot returns the profiles sorted by total time, largest first.
func (p *Profiler) Snapshot() []Profile {
	p.mu.Lock()
	out := make([]Profile, 0, len(p.entries))
	for _, e := range p.entries {
		out = append(out, *e)
	}
	p.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Get returns the profile for key.
func (p *Profiler) Get(key string) (Profile, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[key]
	if !ok {
		return Profile{}, false
	}
	return *e, true
}

// Reset discards everything accumulated so far.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.entries = make(map[string]*Profile)
}

// Log writes the snapshot to logger, one line per key.
func (p *Profiler) Log(logger zerolog.Logger) {
	for _, e := range p.Snapshot() {
		logger.Info().
			Str("key", e.Key).
			Int("count", e.Count).
			Dur("total", e.Total).
			Msg("event profile")
	}
}

// Key builds the profile key for a direction and event name.
func Key(dir event.Direction, name string) string {
	return dir.Arrow() + name
}
