package scene

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/kins/internal/event"
	"github.com/dshills/kins/internal/event/topic"
	"github.com/dshills/kins/internal/render"
)

// DefaultScriptTimeout bounds a top-level Lua handler call.
const DefaultScriptTimeout = 5 * time.Second

// Scene is a built tree plus its label index.
type Scene struct {
	Name string
	Root *event.Node

	nodes   map[string]*event.Node
	scripts *scripts
}

// Option configures Build.
type Option func(*builder)

// WithTracer attaches t to the root node.
func WithTracer(t event.Tracer) Option {
	return func(b *builder) {
		b.tracer = t
	}
}

// WithLogger receives Lua print output and handler failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(b *builder) {
		b.logger = logger
	}
}

// WithScriptTimeout bounds each top-level Lua handler call. Zero disables
// the limit.
func WithScriptTimeout(d time.Duration) Option {
	return func(b *builder) {
		b.timeout = d
	}
}

type builder struct {
	tracer  event.Tracer
	logger  zerolog.Logger
	timeout time.Duration
	scene   *Scene
}

// Open loads and builds the scene file at path.
func Open(path string, opts ...Option) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return Build(doc, opts...)
}

// Build creates the node tree for doc. Each node gets a render.Element
// mirror. Close the scene to release its Lua interpreter.
func Build(doc *Document, opts ...Option) (*Scene, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	b := &builder{
		logger:  zerolog.Nop(),
		timeout: DefaultScriptTimeout,
		scene: &Scene{
			Name:  doc.Name,
			nodes: make(map[string]*event.Node),
		},
	}
	for _, opt := range opts {
		opt(b)
	}

	root, err := b.build(&doc.Root, "root")
	if err != nil {
		b.scene.Close()
		return nil, err
	}
	if b.tracer != nil {
		root.SetTracer(b.tracer)
	}
	b.scene.Root = root
	return b.scene, nil
}

func (b *builder) build(spec *NodeSpec, at string) (*event.Node, error) {
	el := render.NewElement(spec.Tag, spec.Attributes)
	if spec.Text != "" {
		if err := el.SetText(spec.Text); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidScene, at, err)
		}
	}
	node := event.NewNode(event.WithLabel(spec.Label), event.WithMirror(el))

	for i, sub := range spec.Parents {
		h, err := b.handler(sub, fmt.Sprintf("%s.parents[%d]", at, i))
		if err != nil {
			return nil, err
		}
		node.SubscribeToParents(topic.Topic(sub.Event), h)
	}
	for i, sub := range spec.Children {
		h, err := b.handler(sub, fmt.Sprintf("%s.children[%d]", at, i))
		if err != nil {
			return nil, err
		}
		node.SubscribeToChildren(topic.Topic(sub.Event), h)
	}

	for i := range spec.Nodes {
		childAt := at + ".nodes[" + strconv.Itoa(i) + "]"
		child, err := b.build(&spec.Nodes[i], childAt)
		if err != nil {
			return nil, err
		}
		if err := node.Append(child); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidScene, childAt, err)
		}
	}

	if spec.Label != "" {
		b.scene.nodes[spec.Label] = node
	}
	return node, nil
}

func (b *builder) handler(sub Subscription, at string) (event.Handler, error) {
	if strings.TrimSpace(sub.Lua) == "" {
		return staticReply(sub.Reply, sub.Stop), nil
	}

	if b.scene.scripts == nil {
		s, err := newScripts(b.logger, b.timeout)
		if err != nil {
			return nil, err
		}
		b.scene.scripts = s
	}
	fn, err := b.scene.scripts.compile(at, sub.Lua)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}
	return b.scene.scripts.handler(at, fn, sub.Stop), nil
}

func staticReply(reply any, stop bool) event.Handler {
	return event.HandlerFunc(func(evt *event.Event, _ any) any {
		if stop {
			evt.Stop()
		}
		return reply
	})
}

// Node returns the node with the given label.
func (s *Scene) Node(label string) (*event.Node, bool) {
	n, ok := s.nodes[label]
	return n, ok
}

// Labels returns every label in the scene, sorted.
func (s *Scene) Labels() []string {
	labels := make([]string, 0, len(s.nodes))
	for l := range s.nodes {
		labels = append(labels, l)
	}
	slices.Sort(labels)
	return labels
}

// Element returns the root's HTML mirror.
func (s *Scene) Element() *render.Element {
	el, _ := render.Of(s.Root)
	return el
}

// Close releases the scene's Lua interpreter.
func (s *Scene) Close() {
	if s.scripts != nil {
		s.scripts.close()
		s.scripts = nil
	}
}
