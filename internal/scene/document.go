package scene

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/kins/internal/event/topic"
)

// ErrInvalidScene is returned for documents that cannot be built.
var ErrInvalidScene = errors.New("invalid scene")

// Document is a parsed scene file.
type Document struct {
	// Name is an optional title.
	Name string `yaml:"name"`

	// Root is the top node.
	Root NodeSpec `yaml:"root"`
}

// NodeSpec describes one node and its subtree.
type NodeSpec struct {
	Label      string            `yaml:"label"`
	Tag        string            `yaml:"tag"`
	Attributes map[string]string `yaml:"attributes"`
	Text       string            `yaml:"text"`

	// Parents subscribe to events published by ancestors.
	Parents []Subscription `yaml:"parents"`

	// Children subscribe to events published by descendants.
	Children []Subscription `yaml:"children"`

	Nodes []NodeSpec `yaml:"nodes"`
}

// Subscription is one handler declaration.
type Subscription struct {
	Event string `yaml:"event"`

	// Reply is returned as-is when Lua is empty.
	Reply any `yaml:"reply"`

	// Lua is a chunk whose first return value is the reply.
	Lua string `yaml:"lua"`

	// Stop halts the publish after this handler replies.
	Stop bool `yaml:"stop"`
}

// Load parses and validates a scene document.
func Load(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidScene)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks labels and subscriptions across the whole tree.
func (d *Document) Validate() error {
	labels := make(map[string]string)
	return validateNode(&d.Root, "root", labels)
}

func validateNode(spec *NodeSpec, at string, labels map[string]string) error {
	if spec.Label != "" {
		if prev, dup := labels[spec.Label]; dup {
			return fmt.Errorf("%w: label %q used at %s and %s", ErrInvalidScene, spec.Label, prev, at)
		}
		labels[spec.Label] = at
	}
	for i, sub := range spec.Parents {
		if err := sub.validate(fmt.Sprintf("%s.parents[%d]", at, i)); err != nil {
			return err
		}
	}
	for i, sub := range spec.Children {
		if err := sub.validate(fmt.Sprintf("%s.children[%d]", at, i)); err != nil {
			return err
		}
	}
	for i := range spec.Nodes {
		if err := validateNode(&spec.Nodes[i], at+".nodes["+strconv.Itoa(i)+"]", labels); err != nil {
			return err
		}
	}
	return nil
}

func (s Subscription) validate(at string) error {
	if !topic.Topic(s.Event).IsValid() {
		return fmt.Errorf("%w: %s: invalid event name %q", ErrInvalidScene, at, s.Event)
	}
	if strings.TrimSpace(s.Lua) != "" && s.Reply != nil {
		return fmt.Errorf("%w: %s: reply and lua are exclusive", ErrInvalidScene, at)
	}
	return nil
}
