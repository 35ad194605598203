package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/kins/internal/event"
	"github.com/dshills/kins/internal/event/topic"
	"github.com/dshills/kins/internal/scene"
)

// errNoReply is returned by --first and --useful when nothing answered.
var errNoReply = errors.New("no reply")

type publishFlags struct {
	from        string
	direction   string
	event       string
	payload     string
	sets        []string
	first       bool
	useful      string
	prettyPrint bool
}

func newPublishCmd(c *cli) *cobra.Command {
	var f publishFlags

	cmd := &cobra.Command{
		Use:   "publish SCENE",
		Short: "Publish an event from a scene node and print the replies",
		Example: "  kins publish todo.yaml --from list --direction children --event refresh\n" +
			"  kins publish todo.yaml --from first --direction parents --event item.toggled --set done=true --first\n" +
			"  kins publish todo.yaml --direction children --event count --useful @this",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openScene(args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			result, err := publish(s, f)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result, f.prettyPrint)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.from, "from", "", "Label of the publishing node (default: the root)")
	flags.StringVarP(&f.direction, "direction", "d", "", "parents|children")
	flags.StringVarP(&f.event, "event", "e", "", "Event name")
	flags.StringVarP(&f.payload, "payload", "p", "", "JSON payload")
	flags.StringArrayVar(&f.sets, "set", nil, "Set PATH=VALUE in the payload (repeatable)")
	flags.BoolVar(&f.first, "first", false, "Stop at the first reply and print it")
	flags.StringVar(&f.useful, "useful", "", "Stop at the first reply whose JSON has a truthy value at this gjson path")
	flags.BoolVar(&f.prettyPrint, "pretty", false, "Indent output")
	_ = cmd.MarkFlagRequired("direction")
	_ = cmd.MarkFlagRequired("event")
	cmd.MarkFlagsMutuallyExclusive("first", "useful")
	return cmd
}

func publish(s *scene.Scene, f publishFlags) (any, error) {
	from := s.Root
	if f.from != "" {
		n, ok := s.Node(f.from)
		if !ok {
			return nil, fmt.Errorf("no node labelled %q", f.from)
		}
		from = n
	}
	dir, err := event.ParseDirection(f.direction)
	if err != nil {
		return nil, err
	}
	name := topic.Topic(f.event)
	if !name.IsValid() {
		return nil, fmt.Errorf("%w: %q", event.ErrInvalidTopic, f.event)
	}
	payload, err := buildPayload(f.payload, f.sets)
	if err != nil {
		return nil, err
	}

	switch {
	case f.first:
		reply, ok := from.PublishUptoFirstReply(dir, name, payload)
		if !ok {
			return nil, errNoReply
		}
		return reply, nil
	case f.useful != "":
		reply, ok := from.PublishUptoFirstUsefulReply(dir, name, payload, usefulAt(f.useful))
		if !ok {
			return nil, errNoReply
		}
		return reply, nil
	default:
		replies := from.Publish(dir, name, payload, nil)
		if replies == nil {
			replies = []any{}
		}
		return replies, nil
	}
}

// buildPayload decodes raw, after applying each PATH=VALUE edit. VALUE is
// used as JSON when it parses, otherwise as a string.
func buildPayload(raw string, sets []string) (any, error) {
	doc := []byte(strings.TrimSpace(raw))
	if len(doc) == 0 && len(sets) > 0 {
		doc = []byte("{}")
	}

	for _, set := range sets {
		path, value, ok := strings.Cut(set, "=")
		if !ok || path == "" {
			return nil, fmt.Errorf("invalid --set %q: want PATH=VALUE", set)
		}
		var err error
		if gjson.Valid(value) {
			doc, err = sjson.SetRawBytes(doc, path, []byte(value))
		} else {
			doc, err = sjson.SetBytes(doc, path, value)
		}
		if err != nil {
			return nil, fmt.Errorf("applying --set %q: %w", set, err)
		}
	}

	if len(doc) == 0 {
		return nil, nil
	}
	if !gjson.ValidBytes(doc) {
		return nil, fmt.Errorf("invalid JSON payload: %s", doc)
	}
	var payload any
	if err := json.Unmarshal(doc, &payload); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}
	return payload, nil
}

// usefulAt accepts replies whose JSON encoding holds a value at path other
// than null, false, 0 or "".
func usefulAt(path string) event.Filter {
	return func(_ *event.Event, reply any) bool {
		b, err := json.Marshal(reply)
		if err != nil {
			return false
		}
		res := gjson.GetBytes(b, path)
		switch res.Type {
		case gjson.JSON:
			return true
		case gjson.String:
			return res.Str != ""
		default:
			return res.Bool()
		}
	}
}
