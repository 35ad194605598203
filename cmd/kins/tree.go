package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/kins/internal/event"
	"github.com/dshills/kins/internal/event/topic"
	"github.com/dshills/kins/internal/render"
)

func newRenderCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "render SCENE",
		Short: "Print the scene's HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openScene(args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			if err := s.Element().Render(out); err != nil {
				return err
			}
			_, err = fmt.Fprintln(out)
			return err
		},
	}
}

func newTreeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tree SCENE",
		Short: "Print nodes with their paths, subscriptions and interest counters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openScene(args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			return writeTree(cmd.OutOrStdout(), s.Root)
		},
	}
}

// writeTree prints one line per node:
//
//	label <tag> [path] parents=... children=... interest=...
func writeTree(w io.Writer, root *event.Node) error {
	var err error
	root.Walk(func(n *event.Node, depth int) bool {
		if err != nil {
			return false
		}
		var b strings.Builder
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(nodeName(n))
		if el, ok := render.Of(n); ok && el.Tag() != "" {
			fmt.Fprintf(&b, " <%s>", el.Tag())
		}
		fmt.Fprintf(&b, " %v", n.Path())

		parents, children := subscriptionNames(n)
		if len(parents) > 0 {
			fmt.Fprintf(&b, " parents=%s", strings.Join(parents, ","))
		}
		if len(children) > 0 {
			fmt.Fprintf(&b, " children=%s", strings.Join(children, ","))
		}
		if interest := formatInterest(n.InterestSnapshot()); interest != "" {
			fmt.Fprintf(&b, " interest=%s", interest)
		}
		b.WriteByte('\n')
		_, err = io.WriteString(w, b.String())
		return true
	})
	return err
}

func nodeName(n *event.Node) string {
	if n.Label() == "" {
		return "-"
	}
	return n.Label()
}

// subscriptionNames lists the event names n handles from each side, with a
// count suffix when more than one handler is registered.
func subscriptionNames(n *event.Node) (parents, children []string) {
	return namesWithCounts(n.ParentSubscriptionNames(), n.ParentSubscriptions),
		namesWithCounts(n.ChildSubscriptionNames(), n.ChildSubscriptions)
}

func namesWithCounts(names []topic.Topic, count func(topic.Topic) int) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if c := count(name); c > 1 {
			out = append(out, fmt.Sprintf("%s×%d", name, c))
		} else {
			out = append(out, name.String())
		}
	}
	return out
}

func formatInterest(interest map[topic.Topic]int) string {
	names := make([]topic.Topic, 0, len(interest))
	for name := range interest {
		names = append(names, name)
	}
	slices.Sort(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s:%d", name, interest[name]))
	}
	return strings.Join(parts, ",")
}
