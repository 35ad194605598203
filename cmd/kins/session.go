package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/kins/internal/config"
	"github.com/dshills/kins/internal/scene"
)

const sessionHelp = `Reads one command per line from standard input:

  LABEL DIRECTION EVENT [JSON]   publish EVENT from LABEL ("." is the root)
  tree                           print the tree
  render                         print the HTML
  profile                        print cumulative publish times
  # ...                          comment

Each publish prints its replies as one JSON line. With --config, changes to
the file switch event logging, profiling and recording while the session
runs.`

func newSessionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "session SCENE",
		Short: "Publish events read from standard input",
		Long:  sessionHelp,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openScene(args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			changes, err := c.watchConfig(ctx)
			if err != nil {
				return err
			}
			return c.runSession(ctx, s, cmd.InOrStdin(), cmd.OutOrStdout(), changes)
		},
	}
}

// watchConfig delivers reloaded settings, with env and flag overrides
// reapplied, until ctx is done. It returns a nil channel without --config.
func (c *cli) watchConfig(ctx context.Context) (<-chan config.Config, error) {
	if c.configPath == "" {
		return nil, nil
	}

	changes := make(chan config.Config, 1)
	logger := c.app.Logger().With().Str("component", "config").Logger()
	w, err := config.NewWatcher(c.configPath, func(cfg config.Config) {
		if err := c.overlay(&cfg); err != nil {
			logger.Warn().Err(err).Msg("ignoring reloaded config")
			return
		}
		select {
		case changes <- cfg:
		case <-ctx.Done():
		}
	}, config.WithWatchLogger(logger))
	if err != nil {
		return nil, err
	}

	go func() {
		_ = w.Run(ctx)
	}()
	return changes, nil
}

func (c *cli) runSession(ctx context.Context, s *scene.Scene, in io.Reader, out io.Writer, changes <-chan config.Config) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case cfg := <-changes:
			if err := c.app.Apply(cfg); err != nil {
				l := c.app.Logger()
				l.Warn().Err(err).Msg("config not applied")
				continue
			}
			c.cfg = cfg

		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			if err := c.sessionLine(s, strings.TrimSpace(line), out); err != nil {
				if werr := writeJSON(out, map[string]string{"error": err.Error()}, false); werr != nil {
					return werr
				}
			}
		}
	}
}

func (c *cli) sessionLine(s *scene.Scene, line string, out io.Writer) error {
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	switch line {
	case "tree":
		return writeTree(out, s.Root)
	case "render":
		_, err := fmt.Fprintln(out, s.Element().Markup())
		return err
	case "profile":
		return writeJSON(out, c.app.Profiler().Snapshot(), false)
	}

	label, rest := nextField(line)
	direction, rest := nextField(rest)
	name, payload := nextField(rest)
	if name == "" {
		return fmt.Errorf("want LABEL DIRECTION EVENT [JSON], got %q", line)
	}
	if label == "." {
		label = ""
	}

	result, err := publish(s, publishFlags{
		from:      label,
		direction: direction,
		event:     name,
		payload:   payload,
	})
	if err != nil {
		return err
	}
	return writeJSON(out, result, false)
}

func nextField(s string) (field, rest string) {
	s = strings.TrimLeft(s, " \t")
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}
