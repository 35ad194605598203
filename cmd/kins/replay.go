package main

import (
	"github.com/spf13/cobra"

	"github.com/dshills/kins/internal/record"
)

type replayLine struct {
	ID        string `json:"id"`
	Path      []int  `json:"path"`
	Direction string `json:"direction"`
	Event     string `json:"event"`
	Replies   []any  `json:"replies"`
}

func newReplayCmd(c *cli) *cobra.Command {
	var (
		db          string
		prettyPrint bool
	)

	cmd := &cobra.Command{
		Use:     "replay SCENE",
		Short:   "Replay recorded publishes against a scene",
		Example: "  kins publish todo.yaml --record run.db --from first -d parents -e item.toggled\n  kins replay todo.yaml --db run.db",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := record.OpenSQLite(db)
			if err != nil {
				return err
			}
			defer store.Close()

			s, err := c.openScene(args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			opts := []record.ReplayOption{record.WithReplayLogger(c.app.Logger())}
			if rec := c.app.Recorder(); rec != nil {
				opts = append(opts, record.PausingRecorder(rec))
			}
			results, err := record.Replay(cmd.Context(), s.Root, store, opts...)

			out := cmd.OutOrStdout()
			for _, res := range results {
				replies := res.Replies
				if replies == nil {
					replies = []any{}
				}
				line := replayLine{
					ID:        res.Record.ID,
					Path:      res.Record.Path,
					Direction: res.Record.Direction,
					Event:     res.Record.Event,
					Replies:   replies,
				}
				if werr := writeJSON(out, line, prettyPrint); werr != nil {
					return werr
				}
			}
			return err
		},
	}

	cmd.Flags().StringVar(&db, "db", "", "SQLite file written with --record")
	cmd.Flags().BoolVar(&prettyPrint, "pretty", false, "Indent output")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}
