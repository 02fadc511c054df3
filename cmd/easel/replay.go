package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/easel"
	"github.com/aretw0/easel/internal/cli"
	"github.com/aretw0/easel/internal/presentation/tui"
	"github.com/aretw0/easel/internal/script"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/observability"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay <script>",
	Short: "Replay a recorded editing session",
	Long: `Runs the steps of a YAML script against a document and checks its expectations.

By default the script edits the stored document it names, and the result is
saved to the configured store. With --document the steps run against a local
document file instead and nothing is persisted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		s, err := script.ParseFile(args[0])
		if err != nil {
			return err
		}
		player := script.NewPlayer(logger)
		out := cmd.OutOrStdout()
		ctx := cmd.Context()

		if path, _ := cmd.Flags().GetString("document"); path != "" {
			ed, err := cli.OpenDocument(ctx, cfg, logger, path)
			if err != nil {
				return err
			}
			results, err := player.Play(ctx, ed, s)
			return report(out, results, err)
		}

		if s.Document == "" {
			return errors.New("script names no document; pass --document to replay against a file")
		}
		backend, err := cli.OpenBackend(cfg)
		if err != nil {
			return err
		}
		defer backend.Close()

		sessions := backend.Sessions(cfg, logger, observability.LogHooks(logger))
		var results []script.Result
		err = sessions.WithEditor(ctx, s.Document, func(ctx context.Context, ed *easel.Editor) error {
			if s.Kind != "" && s.Kind != ed.Graph().Kind() && len(ed.Snapshot().Nodes) == 0 {
				doc := domain.NewDocument(s.Document)
				doc.Kind = s.Kind
				if err := ed.Load(ctx, doc); err != nil {
					return err
				}
			}
			var err error
			results, err = player.Play(ctx, ed, s)
			return err
		})
		return report(out, results, err)
	},
}

func report(w io.Writer, results []script.Result, err error) error {
	for _, r := range results {
		msg := fmt.Sprintf("%3d %s", r.Index, r.Action)
		if r.Rejected != "" {
			msg += " (rejected: " + string(r.Rejected) + ")"
		}
		fmt.Fprintln(w, tui.Status(r.Rejected == "", msg))
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(w, tui.Status(true, fmt.Sprintf("replayed %d step(s)", len(results))))
	return nil
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().StringP("document", "d", "", "Replay against a local document file")
}
