package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/easel"
	"github.com/aretw0/easel/internal/cli"
	"github.com/aretw0/easel/internal/presentation/tui"
	httpAdapter "github.com/aretw0/easel/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <document>",
	Short: "Print a readable report of a document",
	Long:  `Renders the nodes, edges, degrees and validation findings of a document as styled markdown.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		ed, err := cli.OpenDocument(cmd.Context(), cfg, logger, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if quiet, _ := cmd.Flags().GetBool("no-banner"); !quiet {
			tui.PrintBanner(out, strings.TrimSpace(easel.Version))
		}

		markdown := tui.InspectMarkdown(ed.Snapshot(), httpAdapter.Audit(ed).Violations)
		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			fmt.Fprint(out, markdown)
			return nil
		}
		rendered, err := tui.NewRenderer()(markdown)
		if err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}
		fmt.Fprint(out, rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("raw", false, "Print the markdown without styling")
	inspectCmd.Flags().Bool("no-banner", false, "Skip the banner")
}
