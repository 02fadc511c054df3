package main

import (
	"fmt"

	"github.com/aretw0/easel/internal/cli"
	"github.com/aretw0/easel/internal/presentation/graph"
	httpAdapter "github.com/aretw0/easel/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <document>",
	Short: "Render a document as a Mermaid flowchart",
	Long: `Reads a YAML or JSON document and prints it as Mermaid syntax.
With --overlay, items that break the connection rules are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		ed, err := cli.OpenDocument(cmd.Context(), cfg, logger, args[0])
		if err != nil {
			return err
		}

		var overlay *graph.Overlay
		if withOverlay, _ := cmd.Flags().GetBool("overlay"); withOverlay {
			overlay = httpAdapter.Overlay(ed)
		}
		fmt.Fprintln(cmd.OutOrStdout(), graph.GenerateMermaid(ed.Snapshot(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("overlay", false, "Highlight selected and invalid items")
}
