package main

import (
	"fmt"

	"github.com/aretw0/easel/internal/cli"
	"github.com/aretw0/easel/internal/presentation/tui"
	httpAdapter "github.com/aretw0/easel/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <document>...",
	Short: "Audit documents against the connection rules",
	Long:  `Checks each document for duplicate edges, transitive-node limits and link-rule violations. Exits non-zero if any document is invalid.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		failed := 0
		for _, path := range args {
			ed, err := cli.OpenDocument(cmd.Context(), cfg, logger, path)
			if err != nil {
				fmt.Fprintln(out, tui.Status(false, fmt.Sprintf("%s: %v", path, err)))
				failed++
				continue
			}
			result := httpAdapter.Audit(ed)
			if result.Valid {
				fmt.Fprintln(out, tui.Status(true, path+" is valid"))
				continue
			}
			failed++
			fmt.Fprintln(out, tui.Status(false, fmt.Sprintf("%s has %d violation(s)", path, len(result.Violations))))
			for _, v := range result.Violations {
				fmt.Fprintf(out, "  - %s [%s]: %s\n", v.ItemID, v.Reason, v.Detail)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d document(s) failed validation", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
