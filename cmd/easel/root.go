package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/easel/internal/cli"
	"github.com/aretw0/easel/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "easel",
	Short: "Easel is a headless diagram editor",
	Long: `Easel hosts flow charts and mind maps behind an undoable command engine.
Documents can be edited over HTTP, MCP, recorded scripts or inspected from the terminal.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML or JSON config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
}

// setup resolves the config and logger shared by every command.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	level, _ := cmd.Flags().GetString("log-level")
	asJSON, _ := cmd.Flags().GetBool("log-json")

	cfg, err := cli.LoadConfig(path, level, asJSON)
	if err != nil {
		return nil, nil, err
	}
	logger, err := cli.NewLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
