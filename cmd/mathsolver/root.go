package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/mathsolver/internal/cli"
	"github.com/aretw0/mathsolver/pkg/domain"
)

var rootCmd = &cobra.Command{
	Use:   "mathsolver",
	Short: "mathsolver answers natural-language math problems",
	Long: `mathsolver sends math problems to a language model, optionally verifies the result
with a symbolic math service, and explains the answer.

Configuration is read from an optional YAML file and the environment
(GEMINI_API_KEY, PORT, MATHSOLVER_*).`,
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
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().Bool("symbolic", false, "Enable the symbolic math stage (overrides MATHSOLVER_SYMBOLIC)")
}

// bootstrap loads configuration from the persistent flags and builds the application.
func bootstrap(ctx context.Context, cmd *cobra.Command, hooks ...domain.LifecycleHooks) (*cli.App, error) {
	opts := cli.GlobalOptions{}
	opts.ConfigPath, _ = cmd.Flags().GetString("config")
	opts.LogLevel, _ = cmd.Flags().GetString("log-level")
	if cmd.Flags().Changed("symbolic") {
		symbolic, _ := cmd.Flags().GetBool("symbolic")
		opts.Symbolic = &symbolic
	}

	cfg, err := cli.LoadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger, err := cli.CreateLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}
	return cli.NewApp(ctx, cfg, logger, hooks...)
}
