package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/mathsolver"
	"github.com/aretw0/mathsolver/internal/cli"
	"github.com/aretw0/mathsolver/internal/presentation/tui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the solver as an HTTP server exposing POST /solve, the operation catalog,
health and metrics endpoints, and a small web page at /.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		app, err := bootstrap(ctx, cmd)
		if err != nil {
			return err
		}

		port, _ := cmd.Flags().GetInt("port")
		if !cmd.Flags().Changed("port") {
			port = app.Config.Port
		}

		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			tui.PrintBanner(os.Stdout, mathsolver.Version)
		}
		return cli.Serve(ctx, app, port, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 3000, "Port to listen on (default from PORT or config)")
	serveCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}
