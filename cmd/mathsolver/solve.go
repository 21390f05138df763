package main

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/mathsolver/internal/cli"
	"github.com/aretw0/mathsolver/internal/presentation/tui"
	"github.com/aretw0/mathsolver/pkg/domain"
)

var solveCmd = &cobra.Command{
	Use:   "solve [problem]",
	Short: "Solve a problem from the command line",
	Long: `Solves the problem given as arguments. Without arguments, reads one problem per
line from standard input until EOF or 'exit'.`,
	Example: `  mathsolver solve "Find the derivative of x^3"
  mathsolver solve --json --symbolic "factor x^2 - 1"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")
		showGraph, _ := cmd.Flags().GetBool("graph")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		opts := cli.SolveOptions{
			Problem:  strings.Join(args, " "),
			JSON:     jsonMode,
			Pretty:   tui.IsTerminal(os.Stdout),
			Headless: !tui.IsTerminal(os.Stdin),
		}

		var hooks []domain.LifecycleHooks
		if showGraph {
			opts.Graph = &cli.StageTrace{}
			hooks = append(hooks, opts.Graph.Hooks())
		}

		app, err := bootstrap(ctx, cmd, hooks...)
		if err != nil {
			return err
		}
		return cli.RunSolve(ctx, app, opts, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(solveCmd)
	solveCmd.Flags().Bool("json", false, "Print the raw JSON response")
	solveCmd.Flags().Bool("graph", false, "Print the pipeline as a Mermaid diagram with the path taken")
}
