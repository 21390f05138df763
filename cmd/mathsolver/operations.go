package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/mathsolver/internal/cli"
	"github.com/aretw0/mathsolver/internal/presentation/tui"
	"github.com/aretw0/mathsolver/pkg/catalog"
)

var operationsCmd = &cobra.Command{
	Use:   "operations",
	Short: "List the operations the solver recognizes",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := catalog.Default()
		out := cmd.OutOrStdout()

		if jsonMode, _ := cmd.Flags().GetBool("json"); jsonMode {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(c.Operations())
		}

		output := cli.OperationsMarkdown(c)
		if f, ok := out.(*os.File); ok && tui.IsTerminal(f) {
			if rendered, err := tui.NewRenderer()(output); err == nil {
				output = rendered
			}
		}
		fmt.Fprint(out, output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(operationsCmd)
	operationsCmd.Flags().Bool("json", false, "Print the catalog as JSON")
}
