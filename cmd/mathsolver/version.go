package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/mathsolver"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of mathsolver",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mathsolver version %s\n", mathsolver.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
