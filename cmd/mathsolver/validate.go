package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/mathsolver/internal/cli"
	"github.com/aretw0/mathsolver/internal/validator"
	httpAdapter "github.com/aretw0/mathsolver/pkg/adapters/http"
	"github.com/aretw0/mathsolver/pkg/catalog"
)

var validateCmd = &cobra.Command{
	Use:   "validate [operations.yaml] [examples.yaml]",
	Short: "Check the operation catalog and API document for consistency",
	Long: `Loads the operation catalog (the given files, the configured ones, or the embedded
table) and reports shadowed aliases and examples naming unknown operations. The embedded
OpenAPI document is validated as well.`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runValidate(cmd, args); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Catalog is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := cli.LoadConfig(cli.GlobalOptions{ConfigPath: configPath})
	if err != nil {
		return err
	}

	opsPath, examplesPath := cfg.Solver.CatalogFile, cfg.Solver.ExamplesFile
	if len(args) > 0 {
		opsPath = args[0]
	}
	if len(args) > 1 {
		examplesPath = args[1]
	}

	c, err := catalog.Load(opsPath, examplesPath)
	if err != nil {
		return err
	}
	if err := validator.ValidateCatalog(c); err != nil {
		return err
	}

	if _, err := httpAdapter.GetSwagger(); err != nil {
		return fmt.Errorf("openapi document: %w", err)
	}
	return nil
}
