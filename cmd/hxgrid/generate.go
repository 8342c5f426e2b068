package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pthm/hxgrid/lib/generator"
)

var dryRun bool

var generateCmd = &cobra.Command{
	Use:   "generate [packages]",
	Short: "Generate grid schemas for structs with grid tags",
	Long: `Generate writes <file>_grid.go next to every source file declaring
structs with grid tags. Each struct gets Schema, Columns and Engine
constructors.

Packages are directories; a trailing /... walks recursively.

Examples:
  hxgrid generate ./...
  hxgrid generate ./internal/people`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"./..."}
		}
		gen := generator.New(generator.Options{DryRun: dryRun, Out: cmd.OutOrStdout()})
		if err := gen.Generate(args...); err != nil {
			return err
		}
		color.Green("✓ generation complete")
		return nil
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean [packages]",
	Short: "Remove generated grid files",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"./..."}
		}
		gen := generator.New(generator.Options{DryRun: dryRun, Out: cmd.OutOrStdout()})
		if err := gen.Clean(args...); err != nil {
			return err
		}
		color.Green("✓ clean complete")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "hxgrid %s\n", Version)
	},
}

func init() {
	generateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be written")
	cleanCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be removed")
	rootCmd.AddCommand(generateCmd, cleanCmd, versionCmd)
}
