package main

import (
	"os"

	"github.com/obentoo/depbump/internal/autoupdate"
	"github.com/obentoo/depbump/internal/common/output"
	"github.com/spf13/cobra"
)

// initForce overwrites an existing dependency file
var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the built-in dependency table to a TOML file",
	Long: `Write the built-in dependency table to a TOML file (default: depbump.toml)
so it can be edited and passed back with --deps.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) {
	path := "depbump.toml"
	if len(args) > 0 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil && !initForce {
		output.PrintWarning("%s already exists, use --force to overwrite", path)
		os.Exit(1)
	}

	if err := autoupdate.DefaultDependenciesConfig().Save(path); err != nil {
		output.PrintError("%v", err)
		os.Exit(1)
	}
	output.PrintSuccess("Wrote %s", path)
}
