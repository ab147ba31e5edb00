package main

import (
	"fmt"
	"os"

	"github.com/obentoo/depbump/internal/autoupdate"
	"github.com/obentoo/depbump/internal/common/logger"
	"github.com/obentoo/depbump/internal/common/output"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tracked dependencies",
	Long: `List the tracked dependencies in processing order, with their resolved
feed URLs, tag prefixes and the version currently assigned in the definitions file.`,
	Args: cobra.NoArgs,
	Run:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) {
	cfg, path, err := loadDependencies(cmd)
	if err != nil {
		logger.Error("loading dependencies: %v", err)
		os.Exit(1)
	}

	// The definitions file is optional here, versions are shown when present
	var definitions *autoupdate.DefinitionsFile
	if d, err := autoupdate.LoadDefinitions(path); err == nil {
		definitions = d
	} else {
		logger.Debug("%v", err)
	}

	fmt.Println()
	output.Header.Printf("Tracked Dependencies (%d)\n", len(cfg.Dependencies))
	fmt.Println()

	for _, dep := range cfg.Dependencies {
		current := "-"
		if definitions != nil {
			if v, ok := definitions.CurrentVersion(dep.Name); ok {
				current = v
			}
		}

		output.Dependency.Printf("  %s", dep.Name)
		fmt.Printf(" %s\n", output.Sprintf(output.Dim, "(%s=%s)", dep.DefinitionKey(), current))
		fmt.Printf("    Feed:   %s\n", dep.FeedURL())
		if dep.VersionPrefix != "" {
			fmt.Printf("    Prefix: %s\n", dep.VersionPrefix)
		}
		switch {
		case dep.Selector != "":
			fmt.Printf("    Page:   %s\n", dep.Selector)
		case dep.XPath != "":
			fmt.Printf("    Page:   %s\n", dep.XPath)
		}
	}
	fmt.Println()
}
