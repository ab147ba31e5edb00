package main

import (
	"fmt"
	"os"

	"github.com/obentoo/depbump/internal/autoupdate"
	"github.com/obentoo/depbump/internal/common/logger"
	"github.com/obentoo/depbump/internal/common/output"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool
	noColor bool
	logFile bool

	// definitionsPath is the definitions file to patch
	definitionsPath string
	// depsPath is an optional TOML dependency file replacing the built-in table
	depsPath string
)

var rootCmd = &cobra.Command{
	Use:   "depbump",
	Short: "Bump upstream dependency versions in a definitions file",
	Long: `Check the release feeds of the tracked dependencies and rewrite their
NAME_VERSION=x.y.z assignments in the definitions file when newer versions exist.

The resulting commit message is printed and, when GITHUB_ENV is set, appended
to that file as COMMIT_MESSAGE for a following workflow step.

Examples:
  depbump                         Update config.sh with the built-in dependency table
  depbump -f build/config.sh      Update another definitions file
  depbump --deps deps.toml        Use a TOML dependency table
  depbump --dry-run --report r.yaml  Check only and write a YAML report
  depbump list                    Show the tracked dependencies`,
	Args: cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetVerbose(true)
		}
		if quiet {
			logger.SetQuiet(true)
		}
		if noColor {
			output.NoColor()
		}
		if logFile {
			if err := logger.Default().EnableFileLogging(); err != nil {
				logger.Warn("file logging disabled: %v", err)
			}
		}
	},
	Run: runUpdate,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&logFile, "log-file", false, "Also write logs to the state directory")
	rootCmd.PersistentFlags().StringVarP(&definitionsPath, "file", "f", autoupdate.DefaultDefinitionsFile, "Definitions file to update")
	rootCmd.PersistentFlags().StringVar(&depsPath, "deps", "", "TOML dependency file (default: built-in table)")
}

// loadDependencies returns the dependency table and the definitions file to
// patch. An explicit --file wins over the dependency file's definitions entry.
func loadDependencies(cmd *cobra.Command) (*autoupdate.DependenciesConfig, string, error) {
	cfg := autoupdate.DefaultDependenciesConfig()
	if depsPath != "" {
		loaded, err := autoupdate.LoadDependenciesConfig(depsPath)
		if err != nil {
			return nil, "", err
		}
		cfg = loaded
	}

	path := definitionsPath
	if !cmd.Flags().Changed("file") && cfg.Definitions != "" {
		path = cfg.Definitions
	}
	return cfg, path, nil
}

func main() {
	defer logger.Default().Close()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
