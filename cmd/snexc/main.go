package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"snex/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "snexc",
	Short:         "SNEX type system toolchain",
	Long:          `snexc declares SNEX namespaces, structs and templates from TOML manifests and reports their layouts`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupEnv(cmd)
	},
}

// errFailed makes main exit with status 1 after the command already printed
// its diagnostics.
var errFailed = errors.New("failed")

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "path to snex.toml (default: search from the working directory)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics per manifest")
	rootCmd.PersistentFlags().String("trace", "", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-output", "-", "trace output file, - for stderr")
	rootCmd.PersistentFlags().String("trace-format", "", "trace format (auto|text|ndjson)")
	rootCmd.PersistentFlags().String("log", "off", "structured log level on stderr (off|debug|info|warn|error)")
	rootCmd.PersistentFlags().String("cpuprofile", "", "write a CPU profile to file")
	rootCmd.PersistentFlags().String("memprofile", "", "write a heap profile to file on exit")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to file")
}

func main() {
	err := rootCmd.Execute()
	closeEnv(rootCmd, err)
	if err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "snexc: %v\n", err)
		}
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
