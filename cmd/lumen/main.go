package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"lumen/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "lumen",
	Short: "Diagnostic rendering toolchain",
	Long:  `Lumen collects and renders compiler-style diagnostics with precise source context`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Int("context", 0, "extra source lines around each labeled range")
	rootCmd.PersistentFlags().String("paths", "auto", "path display mode (auto|absolute|relative|basename)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves the --color policy. The renderer itself never probes the
// terminal; deciding color is driver business.
func useColor(mode string) bool {
	switch mode {
	case "on":
		color.NoColor = false
		return true
	case "off":
		return false
	default:
		return isTerminal(os.Stdout)
	}
}
