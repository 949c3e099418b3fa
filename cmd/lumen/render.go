package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lumen/internal/diag"
	"lumen/internal/diagfmt"
	"lumen/internal/driver"
)

var renderCmd = &cobra.Command{
	Use:   "render [flags] <diags.json>",
	Short: "Render diagnostics produced by an external front end",
	Long: `Render reads diagnostics in lumen's JSON schema (any front end can emit it),
loads the source files the labels reference and renders everything with
source context`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
}

func runRender(cmd *cobra.Command, args []string) error {
	opts, format, err := resolveRenderOptions(cmd)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	// First pass over the payload only to learn which files it references.
	var payload diagfmt.DiagnosticsOutput
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("decode %s: %w", args[0], err)
	}

	session := driver.NewSession()
	for _, dj := range payload.Diagnostics {
		for _, lj := range dj.Labels {
			if lj.Location == nil {
				continue
			}
			if _, ok := session.Files.Latest(lj.Location.File); ok {
				continue
			}
			if _, err := session.LoadFile(lj.Location.File); err != nil {
				return fmt.Errorf("load %s: %w", lj.Location.File, err)
			}
		}
	}

	diags, err := diagfmt.ParseDiagnostics(data, session.Files.Latest)
	if err != nil {
		return err
	}
	for _, d := range diags {
		session.Diags.Submit(d)
	}

	emit(session, format, opts)
	return nil
}

// resolveRenderOptions merges lumen.toml defaults with the persistent flags.
func resolveRenderOptions(cmd *cobra.Command) (diagfmt.PrettyOpts, string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return diagfmt.PrettyOpts{}, "", err
	}

	colorMode := cfg.Render.Color
	if cmd.Root().PersistentFlags().Changed("color") {
		colorMode, _ = cmd.Root().PersistentFlags().GetString("color")
	}
	context := cfg.Render.Context
	if cmd.Root().PersistentFlags().Changed("context") {
		context, _ = cmd.Root().PersistentFlags().GetInt("context")
	}
	pathsMode := cfg.Render.Paths
	if cmd.Root().PersistentFlags().Changed("paths") {
		pathsMode, _ = cmd.Root().PersistentFlags().GetString("paths")
	}

	pathMode, err := parsePathMode(pathsMode)
	if err != nil {
		return diagfmt.PrettyOpts{}, "", err
	}

	format := "pretty"
	if cmd.Flags().Lookup("format") != nil {
		format, _ = cmd.Flags().GetString("format")
	}
	switch format {
	case "pretty", "json", "short":
	default:
		return diagfmt.PrettyOpts{}, "", fmt.Errorf("unknown format %q", format)
	}

	return diagfmt.PrettyOpts{
		Color:    useColor(colorMode),
		Context:  context,
		PathMode: pathMode,
	}, format, nil
}

// emit writes the session's diagnostics in the chosen format and exits with
// the session's exit code. A malformed diagnostic is a defect in whatever
// produced the payload: the full render is abandoned and only the bare
// summary is printed, never a partial block.
func emit(session *driver.Session, format string, opts diagfmt.PrettyOpts) {
	var err error
	switch format {
	case "json":
		err = diagfmt.JSON(os.Stdout, session.Diags, session.Files, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         opts.PathMode,
		})
	case "short":
		if out := diag.FormatGolden(session.Diags.All(), session.Files, true); out != "" {
			fmt.Println(out)
		}
	default:
		err = diagfmt.Pretty(os.Stdout, session.Diags, session.Files, opts)
		if err == nil {
			if summary := diagfmt.Summary(session.Diags); summary != "" {
				fmt.Fprintln(os.Stderr, summary)
			}
		}
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if summary := diagfmt.Summary(session.Diags); summary != "" {
			fmt.Fprintln(os.Stderr, summary)
		}
		os.Exit(2)
	}
	os.Exit(session.ExitCode())
}
