package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

type globalFlags struct {
	DataDir    string
	ConfigPath string
	JSON       bool
	Quiet      bool
}

type commandDeps struct {
	out     io.Writer
	globals *globalFlags
}

func NewRootCommand(out io.Writer, build BuildInfo) *cobra.Command {
	globals := &globalFlags{}
	deps := commandDeps{out: out, globals: globals}

	cmd := &cobra.Command{
		Use:           "odin",
		Short:         "Odin profile store CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(out)

	cmd.PersistentFlags().StringVar(&globals.DataDir, "data-dir", "", "Application data directory (default: platform convention or ODIN_HOME)")
	cmd.PersistentFlags().StringVar(&globals.ConfigPath, "config", "", "Config file path")
	cmd.PersistentFlags().BoolVar(&globals.JSON, "json", false, "Print machine-readable JSON output")
	cmd.PersistentFlags().BoolVar(&globals.Quiet, "quiet", false, "Suppress non-essential output")

	cmd.AddCommand(
		newInitCommand(deps),
		newUserCommand(deps),
		newPrefCommand(deps),
		newNavCommand(deps),
		newThemeCommand(deps),
		newExportCommand(deps),
		newImportCommand(deps),
		newVersionCommand(out, build),
	)
	cmd.InitDefaultCompletionCmd()
	return cmd
}

func newVersionCommand(out io.Writer, build BuildInfo) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(build)
			}

			_, err := fmt.Fprintf(out, "version=%s commit=%s build_time=%s\n", build.Version, build.Commit, build.BuildTime)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print version as JSON")
	return cmd
}

func printJSON(out io.Writer, value any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
