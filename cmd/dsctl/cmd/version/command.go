// Package version provides the version command.
package version

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/OHIF/Viewers-sub030/cmd/application"
	"github.com/OHIF/Viewers-sub030/internal/cmd/output"
)

// Info is the build information printed by the command.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Date      string `json:"date" yaml:"date"`
	BuiltBy   string `json:"builtBy" yaml:"builtBy"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
	Platform  string `json:"platform" yaml:"platform"`
}

// NewCommand creates the version command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := Info{
				Version:   app.Version(),
				Commit:    app.Commit(),
				Date:      app.Date(),
				BuiltBy:   app.BuiltBy(),
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			}

			format := output.Format(app.OutputFormat())
			if format.IsTable() {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "dsctl %s (commit %s, built %s by %s, %s %s)\n",
					info.Version, info.Commit, info.Date, info.BuiltBy, info.GoVersion, info.Platform)
				return err
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), info)
		},
	}
}
