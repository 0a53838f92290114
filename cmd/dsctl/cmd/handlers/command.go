// Package handlers provides the handlers command.
package handlers

import (
	"github.com/spf13/cobra"

	"github.com/OHIF/Viewers-sub030/cmd/application"
	"github.com/OHIF/Viewers-sub030/internal/cmd/output"
)

// NewCommand creates the handlers command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "handlers",
		Aliases: []string{"builders"},
		GroupID: "inspect",
		Short:   "List registered display-set builders in dispatch order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := app.Service()
			if err != nil {
				return err
			}
			fallback, _ := svc.Fallback()
			return output.Handlers(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat()), svc.Handlers(), fallback)
		},
	}
}
