// Package synth provides the synth command.
package synth

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OHIF/Viewers-sub030/cmd/application"
	"github.com/OHIF/Viewers-sub030/internal/cmd/output"
	"github.com/OHIF/Viewers-sub030/pkg/instances"
	"github.com/OHIF/Viewers-sub030/pkg/multiframe"
)

// NewCommand creates the synth command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "synth FILE",
		GroupID: "inspect",
		Short:   "Expand multi-frame instances into per-frame records",
		Long: `Synth prints the frame records a multi-frame instance expands into:
shared functional groups merged with each frame's per-frame group.
Single-frame instances are printed unchanged.`,
		Example: `  dsctl synth enhanced-ct.json
  dsctl synth enhanced-ct.json -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			groups, err := instances.Decode(data, false)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			var frames []instances.Instance
			for _, inst := range groups[0] {
				if multiframe.IsMultiframe(inst) {
					frames = append(frames, multiframe.Synthesize(inst)...)
					continue
				}
				frames = append(frames, inst)
			}
			app.Logger().Debug().
				Int("instances", len(groups[0])).
				Int("frames", len(frames)).
				Msg("Frames synthesized")

			return output.Frames(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat()), frames)
		},
	}
}
