// Package ingest provides the ingest command.
package ingest

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/OHIF/Viewers-sub030/cmd/application"
	"github.com/OHIF/Viewers-sub030/internal/cmd/output"
	"github.com/OHIF/Viewers-sub030/internal/matcher"
	"github.com/OHIF/Viewers-sub030/pkg/displayset"
	"github.com/OHIF/Viewers-sub030/pkg/errors"
	"github.com/OHIF/Viewers-sub030/pkg/instances"
	"github.com/OHIF/Viewers-sub030/pkg/logging"
	"github.com/OHIF/Viewers-sub030/pkg/reconciler"
)

// Flags holds the ingest command flags.
type Flags struct {
	Batch        bool
	MadeInClient bool
	Settings     []string
	All          bool
	Match        string
}

// NewCommand creates the ingest command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "ingest FILE...",
		GroupID: "core",
		Short:   "Ingest instance files and print the resulting display sets",
		Long: `Ingest decodes each file and feeds it to one session in argument order,
the way a viewer receives series as they are retrieved. Later files are
reconciled against the sets earlier files produced.

Without --batch a file holds one series' instances. With --batch a file
holds a list of instance lists, one per series.`,
		Example: `  dsctl ingest series.json
  dsctl ingest --batch study.yaml -o yaml
  dsctl ingest part1.json part2.json --set voi=lung`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, app, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.Batch, "batch", false, "each file is a list of per-series instance lists")
	cmd.Flags().BoolVar(&flags.MadeInClient, "made-in-client", false, "mark produced sets as created locally")
	cmd.Flags().StringArrayVar(&flags.Settings, "set", nil, "viewport hint merged onto produced sets (key=value, repeatable)")
	cmd.Flags().BoolVar(&flags.All, "all", false, "print every cached set, not only the active ones")
	cmd.Flags().StringVar(&flags.Match, "match", "", "print only sets whose SeriesDescription matches this glob or regex")

	return cmd
}

func run(cmd *cobra.Command, files []string, app application.Application, flags *Flags) error {
	settings, err := ParseSettings(flags.Settings)
	if err != nil {
		return err
	}
	var describe func(*displayset.DisplaySet) bool
	if flags.Match != "" {
		if describe, err = matcher.Description(flags.Match); err != nil {
			return errors.NewValidationError("match", flags.Match, err.Error())
		}
	}
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	svc, err := app.Service()
	if err != nil {
		return err
	}

	opts := []reconciler.MakeOption{reconciler.WithMadeInClient(flags.MadeInClient)}
	if len(settings) > 0 {
		opts = append(opts, reconciler.WithSettings(settings))
	}

	logger := app.Logger()
	ctx := logging.WithLogger(cmd.Context(), logger)

	var failures []error
	for _, file := range files {
		groups, err := decodeFile(file, flags.Batch)
		if err != nil {
			return err
		}

		var res *reconciler.Result
		if flags.Batch {
			res, err = svc.MakeDisplaySetsBatch(ctx, groups, opts...)
		} else {
			res, err = svc.MakeDisplaySets(ctx, groups[0], opts...)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}

		for i, g := range res.Groups {
			for _, u := range g.Unclaimed {
				logger.Warn().
					Str("file", file).
					Str("series", u.SeriesInstanceUID).
					Str("sop_class_uid", u.SOPClassUID).
					Msg("No builder claims SOP class")
			}
			if g.Err != nil {
				logger.Error().Err(g.Err).Str("file", file).Int("group", i).Msg("Group failed")
				failures = append(failures, fmt.Errorf("%s group %d: %w", file, i, g.Err))
			}
		}
		logger.Info().
			Str("file", file).
			Int("created", res.Created).
			Int("reused", res.Reused).
			Int("invalidated", len(res.Invalidated)).
			Msg("File ingested")
	}

	var sets []*displayset.DisplaySet
	switch {
	case flags.All:
		sets = svc.AllDisplaySets()
		if describe != nil {
			sets = slices.DeleteFunc(sets, func(ds *displayset.DisplaySet) bool { return !describe(ds) })
		}
	case describe != nil:
		sets = svc.DisplaySetsBy(describe)
	default:
		sets = svc.ActiveDisplaySets()
	}
	if err := output.DisplaySets(cmd.OutOrStdout(), output.DetectFormat(string(format)), sets); err != nil {
		return err
	}
	return errors.Join(failures...)
}

func decodeFile(file string, batch bool) ([][]instances.Instance, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	groups, err := instances.Decode(data, batch)
	if err != nil {
		var parse *errors.ParseError
		if errors.As(err, &parse) {
			return nil, errors.NewParseError(parse.Format, file, parse.Message, parse.Err)
		}
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return groups, nil
}

// ParseSettings turns key=value pairs into a settings map. Values are read
// as YAML scalars, so numbers and booleans keep their types.
func ParseSettings(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	settings := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.NewValidationError("set", pair, "expected key=value")
		}
		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil || value == nil {
			value = raw
		}
		settings[key] = value
	}
	return settings, nil
}
