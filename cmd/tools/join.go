package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"district-map/internal/db"
	"district-map/internal/district"
	"district-map/internal/events"
	"district-map/internal/geo"
)

var (
	csvPath        string
	boundarySource string
	outPath        string
)

var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Join a CSV onto the boundaries and write styled GeoJSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		_, m, err := loadMap(ctx)
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(m.Render(), "", "  ")
		if err != nil {
			return eris.Wrap(err, "join: marshal")
		}

		if outPath == "" {
			_, err = cmd.OutOrStdout().Write(append(data, '\n'))
			return err
		}
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return eris.Wrapf(err, "join: write %s", outPath)
		}
		zap.L().Info("join: wrote map", zap.String("path", outPath), zap.Int("bytes", len(data)))
		return nil
	},
}

// loadMap reads --csv and joins it onto the configured or overridden boundary layer
func loadMap(ctx context.Context) (*events.Table, *district.Map, error) {
	if csvPath == "" {
		return nil, nil, eris.New("--csv is required")
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "open %s", csvPath)
	}
	defer f.Close()

	table, err := events.ReadTable(f, settings.Columns)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "read %s", csvPath)
	}
	agg := events.Aggregate(table.Rows, events.AggregateOptions{Years: settings.Years})

	database, err := db.New(cfg.DB.Path)
	if err != nil {
		return nil, nil, err
	}
	defer database.Close()
	loader := geo.NewLoader(database, cfg.Data.CacheTTL)

	source := boundarySource
	if source == "" {
		source = settings.Boundaries
	}
	fc, err := loader.Load(ctx, source)
	if err != nil {
		return nil, nil, err
	}

	m := district.Join(fc, agg.Records, agg.Years, settings.District)
	if settings.Stations != "" {
		if stations, err := loader.Load(ctx, settings.Stations); err == nil {
			m.SetStations(geo.Stations(stations))
		} else {
			zap.L().Warn("station layer unavailable", zap.Error(err))
		}
	}

	zap.L().Info("joined upload",
		zap.Int("rows", len(table.Rows)),
		zap.Int("records", len(agg.Records)),
		zap.Int("dropped", agg.Dropped),
		zap.Int("ignored", agg.Ignored),
		zap.Int("matched", m.Index().Len()),
		zap.Int("unmatched", m.Unmatched()),
		zap.Strings("orphans", m.Orphans()),
	)

	return table, m, nil
}

func addMapFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&csvPath, "csv", "", "event CSV to load")
	cmd.Flags().StringVar(&boundarySource, "boundaries", "", "boundary GeoJSON path or URL (default from config)")
}

func init() {
	addMapFlags(joinCmd)
	joinCmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")
	rootCmd.AddCommand(joinCmd)
}
