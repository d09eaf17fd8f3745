package main

import (
	"bytes"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"district-map/internal/district"
)

var assignments []string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the CSV back with districts applied",
	Long:  "Loads --csv, applies each --assign key=district in order and writes the rows with their current district.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		table, m, err := loadMap(ctx)
		if err != nil {
			return err
		}
		if err := applyAssignments(m); err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := district.Export(&buf, table, m, settings.Columns.District); err != nil {
			return err
		}

		path := outPath
		if path == "" {
			path = settings.ExportFilename
		}
		if path == "-" {
			_, err := cmd.OutOrStdout().Write(buf.Bytes())
			return err
		}
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			return eris.Wrapf(err, "export: write %s", path)
		}
		zap.L().Info("export: wrote csv", zap.String("path", path), zap.Int("rows", len(table.Rows)))
		return nil
	},
}

func applyAssignments(m *district.Map) error {
	for _, a := range assignments {
		key, value, ok := strings.Cut(a, "=")
		if !ok {
			return eris.Errorf("--assign %q: want key=district", a)
		}
		d, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return eris.Wrapf(err, "--assign %q", a)
		}
		if _, err := m.Reassign(strings.TrimSpace(key), d); err != nil {
			return eris.Wrapf(err, "--assign %q", a)
		}
	}
	return nil
}

func addAssignFlag(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&assignments, "assign", nil, "reassign a neighbourhood, key=district (repeatable)")
}

func init() {
	addMapFlags(exportCmd)
	addAssignFlag(exportCmd)
	exportCmd.Flags().StringVar(&outPath, "out", "", "output file, - for stdout (default export.filename)")
	rootCmd.AddCommand(exportCmd)
}
