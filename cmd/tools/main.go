package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"district-map/internal/api"
	"district-map/internal/config"
)

var (
	cfg      *config.Config
	settings api.Settings
)

var rootCmd = &cobra.Command{
	Use:   "district-tools",
	Short: "Offline district map utilities",
	Long:  "Joins an event CSV onto boundaries, prints district legends, exports reassigned CSVs and manages the layer cache without running the server.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
		settings = api.SettingsFrom(cfg)

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
