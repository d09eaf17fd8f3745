package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"district-map/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "district-map",
	Short: "Neighbourhood event map with editable districts",
	Long:  "Serves a map that joins uploaded neighbourhood event counts onto boundary polygons and lets users regroup neighbourhoods into districts.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

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
