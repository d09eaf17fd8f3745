package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"district-map/internal/db"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear cached remote layers",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached layers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		database, err := db.New(cfg.DB.Path)
		if err != nil {
			return err
		}
		defer database.Close()

		layers, err := database.ListLayers()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SOURCE\tBYTES\tFETCHED")
		for _, l := range layers {
			fmt.Fprintf(w, "%s\t%d\t%s\n", l.Source, l.Bytes, l.FetchedAt.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached layer",
	RunE: func(cmd *cobra.Command, _ []string) error {
		database, err := db.New(cfg.DB.Path)
		if err != nil {
			return err
		}
		defer database.Close()

		n, err := database.DeleteLayers()
		if err != nil {
			return err
		}
		zap.L().Info("cache: cleared layers", zap.Int64("removed", n))
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheListCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
