package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var legendCmd = &cobra.Command{
	Use:   "legend",
	Short: "Print per-district event totals for a CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		_, m, err := loadMap(ctx)
		if err != nil {
			return err
		}
		if err := applyAssignments(m); err != nil {
			return err
		}

		legend := m.Legend()
		out := cmd.OutOrStdout()
		for _, line := range legend.Lines() {
			fmt.Fprintln(out, line)
		}
		if legend.Unmatched > 0 {
			fmt.Fprintf(out, "\n%d boundary features without data\n", legend.Unmatched)
		}
		if len(legend.Orphans) > 0 {
			fmt.Fprintf(out, "%d CSV neighbourhoods without a boundary: %v\n", len(legend.Orphans), legend.Orphans)
		}
		return nil
	},
}

func init() {
	addMapFlags(legendCmd)
	addAssignFlag(legendCmd)
	rootCmd.AddCommand(legendCmd)
}
