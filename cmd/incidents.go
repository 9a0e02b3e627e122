package main

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var incidentsDays int

var incidentsCmd = &cobra.Command{
	Use:   "incidents",
	Short: "Inspect and manage the violation history",
}

var incidentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List incidents within the lookback window",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		days := incidentsDays
		if days == 0 {
			days = cfg.Agent.HistoryDays
		}

		incidents, err := store.Query(ctx, days)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(incidents, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal incidents")
		}
		cmd.Println(string(out))
		return nil
	},
}

var incidentsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show incident totals by severity and action",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		stats, err := store.Stats(ctx)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal stats")
		}
		cmd.Println(string(out))
		return nil
	},
}

var incidentsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every incident record",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Clear(ctx); err != nil {
			return err
		}
		zap.L().Info("incident store cleared")
		return nil
	},
}

func init() {
	incidentsListCmd.Flags().IntVar(&incidentsDays, "days", 0, "lookback window in days (default from config)")
	incidentsCmd.AddCommand(incidentsListCmd, incidentsStatsCmd, incidentsClearCmd)
	rootCmd.AddCommand(incidentsCmd)
}
