package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fraudscope/internal/cli"
	"fraudscope/internal/common"
	"fraudscope/internal/config"
	"fraudscope/internal/model"
	"fraudscope/internal/service"
	"fraudscope/internal/sheets"
	"fraudscope/internal/viewmodel"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a fraud report to Google Sheets",
		Long: `Build a fraud report and write it to the configured Google
spreadsheet. By default the most recent saved run is exported; with
--fresh a new batch prediction is requested from the backend instead.`,
		RunE: runExport,
	}
	cmd.Flags().Bool("fresh", false, "Score a fresh batch instead of using the latest saved run")
	cmd.Flags().Int64("run", 0, "Export a specific run by id")
	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	sheetsCfg, err := config.LoadSheetsConfig()
	if err != nil {
		return fmt.Errorf("sheets configuration: %w", err)
	}

	report, err := buildReport(cmd)
	if err != nil {
		return err
	}
	if len(report.Predictions) == 0 {
		return fmt.Errorf("nothing to export: no predictions available")
	}

	writer, err := sheets.NewWriter(ctx, *sheetsCfg, slog.Default())
	if err != nil {
		return err
	}
	if err := writer.Write(ctx, report); err != nil {
		return err
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf(
		"Exported %d providers to %q", len(report.Predictions), sheetsCfg.SpreadsheetName)))
	return nil
}

// buildReport assembles the export payload from the run history or, with
// --fresh, from a new backend prediction.
func buildReport(cmd *cobra.Command) (*service.FraudReport, error) {
	ctx := cmd.Context()

	if fresh, _ := cmd.Flags().GetBool("fresh"); fresh {
		return freshReport(cmd)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	var run *model.Run
	if runID, _ := cmd.Flags().GetInt64("run"); runID > 0 {
		run, err = store.GetRun(ctx, runID)
	} else {
		run, err = store.GetLatestRun(ctx)
	}
	if errors.Is(err, common.ErrNotFound) {
		slog.Info(cli.FormatInfo("No saved runs, requesting a fresh prediction"))
		return freshReport(cmd)
	}
	if err != nil {
		return nil, err
	}

	predictions, err := store.GetRunPredictions(ctx, run.ID)
	if err != nil {
		return nil, err
	}

	return &service.FraudReport{
		GeneratedAt:    run.CreatedAt,
		BackendURL:     run.BackendURL,
		TotalProviders: run.TotalProviders,
		FraudCount:     run.FraudCount,
		FraudRatePct:   run.FraudRatePct,
		TotalSavings:   run.TotalSavings,
		Predictions:    predictions,
	}, nil
}

func freshReport(cmd *cobra.Command) (*service.FraudReport, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()

	resp, err := client.PredictFraud(ctx)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("prediction failed")
	}

	var rows []model.DashboardRow
	if dashResp, dashErr := client.GetDashboardData(ctx); dashErr == nil && dashResp.Success {
		rows = dashResp.Data
	}
	agg := viewmodel.Aggregate(resp.Predictions, rows)

	return &service.FraudReport{
		GeneratedAt:    time.Now().UTC(),
		BackendURL:     viper.GetString("backend.url"),
		TotalProviders: agg.TotalProviders,
		FraudCount:     agg.FraudCount,
		FraudRatePct:   agg.FraudRatePct,
		TotalSavings:   agg.TotalSavings,
		Predictions:    resp.Predictions,
		Providers:      rows,
	}, nil
}
