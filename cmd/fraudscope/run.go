package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fraudscope/internal/api"
	"fraudscope/internal/cli"
	"fraudscope/internal/model"
	"fraudscope/internal/tui"
	"fraudscope/internal/viewmodel"
	"fraudscope/internal/workflow"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [files...]",
		Short: "Run the full pipeline: upload, ingest, predict",
		Long: `Execute the complete scoring workflow in one command. The given CSV
files are uploaded, consolidated into a single dataset, and scored. The
run is saved to local history unless --save=false.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runPipeline,
	}

	cmd.Flags().StringP("output", "o", "", "Write results to a CSV file")
	cmd.Flags().Bool("browse", false, "Open the interactive results browser after scoring")
	cmd.Flags().Bool("save", true, "Persist the run to local history")
	_ = viper.BindPFlag("run.save", cmd.Flags().Lookup("save"))

	return cmd
}

func runPipeline(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	ctrl := workflow.NewController(client)

	slog.Info(cli.FormatTitle("Stage 1/3: uploading files"))
	stage := ctrl.StageFiles(ctx, args...)
	for _, path := range stage.Rejected {
		slog.Warn(cli.FormatWarning(fmt.Sprintf("%s: only CSV files are accepted", path)))
	}
	for _, f := range ctrl.Files() {
		if f.Status == model.FileError {
			slog.Error(cli.FormatError(fmt.Sprintf("%s: %s", f.Name, f.Error)))
		} else {
			slog.Info(cli.FormatSuccess(fmt.Sprintf("%s (%s)", f.Name, f.Category.Label())))
		}
	}
	if !ctrl.CanIngest() {
		return fmt.Errorf("no files uploaded, nothing to process")
	}
	if stage.Failed > 0 {
		attempted := stage.Staged + stage.Failed
		slog.Warn(cli.FormatWarning(fmt.Sprintf("continuing with %d of %d files", stage.Staged, attempted)))
	}

	slog.Info(cli.FormatTitle("Stage 2/3: consolidating data"))
	ingest, err := ctrl.Ingest(ctx)
	if err != nil {
		return err
	}
	slog.Info(cli.FormatSuccess(fmt.Sprintf("%d input rows consolidated into %d", ingest.InputRows, ingest.OutputRows)))

	slog.Info(cli.FormatTitle("Stage 3/3: scoring providers"))
	start := time.Now()
	predictions, err := ctrl.Predict(ctx)
	if err != nil {
		return err
	}
	slog.Info(cli.FormatSuccess(fmt.Sprintf("%d providers scored in %s", len(predictions), time.Since(start).Round(time.Millisecond))))

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		if err := writeResultsCSV(output, predictions); err != nil {
			return err
		}
		slog.Info(cli.FormatSuccess(fmt.Sprintf("Results written to %s", output)))
	}

	if viper.GetBool("run.save") {
		if err := persistPipelineRun(ctx, client, ctrl); err != nil {
			slog.Warn(cli.FormatWarning(fmt.Sprintf("could not save run history: %v", err)))
		}
	}

	if browse, _ := cmd.Flags().GetBool("browse"); browse {
		return tui.Run(ctx, tui.Config{
			Source:      client,
			Predictions: predictions,
		})
	}

	printResultsPage(predictions, "", 1)
	return nil
}

func persistPipelineRun(ctx context.Context, client *api.Client, ctrl *workflow.Controller) error {
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	predictions := ctrl.Predictions()
	var rows []model.DashboardRow
	if dashResp, dashErr := client.GetDashboardData(ctx); dashErr == nil && dashResp.Success {
		rows = dashResp.Data
	}
	agg := viewmodel.Aggregate(predictions, rows)

	run := &model.Run{
		CreatedAt:      time.Now().UTC(),
		BackendURL:     viper.GetString("backend.url"),
		TotalProviders: agg.TotalProviders,
		FraudCount:     agg.FraudCount,
		FraudRatePct:   agg.FraudRatePct,
		TotalSavings:   agg.TotalSavings,
	}
	if ingest := ctrl.IngestResult(); ingest != nil {
		run.InputRows = ingest.InputRows
		run.OutputRows = ingest.OutputRows
	}

	id, err := store.SaveRun(ctx, run, predictions)
	if err != nil {
		return err
	}
	slog.Info("Run saved to history", "run_id", id)
	return nil
}
