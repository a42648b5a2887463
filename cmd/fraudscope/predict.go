package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fraudscope/internal/api"
	"fraudscope/internal/cli"
	"fraudscope/internal/model"
	"fraudscope/internal/tui"
	"fraudscope/internal/viewmodel"
)

func predictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Run the batch fraud prediction over the consolidated dataset",
		Long: `Score every provider in the consolidated dataset. Results can be
filtered, paged, exported to CSV, persisted to the local run history, or
browsed interactively.`,
		RunE: runPredict,
	}

	cmd.Flags().String("search", "", "Filter results by provider name")
	cmd.Flags().Int("page", 1, "Result page to display")
	cmd.Flags().StringP("output", "o", "", "Write results to a CSV file")
	cmd.Flags().Bool("browse", false, "Open the interactive results browser")
	cmd.Flags().Bool("save", true, "Persist the run to local history")

	_ = viper.BindPFlag("predict.save", cmd.Flags().Lookup("save"))

	return cmd
}

func runPredict(cmd *cobra.Command, _ []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	slog.Info(cli.FormatTitle("Scoring providers..."))

	resp, err := client.PredictFraud(ctx)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("prediction failed")
	}
	predictions := resp.Predictions

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		if err := writeResultsCSV(output, predictions); err != nil {
			return err
		}
		slog.Info(cli.FormatSuccess(fmt.Sprintf("Results written to %s", output)))
	}

	if viper.GetBool("predict.save") {
		if err := persistRun(ctx, client, resp); err != nil {
			// History is best effort; the prediction run already succeeded.
			slog.Warn(cli.FormatWarning(fmt.Sprintf("could not save run history: %v", err)))
		}
	}

	if browse, _ := cmd.Flags().GetBool("browse"); browse {
		return tui.Run(ctx, tui.Config{
			Source:      client,
			Predictions: predictions,
		})
	}

	search, _ := cmd.Flags().GetString("search")
	page, _ := cmd.Flags().GetInt("page")
	printResultsPage(predictions, search, page)
	return nil
}

func printResultsPage(predictions []model.Prediction, search string, page int) {
	filtered := viewmodel.FilterPredictions(predictions, search)
	totalPages := viewmodel.TotalPages(len(filtered))
	page = viewmodel.ClampPage(page, totalPages)

	fraudCount := 0
	for _, p := range predictions {
		if p.IsFraud() {
			fraudCount++
		}
	}

	slog.Info(cli.RenderBox("Prediction Summary", fmt.Sprintf(`Providers scored: %d
Flagged fraudulent: %d`, len(predictions), fraudCount)))

	for _, p := range viewmodel.Page(filtered, page) {
		tier := cli.FormatRiskTier(model.RiskTierFor(p.ProbabilidadFraude))
		slog.Info(fmt.Sprintf("%-20s %s %6.2f%% %s",
			p.Provider, cli.FormatVerdict(p.IsFraud()), p.ProbabilidadFraude*100, tier))
	}

	if totalPages > 1 {
		slog.Info(cli.SubtleStyle.Render(fmt.Sprintf("Page %d/%d (use --page)", page, totalPages)))
	}

	if top := viewmodel.TopFraudProviders(predictions); len(top) > 0 {
		slog.Info(cli.StyleWarning("Highest risk providers:"))
		for i, p := range top {
			slog.Info(fmt.Sprintf("  %d. %s (%.2f%%)", i+1, p.Provider, p.ProbabilidadFraude*100))
		}
	}
}

// writeResultsCSV exports predictions in the canonical download format.
func writeResultsCSV(path string, predictions []model.Prediction) error {
	f, err := os.Create(path) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Provider", "Fraud_Prediction", "Fraud_Probability"}); err != nil {
		return err
	}
	for _, p := range predictions {
		verdict := "No_Fraud"
		if p.IsFraud() {
			verdict = "Fraud"
		}
		record := []string{
			p.Provider,
			verdict,
			fmt.Sprintf("%.2f%%", p.ProbabilidadFraude*100),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// persistRun saves the batch outcome to the local history database.
func persistRun(ctx context.Context, client *api.Client, resp api.PredictResponse) error {
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	// Savings need dashboard aggregates; a missing dashboard just means zero.
	var rows []model.DashboardRow
	if dashResp, dashErr := client.GetDashboardData(ctx); dashErr == nil && dashResp.Success {
		rows = dashResp.Data
	}
	agg := viewmodel.Aggregate(resp.Predictions, rows)

	run := &model.Run{
		CreatedAt:      time.Now().UTC(),
		BackendURL:     viper.GetString("backend.url"),
		TotalProviders: resp.TotalProviders,
		FraudCount:     agg.FraudCount,
		FraudRatePct:   agg.FraudRatePct,
		TotalSavings:   agg.TotalSavings,
	}

	id, err := store.SaveRun(ctx, run, resp.Predictions)
	if err != nil {
		return err
	}
	slog.Info("Run saved to history", "run_id", id)
	return nil
}
