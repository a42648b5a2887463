package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"fraudscope/internal/api"
	"fraudscope/internal/cli"
	"fraudscope/internal/model"
	"fraudscope/internal/viewmodel"
)

type dashboardSource interface {
	GetDashboardData(ctx context.Context) (api.DashboardDataResponse, error)
}

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show provider aggregates and the top-providers ranking",
		Long: `Materialize the provider dashboard on the backend and display the
headline aggregates plus a ranked top-providers table. When the dashboard
endpoint has no data, placeholder rows are synthesized and marked as such.`,
		RunE: runDashboard,
	}

	cmd.Flags().IntP("top", "n", viewmodel.DefaultTopN, "Number of top providers to show")
	cmd.Flags().String("sort", string(viewmodel.SortByReimbursed),
		"Ranking column: reimbursed, claims or beneficiaries")
	cmd.Flags().Bool("generate", true, "Regenerate the dashboard dataset before reading it")

	return cmd
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	sortKey, err := parseSortKey(cmd)
	if err != nil {
		return err
	}
	topN, _ := cmd.Flags().GetInt("top")

	if generate, _ := cmd.Flags().GetBool("generate"); generate {
		if resp, genErr := client.GenerateDashboard(ctx); genErr != nil || !resp.Success {
			slog.Warn(cli.FormatWarning("dashboard generation failed, reading existing data"))
		} else {
			slog.Info(cli.FormatSuccess(fmt.Sprintf("Dashboard generated: %d providers", resp.TotalProviders)))
		}
	}

	var predictions []model.Prediction
	if predResp, predErr := client.PredictFraud(ctx); predErr == nil && predResp.Success {
		predictions = predResp.Predictions
	}

	rows, synthesized := loadDashboardRows(cmd, client, predictions)
	if len(rows) == 0 {
		return fmt.Errorf("no dashboard data available")
	}
	if synthesized {
		slog.Warn(cli.FormatWarning("backend returned no dashboard data, showing synthesized placeholder rows"))
	}

	agg := viewmodel.Aggregate(predictions, rows)
	slog.Info(cli.RenderBox("Summary", fmt.Sprintf(`Providers:   %d
Flagged:     %d
Fraud rate:  %.1f%%
Est. savings: %.2f`, agg.TotalProviders, agg.FraudCount, agg.FraudRatePct, agg.TotalSavings)))

	slog.Info(cli.FormatTitle(fmt.Sprintf("Top %d by %s", topN, sortKey.Label())))
	for i, rp := range viewmodel.RankProviders(rows, predictions, sortKey, topN) {
		verdict := cli.SubtleStyle.Render("unscored")
		if rp.Prediction != nil {
			verdict = cli.FormatVerdict(rp.Prediction.IsFraud())
		}
		mark := ""
		if rp.Row.Synthesized {
			mark = cli.SubtleStyle.Render(" (synthesized)")
		}
		slog.Info(fmt.Sprintf("  %2d. %-20s %12.2f  %6d claims  %6d beneficiaries  %s%s",
			i+1, rp.Row.Provider, rp.Row.TotalReimbursed,
			rp.Row.ClaimCount, rp.Row.UniqueBeneficiaries, verdict, mark))
	}
	return nil
}

func parseSortKey(cmd *cobra.Command) (viewmodel.SortKey, error) {
	raw, _ := cmd.Flags().GetString("sort")
	key := viewmodel.SortKey(raw)
	switch key {
	case viewmodel.SortByReimbursed, viewmodel.SortByClaims, viewmodel.SortByBeneficiaries:
		return key, nil
	default:
		return "", fmt.Errorf("unknown sort key %q (want reimbursed, claims or beneficiaries)", raw)
	}
}

// loadDashboardRows reads provider aggregates from the backend, falling
// back to synthesized placeholder rows when the endpoint fails or is empty.
func loadDashboardRows(cmd *cobra.Command, client dashboardSource, predictions []model.Prediction) ([]model.DashboardRow, bool) {
	resp, err := client.GetDashboardData(cmd.Context())
	if err == nil && resp.Success && len(resp.Data) > 0 {
		return resp.Data, false
	}
	if err != nil {
		slog.Debug("dashboard data fetch failed", "error", err)
	}
	return viewmodel.SynthesizeDashboard(predictions), true
}
