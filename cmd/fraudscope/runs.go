package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"fraudscope/internal/cli"
	"fraudscope/internal/common"
	"fraudscope/internal/model"
	"fraudscope/internal/service"
)

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the local run history",
	}
	cmd.AddCommand(runsListCmd())
	cmd.AddCommand(runsShowCmd())
	return cmd
}

func runsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved prediction runs, newest first",
		RunE:  runRunsList,
	}
	cmd.Flags().Int("limit", 20, "Maximum runs to show")
	cmd.Flags().Int("offset", 0, "Runs to skip")
	return cmd
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")
	runs, err := store.ListRuns(ctx, service.RunFilter{Limit: limit, Offset: offset})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		slog.Info(cli.FormatInfo("No saved runs yet"))
		return nil
	}

	slog.Info(cli.TableHeaderStyle.Render(fmt.Sprintf("%-5s %-20s %-10s %-8s %-10s %s",
		"ID", "Created", "Providers", "Flagged", "Rate", "Backend")))
	for _, r := range runs {
		slog.Info(fmt.Sprintf("%-5d %-20s %-10d %-8d %8.1f%%  %s",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.TotalProviders, r.FraudCount, r.FraudRatePct, r.BackendURL))
	}
	return nil
}

func runsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show one run with its predictions (defaults to the latest)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRunsShow,
	}
	cmd.Flags().Int("top", 0, "Only show the N highest-probability providers")
	return cmd
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	var run *model.Run
	if len(args) == 1 {
		id, parseErr := strconv.ParseInt(args[0], 10, 64)
		if parseErr != nil {
			return fmt.Errorf("invalid run id %q", args[0])
		}
		run, err = store.GetRun(ctx, id)
	} else {
		run, err = store.GetLatestRun(ctx)
	}
	if errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("run not found")
	}
	if err != nil {
		return err
	}

	slog.Info(cli.RenderBox(fmt.Sprintf("Run %d", run.ID), fmt.Sprintf(`Created:      %s
Backend:      %s
Input rows:   %d
Output rows:  %d
Providers:    %d
Flagged:      %d
Fraud rate:   %.1f%%
Est. savings: %.2f`,
		run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		run.BackendURL, run.InputRows, run.OutputRows,
		run.TotalProviders, run.FraudCount, run.FraudRatePct, run.TotalSavings)))

	predictions, err := store.GetRunPredictions(ctx, run.ID)
	if err != nil {
		return err
	}
	if top, _ := cmd.Flags().GetInt("top"); top > 0 && len(predictions) > top {
		predictions = predictions[:top]
	}
	for _, p := range predictions {
		tier := cli.FormatRiskTier(model.RiskTierFor(p.ProbabilidadFraude))
		slog.Info(fmt.Sprintf("%-20s %s %6.2f%% %s",
			p.Provider, cli.FormatVerdict(p.IsFraud()), p.ProbabilidadFraude*100, tier))
	}
	return nil
}
