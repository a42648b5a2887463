package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"fraudscope/internal/cli"
)

func ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Consolidate the uploaded datasets into one analysis table",
		RunE:  runIngest,
	}
}

func runIngest(cmd *cobra.Command, _ []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	slog.Info(cli.FormatTitle("Processing uploaded datasets..."))

	resp, err := client.IngestData(cmd.Context())
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("data processing failed: %s", resp.Message)
	}

	content := fmt.Sprintf(`Input rows:  %d
Output rows: %d
Dataset:     %s`, resp.InputRows, resp.OutputRows, resp.OutputPath)
	slog.Info(cli.RenderBox("Ingest Complete", content))
	slog.Info(cli.StyleInfo("Next: run 'fraudscope predict' to score all providers"))
	return nil
}

func previewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the first rows of the consolidated dataset",
		RunE:  runPreview,
	}
	cmd.Flags().Int("rows", 5, "Rows to display")
	return cmd
}

func runPreview(cmd *cobra.Command, _ []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	rows, err := client.TestFinalPreview(cmd.Context())
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("rows")
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	if len(rows) == 0 {
		slog.Info(cli.FormatWarning("Consolidated dataset is empty"))
		return nil
	}

	for i, row := range rows {
		slog.Info(fmt.Sprintf("row %d", i+1), "data", row)
	}
	return nil
}
