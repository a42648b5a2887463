package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"fraudscope/internal/cli"
	"fraudscope/internal/model"
	"fraudscope/internal/workflow"
)

func uploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file.csv> [file.csv...]",
		Short: "Upload claim datasets to the backend",
		Long: `Upload one or more CSV datasets (beneficiary, inpatient, outpatient,
provider). Files are classified by name; non-CSV files are rejected without
touching the network. A failed file does not abort the rest of the batch.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runUpload,
	}
}

func runUpload(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	ctrl := workflow.NewController(client)

	bar := progressbar.NewOptions(len(args),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Uploading datasets...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)

	var staged, failed, rejected int
	for _, path := range args {
		result := ctrl.StageFiles(cmd.Context(), path)
		staged += result.Staged
		failed += result.Failed
		rejected += len(result.Rejected)
		_ = bar.Add(1)
	}

	for _, f := range ctrl.Files() {
		switch f.Status {
		case model.FileUploaded:
			slog.Info(cli.FormatSuccess(fmt.Sprintf("%s (%s)", f.Name, f.Category.Label())))
		case model.FileError:
			slog.Warn(cli.FormatError(fmt.Sprintf("%s: %s", f.Name, f.Error)))
		}
	}

	slog.Info(cli.FormatInfo(fmt.Sprintf("%d uploaded, %d failed, %d rejected (non-CSV)", staged, failed, rejected)))

	if staged == 0 {
		return fmt.Errorf("no files uploaded")
	}
	slog.Info(cli.StyleInfo("Next: run 'fraudscope ingest' to consolidate the dataset"))
	return nil
}
