package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"fraudscope/internal/api"
	"fraudscope/internal/cli"
	"fraudscope/internal/model"
)

func detailsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "details <provider>",
		Short: "Show one provider's aggregates and explanation comparison",
		Long: `Fetch a provider's detailed aggregates and its SHAP versus LIME
explanation comparison. The two fetches run concurrently and fail
independently, so one panel can render while the other reports an error.`,
		Args: cobra.ExactArgs(1),
		RunE: runDetails,
	}
	cmd.Flags().Bool("no-compare", false, "Skip the explanation comparison")
	return cmd
}

func runDetails(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	provider := args[0]

	type detailsResult struct {
		resp api.ProviderDetailsResponse
		err  error
	}
	type compareResult struct {
		resp api.ComparedExplanations
		err  error
	}

	detailsCh := make(chan detailsResult, 1)
	compareCh := make(chan compareResult, 1)

	go func() {
		resp, err := client.GetProviderDetails(ctx, provider)
		detailsCh <- detailsResult{resp, err}
	}()

	noCompare, _ := cmd.Flags().GetBool("no-compare")
	if noCompare {
		compareCh <- compareResult{err: nil}
	} else {
		go func() {
			resp, err := client.CompareExplanations(ctx, provider)
			compareCh <- compareResult{resp, err}
		}()
	}

	details := <-detailsCh
	compare := <-compareCh

	if details.err != nil {
		slog.Error(cli.FormatError(fmt.Sprintf("provider details: %v", details.err)))
	} else if !details.resp.Success {
		slog.Error(cli.FormatError("provider details unavailable"))
	} else {
		printProviderDetails(details.resp.Provider)
	}

	if !noCompare {
		if compare.err != nil {
			slog.Error(cli.FormatError(fmt.Sprintf("explanation comparison: %v", compare.err)))
		} else {
			printComparison(compare.resp)
		}
	}

	if details.err != nil {
		return details.err
	}
	return compare.err
}

func printProviderDetails(d model.ProviderDetails) {
	slog.Info(cli.RenderBox(d.Provider, fmt.Sprintf(`Total reimbursed:     %.2f
Mean reimbursed:      %.2f
Claims:               %d
Unique beneficiaries: %d
Average age:          %.1f
Male fraction:        %.1f%%`,
		d.TotalReimbursed, d.MeanReimbursed, d.ClaimCount,
		d.UniqueBeneficiaries, d.AvgAge, d.PctMale*100)))

	var b strings.Builder
	for _, c := range d.ChronicConditions() {
		fmt.Fprintf(&b, "%-16s %5.1f%%\n", c.Name, c.Value*100)
	}
	slog.Info(cli.RenderBox("Chronic Conditions", strings.TrimRight(b.String(), "\n")))
}

func printComparison(c api.ComparedExplanations) {
	printExplanationTable("SHAP", c.Shap)
	printExplanationTable("LIME", c.Lime)

	if agree := c.Shap.Prediction == c.Lime.Prediction; agree {
		slog.Info(cli.FormatSuccess("Methods agree on the verdict"))
	} else {
		slog.Warn(cli.FormatWarning("Methods disagree on the verdict"))
	}
}

func printExplanationTable(name string, exp model.Explanation) {
	var b strings.Builder
	fmt.Fprintf(&b, "Prediction: %s (%.2f%%)\n",
		cli.FormatVerdict(exp.Prediction == 1), exp.PredictionProba*100)
	for _, fc := range exp.Contributions {
		sign := "+"
		weight := fc.Weight
		if weight < 0 {
			sign = "-"
			weight = -weight
		}
		fmt.Fprintf(&b, "%-25s %s%.4f\n", fc.Feature, sign, weight)
	}
	slog.Info(cli.RenderBox(name, strings.TrimRight(b.String(), "\n")))
}
