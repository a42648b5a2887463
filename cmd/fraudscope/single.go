package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"fraudscope/internal/api"
	"fraudscope/internal/cli"
	"fraudscope/internal/model"
	"fraudscope/internal/workflow"
)

func singleCmd() *cobra.Command {
	var req model.PredictionRequest

	cmd := &cobra.Command{
		Use:   "single",
		Short: "Score a single provider from its feature values",
		Long: `Score one provider directly from its aggregate features without
uploading a dataset. With --explain, a per-feature explanation is
requested alongside the score.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSingle(cmd, req)
		},
	}

	cmd.Flags().StringVar(&req.Provider, "provider", "", "Provider identifier")
	cmd.Flags().Float64Var(&req.TotalReimbursed, "total-reimbursed", 0, "Total reimbursed amount")
	cmd.Flags().IntVar(&req.ClaimCount, "claim-count", 0, "Number of claims")
	cmd.Flags().IntVar(&req.UniqueBeneficiaries, "unique-beneficiaries", 0, "Distinct beneficiaries")
	cmd.Flags().Float64Var(&req.PctMale, "pct-male", 0, "Male beneficiary fraction (0 to 1)")
	cmd.Flags().String("explain", "", "Explanation method: shap or lime")
	cmd.Flags().Bool("via-pipeline", false, "Score through the bulk pipeline instead of the single endpoint")
	_ = cmd.MarkFlagRequired("provider")

	return cmd
}

func runSingle(cmd *cobra.Command, req model.PredictionRequest) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if viaPipeline, _ := cmd.Flags().GetBool("via-pipeline"); viaPipeline {
		return runSingleViaPipeline(ctx, client, req)
	}

	resp, err := client.PredictSingle(ctx, req)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("prediction failed")
	}

	printSinglePrediction(resp.Prediction)
	if resp.CalculatedMeanReimbursed > 0 {
		slog.Info(cli.SubtleStyle.Render(
			fmt.Sprintf("Mean reimbursed per claim: %.2f", resp.CalculatedMeanReimbursed)))
	}

	method, _ := cmd.Flags().GetString("explain")
	if method == "" {
		return nil
	}
	return explainSingle(ctx, client, req, method)
}

func printSinglePrediction(p model.Prediction) {
	tier := model.RiskTierFor(p.ProbabilidadFraude)
	slog.Info(cli.RenderBox("Prediction", fmt.Sprintf(`Provider:    %s
Verdict:     %s
Probability: %.2f%%
Risk tier:   %s`,
		p.Provider,
		cli.FormatVerdict(p.IsFraud()),
		p.ProbabilidadFraude*100,
		cli.FormatRiskTier(tier))))
}

func explainSingle(ctx context.Context, client *api.Client, req model.PredictionRequest, method string) error {
	var (
		exp model.Explanation
		err error
	)
	switch method {
	case "shap":
		exp, err = client.ExplainSHAP(ctx, req)
	case "lime":
		exp, err = client.ExplainLIME(ctx, req)
	default:
		return fmt.Errorf("unknown explanation method %q (want shap or lime)", method)
	}
	if err != nil {
		return err
	}

	slog.Info(cli.FormatTitle(fmt.Sprintf("%s explanation (base %.4f)", exp.Method, exp.BaseValue)))
	for _, c := range exp.Contributions {
		sign := "+"
		styled := cli.ErrorStyle
		if c.Weight < 0 {
			sign = "-"
			styled = cli.SuccessStyle
		}
		weight := c.Weight
		if weight < 0 {
			weight = -weight
		}
		slog.Info(fmt.Sprintf("  %-25s %12.2f  %s",
			c.Feature, c.Value, styled.Render(fmt.Sprintf("%s%.4f", sign, weight))))
	}
	return nil
}

// runSingleViaPipeline scores one provider by pushing a one-row dataset
// through the regular upload, ingest and predict stages. Used when the
// single-prediction endpoint is unavailable on the backend.
func runSingleViaPipeline(ctx context.Context, client *api.Client, req model.PredictionRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	path, err := writeSingleRowCSV(req)
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(path) }()

	ctrl := workflow.NewController(client)
	stage := ctrl.StageFiles(ctx, path)
	if stage.Staged == 0 {
		for _, f := range ctrl.Files() {
			if f.Status == model.FileError {
				return fmt.Errorf("upload failed: %s", f.Error)
			}
		}
		return fmt.Errorf("upload failed")
	}
	if _, err := ctrl.Ingest(ctx); err != nil {
		return err
	}
	predictions, err := ctrl.Predict(ctx)
	if err != nil {
		return err
	}

	for _, p := range predictions {
		if p.Provider == req.Provider {
			printSinglePrediction(p)
			return nil
		}
	}
	return fmt.Errorf("provider %s missing from pipeline results", req.Provider)
}

func writeSingleRowCSV(req model.PredictionRequest) (string, error) {
	path := filepath.Join(os.TempDir(), fmt.Sprintf("provider_single_%d.csv", os.Getpid()))
	f, err := os.Create(path) // #nosec G304
	if err != nil {
		return "", fmt.Errorf("failed to create temp dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	records := [][]string{
		{"Provider", "Total_Reimbursed", "Claim_Count", "Unique_Beneficiaries", "Pct_Male"},
		{
			req.Provider,
			strconv.FormatFloat(req.TotalReimbursed, 'f', 2, 64),
			strconv.Itoa(req.ClaimCount),
			strconv.Itoa(req.UniqueBeneficiaries),
			strconv.FormatFloat(req.PctMale, 'f', 4, 64),
		},
	}
	if err := w.WriteAll(records); err != nil {
		return "", err
	}
	return path, w.Error()
}
