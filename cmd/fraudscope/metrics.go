package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"fraudscope/internal/cli"
)

func metricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Show the deployed model's evaluation metrics",
		RunE:  runMetrics,
	}
}

func runMetrics(cmd *cobra.Command, _ []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	resp, err := client.GetMetrics(cmd.Context())
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("metrics unavailable")
	}
	m := resp.Metrics

	slog.Info(cli.RenderBox("Model Performance", fmt.Sprintf(`ROC-AUC:   %.4f
Precision: %.4f
Recall:    %.4f
F1 score:  %.4f`, m.ROCAUC, m.Precision, m.Recall, m.F1Score)))

	if len(m.ConfusionMatrix) == 2 && len(m.ConfusionMatrix[0]) == 2 {
		slog.Info(cli.RenderBox("Confusion Matrix", fmt.Sprintf(`              Pred: No  Pred: Yes
Actual: No  %8d  %8d
Actual: Yes %8d  %8d`,
			m.ConfusionMatrix[0][0], m.ConfusionMatrix[0][1],
			m.ConfusionMatrix[1][0], m.ConfusionMatrix[1][1])))
	}

	slog.Info(cli.RenderBox("Best Parameters", fmt.Sprintf(`learning_rate:    %.3f
max_depth:        %d
n_estimators:     %d
scale_pos_weight: %.2f`,
		m.BestParams.LearningRate, m.BestParams.MaxDepth,
		m.BestParams.NEstimators, m.BestParams.ScalePosWeight)))

	info := resp.ModelInfo
	features := strings.Join(info.FeatureNames, ", ")
	if features == "" {
		features = "(not reported)"
	}
	slog.Info(cli.RenderBox("Model", fmt.Sprintf(`Type:     %s
Features: %d (%s)
Artifact: %s`, info.ModelType, info.NFeatures, features, info.ModelPath)))

	return nil
}
