package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fraudscope/internal/cli"
)

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check backend availability and model state",
		RunE:  runHealth,
	}
}

func runHealth(cmd *cobra.Command, _ []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	resp, err := client.Health(cmd.Context())
	if err != nil {
		slog.Error(cli.FormatError(fmt.Sprintf("backend unreachable at %s", viper.GetString("backend.url"))))
		return err
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf("Backend %s: %s", viper.GetString("backend.url"), resp.Status)))
	if resp.ModelLoaded {
		slog.Info(cli.FormatSuccess("Model loaded"))
	} else {
		msg := "Model not loaded"
		if resp.Error != "" {
			msg = fmt.Sprintf("Model not loaded: %s", resp.Error)
		}
		slog.Warn(cli.FormatWarning(msg))
		return fmt.Errorf("model not loaded")
	}
	return nil
}
