package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"fraudscope/internal/cli"
	"fraudscope/internal/config"
	"fraudscope/internal/sheets"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage credentials for external integrations",
	}
	cmd.AddCommand(authSheetsCmd())
	return cmd
}

func authSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authorize Google Sheets access interactively",
		Long: `Run the OAuth2 consent flow for Google Sheets. A browser consent
URL is printed, a local callback server receives the authorization code,
and the resulting token is cached for later exports.`,
		RunE: runAuthSheets,
	}
	cmd.Flags().String("token-file", "", "Token cache location (default ~/.config/fraudscope/sheets-token.json)")
	return cmd
}

func runAuthSheets(cmd *cobra.Command, _ []string) error {
	sheetsCfg, err := config.LoadSheetsConfig()
	if err != nil {
		return fmt.Errorf("sheets configuration: %w", err)
	}
	if sheetsCfg.ClientID == "" || sheetsCfg.ClientSecret == "" {
		return fmt.Errorf("sheets OAuth client id and secret are required (set sheets.client_id and sheets.client_secret)")
	}

	tokenFile, _ := cmd.Flags().GetString("token-file")
	if tokenFile == "" {
		tokenFile = config.DefaultTokenPath()
	}
	tokenFile = config.ExpandPath(tokenFile)

	token, err := sheets.GetOrCreateToken(cmd.Context(), sheets.OAuth2Config{
		ClientID:     sheetsCfg.ClientID,
		ClientSecret: sheetsCfg.ClientSecret,
		TokenFile:    tokenFile,
	})
	if err != nil {
		return err
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf("Token cached at %s", tokenFile)))
	if token.RefreshToken != "" {
		slog.Info(cli.FormatInfo("Add the refresh token to your config to skip interactive auth:"))
		slog.Info(cli.SubtleStyle.Render(fmt.Sprintf("  sheets.refresh_token: %s", token.RefreshToken)))
	}
	return nil
}
