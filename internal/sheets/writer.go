package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"fraudscope/internal/common"
	"fraudscope/internal/model"
	"fraudscope/internal/service"
)

// providerSummarySheet is the tab carrying the per-provider aggregates,
// alongside the default predictions tab.
const providerSummarySheet = "Provider Summary"

// Writer implements the ReportWriter interface for Google Sheets.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: srv,
		logger:  logger,
	}, nil
}

// Write implements the ReportWriter interface.
func (w *Writer) Write(ctx context.Context, report *service.FraudReport) error {
	w.logger.Info("starting report export",
		"predictions", len(report.Predictions),
		"fraud_count", report.FraudCount)

	spreadsheetID, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	if ensureErr := w.ensureSheet(ctx, spreadsheetID, providerSummarySheet); ensureErr != nil {
		return fmt.Errorf("failed to prepare provider summary sheet: %w", ensureErr)
	}

	if clearErr := w.clearSheets(ctx, spreadsheetID); clearErr != nil {
		return fmt.Errorf("failed to clear sheets: %w", clearErr)
	}

	values := w.prepareReportData(report)
	summaryValues := w.prepareProviderSummaryData(report)

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	err = common.WithRetry(ctx, func() error {
		return w.writeData(ctx, spreadsheetID, "", values)
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	err = common.WithRetry(ctx, func() error {
		return w.writeData(ctx, spreadsheetID, providerSummarySheet, summaryValues)
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to write provider summary: %w", err)
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return w.applyFormatting(ctx, spreadsheetID, len(values))
		}, retryOpts)
		if err != nil {
			// A plain-text report is still usable.
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("report export completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(values)+len(summaryValues))

	return nil
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		oauthConfig := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}

		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}

		tokenSource = oauthConfig.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// getOrCreateSpreadsheet gets an existing spreadsheet or creates a new one.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		_, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		return w.config.SpreadsheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{
				Properties: &sheets.SheetProperties{
					Title: "Predictions",
				},
			},
			{
				Properties: &sheets.SheetProperties{
					Title: providerSummarySheet,
				},
			},
		},
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	return created.SpreadsheetId, nil
}

// ensureSheet adds the named sheet to an existing spreadsheet when absent.
func (w *Writer) ensureSheet(ctx context.Context, spreadsheetID, title string) error {
	spreadsheet, err := w.service.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to inspect spreadsheet %s: %w", spreadsheetID, err)
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == title {
			return nil
		}
	}

	request := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: title},
				},
			},
		},
	}
	if _, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, request).Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to add sheet %q: %w", title, err)
	}

	w.logger.Info("added sheet", "title", title)
	return nil
}

// clearSheets clears both report tabs.
func (w *Writer) clearSheets(ctx context.Context, spreadsheetID string) error {
	ranges := []string{"A:Z", fmt.Sprintf("'%s'!A:Z", providerSummarySheet)}
	for _, rangeStr := range ranges {
		_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, rangeStr, &sheets.ClearValuesRequest{}).Context(ctx).Do()
		if err != nil {
			return err
		}
	}
	return nil
}

// prepareReportData lays the report out as sheet rows: title, summary block,
// risk tier breakdown, then the full prediction table sorted by probability.
func (w *Writer) prepareReportData(report *service.FraudReport) [][]any {
	estimatedRows := 16 + len(report.Predictions)
	values := make([][]any, 0, estimatedRows)

	values = append(values,
		[]any{
			"Fraud Detection Report",
			report.GeneratedAt.Format("Jan 2, 2006 15:04"),
		},
		[]any{}, // Empty row
		[]any{"Summary"},
		[]any{"Backend", report.BackendURL},
		[]any{"Total Providers", report.TotalProviders},
		[]any{"Flagged Fraudulent", report.FraudCount},
		[]any{"Fraud Rate", fmt.Sprintf("%.1f%%", report.FraudRatePct)},
		[]any{"Estimated Savings", report.TotalSavings},
		[]any{}, // Empty row
		[]any{"Risk Tier Breakdown"},
		[]any{"Tier", "Providers"},
	)

	for _, tier := range tierBreakdown(report.Predictions) {
		values = append(values, []any{tier.Tier, tier.Count})
	}

	values = append(values,
		[]any{}, // Empty row
		[]any{"Predictions"},
		[]any{"Provider", "Verdict", "Fraud Probability", "Risk Tier"},
	)

	for _, row := range predictionRows(report.Predictions) {
		values = append(values, []any{
			row.Provider,
			row.Verdict,
			fmt.Sprintf("%.2f%%", row.Probability*100),
			row.RiskTier,
		})
	}

	return values
}

// predictionRows maps predictions to display rows sorted by probability
// descending with provider name as the tie-break.
func predictionRows(predictions []model.Prediction) []PredictionRow {
	sorted := make([]model.Prediction, len(predictions))
	copy(sorted, predictions)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ProbabilidadFraude != sorted[j].ProbabilidadFraude {
			return sorted[i].ProbabilidadFraude > sorted[j].ProbabilidadFraude
		}
		return sorted[i].Provider < sorted[j].Provider
	})

	rows := make([]PredictionRow, 0, len(sorted))
	for _, p := range sorted {
		verdict := "No Fraud"
		if p.IsFraud() {
			verdict = "Fraud"
		}
		rows = append(rows, PredictionRow{
			Provider:    p.Provider,
			Verdict:     verdict,
			Probability: p.ProbabilidadFraude,
			RiskTier:    model.RiskTierFor(p.ProbabilidadFraude).String(),
		})
	}
	return rows
}

// prepareProviderSummaryData lays out the provider summary tab: title,
// header, then one row per provider sorted by total reimbursed descending.
func (w *Writer) prepareProviderSummaryData(report *service.FraudReport) [][]any {
	values := make([][]any, 0, 3+len(report.Providers))

	values = append(values,
		[]any{providerSummarySheet, report.GeneratedAt.Format("Jan 2, 2006 15:04")},
		[]any{}, // Empty row
		[]any{"Provider", "Total Reimbursed", "Mean Reimbursed", "Claims", "Unique Beneficiaries"},
	)

	for _, row := range providerSummaryRows(report.Providers) {
		values = append(values, []any{
			row.Provider,
			row.TotalReimbursed,
			row.MeanReimbursed,
			row.ClaimCount,
			row.UniqueBeneficiaries,
		})
	}

	return values
}

// providerSummaryRows maps dashboard aggregates to summary rows sorted by
// total reimbursed descending with provider name as the tie-break.
func providerSummaryRows(providers []model.DashboardRow) []ProviderSummaryRow {
	sorted := make([]model.DashboardRow, len(providers))
	copy(sorted, providers)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].TotalReimbursed != sorted[j].TotalReimbursed {
			return sorted[i].TotalReimbursed > sorted[j].TotalReimbursed
		}
		return sorted[i].Provider < sorted[j].Provider
	})

	rows := make([]ProviderSummaryRow, 0, len(sorted))
	for _, d := range sorted {
		rows = append(rows, ProviderSummaryRow{
			Provider:            d.Provider,
			TotalReimbursed:     d.TotalReimbursed,
			MeanReimbursed:      d.MeanReimbursed,
			ClaimCount:          d.ClaimCount,
			UniqueBeneficiaries: d.UniqueBeneficiaries,
		})
	}
	return rows
}

// tierBreakdown counts predictions per risk tier in display order.
func tierBreakdown(predictions []model.Prediction) []TierSummaryRow {
	counts := make(map[model.RiskTier]int)
	for _, p := range predictions {
		counts[model.RiskTierFor(p.ProbabilidadFraude)]++
	}
	tiers := []model.RiskTier{model.RiskHigh, model.RiskMedium, model.RiskLow}
	rows := make([]TierSummaryRow, 0, len(tiers))
	for _, tier := range tiers {
		rows = append(rows, TierSummaryRow{Tier: tier.String(), Count: counts[tier]})
	}
	return rows
}

// writeData writes the data to the named sheet; an empty sheet name targets
// the spreadsheet's first sheet.
func (w *Writer) writeData(ctx context.Context, spreadsheetID, sheet string, values [][]any) error {
	// Write in batches to avoid API limits.
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := i + w.config.BatchSize
		if end > len(values) {
			end = len(values)
		}

		batch := values[i:end]
		valueRange := &sheets.ValueRange{
			Values: batch,
		}

		rangeStr := fmt.Sprintf("A%d", i+1)
		if sheet != "" {
			rangeStr = fmt.Sprintf("'%s'!A%d", sheet, i+1)
		}
		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, rangeStr, valueRange).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "start_row", i+1, "rows", len(batch))
	}

	return nil
}

// applyFormatting applies formatting to the spreadsheet.
func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, totalRows int) error {
	requests := []*sheets.Request{
		// Title row
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          0,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   2,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{
							Bold:     true,
							FontSize: 16,
						},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		// Section headers
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          0,
					StartRowIndex:    2,
					EndRowIndex:      int64(totalRows),
					StartColumnIndex: 0,
					EndColumnIndex:   1,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{
							Bold: true,
						},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		// Auto-resize columns
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    0,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   4,
				},
			},
		},
		// Freeze header rows
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId: 0,
					GridProperties: &sheets.GridProperties{
						FrozenRowCount: 2,
					},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}

	batchUpdate := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}

	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, batchUpdate).Context(ctx).Do()
	return err
}
