package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"fraudscope/internal/cli"
	"fraudscope/internal/model"
	"fraudscope/internal/viewmodel"
)

// View renders the current state.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case StateDashboard:
		return m.dashboardView()
	case StateDetail:
		return m.detailView()
	case StateHelp:
		return m.helpView()
	default:
		return m.resultsView()
	}
}

func (m Model) resultsView() string {
	var b strings.Builder

	b.WriteString(cli.FormatTitle("Fraud Detection Results"))
	b.WriteString("\n\n")

	if m.searching {
		b.WriteString(cli.FormatPrompt("Search"))
		b.WriteString(m.searchInput.View())
		b.WriteString("\n\n")
	} else if query := m.searchInput.Value(); query != "" {
		b.WriteString(cli.SubtleStyle.Render(fmt.Sprintf("Filter: %q (Esc in search to clear)", query)))
		b.WriteString("\n\n")
	}

	page := m.currentPage()
	if len(page) == 0 {
		b.WriteString(cli.StyleInfo("No predictions match."))
		b.WriteString("\n")
		return b.String()
	}

	header := fmt.Sprintf("  %-20s %-12s %-14s %s", "Provider", "Verdict", "Probability", "Risk Tier")
	b.WriteString(cli.TableHeaderStyle.Render(header))
	b.WriteString("\n")

	for i, p := range page {
		cursor := "  "
		if i == m.cursor {
			cursor = cli.PromptStyle.Render("> ")
		}
		verdict := "No Fraud"
		if p.IsFraud() {
			verdict = "Fraud"
		}
		row := fmt.Sprintf("%-20s %-12s %-14s", p.Provider, verdict, fmt.Sprintf("%.2f%%", p.ProbabilidadFraude*100))
		b.WriteString(cursor + row + cli.FormatRiskTier(model.RiskTierFor(p.ProbabilidadFraude)))
		b.WriteString("\n")
	}

	totalPages := viewmodel.TotalPages(len(m.filtered))
	b.WriteString("\n")
	b.WriteString(cli.SubtleStyle.Render(fmt.Sprintf("Page %d/%d · %d providers", m.page, totalPages, len(m.filtered))))
	b.WriteString("\n")
	b.WriteString(m.footer("Enter details · Tab dashboard · / search · ? help · q quit"))

	return b.String()
}

func (m Model) dashboardView() string {
	var b strings.Builder

	b.WriteString(cli.FormatTitle("Provider Dashboard"))
	b.WriteString("\n\n")

	if m.dashboardLoading {
		b.WriteString(cli.StyleInfo("Loading dashboard data..."))
		b.WriteString("\n")
		return b.String()
	}
	if m.dashboardErr != nil {
		b.WriteString(cli.FormatError(m.dashboardErr.Error()))
		b.WriteString("\n")
		b.WriteString(m.footer("r retry · Tab results · q quit"))
		return b.String()
	}

	agg := viewmodel.Aggregate(m.predictions, m.dashboard)
	summary := fmt.Sprintf("Providers: %d   Flagged: %d   Fraud rate: %.1f%%   Est. savings: $%.2f",
		agg.TotalProviders, agg.FraudCount, agg.FraudRatePct, agg.TotalSavings)
	b.WriteString(cli.RenderBox("Summary", summary))
	b.WriteString("\n\n")

	n := m.topN()
	b.WriteString(cli.BoldStyle.Render(fmt.Sprintf("Top %d by %s", n, m.sortKey.Label())))
	b.WriteString("\n")

	ranked := viewmodel.RankProviders(m.dashboard, m.predictions, m.sortKey, n)
	for i, r := range ranked {
		line := fmt.Sprintf("%2d. %-20s $%-14.2f claims=%-6d beneficiaries=%d",
			i+1, r.Row.Provider, r.Row.TotalReimbursed, r.Row.ClaimCount, r.Row.UniqueBeneficiaries)
		if r.Prediction != nil && r.Prediction.IsFraud() {
			line += "  " + cli.FormatRiskTier(model.RiskTierFor(r.Prediction.ProbabilidadFraude))
		}
		if r.Row.Synthesized {
			line += "  " + cli.SubtleStyle.Render("(synthesized)")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.footer("t cycle top N · s cycle sort · Tab results · q quit"))
	return b.String()
}

func (m Model) detailView() string {
	var b strings.Builder

	b.WriteString(cli.FormatTitle("Provider " + m.detail.provider))
	b.WriteString("\n\n")

	left := m.detailsPanelView()
	right := m.comparePanelView()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right))
	b.WriteString("\n")
	b.WriteString(m.footer("Esc back · q quit"))
	return b.String()
}

func (m Model) detailsPanelView() string {
	if m.detail.detailsLoading {
		return cli.RenderBox("Details", cli.StyleInfo("Loading..."))
	}
	if m.detail.detailsErr != nil {
		return cli.RenderBox("Details", cli.StyleError(m.detail.detailsErr.Error()))
	}

	d := m.detail.details
	var rows []string
	rows = append(rows,
		fmt.Sprintf("Total reimbursed:  $%.2f", d.TotalReimbursed),
		fmt.Sprintf("Mean reimbursed:   $%.2f", d.MeanReimbursed),
		fmt.Sprintf("Claims:            %d", d.ClaimCount),
		fmt.Sprintf("Beneficiaries:     %d", d.UniqueBeneficiaries),
		fmt.Sprintf("Avg age:           %.1f", d.AvgAge),
		fmt.Sprintf("Male:              %.0f%%", d.PctMale*100),
		"",
		cli.BoldStyle.Render("Chronic conditions"),
	)
	for _, c := range d.ChronicConditions() {
		rows = append(rows, fmt.Sprintf("%-22s %.0f%%", c.Name, c.Value*100))
	}
	return cli.RenderBox("Details", strings.Join(rows, "\n"))
}

func (m Model) comparePanelView() string {
	if m.detail.compareLoading {
		return cli.RenderBox("Explanations", cli.StyleInfo("Loading..."))
	}
	if m.detail.compareErr != nil {
		return cli.RenderBox("Explanations", cli.StyleError(m.detail.compareErr.Error()))
	}

	var rows []string
	rows = append(rows, cli.BoldStyle.Render("SHAP"))
	rows = append(rows, contributionLines(m.detail.compared.Shap)...)
	rows = append(rows, "", cli.BoldStyle.Render("LIME"))
	rows = append(rows, contributionLines(m.detail.compared.Lime)...)
	return cli.RenderBox("Explanations", strings.Join(rows, "\n"))
}

func contributionLines(explanation model.Explanation) []string {
	lines := make([]string, 0, len(explanation.Contributions))
	for _, c := range explanation.Contributions {
		sign := "+"
		style := cli.ErrorStyle
		if c.Impact == model.ImpactNegative {
			sign = "-"
			style = cli.SuccessStyle
		}
		lines = append(lines, fmt.Sprintf("%-22s %s", c.Feature, style.Render(fmt.Sprintf("%s%.4f", sign, abs(c.Weight)))))
	}
	if len(lines) == 0 {
		lines = append(lines, cli.SubtleStyle.Render("no contributions"))
	}
	return lines
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func (m Model) helpView() string {
	var b strings.Builder
	b.WriteString(cli.FormatTitle("Help"))
	b.WriteString("\n\n")

	bindings := []struct{ keys, desc string }{
		{"↑/k ↓/j", "move cursor"},
		{"←/h →/l", "change page"},
		{"Enter", "open provider details"},
		{"Tab", "toggle results/dashboard"},
		{"/", "search by provider name"},
		{"s", "cycle dashboard sort key"},
		{"t", "cycle top N"},
		{"r", "refresh dashboard data"},
		{"Esc", "back"},
		{"q / Ctrl+C", "quit"},
	}
	for _, binding := range bindings {
		b.WriteString(fmt.Sprintf("  %-12s %s\n", cli.BoldStyle.Render(binding.keys), binding.desc))
	}

	b.WriteString("\n")
	b.WriteString(m.footer("? close help"))
	return b.String()
}

func (m Model) footer(hint string) string {
	return cli.SubtleStyle.Render(hint)
}
