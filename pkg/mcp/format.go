package mcp

import (
	"fmt"
	"strings"

	"github.com/clinsight-ai/clinsight/pkg/models"
)

// formatSummary formats per-model usage as a text table.
func formatSummary(rows []models.InteractionSummary) string {
	if len(rows) == 0 {
		return "No usage data found."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-25s %8s %10s %10s %10s %12s\n",
		"Model", "Requests", "Input", "Output", "Total", "Est. Cost")
	b.WriteString(strings.Repeat("-", 80) + "\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "%-25s %8d %10d %10d %10d %12s\n",
			r.Model, r.RequestCount, r.InputTokens, r.OutputTokens, r.TotalTokens,
			fmt.Sprintf("$%.4f", r.EstimatedCost))
	}
	return b.String()
}

// formatSessions formats sessions as a text table.
func formatSessions(sessions []models.Session) string {
	if len(sessions) == 0 {
		return "No sessions found."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-24s %-20s %-20s %8s %10s %12s\n",
		"Session ID", "Started", "Last Activity", "Requests", "Tokens", "Est. Cost")
	b.WriteString(strings.Repeat("-", 100) + "\n")
	for _, s := range sessions {
		fmt.Fprintf(&b, "%-24s %-20s %-20s %8d %10d %12s\n",
			s.ID,
			s.StartedAt.Format("2006-01-02 15:04:05"),
			s.LastActivity.Format("2006-01-02 15:04:05"),
			s.RequestCount, s.TotalTokens,
			fmt.Sprintf("$%.4f", s.EstimatedCost))
	}
	return b.String()
}

// formatInteractions formats a session's interactions as a text table.
func formatInteractions(interactions []models.Interaction) string {
	if len(interactions) == 0 {
		return "No interactions found for this session."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %-25s %-16s %8s %8s %10s\n",
		"Time", "Model", "Query Type", "Input", "Output", "Est. Cost")
	b.WriteString(strings.Repeat("-", 94) + "\n")
	for _, in := range interactions {
		fmt.Fprintf(&b, "%-20s %-25s %-16s %8d %8d %10s\n",
			in.CreatedAt.Format("2006-01-02 15:04:05"),
			in.Model, in.QueryType, in.InputTokens, in.OutputTokens,
			fmt.Sprintf("$%.4f", in.EstimatedCost))
	}
	return b.String()
}

// formatDailyCosts formats a day's cost roll-up as text.
func formatDailyCosts(summary models.DailyCostSummary) string {
	if summary.Requests == 0 {
		return fmt.Sprintf("No usage recorded on %s.", summary.Date)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Daily costs for %s\n", summary.Date)
	fmt.Fprintf(&b, "  Requests: %d\n  Tokens:   %d\n  Cost:     $%.4f\n\n",
		summary.Requests, summary.TokensUsed, summary.EstimatedCost)
	b.WriteString(formatSummary(summary.ByModel))
	return b.String()
}

// formatSpendStatus formats spend statuses as a text table.
func formatSpendStatus(statuses []models.SpendStatus) string {
	if len(statuses) == 0 {
		return "No spend policies found."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-25s %-8s %10s %10s %10s %6s\n",
		"Model", "Period", "Max USD", "Used", "Remaining", "Usage%")
	b.WriteString(strings.Repeat("-", 75) + "\n")
	for _, s := range statuses {
		model := s.Policy.Model
		if model == "" {
			model = "(all models)"
		}
		pct := float64(0)
		if s.Policy.MaxUSD > 0 {
			pct = s.Used / s.Policy.MaxUSD * 100
		}
		fmt.Fprintf(&b, "%-25s %-8s %10.2f %10.4f %10.4f %5.1f%%\n",
			model, s.Policy.Period, s.Policy.MaxUSD, s.Used, s.Remaining, pct)
	}
	return b.String()
}

// formatCacheStats formats cache stats as text.
func formatCacheStats(stats models.CacheStats) string {
	total := stats.Hits + stats.Misses
	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(stats.Hits) / float64(total) * 100
	}
	return fmt.Sprintf("Cache Statistics\n"+
		"  Entries:  %d\n"+
		"  Hits:     %d\n"+
		"  Misses:   %d\n"+
		"  Hit Rate: %.1f%%\n",
		stats.Entries, stats.Hits, stats.Misses, hitRate)
}

// formatMetrics formats department metrics as a text table.
func formatMetrics(metrics []models.DepartmentMetrics) string {
	if len(metrics) == 0 {
		return "No patient records loaded."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-25s %8s %14s %10s %9s\n",
		"Department", "Patients", "Prophylaxis%", "VTE Events", "VTE Rate")
	b.WriteString(strings.Repeat("-", 72) + "\n")
	for _, m := range metrics {
		fmt.Fprintf(&b, "%-25s %8d %13.1f%% %10d %8.1f%%\n",
			m.Department, m.Patients, m.ProphylaxisRate, m.VTEEvents, m.VTERate)
	}
	return b.String()
}

// formatThresholdCheck formats an alerting pass as text.
func formatThresholdCheck(check models.ThresholdCheck) string {
	if len(check.Alerts) == 0 {
		return fmt.Sprintf("All %d departments meet their clinical goals.", check.DepartmentsChecked)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d alert(s) across %d departments\n\n", len(check.Alerts), check.DepartmentsChecked)
	fmt.Fprintf(&b, "%-25s %-20s %8s %8s %-10s\n",
		"Department", "Metric", "Value", "Goal", "Severity")
	b.WriteString(strings.Repeat("-", 76) + "\n")
	for _, a := range check.Alerts {
		fmt.Fprintf(&b, "%-25s %-20s %7.1f%% %7.1f%% %-10s\n",
			a.Department, a.Metric, a.Value, a.Goal, a.Severity)
	}
	return b.String()
}
