package costs

import (
	"fmt"
	"strings"
	"time"
)

// PendingActualCost is shown in place of an actual cost that billing has not
// reported yet.
const PendingActualCost = "Pending"

// RecordView is a Record rendered for display: fixed-point six-decimal cost
// strings instead of raw floats, and a sentinel for the absent actual cost.
type RecordView struct {
	Model              string `json:"model"`
	InputTokens        int    `json:"input_tokens"`
	OutputTokens       int    `json:"output_tokens"`
	TotalTokens        int    `json:"total_tokens"`
	InputCost          string `json:"input_cost"`
	OutputCost         string `json:"output_cost"`
	TotalEstimatedCost string `json:"total_estimated_cost"`
	ActualCost         string `json:"actual_cost"`
	Timestamp          string `json:"timestamp"`
	Source             string `json:"source"`
}

func newRecordView(rec Record) RecordView {
	actual := PendingActualCost
	if rec.ActualCost != nil {
		actual = formatUSD(*rec.ActualCost)
	}
	return RecordView{
		Model:              rec.Model,
		InputTokens:        rec.InputTokens,
		OutputTokens:       rec.OutputTokens,
		TotalTokens:        rec.TotalTokens,
		InputCost:          formatUSD(rec.InputCost),
		OutputCost:         formatUSD(rec.OutputCost),
		TotalEstimatedCost: formatUSD(rec.TotalEstimatedCost),
		ActualCost:         actual,
		Timestamp:          rec.Timestamp.Format(time.RFC3339),
		Source:             rec.Source,
	}
}

func formatUSD(v float64) string {
	return fmt.Sprintf("$%.6f", v)
}

// Receipt renders one record as a terminal-friendly cost receipt.
func Receipt(rec Record) string {
	actual := PendingActualCost + " (billing lags 24-48h)"
	if rec.ActualCost != nil {
		actual = formatUSD(*rec.ActualCost)
	}

	var b strings.Builder
	b.WriteString("COST RECEIPT\n")
	b.WriteString(strings.Repeat("-", 48) + "\n")
	fmt.Fprintf(&b, "%-16s %s\n", "Model:", rec.Model)
	fmt.Fprintf(&b, "%-16s %s\n", "Timestamp:", rec.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "%-16s %d in / %d out / %d total\n", "Tokens:", rec.InputTokens, rec.OutputTokens, rec.TotalTokens)
	fmt.Fprintf(&b, "%-16s %s\n", "Input cost:", formatUSD(rec.InputCost))
	fmt.Fprintf(&b, "%-16s %s\n", "Output cost:", formatUSD(rec.OutputCost))
	fmt.Fprintf(&b, "%-16s %s\n", "Estimated:", formatUSD(rec.TotalEstimatedCost))
	fmt.Fprintf(&b, "%-16s %s\n", "Actual:", actual)
	b.WriteString(strings.Repeat("-", 48) + "\n")
	fmt.Fprintf(&b, "Source: %s\n", rec.Source)
	return b.String()
}
