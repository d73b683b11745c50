// Package costs implements the two-track cost model for completion calls:
// an instant token-based estimate recorded per request, and a placeholder
// for the authoritative billing figure that arrives later, if ever.
package costs

import (
	"sync"
	"time"

	"github.com/clinsight-ai/clinsight/pkg/pricing"
)

// Record is the priced outcome of one completion call. TotalTokens and
// TotalEstimatedCost are always the exact sums of their parts; rounding
// happens only when a record is rendered for display.
type Record struct {
	Model              string    `json:"model"`
	InputTokens        int       `json:"input_tokens"`
	OutputTokens       int       `json:"output_tokens"`
	TotalTokens        int       `json:"total_tokens"`
	InputCost          float64   `json:"input_cost"`
	OutputCost         float64   `json:"output_cost"`
	TotalEstimatedCost float64   `json:"total_estimated_cost"`
	ActualCost         *float64  `json:"actual_cost,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
	Source             string    `json:"source"`
}

// Summary aggregates the session ledger at one point in time.
type Summary struct {
	RequestCount       int                     `json:"request_count"`
	TotalInputTokens   int                     `json:"total_input_tokens"`
	TotalOutputTokens  int                     `json:"total_output_tokens"`
	TotalTokens        int                     `json:"total_tokens"`
	TotalEstimatedCost float64                 `json:"total_estimated_cost"`
	// TotalActualCost is nil when the actual-cost sum is exactly zero, which
	// conflates "no billing data yet" with "billed at zero". ActualCount
	// carries the record count so callers can tell the two apart.
	TotalActualCost *float64                `json:"total_actual_cost"`
	ActualCount     int                     `json:"actual_cost_records"`
	CostsByModel    map[string]ModelSummary `json:"costs_by_model"`
}

// ModelSummary groups ledger totals under the model string the caller sent.
// Casing is preserved: "gpt-5-mini" and "GPT-5-Mini" are separate keys.
type ModelSummary struct {
	Requests      int     `json:"requests"`
	Tokens        int     `json:"tokens"`
	EstimatedCost float64 `json:"estimated_cost"`
}

// Calculator prices completion calls against a price table and keeps an
// append-only session ledger of the results. It is safe for concurrent use;
// one instance is expected per user session.
type Calculator struct {
	mu     sync.Mutex
	table  *pricing.Table
	ledger []Record
}

// New creates a Calculator over an already-loaded price table.
func New(table *pricing.Table) *Calculator {
	return &Calculator{table: table}
}

// Calculate prices one call and appends the record to the session ledger.
// Negative token counts are a caller bug; they are clamped to zero so the
// ledger never holds a negative quantity.
func (c *Calculator) Calculate(model string, inputTokens, outputTokens int) Record {
	if inputTokens < 0 {
		inputTokens = 0
	}
	if outputTokens < 0 {
		outputTokens = 0
	}

	inputRate, outputRate := c.table.Resolve(model)
	inputCost := float64(inputTokens) / 1000 * inputRate
	outputCost := float64(outputTokens) / 1000 * outputRate

	rec := Record{
		Model:              model,
		InputTokens:        inputTokens,
		OutputTokens:       outputTokens,
		TotalTokens:        inputTokens + outputTokens,
		InputCost:          inputCost,
		OutputCost:         outputCost,
		TotalEstimatedCost: inputCost + outputCost,
		Timestamp:          time.Now().UTC(),
		Source:             c.table.Disclaimer(),
	}

	c.mu.Lock()
	c.ledger = append(c.ledger, rec)
	c.mu.Unlock()

	return rec
}

// SessionTotal aggregates the full ledger as of the call. Nothing is cached;
// two calls with no intervening writes return identical summaries.
func (c *Calculator) SessionTotal() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Summary{CostsByModel: make(map[string]ModelSummary)}
	var actualSum float64

	for _, rec := range c.ledger {
		s.RequestCount++
		s.TotalInputTokens += rec.InputTokens
		s.TotalOutputTokens += rec.OutputTokens
		s.TotalEstimatedCost += rec.TotalEstimatedCost

		if rec.ActualCost != nil {
			actualSum += *rec.ActualCost
			s.ActualCount++
		}

		m := s.CostsByModel[rec.Model]
		m.Requests++
		m.Tokens += rec.TotalTokens
		m.EstimatedCost += rec.TotalEstimatedCost
		s.CostsByModel[rec.Model] = m
	}

	s.TotalTokens = s.TotalInputTokens + s.TotalOutputTokens
	if actualSum > 0 {
		s.TotalActualCost = &actualSum
	}
	return s
}

// ClearSession empties the ledger. Irreversible; the calculator stays usable.
func (c *Calculator) ClearSession() {
	c.mu.Lock()
	c.ledger = nil
	c.mu.Unlock()
}

// History returns the ledger in append order, rendered for display.
func (c *Calculator) History() []RecordView {
	c.mu.Lock()
	defer c.mu.Unlock()

	views := make([]RecordView, 0, len(c.ledger))
	for _, rec := range c.ledger {
		views = append(views, newRecordView(rec))
	}
	return views
}
