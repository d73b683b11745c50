package costs

import (
	"strings"
	"testing"

	"github.com/clinsight-ai/clinsight/pkg/pricing"
)

func TestCalculateKnownRates(t *testing.T) {
	calc := New(pricing.Default())

	// gpt-5-mini: 0.00015 in / 0.0006 out per 1K tokens.
	rec := calc.Calculate("gpt-5-mini", 1000, 500)

	if rec.InputCost != 0.00015 {
		t.Errorf("input cost: expected 0.00015, got %v", rec.InputCost)
	}
	if rec.OutputCost != 0.0003 {
		t.Errorf("output cost: expected 0.0003, got %v", rec.OutputCost)
	}
	if rec.TotalEstimatedCost != 0.00045 {
		t.Errorf("total cost: expected 0.00045, got %v", rec.TotalEstimatedCost)
	}
	if rec.TotalTokens != 1500 {
		t.Errorf("total tokens: expected 1500, got %d", rec.TotalTokens)
	}
	if rec.ActualCost != nil {
		t.Error("actual cost must be absent at creation")
	}
	if rec.Source == "" {
		t.Error("expected disclaimer as record source")
	}
}

func TestCalculateInvariants(t *testing.T) {
	calc := New(pricing.Default())

	tests := []struct {
		model string
		in    int
		out   int
	}{
		{"gpt-5-mini", 0, 0},
		{"gpt-5.2", 12345, 678},
		{"gpt-realtime", 1, 999999},
		{"totally-unknown-model", 250, 250},
	}

	for _, tt := range tests {
		rec := calc.Calculate(tt.model, tt.in, tt.out)
		if rec.TotalTokens != tt.in+tt.out {
			t.Errorf("%s: total tokens %d != %d + %d", tt.model, rec.TotalTokens, tt.in, tt.out)
		}
		if rec.TotalEstimatedCost != rec.InputCost+rec.OutputCost {
			t.Errorf("%s: total cost %v != %v + %v", tt.model, rec.TotalEstimatedCost, rec.InputCost, rec.OutputCost)
		}
	}
}

func TestCalculateClampsNegativeTokens(t *testing.T) {
	calc := New(pricing.Default())
	rec := calc.Calculate("gpt-5-mini", -100, -5)
	if rec.InputTokens != 0 || rec.OutputTokens != 0 || rec.TotalTokens != 0 {
		t.Errorf("expected zeroed tokens, got %d/%d/%d", rec.InputTokens, rec.OutputTokens, rec.TotalTokens)
	}
	if rec.TotalEstimatedCost != 0 {
		t.Errorf("expected zero cost, got %v", rec.TotalEstimatedCost)
	}
}

func TestSessionTotal(t *testing.T) {
	calc := New(pricing.Default())

	calc.Calculate("gpt-5-mini", 1000, 500)
	calc.Calculate("gpt-5-mini", 2000, 1000)
	calc.Calculate("GPT-5-Mini", 100, 50)

	s := calc.SessionTotal()
	if s.RequestCount != 3 {
		t.Errorf("expected 3 requests, got %d", s.RequestCount)
	}
	if s.TotalInputTokens != 3100 {
		t.Errorf("expected 3100 input tokens, got %d", s.TotalInputTokens)
	}
	if s.TotalOutputTokens != 1550 {
		t.Errorf("expected 1550 output tokens, got %d", s.TotalOutputTokens)
	}
	if s.TotalTokens != 4650 {
		t.Errorf("expected 4650 total tokens, got %d", s.TotalTokens)
	}

	// Grouping keys preserve caller casing; no merge across casings.
	if len(s.CostsByModel) != 2 {
		t.Fatalf("expected 2 model groups, got %d", len(s.CostsByModel))
	}
	if s.CostsByModel["gpt-5-mini"].Requests != 2 {
		t.Errorf("expected 2 requests for gpt-5-mini, got %d", s.CostsByModel["gpt-5-mini"].Requests)
	}
	if s.CostsByModel["GPT-5-Mini"].Requests != 1 {
		t.Errorf("expected 1 request for GPT-5-Mini, got %d", s.CostsByModel["GPT-5-Mini"].Requests)
	}

	// No record carries an actual cost, so the sum stays unreported.
	if s.TotalActualCost != nil {
		t.Error("expected nil actual cost total")
	}
	if s.ActualCount != 0 {
		t.Errorf("expected 0 actual-cost records, got %d", s.ActualCount)
	}
}

func TestSessionTotalIdempotent(t *testing.T) {
	calc := New(pricing.Default())
	calc.Calculate("gpt-5-mini", 100, 100)

	a := calc.SessionTotal()
	b := calc.SessionTotal()

	if a.RequestCount != b.RequestCount || a.TotalTokens != b.TotalTokens ||
		a.TotalEstimatedCost != b.TotalEstimatedCost {
		t.Errorf("repeated SessionTotal differs: %+v vs %+v", a, b)
	}
}

func TestClearSession(t *testing.T) {
	calc := New(pricing.Default())
	calc.Calculate("gpt-5-mini", 100, 100)
	calc.ClearSession()

	if s := calc.SessionTotal(); s.RequestCount != 0 {
		t.Errorf("expected empty ledger after clear, got %d requests", s.RequestCount)
	}
	if h := calc.History(); len(h) != 0 {
		t.Errorf("expected empty history after clear, got %d entries", len(h))
	}

	// The calculator stays usable after a reset.
	calc.Calculate("gpt-5-mini", 10, 10)
	if s := calc.SessionTotal(); s.RequestCount != 1 {
		t.Errorf("expected 1 request after reuse, got %d", s.RequestCount)
	}
}

func TestHistoryFormatting(t *testing.T) {
	calc := New(pricing.Default())
	calc.Calculate("gpt-5-mini", 1000, 500)

	h := calc.History()
	if len(h) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(h))
	}
	v := h[0]
	if v.InputCost != "$0.000150" {
		t.Errorf("expected $0.000150, got %s", v.InputCost)
	}
	if v.TotalEstimatedCost != "$0.000450" {
		t.Errorf("expected $0.000450, got %s", v.TotalEstimatedCost)
	}
	if v.ActualCost != PendingActualCost {
		t.Errorf("expected %q sentinel, got %s", PendingActualCost, v.ActualCost)
	}
}

func TestHistoryOrder(t *testing.T) {
	calc := New(pricing.Default())
	models := []string{"gpt-5-mini", "gpt-5.2", "gpt-realtime"}
	for _, m := range models {
		calc.Calculate(m, 10, 10)
	}

	h := calc.History()
	for i, m := range models {
		if h[i].Model != m {
			t.Errorf("history[%d]: expected %s, got %s", i, m, h[i].Model)
		}
	}
}

func TestReceipt(t *testing.T) {
	calc := New(pricing.Default())
	rec := calc.Calculate("gpt-5-mini", 1000, 500)

	receipt := Receipt(rec)
	for _, want := range []string{"gpt-5-mini", "$0.000450", PendingActualCost, rec.Source} {
		if !strings.Contains(receipt, want) {
			t.Errorf("receipt missing %q:\n%s", want, receipt)
		}
	}
}
