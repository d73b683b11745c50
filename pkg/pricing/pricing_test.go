package pricing

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prices.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	tbl, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	in, out := tbl.Resolve("gpt-5-mini")
	if in != 0.00015 || out != 0.0006 {
		t.Errorf("expected default gpt-5-mini rates, got (%v, %v)", in, out)
	}
	if tbl.Disclaimer() == "" {
		t.Error("expected a disclaimer on the default table")
	}
}

func TestLoadMalformed(t *testing.T) {
	path := writeTable(t, "models: [not, a, mapping]")
	if _, err := Load(path); err == nil {
		t.Error("expected error for non-mapping models")
	}

	path = writeTable(t, ":\n  - garbage: [")
	if _, err := Load(path); err == nil {
		t.Error("expected error for unparsable YAML")
	}
}

func TestLoadNegativeRate(t *testing.T) {
	path := writeTable(t, `
models:
  gpt-5-mini:
    input_per_1k_tokens: -0.1
    output_per_1k_tokens: 0.0006
`)
	if _, err := Load(path); err == nil {
		t.Error("expected error for negative rate")
	}
}

func TestLoadPreservesOrder(t *testing.T) {
	path := writeTable(t, `
models:
  gpt-realtime:
    input_per_1k_tokens: 0.06
    output_per_1k_tokens: 0.24
  gpt-5.2:
    input_per_1k_tokens: 0.0025
    output_per_1k_tokens: 0.01
  gpt-5-mini:
    input_per_1k_tokens: 0.00015
    output_per_1k_tokens: 0.0006
metadata:
  disclaimer: "test estimates"
`)
	tbl, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	models := tbl.Models()
	want := []string{"gpt-realtime", "gpt-5.2", "gpt-5-mini"}
	if len(models) != len(want) {
		t.Fatalf("expected %d models, got %d", len(want), len(models))
	}
	for i := range want {
		if models[i] != want[i] {
			t.Errorf("model %d: expected %s, got %s", i, want[i], models[i])
		}
	}
	if tbl.Disclaimer() != "test estimates" {
		t.Errorf("unexpected disclaimer: %s", tbl.Disclaimer())
	}
}

func TestResolve(t *testing.T) {
	tbl := Default()

	tests := []struct {
		name    string
		model   string
		wantIn  float64
		wantOut float64
	}{
		{"exact", "gpt-5-mini", 0.00015, 0.0006},
		{"exact case-insensitive", "GPT-5-MINI", 0.00015, 0.0006},
		{"substring fallback", "gpt-5-mini-preview", 0.00015, 0.0006},
		{"substring other model", "gpt-realtime-2026-01", 0.06, 0.24},
		{"unknown falls back to default model", "totally-unknown-model", 0.00015, 0.0006},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, out := tbl.Resolve(tt.model)
			if in != tt.wantIn || out != tt.wantOut {
				t.Errorf("Resolve(%q) = (%v, %v), want (%v, %v)", tt.model, in, out, tt.wantIn, tt.wantOut)
			}
		})
	}
}

func TestResolveExactBeatsSubstring(t *testing.T) {
	path := writeTable(t, `
models:
  gpt-5:
    input_per_1k_tokens: 0.001
    output_per_1k_tokens: 0.002
  gpt-5-mini:
    input_per_1k_tokens: 0.00015
    output_per_1k_tokens: 0.0006
`)
	tbl, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	// "gpt-5-mini" contains the earlier key "gpt-5", but the exact match
	// must win over the substring pass.
	in, out := tbl.Resolve("GPT-5-Mini")
	if in != 0.00015 || out != 0.0006 {
		t.Errorf("expected exact match rates, got (%v, %v)", in, out)
	}

	// Substring ties go to the first key in document order.
	in, _ = tbl.Resolve("gpt-5-mini-preview")
	if in != 0.001 {
		t.Errorf("expected first-loaded key to win substring tie, got input rate %v", in)
	}
}

func TestResolveNoDefaultEntry(t *testing.T) {
	path := writeTable(t, `
models:
  claude-sonnet:
    input_per_1k_tokens: 0.003
    output_per_1k_tokens: 0.015
`)
	tbl, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	in, out := tbl.Resolve("totally-unknown-model")
	if in != 0 || out != 0 {
		t.Errorf("expected zero rates without a default entry, got (%v, %v)", in, out)
	}
}
