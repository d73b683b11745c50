// Package pricing resolves model names to per-1K-token rates loaded from a
// YAML price table, with a built-in default table when no file exists.
package pricing

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultModel is the fallback entry used when a requested model matches
// nothing in the table.
const DefaultModel = "gpt-5-mini"

// Rates holds the per-1K-token prices for one model.
type Rates struct {
	InputPer1K  float64 `yaml:"input_per_1k_tokens" json:"input_per_1k_tokens"`
	OutputPer1K float64 `yaml:"output_per_1k_tokens" json:"output_per_1k_tokens"`
}

// Table is an immutable price table. Key order follows the source document
// because substring-match ties resolve to the first loaded key.
type Table struct {
	order      []string
	rates      map[string]Rates
	disclaimer string
}

// Disclaimer returns the table's provenance note, recorded on every cost
// record produced from it.
func (t *Table) Disclaimer() string { return t.disclaimer }

// Models returns the model names in load order.
func (t *Table) Models() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Rates returns the rate pair for an exact table key.
func (t *Table) Rates(model string) (Rates, bool) {
	r, ok := t.rates[model]
	return r, ok
}

// Resolve maps a free-form model name to a rate pair. Matching is
// case-insensitive: exact key match first, then a substring pass where the
// first key (in load order) contained in the requested name wins. Unknown
// models fall back to DefaultModel's rates, and to zero rates if even that
// entry is absent. Resolve never fails; missing data degrades to zero cost.
func (t *Table) Resolve(model string) (inputRate, outputRate float64) {
	name := strings.ToLower(model)

	for _, key := range t.order {
		if strings.ToLower(key) == name {
			r := t.rates[key]
			return r.InputPer1K, r.OutputPer1K
		}
	}

	for _, key := range t.order {
		if strings.Contains(name, strings.ToLower(key)) {
			r := t.rates[key]
			return r.InputPer1K, r.OutputPer1K
		}
	}

	if r, ok := t.rates[DefaultModel]; ok {
		return r.InputPer1K, r.OutputPer1K
	}
	return 0, 0
}

// document is the on-disk shape of a price table. Models is kept as a raw
// node so mapping key order survives decoding.
type document struct {
	Models   yaml.Node `yaml:"models"`
	Metadata struct {
		Disclaimer string `yaml:"disclaimer"`
	} `yaml:"metadata"`
}

// Load reads a price table from path. A missing file is not an error: the
// built-in default table is returned instead. A file that exists but cannot
// be read or parsed, or that carries a negative rate, is an error.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read price table: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse price table: %w", err)
	}

	t := &Table{
		rates:      make(map[string]Rates),
		disclaimer: doc.Metadata.Disclaimer,
	}
	if t.disclaimer == "" {
		t.disclaimer = defaultDisclaimer
	}

	if doc.Models.Kind != 0 {
		if doc.Models.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("parse price table: models is not a mapping")
		}
		// Mapping nodes alternate key, value in Content.
		for i := 0; i+1 < len(doc.Models.Content); i += 2 {
			keyNode, valNode := doc.Models.Content[i], doc.Models.Content[i+1]
			var r Rates
			if err := valNode.Decode(&r); err != nil {
				return nil, fmt.Errorf("parse price table: model %q: %w", keyNode.Value, err)
			}
			if r.InputPer1K < 0 || r.OutputPer1K < 0 {
				return nil, fmt.Errorf("parse price table: model %q has a negative rate", keyNode.Value)
			}
			t.order = append(t.order, keyNode.Value)
			t.rates[keyNode.Value] = r
		}
	}

	return t, nil
}

const defaultDisclaimer = "Demo estimates - actual costs may vary"

// Default returns the built-in three-model table used when no price file is
// deployed alongside the app.
func Default() *Table {
	return &Table{
		order: []string{"gpt-5-mini", "gpt-5.2", "gpt-realtime"},
		rates: map[string]Rates{
			"gpt-5-mini":   {InputPer1K: 0.00015, OutputPer1K: 0.0006},
			"gpt-5.2":      {InputPer1K: 0.0025, OutputPer1K: 0.01},
			"gpt-realtime": {InputPer1K: 0.06, OutputPer1K: 0.24},
		},
		disclaimer: defaultDisclaimer,
	}
}
