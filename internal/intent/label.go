// Package intent classifies user utterances against a fresh
// environment snapshot and decides how the assistant should respond:
// directly, with stated assumptions, or with one bundled clarification
// question. The pattern path is fully deterministic; only the optional
// LLM refinement introduces non-determinism and is flagged on the
// label.
package intent

import (
	"github.com/termai/termai/internal/patterns"
)

// Importance ranks a missing field.
type Importance string

const (
	ImportanceRequired Importance = "required"
	ImportanceHelpful  Importance = "helpful"
)

// Gap is a missing piece of context with its canned question.
type Gap struct {
	Field      patterns.Field `json:"field"`
	Importance Importance     `json:"importance"`
	Prompt     string         `json:"prompt"`
}

// Label is the classifier output.
type Label struct {
	Category   patterns.Category `json:"category"`
	Confidence float64           `json:"confidence"`

	// Signals cites the rules that fired, for explainability.
	Signals []string `json:"signals,omitempty"`

	// Gaps lists missing fields, required first.
	Gaps []Gap `json:"gaps,omitempty"`

	// Refined is true when the LLM refinement path replaced the
	// pattern-matched category.
	Refined bool `json:"refined,omitempty"`
}

// RequiredGaps returns only the required gaps, preserving order.
func (l Label) RequiredGaps() []Gap {
	var out []Gap
	for _, g := range l.Gaps {
		if g.Importance == ImportanceRequired {
			out = append(out, g)
		}
	}
	return out
}
