package intent

import (
	"strings"
)

// ResponseMode is how the assistant should answer.
type ResponseMode string

const (
	// ModeDirect answers outright.
	ModeDirect ResponseMode = "direct"

	// ModeAssumed answers while stating assumptions for the helpful
	// fields that are missing.
	ModeAssumed ResponseMode = "assumed"

	// ModeAsk asks one bundled clarification question before answering.
	ModeAsk ResponseMode = "ask"
)

// directConfidence is the floor above which a gap-free label is
// answered directly.
const directConfidence = 0.7

// Plan is the strategy selector output.
type Plan struct {
	Mode ResponseMode `json:"mode"`

	// Question is set for ModeAsk: all required gaps bundled into a
	// single question.
	Question string `json:"question,omitempty"`

	// Assumptions is set for ModeAssumed, one statement per missing
	// helpful field.
	Assumptions []string `json:"assumptions,omitempty"`
}

// SelectStrategy picks the response mode from confidence and gaps:
// any required gap forces a single bundled question; high confidence
// with no gaps answers directly; anything else answers with stated
// assumptions.
func SelectStrategy(label Label) Plan {
	if required := label.RequiredGaps(); len(required) > 0 {
		return Plan{Mode: ModeAsk, Question: bundleQuestion(required)}
	}

	if label.Confidence >= directConfidence && len(label.Gaps) == 0 {
		return Plan{Mode: ModeDirect}
	}

	var assumptions []string
	for _, g := range label.Gaps {
		assumptions = append(assumptions, "Assuming: "+g.Prompt)
	}
	if len(assumptions) == 0 && label.Confidence >= directConfidence {
		return Plan{Mode: ModeDirect}
	}
	return Plan{Mode: ModeAssumed, Assumptions: assumptions}
}

// bundleQuestion joins the required gap prompts into one question so
// the user is asked exactly once.
func bundleQuestion(gaps []Gap) string {
	if len(gaps) == 1 {
		return gaps[0].Prompt
	}
	parts := make([]string, len(gaps))
	for i, g := range gaps {
		parts[i] = strings.TrimSuffix(g.Prompt, "?")
	}
	return "To help with this I need a few details: " + strings.Join(parts, "; ") + "?"
}
