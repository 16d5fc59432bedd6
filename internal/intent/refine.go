package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/termai/termai/internal/llm"
	"github.com/termai/termai/internal/logger"
	"github.com/termai/termai/internal/patterns"
	"github.com/termai/termai/internal/probe"
)

// refineTimeout bounds the single refinement round trip so an
// unavailable provider can never stall classification.
const refineTimeout = 10 * time.Second

const refineSystemPrompt = `You classify terminal user requests. ` +
	`Reply with a single JSON object {"category": "...", "confidence": 0.0, "signals": ["..."]} and nothing else. ` +
	`Valid categories: installation, configuration, build, runtime, network, permissions, git, docker, deployment, how-to, optimization, debugging, unknown.`

type refineReply struct {
	Category   string   `json:"category"`
	Confidence float64  `json:"confidence"`
	Signals    []string `json:"signals"`
}

// refine asks the bound capability for a second opinion. The
// pattern-matched label is retained on any failure or on a category
// outside the closed set.
func (c *Classifier) refine(ctx context.Context, utterance string, snap *probe.Snapshot, current Label) (Label, bool) {
	ctx, cancel := context.WithTimeout(ctx, refineTimeout)
	defer cancel()

	reply, err := c.capability.Chat(ctx, llm.UserMessage(refinePrompt(utterance, snap)), refineSystemPrompt)
	if err != nil {
		logger.Debug(ctx, "Intent refinement unavailable", "err", err)
		return Label{}, false
	}

	parsed, err := parseRefineReply(reply)
	if err != nil {
		logger.Debug(ctx, "Intent refinement reply unparseable", "err", err)
		return Label{}, false
	}

	cat := patterns.Category(parsed.Category)
	if !cat.Valid() || cat == patterns.CategoryUnknown {
		return Label{}, false
	}

	confidence := parsed.Confidence
	if confidence < 0 || confidence > 1 {
		confidence = current.Confidence
	}

	refined := Label{
		Category:   cat,
		Confidence: confidence,
		Signals:    append(parsed.Signals, "llm-refined"),
		Refined:    true,
	}
	logLabel(ctx, "Intent refined", refined)
	return refined, true
}

// refinePrompt bundles the utterance with the most useful snapshot
// facts into one structured prompt.
func refinePrompt(utterance string, snap *probe.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Request: %s\n", utterance)

	if snap != nil {
		if snap.Project.Kind != "" && snap.Project.Kind != patterns.ProjectNone {
			fmt.Fprintf(&b, "Project kind: %s\n", snap.Project.Kind)
		}
		for i, e := range snap.State.RecentErrors {
			if i >= 3 {
				break
			}
			fmt.Fprintf(&b, "Recent error: %s\n", firstN(e.Message, 300))
		}
		for i, cmd := range snap.State.RecentCommands {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "Recent command: %s (exit %d)\n", cmd.Command, cmd.ExitCode)
		}
	}
	return b.String()
}

// parseRefineReply extracts the first JSON object from the reply,
// tolerating fencing and prose around it.
func parseRefineReply(reply string) (refineReply, error) {
	var parsed refineReply
	start := strings.IndexByte(reply, '{')
	end := strings.LastIndexByte(reply, '}')
	if start < 0 || end <= start {
		return parsed, fmt.Errorf("no JSON object in reply")
	}
	if err := json.Unmarshal([]byte(reply[start:end+1]), &parsed); err != nil {
		return parsed, err
	}
	return parsed, nil
}

func firstN(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
