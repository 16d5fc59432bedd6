package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/termai/termai/internal/flow"
	"github.com/termai/termai/internal/llm"
)

const defaultAITimeout = 120 * time.Second

// runAINode sends the interpolated prompt to the configured language
// model capability. When no capability is wired the node fails with
// ErrLLMUnavailable, which continueOnError can absorb like any other
// node failure.
func (e *Engine) runAINode(ctx context.Context, data *flow.AINodeData, prompt string) (*flow.AIResult, error) {
	if e.capability == nil {
		return nil, ErrLLMUnavailable
	}

	cctx, cancel := context.WithTimeout(ctx, defaultAITimeout)
	defer cancel()

	reply, err := e.capability.Chat(cctx, llm.UserMessage(prompt), data.SystemPrompt)
	if err != nil {
		if errors.Is(err, llm.ErrUnavailable) {
			return nil, fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
		}
		return nil, err
	}

	return &flow.AIResult{
		Response: reply,
		Provider: e.capability.Provider(),
		Model:    e.capability.Model(),
	}, nil
}
