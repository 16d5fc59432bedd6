// Package llm defines the chat capability consumed by AI workflow nodes
// and the optional classifier refinement path. Concrete provider
// adapters live outside this module; anything that can answer a chat
// request satisfies Capability.
package llm

import (
	"context"
	"errors"
)

// Errors returned by capabilities.
var (
	// ErrUnavailable indicates no provider is bound.
	ErrUnavailable = errors.New("llm: no capability bound")
)

// Role of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Capability is the single obligation an LLM provider has toward the
// core: answer a list of messages, optionally steered by a system
// prompt, with plain text.
type Capability interface {
	// Chat sends the messages and returns the assistant's reply.
	Chat(ctx context.Context, messages []Message, systemPrompt string) (string, error)

	// Provider returns the provider identifier (e.g. "anthropic").
	Provider() string

	// Model returns the model identifier.
	Model() string
}

// UserMessage is a convenience constructor for a single-turn request.
func UserMessage(content string) []Message {
	return []Message{{Role: RoleUser, Content: content}}
}
