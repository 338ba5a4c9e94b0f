// Package llm dispatches chat-style conversations to language-model providers
// with ordered fallback. Each provider translates the abstract conversation
// into its own wire shape; callers only see Generate.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Role identifies the author of a conversation message.
type Role string

// Conversation roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation. The role ordering is caller-defined.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Client is the capability interface every provider implements.
type Client interface {
	// Name identifies the provider in errors and logs.
	Name() string
	// Generate produces one completion for the conversation.
	Generate(ctx context.Context, messages []Message) (string, error)
}

// System builds a system message.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// User builds a user message.
func User(content string) Message { return Message{Role: RoleUser, Content: content} }

// Assistant builds an assistant message.
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// validateMessages rejects conversations that cannot be dispatched.
func validateMessages(messages []Message) error {
	if len(messages) == 0 {
		return fmt.Errorf("empty conversation")
	}
	for i, m := range messages {
		if strings.TrimSpace(m.Content) == "" {
			return fmt.Errorf("message %d has empty content", i)
		}
	}
	return nil
}

// flattenMessages renders a conversation as a single prompt string with role
// markers, ending with an open assistant turn. Used by providers that accept
// one prompt instead of a message list.
func flattenMessages(messages []Message) string {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		content := strings.TrimSpace(m.Content)
		switch m.Role {
		case RoleSystem:
			parts = append(parts, "SYSTEM:\n"+content)
		case RoleAssistant:
			parts = append(parts, "ASSISTANT:\n"+content)
		default:
			parts = append(parts, "USER:\n"+content)
		}
	}
	return strings.Join(parts, "\n\n") + "\n\nASSISTANT:\n"
}
