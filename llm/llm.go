// Package llm wraps the chat completion providers behind a small interface.
package llm

import (
	"context"
	"errors"

	"github.com/Brawl345/forumbot/model"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

var ErrNoAPIKey = errors.New("API not created! No API key configured")

type (
	Message struct {
		Role    Role   `json:"role"`
		Content string `json:"content"`
	}

	CompletionRequest struct {
		Model    string
		Messages []Message
		// Temperature is left to the provider default when nil.
		Temperature *float64
	}

	// Client returns the text of the first choice, or "" when the provider
	// returned no content.
	Client interface {
		Complete(ctx context.Context, req CompletionRequest) (string, error)
	}

	// Provider hands out a client for the current settings.
	Provider interface {
		Client(ctx context.Context, settings model.Settings) (Client, error)
	}
)

func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

func Temperature(t float64) *float64 {
	return &t
}
