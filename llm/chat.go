package llm

import (
	"context"

	"github.com/Brawl345/forumbot/model"
)

// ChatComplete sends a conversation with the configured system prompt prepended.
func ChatComplete(ctx context.Context, client Client, settings model.Settings, conversation ...Message) (string, error) {
	if client == nil {
		return "", ErrNoAPIKey
	}

	messages := make([]Message, 0, len(conversation)+1)
	if settings.SystemPrompt != "" {
		messages = append(messages, SystemMessage(settings.SystemPrompt))
	}
	messages = append(messages, conversation...)

	return client.Complete(ctx, CompletionRequest{
		Model:    settings.Model,
		Messages: messages,
	})
}

func ChatCompleteText(ctx context.Context, client Client, settings model.Settings, text string) (string, error) {
	return ChatComplete(ctx, client, settings, UserMessage(text))
}
