package llm

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/Brawl345/forumbot/model"
)

type recordingClient struct {
	requests []CompletionRequest
	response string
}

func (c *recordingClient) Complete(_ context.Context, req CompletionRequest) (string, error) {
	c.requests = append(c.requests, req)
	return c.response, nil
}

func TestChatComplete_PrependsSystemPrompt(t *testing.T) {
	t.Parallel()

	client := &recordingClient{response: "hi"}
	settings := model.DefaultSettings()

	got, err := ChatCompleteText(context.Background(), client, settings, "hello")
	if err != nil {
		t.Fatalf("ChatCompleteText: %v", err)
	}
	if got != "hi" {
		t.Fatalf("got=%q", got)
	}

	req := client.requests[0]
	if req.Model != model.DefaultModel {
		t.Fatalf("Model=%q", req.Model)
	}
	if req.Temperature != nil {
		t.Fatalf("Temperature=%v", *req.Temperature)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("len(Messages)=%d", len(req.Messages))
	}
	if req.Messages[0] != SystemMessage(model.DefaultSystemPrompt) {
		t.Fatalf("Messages[0]=%+v", req.Messages[0])
	}
	if req.Messages[1] != UserMessage("hello") {
		t.Fatalf("Messages[1]=%+v", req.Messages[1])
	}
}

func TestChatComplete_EmptySystemPrompt(t *testing.T) {
	t.Parallel()

	client := &recordingClient{}
	settings := model.DefaultSettings()
	settings.SystemPrompt = ""

	_, err := ChatComplete(context.Background(), client, settings,
		UserMessage("a"), AssistantMessage("b"), UserMessage("c"))
	if err != nil {
		t.Fatalf("ChatComplete: %v", err)
	}

	msgs := client.requests[0].Messages
	if len(msgs) != 3 || msgs[0].Role != RoleUser || msgs[1].Role != RoleAssistant {
		t.Fatalf("Messages=%+v", msgs)
	}
}

func TestChatComplete_NilClient(t *testing.T) {
	t.Parallel()

	_, err := ChatCompleteText(context.Background(), nil, model.DefaultSettings(), "x")
	if !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("err=%v", err)
	}
}

func TestFactory_NoAPIKey(t *testing.T) {
	t.Parallel()

	_, err := NewFactory().Client(context.Background(), model.DefaultSettings())
	if !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("err=%v", err)
	}
}

func TestFactory_RebuildsOnChange(t *testing.T) {
	t.Parallel()

	var builds atomic.Int32
	builder := func(_ context.Context, apiKey string) (Client, error) {
		builds.Add(1)
		return &recordingClient{response: apiKey}, nil
	}
	factory := NewFactory().
		WithBuilder(model.ProviderOpenAI, builder).
		WithBuilder(model.ProviderGemini, builder)

	settings := model.DefaultSettings()
	settings.APIKey = "key-1"

	first, err := factory.Client(context.Background(), settings)
	if err != nil {
		t.Fatalf("Client: %v", err)
	}
	second, _ := factory.Client(context.Background(), settings)
	if first != second || builds.Load() != 1 {
		t.Fatalf("expected cached client, builds=%d", builds.Load())
	}

	settings.APIKey = "key-2"
	if _, err := factory.Client(context.Background(), settings); err != nil {
		t.Fatalf("Client: %v", err)
	}
	if builds.Load() != 2 {
		t.Fatalf("builds=%d after key change", builds.Load())
	}

	settings.Provider = model.ProviderGemini
	if _, err := factory.Client(context.Background(), settings); err != nil {
		t.Fatalf("Client: %v", err)
	}
	if builds.Load() != 3 {
		t.Fatalf("builds=%d after provider change", builds.Load())
	}
}

func TestFactory_UnknownProvider(t *testing.T) {
	t.Parallel()

	settings := model.DefaultSettings()
	settings.APIKey = "key"
	settings.Provider = "mistral"

	if _, err := NewFactory().Client(context.Background(), settings); err == nil {
		t.Fatalf("expected error")
	}
}
