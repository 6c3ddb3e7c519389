package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	apperrors "github.com/diogo/gamemaster/internal/errors"
	"github.com/diogo/gamemaster/internal/models"
)

// DefaultAnthropicModel is used when no model is configured
const DefaultAnthropicModel = string(anthropic.ModelClaude3_7SonnetLatest)

// Anthropic streams completions from the Anthropic Messages API
type Anthropic struct {
	client anthropic.Client
	model  string
}

// NewAnthropic creates an Anthropic provider for apiKey
func NewAnthropic(apiKey, model string) (*Anthropic, error) {
	if apiKey == "" {
		return nil, apperrors.NewProviderUnavailableError("anthropic", "ANTHROPIC_API_KEY is not set")
	}
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &Anthropic{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

// Name returns the provider name
func (a *Anthropic) Name() string { return "anthropic" }

// Model returns the model name
func (a *Anthropic) Model() string { return a.model }

// GetCompletion streams the reply for req
func (a *Anthropic) GetCompletion(ctx context.Context, req Request, opts Options) error {
	params, err := a.params(req, opts)
	if err != nil {
		return err
	}

	stream := a.client.Messages.NewStreaming(ctx, params)
	defer stream.Close()

	for stream.Next() {
		event := stream.Current()
		switch ev := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch delta := ev.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if delta.Text != "" {
					emit(opts.OnStreamResult, fragment(delta.Text), nil)
				}
			}
		}
	}

	if err := stream.Err(); err != nil {
		emit(opts.OnStreamResult, nil, apperrors.NewCompletionError(a.Name(), err))
	}
	return nil
}

func (a *Anthropic) params(req Request, opts Options) (anthropic.MessageNewParams, error) {
	system, dialogue := splitSystem(req.Messages)
	if len(dialogue) == 0 {
		return anthropic.MessageNewParams{}, fmt.Errorf("anthropic: request has no user message")
	}

	maxTokens := int64(opts.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = models.DefaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   maxTokens,
		Messages:    anthropicMessages(dialogue),
		Temperature: anthropic.Float(opts.Temperature),
	}
	if len(system) > 0 {
		params.System = []anthropic.TextBlockParam{{Text: strings.Join(system, "\n\n")}}
	}
	return params, nil
}

func anthropicMessages(dialogue []models.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(dialogue))
	for _, m := range dialogue {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == models.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(block))
		} else {
			out = append(out, anthropic.NewUserMessage(block))
		}
	}
	return out
}
