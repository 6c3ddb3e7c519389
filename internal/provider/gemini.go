package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	apperrors "github.com/diogo/gamemaster/internal/errors"
	"github.com/diogo/gamemaster/internal/models"
)

// DefaultGeminiModel is used when no model is configured
const DefaultGeminiModel = "gemini-2.5-flash"

// Gemini streams completions from the Google Gemini API
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini provider for apiKey
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, apperrors.NewProviderUnavailableError("gemini", "GEMINI_API_KEY is not set")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

// Name returns the provider name
func (g *Gemini) Name() string { return "gemini" }

// Model returns the model name
func (g *Gemini) Model() string { return g.model }

// Close releases the underlying client
func (g *Gemini) Close() error {
	return g.client.Close()
}

// GetCompletion streams the reply for req
func (g *Gemini) GetCompletion(ctx context.Context, req Request, opts Options) error {
	system, dialogue := splitSystem(req.Messages)
	if len(dialogue) == 0 {
		return fmt.Errorf("gemini: request has no user message")
	}

	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(float32(opts.Temperature))
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	if len(system) > 0 {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(strings.Join(system, "\n\n"))},
		}
	}

	history, last := geminiHistory(dialogue)
	cs := model.StartChat()
	cs.History = history

	iter := cs.SendMessageStream(ctx, last.Parts...)
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			emit(opts.OnStreamResult, nil, apperrors.NewCompletionError(g.Name(), err))
			return nil
		}
		if text := geminiText(resp); text != "" {
			emit(opts.OnStreamResult, fragment(text), nil)
		}
	}
}

// geminiHistory maps the dialogue to chat history plus the content to send.
// Consecutive messages of one role become a single turn, as Gemini wants
// user and model turns to alternate.
func geminiHistory(dialogue []models.Message) ([]*genai.Content, *genai.Content) {
	var turns []*genai.Content
	for _, m := range dialogue {
		role := "user"
		if m.Role == models.RoleAssistant {
			role = "model"
		}
		if n := len(turns); n > 0 && turns[n-1].Role == role {
			turns[n-1].Parts = append(turns[n-1].Parts, genai.Text(m.Content))
			continue
		}
		turns = append(turns, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	return turns[:len(turns)-1], turns[len(turns)-1]
}

func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		// Only the first candidate is streamed
		break
	}
	return sb.String()
}
