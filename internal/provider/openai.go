package provider

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/tidwall/gjson"

	apperrors "github.com/diogo/gamemaster/internal/errors"
)

// OpenAI defaults
const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-4o-mini"
)

// OpenAI streams completions from any OpenAI-compatible chat completions endpoint
type OpenAI struct {
	httpClient tls_client.HttpClient
	apiKey     string
	baseURL    string
	model      string
}

// NewOpenAI creates an OpenAI-compatible provider
func NewOpenAI(apiKey, baseURL, model string) (*OpenAI, error) {
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	// Local compatible servers run without a key, the hosted API does not
	if apiKey == "" && baseURL == DefaultOpenAIBaseURL {
		return nil, apperrors.NewProviderUnavailableError("openai", "OPENAI_API_KEY is not set")
	}
	if model == "" {
		model = DefaultOpenAIModel
	}

	options := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(0),
		tls_client.WithClientProfile(profiles.Chrome_120),
	}
	httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &OpenAI{
		httpClient: httpClient,
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
	}, nil
}

// Name returns the provider name
func (o *OpenAI) Name() string { return "openai" }

// Model returns the model name
func (o *OpenAI) Model() string { return o.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

func (o *OpenAI) buildRequest(req Request, opts Options) chatRequest {
	msgs := make([]chatMessage, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = chatMessage{Role: m.Role.String(), Content: m.Content}
	}
	return chatRequest{
		Model:       o.model,
		Messages:    msgs,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Stream:      true,
	}
}

// GetCompletion streams the reply for req
func (o *OpenAI) GetCompletion(ctx context.Context, req Request, opts Options) error {
	body, err := json.Marshal(o.buildRequest(req, opts))
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", strings.NewReader(string(body)))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if o.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		emit(opts.OnStreamResult, nil, apperrors.NewCompletionError(o.Name(), err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := gjson.GetBytes(data, "error.message").String()
		if msg == "" {
			msg = strings.TrimSpace(string(data))
		}
		emit(opts.OnStreamResult, nil, apperrors.NewCompletionError(o.Name(),
			fmt.Errorf("status %d: %s", resp.StatusCode, msg)))
		return nil
	}

	if err := readChatStream(resp.Body, opts.OnStreamResult); err != nil {
		emit(opts.OnStreamResult, nil, apperrors.NewCompletionError(o.Name(), err))
	}
	return nil
}

// readChatStream parses a chat completions SSE body, emitting every content delta
func readChatStream(r io.Reader, fn StreamFunc) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			return nil
		}
		if !gjson.Valid(data) {
			continue
		}

		parsed := gjson.Parse(data)
		if msg := parsed.Get("error.message"); msg.Exists() {
			return fmt.Errorf("stream error: %s", msg.String())
		}
		if content := parsed.Get("choices.0.delta.content").String(); content != "" {
			emit(fn, fragment(content), nil)
		}
	}

	return scanner.Err()
}
