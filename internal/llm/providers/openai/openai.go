package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/veeru594/ai-agent/internal/llm"
	"github.com/veeru594/ai-agent/internal/version"
)

const (
	defaultEndpoint = "https://api.openai.com/v1/chat/completions"
	maxErrorBody    = 2048
)

// Options configures an OpenAI-compatible provider.
type Options struct {
	Endpoint string
	Timeout  time.Duration
	Headers  map[string]string
	Logger   *zap.Logger
}

// Provider implements an OpenAI-compatible chat provider. The credential is
// supplied per request so a single Provider serves a whole key pool.
type Provider struct {
	name     string
	client   *http.Client
	endpoint string
	headers  map[string]string
	logger   *zap.Logger
}

// NewProvider constructs a Provider with sane defaults.
func NewProvider(name string, opts Options) *Provider {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Provider{
		name:     name,
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
		headers:  opts.Headers,
		logger:   logger,
	}
}

// Name returns provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// Chat executes a non-streaming chat completion.
func (p *Provider) Chat(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	model := req.Model
	if model == "" {
		return llm.ChatResponse{}, fmt.Errorf("model is required")
	}

	body := openAIChatRequest{
		Model:       model,
		Messages:    toOpenAIMessages(req.Messages),
		Temperature: req.Temperature,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return llm.ChatResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return llm.ChatResponse{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", version.UserAgent())
	if req.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)
	}
	for k, v := range p.headers {
		httpReq.Header.Set(k, v)
	}

	res, err := p.client.Do(httpReq)
	if err != nil {
		return llm.ChatResponse{}, p.fail(model, 0, "", fmt.Errorf("send request: %w", err))
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return llm.ChatResponse{}, p.fail(model, res.StatusCode, string(b), nil)
	}

	var resp openAIChatResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return llm.ChatResponse{}, p.fail(model, res.StatusCode, "", fmt.Errorf("decode response: %w", err))
	}

	if len(resp.Choices) == 0 {
		return llm.ChatResponse{}, p.fail(model, res.StatusCode, "", errors.New("empty choices"))
	}

	msg := resp.Choices[0].Message
	return llm.ChatResponse{
		Message: llm.ChatMessage{
			Role:    llm.Role(msg.Role),
			Content: msg.Content,
		},
		FinishReason: resp.Choices[0].FinishReason,
		Usage: llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		ProviderName: p.name,
		Model:        model,
	}, nil
}

func (p *Provider) fail(model string, status int, body string, cause error) error {
	p.logger.Warn("provider call failed",
		zap.String("provider", p.name),
		zap.String("model", model),
		zap.Int("status", status),
		zap.String("body", body),
		zap.Error(cause),
	)
	return &llm.StatusError{Provider: p.name, Model: model, Status: status, Body: body, Err: cause}
}

type openAIChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Index        int           `json:"index"`
		FinishReason string        `json:"finish_reason"`
		Message      openAIMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func toOpenAIMessages(msgs []llm.ChatMessage) []openAIMessage {
	out := make([]openAIMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, openAIMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	return out
}
