package mock

import (
	"context"
	"sync"

	"github.com/veeru594/ai-agent/internal/llm"
)

// Provider is a test double implementing llm.Provider.
type Provider struct {
	NameValue string
	ChatFn    func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error)

	mu    sync.Mutex
	calls []llm.ChatRequest
}

func (p *Provider) Name() string {
	if p.NameValue != "" {
		return p.NameValue
	}
	return "mock"
}

func (p *Provider) Chat(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	p.mu.Lock()
	p.calls = append(p.calls, req)
	p.mu.Unlock()

	if p.ChatFn != nil {
		return p.ChatFn(ctx, req)
	}
	return llm.ChatResponse{
		Message: llm.ChatMessage{
			Role:    llm.RoleAssistant,
			Content: "mock",
		},
		ProviderName: p.Name(),
		Model:        req.Model,
	}, nil
}

// Calls returns a copy of every request received so far.
func (p *Provider) Calls() []llm.ChatRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]llm.ChatRequest(nil), p.calls...)
}

// Reply builds a ChatFn that always answers with text.
func Reply(text string) func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	return func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
		return llm.ChatResponse{Message: llm.ChatMessage{Role: llm.RoleAssistant, Content: text}, Model: req.Model}, nil
	}
}

// Fail builds a ChatFn that always fails with the given status.
func Fail(name string, status int) func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	return func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
		return llm.ChatResponse{}, &llm.StatusError{Provider: name, Model: req.Model, Status: status, Body: "mock failure"}
	}
}
