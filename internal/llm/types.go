package llm

import "context"

// Role is the message role used in chat exchanges.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage represents a single message exchanged with the model.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the input for chat providers. APIKey is the credential drawn
// from the provider's pool for this single call.
type ChatRequest struct {
	Model       string
	Messages    []ChatMessage
	Temperature float64
	APIKey      string
}

// Usage captures token accounting.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ChatResponse is the result of a chat completion.
type ChatResponse struct {
	Message      ChatMessage
	FinishReason string
	Usage        Usage
	ProviderName string
	Model        string
}

// Provider performs exactly one remote chat invocation per Chat call.
// Failures should be reported as *StatusError so the status code survives.
type Provider interface {
	Name() string
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// Identity names the backend that produced a result.
type Identity struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

func (i Identity) String() string {
	return i.Provider + "/" + i.Model
}
