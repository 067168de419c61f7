package adapter

import "context"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of an LLM conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Usage as reported by the provider. Adapters estimate it when the provider is silent.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// AIServiceAdapter is the LLM port used by the prediction generator.
// Implementations must honour ctx cancellation and must not retry on their own.
type AIServiceAdapter interface {
	// Provider is the metrics label ("openai", "gemini", "metis", "multi", "noop").
	Provider() string
	ListModels(ctx context.Context) ([]string, error)
	Chat(ctx context.Context, model string, messages []Message) (string, error)
	ChatWithUsage(ctx context.Context, model string, messages []Message) (string, Usage, error)
}
