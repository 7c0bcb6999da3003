package driven

import "context"

// LLMService is the language-model boundary: an ordered list of
// role-tagged messages in, a single text completion out. Model name and
// temperature are fixed at construction.
//
// Implementations may include:
//   - Anthropic (Claude)
//   - OpenAI (GPT-4o and friends)
//   - Ollama (local models)
type LLMService interface {
	// Chat conducts a single round trip with the model.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight
	// request. Used at startup before committing to a provider.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
