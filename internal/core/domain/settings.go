package domain

// AIProvider identifies a language-model backend.
type AIProvider string

// Supported AI providers.
const (
	AIProviderOllama    AIProvider = "ollama"
	AIProviderOpenAI    AIProvider = "openai"
	AIProviderAnthropic AIProvider = "anthropic"
)

// LLMSettings configures the generation backend.
type LLMSettings struct {
	// Provider selects the backend (ollama, openai, anthropic).
	Provider AIProvider

	// Model is the model name; empty uses the provider default.
	Model string

	// APIKey authenticates hosted providers. Unused for ollama.
	APIKey string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// MaxTokens caps the completion length per request.
	MaxTokens int

	// Temperature controls sampling randomness.
	Temperature float64

	// RequestsPerMinute throttles outbound calls. Zero disables
	// throttling.
	RequestsPerMinute int
}

// IsConfigured reports whether the settings name a usable provider.
func (s *LLMSettings) IsConfigured() bool {
	if s == nil || s.Provider == "" {
		return false
	}
	// Hosted providers need a key; ollama is local and does not.
	if s.Provider == AIProviderOpenAI || s.Provider == AIProviderAnthropic {
		return s.APIKey != ""
	}
	return true
}

// ClipSettings configures the primary multimodal embedding backend.
type ClipSettings struct {
	// BaseURL is the inference server endpoint.
	BaseURL string

	// Model is the CLIP variant served.
	Model string

	// Dimensions is the shared embedding space size.
	Dimensions int
}

// FallbackSettings configures the degraded text embedding path.
type FallbackSettings struct {
	// Enabled turns the fallback path on.
	Enabled bool

	// BaseURL is the Ollama endpoint serving the fallback model.
	BaseURL string

	// Model is the fallback embedding model.
	Model string

	// Dimensions is the model's native vector size.
	Dimensions int
}
