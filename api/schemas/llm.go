package schemas

// GenerationOptions holds parameters controlling LLM generation.
type GenerationOptions struct {
	// Temperature controls sampling randomness. Lower is more deterministic.
	Temperature float32
	// MaxTokens caps the length of the generated response. Zero means
	// provider default.
	MaxTokens int
	// ForceJSONFormat asks the provider to enforce JSON output mode where
	// the backend supports it.
	ForceJSONFormat bool
}

// GenerationRequest encapsulates all inputs for a single LLM call.
type GenerationRequest struct {
	SystemPrompt string
	UserPrompt   string
	Options      GenerationOptions
}
