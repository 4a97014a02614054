// Package provider translates provider-agnostic chat requests into the wire
// formats of concrete completion backends and decodes their replies.
package provider

import (
	"github.com/papercomputeco/pilotlight/pkg/llm"
)

// Provider defines the interface for a completion backend's wire format.
// Each provider implementation knows how to build its request body and parse
// its non-streaming response into the internal representation.
type Provider interface {
	// Name returns the canonical provider name (e.g., "anthropic", "openai", "ollama")
	Name() string

	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL() string

	// DefaultModel is used when no model is configured.
	DefaultModel() string

	// RequiresAPIKey reports whether requests must carry an API key.
	RequiresAPIKey() bool

	// Endpoint returns the chat completion URL for the given base URL.
	Endpoint(baseURL string) string

	// Headers returns the provider-specific request headers, including auth.
	Headers(apiKey string) map[string]string

	// BuildRequest converts the internal request into the provider's JSON body.
	BuildRequest(req *llm.ChatRequest) ([]byte, error)

	// ParseResponse converts a provider-specific response into the internal format.
	// Returns an error if the payload cannot be parsed or carries a provider error.
	ParseResponse(payload []byte) (*llm.ChatResponse, error)
}
