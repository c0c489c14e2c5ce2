// Package classifier holds the text-completion transports used as the fallback
// categorizer. Every call is independent: one system instruction and one prompt.
package classifier

import (
	"context"
	"errors"
	"fmt"
)

// Provider names
const (
	ProviderGemini = "gemini"
	ProviderGenAI  = "genai"
	ProviderNone   = "none"
)

// ErrNoAPIKey is returned when a provider is selected without credentials.
var ErrNoAPIKey = errors.New("classifier API key not set (GEMINI_API_KEY)")

// ErrEmptyResponse is returned when the model answers without any text.
var ErrEmptyResponse = errors.New("empty response from model")

// Completer sends a single-shot completion request.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
	// Name identifies the provider in logs and errors.
	Name() string
}

// New builds the transport for provider. It returns a nil Completer for ProviderNone.
func New(ctx context.Context, provider, model, apiKey string) (Completer, error) {
	switch provider {
	case ProviderNone, "":
		return nil, nil
	case ProviderGemini:
		if apiKey == "" {
			return nil, ErrNoAPIKey
		}
		return NewGeminiClient(ctx, apiKey, model)
	case ProviderGenAI:
		if apiKey == "" {
			return nil, ErrNoAPIKey
		}
		return NewGenAIClient(ctx, apiKey, model)
	default:
		return nil, fmt.Errorf("unknown classifier provider: %s", provider)
	}
}
