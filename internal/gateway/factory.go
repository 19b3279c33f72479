package gateway

import (
	"context"
	"fmt"

	"cotreflect/internal/config"
	"cotreflect/internal/logging"
)

// ModelSpec binds a display name to a provider and a provider model id.
type ModelSpec struct {
	Name     string
	Provider string
	Model    string
}

// DefaultModels is the catalog of selectable models. Only entries whose
// provider has an API key configured end up registered.
var DefaultModels = []ModelSpec{
	{Name: "Gemini 2.0 Flash", Provider: "gemini", Model: "gemini-2.0-flash"},
	{Name: "Gemini 1.5 Pro", Provider: "gemini", Model: "gemini-1.5-pro"},
	{Name: "GPT-4o", Provider: "openai", Model: "gpt-4o"},
	{Name: "GPT-4o Mini", Provider: "openai", Model: "gpt-4o-mini"},
	{Name: "Claude 3.5 Sonnet", Provider: "anthropic", Model: "claude-3-5-sonnet-20241022"},
}

// NewRegistryFromConfig builds the process-wide model registry from user
// configuration. Providers without keys are skipped; an empty registry is an
// error since no run could ever succeed.
func NewRegistryFromConfig(ctx context.Context, cfg *config.Config) (*Registry, error) {
	reg := NewRegistry()

	for _, spec := range DefaultModels {
		switch spec.Provider {
		case "gemini":
			if cfg.GeminiAPIKey == "" {
				continue
			}
			client, err := NewGeminiClient(ctx, GeminiConfig{
				APIKey: cfg.GeminiAPIKey,
				Model:  spec.Model,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to build gemini backend for %q: %w", spec.Name, err)
			}
			reg.Register(spec.Name, client)

		case "openai":
			if cfg.OpenAIAPIKey == "" {
				continue
			}
			reg.Register(spec.Name, NewOpenAIClient(OpenAIConfig{
				APIKey: cfg.OpenAIAPIKey,
				Model:  spec.Model,
			}))

		case "anthropic":
			if cfg.AnthropicAPIKey == "" {
				continue
			}
			reg.Register(spec.Name, NewAnthropicClient(AnthropicConfig{
				APIKey: cfg.AnthropicAPIKey,
				Model:  spec.Model,
			}))
		}
	}

	if len(reg.Models()) == 0 {
		return nil, fmt.Errorf("no models available; set GEMINI_API_KEY, OPENAI_API_KEY or ANTHROPIC_API_KEY, or configure %s", config.DefaultConfigPath())
	}

	logging.Boot("model registry ready: %v", reg.Models())
	return reg, nil
}
