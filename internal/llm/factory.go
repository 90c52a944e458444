package llm

import (
	"context"

	"shoplist/internal/config"
)

// NewFromConfig builds the text generator used for category suggestions:
// Groq when GROQ_API_KEY is set, otherwise Gemini when GEMINI_API_KEY is set,
// wrapped in a response cache at cfg.CachePath. It returns nil when neither
// key is configured.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*CachedTextGenerator, error) {
	var gen TextGenerator
	switch {
	case cfg.GroqAPIKey != "":
		gen = NewGroqClient(cfg)
	case cfg.GeminiAPIKey != "":
		gemini, err := NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		gen = gemini
	default:
		return nil, nil
	}
	return NewCachedTextGenerator(gen, cfg.CachePath)
}
