package generator

import (
	"fmt"

	"github.com/roach88/garden/internal/config"
	"github.com/roach88/garden/internal/logger"
)

// New builds the provider named by cfg, wrapped with tracing and cfg.Timeout.
func New(cfg config.GeneratorConfig) (Generator, error) {
	var g Generator
	switch cfg.Provider {
	case "openai", "openai_compatible":
		p, err := NewOpenAI(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.MaxTokens, cfg.Temperature)
		if err != nil {
			return nil, err
		}
		g = p
	case "anthropic":
		p, err := NewAnthropic(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.MaxTokens, cfg.Temperature)
		if err != nil {
			return nil, err
		}
		g = p
	case "offline", "":
		g = Offline{}
	default:
		return nil, fmt.Errorf("generator: unsupported provider %q", cfg.Provider)
	}
	logger.GetGeneratorLogger().Debug().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Dur("timeout", cfg.Timeout).
		Msg("generator ready")
	return WithTimeout(Traced(g, cfg.Provider), cfg.Timeout), nil
}
