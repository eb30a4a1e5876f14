package campusmate

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/campusmate/internal/config"
	"github.com/aretw0/campusmate/pkg/advisor"
	"github.com/aretw0/campusmate/pkg/ports"
)

// NewAdvisor selects the Advisor named by cfg.Provider.
// The offline provider needs no credentials and answers with keyword rules.
func NewAdvisor(cfg config.AdvisorConfig, logger *slog.Logger) (ports.Advisor, error) {
	var c advisor.Completer
	switch cfg.Provider {
	case config.ProviderOffline, "":
		return advisor.NewRules(nil), nil
	case config.ProviderAnthropic:
		a, err := advisor.NewAnthropic(advisor.AnthropicConfig{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			BaseURL:   cfg.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		c = a
	case config.ProviderOpenAI:
		o, err := advisor.NewOpenAI(advisor.OpenAIConfig{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			BaseURL:   cfg.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		c = o
	default:
		return nil, fmt.Errorf("unknown advisor provider %q", cfg.Provider)
	}

	opts := []advisor.Option{advisor.WithLogger(logger)}
	if cfg.SummaryLimit > 0 {
		opts = append(opts, advisor.WithSummaryLimit(cfg.SummaryLimit))
	}
	return advisor.NewLLM(c, opts...), nil
}
