package provider

import (
	"context"
	"fmt"
	"io"

	"github.com/diogo/gamemaster/internal/config"
	apperrors "github.com/diogo/gamemaster/internal/errors"
)

// New builds the provider selected by cfg.
// A missing API key yields a *errors.ProviderUnavailableError.
func New(ctx context.Context, cfg config.Config) (Provider, error) {
	key := config.APIKey(cfg.Provider)

	// Failures return a nil interface, never a typed nil
	switch cfg.Provider {
	case config.ProviderGemini:
		p, err := NewGemini(ctx, key, cfg.Model)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.ProviderAnthropic:
		p, err := NewAnthropic(key, cfg.Model)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.ProviderOpenAI:
		p, err := NewOpenAI(key, cfg.BaseURL, cfg.Model)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.ProviderDemo:
		return NewDemo(), nil
	default:
		return nil, apperrors.NewConfigError("provider", fmt.Sprintf("unknown provider %q", cfg.Provider))
	}
}

// Describe returns display name and model for p
func Describe(p Provider) (name, model string) {
	if p == nil {
		return "none", ""
	}
	if d, ok := p.(Describer); ok {
		return d.Name(), d.Model()
	}
	return fmt.Sprintf("%T", p), ""
}

// Close releases p when it holds resources
func Close(p Provider) error {
	if c, ok := p.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
