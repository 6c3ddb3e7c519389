package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/diogo/gamemaster/internal/config"
	"github.com/diogo/gamemaster/internal/conversation"
	apperrors "github.com/diogo/gamemaster/internal/errors"
	"github.com/diogo/gamemaster/internal/logging"
	"github.com/diogo/gamemaster/internal/provider"
	"github.com/diogo/gamemaster/internal/render"
	"github.com/diogo/gamemaster/internal/tui"
)

// errNoTerminal is returned when the game is started without a terminal
var errNoTerminal = errors.New("gamemaster needs an interactive terminal")

// NewPlayCmd creates the play command
func NewPlayCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Start a game (default command)",
		Long: `Start a game with the selected variant.

The Oregon Trail variant opens the game at once, the classic reskin waits
on a start screen and the Time Travel Adventure prefills the opening line.
Press Esc or Ctrl+C to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, deps)
		},
	}
}

// playFlags are the command line overrides of the configuration
type playFlags struct {
	Variant  string
	Provider string
	Model    string
	Demo     bool
}

func currentFlags() playFlags {
	return playFlags{
		Variant:  variantFlag,
		Provider: providerFlag,
		Model:    modelFlag,
		Demo:     demoFlag,
	}
}

// session is everything a game needs, wired from configuration
type session struct {
	cfg        config.Config
	variant    config.Variant
	provider   provider.Provider
	controller *conversation.Controller
	bridge     *tui.Bridge
	logger     zerolog.Logger
	logCloser  io.Closer
}

// effectiveConfig loads config.json and applies .env, environment and flags
func effectiveConfig(flags playFlags) (config.Config, error) {
	if err := config.LoadEnvFile(); err != nil {
		return config.Config{}, err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return cfg, err
	}
	cfg = config.ApplyEnv(cfg)

	if flags.Provider != "" {
		cfg.Provider = flags.Provider
	}
	if flags.Model != "" {
		cfg.Model = flags.Model
	}
	if flags.Demo {
		cfg.Provider = config.ProviderDemo
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newSession wires the provider, logger, theme and controller for a game
func newSession(ctx context.Context, flags playFlags, bridge *tui.Bridge) (*session, error) {
	cfg, err := effectiveConfig(flags)
	if err != nil {
		return nil, err
	}

	logPath, err := config.GetLogPath(cfg)
	if err != nil {
		return nil, err
	}
	logger, logCloser, err := logging.New(logPath, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	variant, err := config.ResolveVariant(cfg, flags.Variant)
	if err != nil {
		logCloser.Close()
		return nil, err
	}

	p, err := provider.New(ctx, cfg)
	switch {
	case apperrors.IsUnavailable(err):
		// The game still opens; the controller reports the missing provider
		logger.Warn().Err(err).Str("provider", cfg.Provider).Msg("completion provider unavailable")
		p = nil
	case err != nil:
		logCloser.Close()
		return nil, err
	}

	theme := variant.Theme
	if cfg.TUITheme != "" {
		theme = cfg.TUITheme
	}
	if theme != "" && !tui.ApplyTheme(theme) {
		logger.Warn().Str("theme", theme).Strs("available", render.TUIThemeNames()).Msg("unknown TUI theme")
	}

	ctrl := conversation.New(variant.PersonaMessage(), p,
		conversation.WithLogger(logger),
		conversation.WithObserver(bridge.Observe),
		conversation.WithStallTimeout(cfg.StallTimeout()),
		conversation.WithTemperature(cfg.Temperature),
		conversation.WithMaxTokens(cfg.MaxTokens),
	)

	name, model := provider.Describe(p)
	logger.Info().
		Str("variant", variant.Name).
		Str("provider", name).
		Str("model", model).
		Dur("stall_timeout", cfg.StallTimeout()).
		Msg("session started")

	return &session{
		cfg:        cfg,
		variant:    *variant,
		provider:   p,
		controller: ctrl,
		bridge:     bridge,
		logger:     logger,
		logCloser:  logCloser,
	}, nil
}

// tuiOptions returns the TUI configuration for s
func (s *session) tuiOptions() tui.Options {
	name, model := "", ""
	if s.controller.Available() {
		name, model = provider.Describe(s.provider)
	}
	return tui.Options{
		Controller: s.controller,
		Bridge:     s.bridge,
		Variant:    s.variant,
		Provider:   name,
		Model:      model,
		Render:     render.OptionsFromConfig(s.cfg, render.GetTUITheme().Markdown),
	}
}

// Close stops in-flight requests and releases the provider and log file
func (s *session) Close() {
	s.controller.Close()
	if err := provider.Close(s.provider); err != nil {
		s.logger.Warn().Err(err).Msg("failed to close provider")
	}
	s.logger.Info().Msg("session ended")
	_ = s.logCloser.Close()
}

func runPlay(cmd *cobra.Command, deps *Dependencies) error {
	if deps == nil {
		deps = NewDependencies()
	}
	if deps.IsTerminal != nil && !deps.IsTerminal() {
		return errNoTerminal
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	s, err := newSession(ctx, currentFlags(), tui.NewBridge())
	if err != nil {
		return err
	}
	defer s.Close()

	if err := deps.TUI.Run(ctx, s.tuiOptions()); err != nil {
		return fmt.Errorf("game ended with an error: %w", err)
	}
	return nil
}
