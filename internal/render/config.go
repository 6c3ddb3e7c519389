package render

import (
	"os"

	"github.com/diogo/gamemaster/internal/config"
)

// OptionsFromConfig builds render options from the user configuration.
// GLAMOUR_STYLE takes precedence over the configured style, which takes
// precedence over fallback, the variant theme's style.
func OptionsFromConfig(cfg config.Config, fallback string) Options {
	opts := DefaultOptions()
	if fallback != "" {
		opts.Style = fallback
	}

	md := cfg.Markdown
	if md.Style != "" {
		opts.Style = md.Style
	}
	opts.EnableEmoji = md.EnableEmoji
	opts.PreserveNewLines = md.PreserveNewLines

	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		opts.Style = style
	}

	return opts
}
