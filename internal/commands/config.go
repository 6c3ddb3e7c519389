package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/gamemaster/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
		Long: `Show the configuration gamemaster would play with.

Settings come from ~/.gamemaster/config.json, then a .env file in the
working directory, then the environment, then command line flags.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE:  runConfigPath,
	})
	return cmd
}

// configView is the printed configuration. API keys are reported as set or
// not, never printed.
type configView struct {
	config.Config
	APIKeyEnv string `json:"api_key_env,omitempty"`
	APIKeySet bool   `json:"api_key_set"`
	LogPath   string `json:"log_path"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := effectiveConfig(currentFlags())
	if err != nil {
		return err
	}
	logPath, err := config.GetLogPath(cfg)
	if err != nil {
		return err
	}

	view := configView{
		Config:    cfg,
		APIKeyEnv: config.APIKeyEnv(cfg.Provider),
		APIKeySet: config.APIKey(cfg.Provider) != "",
		LogPath:   logPath,
	}
	if cfg.Provider == config.ProviderDemo {
		view.APIKeySet = true
	}

	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
