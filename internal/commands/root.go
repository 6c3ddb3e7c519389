// Package commands provides the gamemaster CLI.
package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/gamemaster/internal/config"
	"github.com/diogo/gamemaster/internal/tui"
)

var (
	// Global flags
	variantFlag  string
	providerFlag string
	modelFlag    string
	demoFlag     bool

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = NewRootCmd(NewDependencies())

// NewRootCmd creates the gamemaster command tree
func NewRootCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gamemaster",
		Short: "Play text adventures with an AI game master",
		Long: `gamemaster runs a text adventure in your terminal. A themed game master
narrates the story through a streaming language model and you answer
with what your party does.

Examples:
  gamemaster                            Play the default variant
  gamemaster --variant time-travel      Play the Time Travel Adventure
  gamemaster --demo                     Play offline with a scripted game master
  gamemaster variant list               List variants
  gamemaster config show                Show the effective configuration`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "gamemaster %s (built %s)\n", Version, BuildTime)
				return nil
			}
			return runPlay(cmd, deps)
		},
	}

	cmd.PersistentFlags().StringVarP(&variantFlag, "variant", "V", "", "Game variant to play (see 'gamemaster variant list')")
	cmd.PersistentFlags().StringVarP(&providerFlag, "provider", "p", "",
		"Completion provider ("+joinProviders()+")")
	cmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Model to use (provider default when empty)")
	cmd.PersistentFlags().BoolVar(&demoFlag, "demo", false, "Use the offline scripted game master")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	_ = cmd.RegisterFlagCompletionFunc("variant", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return variantNames(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("provider", cobra.FixedCompletions(config.AvailableProviders(), cobra.ShellCompDirectiveNoFileComp))

	cmd.AddCommand(NewPlayCmd(deps))
	cmd.AddCommand(newVariantCmd())
	cmd.AddCommand(newConfigCmd())
	return cmd
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		tui.PrintError(err)
		os.Exit(1)
	}
}

func joinProviders() string {
	return strings.Join(config.AvailableProviders(), ", ")
}
