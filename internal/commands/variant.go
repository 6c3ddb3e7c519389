package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diogo/gamemaster/internal/config"
)

func newVariantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "variant",
		Short: "Manage game variants",
		Long: `View the game variants and choose the default one.

Custom variants live in ~/.gamemaster/variants.yaml and replace built-in
variants of the same name.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available variants",
		Args:  cobra.NoArgs,
		RunE:  runVariantList,
	})
	cmd.AddCommand(&cobra.Command{
		Use:               "show <name>",
		Short:             "Show variant details",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeVariantNames,
		RunE:              runVariantShow,
	})
	cmd.AddCommand(&cobra.Command{
		Use:               "default <name>",
		Short:             "Set the default variant",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeVariantNames,
		RunE:              runVariantSetDefault,
	})
	cmd.AddCommand(newVariantAddCmd())
	return cmd
}

func newVariantAddCmd() *cobra.Command {
	var v config.Variant
	var start string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add or replace a custom variant",
		Long: `Add a custom variant to ~/.gamemaster/variants.yaml.

A variant with the name of a built-in one replaces it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := config.ParseBootstrapPolicy(start)
			if err != nil {
				return err
			}
			v.Name = args[0]
			v.Bootstrap = policy
			if err := config.AddVariant(v); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Variant '%s' saved.\n", v.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&v.Title, "title", "", "Title shown in the header")
	cmd.Flags().StringVar(&v.Tagline, "tagline", "", "Short line shown next to the title")
	cmd.Flags().StringVar(&v.SystemPrompt, "prompt", "", "Game master system prompt")
	cmd.Flags().StringVar(&v.Theme, "theme", "", "TUI theme")
	cmd.Flags().StringVar(&start, "start", string(config.BootstrapAuto), "How the game opens (auto, button, preset)")
	_ = cmd.MarkFlagRequired("prompt")
	return cmd
}

// completeVariantNames completes a single variant name argument
func completeVariantNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return variantNames(), cobra.ShellCompDirectiveNoFileComp
}

func variantNames() []string {
	names, err := config.ListVariantNames()
	if err != nil {
		return nil
	}
	return names
}

func runVariantList(cmd *cobra.Command, args []string) error {
	variants, err := config.LoadVariants()
	if err != nil {
		return fmt.Errorf("failed to load variants: %w", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tTITLE\tSTART\tDEFAULT")
	_, _ = fmt.Fprintln(w, "----\t-----\t-----\t-------")

	for _, v := range variants {
		isDefault := ""
		if v.Name == cfg.DefaultVariant {
			isDefault = "✓"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", v.Name, v.Title, v.Policy(), isDefault)
	}

	return w.Flush()
}

func runVariantShow(cmd *cobra.Command, args []string) error {
	v, err := config.GetVariant(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Name: %s\n", v.Name)
	_, _ = fmt.Fprintf(out, "Title: %s\n", v.Title)
	if v.Tagline != "" {
		_, _ = fmt.Fprintf(out, "Tagline: %s\n", v.Tagline)
	}
	if v.Description != "" {
		_, _ = fmt.Fprintf(out, "Description: %s\n", v.Description)
	}
	if v.Theme != "" {
		_, _ = fmt.Fprintf(out, "Theme: %s\n", v.Theme)
	}
	_, _ = fmt.Fprintf(out, "Start: %s\n", v.Policy())
	_, _ = fmt.Fprintf(out, "\nSystem Prompt:\n%s\n", v.SystemPrompt)

	return nil
}

func runVariantSetDefault(cmd *cobra.Command, args []string) error {
	name := args[0]

	if err := config.SetDefaultVariant(name); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Default variant set to '%s'.\n", name)
	return nil
}
