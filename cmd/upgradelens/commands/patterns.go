package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moolen/upgradelens/internal/config"
	"github.com/moolen/upgradelens/internal/patterns"
)

func newPatternsCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Manage pattern registry files",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "export PATH",
		Short: "Write the active pattern registry to a YAML file",
		Long: `Write the active pattern registry to PATH. Without --patterns this is the
built-in registry, which makes a good starting point for a custom file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := config.LoadRegistry(g.cfg.PatternsFile)
			if err != nil {
				return err
			}
			if err := config.WritePatternsFile(args[0], registry.Spec()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote pattern registry to %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate PATH",
		Short: "Check that a pattern registry file loads and compiles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := config.LoadPatternsFile(args[0])
			if err != nil {
				return err
			}
			registry, err := patterns.New(spec)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid: %d entity types, %d categories\n",
				args[0], len(registry.EntityPatterns()), len(registry.Rules()))
			return nil
		},
	})

	return cmd
}
