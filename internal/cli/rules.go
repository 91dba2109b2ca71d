package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prathamc00/AI-Code-Reviewer/internal/plugins"
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "rules", Short: "List available rules"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List built-in detectors",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := plugins.NewRegistry()
			reg.RegisterBuiltin(plugins.DefaultThresholds())
			for _, m := range reg.Rules() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", m.ID, m.Category, m.Title)
			}
			return nil
		},
	})
	return cmd
}
