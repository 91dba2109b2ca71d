package app

import (
	"github.com/spf13/cobra"

	"github.com/prathamc00/AI-Code-Reviewer/internal/cli"
)

func BuildRoot() *cobra.Command {
	root := &cobra.Command{
		Use:          "reviewer",
		Short:        "Static code reviewer for Python with optional model-written explanations",
		SilenceUsage: true,
	}
	cli.AddCommands(root)
	return root
}
