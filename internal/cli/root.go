package cli

import "github.com/spf13/cobra"

// NewRootCommand assembles the cyclelog command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "cyclelog",
		Short:         "Menstrual cycle log with predictions and calendar sync",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCommand())
	root.AddCommand(newBackfillCommand())
	root.AddCommand(newUserCommand())
	return root
}
