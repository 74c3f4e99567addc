package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command for the epitrello server binary.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "epitrello",
		Short: "EpiTrello board backend",
		Long:  "REST and websocket backend for shared kanban boards, organizations and invitations.",
	}

	// Add subcommands
	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewMigrateCommand())

	return cmd
}
