package cli

import (
	"fmt"
	"slices"

	"github.com/pixil98/go-homestead/internal/storage"
	"github.com/spf13/cobra"
)

// RootOptions holds the flags shared by every command.
type RootOptions struct {
	Backend string
	Path    string
	Format  string
}

var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the savetool command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "savetool",
		Short: "Inspect and maintain homestead saves",
		Long:  "Lists, inspects, migrates, exports, imports and rolls back homestead save slots in a file or sqlite store.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return WrapExitError(ExitCommandError, "invalid flags",
					fmt.Errorf("format %q must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", storage.BackendFile, "save store backend (file|sqlite)")
	cmd.PersistentFlags().StringVar(&opts.Path, "path", ".", "save directory, or database file for sqlite")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewRollbackCommand(opts))

	return cmd
}

// withStore opens the configured store for the duration of fn.
func withStore(opts *RootOptions, fn func(storage.Storer) error) error {
	st, closeFn, err := storage.Open(opts.Backend, opts.Path)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening save store", err)
	}
	defer closeFn()
	return fn(st)
}

func formatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
}
