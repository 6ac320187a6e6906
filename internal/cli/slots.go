package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pixil98/go-homestead/internal/save"
	"github.com/pixil98/go-homestead/internal/storage"
	"github.com/spf13/cobra"
)

// SlotEntry is one line of the list command.
type SlotEntry struct {
	Name    string    `json:"name"`
	Size    int       `json:"size"`
	Updated time.Time `json:"updated"`
}

func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List save slots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(rootOpts, func(st storage.Storer) error {
				infos, err := st.List(cmd.Context())
				if err != nil {
					return WrapExitError(ExitCommandError, "listing slots", err)
				}

				entries := make([]SlotEntry, 0, len(infos))
				var sb strings.Builder
				for _, info := range infos {
					entries = append(entries, SlotEntry(info))
					fmt.Fprintf(&sb, "%-20s %8d bytes  %s\n", info.Name, info.Size, info.Updated.Format(time.RFC3339))
				}
				if len(infos) == 0 {
					sb.WriteString("No saves found.\n")
				}

				return formatter(rootOpts, cmd).Print(entries, sb.String())
			})
		},
	}
}

func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <slot>",
		Short: "Delete a save slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return WrapExitError(ExitCommandError, "refusing to delete",
					errors.New("pass --force to delete a save"))
			}
			return withStore(rootOpts, func(st storage.Storer) error {
				if err := st.Delete(cmd.Context(), args[0]); err != nil {
					return slotError(args[0], err)
				}
				return formatter(rootOpts, cmd).Print(map[string]string{"deleted": args[0]},
					fmt.Sprintf("Deleted %s.\n", args[0]))
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "delete without further checks")
	return cmd
}

// previousStore is implemented by backends that keep the save a slot held
// before its latest write.
type previousStore interface {
	Previous(ctx context.Context, slot string) ([]byte, error)
}

func NewRollbackCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rollback <slot>",
		Short: "Restore the save a slot held before its latest write",
		Long:  "Swaps a slot back to its previous save. Running it twice undoes the rollback. Needs the sqlite backend.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot := args[0]
			return withStore(rootOpts, func(st storage.Storer) error {
				ps, ok := st.(previousStore)
				if !ok {
					return WrapExitError(ExitCommandError, "rollback",
						fmt.Errorf("backend %q keeps no previous saves", rootOpts.Backend))
				}

				data, err := ps.Previous(cmd.Context(), slot)
				if err != nil {
					return slotError(slot, err)
				}
				snap, err := save.Decode(data)
				if err != nil {
					return WrapExitError(ExitFailure, fmt.Sprintf("reading previous save of %q", slot), err)
				}
				if err := st.Save(cmd.Context(), slot, data); err != nil {
					return slotError(slot, err)
				}

				return formatter(rootOpts, cmd).Print(
					map[string]any{"slot": slot, "save_id": snap.SaveID, "last_tick": snap.LastTick},
					fmt.Sprintf("Rolled %s back to the save from %s.\n", slot, snap.LastTick.Format(time.RFC3339)))
			})
		},
	}
}

func slotError(slot string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return WrapExitError(ExitCommandError, fmt.Sprintf("slot %q", slot), err)
	}
	return WrapExitError(ExitCommandError, fmt.Sprintf("accessing slot %q", slot), err)
}
