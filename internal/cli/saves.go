package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-homestead/internal/display"
	"github.com/pixil98/go-homestead/internal/garden"
	"github.com/pixil98/go-homestead/internal/resource"
	"github.com/pixil98/go-homestead/internal/save"
	"github.com/pixil98/go-homestead/internal/storage"
	"github.com/spf13/cobra"
)

// SaveSummary is what inspect reports about a slot.
type SaveSummary struct {
	Slot         string                   `json:"slot"`
	Version      int                      `json:"version"`
	SaveID       uuid.UUID                `json:"save_id"`
	LastTick     time.Time                `json:"last_tick"`
	Resources    map[resource.Key]float64 `json:"resources"`
	Tools        []string                 `json:"tools"`
	Buildings    map[string]int           `json:"buildings"`
	Herds        map[string]int           `json:"herds"`
	Garden       string                   `json:"garden"`
	Modules      map[string]bool          `json:"modules"`
	JournalLines int                      `json:"journal_lines"`
}

func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <slot>",
		Short: "Summarize a save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(rootOpts, func(st storage.Storer) error {
				snap, version, err := loadSnapshot(cmd.Context(), st, args[0])
				if err != nil {
					return err
				}
				sum := summarize(args[0], version, snap)
				return formatter(rootOpts, cmd).Print(sum, sum.text())
			})
		},
	}
}

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate <slot>",
		Short: "Rewrite a save in the current format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot := args[0]
			return withStore(rootOpts, func(st storage.Storer) error {
				snap, version, err := loadSnapshot(cmd.Context(), st, slot)
				if err != nil {
					return err
				}

				result := map[string]any{"slot": slot, "from": version, "to": save.Version, "written": false}
				if version == save.Version {
					return formatter(rootOpts, cmd).Print(result,
						fmt.Sprintf("%s is already at version %d.\n", slot, save.Version))
				}

				data, err := save.Encode(snap)
				if err != nil {
					return WrapExitError(ExitFailure, "encoding save", err)
				}
				if !dryRun {
					if err := st.Save(cmd.Context(), slot, data); err != nil {
						return slotError(slot, err)
					}
					result["written"] = true
				}

				text := fmt.Sprintf("Migrated %s from version %d to %d.\n", slot, version, save.Version)
				if dryRun {
					text = fmt.Sprintf("%s would be migrated from version %d to %d.\n", slot, version, save.Version)
				}
				return formatter(rootOpts, cmd).Print(result, text)
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report without writing")
	return cmd
}

func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <slot>",
		Short: "Write a save as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(rootOpts, func(st storage.Storer) error {
				snap, _, err := loadSnapshot(cmd.Context(), st, args[0])
				if err != nil {
					return err
				}
				data, err := save.Encode(snap)
				if err != nil {
					return WrapExitError(ExitFailure, "encoding save", err)
				}

				if output == "" {
					_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
					return err
				}
				if err := os.WriteFile(output, data, 0644); err != nil {
					return WrapExitError(ExitCommandError, "writing export", err)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write instead of stdout")
	return cmd
}

func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "import <slot> <file>",
		Short: "Store a JSON save in a slot",
		Long:  "Reads a save from file, or from stdin when file is -, migrates it and stores it in the slot.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, file := args[0], args[1]

			var data []byte
			var err error
			if file == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(file)
			}
			if err != nil {
				return WrapExitError(ExitCommandError, "reading import", err)
			}

			snap, err := save.Decode(data)
			if err != nil {
				return WrapExitError(ExitFailure, "reading import", err)
			}
			encoded, err := save.Encode(snap)
			if err != nil {
				return WrapExitError(ExitFailure, "encoding save", err)
			}

			return withStore(rootOpts, func(st storage.Storer) error {
				_, err := st.Load(cmd.Context(), slot)
				switch {
				case err == nil && !force:
					return WrapExitError(ExitCommandError, "refusing to overwrite",
						fmt.Errorf("slot %q already holds a save, pass --force", slot))
				case err != nil && !errors.Is(err, storage.ErrNotFound):
					return slotError(slot, err)
				}

				if err := st.Save(cmd.Context(), slot, encoded); err != nil {
					return slotError(slot, err)
				}
				return formatter(rootOpts, cmd).Print(map[string]any{"slot": slot, "save_id": snap.SaveID},
					fmt.Sprintf("Imported save %s into %s.\n", snap.SaveID, slot))
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing save")
	return cmd
}

// loadSnapshot reads and decodes a slot, reporting the version it was
// stored at. Legacy saves report version 0.
func loadSnapshot(ctx context.Context, st storage.Storer, slot string) (*save.Snapshot, int, error) {
	data, err := st.Load(ctx, slot)
	if err != nil {
		return nil, 0, slotError(slot, err)
	}

	snap, err := save.Decode(data)
	if err != nil {
		return nil, 0, WrapExitError(ExitFailure, fmt.Sprintf("reading slot %q", slot), err)
	}

	var header struct {
		Version int `json:"version"`
	}
	_ = json.Unmarshal(data, &header)
	return snap, header.Version, nil
}

func summarize(slot string, version int, s *save.Snapshot) SaveSummary {
	sum := SaveSummary{
		Slot:         slot,
		Version:      version,
		SaveID:       s.SaveID,
		LastTick:     s.LastTick,
		Resources:    map[resource.Key]float64{},
		Buildings:    map[string]int{},
		Herds:        map[string]int{},
		Garden:       describeGarden(s.Garden),
		Modules:      map[string]bool{},
		JournalLines: len(s.Journal),
	}

	for k, v := range s.Resources {
		if v > 0 {
			sum.Resources[k] = v
		}
	}
	for id, owned := range s.Tools {
		if owned {
			sum.Tools = append(sum.Tools, id)
		}
	}
	sort.Strings(sum.Tools)
	for id, n := range s.Buildings {
		if n > 0 {
			sum.Buildings[id] = n
		}
	}
	for id, h := range s.Herds {
		if h.Count > 0 {
			sum.Herds[id] = h.Count
		}
	}
	for id, m := range s.Modules {
		sum.Modules[id] = m.Enabled
	}

	return sum
}

func describeGarden(g garden.Snapshot) string {
	switch g.State {
	case garden.StateWorking:
		return fmt.Sprintf("%s in progress", g.Task)
	case garden.StatePlanted:
		return fmt.Sprintf("%s growing (%s)", g.Crop, display.Percent(g.Progress))
	default:
		if g.Tilled {
			return "tilled"
		}
		return "idle"
	}
}

func (s SaveSummary) text() string {
	var sb strings.Builder

	version := fmt.Sprintf("%d", s.Version)
	if s.Version == 0 {
		version = "legacy"
	}

	fmt.Fprintf(&sb, "Slot:      %s\n", s.Slot)
	fmt.Fprintf(&sb, "Save ID:   %s\n", s.SaveID)
	fmt.Fprintf(&sb, "Version:   %s\n", version)
	if !s.LastTick.IsZero() {
		fmt.Fprintf(&sb, "Last tick: %s\n", s.LastTick.Format(time.RFC3339))
	}
	fmt.Fprintf(&sb, "Resources: %s\n", joinCounts(s.Resources, display.Quantity))
	fmt.Fprintf(&sb, "Tools:     %s\n", orNone(strings.Join(s.Tools, ", ")))
	fmt.Fprintf(&sb, "Buildings: %s\n", joinCounts(s.Buildings, func(n int) string { return fmt.Sprintf("x%d", n) }))
	fmt.Fprintf(&sb, "Herds:     %s\n", joinCounts(s.Herds, func(n int) string { return fmt.Sprintf("%d", n) }))
	fmt.Fprintf(&sb, "Garden:    %s\n", s.Garden)
	fmt.Fprintf(&sb, "Modules:   %s\n", joinCounts(s.Modules, func(on bool) string {
		if on {
			return "on"
		}
		return "off"
	}))
	fmt.Fprintf(&sb, "Journal:   %d lines\n", s.JournalLines)

	return sb.String()
}

func joinCounts[K ~string, V any](m map[K]V, format func(V) string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+format(m[K(k)]))
	}
	return orNone(strings.Join(parts, ", "))
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
