package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// SaveHandlerFactory creates handlers that persist the game immediately.
type SaveHandlerFactory struct{}

func (f *SaveHandlerFactory) ValidateConfig(config map[string]any) error {
	return nil
}

func (f *SaveHandlerFactory) Create(config map[string]any) (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		err := cmdCtx.Game.Do(ctx, func(ctx context.Context) error {
			return cmdCtx.Game.SaveNow(ctx)
		})
		if err != nil {
			return fmt.Errorf("saving game: %w", err)
		}
		return write(cmdCtx.Session, "Game saved.")
	}, nil
}

// ExportHandlerFactory creates handlers that print the save as one line.
type ExportHandlerFactory struct{}

func (f *ExportHandlerFactory) ValidateConfig(config map[string]any) error {
	return nil
}

func (f *ExportHandlerFactory) Create(config map[string]any) (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		var data []byte
		err := cmdCtx.Game.Do(ctx, func(context.Context) error {
			var err error
			data, err = cmdCtx.Game.Export()
			return err
		})
		if err != nil {
			return fmt.Errorf("exporting game: %w", err)
		}

		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return fmt.Errorf("compacting export: %w", err)
		}
		return write(cmdCtx.Session, buf.String())
	}, nil
}

// ImportHandlerFactory creates handlers that replace the game with an export.
// Config:
//   - data (required): the exported save, expanded from input
type ImportHandlerFactory struct{}

func (f *ImportHandlerFactory) ValidateConfig(config map[string]any) error {
	if configString(config, "data") == "" {
		return fmt.Errorf("data is required")
	}
	return nil
}

func (f *ImportHandlerFactory) Create(config map[string]any) (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		data := []byte(configString(cmdCtx.Config, "data"))
		return cmdCtx.Game.Do(ctx, func(ctx context.Context) error {
			return cmdCtx.Game.Import(ctx, data)
		})
	}, nil
}

// ResetHandlerFactory creates handlers that start a new game after the
// session confirms.
type ResetHandlerFactory struct{}

func (f *ResetHandlerFactory) ValidateConfig(config map[string]any) error {
	return nil
}

func (f *ResetHandlerFactory) Create(config map[string]any) (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		ok, err := cmdCtx.Session.Confirm(ctx, "Start a new homestead? All progress will be lost.")
		if err != nil {
			return fmt.Errorf("confirming reset: %w", err)
		}
		if !ok {
			return write(cmdCtx.Session, "Nothing was reset.")
		}

		return cmdCtx.Game.Do(ctx, func(ctx context.Context) error {
			return cmdCtx.Game.Reset(ctx)
		})
	}, nil
}

// QuitHandlerFactory creates handlers that end the session. The game keeps
// running and is saved by the driver.
type QuitHandlerFactory struct{}

func (f *QuitHandlerFactory) ValidateConfig(config map[string]any) error {
	return nil
}

func (f *QuitHandlerFactory) Create(config map[string]any) (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		err := cmdCtx.Game.Do(ctx, func(ctx context.Context) error {
			return cmdCtx.Game.SaveNow(ctx)
		})
		if err != nil {
			return fmt.Errorf("saving game on quit: %w", err)
		}
		_ = write(cmdCtx.Session, "Goodbye. Your homestead keeps growing while you are away.")
		return ErrQuit
	}, nil
}
