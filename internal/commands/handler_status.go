package commands

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/pixil98/go-homestead/internal/display"
	"github.com/pixil98/go-homestead/internal/game"
)

// StatusHandlerFactory creates handlers that render the homestead status.
// Config:
//   - template (optional): status template, DefaultStatusTemplate if unset
type StatusHandlerFactory struct{}

func (f *StatusHandlerFactory) ValidateConfig(config map[string]any) error {
	if s, ok := config["template"]; ok {
		if _, isString := s.(string); !isString {
			return fmt.Errorf("template must be a string")
		}
	}
	return nil
}

func (f *StatusHandlerFactory) Create(config map[string]any) (CommandFunc, error) {
	src := configString(config, "template")
	if src == "" {
		src = DefaultStatusTemplate
	}
	tmpl, err := ParseTemplate(src)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, cmdCtx *CommandContext) error {
		text, err := renderStatus(ctx, cmdCtx, tmpl)
		if err != nil {
			return err
		}
		return write(cmdCtx.Session, display.Wrap(text))
	}, nil
}

func renderStatus(ctx context.Context, cmdCtx *CommandContext, tmpl *template.Template) (string, error) {
	var text string
	err := cmdCtx.Game.Do(ctx, func(context.Context) error {
		var panels []string
		for _, m := range cmdCtx.Game.Dispatcher().Modules() {
			if m.Enabled && m.Panel != "" {
				panels = append(panels, m.Panel)
			}
		}

		var err error
		text, err = execute(tmpl, NewStatusView(cmdCtx.Game.Home(), panels))
		return err
	})
	return text, err
}

const defaultLogLines = 10

// LogHandlerFactory creates handlers that show the journal.
// The optional count input picks how many lines are shown.
type LogHandlerFactory struct{}

func (f *LogHandlerFactory) ValidateConfig(config map[string]any) error {
	return nil
}

func (f *LogHandlerFactory) Create(config map[string]any) (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		n := inputNumber(cmdCtx.Inputs, "count", defaultLogLines)
		if n < 1 {
			return game.NewUserError("Show at least one line.")
		}

		var lines []string
		err := cmdCtx.Game.Do(ctx, func(context.Context) error {
			lines = cmdCtx.Game.Journal().Lines(n)
			return nil
		})
		if err != nil {
			return err
		}

		if len(lines) == 0 {
			return write(cmdCtx.Session, "The journal is empty.")
		}
		// Newest last reads naturally on a console.
		out := make([]string, 0, len(lines))
		for i := len(lines) - 1; i >= 0; i-- {
			out = append(out, lines[i])
		}
		return write(cmdCtx.Session, strings.Join(out, "\n"))
	}, nil
}
