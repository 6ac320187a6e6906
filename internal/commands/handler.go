package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/pixil98/go-homestead/internal/game"
	"github.com/pixil98/go-homestead/internal/notify"
	"github.com/pixil98/go-homestead/internal/plugins"
)

// ErrQuit is returned by Exec when the session asked to leave.
var ErrQuit = errors.New("quit")

// Game is the running homestead as seen by commands. Everything except Do
// must only be called from inside a Do callback.
type Game interface {
	Do(ctx context.Context, fn func(context.Context) error) error
	Home() *game.Homestead
	Dispatcher() *plugins.Dispatcher
	Journal() *notify.Journal
	Export() ([]byte, error)
	Import(ctx context.Context, data []byte) error
	Reset(ctx context.Context) error
	SaveNow(ctx context.Context) error
}

// Session is the console a command was typed on.
type Session interface {
	io.Writer
	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ParsedInput represents a validated and parsed command input.
type ParsedInput struct {
	Spec  *InputSpec
	Raw   string // Original player input
	Value any    // Parsed value: int for number, string for string
}

// CommandContext is what a compiled command runs against.
type CommandContext struct {
	Game    Game
	Session Session
	Config  map[string]any // Command config with input templates expanded
	Inputs  map[string]any
}

// CommandFunc is the signature for compiled command functions.
type CommandFunc func(ctx context.Context, cmdCtx *CommandContext) error

// HandlerFactory creates CommandFuncs from command configurations.
type HandlerFactory interface {
	// ValidateConfig validates that the config contains required fields.
	ValidateConfig(config map[string]any) error
	// Create creates a CommandFunc. The config is validated but not yet
	// expanded; expanded values arrive in CommandContext.Config.
	Create(config map[string]any) (CommandFunc, error)
}

// compiledCommand holds a command that's been validated and compiled.
type compiledCommand struct {
	name    string
	cmd     *Command
	cmdFunc CommandFunc
}

type Handler struct {
	commands  map[string]*Command
	factories map[string]HandlerFactory
	compiled  map[string]*compiledCommand
	game      Game
}

func NewHandler(cmds map[string]*Command, g Game) *Handler {
	h := &Handler{
		commands:  cmds,
		factories: make(map[string]HandlerFactory),
		compiled:  make(map[string]*compiledCommand),
		game:      g,
	}
	// Register built-in handlers
	_ = h.RegisterFactory("action", &ActionHandlerFactory{})
	_ = h.RegisterFactory("plant", &PlantHandlerFactory{})
	_ = h.RegisterFactory("seeds", &SeedsHandlerFactory{})
	_ = h.RegisterFactory("buy", &BuyHandlerFactory{})
	_ = h.RegisterFactory("sell", &SellHandlerFactory{})
	_ = h.RegisterFactory("shop", &ShopHandlerFactory{})
	_ = h.RegisterFactory("market", &MarketHandlerFactory{})
	_ = h.RegisterFactory("collect", &CollectHandlerFactory{})
	_ = h.RegisterFactory("modules", &ModulesHandlerFactory{})
	_ = h.RegisterFactory("module", &ModuleHandlerFactory{})
	_ = h.RegisterFactory("status", &StatusHandlerFactory{})
	_ = h.RegisterFactory("log", &LogHandlerFactory{})
	_ = h.RegisterFactory("save", &SaveHandlerFactory{})
	_ = h.RegisterFactory("export", &ExportHandlerFactory{})
	_ = h.RegisterFactory("import", &ImportHandlerFactory{})
	_ = h.RegisterFactory("reset", &ResetHandlerFactory{})
	_ = h.RegisterFactory("help", NewHelpHandlerFactory(cmds))
	_ = h.RegisterFactory("quit", &QuitHandlerFactory{})
	return h
}

// RegisterFactory registers a handler factory by name.
// The name must match the "handler" field in command definitions.
func (h *Handler) RegisterFactory(name string, factory HandlerFactory) error {
	if name == "" {
		return fmt.Errorf("handler name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("handler factory cannot be nil")
	}
	if _, exists := h.factories[name]; exists {
		return fmt.Errorf("handler factory %q already registered", name)
	}
	h.factories[name] = factory
	return nil
}

// CompileAll compiles all commands and their aliases.
// Call this after all handler factories have been registered.
func (h *Handler) CompileAll() error {
	for name, cmd := range h.commands {
		if err := h.compile(name, cmd); err != nil {
			return fmt.Errorf("compiling command %q: %w", name, err)
		}
	}

	for name, cmd := range h.commands {
		for _, alias := range cmd.Aliases {
			alias = strings.ToLower(alias)
			if _, exists := h.compiled[alias]; exists {
				return fmt.Errorf("command %q: alias %q is already taken", name, alias)
			}
			h.compiled[alias] = h.compiled[strings.ToLower(name)]
		}
	}
	return nil
}

func (h *Handler) compile(name string, cmd *Command) error {
	factory, ok := h.factories[cmd.Handler]
	if !ok {
		return fmt.Errorf("unknown handler %q", cmd.Handler)
	}

	if err := factory.ValidateConfig(cmd.Config); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	cmdFunc, err := factory.Create(cmd.Config)
	if err != nil {
		return fmt.Errorf("creating handler: %w", err)
	}

	name = strings.ToLower(name)
	h.compiled[name] = &compiledCommand{
		name:    name,
		cmd:     cmd,
		cmdFunc: cmdFunc,
	}
	return nil
}

// Exec parses and runs one line of console input. Empty lines are ignored.
func (h *Handler) Exec(ctx context.Context, sess Session, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	compiled, err := h.resolve(fields[0])
	if err != nil {
		return err
	}

	inputs, err := h.parseInputs(compiled.cmd.Inputs, fields[1:])
	if err != nil {
		return err
	}

	values := make(map[string]any, len(inputs))
	for _, in := range inputs {
		values[in.Spec.Name] = in.Value
	}

	config, err := expandConfig(compiled.cmd.Config, &InputContext{Inputs: values})
	if err != nil {
		return fmt.Errorf("expanding %q config: %w", compiled.name, err)
	}

	return compiled.cmdFunc(ctx, &CommandContext{
		Game:    h.game,
		Session: sess,
		Config:  config,
		Inputs:  values,
	})
}

// resolve finds a command by exact name or alias, then by unique prefix.
// Ambiguous prefixes are settled by priority.
func (h *Handler) resolve(input string) (*compiledCommand, error) {
	input = strings.ToLower(input)
	if c, ok := h.compiled[input]; ok {
		return c, nil
	}

	var matches []string
	best := -1
	for name, c := range h.compiled {
		if name != c.name || !strings.HasPrefix(name, input) {
			continue
		}
		switch {
		case c.cmd.Priority > best:
			best = c.cmd.Priority
			matches = []string{name}
		case c.cmd.Priority == best:
			matches = append(matches, name)
		}
	}

	switch len(matches) {
	case 0:
		return nil, game.NewUserError("Command %q is unknown. Type help for a list.", input)
	case 1:
		return h.compiled[matches[0]], nil
	}
	slices.Sort(matches)
	return nil, game.NewUserError("Did you mean: %s?", strings.Join(matches, ", "))
}

// parseInputs validates raw string arguments against input specs.
func (h *Handler) parseInputs(specs []InputSpec, rawArgs []string) ([]ParsedInput, error) {
	requiredCount := 0
	for _, spec := range specs {
		if spec.Required {
			requiredCount++
		}
	}

	if len(rawArgs) < requiredCount {
		// Prefer the first missing input's own message
		if spec := specs[len(rawArgs)]; spec.Required && spec.Missing != "" {
			return nil, game.NewUserError("%s", spec.Missing)
		}
		return nil, game.NewUserError("Expected at least %d argument(s), got %d.", requiredCount, len(rawArgs))
	}

	hasRest := len(specs) > 0 && specs[len(specs)-1].Rest
	if !hasRest && len(rawArgs) > len(specs) {
		return nil, game.NewUserError("Expected at most %d argument(s), got %d.", len(specs), len(rawArgs))
	}

	inputs := make([]ParsedInput, 0, len(specs))
	argIndex := 0

	for i := range specs {
		spec := &specs[i]

		if argIndex >= len(rawArgs) {
			break
		}

		var raw string
		if spec.Rest {
			// Consume all remaining args joined with spaces
			raw = strings.Join(rawArgs[argIndex:], " ")
			argIndex = len(rawArgs)
		} else {
			raw = rawArgs[argIndex]
			argIndex++
		}

		value, err := h.parseValue(spec.Type, raw)
		if err != nil {
			return nil, err
		}

		inputs = append(inputs, ParsedInput{
			Spec:  spec,
			Raw:   raw,
			Value: value,
		})
	}

	return inputs, nil
}

// parseValue parses a raw string into the appropriate type.
func (h *Handler) parseValue(inputType InputType, raw string) (any, error) {
	switch inputType {
	case InputTypeString:
		return raw, nil

	case InputTypeNumber:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, game.NewUserError("%q is not a valid number.", raw)
		}
		return n, nil

	default:
		return nil, fmt.Errorf("unknown parameter type %q", inputType)
	}
}

// write sends one block of output to the session.
func write(sess Session, text string) error {
	if _, err := io.WriteString(sess, text+"\n"); err != nil {
		return fmt.Errorf("writing to session: %w", err)
	}
	return nil
}

// configString reads a string config value, "" if absent.
func configString(config map[string]any, key string) string {
	s, _ := config[key].(string)
	return s
}

// inputNumber reads a number input, def if absent.
func inputNumber(inputs map[string]any, key string, def int) int {
	if n, ok := inputs[key].(int); ok {
		return n
	}
	return def
}
