package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/pixil98/go-homestead/internal/commands"
	"github.com/pixil98/go-homestead/internal/display"
	"github.com/pixil98/go-homestead/internal/game"
	"github.com/pixil98/go-homestead/internal/notify"
)

const eventBuffer = 64

// Executor runs one line of console input.
type Executor interface {
	Exec(ctx context.Context, sess commands.Session, line string) error
}

// Session is one connected console. Notifications published while the
// session waits for input are shown as they arrive.
type Session struct {
	conn    io.ReadWriter
	handler Executor
	width   int

	mu      sync.Mutex
	lines   chan string
	readErr chan error
	events  chan notify.Event
	done    chan struct{}
}

func newSession(conn io.ReadWriter, handler Executor, width int) *Session {
	return &Session{
		conn:    conn,
		handler: handler,
		width:   width,
		lines:   make(chan string),
		readErr: make(chan error, 1),
		events:  make(chan notify.Event, eventBuffer),
		done:    make(chan struct{}),
	}
}

// Write sends raw output to the connection.
func (s *Session) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Write(p)
}

// ReadLine returns the next line typed on the console.
func (s *Session) ReadLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-s.lines:
		if !ok {
			return "", s.inputErr()
		}
		return line, nil
	}
}

// Confirm asks a yes/no question on the console.
func (s *Session) Confirm(ctx context.Context, prompt string) (bool, error) {
	return PromptYN(ctx, s, s, prompt+" (yes/no) ")
}

// Notify queues a notification for display. It never blocks; notifications
// are dropped while the queue is full.
func (s *Session) Notify(e notify.Event) {
	select {
	case s.events <- e:
	default:
		slog.Debug("dropping console notification", "event_id", e.ID)
	}
}

// Run reads and executes lines until the connection closes, the player
// quits or ctx is canceled.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)
	go s.read()

	if err := s.prompt(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			_ = s.writeLine("\nThe homestead is shutting down. Goodbye.")
			return ctx.Err()

		case e := <-s.events:
			text := e.Message
			if e.Level == notify.LevelWarn {
				text = "⚠️ " + text
			}
			if err := s.writeLine("\n" + text); err != nil {
				return err
			}
			if err := s.prompt(); err != nil {
				return err
			}

		case line, ok := <-s.lines:
			if !ok {
				// Connection lost
				return s.inputErr()
			}

			err := s.exec(ctx, line)
			if errors.Is(err, commands.ErrQuit) {
				return nil
			}
			if err != nil {
				return err
			}
			if err := s.prompt(); err != nil {
				return err
			}
		}
	}
}

// exec runs a line. Rejections are shown to the player; other failures are
// logged and reported without ending the session.
func (s *Session) exec(ctx context.Context, line string) error {
	err := s.handler.Exec(ctx, s, line)
	if err == nil || errors.Is(err, commands.ErrQuit) {
		return err
	}

	var userErr *game.UserError
	if errors.As(err, &userErr) {
		return s.writeLine(userErr.Message)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	slog.ErrorContext(ctx, "console command failed", "line", line, "error", err)
	return s.writeLine("Something went wrong. The error has been logged.")
}

func (s *Session) read() {
	scanner := bufio.NewScanner(s.conn)
	for scanner.Scan() {
		select {
		case s.lines <- scanner.Text():
		case <-s.done:
			return
		}
	}
	s.readErr <- scanner.Err()
	close(s.lines)
}

func (s *Session) inputErr() error {
	select {
	case err := <-s.readErr:
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
	default:
	}
	return nil
}

func (s *Session) prompt() error {
	_, err := io.WriteString(s, "> ")
	return err
}

func (s *Session) writeLine(msg string) error {
	_, err := io.WriteString(s, display.WrapWidth(msg, s.width)+"\n")
	return err
}
