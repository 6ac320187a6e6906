package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/pixil98/go-homestead/internal/messaging"
)

const (
	DefaultWidth = 80
	welcome      = "Welcome to your homestead. Type help for a list of commands.\n"
)

type ManagerOpt func(*Manager)

// WithWidth sets the column notifications are wrapped at. Zero disables
// wrapping.
func WithWidth(w int) ManagerOpt {
	return func(m *Manager) {
		m.width = w
	}
}

// WithStartup sets the commands run when a session opens.
func WithStartup(lines ...string) ManagerOpt {
	return func(m *Manager) {
		m.startup = lines
	}
}

// WithBus subscribes every session to game notifications on bus.
func WithBus(bus messaging.Bus) ManagerOpt {
	return func(m *Manager) {
		m.bus = bus
	}
}

// Manager runs console sessions against a shared command handler.
type Manager struct {
	handler Executor
	bus     messaging.Bus
	width   int
	startup []string
	active  atomic.Int32
}

func NewManager(handler Executor, opts ...ManagerOpt) *Manager {
	m := &Manager{
		handler: handler,
		width:   DefaultWidth,
		startup: []string{"status", "log 5"},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Sessions reports how many sessions are connected.
func (m *Manager) Sessions() int {
	return int(m.active.Load())
}

// RunSession plays one session over conn until it ends.
func (m *Manager) RunSession(ctx context.Context, conn io.ReadWriter) error {
	sess := newSession(conn, m.handler, m.width)

	if m.bus != nil {
		if err := m.waitReady(ctx); err != nil {
			return err
		}
		unsub, err := messaging.SubscribeNotifications(m.bus, sess.Notify)
		if err != nil {
			return fmt.Errorf("subscribing to notifications: %w", err)
		}
		defer unsub()
	}

	n := m.active.Add(1)
	defer m.active.Add(-1)
	slog.InfoContext(ctx, "console session started", "sessions", n)

	if _, err := io.WriteString(sess, welcome); err != nil {
		return err
	}
	for _, line := range m.startup {
		if err := sess.exec(ctx, line); err != nil {
			return err
		}
	}

	err := sess.Run(ctx)
	slog.InfoContext(ctx, "console session ended", "sessions", m.active.Load()-1)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// waitReady holds the session until a bus that reports readiness is up.
func (m *Manager) waitReady(ctx context.Context) error {
	r, ok := m.bus.(interface{ Ready() <-chan struct{} })
	if !ok {
		return nil
	}
	select {
	case <-r.Ready():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
