package listener

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// SessionRunner plays one console session over a connection.
type SessionRunner interface {
	RunSession(ctx context.Context, conn io.ReadWriter) error
	Sessions() int
}

// Peer describes the far end of a connection for the logs.
type Peer struct {
	Protocol string
	Remote   string
	User     string
}

func (p Peer) logAttrs() []any {
	attrs := []any{"protocol", p.Protocol}
	if p.Remote != "" {
		attrs = append(attrs, "remote", p.Remote)
	}
	if p.User != "" {
		attrs = append(attrs, "user", p.User)
	}
	return attrs
}

// ConnectionManager hands accepted connections to the console, turning
// away visitors once the session limit is reached.
type ConnectionManager struct {
	runner      SessionRunner
	maxSessions int
}

// NewConnectionManager creates a manager. A maxSessions below 1 means no limit.
func NewConnectionManager(runner SessionRunner, maxSessions int) *ConnectionManager {
	return &ConnectionManager{
		runner:      runner,
		maxSessions: maxSessions,
	}
}

// AcceptConnection runs a console session on conn and returns when it ends.
func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn io.ReadWriter, peer Peer) {
	log := slog.With(peer.logAttrs()...)

	if m.maxSessions > 0 && m.runner.Sessions() >= m.maxSessions {
		log.WarnContext(ctx, "rejecting connection, session limit reached", "max_sessions", m.maxSessions)
		_, _ = io.WriteString(conn, "Too many people are tending this homestead right now. Try again later.\n")
		return
	}

	log.InfoContext(ctx, "console session started")
	start := time.Now()
	if err := m.runner.RunSession(ctx, conn); err != nil {
		log.WarnContext(ctx, "console session", "error", err)
	}
	log.InfoContext(ctx, "console session ended", "duration", time.Since(start).Round(time.Second))
}
