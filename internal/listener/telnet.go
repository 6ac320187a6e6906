package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"syscall"

	"github.com/iammegalith/telnet"
)

// TelnetListener serves the console over telnet. Sessions run on a context
// of their own so a shutdown can end them together after the server stops
// accepting.
type TelnetListener struct {
	addr string
	cm   *ConnectionManager

	sessions    sync.WaitGroup
	sessCtx     context.Context
	endSessions context.CancelFunc
}

func NewTelnetListener(host string, port uint16, cm *ConnectionManager) *TelnetListener {
	return &TelnetListener{
		addr: net.JoinHostPort(host, strconv.Itoa(int(port))),
		cm:   cm,
	}
}

func (l *TelnetListener) Start(ctx context.Context) error {
	l.sessCtx, l.endSessions = context.WithCancel(context.WithoutCancel(ctx))

	svr := telnet.NewServer(l.addr, l)
	stop := context.AfterFunc(ctx, func() { svr.Stop() })
	defer stop()

	slog.InfoContext(ctx, "listening for telnet", "addr", l.addr)

	err := svr.ListenAndServe()
	l.endSessions()
	l.sessions.Wait()
	switch {
	case errors.Is(err, syscall.EADDRINUSE):
		return fmt.Errorf("%s is already in use (another homestead running?)", l.addr)
	case err != nil:
		return fmt.Errorf("serving telnet on %s: %w", l.addr, err)
	}
	return nil
}

// HandleTelnet runs one console session on an accepted connection.
func (l *TelnetListener) HandleTelnet(conn *telnet.Connection) {
	l.sessions.Add(1)
	defer l.sessions.Done()

	peer := Peer{Protocol: "telnet"}
	if ra, ok := any(conn).(interface{ RemoteAddr() net.Addr }); ok {
		peer.Remote = ra.RemoteAddr().String()
	}

	l.cm.AcceptConnection(l.sessCtx, conn, peer)
	if err := conn.Close(); err != nil {
		slog.WarnContext(l.sessCtx, "closing telnet connection", "remote", peer.Remote, "error", err)
	}
}
