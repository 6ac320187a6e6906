package listener

import (
	"context"
	"io"
	"log/slog"
)

// StdioListener plays a single session on the process's own terminal.
// Quitting ends the session; the homestead keeps running until the
// process is stopped.
type StdioListener struct {
	in  io.Reader
	out io.Writer
	cm  *ConnectionManager
}

func NewStdioListener(in io.Reader, out io.Writer, cm *ConnectionManager) *StdioListener {
	return &StdioListener{
		in:  in,
		out: out,
		cm:  cm,
	}
}

func (l *StdioListener) Start(ctx context.Context) error {
	conn := struct {
		io.Reader
		io.Writer
	}{l.in, l.out}
	l.cm.AcceptConnection(ctx, conn, Peer{Protocol: "stdio"})

	slog.InfoContext(ctx, "console closed, press Ctrl-C to stop the homestead")
	<-ctx.Done()
	return nil
}
