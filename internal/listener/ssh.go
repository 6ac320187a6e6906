package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"

	"golang.org/x/crypto/ssh"
)

// SshListener serves the console over SSH. Clients are not authenticated;
// the user name they offer only shows up in the logs. Each connection
// carries one console session and is closed when the session ends.
type SshListener struct {
	addr   string
	cm     *ConnectionManager
	config *ssh.ServerConfig
}

func NewSshListener(host string, port uint16, cm *ConnectionManager, hostKey ssh.Signer) *SshListener {
	config := &ssh.ServerConfig{NoClientAuth: true}
	config.AddHostKey(hostKey)

	return &SshListener{
		addr:   net.JoinHostPort(host, strconv.Itoa(int(port))),
		cm:     cm,
		config: config,
	}
}

func (l *SshListener) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("listening for ssh on %s: %w", l.addr, err)
	}
	slog.InfoContext(ctx, "listening for ssh", "addr", ln.Addr().String())

	return l.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx ends, then ends every open
// session and waits for them to finish.
func (l *SshListener) Serve(ctx context.Context, ln net.Listener) error {
	sessCtx, endSessions := context.WithCancel(context.WithoutCancel(ctx))
	var wg sync.WaitGroup
	defer func() {
		endSessions()
		wg.Wait()
	}()

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	for {
		conn, err := ln.Accept()
		switch {
		case ctx.Err() != nil:
			if conn != nil {
				_ = conn.Close()
			}
			return nil
		case errors.Is(err, net.ErrClosed):
			return fmt.Errorf("ssh listener closed: %w", err)
		case err != nil:
			slog.ErrorContext(ctx, "accepting ssh connection", "error", err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			l.serveConn(sessCtx, conn)
		}()
	}
}

func (l *SshListener) serveConn(ctx context.Context, nc net.Conn) {
	defer nc.Close()

	conn, chans, reqs, err := ssh.NewServerConn(nc, l.config)
	if err != nil {
		slog.WarnContext(ctx, "ssh handshake failed", "remote", nc.RemoteAddr().String(), "error", err)
		return
	}
	defer conn.Close()
	go ssh.DiscardRequests(reqs)

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	peer := Peer{Protocol: "ssh", Remote: conn.RemoteAddr().String(), User: conn.User()}
	for nch := range chans {
		if nch.ChannelType() != "session" {
			_ = nch.Reject(ssh.UnknownChannelType, "only session channels are supported")
			continue
		}
		l.serveSession(ctx, nch, peer)
		return
	}
}

func (l *SshListener) serveSession(ctx context.Context, nch ssh.NewChannel, peer Peer) {
	ch, reqs, err := nch.Accept()
	if err != nil {
		slog.WarnContext(ctx, "accepting ssh session", "remote", peer.Remote, "error", err)
		return
	}
	defer ch.Close()

	shell := make(chan struct{})
	go answerSessionRequests(reqs, shell)

	// Clients only forward input once the shell request is answered.
	select {
	case <-shell:
	case <-ctx.Done():
		return
	}

	l.cm.AcceptConnection(ctx, newTerminal(ch), peer)
	_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{0}))
}

// answerSessionRequests replies to requests on a session channel and
// closes shell when the first shell request is accepted. Pty requests are
// refused so the client echoes and edits lines itself.
func answerSessionRequests(reqs <-chan *ssh.Request, shell chan<- struct{}) {
	started := false
	for req := range reqs {
		ok := false
		switch req.Type {
		case "shell":
			ok = !started
		case "env":
			ok = true
		}
		if req.WantReply {
			_ = req.Reply(ok, nil)
		}
		if ok && req.Type == "shell" {
			started = true
			close(shell)
		}
	}
}
