package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

const DefaultName = "homestead"

// NatsServer runs an embedded NATS server and holds an internal client
// connection to it. Unless WithListen is given the server opens no port
// and the client connects in process.
type NatsServer struct {
	ns *server.Server

	mu    sync.RWMutex
	conn  *nats.Conn
	ready chan struct{}

	startupTimeout time.Duration
	name           string
	listen         bool
	host           string
	port           int
}

func NewNatsServer(opts ...NatsServerOpt) (*NatsServer, error) {
	s := &NatsServer{
		startupTimeout: 10 * time.Second,
		name:           DefaultName,
		host:           "127.0.0.1",
		ready:          make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	sopts := &server.Options{
		ServerName: s.name,
		NoSigs:     true, // Let the application handle signals
		DontListen: !s.listen,
	}
	if s.listen {
		sopts.Host = s.host
		sopts.Port = s.port
	}

	ns, err := server.NewServer(sopts)
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}
	s.ns = ns

	return s, nil
}

func (n *NatsServer) Start(ctx context.Context) error {
	n.ns.Start()

	if !n.ns.ReadyForConnections(n.startupTimeout) {
		return fmt.Errorf("nats server not ready for connections")
	}

	copts := []nats.Option{nats.Name(n.name + "-internal")}
	if !n.listen {
		copts = append(copts, nats.InProcessServer(n.ns))
	}
	conn, err := nats.Connect(n.ns.ClientURL(), copts...)
	if err != nil {
		return fmt.Errorf("creating nats client connection: %w", err)
	}
	n.mu.Lock()
	n.conn = conn
	n.mu.Unlock()
	close(n.ready)

	if n.listen {
		slog.InfoContext(ctx, "nats server listening", "name", n.name, "addr", n.ns.Addr())
	} else {
		slog.InfoContext(ctx, "nats server running in process", "name", n.name)
	}

	<-ctx.Done()
	conn.Drain()
	n.ns.Shutdown()
	n.ns.WaitForShutdown()

	return nil
}

// ClientURL is where external tools connect, empty when the server only
// runs in process.
func (n *NatsServer) ClientURL() string {
	if !n.listen {
		return ""
	}
	return n.ns.ClientURL()
}

// Ready is closed once the server accepts publishes and subscriptions.
func (n *NatsServer) Ready() <-chan struct{} {
	return n.ready
}

// Subscribe creates a subscription on the given subject.
// The handler is called for each message received.
// Returns an unsubscribe function to remove the subscription.
func (n *NatsServer) Subscribe(subject string, handler func(data []byte)) (func(), error) {
	conn := n.client()
	if conn == nil {
		return nil, fmt.Errorf("nats server not started")
	}
	sub, err := conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", subject, err)
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

// Publish sends a message to the given subject
func (n *NatsServer) Publish(subject string, data []byte) error {
	conn := n.client()
	if conn == nil {
		return fmt.Errorf("nats server not started")
	}
	return conn.Publish(subject, data)
}

// Flush waits until the server has processed everything published so far.
func (n *NatsServer) Flush() error {
	conn := n.client()
	if conn == nil {
		return fmt.Errorf("nats server not started")
	}
	return conn.Flush()
}

func (n *NatsServer) client() *nats.Conn {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.conn
}
