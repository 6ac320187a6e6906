package messaging

import "time"

type NatsServerOpt func(*NatsServer)

// WithStartTimeout bounds how long Start waits for the server to accept
// connections.
func WithStartTimeout(d time.Duration) NatsServerOpt {
	return func(n *NatsServer) {
		n.startupTimeout = d
	}
}

// WithListen opens a TCP listener on host:port so tools outside the
// process can follow notifications. Port -1 picks a free port. Without it
// the server is reachable in process only.
func WithListen(host string, port int) NatsServerOpt {
	return func(n *NatsServer) {
		n.listen = true
		if host != "" {
			n.host = host
		}
		n.port = port
	}
}

// WithName names the server and its internal client in monitoring output.
func WithName(name string) NatsServerOpt {
	return func(n *NatsServer) {
		n.name = name
	}
}
