package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-homestead/internal/messaging"
)

// NatsConfig configures the embedded server that carries notifications to
// console sessions. With no port the server is only reachable in process;
// port -1 listens on a free port.
type NatsConfig struct {
	Name         string `json:"name"`
	Host         string `json:"host"`
	Port         int    `json:"port"`
	StartTimeout string `json:"start_timeout"`
}

func (c *NatsConfig) validate() error {
	el := errors.NewErrorList()

	if c.StartTimeout != "" {
		_, err := time.ParseDuration(c.StartTimeout)
		if err != nil {
			el.Add(fmt.Errorf("parsing start_timeout: %w", err))
		}
	}
	if c.Port < -1 || c.Port > 65535 {
		el.Add(fmt.Errorf("nats port %d is out of range", c.Port))
	}
	if c.Host != "" && c.Port == 0 {
		el.Add(fmt.Errorf("nats host is only used with a port"))
	}

	return el.Err()
}

func (c *NatsConfig) buildNatsServer() (*messaging.NatsServer, error) {
	var opts []messaging.NatsServerOpt
	if c.StartTimeout != "" {
		d, err := time.ParseDuration(c.StartTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing start_timeout: %w", err)
		}
		opts = append(opts, messaging.WithStartTimeout(d))
	}
	if c.Name != "" {
		opts = append(opts, messaging.WithName(c.Name))
	}
	if c.Port != 0 {
		opts = append(opts, messaging.WithListen(c.Host, c.Port))
	}

	s, err := messaging.NewNatsServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	return s, nil
}
