package command

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	goerrors "github.com/pixil98/go-errors"
	"github.com/pixil98/go-homestead/internal/listener"
	"golang.org/x/crypto/ssh"
)

// ListenerType names the protocol a console listener speaks.
type ListenerType string

const (
	ListenerTypeTelnet ListenerType = "telnet"
	ListenerTypeSSH    ListenerType = "ssh"
	ListenerTypeStdio  ListenerType = "stdio"
)

// defaultPorts is used when a network listener leaves port unset.
var defaultPorts = map[ListenerType]uint16{
	ListenerTypeTelnet: 4000,
	ListenerTypeSSH:    2222,
}

func (lt *ListenerType) UnmarshalText(text []byte) error {
	switch t := ListenerType(text); t {
	case ListenerTypeTelnet, ListenerTypeSSH, ListenerTypeStdio:
		*lt = t
		return nil
	default:
		return fmt.Errorf("unknown listener type: %s", text)
	}
}

// worker is anything the service runs until its context ends.
type worker interface {
	Start(ctx context.Context) error
}

// ListenerConfig describes one way in to the console. Port falls back to
// the protocol default. An ssh host key named by HostKeyPath is created on
// first start; without a path every start uses a fresh key.
type ListenerConfig struct {
	Protocol    ListenerType `json:"protocol"`
	Host        string       `json:"host,omitempty"`
	Port        uint16       `json:"port,omitempty"`
	HostKeyPath string       `json:"host_key_path,omitempty"`
}

func (cl *ListenerConfig) validate() error {
	el := goerrors.NewErrorList()

	switch cl.Protocol {
	case ListenerTypeStdio:
		if cl.Host != "" || cl.Port != 0 {
			el.Add(fmt.Errorf("stdio listeners take no host or port"))
		}
	case ListenerTypeTelnet, ListenerTypeSSH:
	default:
		el.Add(fmt.Errorf("protocol is required"))
	}
	if cl.Protocol != ListenerTypeSSH && cl.HostKeyPath != "" {
		el.Add(fmt.Errorf("host_key_path is only used by ssh listeners"))
	}

	return el.Err()
}

func (cl *ListenerConfig) port() uint16 {
	if cl.Port != 0 {
		return cl.Port
	}
	return defaultPorts[cl.Protocol]
}

// workerName identifies the listener in the service's worker list.
func (cl *ListenerConfig) workerName() string {
	if cl.Protocol == ListenerTypeStdio {
		return string(cl.Protocol)
	}
	return fmt.Sprintf("%s:%d", cl.Protocol, cl.port())
}

func (cl *ListenerConfig) BuildListener(cm *listener.ConnectionManager) (worker, error) {
	switch cl.Protocol {
	case ListenerTypeTelnet:
		return listener.NewTelnetListener(cl.Host, cl.port(), cm), nil
	case ListenerTypeSSH:
		hostKey, err := cl.hostKey()
		if err != nil {
			return nil, fmt.Errorf("setting up ssh host key: %w", err)
		}
		return listener.NewSshListener(cl.Host, cl.port(), cm, hostKey), nil
	case ListenerTypeStdio:
		return listener.NewStdioListener(os.Stdin, os.Stdout, cm), nil
	default:
		return nil, fmt.Errorf("unknown listener type: %q", cl.Protocol)
	}
}

func (cl *ListenerConfig) hostKey() (ssh.Signer, error) {
	if cl.HostKeyPath == "" {
		slog.Warn("no host_key_path configured for ssh listener, clients will see a new key on every start")
		return newHostKey(nil)
	}

	data, err := os.ReadFile(cl.HostKeyPath)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("creating ssh host key", "path", cl.HostKeyPath)
		return newHostKey(func(block *pem.Block) error {
			if err := os.MkdirAll(filepath.Dir(cl.HostKeyPath), 0700); err != nil {
				return err
			}
			return os.WriteFile(cl.HostKeyPath, pem.EncodeToMemory(block), 0600)
		})
	}
	if err != nil {
		return nil, fmt.Errorf("reading host key %q: %w", cl.HostKeyPath, err)
	}

	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("parsing host key %q: %w", cl.HostKeyPath, err)
	}
	return signer, nil
}

// newHostKey generates an ed25519 host key, handing its PEM form to store
// when store is set.
func newHostKey(store func(*pem.Block) error) (ssh.Signer, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating host key: %w", err)
	}
	if store != nil {
		block, err := ssh.MarshalPrivateKey(key, "homestead host key")
		if err != nil {
			return nil, fmt.Errorf("encoding host key: %w", err)
		}
		if err := store(block); err != nil {
			return nil, fmt.Errorf("writing host key: %w", err)
		}
	}
	return ssh.NewSignerFromKey(key)
}
