package command

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-homestead/internal/catalog"
	"github.com/pixil98/go-homestead/internal/plugins/apiary"
	"github.com/pixil98/go-homestead/internal/plugins/livestock"
	"github.com/pixil98/go-testutil"
)

func validConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Listeners: []ListenerConfig{{Protocol: ListenerTypeTelnet, Port: 4000}},
		Storage:   StorageConfig{Path: t.TempDir()},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := map[string]struct {
		mutate func(c *Config)
		expErr string
	}{
		"valid": {
			mutate: func(c *Config) {},
		},
		"no listeners": {
			mutate: func(c *Config) { c.Listeners = nil },
			expErr: "at least one listener is required",
		},
		"ssh on default port": {
			mutate: func(c *Config) { c.Listeners = []ListenerConfig{{Protocol: ListenerTypeSSH}} },
		},
		"missing protocol": {
			mutate: func(c *Config) { c.Listeners = []ListenerConfig{{Port: 4000}} },
			expErr: "listener 0: protocol is required",
		},
		"stdio with port": {
			mutate: func(c *Config) { c.Listeners = []ListenerConfig{{Protocol: ListenerTypeStdio, Port: 23}} },
			expErr: "stdio listeners take no host or port",
		},
		"duplicate listener": {
			mutate: func(c *Config) {
				c.Listeners = append(c.Listeners, ListenerConfig{Protocol: ListenerTypeTelnet})
			},
			expErr: "listener 1: same telnet:4000 as listener 0",
		},
		"stdio needs no port": {
			mutate: func(c *Config) { c.Listeners = []ListenerConfig{{Protocol: ListenerTypeStdio}} },
		},
		"host key on telnet": {
			mutate: func(c *Config) { c.Listeners[0].HostKeyPath = "/tmp/key" },
			expErr: "only used by ssh",
		},
		"frame too short": {
			mutate: func(c *Config) { c.Game.FrameLength = "10ms" },
			expErr: "frame_length must be at least",
		},
		"bad frame": {
			mutate: func(c *Config) { c.Game.FrameLength = "soon" },
			expErr: "parsing frame_length",
		},
		"negative autosave": {
			mutate: func(c *Config) { c.Game.Autosave = "-1s" },
			expErr: "autosave must not be negative",
		},
		"autosave off": {
			mutate: func(c *Config) { c.Game.Autosave = "0s" },
		},
		"unknown preset": {
			mutate: func(c *Config) { c.Game.Balance = "brutal" },
			expErr: "unknown balance preset",
		},
		"unknown module": {
			mutate: func(c *Config) { c.Game.Modules = []string{"dragons"} },
			expErr: `unknown module "dragons"`,
		},
		"missing commands file": {
			mutate: func(c *Config) { c.Game.CommandsFile = "/nonexistent/commands.yaml" },
			expErr: "invalid path",
		},
		"negative width": {
			mutate: func(c *Config) { c.Console.Width = -1 },
			expErr: "console width must not be negative",
		},
		"missing storage path": {
			mutate: func(c *Config) { c.Storage.Path = "" },
			expErr: "storage: path is required",
		},
		"unknown backend": {
			mutate: func(c *Config) { c.Storage.Backend = "tape" },
			expErr: `unknown backend "tape"`,
		},
		"bad slot": {
			mutate: func(c *Config) { c.Storage.Slot = "../etc" },
			expErr: "must be alphanumeric",
		},
		"nats host without port": {
			mutate: func(c *Config) { c.Nats.Host = "0.0.0.0" },
			expErr: "nats host is only used with a port",
		},
		"bad nats timeout": {
			mutate: func(c *Config) { c.Nats.StartTimeout = "later" },
			expErr: "parsing start_timeout",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := validConfig(t)
			tt.mutate(&c)

			err := c.Validate()

			if tt.expErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestConfig_UnmarshalJSON(t *testing.T) {
	raw := `{
		"game": {"frame_length": "500ms", "balance": "casual", "modules": ["apiary"]},
		"listeners": [{"protocol": "ssh", "port": 2222}, {"protocol": "stdio"}],
		"storage": {"backend": "sqlite", "path": "/tmp/homestead.db", "slot": "main"}
	}`

	var c Config
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	testutil.AssertEqual(t, "listeners", len(c.Listeners), 2)
	testutil.AssertEqual(t, "ssh", c.Listeners[0].Protocol, ListenerTypeSSH)
	testutil.AssertEqual(t, "stdio", c.Listeners[1].Protocol, ListenerTypeStdio)
	testutil.AssertEqual(t, "backend", c.Storage.Backend, "sqlite")
	testutil.AssertEqual(t, "frame", c.Game.FrameLength, "500ms")

	err := json.Unmarshal([]byte(`{"listeners": [{"protocol": "gopher"}]}`), &c)
	testutil.AssertErrorContains(t, err, "unknown listener type")
}

func TestGameConfig_BuildBalance(t *testing.T) {
	dir := t.TempDir()
	override := filepath.Join(dir, "balance.yaml")
	if err := os.WriteFile(override, []byte("capacity:\n  base: 500\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tests := map[string]struct {
		cfg     GameConfig
		expBase float64
	}{
		"default":          {cfg: GameConfig{}, expBase: catalog.Default().Capacity.Base},
		"preset":           {cfg: GameConfig{Balance: "hard"}, expBase: catalog.Hard().Capacity.Base},
		"file over preset": {cfg: GameConfig{Balance: "hard", BalanceFile: override}, expBase: 500},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			b, err := tt.cfg.BuildBalance()
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			testutil.AssertEqual(t, "base", b.Capacity.Base, tt.expBase)
		})
	}
}

func TestGameConfig_BuildRegistry(t *testing.T) {
	tests := map[string]struct {
		modules      []string
		expApiary    bool
		expLivestock bool
	}{
		"all bundled by default": {expApiary: true, expLivestock: true},
		"only apiary":            {modules: []string{apiary.ID}, expApiary: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := GameConfig{Modules: tt.modules}

			reg, err := c.BuildRegistry(context.Background())
			if err != nil {
				t.Fatalf("build: %v", err)
			}

			_, hasApiary := reg.Get(apiary.ID)
			_, hasLivestock := reg.Get(livestock.ID)
			testutil.AssertEqual(t, "apiary", hasApiary, tt.expApiary)
			testutil.AssertEqual(t, "livestock", hasLivestock, tt.expLivestock)
		})
	}
}

func TestGameConfig_BuildCommands(t *testing.T) {
	c := GameConfig{}

	cmds, err := c.BuildCommands()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	_, ok := cmds["chop"]
	testutil.AssertEqual(t, "chop defined", ok, true)
}

func TestStorageConfig_BuildSlot(t *testing.T) {
	c := StorageConfig{Path: t.TempDir()}

	slot, closeFn, err := c.BuildSlot()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer closeFn()

	testutil.AssertEqual(t, "default slot", slot.Name, "homestead")
}

func TestListenerConfig_HostKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "host_ed25519")
	cl := ListenerConfig{Protocol: ListenerTypeSSH, HostKeyPath: path}

	first, err := cl.hostKey()
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	testutil.AssertEqual(t, "private mode", info.Mode().Perm(), os.FileMode(0600))

	second, err := cl.hostKey()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	testutil.AssertEqual(t, "same key across starts",
		string(second.PublicKey().Marshal()), string(first.PublicKey().Marshal()))

	if err := os.WriteFile(path, []byte("not a key"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err = cl.hostKey()
	testutil.AssertErrorContains(t, err, "parsing host key")
}

func TestListenerConfig_WorkerName(t *testing.T) {
	tests := map[string]struct {
		cfg     ListenerConfig
		expName string
	}{
		"telnet default": {cfg: ListenerConfig{Protocol: ListenerTypeTelnet}, expName: "telnet:4000"},
		"ssh default":    {cfg: ListenerConfig{Protocol: ListenerTypeSSH}, expName: "ssh:2222"},
		"explicit port":  {cfg: ListenerConfig{Protocol: ListenerTypeSSH, Port: 22}, expName: "ssh:22"},
		"stdio":          {cfg: ListenerConfig{Protocol: ListenerTypeStdio}, expName: "stdio"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "name", tt.cfg.workerName(), tt.expName)
		})
	}
}
