package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-homestead/internal/commands"
	"github.com/pixil98/go-homestead/internal/console"
	"github.com/pixil98/go-homestead/internal/driver"
	"github.com/pixil98/go-homestead/internal/game"
	"github.com/pixil98/go-homestead/internal/listener"
	"github.com/pixil98/go-homestead/internal/messaging"
	"github.com/pixil98/go-homestead/internal/notify"
	"github.com/pixil98/go-homestead/internal/plugins"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}
	ctx := context.Background()

	// Notifications reach consoles through the embedded nats server
	natsServer, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, err
	}

	balance, err := cfg.Game.BuildBalance()
	if err != nil {
		return nil, fmt.Errorf("building balance: %w", err)
	}

	journal := notify.NewJournal()
	home := game.NewHomestead(
		game.WithBalance(balance),
		game.WithNotifier(notify.Fanout{journal, notify.Logger{}, messaging.NewNatsPublisher(natsServer)}),
	)

	registry, err := cfg.Game.BuildRegistry(ctx)
	if err != nil {
		return nil, fmt.Errorf("building modules: %w", err)
	}

	slot, closeStore, err := cfg.Storage.BuildSlot()
	if err != nil {
		return nil, err
	}

	// Setup the homestead driver
	opts, err := cfg.Game.DriverOpts()
	if err != nil {
		return nil, err
	}
	opts = append(opts, driver.WithPersister(slot), driver.WithJournal(journal))
	drv := driver.NewDriver(home, plugins.NewDispatcher(registry, home), opts...)

	cmds, err := cfg.Game.BuildCommands()
	if err != nil {
		return nil, fmt.Errorf("loading commands: %w", err)
	}
	handler := commands.NewHandler(cmds, drv)
	if err := handler.CompileAll(); err != nil {
		return nil, fmt.Errorf("compiling commands: %w", err)
	}

	consoleOpts := []console.ManagerOpt{console.WithBus(natsServer)}
	if cfg.Console.Width > 0 {
		consoleOpts = append(consoleOpts, console.WithWidth(cfg.Console.Width))
	}
	consoles := console.NewManager(handler, consoleOpts...)
	cm := listener.NewConnectionManager(consoles, cfg.Console.MaxSessions)

	// Create Listeners
	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		listener, err := l.BuildListener(cm)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[l.workerName()] = listener
	}

	return service.WorkerList{
		"nats":      natsServer,
		"driver":    &storeWorker{driver: drv, close: closeStore},
		"listeners": &listeners,
	}, nil
}

// storeWorker runs the driver and releases the save store once the final
// save has been written.
type storeWorker struct {
	driver *driver.Driver
	close  func() error
}

func (w *storeWorker) Start(ctx context.Context) error {
	err := w.driver.Start(ctx)
	if cerr := w.close(); cerr != nil {
		slog.Error("closing save store", "error", cerr)
	}
	return err
}
