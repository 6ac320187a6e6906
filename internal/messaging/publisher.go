package messaging

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/pixil98/go-homestead/internal/notify"
)

// NotifySubject carries every journal notification.
const NotifySubject = "homestead.notify"

type Bus interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte)) (func(), error)
}

// NatsPublisher sends notifications to NotifySubject as JSON events.
type NatsPublisher struct {
	bus Bus
	now func() time.Time
}

func NewNatsPublisher(bus Bus) *NatsPublisher {
	return &NatsPublisher{bus: bus, now: time.Now}
}

func (p *NatsPublisher) Log(msg string) {
	p.publish(notify.LevelLog, msg)
}

func (p *NatsPublisher) Warn(msg string) {
	p.publish(notify.LevelWarn, msg)
}

// Publishing never blocks the simulation; failures are only logged.
func (p *NatsPublisher) publish(level notify.Level, msg string) {
	data, err := json.Marshal(notify.NewEvent(level, msg, p.now()))
	if err != nil {
		slog.Error("marshalling notification", "error", err)
		return
	}
	if err := p.bus.Publish(NotifySubject, data); err != nil {
		slog.Debug("publishing notification", "error", err)
	}
}

// SubscribeNotifications delivers decoded events to handler until the
// returned function is called.
func SubscribeNotifications(bus Bus, handler func(notify.Event)) (func(), error) {
	unsub, err := bus.Subscribe(NotifySubject, func(data []byte) {
		var e notify.Event
		if err := json.Unmarshal(data, &e); err != nil {
			slog.Warn("dropping malformed notification", "error", err)
			return
		}
		handler(e)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribing to notifications: %w", err)
	}
	return unsub, nil
}
