// Package notify carries player facing log lines and warnings.
package notify

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type Notifier interface {
	Log(msg string)
	Warn(msg string)
}

type Level string

const (
	LevelLog  Level = "log"
	LevelWarn Level = "warn"
)

// Event is one notification as sent to subscribers.
type Event struct {
	ID      uuid.UUID `json:"id"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

func NewEvent(level Level, msg string, at time.Time) Event {
	return Event{ID: uuid.New(), Level: level, Message: msg, Time: at}
}

// Logger writes notifications to the process log.
type Logger struct{}

func (Logger) Log(msg string) {
	slog.Info("journal", "message", msg)
}

func (Logger) Warn(msg string) {
	slog.Warn("journal", "message", msg)
}

// Fanout forwards every notification to each of its notifiers in order.
type Fanout []Notifier

func (f Fanout) Log(msg string) {
	for _, n := range f {
		n.Log(msg)
	}
}

func (f Fanout) Warn(msg string) {
	for _, n := range f {
		n.Warn(msg)
	}
}
