package console

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pixil98/go-homestead/internal/commands"
	"github.com/pixil98/go-homestead/internal/game"
	"github.com/pixil98/go-homestead/internal/messaging"
	"github.com/pixil98/go-homestead/internal/notify"
	"github.com/pixil98/go-testutil"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) waitFor(t *testing.T, substr string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(b.String(), substr) {
		if time.Now().After(deadline) {
			t.Fatalf("output never contained %q, got %q", substr, b.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

type conn struct {
	io.Reader
	io.Writer
}

type fakeExec struct {
	mu   sync.Mutex
	seen []string
}

func (f *fakeExec) Exec(ctx context.Context, sess commands.Session, line string) error {
	f.mu.Lock()
	f.seen = append(f.seen, line)
	f.mu.Unlock()

	switch line {
	case "quit":
		return commands.ErrQuit
	case "bad":
		return game.NewUserError("You need a hoe.")
	case "boom":
		return errors.New("disk on fire")
	case "reset":
		ok, err := sess.Confirm(ctx, "Sure?")
		if err != nil {
			return err
		}
		if ok {
			_, _ = io.WriteString(sess, "reset!\n")
		} else {
			_, _ = io.WriteString(sess, "kept\n")
		}
		return nil
	default:
		_, _ = fmt.Fprintf(sess, "did %s\n", line)
		return nil
	}
}

func (f *fakeExec) lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.seen...)
}

func TestSession_Run(t *testing.T) {
	tests := map[string]struct {
		input       string
		expContains []string
		expSeen     []string
	}{
		"commands run in order": {
			input:       "chop\ntill\n",
			expContains: []string{"did chop", "did till"},
			expSeen:     []string{"chop", "till"},
		},
		"quit stops reading": {
			input:       "chop\nquit\nforage\n",
			expContains: []string{"did chop"},
			expSeen:     []string{"chop", "quit"},
		},
		"user error shown": {
			input:       "bad\n",
			expContains: []string{"You need a hoe."},
			expSeen:     []string{"bad"},
		},
		"failure keeps session": {
			input:       "boom\nchop\n",
			expContains: []string{"Something went wrong", "did chop"},
			expSeen:     []string{"boom", "chop"},
		},
		"confirm yes after retry": {
			input:       "reset\nmaybe\nyes\n",
			expContains: []string{"Sure? (yes/no) ", "Enter 'yes' or 'no'.", "reset!"},
			expSeen:     []string{"reset"},
		},
		"confirm no": {
			input:       "reset\nn\n",
			expContains: []string{"kept"},
			expSeen:     []string{"reset"},
		},
		"confirm gives up": {
			input:       "reset\na\nb\nc\nchop\n",
			expContains: []string{"Too many tries.", "did chop"},
			expSeen:     []string{"reset", "chop"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			exec := &fakeExec{}
			out := &syncBuffer{}
			sess := newSession(conn{Reader: strings.NewReader(tt.input), Writer: out}, exec, 0)

			err := sess.Run(context.Background())

			if err != nil {
				t.Fatalf("run: %v", err)
			}
			testutil.AssertEqual(t, "seen", strings.Join(exec.lines(), ","), strings.Join(tt.expSeen, ","))
			for _, s := range tt.expContains {
				testutil.AssertEqual(t, "contains "+s, strings.Contains(out.String(), s), true)
			}
		})
	}
}

func TestSession_Notify(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	out := &syncBuffer{}
	sess := newSession(conn{Reader: pr, Writer: out}, &fakeExec{}, 0)

	sess.Notify(notify.NewEvent(notify.LevelWarn, "Storage is full.", time.Now()))
	sess.Notify(notify.NewEvent(notify.LevelLog, "Eggs are ready.", time.Now()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx) }()

	out.waitFor(t, "⚠️ Storage is full.")
	out.waitFor(t, "Eggs are ready.")

	cancel()
	err := <-done
	testutil.AssertEqual(t, "canceled", errors.Is(err, context.Canceled), true)
	testutil.AssertEqual(t, "goodbye", strings.Contains(out.String(), "shutting down"), true)
}

func TestSession_NotifyDropsWhenFull(t *testing.T) {
	sess := newSession(conn{Reader: strings.NewReader(""), Writer: io.Discard}, &fakeExec{}, 0)

	for range eventBuffer + 10 {
		sess.Notify(notify.NewEvent(notify.LevelLog, "x", time.Now()))
	}

	testutil.AssertEqual(t, "queued", len(sess.events), eventBuffer)
}

type lineFeed []string

func (l *lineFeed) ReadLine(context.Context) (string, error) {
	if len(*l) == 0 {
		return "", io.EOF
	}
	line := (*l)[0]
	*l = (*l)[1:]
	return line, nil
}

func TestPromptYN(t *testing.T) {
	tests := map[string]struct {
		input  []string
		exp    bool
		expErr error
	}{
		"yes":            {input: []string{"yes"}, exp: true},
		"short yes":      {input: []string{" Y "}, exp: true},
		"no":             {input: []string{"no"}},
		"retry then yes": {input: []string{"sure", "y"}, exp: true},
		"too many tries": {input: []string{"a", "b", "c", "y"}, expErr: ErrTooManyTries},
		"input closed":   {input: nil, expErr: io.EOF},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			feed := lineFeed(tt.input)
			var out bytes.Buffer

			got, err := PromptYN(context.Background(), &out, &feed, "Really? ")

			testutil.AssertEqual(t, "error", errors.Is(err, tt.expErr), true)
			testutil.AssertEqual(t, "answer", got, tt.exp)
			testutil.AssertEqual(t, "prompted", strings.HasPrefix(out.String(), "Really? "), true)
		})
	}
}

func TestManager_RunSession(t *testing.T) {
	bus := &memoryBus{}
	exec := &fakeExec{}
	m := NewManager(exec, WithBus(bus), WithStartup("status"), WithWidth(0))

	pr, pw := io.Pipe()
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- m.RunSession(context.Background(), conn{Reader: pr, Writer: out}) }()

	out.waitFor(t, "did status")
	testutil.AssertEqual(t, "sessions", m.Sessions(), 1)

	messaging.NewNatsPublisher(bus).Log("The hens laid 3 eggs.")
	out.waitFor(t, "The hens laid 3 eggs.")

	_, _ = io.WriteString(pw, "quit\n")
	if err := <-done; err != nil {
		t.Fatalf("run session: %v", err)
	}
	_ = pw.Close()

	testutil.AssertEqual(t, "welcome", strings.HasPrefix(out.String(), "Welcome"), true)
	testutil.AssertEqual(t, "sessions after", m.Sessions(), 0)
	testutil.AssertEqual(t, "unsubscribed", bus.count(), 0)
}

type memoryBus struct {
	mu       sync.Mutex
	handlers map[int]func([]byte)
	next     int
}

func (b *memoryBus) Publish(_ string, data []byte) error {
	b.mu.Lock()
	hs := make([]func([]byte), 0, len(b.handlers))
	for _, h := range b.handlers {
		hs = append(hs, h)
	}
	b.mu.Unlock()
	for _, h := range hs {
		h(data)
	}
	return nil
}

func (b *memoryBus) Subscribe(_ string, handler func([]byte)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers == nil {
		b.handlers = map[int]func([]byte){}
	}
	id := b.next
	b.next++
	b.handlers[id] = handler
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	}, nil
}

func (b *memoryBus) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}
