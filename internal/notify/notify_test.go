package notify

import (
	"fmt"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

type recorder struct {
	got []string
}

func (r *recorder) Log(msg string)  { r.got = append(r.got, "log:"+msg) }
func (r *recorder) Warn(msg string) { r.got = append(r.got, "warn:"+msg) }

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC) }
}

func TestJournal(t *testing.T) {
	j := NewJournal(WithClock(fixedClock()))

	j.Log("first")
	j.Warn("careful")

	lines := j.Lines(0)
	testutil.AssertEqual(t, "count", len(lines), 2)
	testutil.AssertEqual(t, "newest first", lines[0], "[15:04:05] ⚠️ careful")
	testutil.AssertEqual(t, "oldest last", lines[1], "[15:04:05] first")
}

func TestJournal_Limit(t *testing.T) {
	tests := map[string]struct {
		limit    int
		writes   int
		request  int
		expCount int
		expFirst string
	}{
		"default keeps 200": {
			writes:   250,
			expCount: 200,
			expFirst: "[15:04:05] line 249",
		},
		"custom limit": {
			limit:    3,
			writes:   5,
			expCount: 3,
			expFirst: "[15:04:05] line 4",
		},
		"partial request": {
			writes:   10,
			request:  4,
			expCount: 4,
			expFirst: "[15:04:05] line 9",
		},
		"request past end": {
			writes:   2,
			request:  10,
			expCount: 2,
			expFirst: "[15:04:05] line 1",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			opts := []JournalOpt{WithClock(fixedClock())}
			if tt.limit > 0 {
				opts = append(opts, WithLimit(tt.limit))
			}
			j := NewJournal(opts...)
			for i := range tt.writes {
				j.Log(fmt.Sprintf("line %d", i))
			}

			lines := j.Lines(tt.request)
			testutil.AssertEqual(t, "count", len(lines), tt.expCount)
			testutil.AssertEqual(t, "first", lines[0], tt.expFirst)
		})
	}
}

func TestJournal_Restore(t *testing.T) {
	j := NewJournal(WithLimit(2))

	j.Restore([]string{"c", "b", "a"})
	testutil.AssertEqual(t, "truncated", len(j.Lines(0)), 2)

	j.Clear()
	testutil.AssertEqual(t, "cleared", len(j.Lines(0)), 0)
}

func TestFanout(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	f := Fanout{a, b, Logger{}}

	f.Log("hello")
	f.Warn("full")

	testutil.AssertEqual(t, "a", len(a.got), 2)
	testutil.AssertEqual(t, "b order", b.got[0]+" "+b.got[1], "log:hello warn:full")
}

func TestNewEvent(t *testing.T) {
	at := time.Now()
	e1 := NewEvent(LevelWarn, "x", at)
	e2 := NewEvent(LevelWarn, "x", at)

	testutil.AssertEqual(t, "unique ids", e1.ID != e2.ID, true)
	testutil.AssertEqual(t, "level", e1.Level, LevelWarn)
}
