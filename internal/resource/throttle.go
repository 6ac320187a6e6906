package resource

import "time"

// DefaultWarnCooldown is the minimum gap between two capacity warnings of
// the same exhaustion class.
const DefaultWarnCooldown = 2 * time.Second

// Throttle rate-limits notifications per exhaustion class.
type Throttle struct {
	cooldown time.Duration
	now      func() time.Time
	last     map[Class]time.Time
}

func NewThrottle(cooldown time.Duration, now func() time.Time) *Throttle {
	if now == nil {
		now = time.Now
	}
	return &Throttle{
		cooldown: cooldown,
		now:      now,
		last:     map[Class]time.Time{},
	}
}

// Allow reports whether a notification for class may be emitted now, and
// records the emission if so.
func (t *Throttle) Allow(class Class) bool {
	now := t.now()
	if last, ok := t.last[class]; ok && now.Sub(last) < t.cooldown {
		return false
	}
	t.last[class] = now
	return true
}
