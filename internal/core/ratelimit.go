package core

import "time"

// Action is a rate-limited kind of session action.
type Action int

const (
	ActionPost Action = iota
	ActionSetName
	ActionClear
)

func (a Action) String() string {
	switch a {
	case ActionPost:
		return "post"
	case ActionSetName:
		return "set-name"
	case ActionClear:
		return "clear"
	default:
		return "unknown"
	}
}

// CooldownConfig holds the minimum interval per action kind.
type CooldownConfig struct {
	Post    time.Duration
	SetName time.Duration
	Clear   time.Duration
}

// DefaultCooldowns mirrors the intervals the public deployment runs with.
func DefaultCooldowns() CooldownConfig {
	return CooldownConfig{
		Post:    300 * time.Millisecond,
		SetName: time.Second,
		Clear:   5 * time.Second,
	}
}

func (c CooldownConfig) interval(a Action) time.Duration {
	switch a {
	case ActionPost:
		return c.Post
	case ActionSetName:
		return c.SetName
	case ActionClear:
		return c.Clear
	default:
		return 0
	}
}

// Cooldowns gates one session's actions. It is owned by the session's
// goroutine and needs no locking.
type Cooldowns struct {
	cfg  CooldownConfig
	now  func() time.Time
	last map[Action]time.Time
}

func newCooldowns(cfg CooldownConfig, now func() time.Time) *Cooldowns {
	if now == nil {
		now = time.Now
	}
	return &Cooldowns{cfg: cfg, now: now, last: make(map[Action]time.Time, 3)}
}

// Ready reports whether the interval for a has elapsed since its last stamp.
func (c *Cooldowns) Ready(a Action) bool {
	last, ok := c.last[a]
	if !ok {
		return true
	}
	return c.now().Sub(last) >= c.cfg.interval(a)
}

// Mark stamps a as performed now.
func (c *Cooldowns) Mark(a Action) {
	c.last[a] = c.now()
}

// Allow is Ready followed by Mark on success.
func (c *Cooldowns) Allow(a Action) bool {
	if !c.Ready(a) {
		return false
	}
	c.Mark(a)
	return true
}
