package core

import "context"

// Session is one live connection as seen by the core layer.
// Name, Room and the cooldown state are owned by the goroutine running
// Hub.Serve for this session.
type Session struct {
	ID       string
	Name     string
	Room     string
	Commands chan *Command
	Events   chan *Event

	cooldowns *Cooldowns
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewSession constructs a session with initialized channels.
func NewSession(id string) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:       id,
		Commands: make(chan *Command, 16),
		Events:   make(chan *Event, 32),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Done is closed once the session is unregistered.
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

// deliver queues ev without blocking. Events for a closed session or a
// full queue are dropped.
func (s *Session) deliver(ev *Event) bool {
	select {
	case <-s.ctx.Done():
		return false
	default:
	}
	select {
	case s.Events <- ev:
		return true
	default:
		return false
	}
}
