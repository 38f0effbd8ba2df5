package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nexuschat/nexuschat-server/internal/store"
)

// NameFunc supplies the initial display name of a new session.
type NameFunc func() string

// Hub coordinates sessions, rooms and the message log.
type Hub struct {
	store     store.MessageStore
	rooms     *Registry
	auth      *Authorizer
	dispatch  *Dispatcher
	names     NameFunc
	cooldowns CooldownConfig
	now       func() time.Time
	log       *zerolog.Logger

	// logMu serializes writes to the message log. Post and clear hold it
	// across write, window read and broadcast; reads share it.
	logMu sync.RWMutex

	mu       sync.Mutex
	sessions map[*Session]struct{}
}

// Option customizes a Hub.
type Option func(*Hub)

// WithLogger sets the hub logger.
func WithLogger(l *zerolog.Logger) Option {
	return func(h *Hub) { h.log = l }
}

// WithNameFunc sets the display name supplier.
func WithNameFunc(fn NameFunc) Option {
	return func(h *Hub) { h.names = fn }
}

// WithCooldowns overrides the per-action cooldown windows.
func WithCooldowns(cfg CooldownConfig) Option {
	return func(h *Hub) { h.cooldowns = cfg }
}

// WithClock replaces time.Now for timestamps and cooldowns.
func WithClock(now func() time.Time) Option {
	return func(h *Hub) { h.now = now }
}

// NewHub creates a new chat hub instance.
func NewHub(st store.MessageStore, rooms *Registry, auth *Authorizer, opts ...Option) *Hub {
	nop := zerolog.Nop()
	h := &Hub{
		store:     st,
		rooms:     rooms,
		auth:      auth,
		dispatch:  NewDispatcher(),
		cooldowns: DefaultCooldowns(),
		now:       time.Now,
		log:       &nop,
		sessions:  make(map[*Session]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Rooms returns the room registry.
func (h *Hub) Rooms() *Registry {
	return h.rooms
}

// Dispatcher returns the broadcast dispatcher.
func (h *Hub) Dispatcher() *Dispatcher {
	return h.dispatch
}

// Run blocks until ctx is cancelled, then unregisters every session.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		h.UnregisterSession(s)
	}
	h.log.Info().Int("sessions", len(sessions)).Msg("hub stopped")
}

// RegisterSession assigns a display name and the default room, joins that
// room's group and sends the session its first snapshot.
func (h *Hub) RegisterSession(ctx context.Context, s *Session) {
	name := ""
	if h.names != nil {
		name = h.names()
	}
	if name == "" {
		name = "guest-" + truncate(s.ID, 8)
	}
	s.Name = name
	s.Room = h.rooms.Default()
	s.cooldowns = newCooldowns(h.cooldowns, h.now)

	h.mu.Lock()
	h.sessions[s] = struct{}{}
	h.mu.Unlock()

	// The snapshot is queued before the read lock is released so a
	// concurrent post's broadcast cannot overtake it.
	h.logMu.RLock()
	h.dispatch.Join(s, s.Room)
	msgs, err := h.window(ctx, s.Room)
	if err != nil {
		h.log.Error().Err(err).Str("session_id", s.ID).Str("room", s.Room).Msg("load window on connect")
		msgs = []*store.Message{}
	}
	h.dispatch.SendToSession(s, h.snapshotEvent(s.Room, msgs, s.Name))
	h.logMu.RUnlock()

	h.log.Info().Str("session_id", s.ID).Str("user", s.Name).Msg("session connected")
}

// UnregisterSession removes s from its group and stops its processing.
// It is safe to call more than once.
func (h *Hub) UnregisterSession(s *Session) {
	h.mu.Lock()
	_, ok := h.sessions[s]
	delete(h.sessions, s)
	h.mu.Unlock()

	h.dispatch.Leave(s)
	s.cancel()

	if ok {
		h.log.Info().Str("session_id", s.ID).Msg("session disconnected")
	}
}

// Serve handles s's commands one at a time in arrival order until s is
// unregistered. Commands still queued at that point are discarded.
func (h *Hub) Serve(s *Session) {
	for {
		select {
		case <-s.Done():
			return
		case cmd := <-s.Commands:
			select {
			case <-s.Done():
				return
			default:
			}
			if cmd != nil {
				h.handle(s, cmd)
			}
		}
	}
}

func (h *Hub) handle(s *Session, cmd *Command) {
	// Admitted writes complete even if the session disconnects meanwhile.
	ctx := context.WithoutCancel(s.ctx)

	switch cmd.Kind {
	case CommandPostMessage:
		if err := h.PostMessage(ctx, s, cmd.Text); err != nil {
			h.log.Debug().Err(err).Str("session_id", s.ID).Msg("post dropped")
		}
	case CommandJoinRoom:
		h.JoinRoom(ctx, s, cmd.Room)
	case CommandSetName:
		name, err := h.SetDisplayName(s, cmd.Name)
		h.reply(s, cmd.Ack, resultOf(err, name))
	case CommandVerifyAdmin:
		h.reply(s, cmd.Ack, &Result{OK: h.VerifyAdmin(cmd.Token)})
	case CommandClearRoom:
		room := cmd.Room
		if cmd.UseCurrentRoom {
			room = s.Room
		}
		h.reply(s, cmd.Ack, resultOf(h.ClearRoom(ctx, s, room, cmd.Token), ""))
	default:
		h.log.Warn().Int("kind", int(cmd.Kind)).Str("session_id", s.ID).Msg("unknown command")
	}
}

func resultOf(err error, username string) *Result {
	if err == nil {
		return &Result{OK: true, Username: username}
	}
	var ce *CoreError
	if !errors.As(err, &ce) {
		ce = coreError(ErrCodeBadRequest, "Unexpected error.", err)
	}
	return &Result{OK: false, Err: ce}
}

func (h *Hub) reply(s *Session, ack int64, res *Result) {
	if ack <= 0 {
		return
	}
	h.dispatch.SendToSession(s, &Event{Kind: EventAck, Ack: ack, Result: res})
}

// SetDisplayName validates and applies a new display name for s and returns
// the stored, escaped form.
func (h *Hub) SetDisplayName(s *Session, raw string) (string, error) {
	if !s.cooldowns.Allow(ActionSetName) {
		return "", rateLimitError("Rate limited. Try again shortly.")
	}

	name := NormalizeName(raw)
	if name == "" {
		return "", validationError("Name cannot be empty.")
	}
	name = EscapeHTML(truncate(name, MaxNameLength))

	s.Name = name
	h.log.Info().Str("session_id", s.ID).Str("user", name).Msg("display name changed")
	return name, nil
}

// JoinRoom moves s to the requested room and sends it a snapshot. Invalid,
// unknown or unchanged rooms are ignored and false is returned.
func (h *Hub) JoinRoom(ctx context.Context, s *Session, raw string) bool {
	room, ok := h.rooms.Resolve(raw)
	if !ok || room == s.Room {
		return false
	}

	h.logMu.RLock()
	msgs, err := h.window(ctx, room)
	if err != nil {
		h.logMu.RUnlock()
		h.log.Error().Err(err).Str("session_id", s.ID).Str("room", room).Msg("load window on join")
		return false
	}
	h.dispatch.Join(s, room)
	s.Room = room
	h.dispatch.SendToSession(s, h.snapshotEvent(room, msgs, ""))
	h.logMu.RUnlock()

	return true
}

// PostMessage appends a message to s's current room and broadcasts the
// room's updated window to all of its members.
func (h *Hub) PostMessage(ctx context.Context, s *Session, raw string) error {
	if !s.cooldowns.Allow(ActionPost) {
		return rateLimitError("Rate limited.")
	}

	text := NormalizeMessage(raw)
	if text == "" {
		return validationError("Message cannot be empty.")
	}

	msg := &store.Message{
		Room:      s.Room,
		Author:    s.Name,
		Text:      text,
		CreatedAt: h.now().UTC(),
	}

	h.logMu.Lock()
	defer h.logMu.Unlock()

	if err := h.store.SaveMessage(ctx, msg); err != nil {
		h.log.Error().Err(err).Str("session_id", s.ID).Str("room", msg.Room).Msg("save message")
		return persistenceError("Failed to save message.", err)
	}

	msgs, err := h.window(ctx, msg.Room)
	if err != nil {
		h.log.Error().Err(err).Str("room", msg.Room).Msg("load window after post")
		return nil
	}
	h.dispatch.SendToRoom(msg.Room, h.snapshotEvent(msg.Room, msgs, ""))
	return nil
}

// FetchWindow returns up to WindowSize messages of room, newest first.
func (h *Hub) FetchWindow(ctx context.Context, room string) ([]*store.Message, error) {
	if !h.rooms.Has(room) {
		return nil, validationError("Invalid room.")
	}

	h.logMu.RLock()
	defer h.logMu.RUnlock()

	msgs, err := h.window(ctx, room)
	if err != nil {
		return nil, persistenceError("Failed to load messages.", err)
	}
	return msgs, nil
}

// VerifyAdmin reports whether token is the admin secret.
func (h *Hub) VerifyAdmin(token string) bool {
	return h.auth.Verify(token)
}

// ClearRoom deletes every message of the requested room on behalf of s and
// broadcasts the empty window to the room.
func (h *Hub) ClearRoom(ctx context.Context, s *Session, rawRoom, token string) error {
	if !s.cooldowns.Ready(ActionClear) {
		return rateLimitError("Rate limited. Try again later.")
	}

	room, ok := h.rooms.Resolve(rawRoom)
	if !ok {
		return validationError("Invalid room.")
	}
	if !h.auth.Verify(token) {
		h.log.Warn().Str("session_id", s.ID).Str("room", room).Msg("clear room denied")
		return authorizationError()
	}
	s.cooldowns.Mark(ActionClear)

	h.logMu.Lock()
	defer h.logMu.Unlock()

	n, err := h.store.DeleteRoomMessages(ctx, room)
	if err != nil {
		h.log.Error().Err(err).Str("room", room).Msg("clear room")
		return persistenceError("Failed to clear room.", err)
	}
	h.log.Info().Str("session_id", s.ID).Str("user", s.Name).Str("room", room).Int64("deleted", n).Msg("room cleared")

	h.dispatch.SendToRoom(room, h.snapshotEvent(room, []*store.Message{}, ""))
	return nil
}
