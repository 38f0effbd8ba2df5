package core

import "github.com/nexuschat/nexuschat-server/internal/store"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventSnapshot brings a session's view of a room up to date.
	EventSnapshot EventKind = iota
	// EventAck answers a command that carried an acknowledgement id.
	EventAck
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind     EventKind
	Snapshot *Snapshot // EventSnapshot
	Ack      int64     // EventAck
	Result   *Result   // EventAck
}

// Snapshot is the room view sent on connect, on join and after every write.
// DisplayName is only set on the initial per-session snapshot.
type Snapshot struct {
	Messages    []*store.Message
	Rooms       []string
	CurrentRoom string
	DisplayName string
}

// Result is the outcome of an acknowledged command.
type Result struct {
	OK       bool
	Username string
	Err      *CoreError
}
