package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandPostMessage appends a message to the session's current room.
	CommandPostMessage CommandKind = iota
	// CommandJoinRoom moves the session to another room.
	CommandJoinRoom
	// CommandSetName replaces the session's display name.
	CommandSetName
	// CommandVerifyAdmin checks an admin token without side effects.
	CommandVerifyAdmin
	// CommandClearRoom deletes a room's history.
	CommandClearRoom
)

// Command represents an action requested by a client.
type Command struct {
	Kind  CommandKind
	Text  string
	Room  string
	Name  string
	Token string

	// UseCurrentRoom makes CommandClearRoom target the session's room
	// when the client did not name one.
	UseCurrentRoom bool

	// Ack is the client's acknowledgement id; 0 means no reply is wanted.
	Ack int64
}
