package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
// A positive Ack asks the server to answer with an OutboundTypeAck envelope.
type Inbound struct {
	Type string          `json:"type"`
	Ack  int64           `json:"ack,omitempty"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypePostMessage = "post-message"
	InboundTypeJoinRoom    = "join-room"
	InboundTypeSetUsername = "set-username"
	InboundTypeVerifyAdmin = "verify-admin"
	InboundTypeClearRoom   = "clear-room"

	OutboundTypeEvent = "event"
	OutboundTypeAck   = "ack"
	OutboundTypeError = "error"

	EventReceiveMessages = "receive-messages"
)

// PostMessageData carries a chat message from the client.
type PostMessageData struct {
	Message string `json:"message"`
}

// JoinRoomData requests a switch to another room.
type JoinRoomData struct {
	Room string `json:"room"`
}

// SetUsernameData requests a new display name.
type SetUsernameData struct {
	Username string `json:"username"`
}

// VerifyAdminData carries an admin token to check.
type VerifyAdminData struct {
	Token string `json:"token"`
}

// ClearRoomData requests a room purge. A nil Room targets the sender's current room.
type ClearRoomData struct {
	Room  *string `json:"room,omitempty"`
	Token string  `json:"token"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Ack   int64  `json:"ack,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Message is a persisted chat message as sent to clients.
type Message struct {
	ID        int64  `json:"id"`
	Author    string `json:"author"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
	Room      string `json:"room"`
}

// Snapshot is the payload of a receive-messages event.
type Snapshot struct {
	Messages    []Message `json:"messages"`
	Rooms       []string  `json:"rooms"`
	CurrentRoom string    `json:"currentRoom"`
	DisplayName string    `json:"displayName,omitempty"`
}

// AckData answers an acknowledged request.
type AckData struct {
	OK       bool   `json:"ok"`
	Username string `json:"username,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
