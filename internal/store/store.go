package store

import (
	"context"
	"time"
)

// TimeLayout is the ISO-8601 form message timestamps are persisted and sent in.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Message represents a persisted chat message.
type Message struct {
	ID        int64
	Room      string
	Author    string
	Text      string
	CreatedAt time.Time
}

// MessageStore handles message persistence.
type MessageStore interface {
	// SaveMessage persists a message and sets its ID.
	SaveMessage(ctx context.Context, msg *Message) error

	// ListMessages returns up to limit messages of a room, newest first.
	ListMessages(ctx context.Context, room string, limit int) ([]*Message, error)

	// DeleteRoomMessages removes every message of a room and returns how many were deleted.
	DeleteRoomMessages(ctx context.Context, room string) (int64, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	MessageStore

	// MessageRooms returns the distinct rooms that hold at least one message.
	MessageRooms(ctx context.Context) ([]string, error)

	// Close closes the underlying database connection.
	Close() error
}
