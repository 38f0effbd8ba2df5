package core

import (
	"context"

	"github.com/nexuschat/nexuschat-server/internal/store"
)

// WindowSize is the number of most recent messages a snapshot carries.
const WindowSize = 100

// window reads the newest messages of room. Callers hold logMu.
func (h *Hub) window(ctx context.Context, room string) ([]*store.Message, error) {
	msgs, err := h.store.ListMessages(ctx, room, WindowSize)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []*store.Message{}
	}
	return msgs, nil
}

func (h *Hub) snapshotEvent(room string, msgs []*store.Message, displayName string) *Event {
	return &Event{
		Kind: EventSnapshot,
		Snapshot: &Snapshot{
			Messages:    msgs,
			Rooms:       h.rooms.Rooms(),
			CurrentRoom: room,
			DisplayName: displayName,
		},
	}
}
