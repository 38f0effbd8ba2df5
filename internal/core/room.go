package core

import (
	"fmt"
	"slices"
)

// Registry is the fixed allow-list of rooms. It is immutable after construction
// and safe for concurrent use.
type Registry struct {
	rooms       []string
	index       map[string]struct{}
	defaultRoom string
}

// NewRegistry validates the allow-list and the default room.
// Room identifiers must already be in normalized form.
func NewRegistry(rooms []string, defaultRoom string) (*Registry, error) {
	if len(rooms) == 0 {
		return nil, fmt.Errorf("room list is empty")
	}

	index := make(map[string]struct{}, len(rooms))
	for _, room := range rooms {
		if room == "" || NormalizeRoom(room) != room {
			return nil, fmt.Errorf("room %q is not a normalized identifier", room)
		}
		if _, dup := index[room]; dup {
			return nil, fmt.Errorf("room %q listed twice", room)
		}
		index[room] = struct{}{}
	}
	if _, ok := index[defaultRoom]; !ok {
		return nil, fmt.Errorf("default room %q is not in the room list", defaultRoom)
	}

	return &Registry{
		rooms:       slices.Clone(rooms),
		index:       index,
		defaultRoom: defaultRoom,
	}, nil
}

// Has reports whether room is in the allow-list.
func (r *Registry) Has(room string) bool {
	_, ok := r.index[room]
	return ok
}

// Rooms returns a copy of the ordered allow-list.
func (r *Registry) Rooms() []string {
	return slices.Clone(r.rooms)
}

// Default returns the room new sessions start in.
func (r *Registry) Default() string {
	return r.defaultRoom
}

// Resolve normalizes a requested room key and reports whether it names an allowed room.
func (r *Registry) Resolve(raw string) (string, bool) {
	room := NormalizeRoom(raw)
	if room == "" || !r.Has(room) {
		return "", false
	}
	return room, true
}
