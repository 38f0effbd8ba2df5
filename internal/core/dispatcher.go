package core

import "sync"

// group is the set of sessions currently joined to one room.
type group map[*Session]struct{}

// Dispatcher owns room membership and delivers events to sessions.
// It is the only component that hands events to a session's outbound queue.
type Dispatcher struct {
	mu      sync.RWMutex
	groups  map[string]group
	members map[*Session]string
}

// NewDispatcher creates a dispatcher with no members.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		groups:  make(map[string]group),
		members: make(map[*Session]string),
	}
}

// Join moves s into room's group, leaving its previous group in the same
// critical section so s is never in zero or two groups.
func (d *Dispatcher) Join(s *Session, room string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if old, ok := d.members[s]; ok {
		if old == room {
			return
		}
		d.remove(s, old)
	}

	g, ok := d.groups[room]
	if !ok {
		g = make(group)
		d.groups[room] = g
	}
	g[s] = struct{}{}
	d.members[s] = room
}

// Leave removes s from whatever group it is in.
func (d *Dispatcher) Leave(s *Session) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if room, ok := d.members[s]; ok {
		d.remove(s, room)
		delete(d.members, s)
	}
}

func (d *Dispatcher) remove(s *Session, room string) {
	g := d.groups[room]
	delete(g, s)
	if len(g) == 0 {
		delete(d.groups, room)
	}
}

// RoomOf returns the group s currently belongs to.
func (d *Dispatcher) RoomOf(s *Session) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	room, ok := d.members[s]
	return room, ok
}

// Members returns the number of sessions joined to room.
func (d *Dispatcher) Members(room string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.groups[room])
}

// SendToRoom delivers ev to every session in room and returns how many
// sessions accepted it.
func (d *Dispatcher) SendToRoom(room string, ev *Event) int {
	d.mu.RLock()
	recipients := make([]*Session, 0, len(d.groups[room]))
	for s := range d.groups[room] {
		recipients = append(recipients, s)
	}
	d.mu.RUnlock()

	delivered := 0
	for _, s := range recipients {
		if s.deliver(ev) {
			delivered++
		}
	}
	return delivered
}

// SendToSession delivers ev to s only.
func (d *Dispatcher) SendToSession(s *Session, ev *Event) bool {
	return s.deliver(ev)
}
