package core

import "testing"

func TestDispatcherJoinMovesBetweenGroups(t *testing.T) {
	d := NewDispatcher()
	s := NewSession("a")

	d.Join(s, "general")
	d.Join(s, "support")

	if d.Members("general") != 0 || d.Members("support") != 1 {
		t.Fatalf("session must be in exactly one group: general=%d support=%d", d.Members("general"), d.Members("support"))
	}
	if room, _ := d.RoomOf(s); room != "support" {
		t.Fatalf("RoomOf = %q", room)
	}

	d.Join(s, "support")
	if d.Members("support") != 1 {
		t.Fatal("re-joining the same room must not duplicate membership")
	}

	d.Leave(s)
	if _, ok := d.RoomOf(s); ok || d.Members("support") != 0 {
		t.Fatal("leave did not remove the session")
	}
}

func TestDispatcherSendToRoom(t *testing.T) {
	d := NewDispatcher()
	a, b, c := NewSession("a"), NewSession("b"), NewSession("c")
	d.Join(a, "general")
	d.Join(b, "general")
	d.Join(c, "random")

	ev := &Event{Kind: EventSnapshot, Snapshot: &Snapshot{CurrentRoom: "general"}}
	if n := d.SendToRoom("general", ev); n != 2 {
		t.Fatalf("delivered to %d sessions, want 2", n)
	}
	mustEvent(t, a.Events, EventSnapshot)
	mustEvent(t, b.Events, EventSnapshot)
	mustNoEvent(t, c.Events)

	if n := d.SendToRoom("support", ev); n != 0 {
		t.Fatalf("empty room delivered to %d", n)
	}
}

func TestDispatcherSkipsClosedAndFullSessions(t *testing.T) {
	d := NewDispatcher()
	closed, full := NewSession("closed"), NewSession("full")
	d.Join(closed, "general")
	d.Join(full, "general")

	closed.cancel()
	for range cap(full.Events) {
		full.Events <- &Event{}
	}

	if n := d.SendToRoom("general", &Event{Kind: EventSnapshot}); n != 0 {
		t.Fatalf("expected no deliveries, got %d", n)
	}
	if d.SendToSession(closed, &Event{}) {
		t.Fatal("closed session accepted an event")
	}
}
