package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nexuschat/nexuschat-server/internal/store"
	"github.com/nexuschat/nexuschat-server/internal/store/sqlite"
)

const testSecret = "s3cret"

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func mustNoEvent(t *testing.T, ch <-chan *Event) {
	t.Helper()

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func newTestStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	reg, err := NewRegistry([]string{"general", "support", "random"}, "general")
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}
	return reg
}

func newTestHub(t *testing.T, st store.MessageStore, secret string, opts ...Option) *Hub {
	t.Helper()

	if st == nil {
		st = newTestStore(t)
	}
	opts = append([]Option{WithNameFunc(func() string { return "Test User" })}, opts...)
	return NewHub(st, newTestRegistry(t), NewAuthorizer(secret), opts...)
}

// connect registers a session and consumes its initial snapshot.
func connect(t *testing.T, h *Hub, id string) (*Session, *Snapshot) {
	t.Helper()

	s := NewSession(id)
	h.RegisterSession(context.Background(), s)
	t.Cleanup(func() { h.UnregisterSession(s) })

	ev := mustEvent(t, s.Events, EventSnapshot)
	return s, ev.Snapshot
}

func texts(msgs []*store.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Text)
	}
	return out
}

func containsText(msgs []*store.Message, text string) bool {
	for _, m := range msgs {
		if m.Text == text {
			return true
		}
	}
	return false
}

func mustFetch(t *testing.T, h *Hub, room string) []*store.Message {
	t.Helper()

	msgs, err := h.FetchWindow(context.Background(), room)
	if err != nil {
		t.Fatalf("fetch window %q: %v", room, err)
	}
	return msgs
}

// failingStore reports an error from every operation.
type failingStore struct {
	err error
}

func (f failingStore) SaveMessage(context.Context, *store.Message) error { return f.err }

func (f failingStore) ListMessages(context.Context, string, int) ([]*store.Message, error) {
	return nil, f.err
}

func (f failingStore) DeleteRoomMessages(context.Context, string) (int64, error) { return 0, f.err }

var errDiskFull = errors.New("disk full")
