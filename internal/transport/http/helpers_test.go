package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/nexuschat/nexuschat-server/internal/config"
	"github.com/nexuschat/nexuschat-server/internal/core"
	"github.com/nexuschat/nexuschat-server/internal/proto"
	"github.com/nexuschat/nexuschat-server/internal/store/sqlite"
)

const testAdminToken = "s3cret"

type testServer struct {
	ts  *httptest.Server
	hub *core.Hub
}

func (s *testServer) wsURL() string {
	return strings.Replace(s.ts.URL, "http", "ws", 1) + "/ws"
}

// startTestServer runs the full router on an httptest server backed by an
// in-memory store.
func startTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()

	cfg := config.Default()
	cfg.AdminToken = testAdminToken
	cfg.ReadHeaderTimeout = time.Second
	cfg.ShutdownTimeout = time.Second
	if mutate != nil {
		mutate(&cfg)
	}

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	rooms, err := core.NewRegistry(cfg.Rooms, cfg.DefaultRoom)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	hub := core.NewHub(st, rooms, core.NewAuthorizer(cfg.AdminToken),
		core.WithNameFunc(func() string { return "Test User" }),
		core.WithCooldowns(core.CooldownConfig{
			Post:    cfg.Cooldowns.Post,
			SetName: cfg.Cooldowns.SetName,
			Clear:   cfg.Cooldowns.Clear,
		}),
	)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	logger := zerolog.Nop()
	server := NewServer(hub, cfg, &logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testServer{ts: ts, hub: hub}
}

type rawOutbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Ack   int64           `json:"ack"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

// dial opens a client connection and consumes the connect snapshot.
func dial(ctx context.Context, t *testing.T, s *testServer) (*websocket.Conn, proto.Snapshot) {
	t.Helper()

	conn, _, err := websocket.Dial(ctx, s.wsURL(), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })

	return conn, readSnapshot(ctx, t, conn)
}

func readOutbound(ctx context.Context, t *testing.T, conn *websocket.Conn) rawOutbound {
	t.Helper()

	var out rawOutbound
	if err := wsjson.Read(ctx, conn, &out); err != nil {
		t.Fatalf("read outbound: %v", err)
	}
	return out
}

func readSnapshot(ctx context.Context, t *testing.T, conn *websocket.Conn) proto.Snapshot {
	t.Helper()

	out := readOutbound(ctx, t, conn)
	if out.Type != proto.OutboundTypeEvent || out.Event != proto.EventReceiveMessages {
		t.Fatalf("expected receive-messages event, got %+v", out)
	}
	var snap proto.Snapshot
	if err := json.Unmarshal(out.Data, &snap); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	return snap
}

func readAck(ctx context.Context, t *testing.T, conn *websocket.Conn, ack int64) proto.AckData {
	t.Helper()

	out := readOutbound(ctx, t, conn)
	if out.Type != proto.OutboundTypeAck || out.Ack != ack {
		t.Fatalf("expected ack %d, got %+v", ack, out)
	}
	var data proto.AckData
	if err := json.Unmarshal(out.Data, &data); err != nil {
		t.Fatalf("unmarshal ack: %v", err)
	}
	return data
}

func send(ctx context.Context, t *testing.T, conn *websocket.Conn, typ string, ack int64, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Ack: ack, Data: payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func messageTexts(msgs []proto.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Text)
	}
	return out
}
