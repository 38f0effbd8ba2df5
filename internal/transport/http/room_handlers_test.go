package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/nexuschat/nexuschat-server/internal/config"
	"github.com/nexuschat/nexuschat-server/internal/core"
)

func getJSON(t *testing.T, s *testServer, path string, wantStatus int, out any) {
	t.Helper()

	resp, err := s.ts.Client().Get(s.ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s: status %d, want %d", path, resp.StatusCode, wantStatus)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
}

func TestListRooms(t *testing.T) {
	s := startTestServer(t, nil)

	var resp RoomsResponse
	getJSON(t, s, "/api/rooms", http.StatusOK, &resp)

	if len(resp.Rooms) != 3 || resp.Rooms[0] != "general" {
		t.Fatalf("unexpected rooms: %v", resp.Rooms)
	}
	if resp.DefaultRoom != "general" {
		t.Fatalf("defaultRoom = %q", resp.DefaultRoom)
	}
}

func TestGetRoomMessages(t *testing.T) {
	s := startTestServer(t, nil)
	ctx := context.Background()

	session := core.NewSession("rest-poster")
	s.hub.RegisterSession(ctx, session)
	defer s.hub.UnregisterSession(session)

	if err := s.hub.PostMessage(ctx, session, "hello over rest"); err != nil {
		t.Fatalf("post: %v", err)
	}

	var general MessagesResponse
	getJSON(t, s, "/api/rooms/general/messages", http.StatusOK, &general)
	if general.Room != "general" || len(general.Messages) != 1 {
		t.Fatalf("unexpected general window: %+v", general)
	}
	if general.Messages[0].Text != "hello over rest" || general.Messages[0].Author != "Test User" {
		t.Fatalf("unexpected message: %+v", general.Messages[0])
	}

	var support MessagesResponse
	getJSON(t, s, "/api/rooms/support/messages", http.StatusOK, &support)
	if support.Messages == nil || len(support.Messages) != 0 {
		t.Fatalf("support should be empty, got %+v", support.Messages)
	}

	var errResp ErrorResponse
	getJSON(t, s, "/api/rooms/lobby/messages", http.StatusNotFound, &errResp)
	if errResp.Error == "" {
		t.Fatal("expected error body for unknown room")
	}
}

func TestStaticDirServed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>chat</h1>"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}

	s := startTestServer(t, func(cfg *config.Config) {
		cfg.StaticDir = dir
	})

	resp, err := s.ts.Client().Get(s.ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "<h1>chat</h1>" {
		t.Fatalf("unexpected static response: %d %q", resp.StatusCode, body)
	}
}
