package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/nexuschat/nexuschat-server/internal/config"
	"github.com/nexuschat/nexuschat-server/internal/core"
	"github.com/nexuschat/nexuschat-server/internal/store"
	"github.com/nexuschat/nexuschat-server/internal/store/sqlite"
)

func TestNewRejectsUnknownDefaultRoom(t *testing.T) {
	cfg := config.Default()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "chat.db")
	cfg.DefaultRoom = "lobby"
	logger := zerolog.Nop()

	_, err := New(&cfg, &logger)
	require.Error(t, err)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Addr = "127.0.0.1:0"
	cfg.DatabasePath = filepath.Join(t.TempDir(), "chat.db")
	cfg.ShutdownTimeout = time.Second
	logger := zerolog.Nop()

	application, err := New(&cfg, &logger)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:0", application.Addr())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestUnlistedRoomsReportsStoredRoomsOutsideAllowList(t *testing.T) {
	st, err := sqlite.New(filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	for _, room := range []string{"general", "lobby"} {
		require.NoError(t, st.SaveMessage(ctx, &store.Message{Room: room, Author: "a", Text: "t", CreatedAt: time.Now()}))
	}

	rooms, err := core.NewRegistry([]string{"lobby", "dev"}, "lobby")
	require.NoError(t, err)

	got, err := unlistedRooms(ctx, st, rooms)
	require.NoError(t, err)
	require.Equal(t, []string{"general"}, got)
}
