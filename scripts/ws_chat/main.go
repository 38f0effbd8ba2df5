package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"html"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/nexuschat/nexuschat-server/internal/proto"
)

type outbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Ack   int64           `json:"ack"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

type client struct {
	conn    *websocket.Conn
	nextAck atomic.Int64
	lastID  atomic.Int64
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:3000/ws", "WebSocket address")
	user := flag.String("user", "", "display name to request after connecting")
	room := flag.String("room", "", "room to join after connecting")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	c := &client{conn: conn}
	if *user != "" {
		c.send(ctx, proto.InboundTypeSetUsername, true, proto.SetUsernameData{Username: *user})
	}
	if *room != "" {
		c.send(ctx, proto.InboundTypeJoinRoom, false, proto.JoinRoomData{Room: *room})
	}

	fmt.Printf("Connected to %s\n", *addr)
	fmt.Println("Type messages and press Enter to send. Commands: /join <room>, /nick <name>, /verify <token>, /clear <token> [room]. Ctrl+C to exit.")

	go func() {
		defer cancel()
		c.readLoop(ctx)
	}()

	c.writeLoop(ctx)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func (c *client) send(ctx context.Context, typ string, withAck bool, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("marshal %s: %v", typ, err)
		return
	}
	in := proto.Inbound{Type: typ, Data: payload}
	if withAck {
		in.Ack = c.nextAck.Add(1)
	}
	if err := wsjson.Write(ctx, c.conn, in); err != nil {
		log.Printf("send %s: %v", typ, err)
	}
}

func (c *client) readLoop(ctx context.Context) {
	for {
		var out outbound
		if err := wsjson.Read(ctx, c.conn, &out); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		switch out.Type {
		case proto.OutboundTypeEvent:
			var snap proto.Snapshot
			if err := json.Unmarshal(out.Data, &snap); err != nil {
				log.Printf("unmarshal snapshot: %v", err)
				continue
			}
			c.printSnapshot(snap)
		case proto.OutboundTypeAck:
			var ack proto.AckData
			if err := json.Unmarshal(out.Data, &ack); err != nil {
				log.Printf("unmarshal ack: %v", err)
				continue
			}
			switch {
			case ack.OK && ack.Username != "":
				fmt.Printf("* you are now %s\n", html.UnescapeString(ack.Username))
			case ack.OK:
				fmt.Println("* ok")
			default:
				fmt.Printf("* failed: %s\n", ack.Error)
			}
		case proto.OutboundTypeError:
			if out.Error != nil {
				fmt.Printf("* error %s: %s\n", out.Error.Code, out.Error.Msg)
			}
		}
	}
}

// printSnapshot prints messages newer than the last one shown. A snapshot
// without them (join or clear) reprints the whole window.
func (c *client) printSnapshot(snap proto.Snapshot) {
	if snap.DisplayName != "" {
		fmt.Printf("* you are %s\n", html.UnescapeString(snap.DisplayName))
	}

	last := c.lastID.Load()
	var newest int64
	if len(snap.Messages) > 0 {
		newest = snap.Messages[0].ID
	}
	if newest <= last {
		fmt.Printf("--- %s (%d messages) ---\n", snap.CurrentRoom, len(snap.Messages))
		last = 0
	}

	for i := len(snap.Messages) - 1; i >= 0; i-- {
		m := snap.Messages[i]
		if m.ID <= last {
			continue
		}
		fmt.Printf("[%s] %s: %s\n", m.Room, html.UnescapeString(m.Author), html.UnescapeString(m.Text))
	}
	c.lastID.Store(newest)
}

func (c *client) writeLoop(ctx context.Context) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			c.handleLine(ctx, text)
		}
	}
}

func (c *client) handleLine(ctx context.Context, text string) {
	if !strings.HasPrefix(text, "/") {
		c.send(ctx, proto.InboundTypePostMessage, false, proto.PostMessageData{Message: text})
		return
	}

	cmd, arg, _ := strings.Cut(text, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "/join":
		c.send(ctx, proto.InboundTypeJoinRoom, false, proto.JoinRoomData{Room: arg})
	case "/nick":
		c.send(ctx, proto.InboundTypeSetUsername, true, proto.SetUsernameData{Username: arg})
	case "/verify":
		c.send(ctx, proto.InboundTypeVerifyAdmin, true, proto.VerifyAdminData{Token: arg})
	case "/clear":
		token, room, hasRoom := strings.Cut(arg, " ")
		req := proto.ClearRoomData{Token: token}
		if hasRoom {
			room = strings.TrimSpace(room)
			req.Room = &room
		}
		c.send(ctx, proto.InboundTypeClearRoom, true, req)
	default:
		fmt.Printf("* unknown command %s\n", cmd)
	}
}
