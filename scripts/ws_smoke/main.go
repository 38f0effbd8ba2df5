package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

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

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:3000/ws", "WebSocket address")
	user := flag.String("user", "tester", "display name to request")
	room := flag.String("room", "general", "room to join before posting")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(typ string, ack int64, data any) error {
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", typ, err)
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Ack: ack, Data: payload}); err != nil {
			return fmt.Errorf("send %s: %w", typ, err)
		}
		return nil
	}

	if err := send(proto.InboundTypeSetUsername, 1, proto.SetUsernameData{Username: *user}); err != nil {
		return err
	}
	if err := send(proto.InboundTypeJoinRoom, 0, proto.JoinRoomData{Room: *room}); err != nil {
		return err
	}
	if err := send(proto.InboundTypePostMessage, 0, proto.PostMessageData{Message: *text}); err != nil {
		return err
	}

	for {
		var out outbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		switch out.Type {
		case proto.OutboundTypeAck:
			var ack proto.AckData
			if err := json.Unmarshal(out.Data, &ack); err != nil {
				return fmt.Errorf("decode ack: %w", err)
			}
			fmt.Printf("ack=%d ok=%t username=%q error=%q\n", out.Ack, ack.OK, ack.Username, ack.Error)
		case proto.OutboundTypeError:
			if out.Error == nil {
				continue
			}
			fmt.Printf("error code=%s msg=%s\n", out.Error.Code, out.Error.Msg)
		case proto.OutboundTypeEvent:
			var snap proto.Snapshot
			if err := json.Unmarshal(out.Data, &snap); err != nil {
				return fmt.Errorf("decode snapshot: %w", err)
			}
			fmt.Printf("snapshot room=%s messages=%d\n", snap.CurrentRoom, len(snap.Messages))
			for _, m := range snap.Messages {
				if m.Room == *room && m.Text == *text {
					fmt.Printf("round trip ok: #%d by %s at %s\n", m.ID, m.Author, m.CreatedAt)
					return nil
				}
			}
		}
	}
}
