package http

import (
	"bytes"
	"encoding/json"

	"github.com/nexuschat/nexuschat-server/internal/core"
	"github.com/nexuschat/nexuschat-server/internal/proto"
	"github.com/nexuschat/nexuschat-server/internal/store"
)

var emptyObject = json.RawMessage(`{}`)

// clearRoomRequest mirrors proto.ClearRoomData with a loosely typed room.
type clearRoomRequest struct {
	Room  json.RawMessage `json:"room"`
	Token string          `json:"token"`
}

// inboundToCommand maps a client envelope to a core command. A nil command
// with a nil error means the frame is dropped without a reply: post-message
// and join-room have no channel to report a malformed payload on.
func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	data := inbound.Data
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		data = emptyObject
	}

	switch inbound.Type {
	case proto.InboundTypePostMessage:
		var msg proto.PostMessageData
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, nil
		}
		return &core.Command{Kind: core.CommandPostMessage, Text: msg.Message}, nil
	case proto.InboundTypeJoinRoom:
		var join proto.JoinRoomData
		if err := json.Unmarshal(data, &join); err != nil {
			return nil, nil
		}
		return &core.Command{Kind: core.CommandJoinRoom, Room: join.Room}, nil
	case proto.InboundTypeSetUsername:
		var req proto.SetUsernameData
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, badPayload()
		}
		return &core.Command{Kind: core.CommandSetName, Name: req.Username, Ack: inbound.Ack}, nil
	case proto.InboundTypeVerifyAdmin:
		var req proto.VerifyAdminData
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, badPayload()
		}
		return &core.Command{Kind: core.CommandVerifyAdmin, Token: req.Token, Ack: inbound.Ack}, nil
	case proto.InboundTypeClearRoom:
		var req clearRoomRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, badPayload()
		}
		cmd := &core.Command{Kind: core.CommandClearRoom, Token: req.Token, Ack: inbound.Ack}
		// Anything but a string room, null included, targets the current room.
		room, ok := jsonString(req.Room)
		cmd.Room = room
		cmd.UseCurrentRoom = !ok
		return cmd, nil
	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}
	}
}

func jsonString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func badPayload() *proto.Error {
	return &proto.Error{Code: core.ErrCodeBadRequest, Msg: "Invalid payload."}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventSnapshot:
		snap := event.Snapshot
		if snap == nil {
			snap = &core.Snapshot{}
		}
		rooms := snap.Rooms
		if rooms == nil {
			rooms = []string{}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventReceiveMessages,
			Data: proto.Snapshot{
				Messages:    messagesToProto(snap.Messages),
				Rooms:       rooms,
				CurrentRoom: snap.CurrentRoom,
				DisplayName: snap.DisplayName,
			},
		}
	case core.EventAck:
		data := proto.AckData{}
		if res := event.Result; res != nil {
			data.OK = res.OK
			data.Username = res.Username
			if res.Err != nil {
				data.Error = res.Err.Message
			}
		}
		return proto.Outbound{Type: proto.OutboundTypeAck, Ack: event.Ack, Data: data}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func messagesToProto(msgs []*store.Message) []proto.Message {
	out := make([]proto.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageToProto(m))
	}
	return out
}

func messageToProto(m *store.Message) proto.Message {
	return proto.Message{
		ID:        m.ID,
		Author:    m.Author,
		Text:      m.Text,
		CreatedAt: m.CreatedAt.UTC().Format(store.TimeLayout),
		Room:      m.Room,
	}
}
