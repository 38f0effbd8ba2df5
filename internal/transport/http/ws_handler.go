package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/nexuschat/nexuschat-server/internal/core"
	"github.com/nexuschat/nexuschat-server/internal/proto"
	"github.com/nexuschat/nexuschat-server/internal/utils"
)

// WSHandler upgrades HTTP connections and bridges them to core.Session.
type WSHandler struct {
	hub             *core.Hub
	log             *zerolog.Logger
	maxMessageBytes int64
	originPatterns  []string
}

// NewWSHandler builds a new WebSocket handler. With no origin patterns every
// origin is accepted.
func NewWSHandler(hub *core.Hub, maxMessageBytes int64, originPatterns []string, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{
		hub:             hub,
		log:             logger,
		maxMessageBytes: maxMessageBytes,
		originPatterns:  originPatterns,
	}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: len(h.originPatterns) == 0,
		OriginPatterns:     h.originPatterns,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	if h.maxMessageBytes > 0 {
		conn.SetReadLimit(h.maxMessageBytes)
	}

	session := core.NewSession(utils.NewID())
	h.hub.RegisterSession(ctx, session)
	defer h.hub.UnregisterSession(session)
	go h.hub.Serve(session)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, session)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, session)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("session_id", session.ID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, session *core.Session) error {
	for {
		typ, payload, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		var inbound proto.Inbound
		var protoErr *proto.Error
		var cmd *core.Command
		if typ != websocket.MessageText {
			protoErr = &proto.Error{Code: core.ErrCodeBadRequest, Msg: "expected a text frame"}
		} else if err := json.Unmarshal(payload, &inbound); err != nil {
			protoErr = &proto.Error{Code: core.ErrCodeBadRequest, Msg: "invalid json"}
		} else {
			cmd, protoErr = inboundToCommand(inbound)
		}

		if protoErr != nil {
			h.log.Debug().Str("session_id", session.ID).Str("code", protoErr.Code).Msg("rejected inbound")
			out := proto.Outbound{Type: proto.OutboundTypeError, Error: protoErr}
			if inbound.Ack > 0 {
				out = proto.Outbound{
					Type: proto.OutboundTypeAck,
					Ack:  inbound.Ack,
					Data: proto.AckData{OK: false, Error: protoErr.Msg},
				}
			}
			if writeErr := wsjson.Write(ctx, conn, out); writeErr != nil {
				return writeErr
			}
			continue
		}
		if cmd == nil {
			h.log.Debug().Str("session_id", session.ID).Str("type", inbound.Type).Msg("dropped malformed payload")
			continue
		}

		select {
		case session.Commands <- cmd:
		case <-session.Done():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, session *core.Session) error {
	for {
		select {
		case event := <-session.Events:
			if event == nil {
				continue
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("session_id", session.ID).Msg("write ws event")
				return err
			}
		case <-session.Done():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
