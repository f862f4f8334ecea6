package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/ti-helper/internal/engine"
	"github.com/DoyleJ11/ti-helper/internal/hub"
	"github.com/DoyleJ11/ti-helper/internal/session"
	"github.com/DoyleJ11/ti-helper/internal/stats"
	"github.com/DoyleJ11/ti-helper/internal/types"
	ptypes "github.com/DoyleJ11/ti-helper/pkg/types"
)

const writeTimeout = 3 * time.Second

// Options configures the websocket endpoint.
type Options struct {
	Logger *zap.Logger
	// OriginPatterns loosens the same-origin check, e.g. "localhost:*" in development.
	OriginPatterns []string
}

func Handler(h *hub.Hub, opts Options) http.HandlerFunc {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		reply := make(chan *session.Session, 1)
		h.Inbox() <- hub.GetSession{Code: code, Reply: reply}
		s := <-reply
		if s == nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			log.Warn("websocket accept failed", zap.String("code", code), zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := uuid.NewString()
		log := log.With(zap.String("code", code), zap.String("client", clientID))

		out := make(chan session.Snapshot, 16)
		select {
		case s.Inbox() <- session.Join{ClientID: clientID, Outbox: out}:
		case <-s.Done():
			_ = conn.Close(websocket.StatusGoingAway, "session closed")
			return
		}
		defer func() {
			select {
			case s.Inbox() <- session.Leave{ClientID: clientID}:
			case <-s.Done():
			}
		}()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for {
				select {
				case <-writeCtx.Done():
					return
				case snap, ok := <-out:
					if !ok {
						// Session gone or we fell behind.
						_ = conn.Close(websocket.StatusGoingAway, "session closed")
						return
					}
					view := snap.View
					write(writeCtx, conn, types.ServerMessage{Type: ptypes.MsgStateSnapshot, Version: snap.Version, View: &view})
				}
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("websocket read ended", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				write(r.Context(), conn, types.ServerMessage{Type: ptypes.MsgError, Error: "bad json"})
				continue
			}

			cmd, ok := toEngineCommand(cm)
			if !ok {
				write(r.Context(), conn, types.ServerMessage{Type: ptypes.MsgError, Error: "unknown type"})
				continue
			}

			errc := make(chan error, 1)
			select {
			case s.Inbox() <- session.FromClient{Cmd: cmd, Reply: errc}:
			case <-s.Done():
				return
			}
			select {
			case err := <-errc:
				if err != nil {
					write(r.Context(), conn, types.ServerMessage{Type: ptypes.MsgError, Error: err.Error()})
				}
			case <-s.Done():
				return
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(ctx, websocket.MessageText, payload)
}

func toEngineCommand(m types.ClientMessage) (engine.Command, bool) {
	switch m.Type {
	case ptypes.MsgChooseLeague:
		return engine.Command{Type: engine.CmdChooseLeague, ID: m.ID}, true
	case ptypes.MsgChooseTeam:
		return engine.Command{Type: engine.CmdChooseTeam, ID: m.ID}, true
	case ptypes.MsgChoosePlayer:
		return engine.Command{Type: engine.CmdChoosePlayer, ID: m.ID}, true
	case ptypes.MsgChooseHero:
		return engine.Command{Type: engine.CmdChooseHero, ID: m.ID}, true
	case ptypes.MsgToggleAdvanced:
		return engine.Command{Type: engine.CmdToggleAdvanced}, true
	case ptypes.MsgChooseContext:
		return engine.Command{Type: engine.CmdChooseContext, Context: stats.Context(m.Context)}, true
	case ptypes.MsgSetAdvancedHero:
		return engine.Command{Type: engine.CmdSetAdvancedHero, Slot: engine.Slot(m.Slot), ID: m.ID}, true
	default:
		return engine.Command{}, false
	}
}
