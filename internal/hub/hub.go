package hub

import (
	"context"

	"github.com/DoyleJ11/ti-helper/internal/engine"
	"github.com/DoyleJ11/ti-helper/internal/session"
)

type HubMsg interface{ isHubMsg() }

type CreateSession struct {
	Code  string
	State engine.State
	Reply chan *session.Session
}

type GetSession struct {
	Code  string
	Reply chan *session.Session
}

type EnsureSession struct {
	Code  string
	State engine.State // only used if creation happens
	Reply chan *session.Session
}

type RemoveSession struct {
	Code string
}

type ShutdownHub struct{}

// released is posted by a session that closed itself.
type released struct {
	session *session.Session
}

// Count replies with the number of live sessions.
type Count struct {
	Reply chan int
}

type Hub struct {
	inbox    chan HubMsg
	sessions map[string]*session.Session
	config   session.Config
	ctx      context.Context
	cancel   context.CancelFunc
}

func (CreateSession) isHubMsg() {}
func (GetSession) isHubMsg()    {}
func (EnsureSession) isHubMsg() {}
func (RemoveSession) isHubMsg() {}
func (ShutdownHub) isHubMsg()   {}
func (Count) isHubMsg()         {}
func (released) isHubMsg()      {}

// NewHub starts the registry. Every session it creates shares cfg; the ID is
// replaced with the session code.
func NewHub(parent context.Context, cfg session.Config) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		sessions: make(map[string]*session.Session),
		config:   cfg,
		ctx:      ctx,
		cancel:   cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Done is closed once the hub has shut down.
func (h *Hub) Done() <-chan struct{} { return h.ctx.Done() }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateSession:
				msg.Reply <- h.ensure(msg.Code, msg.State)

			case GetSession:
				msg.Reply <- h.sessions[msg.Code] // May be nil

			case EnsureSession:
				msg.Reply <- h.ensure(msg.Code, msg.State)

			case RemoveSession:
				if s := h.sessions[msg.Code]; s != nil {
					stop(s)
					delete(h.sessions, msg.Code)
				}

			case Count:
				msg.Reply <- len(h.sessions)

			case released:
				code := msg.session.ID()
				if h.sessions[code] == msg.session {
					delete(h.sessions, code)
				}

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) ensure(code string, state engine.State) *session.Session {
	if s := h.sessions[code]; s != nil {
		return s
	}
	cfg := h.config
	cfg.ID = code
	cfg.OnRelease = h.release
	s := session.New(h.ctx, cfg, state)
	h.sessions[code] = s
	return s
}

// release runs on the session's goroutine after it has shut down.
func (h *Hub) release(s *session.Session) {
	select {
	case h.inbox <- released{session: s}:
	case <-h.ctx.Done():
	}
}

func (h *Hub) shutdown() {
	for _, s := range h.sessions {
		stop(s)
	}
	clear(h.sessions)
	h.cancel()
}

func stop(s *session.Session) {
	select {
	case s.Inbox() <- session.Shutdown{}:
	case <-s.Done():
	}
}
