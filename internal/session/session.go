// Package session runs one dashboard: it owns the selection state and the
// rendered view, applies UI commands through the engine and executes the
// resulting effects against the data service.
package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/ti-helper/internal/engine"
	"github.com/DoyleJ11/ti-helper/internal/gateway"
	"github.com/DoyleJ11/ti-helper/internal/observability"
	"github.com/DoyleJ11/ti-helper/internal/stats"
	"github.com/DoyleJ11/ti-helper/pkg/types"
)

// Gateway is the data service as seen by a session.
type Gateway interface {
	Teams(ctx context.Context, leagueID string) (gateway.OptionList, error)
	Players(ctx context.Context, teamID string) (gateway.OptionList, error)
	Heroes(ctx context.Context, playerID string) (gateway.OptionList, error)
	Stats(ctx context.Context, q stats.Query) (stats.Bundle, error)
}

type Msg interface{ isSessionMsg() }

// FromClient carries one UI event. Reply, if set, receives the engine error or nil.
type FromClient struct {
	Cmd   engine.Command
	Reply chan error
}

func (FromClient) isSessionMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isSessionMsg() {}

type Leave struct{ ClientID string }

func (Leave) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

type GetState struct {
	Reply chan Status
}

func (GetState) isSessionMsg() {}

// AwaitIdle is answered once no effect list is still running.
type AwaitIdle struct {
	Reply chan struct{}
}

func (AwaitIdle) isSessionMsg() {}

// regionUpdate is posted by a running effect list. seq is the number the
// effect was stamped with at dispatch.
type regionUpdate struct {
	region engine.Region
	seq    uint64
	apply  func(v *types.View)
}

func (regionUpdate) isSessionMsg() {}

type invocationDone struct{}

func (invocationDone) isSessionMsg() {}

type Snapshot struct {
	Version int
	View    types.View
}

type Status struct {
	Version    int
	NumClients int
	InFlight   int
	State      engine.State
	View       types.View
}

// DefaultJoinTimeout bounds how long a session waits for its first client.
const DefaultJoinTimeout = time.Minute

type Config struct {
	ID      string
	Gateway Gateway
	Logger  *zap.Logger
	Metrics *observability.Metrics

	// JoinTimeout closes a session nobody joined. Zero means DefaultJoinTimeout.
	JoinTimeout time.Duration

	// OnRelease is called from the session goroutine after the session closed
	// itself, either because its last client left or because nobody joined.
	OnRelease func(*Session)
}

type Session struct {
	id      string
	inbox   chan Msg
	state   engine.State
	view    types.View
	version int
	clients map[string]chan Snapshot

	gw      Gateway
	log     *zap.Logger
	metrics *observability.Metrics

	dispatched map[engine.Region]uint64
	applied    map[engine.Region]uint64
	inFlight   int
	idle       []chan struct{}

	joinTimer *time.Timer
	joinC     <-chan time.Time
	onRelease func(*Session)

	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, cfg Config, initial engine.State) *Session {
	ctx, cancel := context.WithCancel(parent)

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("session", cfg.ID))
	if cfg.Gateway == nil {
		log.Warn("no data service configured, options and stats will not load")
	}

	joinTimeout := cfg.JoinTimeout
	if joinTimeout <= 0 {
		joinTimeout = DefaultJoinTimeout
	}
	joinTimer := time.NewTimer(joinTimeout)

	s := &Session{
		id:         cfg.ID,
		inbox:      make(chan Msg, 64),
		state:      initial,
		view:       initialView(initial),
		clients:    make(map[string]chan Snapshot),
		gw:         cfg.Gateway,
		log:        log,
		metrics:    cfg.Metrics,
		dispatched: make(map[engine.Region]uint64),
		applied:    make(map[engine.Region]uint64),
		joinTimer:  joinTimer,
		joinC:      joinTimer.C,
		onRelease:  cfg.OnRelease,
		ctx:        ctx,
		cancel:     cancel,
	}
	s.metrics.SessionOpened()

	go s.loop()
	return s
}

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case <-s.joinC:
			s.log.Info("no client joined, closing session")
			s.release()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Join:
				if s.joinC != nil {
					s.joinTimer.Stop()
					s.joinC = nil
				}
				s.clients[msg.ClientID] = msg.Outbox
				s.send(msg.ClientID, msg.Outbox, s.snapshot())

			case Leave:
				delete(s.clients, msg.ClientID)
				if len(s.clients) == 0 {
					s.log.Info("last client left, closing session")
					s.release()
					return
				}

			case FromClient:
				s.handleCommand(msg)

			case regionUpdate:
				s.applyUpdate(msg)

			case invocationDone:
				s.inFlight--
				if s.inFlight == 0 {
					for _, ch := range s.idle {
						close(ch)
					}
					s.idle = nil
				}

			case AwaitIdle:
				if s.inFlight == 0 {
					close(msg.Reply)
					break
				}
				s.idle = append(s.idle, msg.Reply)

			case GetState:
				msg.Reply <- Status{
					Version:    s.version,
					NumClients: len(s.clients),
					InFlight:   s.inFlight,
					State:      s.state,
					View:       s.snapshot().View,
				}

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

func (s *Session) handleCommand(msg FromClient) {
	effects, next, err := engine.Apply(s.state, msg.Cmd)
	if msg.Reply != nil {
		msg.Reply <- err
	}
	if err != nil {
		s.metrics.Command(string(msg.Cmd.Type), "rejected")
		s.log.Info("command rejected",
			zap.String("command", string(msg.Cmd.Type)),
			zap.Error(err))
		return
	}
	s.metrics.Command(string(msg.Cmd.Type), "applied")

	s.state = next
	s.version++
	s.broadcast(s.snapshot())

	if len(effects) > 0 {
		s.dispatch(effects)
	}
}

// dispatch stamps each effect with its region's next sequence number and runs
// the list in its own goroutine.
func (s *Session) dispatch(effects []engine.Effect) {
	stamped := make([]stampedEffect, len(effects))
	for i, e := range effects {
		s.dispatched[e.Region]++
		stamped[i] = stampedEffect{Effect: e, seq: s.dispatched[e.Region]}
	}
	s.inFlight++
	go s.run(stamped)
}

// applyUpdate drops updates older than the newest one already applied to the region.
func (s *Session) applyUpdate(u regionUpdate) {
	if u.seq < s.applied[u.region] {
		s.metrics.StaleUpdate(string(u.region))
		s.log.Debug("stale region update dropped",
			zap.String("region", string(u.region)),
			zap.Uint64("seq", u.seq),
			zap.Uint64("applied", s.applied[u.region]))
		return
	}
	s.applied[u.region] = u.seq
	u.apply(&s.view)
	s.version++
	s.broadcast(s.snapshot())
}

func (s *Session) snapshot() Snapshot {
	v := s.view.Clone()
	sel := s.state.Selection
	v.Mode = string(sel.Mode)
	v.Selection = types.Selection{
		LeagueID: sel.LeagueID,
		TeamID:   sel.TeamID,
		PlayerID: sel.PlayerID,
		HeroID:   sel.HeroID,
		Friendly: sel.Advanced.Friendly,
		Enemy1:   sel.Advanced.Enemy1,
		Enemy2:   sel.Advanced.Enemy2,
		Side:     sel.Advanced.Side,
	}
	return Snapshot{Version: s.version, View: v}
}

// release shuts the session down and tells its owner.
func (s *Session) release() {
	s.shutdown()
	if s.onRelease != nil {
		s.onRelease(s)
	}
}

func (s *Session) shutdown() {
	s.joinTimer.Stop()
	for id, ch := range s.clients {
		close(ch) // Tell client no more snapshots
		delete(s.clients, id)
	}
	for _, ch := range s.idle {
		close(ch)
	}
	s.idle = nil
	s.metrics.SessionClosed()
	s.cancel()
}

func (s *Session) broadcast(snap Snapshot) {
	for id, ch := range s.clients {
		s.send(id, ch, snap)
	}
}

// send drops a client whose outbox is full.
func (s *Session) send(id string, ch chan Snapshot, snap Snapshot) {
	select {
	case ch <- snap:
	default:
		close(ch)
		delete(s.clients, id)
		s.metrics.ClientDropped()
		s.log.Info("dropped slow client", zap.String("client", id))
	}
}

// post hands a message to the actor from an effect goroutine.
func (s *Session) post(m Msg) {
	select {
	case s.inbox <- m:
	case <-s.ctx.Done():
	}
}

// ID is the session code.
func (s *Session) ID() string { return s.id }

// Inbox exposes the actor so the websocket layer and tests can send messages.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

// Done is closed once the session has shut down.
func (s *Session) Done() <-chan struct{} { return s.ctx.Done() }
