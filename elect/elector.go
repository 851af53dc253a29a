package elect

import (
	"context"
	"sync"
	"time"

	"github.com/ccfos/solo/elect/econf"
	"github.com/ccfos/solo/elect/estats"

	"github.com/pkg/errors"
	"github.com/toolkits/pkg/logger"
)

type Role int

const (
	RoleUnknown Role = iota
	RoleFollower
	RoleLeader
)

func (r Role) String() string {
	switch r {
	case RoleLeader:
		return "leader"
	case RoleFollower:
		return "follower"
	default:
		return "unknown"
	}
}

// Callbacks are the two hooks through which the resource-owning side is
// wired in. Each fires at most once per actual role transition, never once
// per message. Both run on the elector loop, so they must not block.
type Callbacks struct {
	OnBecameLeader   func()
	OnBecameFollower func()
}

// Snapshot is a read-only copy of the elector state for observability.
type Snapshot struct {
	Self              PeerID `json:"self"`
	Role              string `json:"role"`
	LeaderID          PeerID `json:"leader_id"`
	LastHeartbeatUnix int64  `json:"last_heartbeat_unix"`
}

// Elector runs the election state machine for one peer. All state lives
// behind a single goroutine: bus deliveries and timer ticks funnel into
// one loop, so a heartbeat arriving mid-tick can never interleave two
// transitions.
type Elector struct {
	id        PeerID
	cfg       econf.Election
	bus       Bus
	callbacks Callbacks
	stats     *estats.Stats

	tracker   *Tracker
	emitter   *Emitter
	role      Role
	startedAt time.Time

	msgCh    chan Message
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once

	snapMu sync.RWMutex
	snap   Snapshot
}

func New(id PeerID, cfg econf.Election, bus Bus, callbacks Callbacks, stats *estats.Stats) *Elector {
	return &Elector{
		id:        id,
		cfg:       cfg,
		bus:       bus,
		callbacks: callbacks,
		stats:     stats,
		tracker:   NewTracker(),
		emitter:   NewEmitter(id, bus, cfg.HeartbeatInterval(), stats),
		msgCh:     make(chan Message, 256),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
		snap:      Snapshot{Self: id, Role: RoleUnknown.String()},
	}
}

func (e *Elector) ID() PeerID {
	return e.id
}

// Start subscribes to the bus and launches the loop. If the subscription
// fails the peer must not participate: without a way to observe competing
// leaders it can never safely claim leadership, so the error is returned
// and no goroutine is started.
func (e *Elector) Start(ctx context.Context) error {
	if err := e.bus.Subscribe(ctx, e.enqueue); err != nil {
		return errors.WithMessage(err, "coordination unavailable, refusing to participate")
	}

	e.startedAt = time.Now()
	go e.loop()

	logger.Infof("elector started, peer=%s channel=%s", e.id, e.cfg.Channel)
	return nil
}

// Shutdown stops the loop, resigns if this peer is leader and releases the
// bus subscription. Best-effort: an abruptly killed process never gets
// here and its peers fall back to the liveness timeout.
func (e *Elector) Shutdown() {
	e.stopOnce.Do(func() {
		close(e.stopCh)
		<-e.doneCh

		e.emitter.Stop(true)

		if err := e.bus.Close(); err != nil {
			logger.Warningf("failed to close bus: %v", err)
		}

		logger.Infof("elector stopped, peer=%s", e.id)
	})
}

func (e *Elector) Snapshot() Snapshot {
	e.snapMu.RLock()
	defer e.snapMu.RUnlock()
	return e.snap
}

// enqueue funnels a bus delivery into the loop. Runs on the transport's
// receive goroutine.
func (e *Elector) enqueue(m Message) {
	select {
	case e.msgCh <- m:
	case <-e.stopCh:
	}
}

func (e *Elector) loop() {
	defer close(e.doneCh)

	ticker := time.NewTicker(e.cfg.HeartbeatInterval())
	defer ticker.Stop()

	e.publishSnapshot()

	for {
		select {
		case <-e.stopCh:
			return
		case now := <-ticker.C:
			e.evaluate(now)
		case m := <-e.msgCh:
			e.handleMessage(m, time.Now())
		}
		e.publishSnapshot()
	}
}

// evaluate is the timer-driven half of the state machine: self-promote
// when no leader is considered alive, but never inside the startup grace
// window, which absorbs the case where a leader exists and its next
// heartbeat simply has not arrived yet.
func (e *Elector) evaluate(now time.Time) {
	if e.role == RoleUnknown && now.Sub(e.startedAt) < e.cfg.StartupGrace() {
		return
	}

	if e.role != RoleLeader && !e.tracker.LeaderAlive(now, e.cfg.LeaderTimeout()) {
		if lost := e.tracker.LeaderID(); lost != "" {
			logger.Warningf("leader %s stopped heartbeating, taking over", lost)
		}
		e.becomeLeader()
	}
}

func (e *Elector) handleMessage(m Message, now time.Time) {
	// the transport may echo our own messages back
	if m.PeerID == e.id {
		return
	}

	e.stats.CounterMessagesTotal.WithLabelValues(string(m.Kind)).Inc()

	switch m.Kind {
	case KindHeartbeat:
		e.handleHeartbeat(m.PeerID, now)
	case KindResign:
		if e.tracker.ObserveResignation(m.PeerID) {
			logger.Infof("leader %s resigned", m.PeerID)
			// fast path: re-elect now instead of waiting out the timeout
			e.evaluate(now)
		}
	default:
		logger.Debugf("ignoring message of unknown kind %q from %s", m.Kind, m.PeerID)
	}
}

func (e *Elector) handleHeartbeat(sender PeerID, now time.Time) {
	if e.role == RoleLeader {
		// split-brain: two peers concurrently elected themselves. The
		// larger id survives; both sides compute the same winner without
		// any extra message exchange.
		e.stats.CounterSplitBrainTotal.Inc()
		if sender > e.id {
			logger.Warningf("concurrent leader %s outranks us, stepping down", sender)
			e.tracker.ObserveHeartbeat(sender, now)
			e.becomeFollower()
		} else {
			logger.Warningf("concurrent leader %s ranks below us, retaining leadership", sender)
		}
		return
	}

	e.tracker.ObserveHeartbeat(sender, now)
	e.becomeFollower()
}

func (e *Elector) becomeLeader() {
	if e.role == RoleLeader {
		return
	}

	e.role = RoleLeader
	e.emitter.Start()
	e.stats.GaugeRole.Set(2)
	e.stats.CounterTransitionsTotal.WithLabelValues(RoleLeader.String()).Inc()
	logger.Infof("peer %s became leader", e.id)

	if e.callbacks.OnBecameLeader != nil {
		e.callbacks.OnBecameLeader()
	}
}

func (e *Elector) becomeFollower() {
	if e.role == RoleFollower {
		return
	}

	wasLeader := e.role == RoleLeader
	e.role = RoleFollower
	if wasLeader {
		e.emitter.Stop(true)
	}

	e.stats.GaugeRole.Set(1)
	e.stats.CounterTransitionsTotal.WithLabelValues(RoleFollower.String()).Inc()
	logger.Infof("peer %s became follower of %s", e.id, e.tracker.LeaderID())

	if e.callbacks.OnBecameFollower != nil {
		e.callbacks.OnBecameFollower()
	}
}

func (e *Elector) publishSnapshot() {
	snap := Snapshot{
		Self:     e.id,
		Role:     e.role.String(),
		LeaderID: e.tracker.LeaderID(),
	}
	if e.role == RoleLeader {
		snap.LeaderID = e.id
	}
	if !e.tracker.LastHeartbeatAt().IsZero() {
		snap.LastHeartbeatUnix = e.tracker.LastHeartbeatAt().Unix()
	}

	e.snapMu.Lock()
	e.snap = snap
	e.snapMu.Unlock()
}
