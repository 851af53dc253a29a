package elect

import (
	"context"
	"sync"
	"time"

	"github.com/ccfos/solo/elect/estats"

	"github.com/toolkits/pkg/logger"
)

const publishTimeout = 2 * time.Second

// Emitter publishes heartbeats while this peer is leader. It touches no
// election state; the elector starts and stops it on role transitions.
type Emitter struct {
	id       PeerID
	bus      Bus
	interval time.Duration
	stats    *estats.Stats

	mu     sync.Mutex
	stopCh chan struct{}
	doneCh chan struct{}
}

func NewEmitter(id PeerID, bus Bus, interval time.Duration, stats *estats.Stats) *Emitter {
	return &Emitter{
		id:       id,
		bus:      bus,
		interval: interval,
		stats:    stats,
	}
}

// Start begins heartbeating, the first beat goes out immediately. Calling
// Start on a running emitter is a no-op.
func (e *Emitter) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopCh != nil {
		return
	}

	e.stopCh = make(chan struct{})
	e.doneCh = make(chan struct{})
	go e.loop(e.stopCh, e.doneCh)
}

// Stop halts heartbeating. If resign is true and the emitter was running,
// a single resignation is published so peers re-elect without waiting out
// the liveness timeout. Stop is idempotent.
func (e *Emitter) Stop(resign bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopCh == nil {
		return
	}

	close(e.stopCh)
	// wait out any in-flight heartbeat so the resignation is the last
	// thing this peer says
	<-e.doneCh
	e.stopCh = nil
	e.doneCh = nil

	if resign {
		e.publish(KindResign)
	}
}

func (e *Emitter) loop(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	e.publish(KindHeartbeat)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.publish(KindHeartbeat)
		case <-stopCh:
			return
		}
	}
}

// publish is fire-and-forget: a lost heartbeat is recovered by the next
// one, a lost resignation by the timeout path.
func (e *Emitter) publish(kind Kind) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := e.bus.Publish(ctx, Message{Kind: kind, PeerID: e.id}); err != nil {
		logger.Warningf("failed to publish %s: %v", kind, err)
		e.stats.CounterPublishErrorTotal.Inc()
		return
	}

	e.stats.CounterPublishTotal.WithLabelValues(string(kind)).Inc()
}
