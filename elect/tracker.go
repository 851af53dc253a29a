package elect

import "time"

// Tracker records when the current leader was last heard from. It is owned
// by the elector loop and is not safe for concurrent use.
type Tracker struct {
	leaderID        PeerID
	lastHeartbeatAt time.Time
}

func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) ObserveHeartbeat(sender PeerID, now time.Time) {
	t.leaderID = sender
	t.lastHeartbeatAt = now
}

// ObserveResignation clears the tracked leader if the resignation came
// from it, forcing the next liveness check to report "no leader". Returns
// whether the tracked leader actually stepped down.
func (t *Tracker) ObserveResignation(sender PeerID) bool {
	if t.leaderID == "" || t.leaderID != sender {
		return false
	}
	t.leaderID = ""
	return true
}

func (t *Tracker) LeaderAlive(now time.Time, timeout time.Duration) bool {
	return t.leaderID != "" && now.Sub(t.lastHeartbeatAt) < timeout
}

func (t *Tracker) LeaderID() PeerID {
	return t.leaderID
}

func (t *Tracker) LastHeartbeatAt() time.Time {
	return t.lastHeartbeatAt
}
