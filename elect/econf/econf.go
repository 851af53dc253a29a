package econf

import "time"

type Election struct {
	Channel                 string
	HeartbeatIntervalMillis int64
	LeaderTimeoutMillis     int64
	StartupGraceMillis      int64
}

func (e *Election) PreCheck() {
	if e.Channel == "" {
		e.Channel = "solo_election"
	}

	if e.HeartbeatIntervalMillis == 0 {
		e.HeartbeatIntervalMillis = 1000
	}

	if e.StartupGraceMillis == 0 {
		e.StartupGraceMillis = 1200
	}

	// at least two heartbeats must be missed before a leader is presumed dead
	if e.LeaderTimeoutMillis < e.HeartbeatIntervalMillis*2 {
		e.LeaderTimeoutMillis = e.HeartbeatIntervalMillis * 2
	}
}

func (e *Election) HeartbeatInterval() time.Duration {
	return time.Duration(e.HeartbeatIntervalMillis) * time.Millisecond
}

func (e *Election) LeaderTimeout() time.Duration {
	return time.Duration(e.LeaderTimeoutMillis) * time.Millisecond
}

func (e *Election) StartupGrace() time.Duration {
	return time.Duration(e.StartupGraceMillis) * time.Millisecond
}
