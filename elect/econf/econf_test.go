package econf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPreCheckDefaults(t *testing.T) {
	var e Election
	e.PreCheck()

	require.Equal(t, "solo_election", e.Channel)
	require.Equal(t, time.Second, e.HeartbeatInterval())
	require.Equal(t, 2*time.Second, e.LeaderTimeout())
	require.Equal(t, 1200*time.Millisecond, e.StartupGrace())
}

func TestPreCheckEnforcesTimeoutRelation(t *testing.T) {
	e := Election{
		HeartbeatIntervalMillis: 500,
		LeaderTimeoutMillis:     600,
	}
	e.PreCheck()

	// at least two heartbeats must fit into the timeout
	require.Equal(t, int64(1000), e.LeaderTimeoutMillis)
}

func TestPreCheckKeepsValidTimeout(t *testing.T) {
	e := Election{
		HeartbeatIntervalMillis: 500,
		LeaderTimeoutMillis:     1500,
	}
	e.PreCheck()

	require.Equal(t, int64(1500), e.LeaderTimeoutMillis)
}
