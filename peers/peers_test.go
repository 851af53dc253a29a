package peers

import (
	"context"
	"testing"

	"github.com/ccfos/solo/elect"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestSet(t *testing.T) (*miniredis.Miniredis, *Set) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, New(client, elect.PeerID("peer-test"))
}

func TestPersistAndList(t *testing.T) {
	_, s := newTestSet(t)
	s.persist()

	lst, err := s.ActivePeers(context.Background())
	require.NoError(t, err)
	require.Len(t, lst, 1)
	require.Equal(t, "peer-test", lst[0].PeerID)
	require.Equal(t, elect.RoleUnknown.String(), lst[0].Role)
	require.NotZero(t, lst[0].Clock)
}

func TestRoleUpdate(t *testing.T) {
	_, s := newTestSet(t)

	s.SetRole(elect.RoleLeader.String())
	s.persist()

	lst, err := s.ActivePeers(context.Background())
	require.NoError(t, err)
	require.Len(t, lst, 1)
	require.Equal(t, elect.RoleLeader.String(), lst[0].Role)
}

func TestExpiredPeerDisappears(t *testing.T) {
	mr, s := newTestSet(t)
	s.persist()

	mr.FastForward(2 * metaTTL)

	lst, err := s.ActivePeers(context.Background())
	require.NoError(t, err)
	require.Empty(t, lst, "a crashed peer's key must expire on its own")
}

func TestDeregister(t *testing.T) {
	_, s := newTestSet(t)
	s.persist()

	require.NoError(t, s.Deregister(context.Background()))

	lst, err := s.ActivePeers(context.Background())
	require.NoError(t, err)
	require.Empty(t, lst)
}
