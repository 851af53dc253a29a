package redisbus

import (
	"context"
	"testing"
	"time"

	"github.com/ccfos/solo/elect"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	_, client := newTestClient(t)

	sub := New(client, "solo_election")
	received := make(chan elect.Message, 16)
	require.NoError(t, sub.Subscribe(context.Background(), func(m elect.Message) {
		received <- m
	}))
	defer sub.Close()

	pub := New(client, "solo_election")
	msg := elect.Message{Kind: elect.KindHeartbeat, PeerID: "peer-1"}
	require.NoError(t, pub.Publish(context.Background(), msg))

	select {
	case got := <-received:
		require.Equal(t, msg, got)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestSubscriberSeesOwnEcho(t *testing.T) {
	// redis fans out to every subscriber including the publisher, the
	// elector relies on filtering echoes by peer id
	_, client := newTestClient(t)

	b := New(client, "solo_election")
	received := make(chan elect.Message, 16)
	require.NoError(t, b.Subscribe(context.Background(), func(m elect.Message) {
		received <- m
	}))
	defer b.Close()

	msg := elect.Message{Kind: elect.KindResign, PeerID: "peer-self"}
	require.NoError(t, b.Publish(context.Background(), msg))

	select {
	case got := <-received:
		require.Equal(t, msg, got)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for echo")
	}
}

func TestMalformedPayloadDropped(t *testing.T) {
	_, client := newTestClient(t)

	b := New(client, "solo_election")
	received := make(chan elect.Message, 16)
	require.NoError(t, b.Subscribe(context.Background(), func(m elect.Message) {
		received <- m
	}))
	defer b.Close()

	require.NoError(t, client.Publish(context.Background(), "solo_election", "not json").Err())

	msg := elect.Message{Kind: elect.KindHeartbeat, PeerID: "peer-1"}
	require.NoError(t, b.Publish(context.Background(), msg))

	select {
	case got := <-received:
		require.Equal(t, msg, got, "the malformed payload must be skipped, not crash the loop")
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestCloseWithoutSubscribe(t *testing.T) {
	_, client := newTestClient(t)

	b := New(client, "solo_election")
	require.NoError(t, b.Close())
	require.NoError(t, b.Close(), "Close must be idempotent")
}

func TestCloseStopsReceiveLoop(t *testing.T) {
	_, client := newTestClient(t)

	b := New(client, "solo_election")
	require.NoError(t, b.Subscribe(context.Background(), func(m elect.Message) {}))

	done := make(chan struct{})
	go func() {
		b.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Close did not return")
	}
}
