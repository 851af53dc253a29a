package redisbus

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ccfos/solo/elect"
	"github.com/ccfos/solo/storage"

	"github.com/redis/go-redis/v9"
	"github.com/toolkits/pkg/logger"
)

const receiveBackoff = time.Second

// Bus carries election messages over a Redis Pub/Sub channel. Redis fans a
// published message out to every subscriber, including the publisher
// itself; the elector filters its own echoes by peer id.
type Bus struct {
	client  storage.Redis
	channel string

	mu        sync.Mutex
	ps        *redis.PubSub
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

func New(client storage.Redis, channel string) *Bus {
	return &Bus{
		client:  client,
		channel: channel,
	}
}

func (b *Bus) Publish(ctx context.Context, m elect.Message) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

// Subscribe opens the subscription and starts the receive loop. The error
// path matters: a peer that cannot subscribe must not participate in the
// election at all, so the subscription is confirmed before returning.
func (b *Bus) Subscribe(ctx context.Context, handler func(elect.Message)) error {
	ps := b.client.Subscribe(ctx, b.channel)
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return err
	}

	rctx, cancel := context.WithCancel(context.Background())

	b.mu.Lock()
	b.ps = ps
	b.cancel = cancel
	b.done = make(chan struct{})
	b.mu.Unlock()

	go b.receive(rctx, ps, handler)
	return nil
}

func (b *Bus) receive(ctx context.Context, ps *redis.PubSub, handler func(elect.Message)) {
	defer close(b.done)

	for {
		msg, err := ps.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// go-redis re-establishes the subscription underneath;
			// heartbeats missed meanwhile are covered by the timeout path
			logger.Warningf("bus receive failed, retrying: %v", err)
			time.Sleep(receiveBackoff)
			continue
		}

		var m elect.Message
		if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
			logger.Warningf("dropping malformed election message: %v", err)
			continue
		}

		handler(m)
	}
}

// Close releases the subscription and waits for the receive loop to exit.
// Safe to call during peer shutdown regardless of Subscribe having been
// called.
func (b *Bus) Close() error {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if b.cancel != nil {
			b.cancel()
		}
		if b.ps != nil {
			b.ps.Close()
		}
		if b.done != nil {
			<-b.done
		}
	})
	return nil
}
