package elect

import "context"

// Bus is the broadcast transport the election runs on: best-effort
// delivery to all other live peers, no ordering guarantee, duplicates
// allowed. The handler passed to Subscribe may be invoked from any
// goroutine; it must not block forever.
type Bus interface {
	Publish(ctx context.Context, m Message) error
	Subscribe(ctx context.Context, handler func(Message)) error
	Close() error
}
