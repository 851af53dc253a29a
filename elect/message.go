package elect

type Kind string

const (
	// KindHeartbeat announces "I am alive and leading".
	KindHeartbeat Kind = "heartbeat"
	// KindResign announces "I am stepping down now".
	KindResign Kind = "resign"
)

// Message is what peers exchange on the bus. No sequence numbers, no
// clocks: the protocol tolerates loss, duplication and reordering.
type Message struct {
	Kind   Kind   `json:"kind"`
	PeerID PeerID `json:"peer_id"`
}
