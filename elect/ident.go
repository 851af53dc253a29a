package elect

import "github.com/google/uuid"

// PeerID identifies one process instance for the lifetime of the process.
// Successive restarts of the same logical peer get fresh ids. UUIDs are
// fixed-width hex so plain string comparison gives the total order the
// split-brain tie-break relies on.
type PeerID string

func NewPeerID() PeerID {
	return PeerID(uuid.NewString())
}
