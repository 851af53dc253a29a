package peers

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/ccfos/solo/elect"
	"github.com/ccfos/solo/storage"

	"github.com/toolkits/pkg/logger"
)

const (
	keyPrefix       = "solo_peer_"
	persistInterval = 3 * time.Second
	metaTTL         = 10 * time.Second
)

// Meta is what each peer publishes about itself. Pure observability: the
// election never consults the registry, it only feeds the HTTP API.
type Meta struct {
	PeerID   string `json:"peer_id"`
	Hostname string `json:"hostname"`
	Pid      int    `json:"pid"`
	Role     string `json:"role"`
	Clock    int64  `json:"clock"`
}

type Set struct {
	sync.RWMutex
	meta  Meta
	redis storage.Redis
}

func New(redis storage.Redis, id elect.PeerID) *Set {
	hostname, err := os.Hostname()
	if err != nil {
		logger.Warningf("failed to get hostname: %v", err)
	}

	set := &Set{
		meta: Meta{
			PeerID:   string(id),
			Hostname: hostname,
			Pid:      os.Getpid(),
			Role:     elect.RoleUnknown.String(),
		},
		redis: redis,
	}

	set.Init()
	return set
}

func (s *Set) Init() {
	go s.LoopPersist()
}

func (s *Set) SetRole(role string) {
	s.Lock()
	s.meta.Role = role
	s.Unlock()
}

func (s *Set) LoopPersist() {
	for {
		s.persist()
		time.Sleep(persistInterval)
	}
}

func (s *Set) persist() {
	s.RLock()
	meta := s.meta
	s.RUnlock()

	meta.Clock = time.Now().Unix()

	buf, err := json.Marshal(meta)
	if err != nil {
		logger.Errorf("failed to marshal peer meta: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// the TTL makes crashed peers disappear without a sweeper
	if err := s.redis.Set(ctx, keyPrefix+meta.PeerID, buf, metaTTL).Err(); err != nil {
		logger.Errorf("failed to persist peer meta: %v", err)
	}
}

// ActivePeers lists every peer whose presence key has not expired yet.
func (s *Set) ActivePeers(ctx context.Context) ([]Meta, error) {
	var keys []string
	var cursor uint64

	for {
		batch, next, err := storage.Scan(ctx, s.redis, cursor, keyPrefix+"*", 100)
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	metas := make([]Meta, 0, len(keys))
	for _, val := range storage.MGet(ctx, s.redis, keys) {
		var meta Meta
		if err := json.Unmarshal(val, &meta); err != nil {
			logger.Warningf("failed to unmarshal peer meta: %v", err)
			continue
		}
		metas = append(metas, meta)
	}

	return metas, nil
}

// Deregister removes this peer's presence key, best-effort on shutdown.
func (s *Set) Deregister(ctx context.Context) error {
	s.RLock()
	key := keyPrefix + s.meta.PeerID
	s.RUnlock()
	return storage.MDel(ctx, s.redis, key)
}
