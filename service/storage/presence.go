package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// presence key: chat:presence:<user>
// value is the gateway node id, TTL bounds staleness if the process dies
// without cleaning up.
func presenceKey(user string) string { return "chat:presence:" + user }

// Mirror copies the in-process online set into redis so external tooling
// can observe liveness. It is observational only: fanout and directed
// delivery never consult it.
type Mirror struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewMirror(rdb *redis.Client, ttl time.Duration) *Mirror {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Mirror{rdb: rdb, ttl: ttl}
}

func (m *Mirror) Online(ctx context.Context, user, nodeID string) error {
	return m.rdb.Set(ctx, presenceKey(user), nodeID, m.ttl).Err()
}

func (m *Mirror) Offline(ctx context.Context, user string) error {
	return m.rdb.Del(ctx, presenceKey(user)).Err()
}

// Lookup reports whether the user has a live presence key and on which node.
func (m *Mirror) Lookup(ctx context.Context, user string) (nodeID string, online bool, err error) {
	val, err := m.rdb.Get(ctx, presenceKey(user)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}
