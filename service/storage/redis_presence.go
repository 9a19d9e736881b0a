package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Presence mirrors who is online (and on which gateway node) into Redis so
// other nodes can look peers up. Key: im:presence:<user>, value: node id,
// TTL bounds staleness; pong handling renews it. A nil *Presence is a valid
// no-op mirror for single-node runs.
type Presence struct {
	rdb  *redis.Client
	node string
	ttl  time.Duration
}

func NewPresence(rdb *redis.Client, node string, ttl time.Duration) *Presence {
	return &Presence{rdb: rdb, node: node, ttl: ttl}
}

func presenceKey(user string) string { return "im:presence:" + user }

// Online marks the user online on this node and arms the TTL.
func (p *Presence) Online(ctx context.Context, user string) error {
	if p == nil {
		return nil
	}
	return p.rdb.Set(ctx, presenceKey(user), p.node, p.ttl).Err()
}

// Renew extends the TTL; called from the pong handler.
func (p *Presence) Renew(ctx context.Context, user string) error {
	if p == nil {
		return nil
	}
	return p.rdb.Expire(ctx, presenceKey(user), p.ttl).Err()
}

// Offline deletes the key; called on the last local disconnect.
func (p *Presence) Offline(ctx context.Context, user string) error {
	if p == nil {
		return nil
	}
	return p.rdb.Del(ctx, presenceKey(user)).Err()
}

// Lookup reports whether the user is online and on which node.
func (p *Presence) Lookup(ctx context.Context, user string) (node string, online bool, err error) {
	if p == nil {
		return "", false, nil
	}
	val, err := p.rdb.Get(ctx, presenceKey(user)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "presence lookup")
	}
	return val, true, nil
}
