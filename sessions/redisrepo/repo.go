package redisrepo

import (
	"context"

	"github.com/jrsteele09/billing-admin/internal/errors"
	"github.com/jrsteele09/billing-admin/sessions"
	"github.com/redis/go-redis/v9"
)

var _ sessions.Repo = (*Repo)(nil)

// Repo keeps the durable session in Redis under prefix+key. Writes go through MULTI/EXEC so they land together.
type Repo struct {
	redis  redis.UniversalClient
	prefix string
}

func New(client redis.UniversalClient, prefix string) *Repo {
	return &Repo{redis: client, prefix: prefix}
}

func (r *Repo) key(k string) string {
	return r.prefix + k
}

func (r *Repo) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.redis.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "[redisrepo Get] %s", key)
	}
	return v, true, nil
}

func (r *Repo) SetMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	_, err := r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, r.key(k), v, 0)
		}
		return nil
	})
	return errors.Wrapf(err, "[redisrepo SetMany]")
}

func (r *Repo) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = r.key(k)
	}
	return errors.Wrapf(r.redis.Del(ctx, prefixed...).Err(), "[redisrepo Delete]")
}

// Ping checks the connection, used at startup and by the health endpoint.
func (r *Repo) Ping(ctx context.Context) error {
	return errors.Wrapf(r.redis.Ping(ctx).Err(), "[redisrepo Ping]")
}
