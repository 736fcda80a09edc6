package property

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// CacheClient is the part of *redis.Client used by the property cache.
type CacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// cachedRepository is a read-through cache for single properties.
// Redis failures are logged and the call falls through to the wrapped repository.
type cachedRepository struct {
	Repository
	client CacheClient
	ttl    time.Duration
	log    logrus.FieldLogger
}

// NewCachedRepository wraps next with a redis cache for GetByID.
func NewCachedRepository(next Repository, client CacheClient, ttl time.Duration, log logrus.FieldLogger) Repository {
	return &cachedRepository{
		Repository: next,
		client:     client,
		ttl:        ttl,
		log:        log.WithField("component", "property_cache"),
	}
}

func cacheKey(id string) string {
	return "property:" + id
}

func (r *cachedRepository) GetByID(ctx context.Context, id string) (*Property, error) {
	key := cacheKey(id)

	data, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p Property
		if err := json.Unmarshal(data, &p); err == nil {
			return &p, nil
		}
		r.log.WithField("key", key).Warn("discarding undecodable cache entry")
	case !errors.Is(err, redis.Nil):
		r.log.WithError(err).WithField("key", key).Warn("cache read failed")
	}

	p, err := r.Repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(p); err == nil {
		if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
			r.log.WithError(err).WithField("key", key).Warn("cache write failed")
		}
	}
	return p, nil
}

func (r *cachedRepository) Update(ctx context.Context, p *Property) error {
	if err := r.Repository.Update(ctx, p); err != nil {
		return err
	}
	r.invalidate(ctx, p.ID)
	return nil
}

func (r *cachedRepository) SetActive(ctx context.Context, id string, active bool) error {
	if err := r.Repository.SetActive(ctx, id, active); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *cachedRepository) AddImage(ctx context.Context, id, fileID string) error {
	if err := r.Repository.AddImage(ctx, id, fileID); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *cachedRepository) invalidate(ctx context.Context, id string) {
	if err := r.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		r.log.WithError(err).WithField("key", cacheKey(id)).Warn("cache invalidation failed")
	}
}
