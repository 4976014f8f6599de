package redis

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"marketmap/internal/domain/repository"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
)

type cmdable interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}

// preferenceRepository implements the repository.PreferenceRepository interface.
type preferenceRepository struct {
	store     cmdable
	keyPrefix string
	ttl       time.Duration
}

// NewPreferenceRepository stores each preference under <prefix>:pref:<owner>:<key>.
// A positive ttl is refreshed on every write.
func NewPreferenceRepository(client *goredis.Client, keyPrefix string, ttl time.Duration) repository.PreferenceRepository {
	return newPreferenceRepository(client, keyPrefix, ttl)
}

func newPreferenceRepository(store cmdable, keyPrefix string, ttl time.Duration) *preferenceRepository {
	return &preferenceRepository{
		store:     store,
		keyPrefix: strings.TrimSuffix(keyPrefix, ":"),
		ttl:       ttl,
	}
}

func (repo *preferenceRepository) redisKey(owner, key string) string {
	parts := []string{"pref", owner, key}
	if repo.keyPrefix != "" {
		parts = append([]string{repo.keyPrefix}, parts...)
	}
	return strings.Join(parts, ":")
}

// Get decodes the document stored under key into dst.
func (repo *preferenceRepository) Get(ctx context.Context, owner, key string, dst any) (bool, error) {
	raw, err := repo.store.Get(ctx, repo.redisKey(owner, key)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}

		return false, errors.Wrapf(err, "failed to read preference %s", key)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return false, errors.Wrapf(err, "failed to decode preference %s", key)
	}

	return true, nil
}

// Put replaces the document stored under key.
func (repo *preferenceRepository) Put(ctx context.Context, owner, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "failed to encode preference %s", key)
	}

	if err := repo.store.Set(ctx, repo.redisKey(owner, key), raw, repo.ttl).Err(); err != nil {
		return errors.Wrapf(err, "failed to store preference %s", key)
	}

	return nil
}

// Delete removes the document stored under key.
func (repo *preferenceRepository) Delete(ctx context.Context, owner, key string) error {
	if err := repo.store.Del(ctx, repo.redisKey(owner, key)).Err(); err != nil {
		return errors.Wrapf(err, "failed to delete preference %s", key)
	}

	return nil
}
