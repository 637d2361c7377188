package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	indexKey = "exchanges"
	// maxIndexed bounds the index; older members age out with their records
	maxIndexed = 1000
)

// RedisStore implements Store using Redis. Each exchange is a JSON string
// with a TTL; a sorted set keyed by receive time orders them.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a new Redis-backed store
func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{
		client: client,
		ttl:    ttl,
	}, nil
}

func (r *RedisStore) exchangeKey(id string) string {
	return fmt.Sprintf("exchange:%s", id)
}

// Save writes the exchange and adds it to the index
func (r *RedisStore) Save(ctx context.Context, ex *Exchange) error {
	if ex.ID == "" {
		ex.ID = uuid.NewString()
	}
	if ex.ReceivedAt.IsZero() {
		ex.ReceivedAt = time.Now().UTC()
	}

	data, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("failed to marshal exchange: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.exchangeKey(ex.ID), data, r.ttl)
	pipe.ZAdd(ctx, indexKey, redis.Z{
		Score:  float64(ex.ReceivedAt.UnixMilli()),
		Member: ex.ID,
	})
	pipe.ZRemRangeByRank(ctx, indexKey, 0, -maxIndexed-1)
	pipe.Expire(ctx, indexKey, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save exchange to Redis: %w", err)
	}
	return nil
}

// Recent returns the newest exchanges. Index members whose record has
// expired are skipped and pruned.
func (r *RedisStore) Recent(ctx context.Context, limit int) ([]Exchange, error) {
	if limit <= 0 {
		return []Exchange{}, nil
	}

	ids, err := r.client.ZRevRange(ctx, indexKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read exchange index: %w", err)
	}
	if len(ids) == 0 {
		return []Exchange{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.exchangeKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load exchanges: %w", err)
	}

	out := make([]Exchange, 0, len(values))
	var stale []any
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		var ex Exchange
		if err := json.Unmarshal([]byte(raw), &ex); err != nil {
			return nil, fmt.Errorf("failed to parse exchange %s: %w", ids[i], err)
		}
		out = append(out, ex)
	}

	if len(stale) > 0 {
		if err := r.client.ZRem(ctx, indexKey, stale...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune exchange index: %w", err)
		}
	}
	return out, nil
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// Ping verifies the Redis connection is alive
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
