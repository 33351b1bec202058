// Package taskstatus tracks live delivery status of queued notification
// tasks in Redis, keyed by task ID. Postgres keeps the durable record;
// Redis answers "did my email go out yet" cheaply.
package taskstatus

import (
	"context"
	"fmt"
	"time"

	"github.com/derivativegenius/backend/internal/model"
	"github.com/redis/go-redis/v9"
)

const (
	// keyPrefix namespaces task status keys in Redis.
	keyPrefix = "dgenius:task:"

	// statusTTL bounds how long a task status is remembered. Delivery
	// outcomes older than this live only in Postgres.
	statusTTL = 7 * 24 * time.Hour
)

// Store tracks per-task delivery status.
type Store struct {
	rdb *redis.Client
}

// New creates a status store backed by the given Redis client.
func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// NewFromURL connects to Redis using a redis:// URL.
func NewFromURL(url string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("taskstatus: parse redis url: %w", err)
	}
	return New(redis.NewClient(opts)), nil
}

// Ping checks the Redis connection.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.rdb.Ping(ctx).Err()
}

// Set records the delivery status for a task.
func (s *Store) Set(ctx context.Context, id string, status model.TaskStatus) error {
	key := keyPrefix + id
	if err := s.rdb.Set(ctx, key, string(status), statusTTL).Err(); err != nil {
		return fmt.Errorf("taskstatus: set %s: %w", id, err)
	}
	return nil
}

// Get returns the delivery status for a task, or ErrNotFound-style
// redis.Nil when the task is unknown or expired.
func (s *Store) Get(ctx context.Context, id string) (model.TaskStatus, error) {
	v, err := s.rdb.Get(ctx, keyPrefix+id).Result()
	if err != nil {
		return "", fmt.Errorf("taskstatus: get %s: %w", id, err)
	}
	return model.TaskStatus(v), nil
}

// Close releases the underlying Redis connection.
func (s *Store) Close() error {
	return s.rdb.Close()
}
