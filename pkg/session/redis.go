package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the connection settings for the Redis-backed
// session repository.
type RedisConfig struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"720h"`
}

var (
	// ErrInvalidRedisURL indicates the connection URL could not be parsed
	ErrInvalidRedisURL = errors.New("session: invalid redis connection url")

	// ErrRedisNotReady indicates the server did not answer within the
	// configured retry budget
	ErrRedisNotReady = errors.New("session: redis not ready")
)

// Connect establishes a Redis connection with retries, pinging the
// server before handing the client back.
func Connect(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	opt, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidRedisURL, err)
	}

	for i := 0; i < cfg.RetryAttempts; i++ {
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	return nil, ErrRedisNotReady
}

// RedisRepository implements Repository on top of Redis. Sessions are
// stored JSON-encoded under session:<id> with a per-user index key so
// GetSessionByUserID stays a single lookup.
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRepository creates a Redis-backed session repository.
// A non-positive ttl keeps sessions until explicitly ended.
func NewRedisRepository(client *redis.Client, ttl time.Duration) *RedisRepository {
	return &RedisRepository{client: client, ttl: ttl}
}

func sessionKey(id uuid.UUID) string   { return "session:" + id.String() }
func userIndexKey(id uuid.UUID) string { return "session:user:" + id.String() }

// CreateSession stores a new active session for the user.
func (r *RedisRepository) CreateSession(ctx context.Context, userID uuid.UUID) (*Session, error) {
	s := NewSession(userID)

	raw, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Join(ErrEncoding, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKey(s.ID), raw, r.expiration())
	pipe.Set(ctx, userIndexKey(userID), s.ID.String(), r.expiration())
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return s, nil
}

// EndSession marks the session inactive and drops the user index entry.
func (r *RedisRepository) EndSession(ctx context.Context, id uuid.UUID) error {
	s, err := r.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if !s.Active {
		return ErrSessionEnded
	}

	s.Active = false
	raw, err := json.Marshal(s)
	if err != nil {
		return errors.Join(ErrEncoding, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKey(id), raw, r.expiration())
	pipe.Del(ctx, userIndexKey(s.UserID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by id.
func (r *RedisRepository) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	raw, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, errors.Join(ErrEncoding, err)
	}
	return &s, nil
}

// GetSessionByUserID retrieves the session currently indexed for the user.
func (r *RedisRepository) GetSessionByUserID(ctx context.Context, userID uuid.UUID) (*Session, error) {
	idStr, err := r.client.Get(ctx, userIndexKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session index: %w", err)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, errors.Join(ErrEncoding, err)
	}
	return r.GetSession(ctx, id)
}

func (r *RedisRepository) expiration() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	return r.ttl
}

var _ Repository = (*RedisRepository)(nil)
