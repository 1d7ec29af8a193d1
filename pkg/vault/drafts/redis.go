package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tendant/vault/pkg/vault"
)

// DefaultRedisKey is the hash holding every draft.
const DefaultRedisKey = "vault:drafts"

// RedisStore keeps drafts in a single Redis hash, one JSON field per id.
type RedisStore struct {
	client *redis.Client
	key    string
	now    func() time.Time
}

type envelope struct {
	SavedAt time.Time    `json:"savedAt"`
	Record  vault.Record `json:"record"`
}

// NewRedisStore creates a draft store on client. An empty key means
// DefaultRedisKey.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key, now: time.Now}
}

// Connect opens a client from a redis:// URL and verifies it with a ping.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (s *RedisStore) List(ctx context.Context) ([]vault.Record, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, &vault.StorageError{Backend: "redis", Key: s.key, Op: "list", Err: err}
	}

	envs := make([]envelope, 0, len(fields))
	for id, raw := range fields {
		var env envelope
		if err := json.Unmarshal([]byte(raw), &env); err != nil {
			return nil, &vault.StorageError{Backend: "redis", Key: id, Op: "decode", Err: err}
		}
		envs = append(envs, env)
	}
	sort.Slice(envs, func(i, j int) bool {
		if !envs[i].SavedAt.Equal(envs[j].SavedAt) {
			return envs[i].SavedAt.Before(envs[j].SavedAt)
		}
		return fmt.Sprint(envs[i].Record["id"]) < fmt.Sprint(envs[j].Record["id"])
	})

	out := make([]vault.Record, len(envs))
	for i, env := range envs {
		out[i] = env.Record
	}
	return out, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (vault.Record, error) {
	raw, err := s.client.HGet(ctx, s.key, strings.TrimSpace(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, vault.ErrDraftNotFound
	}
	if err != nil {
		return nil, &vault.StorageError{Backend: "redis", Key: id, Op: "get", Err: err}
	}

	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, &vault.StorageError{Backend: "redis", Key: id, Op: "decode", Err: err}
	}
	return env.Record, nil
}

func (s *RedisStore) Save(ctx context.Context, record vault.Record) (string, error) {
	rec, id := prepare(record)

	savedAt := s.now().UTC()
	// keep the original position when a draft is overwritten
	if raw, err := s.client.HGet(ctx, s.key, id).Result(); err == nil {
		var prev envelope
		if json.Unmarshal([]byte(raw), &prev) == nil && !prev.SavedAt.IsZero() {
			savedAt = prev.SavedAt
		}
	}

	data, err := json.Marshal(envelope{SavedAt: savedAt, Record: rec})
	if err != nil {
		return "", &vault.StorageError{Backend: "redis", Key: id, Op: "encode", Err: err}
	}
	if err := s.client.HSet(ctx, s.key, id, data).Err(); err != nil {
		return "", &vault.StorageError{Backend: "redis", Key: id, Op: "save", Err: err}
	}
	return id, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.HDel(ctx, s.key, strings.TrimSpace(id)).Result()
	if err != nil {
		return &vault.StorageError{Backend: "redis", Key: id, Op: "delete", Err: err}
	}
	if n == 0 {
		return vault.ErrDraftNotFound
	}
	return nil
}
