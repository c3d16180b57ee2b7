package session

import (
	"context"
	"encoding/json"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"github.com/januslabs/janus/internal/infrastructure/gemini"
	"github.com/januslabs/janus/internal/infrastructure/redis"
)

// credentialKey is the Redis key the cookie pair lives under. Rotated and
// pushed cookies are persisted here so they survive restarts.
const credentialKey = "janus:credentials"

type CredentialStore interface {
	Save(ctx context.Context, creds gemini.Credentials) error
	Load(ctx context.Context) (gemini.Credentials, bool, error)
	Clear(ctx context.Context) error
}

type RedisStore struct {
	redisService *redis.Service
}

type MemoryStore struct {
	mu    sync.RWMutex
	creds gemini.Credentials
	set   bool
}

func newMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Redis Store implementation
func (rs *RedisStore) Save(ctx context.Context, creds gemini.Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}

	return rs.redisService.Set(ctx, credentialKey, string(data), 0)
}

func (rs *RedisStore) Load(ctx context.Context) (gemini.Credentials, bool, error) {
	data, err := rs.redisService.Get(ctx, credentialKey)
	if err == goredis.Nil {
		return gemini.Credentials{}, false, nil
	}
	if err != nil {
		return gemini.Credentials{}, false, err
	}

	var creds gemini.Credentials
	if err := json.Unmarshal([]byte(data), &creds); err != nil {
		return gemini.Credentials{}, false, err
	}

	return creds, true, nil
}

func (rs *RedisStore) Clear(ctx context.Context) error {
	return rs.redisService.Delete(ctx, credentialKey)
}

// Memory Store implementation
func (ms *MemoryStore) Save(ctx context.Context, creds gemini.Credentials) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.creds = creds
	ms.set = true
	return nil
}

func (ms *MemoryStore) Load(ctx context.Context) (gemini.Credentials, bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.creds, ms.set, nil
}

func (ms *MemoryStore) Clear(ctx context.Context) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.creds = gemini.Credentials{}
	ms.set = false
	return nil
}
