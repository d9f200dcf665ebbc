package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/redis/go-redis/v9"
)

// SessionStore keeps open form sessions between requests.
type SessionStore interface {
	Get(ctx context.Context, id string) (*entity.FormSession, error)
	Save(ctx context.Context, s *entity.FormSession) error
	Delete(ctx context.Context, id string) error
}

const sessionKeyPrefix = "qc:session:"

// RedisSessionStore stores sessions as JSON with a sliding TTL.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*entity.FormSession, error) {
	data, err := s.rdb.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	var sess entity.FormSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, sess *entity.FormSession) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKeyPrefix+sess.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, sessionKeyPrefix+id).Err()
}

// MemorySessionStore is the single-process store used when Redis is not
// configured, and in tests.
type MemorySessionStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]memoryItem
	now   func() time.Time
}

type memoryItem struct {
	data      []byte
	expiresAt time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{ttl: ttl, items: make(map[string]memoryItem), now: time.Now}
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (*entity.FormSession, error) {
	s.mu.Lock()
	item, ok := s.items[id]
	if ok && s.ttl > 0 && s.now().After(item.expiresAt) {
		delete(s.items, id)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	var sess entity.FormSession
	if err := json.Unmarshal(item.data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

// Save stores a serialized copy, so later changes to sess are not visible
// until saved again.
func (s *MemorySessionStore) Save(_ context.Context, sess *entity.FormSession) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	s.mu.Lock()
	s.items[sess.ID] = memoryItem{data: data, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
	return nil
}
