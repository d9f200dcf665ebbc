package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-qc/internal/shared/foundryapi"
	"github.com/redis/go-redis/v9"
)

const masterPartsKey = "qc:master_parts"

// MasterPartCache caches the master part list shared by every form.
type MasterPartCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewMasterPartCache(rdb *redis.Client, ttl time.Duration) *MasterPartCache {
	return &MasterPartCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached list, or ErrNotFound on a miss.
func (c *MasterPartCache) Get(ctx context.Context) ([]foundryapi.MasterPart, error) {
	data, err := c.rdb.Get(ctx, masterPartsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get master parts: %w", err)
	}
	var parts []foundryapi.MasterPart
	if err := json.Unmarshal(data, &parts); err != nil {
		return nil, fmt.Errorf("decode master parts: %w", err)
	}
	return parts, nil
}

func (c *MasterPartCache) Set(ctx context.Context, parts []foundryapi.MasterPart) error {
	data, err := json.Marshal(parts)
	if err != nil {
		return fmt.Errorf("encode master parts: %w", err)
	}
	return c.rdb.Set(ctx, masterPartsKey, data, c.ttl).Err()
}
