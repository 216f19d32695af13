package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/ppiankov/curator/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey generates a cache key from a URL
func CacheKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "curator:v1:" + hex.EncodeToString(hash[:])
}

// New builds the cache described by cfg: memory in front of redis when an
// address is configured, otherwise memory in front of disk when a directory
// is configured, otherwise memory only. A disabled cache returns nil.
func New(cfg model.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	memory := NewMemoryCache(ttl, 10*time.Minute)

	switch {
	case cfg.Redis.Addr != "":
		redisCache, err := NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, ttl)
		if err != nil {
			return nil, err
		}
		return NewLayeredCache(memory, redisCache), nil
	case cfg.DiskDir != "":
		return NewLayeredCache(memory, NewDiskCache(cfg.DiskDir, ttl)), nil
	default:
		return memory, nil
	}
}
