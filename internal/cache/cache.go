// Package cache stores normalized input tables between loads, so repeated
// commands over the same files skip re-parsing. Keys bind to the file's
// path, size, and mtime; a touched file always misses.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// TableKey generates a cache key for an input table file. The mtime and
// size are part of the key so stale entries are unreachable rather than
// merely expired.
func TableKey(path string, modTime time.Time, size int64) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%d", path, modTime.UnixNano(), size)))
	return "satz:v1:" + hex.EncodeToString(hash[:])
}
