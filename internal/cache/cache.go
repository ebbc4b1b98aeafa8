// Package cache stores extracted commit sets on disk so repeated runs over
// an unchanged repository skip the git walk.
package cache

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"

	"github.com/panbanda/devflow/pkg/models"
)

// DefaultTTL bounds how long an entry is served.
const DefaultTTL = 24 * time.Hour

// Cache is a directory of JSON entries named by the blake3 hash of their key.
// A disabled cache misses every lookup and discards every write.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
	now     func() time.Time
}

// Entry is one cached value. Checksum is the xxhash of Data and catches
// entries edited or truncated on disk.
type Entry struct {
	Key      string          `json:"key"`
	Created  time.Time       `json:"created"`
	Checksum uint64          `json:"checksum"`
	Data     json.RawMessage `json:"data"`
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source used for TTL checks.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a cache rooted at dir, creating it when enabled.
// A non-positive ttl uses DefaultTTL.
func New(dir string, ttl time.Duration, enabled bool, opts ...Option) (*Cache, error) {
	c := &Cache{dir: dir, ttl: ttl, enabled: enabled, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	if !enabled {
		return c, nil
	}
	if dir == "" {
		return nil, errors.New("cache directory is required")
	}
	if c.ttl <= 0 {
		c.ttl = DefaultTTL
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return c, nil
}

// Disabled returns a cache that never stores anything.
func Disabled() *Cache {
	return &Cache{now: time.Now}
}

// Enabled reports whether lookups can hit.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// HashBytes computes a BLAKE3 hash of bytes and returns it as a hex string.
func HashBytes(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// CommitKey identifies one extraction: the same repository state, window
// and filters on the same UTC day yield the same commits.
type CommitKey struct {
	Path   string
	Head   string
	Days   int
	Author string
	Branch string
	Limit  int
	Date   time.Time
}

// String is the canonical encoding hashed into the entry name.
func (k CommitKey) String() string {
	return strings.Join([]string{
		"commits/v2",
		k.Path,
		k.Head,
		strconv.Itoa(k.Days),
		k.Author,
		k.Branch,
		strconv.Itoa(k.Limit),
		k.Date.UTC().Format("2006-01-02"),
	}, "\x00")
}

// Get retrieves a cached entry if it exists and is not expired. Expired or
// unreadable entries are removed.
func (c *Cache) Get(key string) ([]byte, bool) {
	if !c.enabled {
		return nil, false
	}
	path := c.keyPath(key)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil || entry.Key != key || xxhash.Sum64(entry.Data) != entry.Checksum {
		_ = os.Remove(path)
		return nil, false
	}
	if c.now().Sub(entry.Created) > c.ttl {
		_ = os.Remove(path)
		return nil, false
	}
	return entry.Data, true
}

// Set stores JSON data under key. The write is atomic per entry.
func (c *Cache) Set(key string, data []byte) error {
	if !c.enabled {
		return nil
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return errors.New("cache data must be valid JSON")
	}
	data = compact.Bytes()
	raw, err := json.Marshal(Entry{Key: key, Created: c.now(), Checksum: xxhash.Sum64(data), Data: data})
	if err != nil {
		return err
	}
	path := c.keyPath(key)
	tmp, err := os.CreateTemp(c.dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// GetCommits returns the cached commit set for key.
func (c *Cache) GetCommits(key CommitKey) ([]models.Commit, bool) {
	data, ok := c.Get(key.String())
	if !ok {
		return nil, false
	}
	var commits []models.Commit
	if err := json.Unmarshal(data, &commits); err != nil {
		return nil, false
	}
	if commits == nil {
		commits = []models.Commit{}
	}
	return commits, true
}

// PutCommits stores a commit set under key.
func (c *Cache) PutCommits(key CommitKey, commits []models.Commit) error {
	if !c.enabled {
		return nil
	}
	data, err := json.Marshal(commits)
	if err != nil {
		return fmt.Errorf("encode commits: %w", err)
	}
	return c.Set(key.String(), data)
}

// Invalidate removes a cache entry. Missing entries are not an error.
func (c *Cache) Invalidate(key string) error {
	if !c.enabled {
		return nil
	}
	if err := os.Remove(c.keyPath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Clear removes all cache entries.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	return os.RemoveAll(c.dir)
}

func (c *Cache) keyPath(key string) string {
	return filepath.Join(c.dir, HashBytes([]byte(key))+".json")
}

// Stats summarizes the cache directory.
type Stats struct {
	Entries   int           `json:"entries"`
	TotalSize int64         `json:"total_size"`
	OldestAge time.Duration `json:"oldest_age"`
	NewestAge time.Duration `json:"newest_age"`
}

// GetStats returns statistics about the cache.
func (c *Cache) GetStats() (*Stats, error) {
	stats := &Stats{}
	if !c.enabled {
		return stats, nil
	}
	var oldest, newest time.Time
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		stats.Entries++
		stats.TotalSize += info.Size()
		mod := info.ModTime()
		if oldest.IsZero() || mod.Before(oldest) {
			oldest = mod
		}
		if newest.IsZero() || mod.After(newest) {
			newest = mod
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	now := c.now()
	if !oldest.IsZero() {
		stats.OldestAge = now.Sub(oldest)
	}
	if !newest.IsZero() {
		stats.NewestAge = now.Sub(newest)
	}
	return stats, nil
}
