package session

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/rs/zerolog"

	"github.com/SoeMoeHtet18/telegram-bot/internal/models"
)

// MapBrowsing keeps browsing sessions for the life of the process.
type MapBrowsing struct {
	mu       sync.RWMutex
	sessions map[int64]models.BrowsingSession
}

func NewMapBrowsing() *MapBrowsing {
	return &MapBrowsing{sessions: map[int64]models.BrowsingSession{}}
}

func (m *MapBrowsing) Get(userID int64) (models.BrowsingSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	return s, ok
}

func (m *MapBrowsing) Set(userID int64, s models.BrowsingSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = s
}

func (m *MapBrowsing) Close() error { return nil }

// CacheBrowsing evicts sessions that have not been written for the cache life
// window. Every page transition rewrites the entry. The cache holds only a
// small per-write token that acts as the expiry clock; the snapshot itself
// lives in a map, so entry size never depends on the catalog size.
type CacheBrowsing struct {
	cache  *bigcache.BigCache
	logger zerolog.Logger

	mu       sync.Mutex
	next     uint64
	sessions map[int64]cachedSession
}

type cachedSession struct {
	token   uint64
	session models.BrowsingSession
}

func NewCacheBrowsing(ctx context.Context, ttl time.Duration, logger zerolog.Logger) (*CacheBrowsing, error) {
	c := &CacheBrowsing{logger: logger, sessions: map[int64]cachedSession{}}

	cfg := bigcache.DefaultConfig(ttl)
	cfg.Shards = 64
	cfg.MaxEntriesInWindow = 1024
	cfg.MaxEntrySize = 64
	cfg.HardMaxCacheSize = 16
	cfg.Verbose = false
	cfg.OnRemove = c.evict
	if ttl < time.Minute {
		cfg.CleanWindow = ttl / 2
	}
	cache, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.cache = cache
	return c, nil
}

func (c *CacheBrowsing) Get(userID int64) (models.BrowsingSession, bool) {
	key := strconv.FormatInt(userID, 10)
	b, err := c.cache.Get(key)
	if err != nil {
		if !errors.Is(err, bigcache.ErrEntryNotFound) {
			c.logger.Warn().Err(err).Int64("user_id", userID).Msg("browsing session read failed")
		}
		return models.BrowsingSession{}, false
	}
	token, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		c.logger.Warn().Err(err).Int64("user_id", userID).Msg("corrupt browsing session dropped")
		_ = c.cache.Delete(key)
		c.drop(userID, 0)
		return models.BrowsingSession{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.sessions[userID]
	if !ok || entry.token != token {
		return models.BrowsingSession{}, false
	}
	return entry.session, true
}

func (c *CacheBrowsing) Set(userID int64, s models.BrowsingSession) {
	c.mu.Lock()
	c.next++
	token := c.next
	c.sessions[userID] = cachedSession{token: token, session: s}
	c.mu.Unlock()

	if err := c.cache.Set(strconv.FormatInt(userID, 10), []byte(strconv.FormatUint(token, 10))); err != nil {
		c.logger.Warn().Err(err).Int64("user_id", userID).Msg("browsing session write failed")
		c.drop(userID, token)
	}
}

// evict runs when bigcache removes an entry. A token that no longer matches
// the map belongs to an older write and is ignored.
func (c *CacheBrowsing) evict(key string, entry []byte) {
	userID, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return
	}
	token, err := strconv.ParseUint(string(entry), 10, 64)
	if err != nil {
		return
	}
	c.drop(userID, token)
}

// drop removes the snapshot for userID. A zero token drops it regardless of
// which write stored it.
func (c *CacheBrowsing) drop(userID int64, token uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.sessions[userID]; ok && (token == 0 || entry.token == token) {
		delete(c.sessions, userID)
	}
}

func (c *CacheBrowsing) Close() error {
	return c.cache.Close()
}
