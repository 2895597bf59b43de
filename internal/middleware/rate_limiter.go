package middleware

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/DavidJaure/CRUDapiDB/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// AttemptStore counts attempts per key inside a fixed window.
type AttemptStore interface {
	// Hit records one attempt and returns the count for the current window.
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// ── Login rate limiter ────────────────────────────────────────────────────────

// LoginLimiter limits login attempts per client IP. It is owned by the router;
// there is no package-level state.
type LoginLimiter struct {
	store  AttemptStore
	limit  int64
	window time.Duration
}

func NewLoginLimiter(store AttemptStore, limit int) *LoginLimiter {
	return &LoginLimiter{store: store, limit: int64(limit), window: time.Minute}
}

func (l *LoginLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := l.store.Hit(c.Request.Context(), "login:"+c.ClientIP(), l.window)
		if err != nil {
			// The limiter never blocks logins because its store is down.
			log.Warn().Err(err).Str("request_id", c.GetString(RequestIDKey)).Msg("login limiter unavailable")
			c.Next()
			return
		}
		if count > l.limit {
			c.Header("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			abort(c, apierror.NewTooManyRequests("Demasiados intentos de login. Intente en 1 minuto."))
			return
		}
		c.Next()
	}
}

// ── In-memory store ───────────────────────────────────────────────────────────

const purgeInterval = 5 * time.Minute

type ipEntry struct {
	count     int64
	windowEnd time.Time
}

// MemoryStore keeps counters in process. Expired entries are purged lazily
// while recording hits.
type MemoryStore struct {
	mu        sync.Mutex
	entries   map[string]*ipEntry
	now       func() time.Time
	nextPurge time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*ipEntry), now: time.Now}
}

func (s *MemoryStore) Hit(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.After(s.nextPurge) {
		s.purge(now)
		s.nextPurge = now.Add(purgeInterval)
	}

	entry, ok := s.entries[key]
	if !ok || now.After(entry.windowEnd) {
		entry = &ipEntry{windowEnd: now.Add(window)}
		s.entries[key] = entry
	}
	entry.count++
	return entry.count, nil
}

func (s *MemoryStore) purge(now time.Time) {
	purged := 0
	for key, entry := range s.entries {
		if now.After(entry.windowEnd) {
			delete(s.entries, key)
			purged++
		}
	}
	if purged > 0 {
		log.Debug().
			Int("entries_purged", purged).
			Int("entries_remaining", len(s.entries)).
			Msg("login limiter purged")
	}
}

// ── Redis store ───────────────────────────────────────────────────────────────

// RedisStore shares counters between server instances. The key expires with
// the window, so Redis does the purging.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: "biciusuarios:ratelimit:"}
}

func (s *RedisStore) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	k := s.prefix + key
	count, err := s.rdb.Incr(ctx, k).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := s.rdb.Expire(ctx, k, window).Err(); err != nil {
			return 0, err
		}
	}
	return count, nil
}
