package translate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const cacheKeyPrefix = "translate:"

// cacheTimeout bounds a single cache round trip
const cacheTimeout = 500 * time.Millisecond

// Store is the key/value backend of CachedTranslator
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisStore adapts a go-redis client to Store
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// CachedTranslator memoizes another Translator. Entries expire after ttl so
// the cache stays bounded. Cache errors degrade to a direct call.
type CachedTranslator struct {
	next  Translator
	store Store
	ttl   time.Duration
	log   *logrus.Logger
}

func NewCachedTranslator(next Translator, store Store, ttl time.Duration, log *logrus.Logger) *CachedTranslator {
	return &CachedTranslator{next: next, store: store, ttl: ttl, log: log}
}

func (c *CachedTranslator) Translate(ctx context.Context, text, lang string) (string, error) {
	lang = NormalizeLang(lang)
	if lang == DefaultLang {
		return text, nil
	}

	key := CacheKey(text, lang)

	getCtx, cancel := context.WithTimeout(ctx, cacheTimeout)
	cached, ok, err := c.store.Get(getCtx, key)
	cancel()
	if err != nil {
		c.log.Warnf("Failed to read translation cache: %+v", err)
	}
	if ok {
		return cached, nil
	}

	out, err := c.next.Translate(ctx, text, lang)
	if err != nil {
		return "", err
	}

	setCtx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()
	if err := c.store.Set(setCtx, key, out, c.ttl); err != nil {
		c.log.Warnf("Failed to write translation cache: %+v", err)
	}
	return out, nil
}

// CacheKey hashes text so long "about" paragraphs make short keys
func CacheKey(text, lang string) string {
	sum := sha256.Sum256([]byte(text))
	return cacheKeyPrefix + lang + ":" + hex.EncodeToString(sum[:])
}
