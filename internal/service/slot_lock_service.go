package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// =============================================================================
// Errors
// =============================================================================

// ErrLockNotAcquired is returned when another request holds the same key
var ErrLockNotAcquired = errors.New("lock not acquired")

// unlockScript deletes the key only when it still holds our token, so a lock
// that expired and was re-acquired by someone else is never released by us.
var unlockScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// =============================================================================
// Constants
// =============================================================================

const (
	RedisSlotLockPrefix  = "lock:slot:"
	RedisLeaveLockPrefix = "lock:leave:"

	// Interval for cleaning up stale local mutexes
	mutexCleanupInterval = 10 * time.Minute

	// How long a mutex must be unused before cleanup
	mutexStaleThreshold = 10 * time.Minute
)

// =============================================================================
// Types
// =============================================================================

// Locker guards a check-then-write critical section per key
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// SlotLockService serializes writers that target the same slot or the same
// doctor's leave calendar.
//
// Two layers:
// - a per-key in-process mutex, so requests on one instance never hit Redis twice
// - a Redis SET NX key with TTL, so requests on different instances exclude each other
//
// Both layers fail fast with ErrLockNotAcquired instead of waiting. With a nil
// Redis client only the in-process layer is used.
type SlotLockService struct {
	redisClient *redis.Client
	ttl         time.Duration
	log         *logrus.Logger

	keyMu sync.Map // map[string]*mutexWithTimestamp

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// mutexWithTimestamp tracks mutex usage for cleanup
type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64 // Unix timestamp
}

// =============================================================================
// Constructor
// =============================================================================

// NewSlotLockService creates a SlotLockService.
// Starts background goroutine for mutex cleanup. Call Stop() during graceful shutdown.
func NewSlotLockService(redisClient *redis.Client, ttl time.Duration, log *logrus.Logger) *SlotLockService {
	svc := &SlotLockService{
		redisClient: redisClient,
		ttl:         ttl,
		log:         log,
		stopChan:    make(chan struct{}),
	}

	svc.wg.Add(1)
	go svc.cleanupMutexMapLoop()

	return svc
}

// Stop gracefully shuts down the service.
// Safe to call multiple times.
func (s *SlotLockService) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("SlotLockService stopped")
	}
}

// =============================================================================
// Keys
// =============================================================================

// SlotLockKey names the lock for one (doctor, date, time) slot
func SlotLockKey(doctorEmail, date, clock string) string {
	return fmt.Sprintf("%s%s:%s:%s", RedisSlotLockPrefix, doctorEmail, date, clock)
}

// LeaveLockKey names the lock for one doctor's leave calendar
func LeaveLockKey(doctorEmail string) string {
	return RedisLeaveLockPrefix + doctorEmail
}

// =============================================================================
// Public Methods
// =============================================================================

// WithLock runs fn while holding key. fn receives a context bounded by the lock
// TTL so it cannot outlive the Redis key.
func (s *SlotLockService) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	mt := s.getKeyMutex(key)
	if !mt.mu.TryLock() {
		return ErrLockNotAcquired
	}
	defer mt.mu.Unlock()

	if s.redisClient == nil {
		return fn(ctx)
	}

	token := uuid.NewString()
	ok, err := s.redisClient.SetNX(ctx, key, token, s.ttl).Result()
	if err != nil {
		s.log.Warnf("Failed to acquire redis lock %s: %+v", key, err)
		return fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return ErrLockNotAcquired
	}

	defer func() {
		// the caller's ctx may already be cancelled; release must still run
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := unlockScript.Run(releaseCtx, s.redisClient, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			s.log.Warnf("Failed to release redis lock %s: %+v", key, err)
		}
	}()

	lockCtx, cancel := context.WithTimeout(ctx, s.ttl)
	defer cancel()

	return fn(lockCtx)
}

// =============================================================================
// Private Helper Methods
// =============================================================================

func (s *SlotLockService) getKeyMutex(key string) *mutexWithTimestamp {
	mt, _ := s.keyMu.LoadOrStore(key, &mutexWithTimestamp{})
	result := mt.(*mutexWithTimestamp)
	result.lastUsed.Store(time.Now().Unix())
	return result
}

func (s *SlotLockService) cleanupMutexMapLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(mutexCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			s.log.Debug("Mutex cleanup goroutine stopping")
			return
		case <-ticker.C:
			s.cleanupStaleMutexes(time.Now().Add(-mutexStaleThreshold))
		}
	}
}

// cleanupStaleMutexes removes mutexes unused since cutoff. lastUsed is checked
// while holding the lock so a concurrent getKeyMutex cannot be missed.
func (s *SlotLockService) cleanupStaleMutexes(cutoff time.Time) int {
	var cleaned int

	s.keyMu.Range(func(key, value any) bool {
		mt, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}

		if mt.mu.TryLock() {
			if mt.lastUsed.Load() < cutoff.Unix() {
				s.keyMu.Delete(key)
				cleaned++
			}
			mt.mu.Unlock()
		}
		return true
	})

	if cleaned > 0 {
		s.log.Debugf("Cleaned up %d stale mutexes", cleaned)
	}
	return cleaned
}
