package processor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/nimasrn/freight-bids/pkg/logger"
	"github.com/nimasrn/freight-bids/pkg/redis"
)

var (
	ErrAlreadyProcessed   = errors.New("delivery already processed")
	ErrLockAcquireFailed  = errors.New("failed to acquire delivery lock")
	ErrMaxRetriesExceeded = errors.New("maximum delivery retries exceeded")
)

type IdempotencyConfig struct {
	LockTTL      time.Duration
	ProcessedTTL time.Duration
	MaxRetries   int

	RetryKeyPrefix     string
	LockKeyPrefix      string
	ProcessedKeyPrefix string
	SentKeyPrefix      string
}

func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		LockTTL:            30 * time.Second,
		ProcessedTTL:       72 * time.Hour,
		MaxRetries:         5,
		RetryKeyPrefix:     "delivery:retry:",
		LockKeyPrefix:      "delivery:lock:",
		ProcessedKeyPrefix: "delivery:done:",
		SentKeyPrefix:      "delivery:sent:",
	}
}

// IdempotencyService keeps delivery of one invitation to at most one worker
// at a time and remembers which channels already went out, so a retried job
// only re-sends what failed.
type IdempotencyService struct {
	redis  redis.RedisAdapter
	config IdempotencyConfig
}

func NewIdempotencyService(adapter redis.RedisAdapter, config IdempotencyConfig) *IdempotencyService {
	return &IdempotencyService{
		redis:  adapter,
		config: config,
	}
}

type ProcessingContext struct {
	Key          string
	RetryCount   int
	IsRetry      bool
	lockAcquired bool
}

func (s *IdempotencyService) AcquireProcessingLock(ctx context.Context, key string) (*ProcessingContext, error) {
	exists, err := s.redis.Exist(ctx, s.config.ProcessedKeyPrefix+key)
	if err != nil {
		// a duplicate send is preferable to a stuck invitation
		logger.Warn("check processed marker failed", "key", key, "error", err)
	} else if exists > 0 {
		return nil, ErrAlreadyProcessed
	}

	retryCount, err := s.GetRetryCount(ctx, key)
	if err != nil {
		logger.Warn("read retry counter failed", "key", key, "error", err)
	}
	if retryCount >= s.config.MaxRetries {
		return nil, fmt.Errorf("%w: key=%s retries=%d", ErrMaxRetriesExceeded, key, retryCount)
	}

	lockValue := []byte(strconv.FormatInt(time.Now().UnixNano(), 10))
	acquired, err := s.redis.SetNX(ctx, s.config.LockKeyPrefix+key, lockValue, s.config.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLockAcquireFailed, err)
	}
	if !acquired {
		return nil, ErrLockAcquireFailed
	}

	logger.Debug("delivery lock acquired", "key", key, "retry_count", retryCount)
	return &ProcessingContext{
		Key:          key,
		RetryCount:   retryCount,
		IsRetry:      retryCount > 0,
		lockAcquired: true,
	}, nil
}

// MarkSuccess stores the processed marker and clears the lock and counters.
func (s *IdempotencyService) MarkSuccess(ctx context.Context, pc *ProcessingContext) error {
	if err := s.redis.Set(ctx, s.config.ProcessedKeyPrefix+pc.Key, []byte("1"), s.config.ProcessedTTL); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	s.del(ctx, s.config.LockKeyPrefix+pc.Key)
	s.del(ctx, s.config.RetryKeyPrefix+pc.Key)
	pc.lockAcquired = false
	return nil
}

func (s *IdempotencyService) MarkFailure(ctx context.Context, pc *ProcessingContext, reason error) error {
	next := pc.RetryCount + 1
	err := s.redis.Set(ctx, s.config.RetryKeyPrefix+pc.Key, []byte(strconv.Itoa(next)), s.config.ProcessedTTL)
	s.del(ctx, s.config.LockKeyPrefix+pc.Key)
	pc.lockAcquired = false

	logger.Warn("delivery failed, will retry",
		"key", pc.Key,
		"retry_count", next,
		"max_retries", s.config.MaxRetries,
		"reason", reason)
	if err != nil {
		return fmt.Errorf("increment retry counter: %w", err)
	}
	return nil
}

func (s *IdempotencyService) ReleaseLock(ctx context.Context, pc *ProcessingContext) error {
	if pc == nil || !pc.lockAcquired {
		return nil
	}
	if err := s.redis.Del(ctx, s.config.LockKeyPrefix+pc.Key); err != nil {
		return err
	}
	pc.lockAcquired = false
	return nil
}

func (s *IdempotencyService) MarkChannelSent(ctx context.Context, key, channel string) error {
	return s.redis.Set(ctx, s.sentKey(key, channel), []byte("1"), s.config.ProcessedTTL)
}

// ChannelSent reports false when the marker cannot be read.
func (s *IdempotencyService) ChannelSent(ctx context.Context, key, channel string) bool {
	n, err := s.redis.Exist(ctx, s.sentKey(key, channel))
	if err != nil {
		logger.Warn("check channel marker failed", "key", key, "channel", channel, "error", err)
		return false
	}
	return n > 0
}

func (s *IdempotencyService) GetRetryCount(ctx context.Context, key string) (int, error) {
	b, err := s.redis.Get(ctx, s.config.RetryKeyPrefix+key)
	if err != nil {
		if errors.Is(err, redis.NilError) {
			return 0, nil
		}
		return 0, err
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return 0, fmt.Errorf("parse retry counter %q: %w", b, err)
	}
	return n, nil
}

func (s *IdempotencyService) IsProcessed(ctx context.Context, key string) (bool, error) {
	n, err := s.redis.Exist(ctx, s.config.ProcessedKeyPrefix+key)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *IdempotencyService) sentKey(key, channel string) string {
	return s.config.SentKeyPrefix + key + ":" + channel
}

func (s *IdempotencyService) del(ctx context.Context, key string) {
	if err := s.redis.Del(ctx, key); err != nil {
		logger.Warn("delete idempotency key failed", "key", key, "error", err)
	}
}
