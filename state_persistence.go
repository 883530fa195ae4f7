package bingo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore persists draws and raffles as JSON documents in Redis
type RedisStore struct {
	redisClient    *redis.Client
	logger         Logger
	monitor        *PerformanceMonitor
	ttl            time.Duration
	retryAttempts  int
	retryBaseDelay time.Duration
}

// NewRedisStore creates a store with the default TTL and retry settings
func NewRedisStore(redisClient *redis.Client, logger Logger) *RedisStore {
	return NewRedisStoreWithConfig(redisClient, logger, DefaultEngineConfig())
}

// NewRedisStoreWithConfig creates a store using the TTL and retry settings of cfg
func NewRedisStoreWithConfig(redisClient *redis.Client, logger Logger, cfg *EngineConfig) *RedisStore {
	if logger == nil {
		logger = NewSilentLogger()
	}
	if cfg == nil {
		cfg = DefaultEngineConfig()
	}
	return &RedisStore{
		redisClient:    redisClient,
		logger:         logger,
		ttl:            cfg.StateTTL,
		retryAttempts:  cfg.RetryAttempts,
		retryBaseDelay: cfg.RetryInterval,
	}
}

// WithMonitor counts store errors in the given monitor
func (s *RedisStore) WithMonitor(monitor *PerformanceMonitor) *RedisStore {
	s.monitor = monitor
	return s
}

func drawKey(id string) string   { return DrawKeyPrefix + id }
func raffleKey(id string) string { return RaffleKeyPrefix + id }

// serialize encodes an aggregate and enforces the size limit
func serialize(kind, id string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, ErrSerializationFailed.WithDetailsf("%s %s", kind, id).WithCause(err)
	}
	if len(data) > MaxSerializationSize {
		return nil, ErrSerializationFailed.WithDetailsf("serialized %s %s size (%d bytes) exceeds maximum allowed size (%d bytes)",
			kind, id, len(data), MaxSerializationSize)
	}
	return data, nil
}

// deserialize decodes an aggregate; coded errors raised by its validation are kept
func deserialize(kind, id string, data []byte, v any) error {
	if len(data) == 0 {
		return ErrStateCorrupted.WithDetailsf("%s %s is empty", kind, id)
	}
	if err := json.Unmarshal(data, v); err != nil {
		var be *BingoError
		if errors.As(err, &be) {
			return ErrStateCorrupted.WithDetailsf("%s %s", kind, id).WithCause(err)
		}
		return ErrDeserializationFailed.WithDetailsf("%s %s", kind, id).WithCause(err)
	}
	return nil
}

// executeWithRetry executes a Redis operation with retry logic using exponential backoff
func (s *RedisStore) executeWithRetry(ctx context.Context, operation string, fn func() error) error {
	var lastErr error
	startTime := time.Now()

	for attempt := 0; attempt <= s.retryAttempts; attempt++ {
		if attempt > 0 {
			// baseDelay * 2^(attempt-1), capped
			delay := min(time.Duration(1<<(attempt-1))*s.retryBaseDelay, MaxRetryDelay)

			s.logger.Debug("Retrying %s operation (attempt %d/%d) after %v backoff, total elapsed: %v",
				operation, attempt, s.retryAttempts, delay, time.Since(startTime))

			select {
			case <-ctx.Done():
				return ErrStoreTimeout.WithOperation(operation).
					WithDetailsf("context cancelled during retry after %v (attempt %d/%d)",
						time.Since(startTime), attempt, s.retryAttempts+1).
					WithCause(ctx.Err())
			case <-time.After(delay):
			}
		}

		err := fn()
		if err == nil {
			if attempt > 0 {
				s.logger.Info("Completed %s operation after %d retries (total time: %v)",
					operation, attempt, time.Since(startTime))
			}
			return nil
		}

		lastErr = err
		if !IsRetryableError(err) {
			s.logger.Debug("Non-retriable error for %s operation (attempt %d): %v", operation, attempt+1, err)
			break
		}
		s.logger.Debug("Retriable error for %s operation (attempt %d/%d): %v",
			operation, attempt+1, s.retryAttempts+1, err)
	}

	s.logger.Error("%s operation failed after %v: %v", operation, time.Since(startTime), lastErr)
	if s.monitor != nil {
		s.monitor.RecordStoreError()
	}

	if IsRetryableError(lastErr) {
		return ErrStoreConnectionFailed.WithOperation(operation).
			WithDetailsf("failed after %d attempts", s.retryAttempts+1).
			WithCause(lastErr)
	}
	return ErrSystemError.WithOperation(operation).WithCause(lastErr)
}

func (s *RedisStore) save(ctx context.Context, operation, key string, data []byte) error {
	return s.executeWithRetry(ctx, operation, func() error {
		return s.redisClient.Set(ctx, key, data, s.ttl).Err()
	})
}

func (s *RedisStore) load(ctx context.Context, operation, key string) ([]byte, error) {
	var data []byte
	err := s.executeWithRetry(ctx, operation, func() error {
		var err error
		data, err = s.redisClient.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			// absent keys are reported once, without retrying
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrStateNotFound.WithOperation(operation).WithDetails(key)
	}
	return data, nil
}

func (s *RedisStore) del(ctx context.Context, operation, key string) error {
	return s.executeWithRetry(ctx, operation, func() error {
		return s.redisClient.Del(ctx, key).Err()
	})
}

// SaveDraw persists a bingo draw
func (s *RedisStore) SaveDraw(ctx context.Context, draw *BingoDraw) error {
	if draw == nil {
		return ErrInvalidParameters.WithOperation("SaveDraw")
	}
	data, err := serialize("draw", draw.ID(), draw)
	if err != nil {
		return err
	}
	if err := s.save(ctx, "SaveDraw", drawKey(draw.ID()), data); err != nil {
		return err
	}

	s.logger.Debug("Saved draw %s (%d bytes)", draw.ID(), len(data))
	return nil
}

// LoadDraw loads a bingo draw by id
func (s *RedisStore) LoadDraw(ctx context.Context, id string) (*BingoDraw, error) {
	if id == "" {
		return nil, ErrInvalidParameters.WithOperation("LoadDraw")
	}
	data, err := s.load(ctx, "LoadDraw", drawKey(id))
	if err != nil {
		return nil, err
	}

	draw := &BingoDraw{}
	if err := deserialize("draw", id, data, draw); err != nil {
		s.logger.Error("Draw %s could not be decoded: %v", id, err)
		return nil, err
	}
	return draw, nil
}

// DeleteDraw removes a bingo draw
func (s *RedisStore) DeleteDraw(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidParameters.WithOperation("DeleteDraw")
	}
	return s.del(ctx, "DeleteDraw", drawKey(id))
}

// SaveRaffle persists a raffle
func (s *RedisStore) SaveRaffle(ctx context.Context, raffle *Raffle) error {
	if raffle == nil {
		return ErrInvalidParameters.WithOperation("SaveRaffle")
	}
	data, err := serialize("raffle", raffle.ID(), raffle)
	if err != nil {
		return err
	}
	if err := s.save(ctx, "SaveRaffle", raffleKey(raffle.ID()), data); err != nil {
		return err
	}

	s.logger.Debug("Saved raffle %s (%d bytes)", raffle.ID(), len(data))
	return nil
}

// LoadRaffle loads a raffle by id
func (s *RedisStore) LoadRaffle(ctx context.Context, id string) (*Raffle, error) {
	if id == "" {
		return nil, ErrInvalidParameters.WithOperation("LoadRaffle")
	}
	data, err := s.load(ctx, "LoadRaffle", raffleKey(id))
	if err != nil {
		return nil, err
	}

	raffle := &Raffle{}
	if err := deserialize("raffle", id, data, raffle); err != nil {
		s.logger.Error("Raffle %s could not be decoded: %v", id, err)
		return nil, err
	}
	return raffle, nil
}

// DeleteRaffle removes a raffle
func (s *RedisStore) DeleteRaffle(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidParameters.WithOperation("DeleteRaffle")
	}
	return s.del(ctx, "DeleteRaffle", raffleKey(id))
}

// Ping checks the Redis connection
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		return ErrStoreConnectionFailed.WithOperation("Ping").WithCause(err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) String() string {
	return fmt.Sprintf("RedisStore(ttl=%v, retries=%d)", s.ttl, s.retryAttempts)
}
