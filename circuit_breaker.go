package bingo

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// CircuitBreakerStore 带熔断器的存储
type CircuitBreakerStore struct {
	store Store

	mu      sync.RWMutex
	breaker *gobreaker.CircuitBreaker
	logger  Logger
	config  *CircuitBreakerConfig
}

// NewCircuitBreakerStore 创建带熔断器的存储
func NewCircuitBreakerStore(store Store, config *CircuitBreakerConfig, logger Logger) *CircuitBreakerStore {
	if config == nil {
		config = DefaultCircuitBreakerConfig()
	}
	if logger == nil {
		logger = NewSilentLogger()
	}

	c := &CircuitBreakerStore{
		store:  store,
		logger: logger,
		config: config,
	}
	if config.Enabled {
		c.breaker = c.newBreaker()
	}
	return c
}

func (c *CircuitBreakerStore) newBreaker() *gobreaker.CircuitBreaker {
	config := c.config
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// 当请求数达到最小要求且失败率超过阈值时触发熔断
			return counts.Requests >= config.MinRequests &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= config.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			// missing or corrupted documents say nothing about the health of the backend
			return err == nil || !IsRetryableError(err) && !errors.Is(err, ErrSystemError)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if config.OnStateChange {
				c.logger.Info("Circuit breaker '%s' state changed from %s to %s", name, from, to)
			}
		},
	})
}

// executeWithBreaker 使用熔断器执行操作
func (c *CircuitBreakerStore) executeWithBreaker(operation func() (any, error)) (any, error) {
	c.mu.RLock()
	breaker := c.breaker
	c.mu.RUnlock()

	if breaker == nil {
		// 熔断器未启用，直接执行
		return operation()
	}

	result, err := breaker.Execute(operation)
	switch {
	case errors.Is(err, gobreaker.ErrOpenState):
		return nil, ErrCircuitBreakerOpen.WithDetails("circuit breaker is open, requests are being rejected")
	case errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, ErrCircuitBreakerOpen.WithDetails("too many requests, circuit breaker is half-open")
	}
	return result, err
}

// SaveDraw 保存 bingo 场次
func (c *CircuitBreakerStore) SaveDraw(ctx context.Context, draw *BingoDraw) error {
	_, err := c.executeWithBreaker(func() (any, error) {
		return nil, c.store.SaveDraw(ctx, draw)
	})
	return err
}

// LoadDraw 加载 bingo 场次
func (c *CircuitBreakerStore) LoadDraw(ctx context.Context, id string) (*BingoDraw, error) {
	result, err := c.executeWithBreaker(func() (any, error) {
		return c.store.LoadDraw(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return result.(*BingoDraw), nil
}

// DeleteDraw 删除 bingo 场次
func (c *CircuitBreakerStore) DeleteDraw(ctx context.Context, id string) error {
	_, err := c.executeWithBreaker(func() (any, error) {
		return nil, c.store.DeleteDraw(ctx, id)
	})
	return err
}

// SaveRaffle 保存抽奖活动
func (c *CircuitBreakerStore) SaveRaffle(ctx context.Context, raffle *Raffle) error {
	_, err := c.executeWithBreaker(func() (any, error) {
		return nil, c.store.SaveRaffle(ctx, raffle)
	})
	return err
}

// LoadRaffle 加载抽奖活动
func (c *CircuitBreakerStore) LoadRaffle(ctx context.Context, id string) (*Raffle, error) {
	result, err := c.executeWithBreaker(func() (any, error) {
		return c.store.LoadRaffle(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Raffle), nil
}

// DeleteRaffle 删除抽奖活动
func (c *CircuitBreakerStore) DeleteRaffle(ctx context.Context, id string) error {
	_, err := c.executeWithBreaker(func() (any, error) {
		return nil, c.store.DeleteRaffle(ctx, id)
	})
	return err
}

var _ Store = (*CircuitBreakerStore)(nil)

// BreakerStatus is a point-in-time view of the store breaker
type BreakerStatus struct {
	Enabled bool
	State   gobreaker.State
	Counts  gobreaker.Counts
}

// StateName returns "disabled", "closed", "half-open" or "open"
func (s BreakerStatus) StateName() string {
	if !s.Enabled {
		return "disabled"
	}
	return s.State.String()
}

// Healthy reports whether store calls currently go through. A half-open
// breaker that already saw a failed probe counts as unhealthy.
func (s BreakerStatus) Healthy() bool {
	if !s.Enabled {
		return true
	}
	switch s.State {
	case gobreaker.StateOpen:
		return false
	case gobreaker.StateHalfOpen:
		return s.Counts.ConsecutiveFailures == 0
	}
	return true
}

// FailureRate is the share of failed calls in the current counting window
func (s BreakerStatus) FailureRate() float64 {
	if s.Counts.Requests == 0 {
		return 0
	}
	return float64(s.Counts.TotalFailures) / float64(s.Counts.Requests)
}

// Status returns the breaker state and its counters
func (c *CircuitBreakerStore) Status() BreakerStatus {
	c.mu.RLock()
	breaker := c.breaker
	c.mu.RUnlock()

	if breaker == nil {
		return BreakerStatus{}
	}
	// State must be read before Counts: it rolls the counting window
	state := breaker.State()
	return BreakerStatus{Enabled: true, State: state, Counts: breaker.Counts()}
}

// GetCircuitBreakerState 获取熔断器状态
func (c *CircuitBreakerStore) GetCircuitBreakerState() string { return c.Status().StateName() }

// GetCircuitBreakerCounts 获取熔断器统计信息
func (c *CircuitBreakerStore) GetCircuitBreakerCounts() gobreaker.Counts { return c.Status().Counts }

// ResetCircuitBreaker 重置熔断器 (gobreaker 没有 Reset 方法, 重新创建实例)
func (c *CircuitBreakerStore) ResetCircuitBreaker() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.breaker != nil {
		c.breaker = c.newBreaker()
		c.logger.Info("Store breaker %s recreated", c.config.Name)
	}
}

// HealthCheck 执行健康检查
func (c *CircuitBreakerStore) HealthCheck() map[string]any {
	st := c.Status()
	health := map[string]any{
		"circuit_breaker_enabled": st.Enabled,
		"state":                   st.StateName(),
		"healthy":                 st.Healthy(),
	}
	if st.Enabled {
		health["requests"] = st.Counts.Requests
		health["total_failures"] = st.Counts.TotalFailures
		health["consecutive_failures"] = st.Counts.ConsecutiveFailures
	}
	return health
}

// CollectMetrics flattens the breaker status into gauge-style values.
// The numeric state follows gobreaker: 0 closed, 1 half-open, 2 open.
func (c *CircuitBreakerStore) CollectMetrics() map[string]any {
	st := c.Status()
	metrics := map[string]any{
		"circuit_breaker_enabled": st.Enabled,
		"timestamp":               time.Now().Unix(),
	}
	if !st.Enabled {
		return metrics
	}

	metrics["circuit_breaker_state"] = st.StateName()
	metrics["circuit_breaker_state_numeric"] = int(st.State)
	metrics["circuit_breaker_requests_total"] = st.Counts.Requests
	metrics["circuit_breaker_failures_total"] = st.Counts.TotalFailures
	metrics["circuit_breaker_failure_rate"] = st.FailureRate()
	metrics["circuit_breaker_failure_ratio_threshold"] = c.config.FailureRatio
	return metrics
}
