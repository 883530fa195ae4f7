package bingo

import (
	"sync"
	"time"
)

// Engine is the entry point to card generation, win detection and instant
// prize allocation. It keeps no per-call state and is safe for concurrent use.
type Engine struct {
	rng    RandomGenerator
	logger Logger
	tiers  []PrizeTier

	mu sync.RWMutex // guards logger and tiers

	performanceMonitor *PerformanceMonitor
}

// NewEngine creates an engine backed by crypto/rand, the default prize tiers and a silent logger
func NewEngine() *Engine {
	return &Engine{
		rng:                NewSecureRandomGenerator(),
		logger:             NewSilentLogger(),
		tiers:              DefaultPrizeTiers(),
		performanceMonitor: NewPerformanceMonitor(),
	}
}

// NewEngineWithGenerator creates an engine drawing from rng
func NewEngineWithGenerator(rng RandomGenerator) *Engine {
	e := NewEngine()
	if rng != nil {
		e.rng = rng
	}
	return e
}

// NewEngineWithConfig creates an engine from the engine section of the config
func NewEngineWithConfig(cfg *EngineConfig, logger Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultEngineConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = NewSilentLogger()
	}

	e := &Engine{
		rng:                NewRandomGenerator(cfg),
		logger:             logger,
		tiers:              append([]PrizeTier(nil), cfg.PrizeTiers...),
		performanceMonitor: NewPerformanceMonitor(),
	}
	e.logger.Info("Engine created: secure_random=%v, prize_tiers=%d", cfg.SecureRandom, len(cfg.PrizeTiers))
	return e, nil
}

// GenerateCard creates a new bingo card
func (e *Engine) GenerateCard() (Card, error) {
	card, err := GenerateCard(e.rng)
	if err != nil {
		e.log().Error("GenerateCard failed: %v", err)
		e.performanceMonitor.RecordCardGenerated(false)
		return Card{}, err
	}

	e.log().Debug("GenerateCard: %v", card.Flatten())
	e.performanceMonitor.RecordCardGenerated(true)
	return card, nil
}

// CheckWin evaluates card against the called numbers
func (e *Engine) CheckWin(card Card, called *CalledNumbers) (WinResult, error) {
	start := time.Now()

	result, err := CheckWin(card, called)
	if err != nil {
		e.log().Error("CheckWin failed: %v", err)
		e.performanceMonitor.RecordFailure()
		return result, err
	}

	e.performanceMonitor.RecordWinCheck(result.IsWinner, time.Since(start))
	if result.IsWinner {
		e.log().Debug("CheckWin: winner type=%s shape=%s lines=%v", result.Type, result.Shape, result.MatchedLines)
	}
	return result, nil
}

// CallNumber draws the next number of a live draw and records it in called
func (e *Engine) CallNumber(called *CalledNumbers) (int, error) {
	n, err := called.NextNumber(e.rng)
	if err != nil {
		e.log().Error("CallNumber failed after %d calls: %v", called.Len(), err)
		e.performanceMonitor.RecordFailure()
		return 0, err
	}

	e.performanceMonitor.RecordNumberCalled()
	return n, nil
}

// AllocateInstantPrizes distributes the engine's prize tiers over tickets
func (e *Engine) AllocateInstantPrizes(tickets []int) (InstantPrizePool, error) {
	pool, err := AllocateInstantPrizesWithTiers(e.rng, tickets, e.PrizeTiers())
	if err != nil {
		e.log().Error("AllocateInstantPrizes failed for %d tickets: %v", len(tickets), err)
		e.performanceMonitor.RecordFailure()
		return nil, err
	}

	e.log().Info("AllocateInstantPrizes: %d prizes over %d tickets", len(pool), len(tickets))
	e.performanceMonitor.RecordAllocation(len(pool))
	return pool, nil
}

// ResolveInstantPrize looks up the unclaimed instant prize of ticket
func (e *Engine) ResolveInstantPrize(ticket int, pool InstantPrizePool) (*PrizeEntry, bool) {
	entry, ok := pool.Resolve(ticket)
	if ok {
		e.log().Debug("ResolveInstantPrize: ticket %d won %s", ticket, entry.ID)
		e.performanceMonitor.RecordInstantPrizeHit()
	}
	return entry, ok
}

// PrizeTiers returns a copy of the configured tiers
func (e *Engine) PrizeTiers() []PrizeTier {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return append([]PrizeTier(nil), e.tiers...)
}

// SetPrizeTiers replaces the tiers used by later allocations
func (e *Engine) SetPrizeTiers(tiers []PrizeTier) error {
	if err := ValidatePrizeTiers(tiers); err != nil {
		e.log().Error("SetPrizeTiers validation failed: %v", err)
		return err
	}

	e.mu.Lock()
	e.tiers = append([]PrizeTier(nil), tiers...)
	e.mu.Unlock()

	e.log().Info("Prize tiers updated: %d tiers", len(tiers))
	return nil
}

// UpdateConfig applies a reloaded engine config. The random source is kept.
func (e *Engine) UpdateConfig(cfg *EngineConfig) error {
	if cfg == nil {
		e.log().Error("UpdateConfig failed: nil configuration")
		return ErrInvalidParameters
	}
	if err := cfg.Validate(); err != nil {
		e.log().Error("UpdateConfig validation failed: %v", err)
		return err
	}
	return e.SetPrizeTiers(cfg.PrizeTiers)
}

// RandomGenerator returns the engine's random source
func (e *Engine) RandomGenerator() RandomGenerator { return e.rng }

// SetLogger updates the logger at runtime
func (e *Engine) SetLogger(logger Logger) {
	if logger == nil {
		return
	}

	e.mu.Lock()
	e.logger = logger
	e.mu.Unlock()
}

// GetLogger returns the current logger
func (e *Engine) GetLogger() Logger { return e.log() }

func (e *Engine) log() Logger {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.logger
}

// GetPerformanceMetrics returns a snapshot of the engine counters
func (e *Engine) GetPerformanceMetrics() PerformanceMetrics { return e.performanceMonitor.GetMetrics() }

// ResetPerformanceMetrics resets the engine counters
func (e *Engine) ResetPerformanceMetrics() { e.performanceMonitor.ResetMetrics() }

// EnablePerformanceMonitoring turns metric collection on
func (e *Engine) EnablePerformanceMonitoring() { e.performanceMonitor.Enable() }

// DisablePerformanceMonitoring turns metric collection off
func (e *Engine) DisablePerformanceMonitoring() { e.performanceMonitor.Disable() }

// Monitor exposes the performance monitor shared with stores built on this engine
func (e *Engine) Monitor() *PerformanceMonitor { return e.performanceMonitor }
