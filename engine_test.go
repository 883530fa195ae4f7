package bingo

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestEngine(seed uint64) *Engine {
	return NewEngineWithGenerator(NewSeededRandomGenerator(seed))
}

func TestNewEngine(t *testing.T) {
	e := NewEngine()
	assert.IsType(t, &SecureRandomGenerator{}, e.RandomGenerator())
	assert.IsType(t, &SilentLogger{}, e.GetLogger())
	assert.Equal(t, DefaultPrizeTiers(), e.PrizeTiers())

	e = NewEngineWithGenerator(nil)
	assert.IsType(t, &SecureRandomGenerator{}, e.RandomGenerator())
}

func TestNewEngineWithConfig(t *testing.T) {
	t.Run("默认配置", func(t *testing.T) {
		e, err := NewEngineWithConfig(nil, nil)
		require.NoError(t, err)
		assert.IsType(t, &SecureRandomGenerator{}, e.RandomGenerator())
	})

	t.Run("固定种子可复现", func(t *testing.T) {
		cfg := DefaultEngineConfig()
		cfg.SecureRandom = false
		cfg.Seed = 2024

		a, err := NewEngineWithConfig(cfg, nil)
		require.NoError(t, err)
		b, err := NewEngineWithConfig(cfg, nil)
		require.NoError(t, err)

		ca, err := a.GenerateCard()
		require.NoError(t, err)
		cb, err := b.GenerateCard()
		require.NoError(t, err)
		assert.Equal(t, ca, cb)
	})

	t.Run("无效奖项配置", func(t *testing.T) {
		cfg := DefaultEngineConfig()
		cfg.PrizeTiers = []PrizeTier{{ID: "x", Kind: PrizeCash, Probability: 0.1}}
		_, err := NewEngineWithConfig(cfg, nil)
		assert.True(t, errors.Is(err, ErrInvalidPrizeTier))
	})
}

func TestEngine_Operations(t *testing.T) {
	e := newTestEngine(10)

	card, err := e.GenerateCard()
	require.NoError(t, err)
	require.NoError(t, card.Validate())

	called := &CalledNumbers{}
	for range 10 {
		_, err := e.CallNumber(called)
		require.NoError(t, err)
	}
	assert.Equal(t, 10, called.Len())

	res, err := e.CheckWin(testCard, mustCalled(t, 5, 20, 35, 50, 65))
	require.NoError(t, err)
	assert.True(t, res.IsWinner)

	_, err = e.CheckWin(Card{}, called)
	assert.True(t, errors.Is(err, ErrInvalidCard))

	tickets, _ := TicketRange(1, 1000)
	pool, err := e.AllocateInstantPrizes(tickets)
	require.NoError(t, err)
	require.NotEmpty(t, pool)

	entry, ok := e.ResolveInstantPrize(pool[0].TicketNumber, pool)
	require.True(t, ok)
	assert.Equal(t, pool[0].ID, entry.ID)

	_, err = e.AllocateInstantPrizes([]int{1, 1})
	assert.True(t, errors.Is(err, ErrDuplicateTicket))

	m := e.GetPerformanceMetrics()
	assert.Equal(t, int64(1), m.CardsGenerated)
	assert.Equal(t, int64(10), m.NumbersCalled)
	assert.Equal(t, int64(1), m.WinChecks)
	assert.Equal(t, int64(1), m.Winners)
	assert.Equal(t, int64(1), m.Allocations)
	assert.Equal(t, int64(len(pool)), m.PrizesAllocated)
	assert.Equal(t, int64(1), m.InstantPrizeHits)
	assert.Equal(t, int64(2), m.FailedOperations)
	assert.InDelta(t, 100.0, m.GetWinRate(), 1e-9)

	e.ResetPerformanceMetrics()
	assert.Equal(t, int64(0), e.GetPerformanceMetrics().WinChecks)
}

func TestEngine_CallNumberExhausted(t *testing.T) {
	e := newTestEngine(1)
	called := &CalledNumbers{}
	for range MaxBallNumber {
		_, err := e.CallNumber(called)
		require.NoError(t, err)
	}
	_, err := e.CallNumber(called)
	assert.True(t, errors.Is(err, ErrDrawExhausted))
}

func TestEngine_SetPrizeTiers(t *testing.T) {
	e := newTestEngine(3)

	tiers := []PrizeTier{{ID: "free", Kind: PrizeFree, Probability: 0.1}}
	require.NoError(t, e.SetPrizeTiers(tiers))
	assert.Equal(t, tiers, e.PrizeTiers())

	tickets, _ := TicketRange(1, 100)
	pool, err := e.AllocateInstantPrizes(tickets)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"free": 10}, pool.CountByTier())

	err = e.SetPrizeTiers(nil)
	assert.True(t, errors.Is(err, ErrInvalidPrizeTier))
	assert.Equal(t, tiers, e.PrizeTiers())

	require.NoError(t, e.UpdateConfig(DefaultEngineConfig()))
	assert.Equal(t, DefaultPrizeTiers(), e.PrizeTiers())
	assert.True(t, errors.Is(e.UpdateConfig(nil), ErrInvalidParameters))
}

func TestEngine_Logging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	e, err := NewEngineWithConfig(DefaultEngineConfig(), NewZapLogger(zap.New(core)))
	require.NoError(t, err)

	tickets, _ := TicketRange(1, 200)
	_, err = e.AllocateInstantPrizes(tickets)
	require.NoError(t, err)
	_, err = e.CheckWin(Card{}, nil)
	require.Error(t, err)

	assert.Equal(t, 1, logs.FilterMessageSnippet("Engine created").Len())
	assert.Equal(t, 1, logs.FilterMessageSnippet("over 200 tickets").Len())
	failures := logs.FilterMessageSnippet("CheckWin failed")
	require.Equal(t, 1, failures.Len())
	assert.Equal(t, zap.ErrorLevel, failures.All()[0].Level)
}

func TestEngine_Concurrent(t *testing.T) {
	e := NewEngine()
	called := mustCalled(t, 5, 20, 35, 50, 65)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				card, err := e.GenerateCard()
				assert.NoError(t, err)
				_, err = e.CheckWin(card, called)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	m := e.GetPerformanceMetrics()
	assert.Equal(t, int64(1000), m.CardsGenerated)
	assert.Equal(t, int64(1000), m.WinChecks)
}

func TestEngine_SetLoggerConcurrent(t *testing.T) {
	e := newTestEngine(8)
	called := mustCalled(t, 5, 20, 35, 50, 65)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				card, err := e.GenerateCard()
				assert.NoError(t, err)
				_, err = e.CheckWin(card, called)
				assert.NoError(t, err)
				assert.NotNil(t, e.GetLogger())
			}
		}()
	}

	for i := range 50 {
		if i%2 == 0 {
			e.SetLogger(NewSilentLogger())
		} else {
			core, _ := observer.New(zap.DebugLevel)
			e.SetLogger(NewZapLogger(zap.New(core)))
		}
	}
	wg.Wait()

	core, logs := observer.New(zap.DebugLevel)
	last := NewZapLogger(zap.New(core))
	e.SetLogger(last)
	e.SetLogger(nil)
	assert.Same(t, last, e.GetLogger())

	_, err := e.GenerateCard()
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessageSnippet("GenerateCard").Len())
}

func TestPerformanceMonitor(t *testing.T) {
	pm := NewPerformanceMonitor()
	assert.True(t, pm.IsEnabled())

	pm.RecordWinCheck(true, 2*time.Millisecond)
	pm.RecordWinCheck(false, 4*time.Millisecond)
	pm.RecordStoreError()

	m := pm.GetMetrics()
	assert.Equal(t, int64(2), m.WinChecks)
	assert.Equal(t, int64(1), m.Winners)
	assert.Equal(t, int64(3*time.Millisecond), m.AverageCheckTime)
	assert.Equal(t, int64(1), m.StoreErrors)
	assert.InDelta(t, 50.0, m.GetWinRate(), 1e-9)

	pm.Disable()
	pm.RecordWinCheck(true, time.Millisecond)
	pm.RecordCardGenerated(true)
	assert.Equal(t, int64(2), pm.GetMetrics().WinChecks)
	assert.Equal(t, int64(0), pm.GetMetrics().CardsGenerated)

	pm.Enable()
	pm.ResetMetrics()
	m = pm.GetMetrics()
	assert.Equal(t, int64(0), m.WinChecks)
	assert.Equal(t, 0.0, m.GetWinRate())
}

func TestLogger(t *testing.T) {
	t.Run("从配置创建", func(t *testing.T) {
		l, err := NewLoggerFromConfig(&LogConfig{Level: "debug", Encoding: "console"})
		require.NoError(t, err)
		l.Debug("debug %d", 1)
	})

	t.Run("无效级别", func(t *testing.T) {
		_, err := NewLoggerFromConfig(&LogConfig{Level: "loud", Encoding: "json"})
		assert.True(t, errors.Is(err, ErrConfigInvalid))
	})

	t.Run("格式化输出", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		l := NewZapLogger(zap.New(core))
		l.Info("card %s issued", "abc")
		l.Debug("hidden")
		l.Error("failed: %v", errors.New("x"))

		require.Equal(t, 2, logs.Len())
		assert.Equal(t, "card abc issued", logs.All()[0].Message)
		assert.Equal(t, "failed: x", logs.All()[1].Message)
	})

	t.Run("默认日志", func(t *testing.T) {
		assert.NotNil(t, NewDefaultLogger())
	})
}
