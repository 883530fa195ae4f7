package bingo

import (
	"sync"
	"sync/atomic"
	"time"
)

// PerformanceMetrics 性能指标收集器
type PerformanceMetrics struct {
	// 卡片与中奖检测统计
	CardsGenerated int64 `json:"cards_generated"` // 生成卡片数
	WinChecks      int64 `json:"win_checks"`      // 中奖检测次数
	Winners        int64 `json:"winners"`         // 检测到的中奖次数
	NumbersCalled  int64 `json:"numbers_called"`  // 已叫号数量

	// 即时奖统计
	Allocations      int64 `json:"allocations"`        // 奖池分配次数
	PrizesAllocated  int64 `json:"prizes_allocated"`   // 分配的奖品数
	InstantPrizeHits int64 `json:"instant_prize_hits"` // 即时奖命中次数

	// 失败统计
	FailedOperations int64 `json:"failed_operations"` // 失败操作数
	StoreErrors      int64 `json:"store_errors"`      // 存储错误数

	// 性能统计
	TotalCheckTime   int64 `json:"total_check_time"`   // 中奖检测总时间(纳秒)
	AverageCheckTime int64 `json:"average_check_time"` // 平均中奖检测时间(纳秒)

	// 时间戳
	StartTime      int64 `json:"start_time"`       // 开始时间
	LastUpdateTime int64 `json:"last_update_time"` // 最后更新时间
}

// GetWinRate returns the share of win checks that found a winner, in percent
func (pm *PerformanceMetrics) GetWinRate() float64 {
	total := atomic.LoadInt64(&pm.WinChecks)
	if total == 0 {
		return 0.0
	}
	return float64(atomic.LoadInt64(&pm.Winners)) / float64(total) * 100.0
}

// GetThroughput 获取吞吐量(每秒中奖检测数)
func (pm *PerformanceMetrics) GetThroughput() float64 {
	startTime := atomic.LoadInt64(&pm.StartTime)
	lastUpdate := atomic.LoadInt64(&pm.LastUpdateTime)
	if startTime == 0 || lastUpdate <= startTime {
		return 0.0
	}

	duration := time.Duration(lastUpdate - startTime)
	return float64(atomic.LoadInt64(&pm.WinChecks)) / duration.Seconds()
}

// Reset 重置性能指标
func (pm *PerformanceMetrics) Reset() {
	atomic.StoreInt64(&pm.CardsGenerated, 0)
	atomic.StoreInt64(&pm.WinChecks, 0)
	atomic.StoreInt64(&pm.Winners, 0)
	atomic.StoreInt64(&pm.NumbersCalled, 0)
	atomic.StoreInt64(&pm.Allocations, 0)
	atomic.StoreInt64(&pm.PrizesAllocated, 0)
	atomic.StoreInt64(&pm.InstantPrizeHits, 0)
	atomic.StoreInt64(&pm.FailedOperations, 0)
	atomic.StoreInt64(&pm.StoreErrors, 0)
	atomic.StoreInt64(&pm.TotalCheckTime, 0)
	atomic.StoreInt64(&pm.AverageCheckTime, 0)
	atomic.StoreInt64(&pm.StartTime, time.Now().UnixNano())
	atomic.StoreInt64(&pm.LastUpdateTime, time.Now().UnixNano())
}

// ================================================================================

// PerformanceMonitor 性能监控器
type PerformanceMonitor struct {
	metrics *PerformanceMetrics
	mu      sync.RWMutex
	enabled bool
}

// NewPerformanceMonitor 创建新的性能监控器
func NewPerformanceMonitor() *PerformanceMonitor {
	pm := &PerformanceMonitor{
		metrics: &PerformanceMetrics{},
		enabled: true,
	}
	pm.metrics.Reset()
	return pm
}

// Enable 启用性能监控
func (pm *PerformanceMonitor) Enable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.enabled = true
}

// Disable 禁用性能监控
func (pm *PerformanceMonitor) Disable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.enabled = false
}

// IsEnabled 检查是否启用了性能监控
func (pm *PerformanceMonitor) IsEnabled() bool {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	return pm.enabled
}

func (pm *PerformanceMonitor) touch() {
	atomic.StoreInt64(&pm.metrics.LastUpdateTime, time.Now().UnixNano())
}

// RecordCardGenerated 记录卡片生成
func (pm *PerformanceMonitor) RecordCardGenerated(success bool) {
	if !pm.IsEnabled() {
		return
	}

	if success {
		atomic.AddInt64(&pm.metrics.CardsGenerated, 1)
	} else {
		atomic.AddInt64(&pm.metrics.FailedOperations, 1)
	}
	pm.touch()
}

// RecordWinCheck 记录中奖检测
func (pm *PerformanceMonitor) RecordWinCheck(winner bool, duration time.Duration) {
	if !pm.IsEnabled() {
		return
	}

	atomic.AddInt64(&pm.metrics.WinChecks, 1)
	atomic.AddInt64(&pm.metrics.TotalCheckTime, int64(duration))
	if winner {
		atomic.AddInt64(&pm.metrics.Winners, 1)
	}

	checks := atomic.LoadInt64(&pm.metrics.WinChecks)
	totalTime := atomic.LoadInt64(&pm.metrics.TotalCheckTime)
	atomic.StoreInt64(&pm.metrics.AverageCheckTime, totalTime/checks)

	pm.touch()
}

// RecordNumberCalled 记录叫号
func (pm *PerformanceMonitor) RecordNumberCalled() {
	if !pm.IsEnabled() {
		return
	}

	atomic.AddInt64(&pm.metrics.NumbersCalled, 1)
	pm.touch()
}

// RecordAllocation 记录即时奖分配
func (pm *PerformanceMonitor) RecordAllocation(prizes int) {
	if !pm.IsEnabled() {
		return
	}

	atomic.AddInt64(&pm.metrics.Allocations, 1)
	atomic.AddInt64(&pm.metrics.PrizesAllocated, int64(prizes))
	pm.touch()
}

// RecordInstantPrizeHit 记录即时奖命中
func (pm *PerformanceMonitor) RecordInstantPrizeHit() {
	if !pm.IsEnabled() {
		return
	}

	atomic.AddInt64(&pm.metrics.InstantPrizeHits, 1)
	pm.touch()
}

// RecordFailure 记录失败操作
func (pm *PerformanceMonitor) RecordFailure() {
	if !pm.IsEnabled() {
		return
	}

	atomic.AddInt64(&pm.metrics.FailedOperations, 1)
	pm.touch()
}

// RecordStoreError 记录存储错误
func (pm *PerformanceMonitor) RecordStoreError() {
	if !pm.IsEnabled() {
		return
	}

	atomic.AddInt64(&pm.metrics.StoreErrors, 1)
	pm.touch()
}

// GetMetrics 获取性能指标的副本
func (pm *PerformanceMonitor) GetMetrics() PerformanceMetrics {
	return PerformanceMetrics{
		CardsGenerated:   atomic.LoadInt64(&pm.metrics.CardsGenerated),
		WinChecks:        atomic.LoadInt64(&pm.metrics.WinChecks),
		Winners:          atomic.LoadInt64(&pm.metrics.Winners),
		NumbersCalled:    atomic.LoadInt64(&pm.metrics.NumbersCalled),
		Allocations:      atomic.LoadInt64(&pm.metrics.Allocations),
		PrizesAllocated:  atomic.LoadInt64(&pm.metrics.PrizesAllocated),
		InstantPrizeHits: atomic.LoadInt64(&pm.metrics.InstantPrizeHits),
		FailedOperations: atomic.LoadInt64(&pm.metrics.FailedOperations),
		StoreErrors:      atomic.LoadInt64(&pm.metrics.StoreErrors),
		TotalCheckTime:   atomic.LoadInt64(&pm.metrics.TotalCheckTime),
		AverageCheckTime: atomic.LoadInt64(&pm.metrics.AverageCheckTime),
		StartTime:        atomic.LoadInt64(&pm.metrics.StartTime),
		LastUpdateTime:   atomic.LoadInt64(&pm.metrics.LastUpdateTime),
	}
}

// ResetMetrics 重置性能指标
func (pm *PerformanceMonitor) ResetMetrics() { pm.metrics.Reset() }
