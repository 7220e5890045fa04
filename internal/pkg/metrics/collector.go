package metrics

import (
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"

	"github.com/bruteforce-framework/bruteforce/internal/core/domain"
)

// Sample is one resource reading: system CPU percent, process heap MB and
// system memory percent.
type Sample struct {
	CPUPercent    float64
	HeapMB        int64
	SystemMemUsed float64
}

// Sampler reads current resource usage.
type Sampler func() Sample

// SystemSampler reads CPU and memory through gopsutil and the Go runtime.
func SystemSampler() Sample {
	var s Sample
	if cpuUsage, err := cpu.Percent(0, false); err == nil && len(cpuUsage) > 0 {
		s.CPUPercent = cpuUsage[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		s.SystemMemUsed = vm.UsedPercent
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	s.HeapMB = int64(m.Alloc / 1024 / 1024)
	return s
}

type collection struct {
	metrics domain.ResourceMetrics
	started time.Time
	stop    chan struct{}
}

// Collector samples resource usage for every active search run.
type Collector struct {
	mu             sync.RWMutex
	metrics        map[string]*collection
	updateInterval time.Duration
	sample         Sampler
}

func NewCollector(interval time.Duration) *Collector {
	return NewCollectorWithSampler(interval, SystemSampler)
}

func NewCollectorWithSampler(interval time.Duration, sample Sampler) *Collector {
	if interval <= 0 {
		interval = time.Second
	}
	return &Collector{
		metrics:        make(map[string]*collection),
		updateInterval: interval,
		sample:         sample,
	}
}

func (c *Collector) StartCollection(runID string) {
	col := &collection{
		metrics: domain.ResourceMetrics{LastUpdated: time.Now()},
		started: time.Now(),
		stop:    make(chan struct{}),
	}

	c.mu.Lock()
	if old, exists := c.metrics[runID]; exists {
		close(old.stop)
	}
	c.metrics[runID] = col
	c.mu.Unlock()

	go c.collect(runID, col)
}

// StopCollection ends sampling for runID and returns the last reading.
func (c *Collector) StopCollection(runID string) domain.ResourceMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	col, exists := c.metrics[runID]
	if !exists {
		return domain.ResourceMetrics{}
	}
	close(col.stop)
	delete(c.metrics, runID)
	return col.metrics
}

func (c *Collector) GetMetrics(runID string) *domain.ResourceMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if col, exists := c.metrics[runID]; exists {
		m := col.metrics
		return &m
	}
	return nil
}

func (c *Collector) collect(runID string, col *collection) {
	ticker := time.NewTicker(c.updateInterval)
	defer ticker.Stop()

	for {
		s := c.sample()

		c.mu.Lock()
		if c.metrics[runID] != col {
			c.mu.Unlock()
			return
		}
		col.metrics.CPUUsage = s.CPUPercent
		col.metrics.MemoryUsageMB = s.HeapMB
		col.metrics.SystemMemPercent = s.SystemMemUsed
		col.metrics.LastUpdated = time.Now()
		c.mu.Unlock()

		select {
		case <-col.stop:
			return
		case <-ticker.C:
		}
	}
}

func (c *Collector) UpdateAttempts(runID string, attempts int64, activeThreads int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	col, exists := c.metrics[runID]
	if !exists {
		return
	}
	col.metrics.TotalAttempts = attempts
	col.metrics.ActiveThreads = activeThreads
	if elapsed := time.Since(col.started).Seconds(); elapsed > 0 {
		col.metrics.AttemptsPerSec = int64(float64(attempts) / elapsed)
	}
}
