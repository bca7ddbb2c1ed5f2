package fleet

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/jonwraymond/fleetwatch/cache"
	"github.com/jonwraymond/fleetwatch/container"
)

// Memory usage levels reported by SystemSnapshot.
const (
	LevelNormal   = "normal"
	LevelHigh     = "high"
	LevelCritical = "critical"
)

// SystemConfig configures the process snapshot.
type SystemConfig struct {
	// WarningThreshold is the fraction of MaxAlloc that reports LevelHigh.
	// Value should be between 0 and 1. Default: 0.8 (80%)
	WarningThreshold float64

	// CriticalThreshold is the fraction of MaxAlloc that reports LevelCritical.
	// Value should be between 0 and 1. Default: 0.95 (95%)
	CriticalThreshold float64

	// MaxAlloc is the expected allocation ceiling in bytes.
	// Default: 0 (memory obtained from the OS)
	MaxAlloc uint64
}

func (c SystemConfig) withDefaults() SystemConfig {
	if c.WarningThreshold <= 0 || c.WarningThreshold >= 1 {
		c.WarningThreshold = 0.8
	}
	if c.CriticalThreshold <= 0 || c.CriticalThreshold >= 1 {
		c.CriticalThreshold = 0.95
	}
	if c.CriticalThreshold < c.WarningThreshold {
		c.CriticalThreshold = c.WarningThreshold + 0.1
		if c.CriticalThreshold > 1 {
			c.CriticalThreshold = 0.99
		}
	}
	return c
}

// Level classifies an allocation ratio.
func (c SystemConfig) Level(ratio float64) string {
	switch {
	case ratio >= c.CriticalThreshold:
		return LevelCritical
	case ratio >= c.WarningThreshold:
		return LevelHigh
	default:
		return LevelNormal
	}
}

// SystemSnapshot describes the monitor process itself.
type SystemSnapshot struct {
	Goroutines   int       `json:"goroutines"`
	NumCPU       int       `json:"num_cpu"`
	AllocBytes   uint64    `json:"alloc_bytes"`
	SysBytes     uint64    `json:"sys_bytes"`
	HeapInUse    uint64    `json:"heap_in_use"`
	HeapObjects  uint64    `json:"heap_objects"`
	NumGC        uint32    `json:"num_gc"`
	GCPauseTotal float64   `json:"gc_pause_total_ms"`
	MaxAlloc     uint64    `json:"max_alloc"`
	UsagePercent float64   `json:"usage_percent"`
	Level        string    `json:"level"`
	Message      string    `json:"message"`
	Uptime       float64   `json:"uptime"`
	Timestamp    time.Time `json:"timestamp"`
}

// readSystem samples runtime memory statistics.
func readSystem(cfg SystemConfig, now time.Time) SystemSnapshot {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	maxAlloc := cfg.MaxAlloc
	if maxAlloc == 0 {
		maxAlloc = stats.Sys
	}

	snap := SystemSnapshot{
		Goroutines:   runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		AllocBytes:   stats.Alloc,
		SysBytes:     stats.Sys,
		HeapInUse:    stats.HeapInuse,
		HeapObjects:  stats.HeapObjects,
		NumGC:        stats.NumGC,
		GCPauseTotal: float64(stats.PauseTotalNs) / float64(time.Millisecond),
		MaxAlloc:     maxAlloc,
		Level:        LevelNormal,
		Timestamp:    now,
	}
	if maxAlloc == 0 {
		snap.Message = "memory stats unavailable"
		return snap
	}

	ratio := float64(stats.Alloc) / float64(maxAlloc)
	snap.UsagePercent = ratio * 100
	snap.Level = cfg.Level(ratio)
	snap.Message = fmt.Sprintf("memory usage %s: %.1f%%", snap.Level, snap.UsagePercent)
	return snap
}

// System returns the process snapshot, cached under system_metrics.
func (m *Monitor) System(ctx context.Context) (SystemSnapshot, error) {
	return cache.Fetch(ctx, m.cache, KeySystem, 0, func(ctx context.Context) (SystemSnapshot, error) {
		if err := ctx.Err(); err != nil {
			return SystemSnapshot{}, err
		}
		snap := readSystem(m.system, m.now())
		snap.Uptime = m.Uptime().Seconds()
		return snap, nil
	})
}

// DockerStats summarizes the container listing.
type DockerStats struct {
	Total      int                 `json:"total_containers"`
	Running    int                 `json:"running_containers"`
	Containers []container.Summary `json:"containers"`
	Timestamp  time.Time           `json:"timestamp"`
}

// Docker returns container totals, cached under docker_stats. A runtime
// failure propagates on a cold cache and falls back to the last listing
// afterwards.
func (m *Monitor) Docker(ctx context.Context) (DockerStats, error) {
	return cache.Fetch(ctx, m.cache, KeyDocker, 0, func(ctx context.Context) (DockerStats, error) {
		list, err := m.runtime.List(ctx)
		if err != nil {
			return DockerStats{}, err
		}
		stats := DockerStats{
			Total:      len(list),
			Containers: list,
			Timestamp:  m.now(),
		}
		for _, c := range list {
			if c.State == "running" {
				stats.Running++
			}
		}
		return stats, nil
	})
}
