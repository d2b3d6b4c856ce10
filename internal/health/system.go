package health

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"runtime/debug"
	"sync"
	"time"
)

// Thresholds are usage ratios in (0, 1]. Reaching Warning degrades,
// reaching Critical fails.
type Thresholds struct {
	Warning  float64
	Critical float64
}

func (t Thresholds) orDefault(warn, crit float64) Thresholds {
	if t.Warning <= 0 || t.Warning > 1 {
		t.Warning = warn
	}
	if t.Critical <= 0 || t.Critical > 1 {
		t.Critical = crit
	}
	if t.Critical < t.Warning {
		t.Critical = t.Warning
	}
	return t
}

func classify(kind string, ratio float64, t Thresholds) Result {
	pct := ratio * 100
	switch {
	case ratio >= t.Critical:
		return Unhealthy(fmt.Sprintf("%s usage critical: %.1f%%", kind, pct))
	case ratio >= t.Warning:
		return Degraded(fmt.Sprintf("%s usage high: %.1f%%", kind, pct))
	default:
		return Healthy(fmt.Sprintf("%s usage normal: %.1f%%", kind, pct))
	}
}

// MemoryCheck compares heap in use against heap reserved from the OS, or
// against GOMEMLIMIT when one is set.
func MemoryCheck(t Thresholds) Check {
	t = t.orDefault(0.80, 0.95)
	return Check{
		Name: "memory",
		Run: func(ctx context.Context) Result {
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			ratio, details := memoryRatio(&ms, debug.SetMemoryLimit(-1))
			return classify("memory", ratio, t).WithDetails(details)
		},
	}
}

func memoryRatio(ms *runtime.MemStats, limit int64) (float64, map[string]any) {
	details := map[string]any{
		"heapInUseBytes": ms.HeapInuse,
		"heapSysBytes":   ms.HeapSys,
		"sysBytes":       ms.Sys,
		"numGC":          ms.NumGC,
		"goroutines":     runtime.NumGoroutine(),
	}

	if limit > 0 && limit != math.MaxInt64 {
		used := ms.Sys - ms.HeapReleased
		details["memoryLimitBytes"] = limit
		return float64(used) / float64(limit), details
	}
	if ms.HeapSys == 0 {
		return 0, details
	}
	return float64(ms.HeapInuse) / float64(ms.HeapSys), details
}

// minCPUWindow is the shortest interval a new CPU ratio is computed over.
// Callers arriving sooner get the previous ratio.
const minCPUWindow = time.Second

// CPUSampler measures process CPU time between successive calls
type CPUSampler struct {
	mu       sync.Mutex
	lastWall time.Time
	lastCPU  time.Duration
	last     float64
	read     func() (time.Duration, bool)
	procs    func() int
	now      func() time.Time
}

// NewCPUSampler starts measuring from now
func NewCPUSampler() *CPUSampler {
	s := &CPUSampler{
		read:  processCPUTime,
		procs: func() int { return runtime.GOMAXPROCS(0) },
		now:   time.Now,
	}
	s.lastWall = s.now()
	s.lastCPU, _ = s.read()
	return s
}

// Sample returns CPU utilisation since the previous sample, normalised to
// the number of usable cores. Within minCPUWindow of that sample the cached
// ratio is returned and the baseline kept. ok is false where rusage is
// unavailable.
func (s *CPUSampler) Sample() (ratio float64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cpu, ok := s.read()
	if !ok {
		return 0, false
	}
	now := s.now()
	wall := now.Sub(s.lastWall)
	if wall < minCPUWindow {
		return s.last, true
	}
	used := cpu - s.lastCPU
	s.lastWall, s.lastCPU = now, cpu

	ratio = float64(used) / (float64(wall) * float64(s.procs()))
	s.last = math.Max(0, math.Min(ratio, 1))
	return s.last, true
}

// CPUCheck classifies the sampler's utilisation
func CPUCheck(s *CPUSampler, t Thresholds) Check {
	t = t.orDefault(0.70, 0.90)
	return Check{
		Name: "cpu",
		Run: func(ctx context.Context) Result {
			ratio, ok := s.Sample()
			if !ok {
				return Healthy("cpu stats unavailable on this platform")
			}
			return classify("cpu", ratio, t).WithDetails(map[string]any{
				"usagePercent": ratio * 100,
				"cores":        s.procs(),
			})
		},
	}
}
