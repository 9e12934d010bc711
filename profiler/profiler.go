// Package profiler - Per-stage timing for the detection loop.
package profiler

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Well-known stage names recorded by the detection loop.
const (
	StageCapture    = "capture"
	StagePreprocess = "preprocess"
	StageInference  = "inference"
	StageAnnotate   = "annotate"
	StageSink       = "sink"
)

// TimeTracker tracks operation timing statistics.
type TimeTracker struct {
	Name      string
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
	Count     int64
}

// Average returns the mean duration of the tracked operation.
func (t TimeTracker) Average() time.Duration {
	if t.Count == 0 {
		return 0
	}
	return t.TotalTime / time.Duration(t.Count)
}

// Profiler accumulates durations per named operation. It is safe for concurrent use.
type Profiler struct {
	mu             sync.Mutex
	startTime      time.Time
	operationTimes map[string]*TimeTracker
}

// New creates an empty profiler.
func New() *Profiler {
	return &Profiler{
		startTime:      time.Now(),
		operationTimes: make(map[string]*TimeTracker),
	}
}

// StartOperation begins timing an operation.
//
// Arguments:
// - name: The name of the operation to track
//
// Returns:
// - A function to call when the operation completes
//
// @example
// done := p.StartOperation(profiler.StageInference)
// defer done()
func (p *Profiler) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		p.Record(name, time.Since(start))
	}
}

// Record adds one sample for the named operation.
func (p *Profiler) Record(name string, duration time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tracker, exists := p.operationTimes[name]
	if !exists {
		tracker = &TimeTracker{
			Name:    name,
			MinTime: duration,
			MaxTime: duration,
		}
		p.operationTimes[name] = tracker
	}

	tracker.TotalTime += duration
	tracker.Count++

	if duration < tracker.MinTime {
		tracker.MinTime = duration
	}
	if duration > tracker.MaxTime {
		tracker.MaxTime = duration
	}
}

// Summary returns a snapshot of every tracked operation, sorted by name.
func (p *Profiler) Summary() []TimeTracker {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]TimeTracker, 0, len(p.operationTimes))
	for _, tracker := range p.operationTimes {
		out = append(out, *tracker)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

// Log writes the summary to the logger, one line per operation.
func (p *Profiler) Log(logger *zap.SugaredLogger) {
	logger.Infof("Uptime: %v", time.Since(p.startTime).Truncate(time.Millisecond))
	for _, t := range p.Summary() {
		logger.Infof("  %s: avg=%v, min=%v, max=%v, count=%d",
			t.Name,
			t.Average().Truncate(time.Microsecond),
			t.MinTime.Truncate(time.Microsecond),
			t.MaxTime.Truncate(time.Microsecond),
			t.Count)
	}
}
