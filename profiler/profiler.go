// Package profiler - Stage timing for a single detection run.
package profiler

import (
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Stage is one timed step of a run.
type Stage struct {
	Name     string
	Duration time.Duration
}

// Tracker records how long each stage of a run takes.
//
// Stages are kept in the order they finish. A Tracker is safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	start  time.Time
	stages []Stage
	now    func() time.Time
}

// NewTracker creates a tracker whose total starts now.
//
// Returns:
//   - *Tracker: The tracker.
func NewTracker() *Tracker {
	return newTracker(time.Now)
}

func newTracker(now func() time.Time) *Tracker {
	return &Tracker{start: now(), now: now}
}

// Track begins timing a stage.
//
// Arguments:
//   - name: The name of the stage, e.g. "inference".
//
// Returns:
//   - func(): A function to call when the stage completes.
//
// Example:
//
// ```go
//
//	done := tracker.Track("inference")
//	rows, err := engine.Infer(ctx, img)
//	done()
//
// ```
func (t *Tracker) Track(name string) func() {
	start := t.now()
	return func() {
		d := t.now().Sub(start)
		t.mu.Lock()
		defer t.mu.Unlock()
		t.stages = append(t.stages, Stage{Name: name, Duration: d})
	}
}

// Stages returns a copy of the finished stages.
func (t *Tracker) Stages() []Stage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Stage(nil), t.stages...)
}

// Duration returns the summed duration of every stage with the given name.
func (t *Tracker) Duration(name string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	var d time.Duration
	for _, s := range t.stages {
		if s.Name == name {
			d += s.Duration
		}
	}
	return d
}

// Total returns the time since the tracker was created.
func (t *Tracker) Total() time.Duration {
	return t.now().Sub(t.start)
}

// Fields returns the stage durations, the total and a heap snapshot as log fields.
//
// Returns:
//   - []zap.Field: One duration field per stage, then "total" and "heap_alloc".
func (t *Tracker) Fields() []zap.Field {
	stages := t.Stages()
	fields := make([]zap.Field, 0, len(stages)+2)
	for _, s := range stages {
		fields = append(fields, zap.Duration(s.Name, s.Duration))
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return append(fields,
		zap.Duration("total", t.Total()),
		zap.Uint64("heap_alloc", mem.HeapAlloc),
	)
}
