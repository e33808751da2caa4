// Package profiler tracks per-stage timings of the speed pipeline and emits
// periodic reports through the structured logger.
package profiler

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Stage names recorded by the pipeline.
const (
	StageBackground = "background"
	StageSegment    = "segment"
	StageCalibrate  = "calibrate"
	StageSpeed      = "speed"
	StageFrame      = "frame"
)

// Options configures the recorder.
type Options struct {
	// ReportInterval specifies how often to emit status reports (default: 10s)
	ReportInterval time.Duration
	// MaxSamples bounds the rolling window per stage (default: 600)
	MaxSamples int
	// Logger receives the reports (default: slog.Default())
	Logger *slog.Logger
}

// Recorder collects stage timings. It is safe for concurrent use: the
// pipeline records while the report goroutine reads.
type Recorder struct {
	reportInterval time.Duration
	maxSamples     int
	logger         *slog.Logger

	mu      sync.Mutex
	stages  map[string]*TimeTracker
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started time.Time
}

// TimeTracker tracks timing statistics of one stage over a rolling window.
type TimeTracker struct {
	durations []time.Duration
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// Stats is a snapshot of one stage.
type Stats struct {
	Stage string
	Avg   time.Duration
	Min   time.Duration
	Max   time.Duration
	Count int64
}

// New creates a recorder with the specified options.
//
// Arguments:
// - opts: Configuration options for the recorder
//
// Returns:
// - A configured Recorder instance
func New(opts Options) *Recorder {
	if opts.ReportInterval <= 0 {
		opts.ReportInterval = 10 * time.Second
	}
	if opts.MaxSamples <= 0 {
		opts.MaxSamples = 600
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Recorder{
		reportInterval: opts.ReportInterval,
		maxSamples:     opts.MaxSamples,
		logger:         opts.Logger,
		stages:         make(map[string]*TimeTracker),
		started:        time.Now(),
	}
}

// StartOperation begins timing a stage.
//
// A nil recorder returns a no-op, so callers need not check.
//
// Arguments:
// - stage: The name of the stage to track
//
// Returns:
// - A function to call when the stage completes
func (r *Recorder) StartOperation(stage string) func() {
	if r == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		r.Record(stage, time.Since(start))
	}
}

// Record adds one duration sample for stage.
func (r *Recorder) Record(stage string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tracker, exists := r.stages[stage]
	if !exists {
		tracker = &TimeTracker{minTime: d, maxTime: d}
		r.stages[stage] = tracker
	}

	tracker.durations = append(tracker.durations, d)
	tracker.totalTime += d
	if len(tracker.durations) > r.maxSamples {
		tracker.totalTime -= tracker.durations[0]
		tracker.durations = tracker.durations[1:]
	}
	tracker.count++

	if d < tracker.minTime {
		tracker.minTime = d
	}
	if d > tracker.maxTime {
		tracker.maxTime = d
	}
}

// Snapshot returns the statistics of every stage, sorted by stage name.
// Avg is over the rolling window; Min, Max and Count are lifetime values.
func (r *Recorder) Snapshot() []Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := make([]Stats, 0, len(r.stages))
	for name, tracker := range r.stages {
		if len(tracker.durations) == 0 {
			continue
		}
		stats = append(stats, Stats{
			Stage: name,
			Avg:   tracker.totalTime / time.Duration(len(tracker.durations)),
			Min:   tracker.minTime,
			Max:   tracker.maxTime,
			Count: tracker.count,
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Stage < stats[j].Stage })
	return stats
}

// Start emits a report every ReportInterval until ctx is done or Stop is called.
// Calling Start on a running recorder is a no-op.
func (r *Recorder) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return
	}
	ctx, r.cancel = context.WithCancel(ctx)
	r.started = time.Now()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(r.reportInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Report()
			}
		}
	}()
}

// Stop halts periodic reporting and waits for the report goroutine.
func (r *Recorder) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	r.wg.Wait()
}

// Report logs one line per stage.
func (r *Recorder) Report() {
	uptime := time.Since(r.started).Truncate(time.Millisecond)
	for _, s := range r.Snapshot() {
		r.logger.Info("pipeline timing",
			"stage", s.Stage,
			"avg", s.Avg.Truncate(time.Microsecond),
			"min", s.Min.Truncate(time.Microsecond),
			"max", s.Max.Truncate(time.Microsecond),
			"count", s.Count,
			"uptime", uptime,
		)
	}
}
