package logging

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Fetch kinds counted by FetchStats.
const (
	FetchDate    = "date"
	FetchTags    = "tags"
	FetchPreview = "preview"
)

// kindStats is the window of one fetch kind. inFlight survives flushes.
type kindStats struct {
	ok       int64
	failed   int64
	inFlight int64

	slowest     time.Duration
	slowestPath string
}

func (k *kindStats) idle() bool {
	return k.ok == 0 && k.failed == 0 && k.inFlight == 0
}

// FetchStats counts background enrichment fetches per kind and logs one
// fetch_summary record per active kind every interval. Starts and finishes
// may come from different goroutines.
type FetchStats struct {
	logger   *slog.Logger
	interval time.Duration

	mu    sync.Mutex
	kinds map[string]*kindStats

	done chan struct{}
	wg   sync.WaitGroup
}

// NewFetchStats creates stats that flush every intervalSecs seconds. With a
// nil logger the counts are kept but never written.
func NewFetchStats(logger *slog.Logger, intervalSecs int) *FetchStats {
	if intervalSecs <= 0 {
		intervalSecs = 30
	}
	return &FetchStats{
		logger:   logger,
		interval: time.Duration(intervalSecs) * time.Second,
		kinds:    make(map[string]*kindStats),
		done:     make(chan struct{}),
	}
}

// Start begins the background flush goroutine.
func (s *FetchStats) Start() {
	s.wg.Add(1)
	go s.flushLoop()
}

// Stop writes a final summary and stops the flush goroutine.
func (s *FetchStats) Stop() {
	close(s.done)
	s.wg.Wait()
	s.flush()
}

func (s *FetchStats) kind(name string) *kindStats {
	k, ok := s.kinds[name]
	if !ok {
		k = &kindStats{}
		s.kinds[name] = k
	}
	return k
}

// Started marks a fetch of kind as dispatched.
func (s *FetchStats) Started(kind string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kind(kind).inFlight++
}

// Finished records the outcome of a fetch started with Started.
func (s *FetchStats) Finished(kind, path string, ok bool, took time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := s.kind(kind)
	if k.inFlight > 0 {
		k.inFlight--
	}
	if ok {
		k.ok++
	} else {
		k.failed++
	}
	if took > k.slowest {
		k.slowest = took
		k.slowestPath = path
	}
}

// InFlight returns the number of fetches of kind still running.
func (s *FetchStats) InFlight(kind string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if k, ok := s.kinds[kind]; ok {
		return k.inFlight
	}
	return 0
}

func (s *FetchStats) flushLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.flush()
		case <-s.done:
			return
		}
	}
}

// snapshot returns the active kinds in name order and resets the window.
func (s *FetchStats) snapshot() ([]string, map[string]kindStats) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]kindStats, len(s.kinds))
	var names []string
	for name, k := range s.kinds {
		if k.idle() {
			continue
		}
		out[name] = *k
		names = append(names, name)
		s.kinds[name] = &kindStats{inFlight: k.inFlight}
	}
	sort.Strings(names)
	return names, out
}

func (s *FetchStats) flush() {
	names, window := s.snapshot()
	if s.logger == nil {
		return
	}
	for _, name := range names {
		k := window[name]
		attrs := []any{
			slog.String("component", CompEnrich),
			slog.String("kind", name),
			slog.Int64("ok", k.ok),
			slog.Int64("failed", k.failed),
			slog.Int64("in_flight", k.inFlight),
			slog.Int("window_seconds", int(s.interval.Seconds())),
		}
		if k.slowestPath != "" {
			attrs = append(attrs,
				slog.Int64("slowest_ms", k.slowest.Milliseconds()),
				slog.String("slowest_path", k.slowestPath))
		}
		s.logger.Info("fetch_summary", attrs...)
	}
}
