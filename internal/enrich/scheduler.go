// Package enrich fetches per-item metadata in the background.
//
// A Scheduler is owned by a single goroutine, the UI loop. Fetch jobs run in
// their own goroutines and only send results on the scheduler's channels;
// caches and in-flight sets are touched by the owner alone, when it calls
// Drain. At most one job per kind and path is in flight, and every result is
// cached for the rest of the session.
package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/navgator/navgator/internal/filter"
	"github.com/navgator/navgator/internal/fsmeta"
	"github.com/navgator/navgator/internal/git"
	"github.com/navgator/navgator/internal/logging"
	"github.com/navgator/navgator/internal/tags"
)

var enrichLog = logging.ForComponent(logging.CompEnrich)

const resultBuffer = 256

// DateResult is a finished metadata fetch.
type DateResult struct {
	Path    string
	Display string
	Meta    filter.SortMeta
}

// TagResult is a finished tag read.
type TagResult struct {
	Path string
	Tags []string
}

// PreviewResult is a finished preview job. VCS is nil when the path is not
// in a repository or the summary could not be built.
type PreviewResult struct {
	Path    string
	Preview string
	VCS     *git.Summary
}

// DrainReport tells the owner what changed during a Drain.
type DrainReport struct {
	// Resort is set when a date arrived while a time-based sort is active.
	Resort bool
	// Refilter is set when tags arrived while the query uses tags.
	Refilter bool
	// Previews lists the paths whose preview arrived.
	Previews []string
}

// Options tunes a Scheduler.
type Options struct {
	// BulkRate limits bulk sweeps to this many fetches per second. Zero
	// means no limit.
	BulkRate float64
}

// Scheduler owns the enrichment caches.
type Scheduler struct {
	fetch   Fetchers
	limiter *rate.Limiter

	previews        *cache.Cache
	previewInFlight string

	dates         map[string]string
	meta          map[string]filter.SortMeta
	datesInFlight map[string]struct{}

	tags           map[string][]string
	tagsInFlight   map[string]struct{}
	tagScanStarted bool

	dateCh    chan DateResult
	tagCh     chan TagResult
	previewCh chan PreviewResult
}

// New returns a Scheduler using the given fetchers.
func New(fetch Fetchers, opts Options) *Scheduler {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.BulkRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.BulkRate), 1)
	}
	return &Scheduler{
		fetch:         fetch,
		limiter:       limiter,
		previews:      cache.New(cache.NoExpiration, 0),
		dates:         make(map[string]string),
		meta:          make(map[string]filter.SortMeta),
		datesInFlight: make(map[string]struct{}),
		tags:          make(map[string][]string),
		tagsInFlight:  make(map[string]struct{}),
		dateCh:        make(chan DateResult, resultBuffer),
		tagCh:         make(chan TagResult, resultBuffer),
		previewCh:     make(chan PreviewResult, resultBuffer),
	}
}

// Drain applies every result waiting on the channels without blocking.
func (s *Scheduler) Drain(mode filter.SortMode, needsTags bool) DrainReport {
	var report DrainReport
	for {
		select {
		case r := <-s.previewCh:
			s.previews.Set(r.Path, r, cache.NoExpiration)
			if s.previewInFlight == r.Path {
				s.previewInFlight = ""
			}
			report.Previews = append(report.Previews, r.Path)
		case r := <-s.dateCh:
			s.dates[r.Path] = r.Display
			s.meta[r.Path] = r.Meta
			delete(s.datesInFlight, r.Path)
			if mode.UsesTime() {
				report.Resort = true
			}
		case r := <-s.tagCh:
			s.tags[r.Path] = r.Tags
			delete(s.tagsInFlight, r.Path)
			if needsTags {
				report.Refilter = true
			}
		default:
			return report
		}
	}
}

// Preview returns the cached preview of path.
func (s *Scheduler) Preview(path string) (PreviewResult, bool) {
	v, ok := s.previews.Get(path)
	if !ok {
		return PreviewResult{}, false
	}
	return v.(PreviewResult), true
}

// EnsurePreview returns the cached preview of path, or starts a preview job
// for it unless one is already running for the same path. Starting a job
// for another path replaces the in-flight marker; the older job still
// completes and is cached.
func (s *Scheduler) EnsurePreview(path string) (PreviewResult, bool) {
	if r, ok := s.Preview(path); ok {
		return r, true
	}
	if s.previewInFlight == path {
		return PreviewResult{}, false
	}
	s.previewInFlight = path
	logging.FetchStarted(logging.FetchPreview)
	go s.previewJob(path)
	return PreviewResult{}, false
}

// ClearPreviewInFlight forgets the in-flight preview, used when nothing is
// selected.
func (s *Scheduler) ClearPreviewInFlight() {
	s.previewInFlight = ""
}

func (s *Scheduler) previewJob(path string) {
	start := time.Now()
	res := PreviewResult{Path: path}
	var g errgroup.Group
	g.Go(func() error {
		return guard(func() {
			res.Preview = s.fetch.Preview.FetchPreview(path)
		})
	})
	g.Go(func() error {
		return guard(func() {
			summary, err := s.fetch.VCS.FetchVCS(path)
			if err != nil {
				return
			}
			res.VCS = summary
		})
	})
	err := g.Wait()
	if err != nil {
		enrichLog.Debug("preview_job_failed", slog.String("path", path), slog.String("error", err.Error()))
	}
	logging.FetchFinished(logging.FetchPreview, path, err == nil, time.Since(start))
	s.previewCh <- res
}

// EnsureWindow starts date and tag jobs for paths that are neither cached
// nor in flight, one goroutine per job.
func (s *Scheduler) EnsureWindow(paths []string) {
	for _, path := range paths {
		if s.needsDate(path) {
			s.markDate(path)
			go func(p string) { s.dateCh <- s.fetchDate(p) }(path)
		}
		if s.needsTags(path) {
			s.markTags(path)
			go func(p string) { s.tagCh <- s.fetchTags(p) }(path)
		}
	}
}

// StartBulkTags reads the tags of every item not yet known. It runs at most
// once per session; the returned value reports whether a sweep started.
func (s *Scheduler) StartBulkTags(items []string) bool {
	if s.tagScanStarted {
		return false
	}
	s.tagScanStarted = true
	var missing []string
	for _, path := range items {
		if s.needsTags(path) {
			s.markTags(path)
			missing = append(missing, path)
		}
	}
	if len(missing) == 0 {
		return true
	}
	go func() {
		for _, path := range missing {
			s.pace()
			s.tagCh <- s.fetchTags(path)
		}
	}()
	return true
}

// StartBulkDates fetches metadata for every item not yet known. It is
// called each time a time-based sort mode is entered.
func (s *Scheduler) StartBulkDates(items []string) {
	var missing []string
	for _, path := range items {
		if s.needsDate(path) {
			s.markDate(path)
			missing = append(missing, path)
		}
	}
	if len(missing) == 0 {
		return
	}
	go func() {
		for _, path := range missing {
			s.pace()
			s.dateCh <- s.fetchDate(path)
		}
	}()
}

func (s *Scheduler) pace() {
	_ = s.limiter.Wait(context.Background())
}

func (s *Scheduler) markDate(path string) {
	s.datesInFlight[path] = struct{}{}
	logging.FetchStarted(logging.FetchDate)
}

func (s *Scheduler) markTags(path string) {
	s.tagsInFlight[path] = struct{}{}
	logging.FetchStarted(logging.FetchTags)
}

func (s *Scheduler) needsDate(path string) bool {
	if _, ok := s.dates[path]; ok {
		return false
	}
	_, inFlight := s.datesInFlight[path]
	return !inFlight
}

func (s *Scheduler) needsTags(path string) bool {
	if _, ok := s.tags[path]; ok {
		return false
	}
	_, inFlight := s.tagsInFlight[path]
	return !inFlight
}

func (s *Scheduler) fetchDate(path string) DateResult {
	start := time.Now()
	res := DateResult{Path: path, Display: fsmeta.Placeholder}
	ok := false
	err := guard(func() {
		m, err := s.fetch.Meta.FetchMeta(path)
		if err != nil {
			enrichLog.Debug("meta_fetch_failed", slog.String("path", path), slog.String("error", err.Error()))
			return
		}
		ok = true
		if m.Display != "" {
			res.Display = m.Display
		}
		res.Meta = filter.SortMeta{Modified: m.Modified, Created: m.Created}
	})
	if err != nil {
		enrichLog.Debug("meta_fetch_panic", slog.String("path", path), slog.String("error", err.Error()))
		ok = false
	}
	logging.FetchFinished(logging.FetchDate, path, ok, time.Since(start))
	return res
}

func (s *Scheduler) fetchTags(path string) TagResult {
	start := time.Now()
	res := TagResult{Path: path}
	err := guard(func() { res.Tags = s.fetch.Tags.ReadTags(path) })
	if err != nil {
		enrichLog.Debug("tag_read_panic", slog.String("path", path), slog.String("error", err.Error()))
		res.Tags = nil
	}
	logging.FetchFinished(logging.FetchTags, path, err == nil, time.Since(start))
	return res
}

// guard runs fn, turning a panic into an error.
func guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	fn()
	return nil
}

// Date returns the display date of path.
func (s *Scheduler) Date(path string) (string, bool) {
	d, ok := s.dates[path]
	return d, ok
}

// Meta returns the sort metadata cache. The map must not be modified.
func (s *Scheduler) Meta() map[string]filter.SortMeta {
	return s.meta
}

// Tags returns the tag cache. The map must not be modified.
func (s *Scheduler) Tags() map[string][]string {
	return s.tags
}

// TagsFor returns the cached tags of path.
func (s *Scheduler) TagsFor(path string) ([]string, bool) {
	t, ok := s.tags[path]
	return t, ok
}

// SetTags records tags saved by the user.
func (s *Scheduler) SetTags(path string, list []string) {
	s.tags[path] = append([]string(nil), list...)
}

// TagSuggestions returns the distinct cached tags, sorted, without hidden
// ones.
func (s *Scheduler) TagSuggestions() []string {
	return tags.Suggestions(s.tags)
}
