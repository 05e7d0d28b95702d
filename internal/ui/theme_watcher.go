package ui

import (
	"context"
	"log/slog"
	"sync"

	dark "github.com/thiagokokada/dark-mode-go"
)

// ThemeWatcher monitors OS dark mode changes for theme = "system". The UI
// polls it on every tick.
type ThemeWatcher struct {
	changeCh  chan bool     // true=dark, false=light (buffered, non-blocking send)
	closeCh   chan struct{} // signals the watch goroutine to stop
	closeOnce sync.Once
}

// NewThemeWatcher creates and starts a theme watcher.
// Returns nil if WatchDarkMode fails (caller should fall back gracefully).
func NewThemeWatcher(parentCtx context.Context) *ThemeWatcher {
	ctx, cancel := context.WithCancel(parentCtx)

	events, errs, err := dark.WatchDarkMode(ctx)
	if err != nil {
		cancel()
		uiLog.Warn("theme_watcher_init_failed", slog.String("error", err.Error()))
		return nil
	}

	tw := &ThemeWatcher{
		changeCh: make(chan bool, 1),
		closeCh:  make(chan struct{}),
	}

	go tw.watchLoop(ctx, cancel, events, errs)
	return tw
}

func (tw *ThemeWatcher) watchLoop(ctx context.Context, cancel context.CancelFunc, events <-chan bool, errs <-chan error) {
	defer cancel()
	for {
		select {
		case <-tw.closeCh:
			return
		case <-ctx.Done():
			return
		case isDark, ok := <-events:
			if !ok {
				return
			}
			// Keep only the latest state.
			select {
			case <-tw.changeCh:
			default:
			}
			tw.changeCh <- isDark
		case err, ok := <-errs:
			if ok && err != nil {
				uiLog.Warn("theme_watcher_error", slog.String("error", err.Error()))
			}
		}
	}
}

// Poll returns the latest dark mode change, if one arrived since the last
// call. It never blocks.
func (tw *ThemeWatcher) Poll() (isDark bool, changed bool) {
	if tw == nil {
		return false, false
	}
	select {
	case isDark = <-tw.changeCh:
		return isDark, true
	default:
		return false, false
	}
}

// Close stops the watcher goroutine. Safe to call multiple times.
func (tw *ThemeWatcher) Close() {
	if tw == nil {
		return
	}
	tw.closeOnce.Do(func() {
		close(tw.closeCh)
	})
}
