package ui

import (
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/navgator/navgator/internal/enrich"
)

// Run shows the navigator until an item is chosen or the session is
// cancelled. The interface is drawn on out so that the chosen path can go
// to stdout.
func Run(items []string, sched *enrich.Scheduler, opts Options, in io.Reader, out io.Writer) (Result, error) {
	m := New(items, sched, opts)
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	final, err := p.Run()
	if err != nil {
		return Result{}, fmt.Errorf("navigator failed: %w", err)
	}
	res := final.(*Model).Result()
	uiLog.Info("session_finished",
		slog.Bool("cancelled", res.Cancelled),
		slog.String("path", res.Path))
	return res, nil
}
