package ui

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/navgator/navgator/internal/clipboard"
	"github.com/navgator/navgator/internal/enrich"
	"github.com/navgator/navgator/internal/filter"
	"github.com/navgator/navgator/internal/git"
	"github.com/navgator/navgator/internal/logging"
	"github.com/navgator/navgator/internal/match"
	"github.com/navgator/navgator/internal/tags"
)

var uiLog = logging.ForComponent(logging.CompUI)

// tickInterval bounds how long finished background fetches wait before
// they are shown.
const tickInterval = 100 * time.Millisecond

type tickMsg time.Time

// Focus is the panel receiving keys.
type Focus int

const (
	FocusSearch Focus = iota
	FocusPreview
	FocusGit
	FocusTagEdit
)

func (f Focus) String() string {
	switch f {
	case FocusPreview:
		return "Preview"
	case FocusGit:
		return "Git"
	case FocusTagEdit:
		return "Tag"
	default:
		return "Search"
	}
}

// Result is the outcome of a session.
type Result struct {
	Path      string
	Cancelled bool
}

// Options holds the side effects a Model performs. Zero fields fall back to
// the real implementations.
type Options struct {
	ReadTags     func(path string) []string
	SaveTags     func(path string, list []string) error
	CopyPath     func(path string) error
	ThemeWatcher *ThemeWatcher
}

func (o *Options) defaults() {
	if o.ReadTags == nil {
		o.ReadTags = tags.Read
	}
	if o.SaveTags == nil {
		o.SaveTags = tags.Write
	}
	if o.CopyPath == nil {
		o.CopyPath = clipboard.WriteAll
	}
}

// Model is the navigator session. All of its state is owned by the
// bubbletea update loop.
type Model struct {
	items []string
	sched *enrich.Scheduler
	opts  Options
	keys  keyMap

	query    textinput.Model
	tokens   match.Tokens
	mode     filter.SortMode
	filtered []int
	selected int
	offset   int

	focus    Focus
	editor   *tags.Editor
	tagInput textinput.Model

	previewPath    string
	preview        string
	previewLoading bool
	vcs            *git.Summary
	previewVP      viewport.Model
	gitVP          viewport.Model

	width  int
	height int
	lay    layout

	err    error
	status string

	start time.Time
	now   time.Time

	result   Result
	quitting bool
}

// New creates a session over items. Enrichment goes through sched.
func New(items []string, sched *enrich.Scheduler, opts Options) *Model {
	opts.defaults()

	query := textinput.New()
	query.Prompt = "> "
	query.Placeholder = "Search (@path #tag)"
	query.Focus()

	tagInput := textinput.New()
	tagInput.Prompt = "+ "
	tagInput.Placeholder = "tag"

	now := time.Now()
	m := &Model{
		items:     items,
		sched:     sched,
		opts:      opts,
		keys:      defaultKeyMap(),
		query:     query,
		tagInput:  tagInput,
		mode:      filter.SortMatch,
		previewVP: viewport.New(0, 0),
		gitVP:     viewport.New(0, 0),
		start:     now,
		now:       now,
	}
	m.refilter(false)
	return m
}

// Result returns the outcome once the program has quit.
func (m *Model) Result() Result {
	return m.result
}

// Focus returns the focused panel.
func (m *Model) Focus() Focus {
	return m.focus
}

// Init starts the tick loop.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.tick())
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.now = time.Time(msg)
		m.pollTheme()
		cmd = m.tick()

	case tea.KeyMsg:
		cmd = m.handleKey(msg)
		if m.quitting {
			return m, cmd
		}

	case tea.MouseMsg:
		m.handleMouse(msg)

	default:
		cmd = m.updateInputs(msg)
	}

	m.sync()
	return m, cmd
}

// updateInputs forwards messages such as cursor blinks to the text inputs.
func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	var qc, tc tea.Cmd
	m.query, qc = m.query.Update(msg)
	m.tagInput, tc = m.tagInput.Update(msg)
	return tea.Batch(qc, tc)
}

// sync applies finished fetches and schedules new ones for what is on
// screen.
func (m *Model) sync() {
	needsTags := m.tokens.NeedsTags()
	report := m.sched.Drain(m.mode, needsTags)
	if needsTags && m.sched.StartBulkTags(m.items) {
		uiLog.Debug("bulk_tag_scan_started", slog.Int("items", len(m.items)))
	}
	if report.Resort || report.Refilter {
		m.refilter(true)
	}

	m.syncPreview(report.Previews)
	if m.focus == FocusGit && !m.showGit() {
		m.focus = FocusPreview
	}

	m.lay = computeLayout(m.width, m.height, m.showGit())
	rows := m.lay.Results.H
	m.offset = filter.WindowOffset(m.selected, m.offset, rows, len(m.filtered))
	m.sched.EnsureWindow(filter.VisiblePaths(m.items, m.filtered, m.offset, rows))

	m.refreshPanels()
}

// refilter re-evaluates the query. With keepSelection the selected path
// stays selected when it survives and the index is clamped when it does not;
// otherwise the selection goes back to the top.
func (m *Model) refilter(keepSelection bool) {
	next := filter.Evaluate(m.items, m.query.Value(), m.mode, m.sched.Meta(), m.sched.Tags())
	if keepSelection {
		m.selected = filter.Reselect(m.items, m.filtered, m.selected, next)
	} else {
		m.selected, m.offset = 0, 0
	}
	m.filtered = next
}

func (m *Model) currentPath() (string, bool) {
	return filter.PathAt(m.items, m.filtered, m.selected)
}

// syncPreview follows the selection. A new selection is served from the
// preview cache or starts a job; a loading preview is filled in once its
// path shows up in arrived.
func (m *Model) syncPreview(arrived []string) {
	path, ok := m.currentPath()
	if !ok {
		if m.previewPath != "" {
			m.resetPreview("")
		}
		m.previewLoading = false
		m.sched.ClearPreviewInFlight()
		return
	}
	if path != m.previewPath {
		m.resetPreview(path)
		m.previewLoading = true
		if r, ok := m.sched.EnsurePreview(path); ok {
			m.applyPreview(r)
		}
		return
	}
	if !m.previewLoading || !slices.Contains(arrived, path) {
		return
	}
	if r, ok := m.sched.Preview(path); ok {
		m.applyPreview(r)
	}
}

func (m *Model) applyPreview(r enrich.PreviewResult) {
	m.preview = r.Preview
	m.vcs = r.VCS
	m.previewLoading = false
}

func (m *Model) resetPreview(path string) {
	m.previewPath = path
	m.preview = ""
	m.vcs = nil
	m.previewVP.GotoTop()
	m.gitVP.GotoTop()
}

// showGit reports whether the git panel is on screen: while the preview is
// loading and when the selection is inside a repository.
func (m *Model) showGit() bool {
	if m.previewPath == "" {
		return false
	}
	return m.previewLoading || (m.vcs != nil && !m.vcs.Empty())
}

func (m *Model) pollTheme() {
	isDark, changed := m.opts.ThemeWatcher.Poll()
	if !changed {
		return
	}
	theme := string(ThemeLight)
	if isDark {
		theme = string(ThemeDark)
	}
	InitTheme(theme)
	uiLog.Info("theme_changed", slog.String("theme", theme))
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Cancel) {
		m.result = Result{Cancelled: true}
		m.quitting = true
		return tea.Quit
	}

	if m.focus != FocusTagEdit {
		switch {
		case key.Matches(msg, m.keys.EditTags):
			m.openTagEdit()
			return nil
		case key.Matches(msg, m.keys.Select):
			if path, ok := m.currentPath(); ok {
				m.result = Result{Path: path}
				m.quitting = true
				return tea.Quit
			}
			return nil
		case key.Matches(msg, m.keys.CycleSort):
			m.cycleSort()
			return nil
		case key.Matches(msg, m.keys.CopyPath):
			m.copyPath()
			return nil
		}
	}

	switch m.focus {
	case FocusSearch:
		return m.handleSearchKey(msg)
	case FocusPreview:
		m.handlePreviewKey(msg)
	case FocusGit:
		m.handleGitKey(msg)
	case FocusTagEdit:
		return m.handleTagEditKey(msg)
	}
	return nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Down):
		if m.selected+1 < len(m.filtered) {
			m.selected++
		}
	case key.Matches(msg, m.keys.Right) && m.cursorAtEnd():
		m.focus = FocusPreview
	case key.Matches(msg, m.keys.ClearQuery):
		if m.query.Value() != "" {
			m.query.SetValue("")
			m.queryChanged()
		}
	default:
		before := m.query.Value()
		var cmd tea.Cmd
		m.query, cmd = m.query.Update(msg)
		if m.query.Value() != before {
			m.queryChanged()
		}
		return cmd
	}
	return nil
}

func (m *Model) cursorAtEnd() bool {
	return m.query.Position() >= len([]rune(m.query.Value()))
}

func (m *Model) queryChanged() {
	m.tokens = match.ParseQuery(m.query.Value())
	m.refilter(true)
}

func (m *Model) cycleSort() {
	m.mode = m.mode.Next()
	m.refilter(true)
	if m.mode.UsesTime() {
		m.sched.StartBulkDates(m.items)
	}
	uiLog.Debug("sort_mode_changed", slog.String("mode", m.mode.Label()))
}

func (m *Model) copyPath() {
	path, ok := m.currentPath()
	if !ok {
		return
	}
	if err := m.opts.CopyPath(path); err != nil {
		m.setError(fmt.Errorf("copy failed: %w", err))
		return
	}
	m.err = nil
	m.status = "Copied " + path
}

func (m *Model) handlePreviewKey(msg tea.KeyMsg) {
	vp := &m.previewVP
	switch {
	case key.Matches(msg, m.keys.Left):
		m.focus = FocusSearch
	case key.Matches(msg, m.keys.Right):
		if m.showGit() {
			m.focus = FocusGit
		}
	case key.Matches(msg, m.keys.Up):
		if vp.AtTop() {
			m.focus = FocusSearch
		} else {
			vp.LineUp(1)
		}
	case key.Matches(msg, m.keys.Down):
		if vp.AtBottom() && m.showGit() {
			m.focus = FocusGit
		} else {
			vp.LineDown(1)
		}
	default:
		scrollPage(vp, msg, m.keys)
	}
}

func (m *Model) handleGitKey(msg tea.KeyMsg) {
	vp := &m.gitVP
	switch {
	case key.Matches(msg, m.keys.Left):
		m.focus = FocusSearch
	case key.Matches(msg, m.keys.Right):
		m.focus = FocusPreview
	case key.Matches(msg, m.keys.Up):
		if vp.AtTop() {
			m.focus = FocusPreview
		} else {
			vp.LineUp(1)
		}
	case key.Matches(msg, m.keys.Down):
		vp.LineDown(1)
	default:
		scrollPage(vp, msg, m.keys)
	}
}

func scrollPage(vp *viewport.Model, msg tea.KeyMsg, keys keyMap) {
	switch {
	case key.Matches(msg, keys.PageUp):
		vp.ViewUp()
	case key.Matches(msg, keys.PageDown):
		vp.ViewDown()
	case key.Matches(msg, keys.Home):
		vp.GotoTop()
	case key.Matches(msg, keys.End):
		vp.GotoBottom()
	}
}

func (m *Model) openTagEdit() {
	path, ok := m.currentPath()
	if !ok {
		return
	}
	current, cached := m.sched.TagsFor(path)
	if !cached {
		current = m.opts.ReadTags(path)
	}
	m.editor = tags.NewEditor(path, current, m.sched.TagSuggestions())
	m.tagInput.SetValue("")
	m.tagInput.Focus()
	m.query.Blur()
	m.focus = FocusTagEdit
	m.err = nil
	m.status = ""
	m.previewVP.GotoTop()
}

func (m *Model) closeTagEdit() {
	m.editor = nil
	m.tagInput.SetValue("")
	m.tagInput.Blur()
	m.query.Focus()
	m.focus = FocusPreview
}

func (m *Model) handleTagEditKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Select):
		if m.commitTag() {
			m.saveTags()
		}
	case key.Matches(msg, m.keys.AddTag):
		m.commitTag()
	case key.Matches(msg, m.keys.Backspace) && m.tagInput.Value() == "":
		m.editor.Pop()
	default:
		var cmd tea.Cmd
		m.tagInput, cmd = m.tagInput.Update(msg)
		return cmd
	}
	return nil
}

// commitTag adds the typed tag. A rejected tag stays in the input with the
// error on the help line.
func (m *Model) commitTag() bool {
	if _, err := m.editor.Commit(m.tagInput.Value()); err != nil {
		m.setError(err)
		return false
	}
	m.err = nil
	m.tagInput.SetValue("")
	return true
}

// saveTags writes the edited tags. On failure the editor stays open and the
// tag cache keeps its old value.
func (m *Model) saveTags() {
	path := m.editor.Path
	list := m.editor.Tags
	if err := m.opts.SaveTags(path, list); err != nil {
		m.setError(err)
		uiLog.Warn("tag_save_failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	m.err = nil
	m.sched.SetTags(path, list)
	m.closeTagEdit()
	if m.tokens.NeedsTags() {
		m.refilter(true)
	}
	if pos, ok := filter.IndexOf(m.items, m.filtered, path); ok {
		m.selected = pos
	}
}

func (m *Model) setError(err error) {
	m.err = err
	m.status = ""
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if m.focus == FocusTagEdit {
		return
	}
	x, y := msg.X, msg.Y
	switch msg.Button {
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return
		}
		switch {
		case m.lay.List.contains(x, y):
			m.focus = FocusSearch
		case m.lay.ShowGit && m.lay.Git.contains(x, y):
			m.focus = FocusGit
		case m.lay.Preview.contains(x, y):
			m.focus = FocusPreview
		}
	case tea.MouseButtonWheelUp:
		switch {
		case m.lay.Preview.contains(x, y):
			m.previewVP.LineUp(1)
		case m.lay.ShowGit && m.lay.Git.contains(x, y):
			m.gitVP.LineUp(1)
		case m.lay.Results.contains(x, y):
			if m.selected > 0 {
				m.selected--
			}
		}
	case tea.MouseButtonWheelDown:
		switch {
		case m.lay.Preview.contains(x, y):
			m.previewVP.LineDown(1)
		case m.lay.ShowGit && m.lay.Git.contains(x, y):
			m.gitVP.LineDown(1)
		case m.lay.Results.contains(x, y):
			if m.selected+1 < len(m.filtered) {
				m.selected++
			}
		}
	}
}
