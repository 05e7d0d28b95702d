package ui

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navgator/navgator/internal/enrich"
	"github.com/navgator/navgator/internal/filter"
	"github.com/navgator/navgator/internal/fsmeta"
	"github.com/navgator/navgator/internal/git"
	"github.com/navgator/navgator/internal/tags"
)

var testItems = []string{"/a/Projects", "/a/Projects/widget", "/a/Downloads"}

// harness records the side effects of a Model under test.
type harness struct {
	mu      sync.Mutex
	sidecar map[string][]string
	cached  map[string][]string
	vcs     *git.Summary
	saveErr error
	copied  []string
	copyErr error

	// tagGate holds background tag reads until closed.
	tagGate   chan struct{}
	readCalls int
}

func newHarness() *harness {
	return &harness{
		sidecar: make(map[string][]string),
		cached:  make(map[string][]string),
	}
}

func (h *harness) fetchers() enrich.Fetchers {
	return enrich.Fetchers{
		Meta: enrich.MetaFunc(func(path string) (fsmeta.Meta, error) {
			mod := int64(len(path))
			return fsmeta.Meta{Display: "2024-01-02 03:04", Modified: &mod}, nil
		}),
		Tags: enrich.TagFunc(func(path string) []string {
			if h.tagGate != nil {
				<-h.tagGate
			}
			h.mu.Lock()
			defer h.mu.Unlock()
			return h.cached[path]
		}),
		Preview: enrich.PreviewFunc(func(path string) string {
			return path + "\n\nContents\nREADME.md"
		}),
		VCS: enrich.VCSFunc(func(path string) (*git.Summary, error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			return h.vcs, nil
		}),
	}
}

func (h *harness) options() Options {
	return Options{
		ReadTags: func(path string) []string {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.readCalls++
			return h.sidecar[path]
		},
		SaveTags: func(path string, list []string) error {
			h.mu.Lock()
			defer h.mu.Unlock()
			if h.saveErr != nil {
				return h.saveErr
			}
			h.sidecar[path] = append([]string(nil), list...)
			return nil
		},
		CopyPath: func(path string) error {
			if h.copyErr != nil {
				return h.copyErr
			}
			h.copied = append(h.copied, path)
			return nil
		},
	}
}

func newTestModel(t *testing.T, h *harness) *Model {
	t.Helper()
	sched := enrich.New(h.fetchers(), enrich.Options{})
	m := New(testItems, sched, h.options())
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

// settle ticks the model until cond holds.
func settle(t *testing.T, m *Model, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		m.Update(tickMsg(time.Now()))
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func press(m *Model, k tea.KeyType) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: k})
	return cmd
}

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func currentPath(m *Model) string {
	p, _ := m.currentPath()
	return p
}

// selectPath moves the selection down until path is selected.
func selectPath(t *testing.T, m *Model, path string) {
	t.Helper()
	for range m.filtered {
		press(m, tea.KeyUp)
	}
	for i := 0; i < len(m.filtered); i++ {
		if currentPath(m) == path {
			return
		}
		press(m, tea.KeyDown)
	}
	require.Equal(t, path, currentPath(m))
}

func TestTypingKeepsSelectedPath(t *testing.T) {
	m := newTestModel(t, newHarness())
	typeText(m, "o")
	selectPath(t, m, "/a/Projects/widget")

	typeText(m, "j")
	assert.Equal(t, "oj", m.query.Value())
	assert.ElementsMatch(t, []int{0, 1}, m.filtered)
	assert.Equal(t, "/a/Projects/widget", currentPath(m))
}

func TestTypingClampsWhenSelectedPathDropsOut(t *testing.T) {
	m := newTestModel(t, newHarness())
	press(m, tea.KeyDown)
	press(m, tea.KeyDown)
	assert.Equal(t, "/a/Downloads", currentPath(m))

	typeText(m, "wid")
	assert.Equal(t, []int{1}, m.filtered)
	assert.Equal(t, 0, m.selected)
	assert.Equal(t, "/a/Projects/widget", currentPath(m))
}

func TestEnterSelects(t *testing.T) {
	m := newTestModel(t, newHarness())
	press(m, tea.KeyDown)
	cmd := press(m, tea.KeyEnter)

	require.NotNil(t, cmd)
	assert.Equal(t, Result{Path: "/a/Projects/widget"}, m.Result())
	assert.Empty(t, m.View())
}

func TestEnterWithoutMatchesIsIgnored(t *testing.T) {
	m := newTestModel(t, newHarness())
	typeText(m, "zzz")
	assert.Empty(t, m.filtered)

	cmd := press(m, tea.KeyEnter)
	assert.Nil(t, cmd)
	assert.False(t, m.quitting)
	assert.Contains(t, m.View(), noMatches)
}

func TestCancel(t *testing.T) {
	for _, k := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		m := newTestModel(t, newHarness())
		cmd := press(m, k)
		require.NotNil(t, cmd)
		assert.Equal(t, Result{Cancelled: true}, m.Result())
	}
}

func TestCycleSort(t *testing.T) {
	m := newTestModel(t, newHarness())
	press(m, tea.KeyDown)

	press(m, tea.KeyCtrlS)
	assert.Equal(t, filter.SortAlphaAsc, m.mode)
	assert.Equal(t, 1, m.selected, "an empty query keeps the item order")
	assert.Equal(t, "/a/Projects/widget", currentPath(m))

	press(m, tea.KeyCtrlS)
	press(m, tea.KeyCtrlS)
	assert.Equal(t, filter.SortCreatedAsc, m.mode)

	settle(t, m, func() bool {
		for _, p := range testItems {
			if _, ok := m.sched.Date(p); !ok {
				return false
			}
		}
		return true
	})
}

func TestCycleSortKeepsSelectedPath(t *testing.T) {
	m := newTestModel(t, newHarness())
	typeText(m, "a")
	selectPath(t, m, "/a/Projects/widget")

	press(m, tea.KeyCtrlS)
	assert.Equal(t, filter.SortAlphaAsc, m.mode)
	assert.Equal(t, []int{2, 0, 1}, m.filtered)
	assert.Equal(t, 2, m.selected)
	assert.Equal(t, "/a/Projects/widget", currentPath(m))

	press(m, tea.KeyCtrlS)
	assert.Equal(t, filter.SortAlphaDesc, m.mode)
	assert.Equal(t, []int{1, 0, 2}, m.filtered)
	assert.Equal(t, 0, m.selected)
	assert.Equal(t, "/a/Projects/widget", currentPath(m))
}

func TestClearQuery(t *testing.T) {
	m := newTestModel(t, newHarness())
	typeText(m, "wid")
	press(m, tea.KeyCtrlU)
	assert.Equal(t, "", m.query.Value())
	assert.Len(t, m.filtered, 3)
}

func TestRightMovesToPreviewOnlyAtEndOfInput(t *testing.T) {
	m := newTestModel(t, newHarness())
	typeText(m, "ab")

	press(m, tea.KeyLeft)
	assert.Equal(t, FocusSearch, m.Focus())
	press(m, tea.KeyRight)
	assert.Equal(t, FocusSearch, m.Focus(), "cursor moved back to the end")

	press(m, tea.KeyRight)
	assert.Equal(t, FocusPreview, m.Focus())

	press(m, tea.KeyLeft)
	assert.Equal(t, FocusSearch, m.Focus())
}

func TestPreviewLoadsForSelection(t *testing.T) {
	m := newTestModel(t, newHarness())
	assert.True(t, m.previewLoading)
	assert.Contains(t, m.View(), loadingPreview)

	settle(t, m, func() bool { return !m.previewLoading })
	assert.Equal(t, "/a/Projects", m.previewPath)
	assert.Contains(t, m.View(), "README.md")
	assert.False(t, m.showGit())

	press(m, tea.KeyDown)
	assert.Equal(t, "/a/Projects/widget", m.previewPath)
	assert.True(t, m.previewLoading)
	settle(t, m, func() bool { return !m.previewLoading })
}

func TestPreviewAndGitNavigation(t *testing.T) {
	h := newHarness()
	h.vcs = &git.Summary{Branch: "main", Recent: []string{"init (2 days ago)"}}
	m := newTestModel(t, h)
	settle(t, m, func() bool { return !m.previewLoading })
	require.True(t, m.showGit())

	press(m, tea.KeyRight)
	require.Equal(t, FocusPreview, m.Focus())

	press(m, tea.KeyRight)
	assert.Equal(t, FocusGit, m.Focus())
	assert.Contains(t, m.View(), "Branch: main")

	press(m, tea.KeyUp)
	assert.Equal(t, FocusPreview, m.Focus(), "up at the top of git returns to preview")

	press(m, tea.KeyDown)
	assert.Equal(t, FocusGit, m.Focus(), "down at the bottom of the preview moves to git")

	press(m, tea.KeyLeft)
	assert.Equal(t, FocusSearch, m.Focus())
}

func TestPreviewUpAtTopReturnsToSearch(t *testing.T) {
	m := newTestModel(t, newHarness())
	settle(t, m, func() bool { return !m.previewLoading })

	press(m, tea.KeyRight)
	require.Equal(t, FocusPreview, m.Focus())
	press(m, tea.KeyRight)
	assert.Equal(t, FocusPreview, m.Focus(), "no git panel to move to")

	press(m, tea.KeyUp)
	assert.Equal(t, FocusSearch, m.Focus())
}

func TestGitFocusFallsBackWithoutGitPanel(t *testing.T) {
	m := newTestModel(t, newHarness())
	m.focus = FocusGit
	settle(t, m, func() bool { return !m.previewLoading })
	assert.Equal(t, FocusPreview, m.Focus())
}

func TestTagEditSave(t *testing.T) {
	h := newHarness()
	m := newTestModel(t, h)
	press(m, tea.KeyDown)

	press(m, tea.KeyCtrlT)
	require.Equal(t, FocusTagEdit, m.Focus())

	typeText(m, "infra")
	press(m, tea.KeyTab)
	assert.Equal(t, []string{"infra"}, m.editor.Tags)
	assert.Equal(t, "", m.tagInput.Value())

	typeText(m, "demo")
	press(m, tea.KeyEnter)

	assert.Equal(t, FocusPreview, m.Focus())
	assert.Nil(t, m.editor)
	assert.Equal(t, []string{"infra", "demo"}, h.sidecar["/a/Projects/widget"])
	cached, ok := m.sched.TagsFor("/a/Projects/widget")
	require.True(t, ok)
	assert.Equal(t, []string{"infra", "demo"}, cached)
	assert.Equal(t, "/a/Projects/widget", currentPath(m))
}

func TestTagEditReselectsUnderTagQuery(t *testing.T) {
	h := newHarness()
	m := newTestModel(t, h)
	typeText(m, "#infra")
	settle(t, m, func() bool {
		_, ok := m.sched.TagsFor("/a/Downloads")
		return ok
	})
	assert.Empty(t, m.filtered)

	// Clearing the query and tagging an item makes it match once the query
	// comes back.
	press(m, tea.KeyCtrlU)
	press(m, tea.KeyDown)
	press(m, tea.KeyDown)
	press(m, tea.KeyCtrlT)
	typeText(m, "infra")
	press(m, tea.KeyEnter)
	require.Equal(t, FocusPreview, m.Focus())

	press(m, tea.KeyLeft)
	typeText(m, "#infra")
	assert.Equal(t, []int{2}, m.filtered)
	assert.Equal(t, "/a/Downloads", currentPath(m))
}

func TestTagEditSaveFailure(t *testing.T) {
	h := newHarness()
	h.saveErr = errors.New("disk full")
	m := newTestModel(t, h)

	press(m, tea.KeyCtrlT)
	typeText(m, "x")
	press(m, tea.KeyEnter)

	assert.Equal(t, FocusTagEdit, m.Focus())
	require.Error(t, m.err)
	cached, _ := m.sched.TagsFor("/a/Projects")
	assert.Empty(t, cached, "cache must not change when the save fails")
	assert.Contains(t, m.helpLine(), "disk full")
}

func TestTagEditUsesCachedTags(t *testing.T) {
	h := newHarness()
	h.cached["/a/Projects"] = []string{"infra"}
	m := newTestModel(t, h)
	settle(t, m, func() bool {
		_, ok := m.sched.TagsFor("/a/Projects")
		return ok
	})

	press(m, tea.KeyCtrlT)
	require.Equal(t, FocusTagEdit, m.Focus())
	assert.Equal(t, []string{"infra"}, m.editor.Tags)
	assert.Zero(t, h.readCalls)
}

func TestTagEditReadsSidecarOnCacheMiss(t *testing.T) {
	h := newHarness()
	h.tagGate = make(chan struct{})
	t.Cleanup(func() { close(h.tagGate) })
	h.sidecar["/a/Projects"] = []string{"work"}
	m := newTestModel(t, h)

	press(m, tea.KeyCtrlT)
	require.Equal(t, FocusTagEdit, m.Focus())
	assert.Equal(t, []string{"work"}, m.editor.Tags)
	assert.Equal(t, 1, h.readCalls)
}

func TestTagEditRejectsUnstorableTag(t *testing.T) {
	h := newHarness()
	m := newTestModel(t, h)

	press(m, tea.KeyCtrlT)
	typeText(m, "c#")
	press(m, tea.KeyEnter)

	assert.Equal(t, FocusTagEdit, m.Focus(), "the editor stays open")
	assert.Equal(t, "c#", m.tagInput.Value())
	assert.Empty(t, m.editor.Tags)
	assert.ErrorIs(t, m.err, tags.ErrInvalidTag)
	assert.Contains(t, m.helpLine(), "not allowed")
	_, saved := h.sidecar["/a/Projects"]
	assert.False(t, saved)

	press(m, tea.KeyBackspace)
	typeText(m, "sharp")
	press(m, tea.KeyEnter)
	assert.Equal(t, FocusPreview, m.Focus())
	assert.Equal(t, []string{"csharp"}, h.sidecar["/a/Projects"])
}

func TestTagEditBackspacePops(t *testing.T) {
	h := newHarness()
	h.sidecar["/a/Projects"] = []string{"a", "b"}
	h.cached["/a/Projects"] = []string{"a", "b"}
	m := newTestModel(t, h)

	press(m, tea.KeyCtrlT)
	require.Equal(t, []string{"a", "b"}, m.editor.Tags)

	typeText(m, "c")
	press(m, tea.KeyBackspace)
	assert.Equal(t, []string{"a", "b"}, m.editor.Tags, "backspace edits the input first")

	press(m, tea.KeyBackspace)
	assert.Equal(t, []string{"a"}, m.editor.Tags)
}

func TestTagEditAutocompletesFromCache(t *testing.T) {
	h := newHarness()
	h.cached["/a/Downloads"] = []string{"infrastructure", "org/acme"}
	m := newTestModel(t, h)
	settle(t, m, func() bool {
		_, ok := m.sched.TagsFor("/a/Downloads")
		return ok
	})

	press(m, tea.KeyCtrlT)
	assert.Equal(t, []string{"infrastructure"}, m.editor.Suggestions())
	typeText(m, "inf")
	assert.Contains(t, m.View(), "infrastructure")
	press(m, tea.KeyEnter)

	assert.Equal(t, []string{"infrastructure"}, h.sidecar["/a/Projects"])
}

func TestCopyPath(t *testing.T) {
	h := newHarness()
	m := newTestModel(t, h)
	press(m, tea.KeyCtrlY)
	assert.Equal(t, []string{"/a/Projects"}, h.copied)
	assert.Contains(t, m.helpLine(), "Copied /a/Projects")

	h.copyErr = errors.New("no clipboard")
	press(m, tea.KeyCtrlY)
	assert.Contains(t, m.helpLine(), "no clipboard")
}

func TestMouse(t *testing.T) {
	m := newTestModel(t, newHarness())
	in := m.lay.Results

	m.Update(tea.MouseMsg{X: in.X + 1, Y: in.Y + 1, Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	assert.Equal(t, 1, m.selected)
	m.Update(tea.MouseMsg{X: in.X + 1, Y: in.Y + 1, Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	assert.Equal(t, 0, m.selected)

	p := m.lay.Preview
	m.Update(tea.MouseMsg{X: p.X + 2, Y: p.Y + 2, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	assert.Equal(t, FocusPreview, m.Focus())

	m.Update(tea.MouseMsg{X: in.X + 1, Y: in.Y, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	assert.Equal(t, FocusSearch, m.Focus())
}

func TestViewListsItems(t *testing.T) {
	m := newTestModel(t, newHarness())
	settle(t, m, func() bool {
		_, ok := m.sched.Date("/a/Downloads")
		return ok
	})

	view := m.View()
	lines := strings.Split(view, "\n")
	assert.Len(t, lines, 30)
	assert.Contains(t, view, focusMarker+"Results 3/3")
	assert.Contains(t, view, "widget")
	assert.Contains(t, view, "Downloads")
	assert.Contains(t, view, "2024-01-02 03:04")
	assert.Contains(t, view, "Keys")
	assert.Contains(t, view, "Ctrl+S Match")
}

func TestHelpItems(t *testing.T) {
	h := newHarness()
	h.vcs = &git.Summary{Branch: "main"}
	m := newTestModel(t, h)
	settle(t, m, func() bool { return !m.previewLoading })

	labels := func() []string {
		var out []string
		for _, it := range m.helpItems() {
			out = append(out, it.key+" "+it.label)
		}
		return out
	}

	assert.Equal(t, []string{"Right preview", "Ctrl+T tag", "Ctrl+S Match", "Ctrl+U clear"}, labels())

	press(m, tea.KeyRight)
	assert.Equal(t, []string{"Left search", "Right git", "Ctrl+T tag", "Up search", "Down git"}, labels())

	press(m, tea.KeyRight)
	assert.Equal(t, []string{"Left search", "Right preview", "Ctrl+T tag", "Up preview"}, labels())

	press(m, tea.KeyCtrlT)
	assert.Equal(t, []string{"Tab add", "Enter done"}, labels())
	typeText(m, "x")
	assert.Equal(t, []string{"Tab add", "Enter add+done"}, labels())
}
