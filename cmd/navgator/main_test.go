package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/navgator/navgator/internal/retag"
	"github.com/navgator/navgator/internal/tags"
)

func envFrom(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestColorProfile(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want termenv.Profile
	}{
		{"override truecolor", map[string]string{"NAVGATOR_COLOR": "truecolor"}, termenv.TrueColor},
		{"override 256", map[string]string{"NAVGATOR_COLOR": "256"}, termenv.ANSI256},
		{"override basic", map[string]string{"NAVGATOR_COLOR": "16"}, termenv.ANSI},
		{"override none", map[string]string{"NAVGATOR_COLOR": "none", "COLORTERM": "truecolor"}, termenv.Ascii},
		{"no color", map[string]string{"NO_COLOR": "1"}, termenv.Ascii},
		{"colorterm", map[string]string{"COLORTERM": "24bit"}, termenv.TrueColor},
		{"kitty", map[string]string{"TERM": "xterm-kitty"}, termenv.TrueColor},
		{"iterm", map[string]string{"ITERM_SESSION_ID": "w0t0p0"}, termenv.TrueColor},
		{"fallback", map[string]string{"TERM": "vt100"}, termenv.ANSI256},
		{"bad override falls through", map[string]string{"NAVGATOR_COLOR": "rainbow", "TERM": "dumb"}, termenv.ANSI256},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, colorProfile(envFrom(tt.env)))
		})
	}
}

func TestNormalizeArgs(t *testing.T) {
	fs := flag.NewFlagSet("retag", flag.ContinueOnError)
	fs.Bool("dry-run", false, "")
	fs.Int("workers", 4, "")

	got := normalizeArgs(fs, []string{"lang", "--dry-run", "--workers", "8"})
	assert.Equal(t, []string{"--dry-run", "--workers", "8", "lang"}, got)

	got = normalizeArgs(fs, []string{"org", "--workers=2", "--", "-x"})
	assert.Equal(t, []string{"--workers=2", "org", "-x"}, got)
}

func TestRunDispatch(t *testing.T) {
	assert.Equal(t, exitOK, run([]string{"version"}))
	assert.Equal(t, exitUsage, run([]string{"frobnicate"}))
	assert.Equal(t, exitUsage, run([]string{"tags"}))
	assert.Equal(t, exitUsage, run([]string{"navigate", "extra"}))
	assert.Equal(t, exitUsage, run([]string{"retag", "stars"}))
}

func TestReport(t *testing.T) {
	assert.Equal(t, exitOK, report(nil))
	assert.Equal(t, exitError, report(errors.New("boom")))
	assert.Equal(t, exitUsage, report(errUsage))
}

func TestWriteSelection(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeSelection("/home/u/Projects", "", &out))
	assert.Equal(t, "/home/u/Projects\n", out.String())

	file := filepath.Join(t.TempDir(), "selection")
	out.Reset()
	require.NoError(t, writeSelection("/home/u/Projects", file, &out))
	assert.Empty(t, out.String())
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "/home/u/Projects\n", string(data))
}

func TestAddRemoveTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, addTags([]string{"a", "b"}, []string{"b", " c ", ""}))
	assert.Equal(t, []string{"a"}, removeTags([]string{"a", "b", "b"}, []string{"b"}))
	assert.True(t, equalTags([]string{"a"}, []string{"a"}))
	assert.False(t, equalTags([]string{"a"}, []string{"a", "b"}))
}

func TestHandleTagsEditAndList(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	require.NoError(t, handleTags([]string{"add", dir, "infra", "work"}, &out))
	assert.Equal(t, []string{"infra", "work"}, tags.Read(dir))

	out.Reset()
	require.NoError(t, handleTags([]string{"add", dir, "infra"}, &out))
	assert.Equal(t, "No changes.\n", out.String())

	out.Reset()
	require.NoError(t, handleTags([]string{dir}, &out))
	assert.Equal(t, "infra\nwork\n", out.String())

	out.Reset()
	require.NoError(t, handleTags([]string{"rm", dir, "infra"}, &out))
	assert.Equal(t, []string{"work"}, tags.Read(dir))

	err := handleTags([]string{"add", filepath.Join(dir, "missing"), "x"}, &out)
	assert.ErrorContains(t, err, "not a directory")

	err = handleTags([]string{"add", dir}, &out)
	assert.ErrorIs(t, err, errUsage)

	err = handleTags([]string{"add", dir, "c#", "extra"}, &out)
	assert.ErrorIs(t, err, tags.ErrInvalidTag)
	assert.Equal(t, []string{"work"}, tags.Read(dir))
}

func TestExportTags(t *testing.T) {
	stored := map[string][]string{
		"/a": {"infra", "demo"},
		"/c": {"work"},
	}
	read := func(p string) []string { return stored[p] }
	list := []string{"/a", "/b", "/c"}

	var out bytes.Buffer
	require.NoError(t, exportTags(list, read, "yaml", &out))
	var fromYAML map[string][]string
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &fromYAML))
	assert.Equal(t, stored, fromYAML)

	out.Reset()
	require.NoError(t, exportTags(list, read, "json", &out))
	var fromJSON map[string][]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &fromJSON))
	assert.Equal(t, stored, fromJSON)

	assert.ErrorIs(t, exportTags(list, read, "xml", &out), errUsage)
}

func TestPrintRetagReport(t *testing.T) {
	rep := retag.Report{
		Scanned: 3,
		Updated: 1,
		Changes: []retag.Change{{Dir: "/r/w", Tag: "org/acme"}},
		Failed:  map[string]error{"/r/x": errors.New("bad json")},
	}

	var out bytes.Buffer
	printRetagReport(&out, rep, false)
	assert.Equal(t, "tagged /r/w: org/acme\nfailed /r/x: bad json\nScanned 3 repos, updated 1 files.\n", out.String())

	out.Reset()
	printRetagReport(&out, rep, true)
	assert.Contains(t, out.String(), "would tag /r/w: org/acme")
	assert.Contains(t, out.String(), "Scanned 3 repos, would update 1 files.")
}

func TestHandleConfigInit(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("NAVGATOR_CONFIG", "")

	var out bytes.Buffer
	require.NoError(t, handleConfig([]string{"init"}, &out))
	path := filepath.Join(home, ".config", "navgator", "config.toml")
	assert.FileExists(t, path)
	assert.Contains(t, out.String(), path)

	assert.Error(t, handleConfig([]string{"init"}, &out))

	out.Reset()
	require.NoError(t, handleConfig(nil, &out))
	assert.Contains(t, out.String(), "* "+path)

	assert.ErrorIs(t, handleConfig([]string{"edit"}, &out), errUsage)
}
