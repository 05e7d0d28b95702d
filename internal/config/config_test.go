package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func mkdirs(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		require.NoError(t, os.MkdirAll(p, 0o755))
	}
}

func TestCandidatePaths(t *testing.T) {
	env := Env{Home: "/h", Override: "/custom.toml", Cwd: "/work"}
	assert.Equal(t, []string{
		"/custom.toml",
		"/etc/navgator/config.toml",
		"/h/.config/navgator/config.toml",
		"/h/.navgator.toml",
		"/work/.navgator.toml",
		"/work/.navgator/config.toml",
	}, CandidatePaths(env))

	env = Env{Home: "/h", XDGConfigHome: "/xdg"}
	assert.Equal(t, []string{
		"/etc/navgator/config.toml",
		"/xdg/navgator/config.toml",
		"/h/.config/navgator/config.toml",
		"/h/.navgator.toml",
	}, CandidatePaths(env))
}

func TestStateDir(t *testing.T) {
	assert.Equal(t, "/s/navgator", StateDir(Env{Home: "/h", XDGStateHome: "/s"}))
	assert.Equal(t, "/h/.local/state/navgator", StateDir(Env{Home: "/h"}))
}

func TestNormalizePath(t *testing.T) {
	home := t.TempDir()
	base := t.TempDir()
	mkdirs(t, filepath.Join(home, "Github"), filepath.Join(base, "rel"))

	p, ok := NormalizePath("  ~/Github ", base, home)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(home, "Github"), p)

	p, ok = NormalizePath("$HOME/Github", base, home)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(home, "Github"), p)

	p, ok = NormalizePath("rel", base, home)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(base, "rel"), p)

	_, ok = NormalizePath("   ", base, home)
	assert.False(t, ok)
	_, ok = NormalizePath("~/missing", base, home)
	assert.False(t, ok)
}

func TestLoadNoConfig(t *testing.T) {
	_, err := LoadFrom([]string{filepath.Join(t.TempDir(), "none.toml")}, t.TempDir())
	assert.True(t, errors.Is(err, ErrNoConfig))
}

func TestLoadParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	writeConfig(t, path, "[paths\nindex_folders = 1")
	_, err := LoadFrom([]string{path}, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestLoadMergesFiles(t *testing.T) {
	home := t.TempDir()
	mkdirs(t, filepath.Join(home, "a"), filepath.Join(home, "b"), filepath.Join(home, "notes"))

	first := filepath.Join(home, "first.toml")
	writeConfig(t, first, `
theme = "light"
[paths]
index_folders = ["~/a", "~/gone"]
[preview]
max_lines = 50
[logs]
compress = false
`)
	second := filepath.Join(home, "sub", "second.toml")
	writeConfig(t, second, `
theme = "system"
[paths]
index_folders = ["$HOME/b", "~/a"]
static_items = ["../notes"]
[preview]
max_lines = 10
tree_depth = 3
exclude = []
[enrich]
bulk_rate = 25.5
`)

	cfg, err := LoadFrom([]string{first, filepath.Join(home, "missing.toml"), second}, home)
	require.NoError(t, err)

	assert.Equal(t, []string{first, second}, cfg.Sources)
	assert.Equal(t, "light", cfg.Theme)
	assert.Equal(t, []string{filepath.Join(home, "a"), filepath.Join(home, "b")}, cfg.IndexFolders)
	assert.Equal(t, []string{filepath.Join(home, "notes")}, cfg.StaticItems)
	assert.Equal(t, 50, cfg.Preview.MaxLines)
	assert.Equal(t, 3, cfg.Preview.TreeDepth)
	assert.Empty(t, cfg.Preview.Exclude, "an explicit empty list disables the defaults")
	assert.Equal(t, 25.5, cfg.Enrich.BulkRate)
	assert.False(t, cfg.Logs.Compress)
}

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, "theme = \"neon\"\n")

	cfg, err := LoadFrom([]string{path}, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultTheme, cfg.Theme)
	assert.Equal(t, DefaultMaxLines, cfg.Preview.MaxLines)
	assert.Equal(t, DefaultTreeDepth, cfg.Preview.TreeDepth)
	assert.Equal(t, DefaultExclude, cfg.Preview.Exclude)
	assert.Equal(t, "info", cfg.Logs.Level)
	assert.True(t, cfg.Logs.Compress)
	assert.Equal(t, "dark", cfg.ResolveTheme())
	assert.Empty(t, cfg.IndexFolders)
}

func TestLogConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, "[logs]\nlevel = \"debug\"\nring_buffer_mb = 1\n")
	cfg, err := LoadFrom([]string{path}, "/h")
	require.NoError(t, err)

	env := Env{Home: "/h"}
	lc := cfg.LogConfig(env, false)
	assert.False(t, lc.Enabled)
	assert.Equal(t, "/h/.local/state/navgator", lc.LogDir)
	assert.Equal(t, "debug", lc.Level)
	assert.Equal(t, 1024*1024, lc.RingBufferSize)
	assert.True(t, cfg.LogConfig(env, true).Enabled)

	cfg.Logs.Dir = "~/logs"
	lc = cfg.LogConfig(env, false)
	assert.True(t, lc.Enabled)
	assert.Equal(t, "/h/logs", lc.LogDir)
}

func TestWriteExample(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "cfg", "navgator", "config.toml")
	require.NoError(t, WriteExample(path))
	assert.Error(t, WriteExample(path))

	mkdirs(t, filepath.Join(home, "Github"), filepath.Join(home, "Desktop"))
	cfg, err := LoadFrom([]string{path}, home)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(home, "Github")}, cfg.IndexFolders)
	assert.Equal(t, []string{filepath.Join(home, "Desktop")}, cfg.StaticItems)
	assert.Equal(t, DefaultExclude, cfg.Preview.Exclude)
}
