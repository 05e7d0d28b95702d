// Package config discovers and merges navgator's TOML configuration.
//
// Every existing file among the candidate locations is read. Path lists are
// concatenated in discovery order without duplicates; for every other
// setting the first file that defines it wins.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	dark "github.com/thiagokokada/dark-mode-go"

	"github.com/navgator/navgator/internal/logging"
)

var configLog = logging.ForComponent(logging.CompConfig)

// ErrNoConfig is returned when none of the candidate files exists.
var ErrNoConfig = errors.New("no navgator config found. Create one in ~/.config/navgator/config.toml (or set $NAVGATOR_CONFIG)")

// Defaults applied after merging.
const (
	DefaultTheme        = "dark"
	DefaultMaxLines     = 200
	DefaultTreeDepth    = 2
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "json"
	DefaultLogSizeMB    = 10
	DefaultLogBackups   = 5
	DefaultLogRetention = 10
	DefaultRingBufferMB = 2
)

// DefaultExclude hides these directories in the built-in preview tree when
// no file sets [preview] exclude.
var DefaultExclude = []string{"**/.git", "**/node_modules"}

// File mirrors one config.toml.
type File struct {
	Theme   string          `toml:"theme"`
	Paths   PathSettings    `toml:"paths"`
	Preview PreviewSettings `toml:"preview"`
	Enrich  EnrichSettings  `toml:"enrich"`
	Logs    LogSettings     `toml:"logs"`
}

// PathSettings lists the item sources.
type PathSettings struct {
	// IndexFolders are listed together with their child directories
	IndexFolders []string `toml:"index_folders"`
	// StaticItems are listed as they are, before the folders
	StaticItems []string `toml:"static_items"`
}

// PreviewSettings configures the preview panel.
type PreviewSettings struct {
	// MaxLines caps the directory listing (default: 200)
	MaxLines int `toml:"max_lines"`
	// TreeDepth is the depth of the built-in tree (default: 2)
	TreeDepth int `toml:"tree_depth"`
	// Exclude holds doublestar globs hidden by the built-in tree
	Exclude []string `toml:"exclude"`
	// DisableErd always uses the built-in tree
	DisableErd bool `toml:"disable_erd"`
}

// EnrichSettings tunes background fetching.
type EnrichSettings struct {
	// BulkRate limits bulk sweeps to this many fetches per second (0 = no limit)
	BulkRate float64 `toml:"bulk_rate"`
}

// LogSettings configures the debug log.
type LogSettings struct {
	// Dir enables logging into this directory even without NAVGATOR_DEBUG
	Dir           string `toml:"dir"`
	Level         string `toml:"level"`
	Format        string `toml:"format"`
	MaxSizeMB     int    `toml:"max_size_mb"`
	Backups       int    `toml:"backups"`
	RetentionDays int    `toml:"retention_days"`
	Compress      bool   `toml:"compress"`
	RingBufferMB  int    `toml:"ring_buffer_mb"`
}

// Config is the merged configuration.
type Config struct {
	// Sources are the files that were read, in order
	Sources      []string
	Theme        string
	IndexFolders []string
	StaticItems  []string
	Preview      PreviewSettings
	Enrich       EnrichSettings
	Logs         LogSettings
}

// Env holds the environment used for discovery.
type Env struct {
	Home          string
	XDGConfigHome string
	XDGStateHome  string
	Override      string
	Cwd           string
}

// EnvFromOS reads the discovery environment of the current process.
func EnvFromOS() (Env, error) {
	home := os.Getenv("HOME")
	if home == "" {
		return Env{}, errors.New("HOME is not set")
	}
	cwd, _ := os.Getwd()
	return Env{
		Home:          home,
		XDGConfigHome: os.Getenv("XDG_CONFIG_HOME"),
		XDGStateHome:  os.Getenv("XDG_STATE_HOME"),
		Override:      strings.TrimSpace(os.Getenv("NAVGATOR_CONFIG")),
		Cwd:           cwd,
	}, nil
}

// CandidatePaths returns the config locations in precedence order.
func CandidatePaths(env Env) []string {
	var paths []string
	if env.Override != "" {
		paths = append(paths, env.Override)
	}
	paths = append(paths, "/etc/navgator/config.toml")
	xdg := env.XDGConfigHome
	if xdg == "" {
		xdg = filepath.Join(env.Home, ".config")
	}
	paths = append(paths,
		filepath.Join(xdg, "navgator", "config.toml"),
		filepath.Join(env.Home, ".config", "navgator", "config.toml"),
		filepath.Join(env.Home, ".navgator.toml"),
	)
	if env.Cwd != "" {
		paths = append(paths,
			filepath.Join(env.Cwd, ".navgator.toml"),
			filepath.Join(env.Cwd, ".navgator", "config.toml"),
		)
	}
	return dedupe(paths)
}

// DefaultPath is where `navgator config init` writes.
func DefaultPath(env Env) string {
	xdg := env.XDGConfigHome
	if xdg == "" {
		xdg = filepath.Join(env.Home, ".config")
	}
	return filepath.Join(xdg, "navgator", "config.toml")
}

// StateDir is the directory for logs and dumps.
func StateDir(env Env) string {
	if env.XDGStateHome != "" {
		return filepath.Join(env.XDGStateHome, "navgator")
	}
	return filepath.Join(env.Home, ".local", "state", "navgator")
}

// Load discovers and merges the config for env.
func Load(env Env) (*Config, error) {
	return LoadFrom(CandidatePaths(env), env.Home)
}

// LoadFrom merges the existing files among paths.
func LoadFrom(paths []string, home string) (*Config, error) {
	cfg := &Config{}
	var (
		seenIndex  = make(map[string]struct{})
		seenStatic = make(map[string]struct{})
		defined    = make(map[string]bool)
	)

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		var f File
		md, err := toml.DecodeFile(path, &f)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			configLog.Warn("config_unknown_keys", slog.String("path", path), slog.Any("keys", undecoded))
		}
		cfg.Sources = append(cfg.Sources, path)

		base := filepath.Dir(path)
		cfg.IndexFolders = mergePaths(cfg.IndexFolders, f.Paths.IndexFolders, base, home, seenIndex)
		cfg.StaticItems = mergePaths(cfg.StaticItems, f.Paths.StaticItems, base, home, seenStatic)
		cfg.mergeScalars(&f, md, defined)
	}

	if len(cfg.Sources) == 0 {
		return nil, ErrNoConfig
	}
	cfg.applyDefaults(defined)
	configLog.Debug("config_loaded",
		slog.Any("sources", cfg.Sources),
		slog.Int("index_folders", len(cfg.IndexFolders)),
		slog.Int("static_items", len(cfg.StaticItems)))
	return cfg, nil
}

// mergeScalars copies every key f defines that no earlier file defined.
func (c *Config) mergeScalars(f *File, md toml.MetaData, defined map[string]bool) {
	take := func(key ...string) bool {
		name := strings.Join(key, ".")
		if defined[name] || !md.IsDefined(key...) {
			return false
		}
		defined[name] = true
		return true
	}

	if take("theme") {
		c.Theme = f.Theme
	}
	if take("preview", "max_lines") {
		c.Preview.MaxLines = f.Preview.MaxLines
	}
	if take("preview", "tree_depth") {
		c.Preview.TreeDepth = f.Preview.TreeDepth
	}
	if take("preview", "exclude") {
		c.Preview.Exclude = f.Preview.Exclude
	}
	if take("preview", "disable_erd") {
		c.Preview.DisableErd = f.Preview.DisableErd
	}
	if take("enrich", "bulk_rate") {
		c.Enrich.BulkRate = f.Enrich.BulkRate
	}
	if take("logs", "dir") {
		c.Logs.Dir = f.Logs.Dir
	}
	if take("logs", "level") {
		c.Logs.Level = f.Logs.Level
	}
	if take("logs", "format") {
		c.Logs.Format = f.Logs.Format
	}
	if take("logs", "max_size_mb") {
		c.Logs.MaxSizeMB = f.Logs.MaxSizeMB
	}
	if take("logs", "backups") {
		c.Logs.Backups = f.Logs.Backups
	}
	if take("logs", "retention_days") {
		c.Logs.RetentionDays = f.Logs.RetentionDays
	}
	if take("logs", "compress") {
		c.Logs.Compress = f.Logs.Compress
	}
	if take("logs", "ring_buffer_mb") {
		c.Logs.RingBufferMB = f.Logs.RingBufferMB
	}
}

func (c *Config) applyDefaults(defined map[string]bool) {
	switch c.Theme {
	case "dark", "light", "system":
	default:
		c.Theme = DefaultTheme
	}
	if c.Preview.MaxLines <= 0 {
		c.Preview.MaxLines = DefaultMaxLines
	}
	if c.Preview.TreeDepth <= 0 {
		c.Preview.TreeDepth = DefaultTreeDepth
	}
	if !defined["preview.exclude"] {
		c.Preview.Exclude = append([]string(nil), DefaultExclude...)
	}
	if c.Enrich.BulkRate < 0 {
		c.Enrich.BulkRate = 0
	}
	if c.Logs.Level == "" {
		c.Logs.Level = DefaultLogLevel
	}
	if c.Logs.Format == "" {
		c.Logs.Format = DefaultLogFormat
	}
	if c.Logs.MaxSizeMB <= 0 {
		c.Logs.MaxSizeMB = DefaultLogSizeMB
	}
	if c.Logs.Backups <= 0 {
		c.Logs.Backups = DefaultLogBackups
	}
	if c.Logs.RetentionDays <= 0 {
		c.Logs.RetentionDays = DefaultLogRetention
	}
	if !defined["logs.compress"] {
		c.Logs.Compress = true
	}
	if c.Logs.RingBufferMB <= 0 {
		c.Logs.RingBufferMB = DefaultRingBufferMB
	}
}

// ResolveTheme resolves the configured theme to "dark" or "light".
// If theme is "system", detects the OS dark mode setting.
// Falls back to "dark" on detection failure.
func (c *Config) ResolveTheme() string {
	if c.Theme != "system" {
		return c.Theme
	}
	isDark, err := dark.IsDarkMode()
	if err != nil {
		return DefaultTheme
	}
	if isDark {
		return "dark"
	}
	return "light"
}

// LogConfig builds the logging setup. Logging is enabled by debug or by an
// explicit [logs] dir.
func (c *Config) LogConfig(env Env, debug bool) logging.Config {
	dir := c.Logs.Dir
	if dir != "" {
		if p, ok := expand(dir, env.Home); ok {
			dir = p
		}
	} else {
		dir = StateDir(env)
	}
	return logging.Config{
		LogDir:         dir,
		Level:          c.Logs.Level,
		Format:         c.Logs.Format,
		MaxSizeMB:      c.Logs.MaxSizeMB,
		MaxBackups:     c.Logs.Backups,
		MaxAgeDays:     c.Logs.RetentionDays,
		Compress:       c.Logs.Compress,
		RingBufferSize: c.Logs.RingBufferMB * 1024 * 1024,
		Enabled:        debug || c.Logs.Dir != "",
	}
}

func mergePaths(target, raw []string, base, home string, seen map[string]struct{}) []string {
	for _, r := range raw {
		path, ok := NormalizePath(r, base, home)
		if !ok {
			continue
		}
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		target = append(target, path)
	}
	return target
}

// NormalizePath expands a configured path: surrounding space is trimmed, a
// leading ~/ and every $HOME become home, and relative paths are resolved
// against base. Paths that do not exist are rejected.
func NormalizePath(raw, base, home string) (string, bool) {
	value, ok := expand(raw, home)
	if !ok {
		return "", false
	}
	if !filepath.IsAbs(value) {
		value = filepath.Join(base, value)
	}
	if _, err := os.Stat(value); err != nil {
		return "", false
	}
	return value, true
}

func expand(raw, home string) (string, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", false
	}
	if strings.HasPrefix(value, "~/") {
		value = home + value[1:]
	}
	value = strings.ReplaceAll(value, "$HOME", home)
	return value, true
}

func dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := paths[:0]
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
