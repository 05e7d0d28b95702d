// Package preview renders the directory preview shown next to the list.
//
// The listing comes from erd (erdtree) when it is installed, using the
// arguments in ~/.erdtreerc. Without erd a built-in tree walker is used.
package preview

import (
	"bytes"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-shellwords"

	"github.com/navgator/navgator/internal/logging"
)

var previewLog = logging.ForComponent(logging.CompPreview)

const (
	// DefaultMaxLines caps the tree output.
	DefaultMaxLines = 200
	// DefaultTreeDepth is the depth of the built-in tree.
	DefaultTreeDepth = 2
)

// Headings and notices in the rendered preview.
const (
	ContentsHeading = "Contents"
	NotADirectory   = "Not a directory"
	Unavailable     = "Preview not available"
)

// DefaultErdArgs are used when ~/.erdtreerc is missing or empty, and as a
// retry when the configured arguments make erd fail.
var DefaultErdArgs = []string{
	"--dir-order=first",
	"--icons",
	"--sort=name",
	"--level=4",
	"--color", "force",
	"--layout=inverted",
	"--human",
	"--suppress-size",
}

// Options configures a Previewer.
type Options struct {
	MaxLines  int
	TreeDepth int
	// Exclude holds doublestar globs, relative to the previewed directory,
	// hidden by the built-in tree.
	Exclude []string
	// ErdConfig is the erd argument file. Empty means ~/.erdtreerc.
	ErdConfig string
	// ErdBinary is the erd executable. Empty means "erd" on PATH.
	ErdBinary string
	// StripANSI removes colour sequences from erd output.
	StripANSI bool
	// DisableErd forces the built-in tree.
	DisableErd bool
}

// Previewer produces preview text for paths. It is safe for concurrent use.
type Previewer struct {
	opts Options
}

// New returns a Previewer with defaults filled in.
func New(opts Options) *Previewer {
	if opts.MaxLines <= 0 {
		opts.MaxLines = DefaultMaxLines
	}
	if opts.TreeDepth <= 0 {
		opts.TreeDepth = DefaultTreeDepth
	}
	if opts.ErdBinary == "" {
		opts.ErdBinary = "erd"
	}
	if opts.ErdConfig == "" {
		if home, err := os.UserHomeDir(); err == nil {
			opts.ErdConfig = filepath.Join(home, ".erdtreerc")
		}
	}
	return &Previewer{opts: opts}
}

// Fetch returns the preview for path: the path, a blank line, then either
// the directory listing or a note that path is not a directory.
func (p *Previewer) Fetch(path string) string {
	var b strings.Builder
	b.WriteString(path)
	b.WriteString("\n\n")

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		b.WriteString(NotADirectory)
		return b.String()
	}

	b.WriteString(ContentsHeading)
	b.WriteByte('\n')
	listing := p.listing(path)
	if listing == "" {
		b.WriteString(Unavailable)
		return b.String()
	}
	b.WriteString(capLines(listing, p.opts.MaxLines))
	return b.String()
}

func (p *Previewer) listing(path string) string {
	if !p.opts.DisableErd {
		if out, ok := p.erd(path); ok {
			if p.opts.StripANSI {
				out = ansi.Strip(out)
			}
			return out
		}
	}
	out, err := Tree(path, p.opts.TreeDepth, p.opts.Exclude)
	if err != nil {
		previewLog.Debug("tree_failed", slog.String("path", path), slog.String("error", err.Error()))
		return ""
	}
	return out
}

func (p *Previewer) erd(path string) (string, bool) {
	if _, err := exec.LookPath(p.opts.ErdBinary); err != nil {
		return "", false
	}
	args, custom := p.erdArgs()
	if out, ok := runOutput(p.opts.ErdBinary, append(args, path)...); ok {
		return out, true
	}
	if custom {
		previewLog.Debug("erd_config_args_failed", slog.String("config", p.opts.ErdConfig))
		return runOutput(p.opts.ErdBinary, append(append([]string(nil), DefaultErdArgs...), path)...)
	}
	return "", false
}

// erdArgs returns the arguments from the erd config file, or the defaults.
// The boolean reports whether the config file supplied them.
func (p *Previewer) erdArgs() ([]string, bool) {
	if p.opts.ErdConfig != "" {
		if data, err := os.ReadFile(p.opts.ErdConfig); err == nil {
			if args := ParseErdConfig(string(data)); len(args) > 0 {
				return args, true
			}
		}
	}
	return append([]string(nil), DefaultErdArgs...), false
}

// ParseErdConfig tokenises an erdtree argument file. Each line is split with
// shell quoting rules; '#' starts a comment.
func ParseErdConfig(contents string) []string {
	var args []string
	for _, line := range strings.Split(contents, "\n") {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		words, err := shellwords.Parse(line)
		if err != nil {
			words = strings.Fields(line)
		}
		args = append(args, words...)
	}
	return args
}

// runOutput runs a command and returns its trimmed stdout. Failure, or empty
// output, reports false.
func runOutput(name string, args ...string) (string, bool) {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		return "", false
	}
	text := string(bytes.TrimRight(out, " \t\r\n"))
	return text, text != ""
}

func capLines(text string, limit int) string {
	lines := strings.Split(text, "\n")
	if len(lines) > limit {
		lines = lines[:limit]
	}
	return strings.Join(lines, "\n")
}
