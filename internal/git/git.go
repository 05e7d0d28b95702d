// Package git reads repository state for the preview panel and for retag.
package git

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/navgator/navgator/internal/logging"
)

var gitLog = logging.ForComponent(logging.CompGit)

// MaxSectionLines caps each section of a Summary.
const MaxSectionLines = 200

// Section headings rendered by Summary.
const (
	HeadingBranch    = "Branch: "
	HeadingRecent    = "Recent commits"
	HeadingStaged    = "Staged changes"
	HeadingUnstaged  = "Unstaged changes"
	HeadingUntracked = "Untracked"
)

// run executes git against dir with colour disabled and returns stdout with
// trailing whitespace removed.
func run(dir string, args ...string) (string, error) {
	full := append([]string{"-C", dir, "-c", "color.ui=never"}, args...)
	cmd := exec.Command("git", full...)
	cmd.Env = append(os.Environ(), "NO_COLOR=1")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return strings.TrimRight(string(output), " \t\r\n"), nil
}

// IsGitRepo checks if the given directory is inside a git work tree
func IsGitRepo(dir string) bool {
	out, err := run(dir, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// RepoRoot returns the root directory of the git repository containing dir
func RepoRoot(dir string) (string, error) {
	out, err := run(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not a git repository: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// CurrentBranch returns the checked out branch name for the repository at dir
func CurrentBranch(dir string) (string, error) {
	out, err := run(dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// RemoteURL returns the URL of the named remote.
func RemoteURL(dir, remote string) (string, error) {
	out, err := run(dir, "remote", "get-url", remote)
	if err != nil {
		return "", fmt.Errorf("no remote %q: %w", remote, err)
	}
	return strings.TrimSpace(out), nil
}

// RemoteOrg returns the owner segment of the origin remote URL.
func RemoteOrg(dir string) (string, error) {
	url, err := RemoteURL(dir, "origin")
	if err != nil {
		return "", err
	}
	owner := ParseRemoteOwner(url)
	if owner == "" {
		return "", fmt.Errorf("cannot find owner in remote %q", url)
	}
	return owner, nil
}

// ParseRemoteOwner extracts the owner from remote URLs such as
// git@github.com:owner/repo.git, https://github.com/owner/repo and
// ssh://git@host/owner/repo.git.
func ParseRemoteOwner(url string) string {
	url = strings.TrimSpace(url)
	url = strings.TrimSuffix(url, "/")
	url = strings.TrimSuffix(url, ".git")
	if i := strings.Index(url, "://"); i >= 0 {
		url = url[i+3:]
		slash := strings.IndexByte(url, '/')
		if slash < 0 {
			return ""
		}
		url = url[slash+1:]
	} else if colon := strings.IndexByte(url, ':'); colon >= 0 {
		url = url[colon+1:]
	} else {
		return ""
	}
	parts := strings.Split(strings.Trim(url, "/"), "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2]
}

// Summary is the repository state shown in the git panel.
type Summary struct {
	Branch    string
	Recent    []string
	Staged    []string
	Unstaged  []string
	Untracked []string
}

// Section is one headed block of a Summary.
type Section struct {
	Heading string
	Lines   []string
}

// ErrNotRepo is returned by Status for paths outside a work tree.
var ErrNotRepo = errors.New("not inside a git work tree")

// Status collects the summary for path, or for its parent when path is not a
// directory. It returns ErrNotRepo outside a work tree. When the commit log
// cannot be read, for example in a repository without commits, no summary is
// produced.
func Status(path string) (*Summary, error) {
	dir := path
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		dir = filepath.Dir(path)
	}
	if !IsGitRepo(dir) {
		return nil, ErrNotRepo
	}

	s := &Summary{}
	if out, err := run(dir, "status", "-sb"); err == nil {
		first, _, _ := strings.Cut(out, "\n")
		s.Branch = strings.TrimSpace(strings.TrimPrefix(first, "## "))
	}

	logOut, err := run(dir, "log", "-3", "--pretty=format:%s (%cr)")
	if err != nil {
		gitLog.Debug("log_failed", slog.String("dir", dir), slog.String("error", err.Error()))
		return nil, err
	}
	s.Recent = lines(logOut)

	if out, err := run(dir, "diff", "--stat", "--cached"); err == nil {
		s.Staged = lines(out)
	}
	if out, err := run(dir, "diff", "--stat"); err == nil {
		s.Unstaged = lines(out)
	}
	if out, err := run(dir, "ls-files", "--others", "--exclude-standard"); err == nil {
		s.Untracked = lines(out)
	}

	if s.Empty() {
		return nil, nil
	}
	return s, nil
}

// Empty reports whether the summary has nothing to show.
func (s *Summary) Empty() bool {
	return s == nil || (s.Branch == "" && len(s.Recent) == 0 && len(s.Staged) == 0 &&
		len(s.Unstaged) == 0 && len(s.Untracked) == 0)
}

// Sections returns the non-empty blocks in display order. The branch block
// carries the branch name in its heading and has no lines.
func (s *Summary) Sections() []Section {
	if s == nil {
		return nil
	}
	var out []Section
	if s.Branch != "" {
		out = append(out, Section{Heading: HeadingBranch + s.Branch})
	}
	add := func(heading string, body []string) {
		if len(body) > 0 {
			out = append(out, Section{Heading: heading, Lines: body})
		}
	}
	add(HeadingRecent, s.Recent)
	add(HeadingStaged, s.Staged)
	add(HeadingUnstaged, s.Unstaged)
	add(HeadingUntracked, s.Untracked)
	return out
}

// Text renders the summary as plain text, sections separated by blank lines.
func (s *Summary) Text() string {
	var blocks []string
	for _, sec := range s.Sections() {
		block := sec.Heading
		if len(sec.Lines) > 0 {
			block += "\n" + strings.Join(sec.Lines, "\n")
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n")
}

func lines(out string) []string {
	if strings.TrimSpace(out) == "" {
		return nil
	}
	split := strings.Split(out, "\n")
	if len(split) > MaxSectionLines {
		split = split[:MaxSectionLines]
	}
	return split
}
