// Package retag adds derived tags (organisation, primary language) to the
// sidecars of the git repositories among the navigable items.
package retag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/navgator/navgator/internal/git"
	"github.com/navgator/navgator/internal/logging"
	"github.com/navgator/navgator/internal/tags"
)

var retagLog = logging.ForComponent(logging.CompRetag)

// Kind selects which derived tag a run maintains.
type Kind string

const (
	KindOrg  Kind = "org"
	KindLang Kind = "lang"
)

// Prefix is the tag prefix owned by the kind.
func (k Kind) Prefix() string {
	return string(k) + "/"
}

// ParseKind validates a kind name from the command line.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindOrg, KindLang:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown retag kind %q (want org or lang)", s)
}

// Runner runs an external command in dir and returns its stdout.
type Runner interface {
	Output(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Output(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.Output()
}

// Options tunes a run. Zero values select the defaults.
type Options struct {
	// DryRun reports the changes without writing any sidecar.
	DryRun bool
	// Workers bounds concurrent repositories (default 4).
	Workers int
	// Runner runs gh; defaults to os/exec.
	Runner Runner
	// Progress receives a progress bar when non-nil.
	Progress io.Writer
	// RepoRoot and RemoteOrg default to the git package helpers.
	RepoRoot  func(dir string) (string, error)
	RemoteOrg func(dir string) (string, error)
}

func (o *Options) defaults() {
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.Runner == nil {
		o.Runner = execRunner{}
	}
	if o.RepoRoot == nil {
		o.RepoRoot = git.RepoRoot
	}
	if o.RemoteOrg == nil {
		o.RemoteOrg = git.RemoteOrg
	}
}

// Change is one sidecar update.
type Change struct {
	Dir    string
	Tag    string
	Before []string
	After  []string
}

// Report summarises a run.
type Report struct {
	Scanned int
	Updated int
	Changes []Change
	Failed  map[string]error
}

// String matches the one-line summary printed after a run.
func (r Report) String() string {
	return fmt.Sprintf("Scanned %d repos, updated %d files.", r.Scanned, r.Updated)
}

// ErrNoTag means a repository has nothing to tag for the kind, such as a
// personal repository for org or a repository without a detected language.
var ErrNoTag = errors.New("no tag for repository")

// Run derives the kind's tag for every distinct repository root among items
// and merges it into the root's sidecar.
func Run(ctx context.Context, kind Kind, items []string, opts Options) (Report, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return Report{}, err
	}
	opts.defaults()

	roots := repoRoots(items, opts.RepoRoot)
	report := Report{Scanned: len(roots), Failed: map[string]error{}}

	var bar *progressbar.ProgressBar
	if opts.Progress != nil {
		bar = progressbar.NewOptions(len(roots),
			progressbar.OptionSetWriter(opts.Progress),
			progressbar.OptionSetDescription(fmt.Sprintf("Tagging %s...", kind)),
			progressbar.OptionSetWidth(50),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "█",
				SaucerHead:    "█",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(opts.Progress)
			}),
		)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for _, root := range roots {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			change, err := retagRepo(gctx, kind, root, opts)
			if bar != nil {
				bar.Add(1)
			}

			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, ErrNoTag):
				retagLog.Debug("retag_skipped", slog.String("dir", root), slog.String("kind", string(kind)))
			case err != nil:
				report.Failed[root] = err
				retagLog.Warn("retag_failed", slog.String("dir", root), slog.String("error", err.Error()))
			case change != nil:
				report.Updated++
				report.Changes = append(report.Changes, *change)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, fmt.Errorf("retag %s interrupted: %w", kind, err)
	}

	sort.Slice(report.Changes, func(i, j int) bool {
		return report.Changes[i].Dir < report.Changes[j].Dir
	})
	retagLog.Info("retag_finished",
		slog.String("kind", string(kind)),
		slog.Int("scanned", report.Scanned),
		slog.Int("updated", report.Updated),
		slog.Int("failed", len(report.Failed)),
		slog.Bool("dry_run", opts.DryRun))
	return report, nil
}

// repoRoots maps items to their repository roots, dropping items outside a
// work tree and duplicate roots. Order follows items.
func repoRoots(items []string, rootOf func(string) (string, error)) []string {
	seen := make(map[string]struct{}, len(items))
	var roots []string
	for _, item := range items {
		root, err := rootOf(item)
		if err != nil || root == "" {
			continue
		}
		if _, ok := seen[root]; ok {
			continue
		}
		seen[root] = struct{}{}
		roots = append(roots, root)
	}
	return roots
}

// retagRepo returns the change applied to root, or nil when its sidecar
// already carries the tag.
func retagRepo(ctx context.Context, kind Kind, root string, opts Options) (*Change, error) {
	var (
		tag string
		err error
	)
	switch kind {
	case KindOrg:
		tag, err = orgTag(ctx, root, opts)
	case KindLang:
		tag, err = langTag(ctx, root, opts.Runner)
	}
	if err != nil {
		return nil, err
	}

	dropPrefix := ""
	if kind == KindLang {
		dropPrefix = kind.Prefix()
	}
	before := tags.Read(root)
	after, changed := tags.Merge(before, tag, dropPrefix)
	if !changed {
		return nil, nil
	}
	if !opts.DryRun {
		if err := tags.Write(root, after); err != nil {
			return nil, err
		}
	}
	return &Change{Dir: root, Tag: tag, Before: before, After: after}, nil
}

type ghOwner struct {
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
	IsInOrganization bool   `json:"isInOrganization"`
	URL              string `json:"url"`
}

// orgTag asks gh whether the repository belongs to an organisation. When gh
// is unavailable the owner of the origin remote is used instead.
func orgTag(ctx context.Context, root string, opts Options) (string, error) {
	out, err := opts.Runner.Output(ctx, root, "gh", "repo", "view", "--json", "owner,isInOrganization,url")
	if err != nil {
		org, rerr := opts.RemoteOrg(root)
		if rerr != nil {
			return "", ErrNoTag
		}
		return KindOrg.Prefix() + org, nil
	}

	var info ghOwner
	if err := json.Unmarshal(out, &info); err != nil {
		return "", fmt.Errorf("failed to parse gh output for %s: %w", root, err)
	}
	if !info.IsInOrganization {
		return "", ErrNoTag
	}
	org := info.Owner.Login
	if org == "" {
		org = orgFromURL(info.URL)
	}
	if org == "" {
		return "", ErrNoTag
	}
	return KindOrg.Prefix() + org, nil
}

// orgFromURL returns the first path segment of a repository URL with at
// least owner and name segments.
func orgFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	var parts []string
	for _, p := range strings.Split(u.Path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return ""
	}
	return parts[0]
}

type ghLanguage struct {
	PrimaryLanguage *struct {
		Name string `json:"name"`
	} `json:"primaryLanguage"`
}

func langTag(ctx context.Context, root string, runner Runner) (string, error) {
	out, err := runner.Output(ctx, root, "gh", "repo", "view", "--json", "primaryLanguage")
	if err != nil {
		return "", ErrNoTag
	}
	var info ghLanguage
	if err := json.Unmarshal(out, &info); err != nil {
		return "", fmt.Errorf("failed to parse gh output for %s: %w", root, err)
	}
	if info.PrimaryLanguage == nil {
		return "", ErrNoTag
	}
	slug := Slugify(info.PrimaryLanguage.Name)
	if slug == "" {
		return "", ErrNoTag
	}
	return KindLang.Prefix() + slug, nil
}

// Slugify lowercases s, keeps letters and digits, turns runs of spaces,
// dashes, underscores and dots into one dash and drops everything else.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case r == ' ' || r == '-' || r == '_' || r == '.':
			if b.Len() > 0 && !dash {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
