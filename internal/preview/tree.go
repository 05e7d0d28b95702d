package preview

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

// walker renders a directory tree, hiding entries ignored by the root's
// .gitignore or matched by an exclude glob.
type walker struct {
	root      string
	depth     int
	exclude   []string
	gitIgnore gitignore.GitIgnore
	out       strings.Builder
}

// Tree renders root as an indented tree, directories first, down to depth
// levels.
func Tree(root string, depth int, exclude []string) (string, error) {
	if depth <= 0 {
		depth = DefaultTreeDepth
	}
	w := &walker{
		root:      root,
		depth:     depth,
		exclude:   validPatterns(exclude),
		gitIgnore: loadIgnoreFile(filepath.Join(root, ".gitignore"), root),
	}
	w.out.WriteString(filepath.Base(root))
	w.out.WriteString("/\n")
	if err := w.walk(root, "", 1); err != nil {
		return "", err
	}
	return strings.TrimRight(w.out.String(), "\n"), nil
}

func (w *walker) walk(dir, prefix string, level int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if level == 1 {
			return fmt.Errorf("read %s: %w", dir, err)
		}
		return nil
	}

	kept := entries[:0]
	for _, e := range entries {
		if !w.hidden(filepath.Join(dir, e.Name()), e.IsDir()) {
			kept = append(kept, e)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].IsDir() != kept[j].IsDir() {
			return kept[i].IsDir()
		}
		return strings.ToLower(kept[i].Name()) < strings.ToLower(kept[j].Name())
	})

	for i, e := range kept {
		last := i == len(kept)-1
		branch, indent := "├── ", "│   "
		if last {
			branch, indent = "└── ", "    "
		}
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		w.out.WriteString(prefix + branch + name + "\n")
		if e.IsDir() && level < w.depth {
			if err := w.walk(filepath.Join(dir, e.Name()), prefix+indent, level+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *walker) hidden(path string, isDir bool) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range w.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	if w.gitIgnore != nil {
		if m := w.gitIgnore.Relative(rel, isDir); m != nil && m.Ignore() {
			return true
		}
	}
	return false
}

func validPatterns(patterns []string) []string {
	var out []string
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p != "" && doublestar.ValidatePattern(p) {
			out = append(out, p)
		}
	}
	return out
}

func loadIgnoreFile(path, base string) gitignore.GitIgnore {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	return gitignore.New(f, base, nil)
}
