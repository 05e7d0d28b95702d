// Package items builds the fixed list of candidate paths for a session.
package items

import (
	"os"
	"path/filepath"
	"sort"
)

// Build returns static items first, then each index folder followed by its
// immediate child directories in sorted order. Duplicates keep their first
// position. Unreadable folders contribute only themselves.
func Build(indexFolders, staticItems []string) []string {
	candidates := append([]string(nil), staticItems...)
	for _, folder := range indexFolders {
		candidates = append(candidates, folder)
		candidates = append(candidates, childDirs(folder)...)
	}

	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, p := range candidates {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// childDirs lists the directories directly inside folder. Symlinks to
// directories count as directories.
func childDirs(folder string) []string {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil
	}
	var dirs []string
	for _, e := range entries {
		path := filepath.Join(folder, e.Name())
		if isDir(path) {
			dirs = append(dirs, path)
		}
	}
	sort.Strings(dirs)
	return dirs
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
