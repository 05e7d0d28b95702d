package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/navgator/navgator/internal/tags"
)

// handleTags dispatches `navgator tags`.
func handleTags(args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: navgator tags <path> | tags add|rm <path> <tag>... | tags export [--format yaml|json]", errUsage)
	}
	switch args[0] {
	case "add":
		if len(args) > 2 {
			if err := validateTags(args[2:]); err != nil {
				return err
			}
		}
		return handleTagsEdit(args[1:], out, addTags)
	case "rm", "remove":
		return handleTagsEdit(args[1:], out, removeTags)
	case "export":
		return handleTagsExport(args[1:], out)
	case "list", "ls":
		if len(args) != 2 {
			return fmt.Errorf("%w: navgator tags list <path>", errUsage)
		}
		return listTags(args[1], out)
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: unknown tags command %q", errUsage, args[0])
	}
	return listTags(args[0], out)
}

func listTags(path string, out io.Writer) error {
	dir, err := absPath(path)
	if err != nil {
		return err
	}
	for _, t := range tags.Read(dir) {
		fmt.Fprintln(out, t)
	}
	return nil
}

func handleTagsEdit(args []string, out io.Writer, edit func(current, given []string) []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: navgator tags add|rm <path> <tag>...", errUsage)
	}
	dir, err := absPath(args[0])
	if err != nil {
		return err
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	current := tags.Read(dir)
	updated := edit(current, args[1:])
	if equalTags(current, updated) {
		fmt.Fprintln(out, "No changes.")
		return nil
	}
	if err := tags.Write(dir, updated); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %s\n", dir, strings.Join(updated, ", "))
	return nil
}

// addTags appends the given tags that are not present, trimmed and in order.
func addTags(current, given []string) []string {
	out := append([]string(nil), current...)
	seen := make(map[string]struct{}, len(current)+len(given))
	for _, t := range current {
		seen[t] = struct{}{}
	}
	for _, t := range given {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func validateTags(given []string) error {
	for _, t := range given {
		if err := tags.Validate(strings.TrimSpace(t)); err != nil {
			return err
		}
	}
	return nil
}

// removeTags drops every occurrence of the given tags.
func removeTags(current, given []string) []string {
	drop := make(map[string]struct{}, len(given))
	for _, t := range given {
		drop[strings.TrimSpace(t)] = struct{}{}
	}
	out := make([]string, 0, len(current))
	for _, t := range current {
		if _, ok := drop[t]; !ok {
			out = append(out, t)
		}
	}
	return out
}

func equalTags(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func handleTagsExport(args []string, out io.Writer) error {
	fs := newFlagSet("tags export", "tags export [--format yaml|json]", os.Stderr)
	format := fs.String("format", "yaml", "Output format: yaml or json")
	if err := fs.Parse(normalizeArgs(fs, args)); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	sess, shutdown, err := loadSession()
	if err != nil {
		return err
	}
	defer shutdown()
	list, err := sess.items()
	if err != nil {
		return err
	}
	return exportTags(list, tags.Read, *format, out)
}

// exportTags writes a path to tags mapping of every tagged item.
func exportTags(list []string, read func(string) []string, format string, out io.Writer) error {
	all := make(map[string][]string)
	for _, path := range list {
		if t := read(path); len(t) > 0 {
			all[path] = t
		}
	}

	switch strings.ToLower(format) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(all); err != nil {
			return fmt.Errorf("failed to encode tags: %w", err)
		}
		return enc.Close()
	case "json":
		data, err := json.MarshalIndent(all, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode tags: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	return fmt.Errorf("%w: unknown format %q (want yaml or json)", errUsage, format)
}
