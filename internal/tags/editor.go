package tags

import (
	"sort"
	"strings"
)

// HiddenSuggestionPrefix marks tags maintained by `navgator retag org`; they
// are never offered as completions.
const HiddenSuggestionPrefix = "org/"

// Editor is the working state of an open tag edit.
type Editor struct {
	Path        string
	Tags        []string
	suggestions []string
}

// NewEditor starts editing tags for path. suggestions is the snapshot of known
// tags used for completion; it is copied and sorted.
func NewEditor(path string, current []string, suggestions []string) *Editor {
	snap := append([]string(nil), suggestions...)
	sort.Strings(snap)
	return &Editor{
		Path:        path,
		Tags:        append([]string(nil), current...),
		suggestions: snap,
	}
}

// Suggestions returns the completion snapshot in sorted order.
func (e *Editor) Suggestions() []string {
	return e.suggestions
}

// Complete resolves typed input to the first known tag it is a
// case-insensitive prefix of, or returns the trimmed input unchanged.
func (e *Editor) Complete(input string) string {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	for _, tag := range e.suggestions {
		if strings.HasPrefix(strings.ToLower(tag), lower) {
			return tag
		}
	}
	return raw
}

// Commit adds the completed form of input to the working set. It returns the
// tag that was resolved, or "" when input was blank. A tag that fails
// Validate is not added.
func (e *Editor) Commit(input string) (string, error) {
	tag := e.Complete(input)
	if tag == "" {
		return "", nil
	}
	if err := Validate(tag); err != nil {
		return "", err
	}
	for _, existing := range e.Tags {
		if existing == tag {
			return tag, nil
		}
	}
	e.Tags = append(e.Tags, tag)
	return tag, nil
}

// Pop removes the most recently added tag.
func (e *Editor) Pop() {
	if len(e.Tags) > 0 {
		e.Tags = e.Tags[:len(e.Tags)-1]
	}
}

// Suggestions collects the distinct tags of a tag cache, sorted, skipping
// hidden ones.
func Suggestions(cache map[string][]string) []string {
	seen := make(map[string]struct{})
	for _, list := range cache {
		for _, tag := range list {
			if strings.HasPrefix(tag, HiddenSuggestionPrefix) {
				continue
			}
			seen[tag] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for tag := range seen {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
