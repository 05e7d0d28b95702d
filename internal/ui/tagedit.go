package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/sahilm/fuzzy"
)

// maxSuggestions caps the suggestions shown under the tag input.
const maxSuggestions = 8

// rankSuggestions orders known tags for input. The tag that a commit would
// complete to comes first, followed by fuzzy matches by score. Tags already
// on the item are skipped.
func rankSuggestions(input string, completion string, all, current []string) []fuzzy.Match {
	skip := make(map[string]struct{}, len(current))
	for _, t := range current {
		skip[t] = struct{}{}
	}

	var out []fuzzy.Match
	input = strings.TrimSpace(input)
	if input == "" {
		for i, t := range all {
			if _, ok := skip[t]; ok {
				continue
			}
			out = append(out, fuzzy.Match{Str: t, Index: i})
			if len(out) == maxSuggestions {
				break
			}
		}
		return out
	}

	for i, t := range all {
		if t != completion {
			continue
		}
		if _, ok := skip[t]; !ok {
			out = append(out, fuzzy.Match{Str: t, Index: i})
			skip[t] = struct{}{}
		}
		break
	}
	for _, mt := range fuzzy.Find(input, all) {
		if len(out) == maxSuggestions {
			break
		}
		if _, ok := skip[mt.Str]; ok {
			continue
		}
		out = append(out, mt)
	}
	return out
}

// suggestionLine renders the ranked suggestions for the tag input with the
// matched characters highlighted.
func (m *Model) suggestionLine(width int) string {
	if m.editor == nil {
		return ""
	}
	input := m.tagInput.Value()
	matches := rankSuggestions(input, m.editor.Complete(input), m.editor.Suggestions(), m.editor.Tags)
	if len(matches) == 0 {
		return ""
	}
	parts := make([]string, 0, len(matches))
	for _, mt := range matches {
		parts = append(parts, highlightMatch(mt))
	}
	return ansi.Truncate(strings.Join(parts, SuggestionStyle.Render("  ")), width, "…")
}

func highlightMatch(mt fuzzy.Match) string {
	hit := make(map[int]struct{}, len(mt.MatchedIndexes))
	for _, i := range mt.MatchedIndexes {
		hit[i] = struct{}{}
	}
	var b strings.Builder
	for i, r := range mt.Str {
		if _, ok := hit[i]; ok {
			b.WriteString(SuggestionMatchStyle.Render(string(r)))
		} else {
			b.WriteString(SuggestionStyle.Render(string(r)))
		}
	}
	return b.String()
}
