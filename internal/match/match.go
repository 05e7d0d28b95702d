// Package match implements the fuzzy matching and ranking used by the finder.
//
// A query is split into tokens. Tokens prefixed with '@' only match paths,
// tokens prefixed with '#' only match tags and bare tokens match either.
// Scores are five-part tuples compared lexicographically; lower is better.
package match

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// pathOnlyPenalty is added when a path token misses the leaf name and only
// matches somewhere in the full path.
const pathOnlyPenalty = 2

// Score ranks a single match. Fields are compared in declaration order.
type Score struct {
	Penalty int // 0 contiguous, 1 subsequence, +2 when only the full path matched
	Span    int // distance between first and last matched rune
	Gap     int // runes skipped between consecutive matched runes
	Start   int // rune offset of the first match
	Length  int // rune count of the candidate text
}

// Less reports whether s ranks strictly better than o.
func (s Score) Less(o Score) bool {
	return s.Compare(o) < 0
}

// Compare returns -1, 0 or 1 comparing s with o lexicographically.
func (s Score) Compare(o Score) int {
	pairs := [5][2]int{
		{s.Penalty, o.Penalty},
		{s.Span, o.Span},
		{s.Gap, o.Gap},
		{s.Start, o.Start},
		{s.Length, o.Length},
	}
	for _, p := range pairs {
		switch {
		case p[0] < p[1]:
			return -1
		case p[0] > p[1]:
			return 1
		}
	}
	return 0
}

// Add sums two scores component-wise, saturating instead of overflowing.
func (s Score) Add(o Score) Score {
	return Score{
		Penalty: satAdd(s.Penalty, o.Penalty),
		Span:    satAdd(s.Span, o.Span),
		Gap:     satAdd(s.Gap, o.Gap),
		Start:   satAdd(s.Start, o.Start),
		Length:  satAdd(s.Length, o.Length),
	}
}

func satAdd(a, b int) int {
	const maxInt = int(^uint(0) >> 1)
	if b > 0 && a > maxInt-b {
		return maxInt
	}
	return a + b
}

func minScore(a Score, b Score) Score {
	if b.Less(a) {
		return b
	}
	return a
}

// Tokens is a parsed query.
type Tokens struct {
	Path []string // '@' tokens
	Tag  []string // '#' tokens
	Any  []string // bare tokens
}

// ParseQuery splits query on whitespace and classifies every token.
// Tokens whose body is empty after removing the prefix are dropped.
func ParseQuery(query string) Tokens {
	var t Tokens
	for _, raw := range strings.Fields(query) {
		switch {
		case strings.HasPrefix(raw, "@"):
			if rest := raw[1:]; rest != "" {
				t.Path = append(t.Path, rest)
			}
		case strings.HasPrefix(raw, "#"):
			if rest := raw[1:]; rest != "" {
				t.Tag = append(t.Tag, rest)
			}
		default:
			t.Any = append(t.Any, raw)
		}
	}
	return t
}

// IsEmpty reports whether the query has no usable tokens.
func (t Tokens) IsEmpty() bool {
	return len(t.Path) == 0 && len(t.Tag) == 0 && len(t.Any) == 0
}

// NeedsTags reports whether tag data can change the result of this query.
func (t Tokens) NeedsTags() bool {
	return len(t.Tag) > 0 || len(t.Any) > 0
}

// LeafName returns the final segment of path, or path itself when there is none.
func LeafName(path string) string {
	trimmed := strings.TrimRight(path, string(filepath.Separator))
	if trimmed == "" {
		return path
	}
	base := filepath.Base(trimmed)
	if base == "." || base == string(filepath.Separator) {
		return path
	}
	return base
}

func queryRunes(query string) []rune {
	out := make([]rune, 0, len(query))
	for _, r := range query {
		if !unicode.IsSpace(r) {
			out = append(out, r)
		}
	}
	return out
}

func equalFold(a, b rune) bool {
	return a == b || unicode.ToLower(a) == unicode.ToLower(b)
}

// FuzzyMatch reports whether the non-space runes of query appear in text, in
// order, ignoring case. An empty query matches everything.
func FuzzyMatch(query, text string) bool {
	q := queryRunes(query)
	if len(q) == 0 {
		return true
	}
	qi := 0
	for _, r := range text {
		if equalFold(q[qi], r) {
			qi++
			if qi == len(q) {
				return true
			}
		}
	}
	return false
}

// MatchScore scores query against text. The boolean is false when the query
// does not match at all.
func MatchScore(query, text string) (Score, bool) {
	q := queryRunes(query)
	length := utf8.RuneCountInString(text)
	if len(q) == 0 {
		return Score{Length: length}, true
	}

	if start, ok := indexFold(text, query); ok {
		return Score{Span: len(q) - 1, Start: start, Length: length}, true
	}

	positions := make([]int, 0, len(q))
	qi := 0
	ti := 0
	for _, r := range text {
		if qi >= len(q) {
			break
		}
		if equalFold(q[qi], r) {
			positions = append(positions, ti)
			qi++
		}
		ti++
	}
	if qi < len(q) {
		return Score{}, false
	}

	first := positions[0]
	last := positions[len(positions)-1]
	gap := 0
	for i := 1; i < len(positions); i++ {
		gap = satAdd(gap, positions[i]-positions[i-1]-1)
	}
	return Score{Penalty: 1, Span: last - first, Gap: gap, Start: first, Length: length}, true
}

// indexFold finds needle in text case-insensitively and returns the rune
// offset of the first occurrence.
func indexFold(text, needle string) (int, bool) {
	if needle == "" {
		return 0, true
	}
	t := []rune(text)
	n := []rune(needle)
	for i := 0; i+len(n) <= len(t); i++ {
		found := true
		for j := range n {
			if !equalFold(t[i+j], n[j]) {
				found = false
				break
			}
		}
		if found {
			return i, true
		}
	}
	return 0, false
}

// MatchScoreForPath scores token against the leaf name of path first and
// falls back to the full path with an extra penalty.
func MatchScoreForPath(token, path string) (Score, bool) {
	if s, ok := MatchScore(token, LeafName(path)); ok {
		return s, true
	}
	if s, ok := MatchScore(token, path); ok {
		s.Penalty = satAdd(s.Penalty, pathOnlyPenalty)
		return s, true
	}
	return Score{}, false
}

// BestTagScore returns the best score of token across tags.
func BestTagScore(token string, tags []string) (Score, bool) {
	var best Score
	found := false
	for _, tag := range tags {
		s, ok := MatchScore(token, tag)
		if !ok {
			continue
		}
		if !found {
			best, found = s, true
			continue
		}
		best = minScore(best, s)
	}
	return best, found
}

// MatchScoreTokens computes the composite score of an item. Every token must
// match for the item to score.
func MatchScoreTokens(t Tokens, path string, tags []string) (Score, bool) {
	var total Score
	for _, token := range t.Path {
		s, ok := MatchScoreForPath(token, path)
		if !ok {
			return Score{}, false
		}
		total = total.Add(s)
	}
	for _, token := range t.Tag {
		s, ok := BestTagScore(token, tags)
		if !ok {
			return Score{}, false
		}
		total = total.Add(s)
	}
	for _, token := range t.Any {
		pathScore, pathOK := MatchScoreForPath(token, path)
		tagScore, tagOK := BestTagScore(token, tags)
		switch {
		case pathOK && tagOK:
			total = total.Add(minScore(pathScore, tagScore))
		case pathOK:
			total = total.Add(pathScore)
		case tagOK:
			total = total.Add(tagScore)
		default:
			return Score{}, false
		}
	}
	return total, true
}

func matchesPath(token, path string) bool {
	return FuzzyMatch(token, LeafName(path)) || FuzzyMatch(token, path)
}

func matchesAnyTag(token string, tags []string) bool {
	for _, tag := range tags {
		if FuzzyMatch(token, tag) {
			return true
		}
	}
	return false
}

// MatchesTokens is the boolean filter used by the non-ranking sort modes.
func MatchesTokens(t Tokens, path string, tags []string) bool {
	for _, token := range t.Path {
		if !matchesPath(token, path) {
			return false
		}
	}
	for _, token := range t.Tag {
		if !matchesAnyTag(token, tags) {
			return false
		}
	}
	for _, token := range t.Any {
		if !matchesPath(token, path) && !matchesAnyTag(token, tags) {
			return false
		}
	}
	return true
}

// TagMatchesQuery reports whether tag is hit by any of the query's '#' tokens.
func TagMatchesQuery(t Tokens, tag string) bool {
	for _, token := range t.Tag {
		if FuzzyMatch(token, tag) {
			return true
		}
	}
	return false
}
