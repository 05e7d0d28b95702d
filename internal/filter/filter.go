// Package filter turns the item list, the current query and the enrichment
// caches into the ordered list of indices shown in the result pane.
package filter

import (
	"sort"
	"strings"

	"github.com/navgator/navgator/internal/match"
)

// SortMode selects how included items are ordered.
type SortMode int

const (
	SortMatch SortMode = iota
	SortAlphaAsc
	SortAlphaDesc
	SortCreatedAsc
	SortCreatedDesc
	SortModifiedAsc
	SortModifiedDesc
)

// Next returns the mode that follows m in the Ctrl+S cycle.
func (m SortMode) Next() SortMode {
	if m >= SortModifiedDesc || m < SortMatch {
		return SortMatch
	}
	return m + 1
}

// Label is the short name shown in the help line.
func (m SortMode) Label() string {
	switch m {
	case SortAlphaAsc:
		return "A->Z"
	case SortAlphaDesc:
		return "Z->A"
	case SortCreatedAsc:
		return "Created ^"
	case SortCreatedDesc:
		return "Created v"
	case SortModifiedAsc:
		return "Modified ^"
	case SortModifiedDesc:
		return "Modified v"
	default:
		return "Match"
	}
}

// UsesTime reports whether the ordering depends on fetched timestamps.
func (m SortMode) UsesTime() bool {
	switch m {
	case SortCreatedAsc, SortCreatedDesc, SortModifiedAsc, SortModifiedDesc:
		return true
	}
	return false
}

// SortMeta holds the timestamps used by the time-based modes. Nil means the
// value is unknown or invalid.
type SortMeta struct {
	Modified *int64
	Created  *int64
}

// Evaluate returns the indices of items included by query, ordered by mode.
// An empty query returns every index in original order.
func Evaluate(items []string, query string, mode SortMode, meta map[string]SortMeta, tags map[string][]string) []int {
	tokens := match.ParseQuery(query)
	if tokens.IsEmpty() {
		all := make([]int, len(items))
		for i := range items {
			all[i] = i
		}
		return all
	}

	if mode == SortMatch {
		return byScore(items, tokens, tags)
	}

	var out []int
	for i, path := range items {
		if match.MatchesTokens(tokens, path, tags[path]) {
			out = append(out, i)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return compare(items[out[a]], items[out[b]], mode, meta) < 0
	})
	return out
}

type scored struct {
	index int
	score match.Score
}

func byScore(items []string, tokens match.Tokens, tags map[string][]string) []int {
	var hits []scored
	for i, path := range items {
		if s, ok := match.MatchScoreTokens(tokens, path, tags[path]); ok {
			hits = append(hits, scored{index: i, score: s})
		}
	}
	sort.Slice(hits, func(a, b int) bool {
		if c := hits[a].score.Compare(hits[b].score); c != 0 {
			return c < 0
		}
		return hits[a].index < hits[b].index
	})
	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.index
	}
	return out
}

func compare(left, right string, mode SortMode, meta map[string]SortMeta) int {
	switch mode {
	case SortAlphaDesc:
		return compareNames(right, left)
	case SortCreatedAsc:
		return thenNames(compareTime(left, right, meta, created), left, right)
	case SortCreatedDesc:
		return thenNames(compareTimeDesc(left, right, meta, created), left, right)
	case SortModifiedAsc:
		return thenNames(compareTime(left, right, meta, modified), left, right)
	case SortModifiedDesc:
		return thenNames(compareTimeDesc(left, right, meta, modified), left, right)
	default:
		return compareNames(left, right)
	}
}

func thenNames(c int, left, right string) int {
	if c != 0 {
		return c
	}
	return compareNames(left, right)
}

func compareNames(left, right string) int {
	if c := strings.Compare(strings.ToLower(match.LeafName(left)), strings.ToLower(match.LeafName(right))); c != 0 {
		return c
	}
	return strings.Compare(left, right)
}

func created(m SortMeta) *int64  { return m.Created }
func modified(m SortMeta) *int64 { return m.Modified }

// compareTime orders known timestamps ascending and always puts unknown ones last.
func compareTime(left, right string, meta map[string]SortMeta, field func(SortMeta) *int64) int {
	l, r := field(meta[left]), field(meta[right])
	switch {
	case l != nil && r != nil:
		return cmpInt64(*l, *r)
	case l != nil:
		return -1
	case r != nil:
		return 1
	}
	return 0
}

// compareTimeDesc orders known timestamps descending; unknown ones stay last.
func compareTimeDesc(left, right string, meta map[string]SortMeta, field func(SortMeta) *int64) int {
	l, r := field(meta[left]), field(meta[right])
	switch {
	case l != nil && r != nil:
		return cmpInt64(*r, *l)
	case l != nil:
		return -1
	case r != nil:
		return 1
	}
	return 0
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
