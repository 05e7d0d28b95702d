package ui

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/navgator/navgator/internal/match"
)

// tagMore replaces the pills that do not fit a list row.
const tagMore = "[...]"

// marqueeStepMs is how long each one-cell shift of an overflowing tag row
// lasts.
const marqueeStepMs = 200

// TagColor derives a stable color for tag from its FNV-1a hash.
func TagColor(tag string) lipgloss.Color {
	h := fnv.New32a()
	_, _ = h.Write([]byte(tag))
	hue := float64(h.Sum32() % 360)
	r, g, b := hslToRGB(hue, 0.6, 0.55)
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r, g, b))
}

func hslToRGB(hue, sat, light float64) (uint8, uint8, uint8) {
	return colorful.Hsl(hue, sat, light).Clamped().RGB255()
}

// segment is one styled run of a tag row: a pill or the space between two.
type segment struct {
	text  []rune
	style lipgloss.Style
}

// tagSegments builds the pill runs of list. Properties missing from a pill's
// own style are taken from base.
func tagSegments(list []string, base lipgloss.Style) []segment {
	segs := make([]segment, 0, len(list)*2)
	for i, tag := range list {
		if i > 0 {
			segs = append(segs, segment{text: []rune(" "), style: base})
		}
		style := lipgloss.NewStyle().Foreground(TagColor(tag)).Italic(true).Inherit(base)
		segs = append(segs, segment{text: []rune("[" + tag + "]"), style: style})
	}
	return segs
}

func segmentsLen(segs []segment) int {
	n := 0
	for _, s := range segs {
		n += len(s.text)
	}
	return n
}

// sliceSegments renders the cells [offset, offset+width) of segs and returns
// the number of cells drawn.
func sliceSegments(segs []segment, offset, width int) (string, int) {
	if width <= 0 {
		return "", 0
	}
	var b strings.Builder
	skipped, remaining := 0, width
	for _, s := range segs {
		if remaining == 0 {
			break
		}
		n := len(s.text)
		if skipped+n <= offset {
			skipped += n
			continue
		}
		start := max(offset-skipped, 0)
		take := min(remaining, n-start)
		b.WriteString(s.style.Render(string(s.text[start : start+take])))
		remaining -= take
		skipped += n
	}
	return b.String(), width - remaining
}

// orderTags puts tags hit by the query's '#' tokens first. The second value
// reports whether any tag matched.
func orderTags(list []string, tokens match.Tokens) ([]string, bool) {
	if len(tokens.Tag) == 0 {
		return list, false
	}
	var hit, rest []string
	for _, tag := range list {
		if match.TagMatchesQuery(tokens, tag) {
			hit = append(hit, tag)
		} else {
			rest = append(rest, tag)
		}
	}
	return append(hit, rest...), len(hit) > 0
}

// RenderTagPills renders the tag pills of a list row into at most width
// cells. Rows that overflow scroll with elapsedMs while no tag query is
// active, otherwise they are cut and end in "[...]" when that fits.
func RenderTagPills(list []string, tokens match.Tokens, width int, elapsedMs int64, base lipgloss.Style) (string, int) {
	if len(list) == 0 || width <= 0 {
		return "", 0
	}
	ordered, matched := orderTags(list, tokens)
	segs := tagSegments(ordered, base)
	total := segmentsLen(segs)

	if total > width && !matched && len(tokens.Tag) == 0 {
		maxOffset := total - width
		offset := int(elapsedMs/marqueeStepMs) % (maxOffset + 1)
		return sliceSegments(segs, offset, width)
	}

	if total <= width {
		return sliceSegments(segs, 0, total)
	}
	if width < len(tagMore) {
		return sliceSegments(segs, 0, width)
	}
	room := width - len(tagMore) - 1
	out, used := sliceSegments(segs, 0, max(room, 0))
	if used > 0 {
		out += base.Render(" ")
		used++
	}
	return out + TagMoreStyle.Inherit(base).Render(tagMore), used + len(tagMore)
}

// WrapTagPills lays all pills out over as many lines of width cells as
// needed. A separator space never starts a line.
func WrapTagPills(list []string, width int) []string {
	if len(list) == 0 || width <= 0 {
		return nil
	}
	var lines []string
	var cur strings.Builder
	curLen := 0
	for _, s := range tagSegments(list, lipgloss.NewStyle()) {
		off := 0
		for off < len(s.text) {
			if curLen == 0 && s.text[0] == ' ' {
				off++
				continue
			}
			take := min(len(s.text)-off, max(width-curLen, 1))
			cur.WriteString(s.style.Render(string(s.text[off : off+take])))
			curLen += take
			off += take
			if curLen >= width {
				lines = append(lines, cur.String())
				cur.Reset()
				curLen = 0
			}
		}
	}
	if curLen > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}
