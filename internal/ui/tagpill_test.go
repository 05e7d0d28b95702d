package ui

import (
	"regexp"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/navgator/navgator/internal/match"
)

func TestHSLToRGB(t *testing.T) {
	tests := []struct {
		hue     float64
		r, g, b uint8
	}{
		{0, 209, 71, 71},
		{120, 71, 209, 71},
		{240, 71, 71, 209},
	}
	for _, tt := range tests {
		r, g, b := hslToRGB(tt.hue, 0.6, 0.55)
		assert.Equal(t, []uint8{tt.r, tt.g, tt.b}, []uint8{r, g, b}, "hue %v", tt.hue)
	}
}

func TestTagColorIsStable(t *testing.T) {
	hex := regexp.MustCompile(`^#[0-9a-f]{6}$`)
	for _, tag := range []string{"infra", "demo", "lang/Go", ""} {
		c := TagColor(tag)
		assert.Regexp(t, hex, string(c))
		assert.Equal(t, c, TagColor(tag))
	}
	assert.NotEqual(t, TagColor("infra"), TagColor("demo"))
}

func TestRenderTagPillsFits(t *testing.T) {
	out, n := RenderTagPills([]string{"a", "b"}, match.Tokens{}, 20, 0, lipgloss.NewStyle())
	assert.Equal(t, "[a] [b]", out)
	assert.Equal(t, 7, n)

	out, n = RenderTagPills(nil, match.Tokens{}, 20, 0, lipgloss.NewStyle())
	assert.Empty(t, out)
	assert.Zero(t, n)
}

func TestRenderTagPillsMatchingFirstWithOverflow(t *testing.T) {
	tokens := match.ParseQuery("#gam")
	out, n := RenderTagPills([]string{"alpha", "beta", "gamma"}, tokens, 12, 0, lipgloss.NewStyle())
	assert.Equal(t, "[gamma [...]", out)
	assert.Equal(t, 12, n)
}

func TestRenderTagPillsMarquee(t *testing.T) {
	list := []string{"alpha", "beta"} // "[alpha] [beta]" is 14 cells
	base := lipgloss.NewStyle()

	out, n := RenderTagPills(list, match.Tokens{}, 8, 0, base)
	assert.Equal(t, "[alpha] ", out)
	assert.Equal(t, 8, n)

	out, _ = RenderTagPills(list, match.Tokens{}, 8, 2*marqueeStepMs, base)
	assert.Equal(t, "lpha] [b", out)

	out, _ = RenderTagPills(list, match.Tokens{}, 8, 7*marqueeStepMs, base)
	assert.Equal(t, "[alpha] ", out, "wraps around after the last offset")
}

func TestWrapTagPills(t *testing.T) {
	assert.Equal(t, []string{"[alpha] ", "[beta]"}, WrapTagPills([]string{"alpha", "beta"}, 8))
	assert.Equal(t, []string{"[abc", "defg", "hij]"}, WrapTagPills([]string{"abcdefghij"}, 4))
	assert.Equal(t, []string{"[a] [b]"}, WrapTagPills([]string{"a", "b"}, 20))
	assert.Nil(t, WrapTagPills(nil, 10))
}

func TestRankSuggestions(t *testing.T) {
	names := func(in string, completion string, all, current []string) []string {
		var out []string
		for _, m := range rankSuggestions(in, completion, all, current) {
			out = append(out, m.Str)
		}
		return out
	}

	all := []string{"demo", "infra", "information"}
	assert.Equal(t, []string{"demo", "information"}, names("", "", all, []string{"infra"}))
	assert.Equal(t, []string{"infra", "information"}, names("inf", "infra", all, nil))
	assert.Empty(t, names("zzz", "zzz", all, nil))
}
