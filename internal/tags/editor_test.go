package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditorCommitAutocompletes(t *testing.T) {
	e := NewEditor("/p", []string{"existing"}, []string{"infrastructure", "Infra", "demo"})

	tag, err := e.Commit("  inf ")
	require.NoError(t, err)
	assert.Equal(t, "Infra", tag)
	assert.Equal(t, []string{"existing", "Infra"}, e.Tags)
}

func TestEditorCommitKeepsUnknownText(t *testing.T) {
	e := NewEditor("/p", nil, []string{"demo"})
	tag, err := e.Commit("brand new")
	require.NoError(t, err)
	assert.Equal(t, "brand new", tag)
	assert.Equal(t, []string{"brand new"}, e.Tags)
}

func TestEditorCommitNoDuplicates(t *testing.T) {
	e := NewEditor("/p", []string{"demo"}, []string{"demo"})
	e.Commit("de")
	e.Commit("demo")
	assert.Equal(t, []string{"demo"}, e.Tags)

	// Equality is case-sensitive when nothing completes.
	e2 := NewEditor("/p", []string{"Go"}, nil)
	e2.Commit("go")
	assert.Equal(t, []string{"Go", "go"}, e2.Tags)
}

func TestEditorCommitBlankIsNoop(t *testing.T) {
	e := NewEditor("/p", []string{"a"}, []string{"b"})
	tag, err := e.Commit("   ")
	require.NoError(t, err)
	assert.Equal(t, "", tag)
	assert.Equal(t, []string{"a"}, e.Tags)
}

func TestEditorCommitRejectsUnstorableTags(t *testing.T) {
	e := NewEditor("/p", []string{"infra"}, nil)
	for _, in := range []string{"c#", `say "hi"`} {
		tag, err := e.Commit(in)
		assert.ErrorIs(t, err, ErrInvalidTag, in)
		assert.Equal(t, "", tag)
	}
	assert.Equal(t, []string{"infra"}, e.Tags)
}

func TestEditorPop(t *testing.T) {
	e := NewEditor("/p", []string{"a", "b"}, nil)
	e.Pop()
	assert.Equal(t, []string{"a"}, e.Tags)
	e.Pop()
	e.Pop()
	assert.Empty(t, e.Tags)
}

func TestEditorDoesNotAliasInput(t *testing.T) {
	current := []string{"a"}
	e := NewEditor("/p", current, nil)
	e.Commit("b")
	assert.Equal(t, []string{"a"}, current)
}

func TestSuggestions(t *testing.T) {
	cache := map[string][]string{
		"/a": {"zeta", "org/acme", "alpha"},
		"/b": {"alpha", "lang/Go"},
		"/c": nil,
	}
	assert.Equal(t, []string{"alpha", "lang/Go", "zeta"}, Suggestions(cache))
}
