package fsmeta

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	dir := t.TempDir()
	mtime := time.Date(2024, 3, 9, 14, 5, 0, 0, time.Local)
	require.NoError(t, os.Chtimes(dir, mtime, mtime))

	meta, err := Fetch(dir)
	require.NoError(t, err)
	require.NotNil(t, meta.Modified)
	assert.Equal(t, mtime.Unix(), *meta.Modified)
	assert.Equal(t, "2024-03-09 14:05", meta.Display)
	if meta.Created != nil {
		assert.Positive(t, *meta.Created)
	}
}

func TestFetchMissing(t *testing.T) {
	_, err := Fetch(filepath.Join(t.TempDir(), "gone"))
	assert.Error(t, err)
}

func TestFetchPreEpochShowsPlaceholder(t *testing.T) {
	dir := t.TempDir()
	old := time.Unix(0, 0)
	require.NoError(t, os.Chtimes(dir, old, old))

	meta, err := Fetch(dir)
	require.NoError(t, err)
	assert.Nil(t, meta.Modified)
	assert.Equal(t, Placeholder, meta.Display)
}

func TestFormatEpoch(t *testing.T) {
	assert.Equal(t, Placeholder, FormatEpoch(nil))
	v := time.Date(2023, 12, 31, 23, 59, 0, 0, time.Local).Unix()
	assert.Equal(t, "2023-12-31 23:59", FormatEpoch(&v))
	assert.Len(t, Placeholder, len(DisplayLayout))
}
