// Package fsmeta reads the timestamps shown in the list and used by the
// time-based sort modes.
package fsmeta

import (
	"fmt"
	"os"
	"time"
)

// DisplayLayout is the date column format.
const DisplayLayout = "2006-01-02 15:04"

// Placeholder is shown while a date is unknown or could not be read.
const Placeholder = "---- -- -- --:--"

// Meta is the metadata of one path. Epochs are seconds; nil means unknown.
type Meta struct {
	Display  string
	Modified *int64
	Created  *int64
}

// Fetch stats path. Display is the modification time in local time, or the
// placeholder when the timestamp is not positive.
func Fetch(path string) (Meta, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Meta{}, fmt.Errorf("stat %s: %w", path, err)
	}
	meta := Meta{Modified: positive(info.ModTime().Unix())}
	meta.Display = FormatEpoch(meta.Modified)
	if sec, ok := birthTime(path, info); ok {
		meta.Created = positive(sec)
	}
	return meta, nil
}

// FormatEpoch renders an epoch in the date column format, or the
// placeholder when it is absent.
func FormatEpoch(epoch *int64) string {
	if epoch == nil {
		return Placeholder
	}
	return time.Unix(*epoch, 0).Local().Format(DisplayLayout)
}

func positive(v int64) *int64 {
	if v <= 0 {
		return nil
	}
	return &v
}
