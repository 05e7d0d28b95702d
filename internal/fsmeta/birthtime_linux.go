//go:build linux

package fsmeta

import (
	"os"

	"golang.org/x/sys/unix"
)

// birthTime asks statx for the creation time. Filesystems that do not record
// it leave STATX_BTIME out of the returned mask.
func birthTime(path string, _ os.FileInfo) (int64, bool) {
	var stx unix.Statx_t
	if err := unix.Statx(unix.AT_FDCWD, path, 0, unix.STATX_BTIME, &stx); err != nil {
		return 0, false
	}
	if stx.Mask&unix.STATX_BTIME == 0 {
		return 0, false
	}
	return stx.Btime.Sec, true
}
