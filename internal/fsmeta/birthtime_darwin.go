//go:build darwin

package fsmeta

import (
	"os"
	"syscall"
)

func birthTime(_ string, info os.FileInfo) (int64, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}
	return st.Birthtimespec.Sec, true
}
