//go:build !linux && !darwin

package fsmeta

import "os"

func birthTime(string, os.FileInfo) (int64, bool) {
	return 0, false
}
