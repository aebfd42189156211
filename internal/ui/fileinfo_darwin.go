//go:build darwin

package ui

import (
	"os"
	"syscall"
	"time"
)

// getCreationTime returns the file creation time (birthtime) on macOS
func getCreationTime(info os.FileInfo) time.Time {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(stat.Birthtimespec.Sec, stat.Birthtimespec.Nsec)
	}
	return time.Time{}
}
