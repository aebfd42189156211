//go:build !darwin

package ui

import (
	"os"
	"time"
)

// getCreationTime returns zero time on platforms without a portable birthtime
func getCreationTime(info os.FileInfo) time.Time {
	return time.Time{}
}
