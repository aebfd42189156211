//go:build !windows

package scanner

import (
	"io/fs"
	"sync"
	"syscall"
)

// platformRootInfo identifies the device the scan started on
type platformRootInfo struct {
	dev uint64
}

// inodeKey identifies a file across hard links and firmlinks
type inodeKey struct {
	dev uint64
	ino uint64
}

func getPlatformRootInfo(path string) platformRootInfo {
	var stat syscall.Stat_t
	if err := syscall.Stat(path, &stat); err != nil {
		return platformRootInfo{}
	}
	return platformRootInfo{dev: uint64(stat.Dev)}
}

// shouldSkipDir reports mount points and directories already visited
// through another name
func shouldSkipDir(path string, d fs.DirEntry, rootInfo platformRootInfo, seenItems *sync.Map) bool {
	info, err := d.Info()
	if err != nil {
		return false
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return false
	}

	if uint64(stat.Dev) != rootInfo.dev {
		return true
	}
	key := inodeKey{dev: uint64(stat.Dev), ino: uint64(stat.Ino)}
	_, seen := seenItems.LoadOrStore(key, struct{}{})
	return seen
}

// getFileSize returns allocated bytes, or -1 for a hard link already counted
func getFileSize(info fs.FileInfo, seenItems *sync.Map) int64 {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.Size()
	}

	if stat.Nlink > 1 {
		key := inodeKey{dev: uint64(stat.Dev), ino: uint64(stat.Ino)}
		if _, seen := seenItems.LoadOrStore(key, struct{}{}); seen {
			return -1
		}
	}

	// Blocks is in 512-byte units and handles sparse files
	return int64(stat.Blocks) * 512
}
