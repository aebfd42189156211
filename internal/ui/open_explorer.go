package ui

import (
	"os/exec"
	"runtime"
)

// fileManagerCommand builds the command that shows path in the platform's
// file manager
func fileManagerCommand(goos, path string) *exec.Cmd {
	switch goos {
	case "darwin":
		return exec.Command("open", path)
	case "windows":
		return exec.Command("explorer.exe", path)
	default:
		return exec.Command("xdg-open", path)
	}
}

// openInFileManager opens path without waiting for the file manager to exit
func openInFileManager(path string) error {
	return fileManagerCommand(runtime.GOOS, path).Start()
}
