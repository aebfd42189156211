//go:build windows

package watcher

import (
	"path/filepath"
	"unsafe"

	"github.com/lumipallolabs/fsview/internal/logging"
	"golang.org/x/sys/windows"
)

const (
	notifyFilter = windows.FILE_NOTIFY_CHANGE_FILE_NAME | windows.FILE_NOTIFY_CHANGE_DIR_NAME

	fileActionRemoved        = 2
	fileActionRenamedOldName = 4
)

// rdcwBackend uses ReadDirectoryChangesW on the root directory handle
type rdcwBackend struct {
	root   string
	handle windows.Handle
}

func newBackend() (backend, error) { return &rdcwBackend{}, nil }

func (b *rdcwBackend) add(root string) error {
	name, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return err
	}
	h, err := windows.CreateFile(name,
		windows.FILE_LIST_DIRECTORY,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_BACKUP_SEMANTICS,
		0)
	if err != nil {
		return err
	}
	b.root, b.handle = root, h
	return nil
}

func (b *rdcwBackend) run(done <-chan struct{}, removed func(string)) {
	if b.handle == 0 {
		<-done
		return
	}
	buf := make([]byte, 64*1024)
	for {
		var n uint32
		err := windows.ReadDirectoryChanges(b.handle, &buf[0], uint32(len(buf)), true, notifyFilter, &n, nil, 0)
		select {
		case <-done:
			return
		default:
		}
		if err != nil {
			logging.Debug.Error("watcher stopped", "root", b.root, "err", err)
			<-done
			return
		}
		b.decode(buf[:n], removed)
	}
}

// decode walks a FILE_NOTIFY_INFORMATION chain
func (b *rdcwBackend) decode(buf []byte, removed func(string)) {
	for len(buf) >= 12 {
		next := *(*uint32)(unsafe.Pointer(&buf[0]))
		action := *(*uint32)(unsafe.Pointer(&buf[4]))
		size := int(*(*uint32)(unsafe.Pointer(&buf[8])))

		if len(buf) >= 12+size && (action == fileActionRemoved || action == fileActionRenamedOldName) {
			name := unsafe.Slice((*uint16)(unsafe.Pointer(&buf[12])), size/2)
			removed(filepath.Join(b.root, windows.UTF16ToString(name)))
		}
		if next == 0 {
			return
		}
		buf = buf[next:]
	}
}

// wake closes the handle so a blocked ReadDirectoryChanges returns
func (b *rdcwBackend) wake() {
	if b.handle != 0 {
		windows.CloseHandle(b.handle)
	}
}

func (b *rdcwBackend) close() error { return nil }
