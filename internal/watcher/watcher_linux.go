//go:build linux

package watcher

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"unsafe"

	"github.com/charlievieth/fastwalk"
	"github.com/lumipallolabs/fsview/internal/logging"
	"golang.org/x/sys/unix"
)

const (
	watchMask = unix.IN_DELETE | unix.IN_MOVED_FROM | unix.IN_ONLYDIR
	// pollTimeout bounds how long Stop waits for the read loop, in ms
	pollTimeout = 200
)

// inotifyBackend gives every directory under the root its own watch, since
// inotify is not recursive
type inotifyBackend struct {
	fd    int
	mu    sync.Mutex
	paths map[int32]string // watch descriptor -> directory
}

func newBackend() (backend, error) {
	fd, err := unix.InotifyInit1(unix.IN_CLOEXEC | unix.IN_NONBLOCK)
	if err != nil {
		return nil, err
	}
	return &inotifyBackend{fd: fd, paths: make(map[int32]string)}, nil
}

// add watches root and every directory below it. Directories that cannot
// be watched are skipped and the first such error is returned after the
// walk; running out of watches stops the walk.
func (b *inotifyBackend) add(root string) error {
	var (
		firstErr error
		errOnce  sync.Once
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		wd, err := unix.InotifyAddWatch(b.fd, path, watchMask)
		if err != nil {
			if errors.Is(err, unix.ENOSPC) {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			errOnce.Do(func() { firstErr = fmt.Errorf("watch %s: %w", path, err) })
			return nil
		}
		b.mu.Lock()
		b.paths[int32(wd)] = path
		b.mu.Unlock()
		return nil
	})
	if err != nil {
		return err
	}
	return firstErr
}

func (b *inotifyBackend) run(done <-chan struct{}, removed func(string)) {
	buf := make([]byte, 64*1024)
	fds := []unix.PollFd{{Fd: int32(b.fd), Events: unix.POLLIN}}

	for {
		select {
		case <-done:
			return
		default:
		}

		n, err := unix.Poll(fds, pollTimeout)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			logging.Debug.Error("watcher stopped", "err", err)
			<-done
			return
		}
		if n == 0 {
			continue
		}

		n, err = unix.Read(b.fd, buf)
		if err != nil {
			if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
				continue
			}
			logging.Debug.Error("watcher stopped", "err", err)
			<-done
			return
		}
		b.decode(buf[:n], removed)
	}
}

// decode walks a buffer of inotify_event records
func (b *inotifyBackend) decode(buf []byte, removed func(string)) {
	for len(buf) >= unix.SizeofInotifyEvent {
		raw := (*unix.InotifyEvent)(unsafe.Pointer(&buf[0]))
		end := unix.SizeofInotifyEvent + int(raw.Len)
		if end > len(buf) {
			return
		}
		name := string(bytes.TrimRight(buf[unix.SizeofInotifyEvent:end], "\x00"))
		buf = buf[end:]

		b.mu.Lock()
		dir, ok := b.paths[raw.Wd]
		if raw.Mask&unix.IN_IGNORED != 0 {
			delete(b.paths, raw.Wd)
		}
		b.mu.Unlock()

		if ok && name != "" && raw.Mask&(unix.IN_DELETE|unix.IN_MOVED_FROM) != 0 {
			removed(filepath.Join(dir, name))
		}
	}
}

// wake is a no-op: run polls with a timeout and rechecks done
func (b *inotifyBackend) wake() {}

func (b *inotifyBackend) close() error {
	return unix.Close(b.fd)
}
