//go:build darwin

package watcher

import (
	"time"

	"github.com/fsnotify/fsevents"
)

// fseventsBackend uses macOS FSEvents, which is recursive by itself
type fseventsBackend struct {
	stream *fsevents.EventStream
}

func newBackend() (backend, error) { return &fseventsBackend{}, nil }

func (b *fseventsBackend) add(root string) error {
	dev, err := fsevents.DeviceForPath(root)
	if err != nil {
		return err
	}
	b.stream = &fsevents.EventStream{
		Paths:   []string{root},
		Latency: 500 * time.Millisecond,
		Device:  dev,
		Flags:   fsevents.FileEvents | fsevents.WatchRoot,
	}
	b.stream.Start()
	return nil
}

func (b *fseventsBackend) run(done <-chan struct{}, removed func(string)) {
	if b.stream == nil {
		<-done
		return
	}
	for {
		select {
		case <-done:
			return
		case batch, ok := <-b.stream.Events:
			if !ok {
				return
			}
			for _, ev := range batch {
				// Move to Trash is a rename
				if ev.Flags&(fsevents.ItemRemoved|fsevents.ItemRenamed) == 0 {
					continue
				}
				path := ev.Path
				if path == "" || path[0] != '/' {
					path = "/" + path
				}
				removed(path)
			}
		}
	}
}

func (b *fseventsBackend) wake() {
	if b.stream != nil {
		b.stream.Stop()
	}
}

func (b *fseventsBackend) close() error { return nil }
