//go:build !darwin && !windows && !linux

package watcher

// noopBackend never reports anything
type noopBackend struct{}

func newBackend() (backend, error) { return noopBackend{}, nil }

func (noopBackend) add(string) error { return nil }

func (noopBackend) run(done <-chan struct{}, _ func(string)) { <-done }

func (noopBackend) wake() {}

func (noopBackend) close() error { return nil }
