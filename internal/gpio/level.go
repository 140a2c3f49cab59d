package gpio

import "sync"

// levelFeed forwards a line's level to a handler. Every notification re-reads
// the line under one lock, so the handler always ends with the level of the
// most recent read, whatever order edge events and the initial read race in.
type levelFeed struct {
	mu   sync.Mutex
	read func() (int, error)
	set  func(bool)
}

func newLevelFeed(set func(bool)) *levelFeed {
	if set == nil {
		set = func(bool) {}
	}
	return &levelFeed{set: set}
}

// bind attaches the line reader and delivers the current level.
func (f *levelFeed) bind(read func() (int, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.read = read
	v, err := read()
	if err != nil {
		return err
	}
	f.set(v == 1)
	return nil
}

// edge handles an edge event. Events before bind are dropped since bind reads
// the line afterwards. If the line cannot be read, the edge direction is used.
func (f *levelFeed) edge(rising bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.read == nil {
		return
	}
	v, err := f.read()
	if err != nil {
		f.set(rising)
		return
	}
	f.set(v == 1)
}
