// Package header holds the state of the site header for one page view: the node
// shown in the header slot and whether the layout's images have finished loading.
//
// A page view has exactly one active writer of the content at a time. Views take
// the writer role with Mount; a later Mount supersedes earlier writers, whose
// writes are then rejected. Unmounting never restores previous content.
package header

import (
	"errors"
	"fmt"
	"sync"

	g "maragu.dev/gomponents"
)

var ErrInactiveWriter = errors.New("header: writer is no longer the active view")

// Snapshot is an immutable view of the store.
type Snapshot struct {
	Content g.Node
	Loaded  bool
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

type Store struct {
	mu          sync.Mutex
	content     g.Node
	loaded      bool
	generation  int
	subscribers []subscriber
	nextID      int
}

func NewStore() *Store {
	return &Store{nextID: 1}
}

func (s *Store) Read() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Content: s.content, Loaded: s.loaded}
}

func (s *Store) SetContent(content g.Node) {
	s.mu.Lock()
	s.content = content
	snap, subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, snap)
}

func (s *Store) SetLoaded(loaded bool) {
	s.mu.Lock()
	s.loaded = loaded
	snap, subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, snap)
}

// Subscribe registers fn to receive a snapshot after every write. Subscribers run
// synchronously in registration order on the writing goroutine.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subscribers {
				if sub.id == id {
					s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

// Mount makes view the active content writer.
func (s *Store) Mount(view string) *Writer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return &Writer{store: s, view: view, generation: s.generation}
}

func (s *Store) snapshotLocked() (Snapshot, []subscriber) {
	subs := make([]subscriber, len(s.subscribers))
	copy(subs, s.subscribers)
	return Snapshot{Content: s.content, Loaded: s.loaded}, subs
}

func notify(subs []subscriber, snap Snapshot) {
	for _, sub := range subs {
		sub.fn(snap)
	}
}

// Writer is a view's handle on the header content.
type Writer struct {
	store      *Store
	view       string
	generation int
}

func (w *Writer) Active() bool {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	return w.generation == w.store.generation
}

// SetContent replaces the header content if w is still the active writer.
func (w *Writer) SetContent(content g.Node) error {
	w.store.mu.Lock()
	if w.generation != w.store.generation {
		w.store.mu.Unlock()
		return fmt.Errorf("%w (%s)", ErrInactiveWriter, w.view)
	}
	w.store.content = content
	snap, subs := w.store.snapshotLocked()
	w.store.mu.Unlock()

	notify(subs, snap)
	return nil
}

// Follow re-renders the content with render whenever the loaded flag changes, the
// way a view whose header depends on the loaded state keeps it current. The
// returned func stops following.
func (w *Writer) Follow(render func(loaded bool) g.Node) (stop func()) {
	last := w.store.Read().Loaded
	_ = w.SetContent(render(last))

	var mu sync.Mutex
	return w.store.Subscribe(func(snap Snapshot) {
		mu.Lock()
		if snap.Loaded == last {
			mu.Unlock()
			return
		}
		last = snap.Loaded
		mu.Unlock()
		_ = w.SetContent(render(snap.Loaded))
	})
}
