package header

import (
	"fmt"
	"sync"
)

// Tracker counts image-load events for one layout mount and flips the store's
// loaded flag to true once every image has reported. It never sets it back.
type Tracker struct {
	mu        sync.Mutex
	store     *Store
	total     int
	seen      map[int]struct{}
	published bool
}

// NewTracker starts a fresh mount: loaded is reset to false, or published as true
// straight away when there are no images to wait for. The empty case is treated
// as complete, not as a 0/0 ratio that never reaches 1, so an empty marquee
// still clears the loading overlay.
func NewTracker(store *Store, total int) *Tracker {
	t := &Tracker{
		store: store,
		total: total,
		seen:  make(map[int]struct{}, total),
	}
	if total <= 0 {
		t.published = true
		store.SetLoaded(true)
	} else {
		store.SetLoaded(false)
	}
	return t
}

// Report records that image index finished loading. Repeated indexes are ignored.
func (t *Tracker) Report(index int) error {
	t.mu.Lock()
	if index < 0 || index >= t.total {
		t.mu.Unlock()
		return fmt.Errorf("header: image index %d out of range [0,%d)", index, t.total)
	}
	t.seen[index] = struct{}{}
	publish := !t.published && len(t.seen) == t.total
	if publish {
		t.published = true
	}
	t.mu.Unlock()

	if publish {
		t.store.SetLoaded(true)
	}
	return nil
}

func (t *Tracker) Progress() (loaded, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen), t.total
}

func (t *Tracker) Loaded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.published
}
