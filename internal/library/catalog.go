package library

import (
	"context"
	"sync"
	"sync/atomic"
)

// ChangeKind says how an article differs between two snapshots.
type ChangeKind int

const (
	Created ChangeKind = iota
	Updated
	Deleted
)

func (k ChangeKind) String() string {
	switch k {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Deleted:
		return "deleted"
	}
	return "unknown"
}

// Change is one article difference between two snapshots.
type Change struct {
	Kind ChangeKind
	Slug string
}

// Diff lists the articles created, updated or deleted going from old to
// cur. Either may be nil.
func Diff(old, cur *Library) []Change {
	var changes []Change
	if cur != nil {
		for _, a := range cur.articles {
			prev, ok := old.lookup(a.Slug())
			switch {
			case !ok:
				changes = append(changes, Change{Kind: Created, Slug: a.Slug()})
			case prev.File.Checksum != a.File.Checksum:
				changes = append(changes, Change{Kind: Updated, Slug: a.Slug()})
			}
		}
	}
	if old != nil {
		for _, a := range old.articles {
			if _, ok := cur.lookup(a.Slug()); !ok {
				changes = append(changes, Change{Kind: Deleted, Slug: a.Slug()})
			}
		}
	}
	return changes
}

func (l *Library) lookup(slug string) (*Article, bool) {
	if l == nil {
		return nil, false
	}
	return l.Get(slug)
}

// Catalog owns the current Library. Readers call Current; Reload builds a
// fresh snapshot and swaps it in.
type Catalog struct {
	loader  *Loader
	current atomic.Pointer[Library]
	mu      sync.Mutex // serializes reloads

	hooksMu sync.RWMutex
	hooks   []ReloadCallback
}

// NewCatalog returns a Catalog holding an empty Library.
func NewCatalog(loader *Loader) *Catalog {
	c := &Catalog{loader: loader}
	c.current.Store(New(nil))
	return c
}

// Current returns the active snapshot. It is never nil.
func (c *Catalog) Current() *Library {
	return c.current.Load()
}

// OnChange registers cb to run after every Reload that changed at least one
// article, whoever triggered it. Hooks run under the reload lock, in the
// order snapshots are swapped in, and must not call Reload.
func (c *Catalog) OnChange(cb ReloadCallback) {
	c.hooksMu.Lock()
	defer c.hooksMu.Unlock()
	c.hooks = append(c.hooks, cb)
}

// Reload rebuilds the snapshot and returns what changed. On error the
// previous snapshot stays active.
func (c *Catalog) Reload(ctx context.Context) ([]Change, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.current.Load()
	lib, err := c.loader.Load(ctx, old)
	if err != nil {
		return nil, err
	}
	c.current.Store(lib)

	changes := Diff(old, lib)
	if len(changes) > 0 {
		c.hooksMu.RLock()
		hooks := c.hooks
		c.hooksMu.RUnlock()
		for _, cb := range hooks {
			cb(lib, changes)
		}
	}
	return changes, nil
}
