package menu

import (
	"context"
	"errors"
	"sync"
)

// FallbackError is recorded when a fetch failure carries no message.
const FallbackError = "Failed to load menu"

// Source loads the caller's menu from the backend.
type Source interface {
	FetchMenu(ctx context.Context) ([]Node, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]Node, error)

func (f SourceFunc) FetchMenu(ctx context.Context) ([]Node, error) {
	return f(ctx)
}

// Directory holds the last fetched menu list.
//
// It is safe for concurrent use. A Clear that lands while a Fetch is in flight
// wins: the late fetch result is discarded.
type Directory struct {
	source Source

	mu         sync.RWMutex
	nodes      []Node
	loading    bool
	err        string
	generation uint64
}

// NewDirectory returns an empty Directory reading from source.
func NewDirectory(source Source) *Directory {
	return &Directory{source: source}
}

// Fetch loads the menu and replaces the held list.
//
// Fetch never fails. On error it empties the list, records the message (see
// Err) and returns an empty slice so the shell can still render.
func (d *Directory) Fetch(ctx context.Context) []Node {
	d.mu.Lock()
	d.loading = true
	d.err = ""
	gen := d.generation
	d.mu.Unlock()

	var (
		nodes []Node
		err   error
	)
	if d.source == nil {
		err = errors.New(FallbackError)
	} else {
		nodes, err = d.source.FetchMenu(ctx)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loading = false
	if gen != d.generation {
		return []Node{}
	}
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = FallbackError
		}
		d.err = msg
		d.nodes = nil
		return []Node{}
	}
	d.nodes = cloneList(nodes)
	return cloneList(nodes)
}

// Clear empties the list and forgets the last error.
func (d *Directory) Clear() {
	d.mu.Lock()
	d.nodes = nil
	d.err = ""
	d.generation++
	d.mu.Unlock()
}

// Nodes returns a copy of the list as delivered, unsorted.
func (d *Directory) Nodes() []Node {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return cloneList(d.nodes)
}

// SortedTree returns a freshly sorted copy of the held list.
func (d *Directory) SortedTree() []Node {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return SortTree(d.nodes)
}

// AllowedPaths returns the navigable paths of the held list.
func (d *Directory) AllowedPaths() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return AllowedPaths(d.nodes)
}

// IsPathAllowed reports whether the menu admits path. With no menu loaded every
// path is allowed.
func (d *Directory) IsPathAllowed(path string) bool {
	return PathAllowed(d.AllowedPaths(), path)
}

// Lookup resolves the menu entry for path.
func (d *Directory) Lookup(path string) (Node, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Find(d.nodes, path)
}

// Loading reports whether a fetch is in flight.
func (d *Directory) Loading() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loading
}

// Err returns the message of the last failed fetch, or "".
func (d *Directory) Err() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.err
}

func cloneList(nodes []Node) []Node {
	if nodes == nil {
		return []Node{}
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = cloneNode(n)
		if n.Children != nil {
			out[i].Children = cloneList(n.Children)
		}
	}
	return out
}
