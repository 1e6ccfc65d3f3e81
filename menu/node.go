package menu

import (
	"sort"
	"strings"
)

// Node is one entry of the navigation tree as delivered by the backend.
//
// A nil or empty RoutePath marks a grouping node that is not itself navigable.
type Node struct {
	ID        int64   `json:"menuId"`
	Label     string  `json:"menuName"`
	RoutePath *string `json:"url"`
	Icon      string  `json:"icon,omitempty"`
	Sequence  int     `json:"sequence"`
	Children  []Node  `json:"children"`
}

// Path returns the route path without its leading slash and whether the node
// is navigable.
func (n Node) Path() (string, bool) {
	if n.RoutePath == nil || *n.RoutePath == "" {
		return "", false
	}
	return NormalizePath(*n.RoutePath), true
}

// NormalizePath strips one leading slash.
func NormalizePath(p string) string {
	return strings.TrimPrefix(p, "/")
}

// Route is a convenience for building nodes in code and tests.
func Route(p string) *string {
	return &p
}

// SortTree returns a deep copy of nodes with each level ordered ascending by
// Sequence. Siblings with equal Sequence keep their input order. Children of
// the copy are never nil.
func SortTree(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = cloneNode(n)
		out[i].Children = SortTree(n.Children)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Sequence < out[j].Sequence
	})
	return out
}

func cloneNode(n Node) Node {
	out := n
	if n.RoutePath != nil {
		p := *n.RoutePath
		out.RoutePath = &p
	}
	return out
}

// AllowedPaths walks nodes depth-first and collects every navigable route
// path, leading slash stripped, first occurrence kept.
func AllowedPaths(nodes []Node) []string {
	var paths []string
	seen := make(map[string]struct{})
	var visit func([]Node)
	visit = func(items []Node) {
		for _, item := range items {
			if p, ok := item.Path(); ok {
				if _, dup := seen[p]; !dup {
					seen[p] = struct{}{}
					paths = append(paths, p)
				}
			}
			if len(item.Children) > 0 {
				visit(item.Children)
			}
		}
	}
	visit(nodes)
	return paths
}

// PathAllowed applies the menu guard rule to an allowed-path list.
//
// An empty list allows everything. "" and "dashboard" are aliases for the
// landing route and are allowed iff either is listed. Any other path must match
// an allowed path exactly or sit strictly below one.
func PathAllowed(allowed []string, path string) bool {
	if len(allowed) == 0 {
		return true
	}
	normalized := NormalizePath(path)

	if normalized == "" || normalized == "dashboard" {
		for _, p := range allowed {
			if p == "" || p == "dashboard" {
				return true
			}
		}
		return false
	}

	for _, p := range allowed {
		if p == normalized || strings.HasPrefix(normalized, p+"/") {
			return true
		}
	}
	return false
}

// Entry is a flattened view of a navigable or grouping node.
type Entry struct {
	Depth int
	Node  Node
}

// Flatten lists the sorted tree depth-first with each node's nesting depth.
func Flatten(nodes []Node) []Entry {
	var out []Entry
	var visit func([]Node, int)
	visit = func(items []Node, depth int) {
		for _, n := range items {
			out = append(out, Entry{Depth: depth, Node: n})
			visit(n.Children, depth+1)
		}
	}
	visit(SortTree(nodes), 0)
	return out
}

// Find returns the node whose route path best matches path: an exact match, or
// else the deepest ancestor route that contains it.
func Find(nodes []Node, path string) (Node, bool) {
	normalized := NormalizePath(path)
	var (
		best    Node
		bestLen = -1
	)
	var visit func([]Node)
	visit = func(items []Node) {
		for _, n := range items {
			if p, ok := n.Path(); ok {
				if p == normalized || (p != "" && strings.HasPrefix(normalized, p+"/")) {
					if len(p) > bestLen {
						best, bestLen = n, len(p)
					}
				}
			}
			visit(n.Children)
		}
	}
	visit(nodes)
	return best, bestLen >= 0
}
