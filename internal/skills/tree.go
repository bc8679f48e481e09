package skills

import (
	"slices"
	"sort"
	"strings"
)

// NewRoot returns an empty tree root.
func NewRoot() *Node {
	return &Node{Name: "/", Path: []string{}, Children: map[string]*Node{}}
}

// Insert attaches rec to the node at rec.CategoryPath, creating missing nodes.
func Insert(root *Node, rec Record) {
	node := root
	for _, part := range rec.CategoryPath {
		child, ok := node.Children[part]
		if !ok {
			path := append(slices.Clone(node.Path), part)
			child = &Node{Name: part, Path: path, Children: map[string]*Node{}}
			node.Children[part] = child
		}
		node = child
	}
	node.Skills = append(node.Skills, rec)
}

// BuildTree inserts every record into a fresh tree.
func BuildTree(records []Record) *Node {
	root := NewRoot()
	for _, rec := range records {
		Insert(root, rec)
	}
	return root
}

// Find walks path from root. A missing segment is reported with ok == false.
func Find(root *Node, path []string) (*Node, bool) {
	node := root
	for _, part := range path {
		child, ok := node.Children[part]
		if !ok {
			return nil, false
		}
		node = child
	}
	return node, true
}

// ParsePath splits a slash-separated category path, dropping empty segments.
func ParsePath(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, "/") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ChildNames returns the names of n's children in sorted order.
func (n *Node) ChildNames() []string {
	names := make([]string, 0, len(n.Children))
	for name := range n.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Walk visits n and its descendants depth-first, children in name order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, name := range n.ChildNames() {
		n.Children[name].Walk(fn)
	}
}
