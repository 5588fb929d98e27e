package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

type treeNode struct {
	name     string
	children []*treeNode
}

func (n *treeNode) findOrCreate(name string) *treeNode {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	child := &treeNode{name: name}
	n.children = append(n.children, child)
	return child
}

// PrintTree renders discovered paths to w as a directory tree
// (e.g. ["/admin", "/admin/config.php", "/backup"]).
func PrintTree(w io.Writer, paths []string) {
	if len(paths) == 0 {
		return
	}

	sort.Strings(paths)

	// Deduplicate.
	seen := make(map[string]bool, len(paths))
	unique := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.Trim(p, "/")
		if p != "" && !seen[p] {
			unique = append(unique, p)
			seen[p] = true
		}
	}

	root := &treeNode{name: "/"}
	for _, p := range unique {
		parts := strings.Split(p, "/")
		node := root
		for _, part := range parts {
			node = node.findOrCreate(part)
		}
	}

	fmt.Fprintf(w, "\n  Discovered paths:\n")
	printChildren(w, root, "  ")
}

func printChildren(w io.Writer, node *treeNode, prefix string) {
	for i, child := range node.children {
		isLast := i == len(node.children)-1
		connector := "├── "
		if isLast {
			connector = "└── "
		}
		fmt.Fprintf(w, "%s%s%s\n", prefix, connector, child.name)
		nextPrefix := prefix + "│   "
		if isLast {
			nextPrefix = prefix + "    "
		}
		printChildren(w, child, nextPrefix)
	}
}
