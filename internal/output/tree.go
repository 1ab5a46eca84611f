// Package output renders index data for terminals and text-only clients.
package output

import (
	"fmt"

	"github.com/disiqueira/gotree/v3"

	"github.com/starford/quiet/internal/index"
)

// CategoryTree draws n and its descendants, one category per line with
// the number of posts filed directly in it.
func CategoryTree(n index.CategoryNode) string {
	root := gotree.New(label(n))
	addChildren(root, n)
	return root.Print()
}

func addChildren(t gotree.Tree, n index.CategoryNode) {
	for _, c := range n.Children {
		addChildren(t.Add(label(c)), c)
	}
}

func label(n index.CategoryNode) string {
	if n.Posts == 1 {
		return fmt.Sprintf("%s (1 post)", n.Name)
	}
	return fmt.Sprintf("%s (%d posts)", n.Name, n.Posts)
}
