package main

import (
	"fmt"

	models "folio/internal/domain/models/docsystem"

	"github.com/disiqueira/gotree/v3"
)

// renderTree draws documents as directories and files as their blobs
func renderTree(root string, tree *models.TreeNode) string {
	out := gotree.New(root)
	for _, doc := range tree.Documents {
		node := out.Add(fmt.Sprintf("%s/ (%s)", doc.ID, doc.Title))
		for _, file := range doc.Files {
			node.Add(fmt.Sprintf("%s.pdf  %s [%s] views=%d", file.ID, file.Title, file.Category, file.View))
		}
	}
	return out.Print()
}
