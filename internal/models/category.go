// Package models provides the data structures used throughout spendwise.
package models

import "time"

// Category groups transactions. Categories form a single-level tree via ParentID.
type Category struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	ParentID  *string   `json:"parentId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CategoryNode is a category with its direct children.
type CategoryNode struct {
	Category
	Children []Category `json:"children"`
}

// BuildCategoryTree groups children under their parents. Categories whose
// parent is missing from the input are treated as roots. Order is preserved.
func BuildCategoryTree(categories []Category) []CategoryNode {
	known := make(map[string]bool, len(categories))
	for _, c := range categories {
		known[c.ID] = true
	}

	children := make(map[string][]Category)
	var roots []Category
	for _, c := range categories {
		if c.ParentID != nil && known[*c.ParentID] && *c.ParentID != c.ID {
			children[*c.ParentID] = append(children[*c.ParentID], c)
			continue
		}
		roots = append(roots, c)
	}

	nodes := make([]CategoryNode, 0, len(roots))
	for _, r := range roots {
		kids := children[r.ID]
		if kids == nil {
			kids = []Category{}
		}
		nodes = append(nodes, CategoryNode{Category: r, Children: kids})
	}
	return nodes
}
