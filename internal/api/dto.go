package api

import (
	"github.com/starford/quiet/internal/index"
	"github.com/starford/quiet/internal/postservice"
)

// PostMeta is a lightweight item in a list response (aliased from the domain layer).
type PostMeta = postservice.PostMeta

// PostDetail is the full post response type (aliased from the domain layer).
type PostDetail = postservice.PostDetail

// PageResponse wraps one page of the post list.
type PageResponse = postservice.PageView

// CategoryResponse is the content of a category page.
type CategoryResponse = postservice.CategoryView

// TreeNode is one category in the tree response.
type TreeNode struct {
	Name     string     `json:"name" example:"go" validate:"required"`
	URL      string     `json:"url" example:"/category/tech/go" validate:"required"`
	Posts    int        `json:"posts" example:"3"`
	Children []TreeNode `json:"children"`
}

func treeNode(n index.CategoryNode) TreeNode {
	out := TreeNode{Name: n.Name, URL: n.URL, Posts: n.Posts, Children: make([]TreeNode, 0, len(n.Children))}
	for _, c := range n.Children {
		out.Children = append(out.Children, treeNode(c))
	}
	return out
}
