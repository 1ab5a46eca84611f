package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/starford/quiet/internal/index"
	"github.com/starford/quiet/internal/models"
)

func TestCategoryTree(t *testing.T) {
	tree := index.CategoryNode{
		Category: models.Category{Name: "/", URL: models.CategoryPrefix},
		Posts:    2,
		Children: []index.CategoryNode{
			{
				Category: models.Category{Name: "tech"},
				Posts:    1,
				Children: []index.CategoryNode{{Category: models.Category{Name: "go"}, Posts: 3}},
			},
			{Category: models.Category{Name: "life"}},
		},
	}

	out := CategoryTree(tree)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if assert.Len(t, lines, 4) {
		assert.Equal(t, "/ (2 posts)", lines[0])
		assert.Contains(t, lines[1], "tech (1 post)")
		assert.Contains(t, lines[2], "go (3 posts)")
		assert.Contains(t, lines[3], "life (0 posts)")
	}
	assert.True(t, strings.Index(lines[2], "go") > strings.Index(lines[1], "tech"), "go is nested under tech")
}
