package objfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

func TestComparePaths(t *testing.T) {
	col := collate.New(language.Und, collate.Numeric, collate.IgnoreCase)

	tests := []struct {
		a, b string
		want int
	}{
		{"2", "10", -1},
		{"10", "file", -1},
		{"File", "file", 0},
		{"img2.png", "img10.png", -1},
		{"sub/x", "a", -1},
		{"a", "sub/x", 1},
		{"a/x", "b/a", -1},
		{"a/2", "a/10", -1},
		{"a/b/c", "a/d", -1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"|"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, comparePaths(col, tt.a, tt.b))
		})
	}
}

func TestSortItems(t *testing.T) {
	d := &Driver{}
	items := []Item{
		{Identifier: "f/file"},
		{Identifier: "f/10"},
		{Identifier: "f/2"},
		{Identifier: "f/B"},
		{Identifier: "f/b"},
	}
	d.sortItems(items, "f/")

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.Identifier
	}
	assert.Equal(t, []string{"f/2", "f/10", "f/B", "f/b", "f/file"}, ids)
}

func TestFolderID(t *testing.T) {
	assert.Equal(t, "/", folderID(""))
	assert.Equal(t, "/", folderID("//"))
	assert.Equal(t, "a/", folderID("/a"))
	assert.Equal(t, "a/b/", folderID("a//b/"))
}
