// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package content

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestPeriod_String(t *testing.T) {
	require.Equal(t, "2023 - 2024", Period{Start: "2023", End: "2024"}.String())
	require.Equal(t, "11.2023 - Present", Period{Start: "11.2023"}.String())
}

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	require.Equal(t, "Yash Mahajan", c.Profile.DisplayName)
	require.Len(t, c.Projects, 8)
	require.Len(t, c.Experiences, 3)
	require.NotEmpty(t, c.TechStack)
	require.Len(t, c.Posts, 3)

	again, err := Default()
	require.NoError(t, err)
	require.Same(t, c, again)
}

func TestDefault_PostsNewestFirst(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	for i := 1; i < len(c.Posts); i++ {
		require.GreaterOrEqual(t, c.Posts[i-1].Metadata.CreatedAt, c.Posts[i].Metadata.CreatedAt)
	}
	for _, p := range c.Posts {
		require.NotEmpty(t, p.Slug)
		require.NotEmpty(t, p.Metadata.Description)
		require.False(t, strings.HasPrefix(p.Content, "---"))
	}
}

func TestParsePost(t *testing.T) {
	data := []byte("---\r\ntitle: Hello\r\ndescription: First\r\ncreatedAt: \"2025-01-02\"\r\nnew: true\r\n---\r\n\r\nBody text.\r\n")

	post, err := ParsePost("hello", data)
	require.NoError(t, err)
	require.Equal(t, "hello", post.Slug)
	require.Equal(t, "Hello", post.Metadata.Title)
	require.Equal(t, "2025-01-02", post.Metadata.CreatedAt)
	require.True(t, post.Metadata.New)
	require.Equal(t, "Body text.", post.Content)
}

func TestParsePost_Errors(t *testing.T) {
	_, err := ParsePost("plain", []byte("# just markdown"))
	require.True(t, errors.Is(err, ErrNoFrontMatter))

	_, err = ParsePost("open", []byte("---\ntitle: x\n"))
	require.ErrorContains(t, err, "unterminated")

	_, err = ParsePost("untitled", []byte("---\ndescription: x\n---\nbody"))
	require.ErrorContains(t, err, "no title")
}

func TestLoadPosts_SkipsNonMarkdown(t *testing.T) {
	fsys := fstest.MapFS{
		"p/a.md":      {Data: []byte("---\ntitle: A\ncreatedAt: \"2024-01-01\"\n---\nalpha")},
		"p/b.md":      {Data: []byte("---\ntitle: B\ncreatedAt: \"2025-01-01\"\n---\nbeta")},
		"p/notes.txt": {Data: []byte("ignored")},
	}

	posts, err := LoadPosts(fsys, "p")
	require.NoError(t, err)
	require.Len(t, posts, 2)
	require.Equal(t, "b", posts[0].Slug)
	require.Equal(t, "a", posts[1].Slug)
}

func TestPost_ReadingTime(t *testing.T) {
	body := strings.Repeat("word ", 450) + "\n```go\nfunc skipped() {}\n```\n"
	minutes, words := Post{Content: body}.ReadingTime()
	require.Equal(t, 450, words)
	require.Equal(t, 3, minutes)

	minutes, _ = Post{Content: ""}.ReadingTime()
	require.Equal(t, 1, minutes)
}

func TestCatalog_Helpers(t *testing.T) {
	c := &Catalog{TechStack: []Tech{
		{Title: "Go", Categories: []string{"Language"}},
		{Title: "Gin", Categories: []string{"Framework", "Library"}},
		{Title: "Rust", Categories: []string{"Language"}},
	}}

	require.Equal(t, []string{"Go", "Gin", "Rust"}, c.TechTitles())
	require.Equal(t, []string{"Language", "Framework", "Library"}, c.Categories())
	require.True(t, c.TechStack[1].HasCategory("Library"))
	require.False(t, c.TechStack[1].HasCategory("library"))
}
