// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package content

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed posts/*.md
var embeddedPosts embed.FS

// wordsPerMinute is the reading speed behind ReadingTime.
const wordsPerMinute = 200

// ErrNoFrontMatter is returned for a post without a leading "---" block.
var ErrNoFrontMatter = errors.New("missing front matter")

// PostMetadata is the YAML front matter of a post.
type PostMetadata struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Image       string `yaml:"image,omitempty" json:"image,omitempty"`
	Category    string `yaml:"category,omitempty" json:"category,omitempty"`
	New         bool   `yaml:"new,omitempty" json:"new,omitempty"`
	CreatedAt   string `yaml:"createdAt" json:"createdAt"`
	UpdatedAt   string `yaml:"updatedAt" json:"updatedAt"`
}

// Post is one blog post. Content is the markdown body without front matter.
type Post struct {
	Metadata PostMetadata
	Slug     string
	Content  string
}

// ReadingTime estimates minutes to read the post, at least one.
func (p Post) ReadingTime() (minutes, words int) {
	words = len(strings.Fields(stripMarkdown(p.Content)))
	minutes = (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes, words
}

var (
	codeBlockRe  = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe = regexp.MustCompile("`[^`]*`")
	imageRe      = regexp.MustCompile(`!\[.*?\]\(.*?\)`)
	linkRe       = regexp.MustCompile(`\[(.*?)\]\(.*?\)`)
	markupRe     = regexp.MustCompile(`(?m)^#+\s|[*_~]|<[^>]*>`)
)

func stripMarkdown(s string) string {
	s = codeBlockRe.ReplaceAllString(s, " ")
	s = inlineCodeRe.ReplaceAllString(s, " ")
	s = imageRe.ReplaceAllString(s, " ")
	s = linkRe.ReplaceAllString(s, "$1")
	return markupRe.ReplaceAllString(s, " ")
}

// ParsePost splits a markdown file into front matter and body.
func ParsePost(slug string, data []byte) (Post, error) {
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(data, []byte("---\n")) {
		return Post{}, fmt.Errorf("post %s: %w", slug, ErrNoFrontMatter)
	}
	rest := data[len("---\n"):]
	end := bytes.Index(rest, []byte("\n---\n"))
	if end < 0 {
		return Post{}, fmt.Errorf("post %s: unterminated front matter", slug)
	}

	var meta PostMetadata
	if err := yaml.Unmarshal(rest[:end], &meta); err != nil {
		return Post{}, fmt.Errorf("post %s: failed to parse front matter: %w", slug, err)
	}
	if meta.Title == "" {
		return Post{}, fmt.Errorf("post %s: front matter has no title", slug)
	}

	return Post{
		Metadata: meta,
		Slug:     slug,
		Content:  strings.TrimSpace(string(rest[end+len("\n---\n"):])),
	}, nil
}

// LoadPosts parses every .md file in dir of fsys, newest first.
func LoadPosts(fsys fs.FS, dir string) ([]Post, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read posts: %w", err)
	}

	posts := make([]Post, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".md" {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}
		post, err := ParsePost(strings.TrimSuffix(entry.Name(), ".md"), data)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	// Dates are YYYY-MM-DD so string order is date order.
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].Metadata.CreatedAt != posts[j].Metadata.CreatedAt {
			return posts[i].Metadata.CreatedAt > posts[j].Metadata.CreatedAt
		}
		return posts[i].Slug < posts[j].Slug
	})
	return posts, nil
}
