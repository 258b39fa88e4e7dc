// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package content

import "sync"

// Catalog bundles all portfolio data. Treat it as read-only once built.
type Catalog struct {
	Profile     Profile
	Projects    []Project
	Experiences []Experience
	TechStack   []Tech
	Posts       []Post
}

var (
	defaultCatalog     *Catalog
	defaultCatalogErr  error
	defaultCatalogOnce sync.Once
)

// Default returns the built-in catalog with the embedded blog posts.
// It is built once and shared.
func Default() (*Catalog, error) {
	defaultCatalogOnce.Do(func() {
		posts, err := LoadPosts(embeddedPosts, "posts")
		if err != nil {
			defaultCatalogErr = err
			return
		}
		defaultCatalog = &Catalog{
			Profile:     defaultProfile(),
			Projects:    defaultProjects(),
			Experiences: defaultExperiences(),
			TechStack:   defaultTechStack(),
			Posts:       posts,
		}
	})
	return defaultCatalog, defaultCatalogErr
}

// TechTitles returns the tech stack titles in declaration order.
func (c *Catalog) TechTitles() []string {
	titles := make([]string, 0, len(c.TechStack))
	for _, t := range c.TechStack {
		titles = append(titles, t.Title)
	}
	return titles
}

// Categories returns the distinct tech stack categories in first-seen order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range c.TechStack {
		for _, cat := range t.Categories {
			if !seen[cat] {
				seen[cat] = true
				out = append(out, cat)
			}
		}
	}
	return out
}
