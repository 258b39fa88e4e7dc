// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package content holds the static portfolio data the assistant answers from:
// profile, projects, work history, tech stack, and blog posts.
//
// Everything is read-only and built once. Blog posts are markdown files with
// YAML front matter embedded into the binary.
//
// # Usage
//
//	catalog, err := content.Default()
//	if err != nil {
//	    return err
//	}
//	for _, p := range catalog.Projects {
//	    fmt.Println(p.Title, p.Period)
//	}
package content
