// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"strings"

	"golang.org/x/text/cases"

	"github.com/jeranaias/portfolio-chat/internal/content"
)

// Tool names as the model sees them.
const (
	SearchProjectsName      = "searchProjects"
	SearchBlogPostsName     = "searchBlogPosts"
	GetTechStackName        = "getTechStack"
	GetExperienceName       = "getExperience"
	GenerateCodeSnippetName = "generateCodeSnippet"
)

// NewPortfolioRegistry registers the read-only portfolio tools over catalog.
func NewPortfolioRegistry(c *content.Catalog) *Registry {
	r := NewRegistry()
	r.Register(searchProjectsTool(c))
	r.Register(searchBlogPostsTool(c))
	r.Register(getTechStackTool(c))
	r.Register(getExperienceTool(c))
	r.Register(generateCodeSnippetTool(c))
	return r
}

// =============================================================================
// MATCHING
// =============================================================================

// fold case-folds s for caseless comparison. A Caser is stateful, so each
// call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(fold(haystack), needle)
}

// =============================================================================
// RESULT SHAPES
// =============================================================================

// ProjectSummary is one project as returned to the model.
type ProjectSummary struct {
	Title       string   `json:"title"`
	Period      string   `json:"period"`
	Skills      []string `json:"skills"`
	Description string   `json:"description"`
}

// ProjectsResult is the output of searchProjects.
type ProjectsResult struct {
	Projects []ProjectSummary `json:"projects"`
}

// PostSummary is one blog post as returned to the model.
type PostSummary struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	Slug        string `json:"slug"`
}

// PostsResult is the output of searchBlogPosts.
type PostsResult struct {
	Posts []PostSummary `json:"posts"`
}

// TechEntry is one tech stack entry as returned to the model.
type TechEntry struct {
	Title      string   `json:"title"`
	Href       string   `json:"href"`
	Categories []string `json:"categories"`
}

// TechStackResult is the output of getTechStack.
type TechStackResult struct {
	Technologies []TechEntry `json:"technologies"`
}

// PositionSummary is one position as returned to the model.
type PositionSummary struct {
	Title       string   `json:"title"`
	Period      string   `json:"period"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
}

// ExperienceSummary groups the positions at one company.
type ExperienceSummary struct {
	Company   string            `json:"company"`
	Positions []PositionSummary `json:"positions"`
}

// ExperienceResult is the output of getExperience.
type ExperienceResult struct {
	Experiences []ExperienceSummary `json:"experiences"`
}

// =============================================================================
// QUERIES
// =============================================================================

// SearchProjects returns projects whose title, description, or any skill
// contains query, ignoring case.
func SearchProjects(c *content.Catalog, query string) ProjectsResult {
	q := fold(query)
	out := ProjectsResult{Projects: []ProjectSummary{}}
	for _, p := range c.Projects {
		if !containsFold(p.Title, q) && !containsFold(p.Description, q) && !anyContainsFold(p.Skills, q) {
			continue
		}
		out.Projects = append(out.Projects, ProjectSummary{
			Title:       p.Title,
			Period:      p.Period.String(),
			Skills:      nonNil(p.Skills),
			Description: p.Description,
		})
	}
	return out
}

// SearchBlogPosts returns posts whose title, description, or body contains
// query, ignoring case.
func SearchBlogPosts(c *content.Catalog, query string) PostsResult {
	q := fold(query)
	out := PostsResult{Posts: []PostSummary{}}
	for _, p := range c.Posts {
		m := p.Metadata
		if !containsFold(m.Title, q) && !containsFold(m.Description, q) && !containsFold(p.Content, q) {
			continue
		}
		out.Posts = append(out.Posts, PostSummary{
			Title:       m.Title,
			Description: m.Description,
			CreatedAt:   m.CreatedAt,
			Slug:        p.Slug,
		})
	}
	return out
}

// GetTechStack returns the tech stack, filtered to entries carrying exactly
// category when it is non-empty. The category match is case-sensitive.
func GetTechStack(c *content.Catalog, category string) TechStackResult {
	out := TechStackResult{Technologies: []TechEntry{}}
	for _, t := range c.TechStack {
		if category != "" && !t.HasCategory(category) {
			continue
		}
		out.Technologies = append(out.Technologies, TechEntry{
			Title:      t.Title,
			Href:       t.Href,
			Categories: nonNil(t.Categories),
		})
	}
	return out
}

// GetExperience returns work history, filtered to companies whose name
// contains company (ignoring case) when it is non-empty.
func GetExperience(c *content.Catalog, company string) ExperienceResult {
	q := fold(company)
	out := ExperienceResult{Experiences: []ExperienceSummary{}}
	for _, exp := range c.Experiences {
		if company != "" && !containsFold(exp.CompanyName, q) {
			continue
		}
		summary := ExperienceSummary{
			Company:   exp.CompanyName,
			Positions: make([]PositionSummary, 0, len(exp.Positions)),
		}
		for _, pos := range exp.Positions {
			summary.Positions = append(summary.Positions, PositionSummary{
				Title:       pos.Title,
				Period:      pos.Period.String(),
				Description: pos.Description,
				Skills:      nonNil(pos.Skills),
			})
		}
		out.Experiences = append(out.Experiences, summary)
	}
	return out
}

func anyContainsFold(values []string, foldedNeedle string) bool {
	for _, v := range values {
		if containsFold(v, foldedNeedle) {
			return true
		}
	}
	return false
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// =============================================================================
// TOOL DEFINITIONS
// =============================================================================

func searchProjectsTool(c *content.Catalog) *Tool {
	return &Tool{
		Name:        SearchProjectsName,
		Description: "Search through projects based on technology or keyword",
		Schema: Schema{Parameters: []Parameter{
			{Name: "query", Type: "string", Required: true, Description: "The search query for projects"},
		}},
		Executor: ExecutorFunc(func(_ context.Context, params map[string]any) (Result, error) {
			query, _ := params["query"].(string)
			return Result{Success: true, Value: SearchProjects(c, query)}, nil
		}),
	}
}

func searchBlogPostsTool(c *content.Catalog) *Tool {
	return &Tool{
		Name:        SearchBlogPostsName,
		Description: "Search through blog posts based on title or content",
		Schema: Schema{Parameters: []Parameter{
			{Name: "query", Type: "string", Required: true, Description: "The search query for blog posts"},
		}},
		Executor: ExecutorFunc(func(_ context.Context, params map[string]any) (Result, error) {
			query, _ := params["query"].(string)
			return Result{Success: true, Value: SearchBlogPosts(c, query)}, nil
		}),
	}
}

func getTechStackTool(c *content.Catalog) *Tool {
	return &Tool{
		Name:        GetTechStackName,
		Description: "Get information about technologies in the tech stack",
		Schema: Schema{Parameters: []Parameter{
			{
				Name:        "category",
				Type:        "string",
				Description: "Filter by category (e.g., " + strings.Join(c.Categories(), ", ") + ")",
			},
		}},
		Executor: ExecutorFunc(func(_ context.Context, params map[string]any) (Result, error) {
			category, _ := params["category"].(string)
			return Result{Success: true, Value: GetTechStack(c, category)}, nil
		}),
	}
}

func getExperienceTool(c *content.Catalog) *Tool {
	return &Tool{
		Name:        GetExperienceName,
		Description: "Get detailed information about work experience",
		Schema: Schema{Parameters: []Parameter{
			{Name: "company", Type: "string", Description: "Filter by company name"},
		}},
		Executor: ExecutorFunc(func(_ context.Context, params map[string]any) (Result, error) {
			company, _ := params["company"].(string)
			return Result{Success: true, Value: GetExperience(c, company)}, nil
		}),
	}
}
