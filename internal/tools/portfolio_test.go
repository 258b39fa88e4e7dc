// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/portfolio-chat/internal/content"
)

func catalog(t *testing.T) *content.Catalog {
	t.Helper()
	c, err := content.Default()
	require.NoError(t, err)
	return c
}

// =============================================================================
// searchProjects
// =============================================================================

func TestSearchProjects_React(t *testing.T) {
	c := catalog(t)
	res := SearchProjects(c, "react")
	require.NotEmpty(t, res.Projects)

	for _, p := range res.Projects {
		hit := strings.Contains(strings.ToLower(p.Title), "react") ||
			strings.Contains(strings.ToLower(p.Description), "react")
		for _, s := range p.Skills {
			hit = hit || strings.Contains(strings.ToLower(s), "react")
		}
		require.True(t, hit, "%s does not mention react", p.Title)
	}

	// Every catalog project that mentions react is returned.
	want := 0
	for _, p := range c.Projects {
		blob := strings.ToLower(p.Title + " " + p.Description + " " + strings.Join(p.Skills, " "))
		if strings.Contains(blob, "react") {
			want++
		}
	}
	require.Len(t, res.Projects, want)
}

func TestSearchProjects_CaseInsensitive(t *testing.T) {
	c := catalog(t)
	require.Equal(t, SearchProjects(c, "react"), SearchProjects(c, "REACT"))
}

func TestSearchProjects_PeriodFormat(t *testing.T) {
	res := SearchProjects(catalog(t), "Wally")
	require.Len(t, res.Projects, 1)
	require.Equal(t, "2023 - 2024", res.Projects[0].Period)
}

func TestSearchProjects_NoMatchIsEmptyNotNil(t *testing.T) {
	res := SearchProjects(catalog(t), "cobol mainframe")
	require.NotNil(t, res.Projects)
	require.Empty(t, res.Projects)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	require.JSONEq(t, `{"projects":[]}`, string(data))
}

// =============================================================================
// searchBlogPosts / getTechStack / getExperience
// =============================================================================

func TestSearchBlogPosts(t *testing.T) {
	c := catalog(t)

	// "FlatList" only appears in a post body.
	res := SearchBlogPosts(c, "flatlist")
	require.Len(t, res.Posts, 1)
	require.Equal(t, "react-native-performance", res.Posts[0].Slug)
	require.NotEmpty(t, res.Posts[0].CreatedAt)

	empty := SearchBlogPosts(c, "kubernetes operators")
	require.NotNil(t, empty.Posts)
	require.Empty(t, empty.Posts)
}

func TestGetTechStack(t *testing.T) {
	c := catalog(t)

	all := GetTechStack(c, "")
	require.Len(t, all.Technologies, len(c.TechStack))

	langs := GetTechStack(c, content.CategoryLanguage)
	require.NotEmpty(t, langs.Technologies)
	for _, tech := range langs.Technologies {
		require.Contains(t, tech.Categories, content.CategoryLanguage)
	}

	// Category match is exact.
	require.Empty(t, GetTechStack(c, "language").Technologies)
	require.NotNil(t, GetTechStack(c, "Nope").Technologies)
}

func TestGetExperience(t *testing.T) {
	c := catalog(t)

	all := GetExperience(c, "")
	require.Len(t, all.Experiences, len(c.Experiences))

	sparks := GetExperience(c, "sparks")
	require.Len(t, sparks.Experiences, 1)
	require.Equal(t, "The Sparks Foundation", sparks.Experiences[0].Company)
	require.Equal(t, "01.2022 - 02.2022", sparks.Experiences[0].Positions[0].Period)

	current := GetExperience(c, "PROMETHEANTECH")
	require.Len(t, current.Experiences, 1)
	require.Equal(t, "11.2023 - Present", current.Experiences[0].Positions[0].Period)
}

func TestGetExperience_NonexistentCompany(t *testing.T) {
	res := GetExperience(catalog(t), "nonexistent-co")
	require.NotNil(t, res.Experiences)
	require.Empty(t, res.Experiences)
}

// =============================================================================
// generateCodeSnippet
// =============================================================================

func TestGenerateCodeSnippet_RejectsUnrelatedTopic(t *testing.T) {
	c := catalog(t)
	res := GenerateCodeSnippet(c, "quantum cryptography", "", "")

	require.Nil(t, res.Snippet)
	require.Contains(t, res.Error, `The topic "quantum cryptography" is outside the scope of the portfolio.`)
	require.Contains(t, res.Error, "Yash's portfolio")
	for _, title := range c.TechTitles() {
		require.Contains(t, res.Error, strings.ToLower(title))
	}
	require.True(t, strings.HasSuffix(res.Error, "."))
}

func TestGenerateCodeSnippet_Accepts(t *testing.T) {
	c := catalog(t)

	tests := []struct {
		topic, language, wantLang string
	}{
		{"React hooks", "auto", "javascript"},
		{"TypeScript generics", "", "typescript"},
		{"Tailwind CSS layout", "", "css"},
		{"Express middleware", "", "javascript"},
		{"Next.js routing", "typescript", "typescript"},
		{"web development basics", "", "javascript"},
		{"Docker", "", "javascript"},
	}
	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			res := GenerateCodeSnippet(c, tt.topic, tt.language, "")
			require.Empty(t, res.Error)
			require.NotNil(t, res.Snippet)
			require.Equal(t, tt.wantLang, res.Snippet.Language)
			require.Equal(t, ComplexityIntermediate, res.Snippet.Complexity)
			require.Contains(t, res.Snippet.Guidelines, "PORTFOLIO CODE SNIPPET GUIDELINES:")
			require.Contains(t, res.Snippet.Guidelines, "10. Include console.log()")
			require.Contains(t, res.Snippet.Guidelines, "TOPIC: "+tt.topic)
			require.True(t, strings.HasPrefix(res.Snippet.PortfolioContext, "This snippet relates to Yash's experience with JavaScript, TypeScript"))
		})
	}
}

func TestGenerateCodeSnippet_EmptyTopicRejected(t *testing.T) {
	res := GenerateCodeSnippet(catalog(t), "", "", "")
	require.NotEmpty(t, res.Error)
}

func TestNewPortfolioRegistry(t *testing.T) {
	r := NewPortfolioRegistry(catalog(t))
	require.Equal(t, []string{
		SearchProjectsName,
		SearchBlogPostsName,
		GetTechStackName,
		GetExperienceName,
		GenerateCodeSnippetName,
	}, r.Names())

	specs := r.Specs()
	require.Len(t, specs, 5)
	snippet := specs[4]
	require.Equal(t, GenerateCodeSnippetName, snippet.Name)
	require.True(t, snippet.Params[0].Required)
	require.Equal(t, []string{"beginner", "intermediate", "advanced"}, snippet.Params[2].Enum)
}
