// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/jeranaias/portfolio-chat/internal/content"
)

// Snippet complexity levels.
const (
	ComplexityBeginner     = "beginner"
	ComplexityIntermediate = "intermediate"
	ComplexityAdvanced     = "advanced"
)

// LanguageAuto lets the topic decide the snippet language.
const LanguageAuto = "auto"

// snippetKeywords are accepted as portfolio topics even when no tech stack
// title or skill overlaps.
var snippetKeywords = []string{
	"react", "javascript", "typescript", "nextjs", "next.js", "node", "css",
	"html", "web development", "frontend", "backend", "component", "hook", "api",
}

// Snippet is the guidance payload the model expands into code. The tool does
// not generate code itself.
type Snippet struct {
	Topic            string `json:"topic"`
	Language         string `json:"language"`
	Complexity       string `json:"complexity"`
	Guidelines       string `json:"guidelines"`
	PortfolioContext string `json:"portfolioContext"`
}

// SnippetResult is the output of generateCodeSnippet: either a snippet or a
// rejection in Error.
type SnippetResult struct {
	Snippet *Snippet `json:"snippet,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// GenerateCodeSnippet validates that topic belongs to the portfolio and
// returns snippet guidance, or a rejection naming the topics that are in scope.
func GenerateCodeSnippet(c *content.Catalog, topic, language, complexity string) SnippetResult {
	if language == "" {
		language = LanguageAuto
	}
	if complexity == "" {
		complexity = ComplexityIntermediate
	}

	name := c.Profile.FirstName
	if !isPortfolioTopic(c, topic) {
		titles := make([]string, 0, len(c.TechStack))
		for _, t := range c.TechStack {
			titles = append(titles, fold(t.Title))
		}
		return SnippetResult{Error: fmt.Sprintf(
			"Sorry, I can only provide code snippets for technologies and concepts related to %s's portfolio and tech stack. "+
				"The topic \"%s\" is outside the scope of the portfolio. Please ask about: %s.",
			name, topic, strings.Join(titles, ", "))}
	}

	lang := languageForTopic(topic, language)
	return SnippetResult{Snippet: &Snippet{
		Topic:      topic,
		Language:   lang,
		Complexity: complexity,
		Guidelines: snippetGuidelines(name, topic, lang, complexity),
		PortfolioContext: fmt.Sprintf("This snippet relates to %s's experience with %s and modern web development practices.",
			name, strings.Join(c.TechTitles(), ", ")),
	}}
}

// isPortfolioTopic reports whether topic overlaps, in either direction, a
// tech stack title, a headline skill, or a project skill, or mentions one of
// the general web keywords.
func isPortfolioTopic(c *content.Catalog, topic string) bool {
	t := fold(topic)
	if t == "" {
		return false
	}
	overlaps := func(candidate string) bool {
		f := fold(candidate)
		return f != "" && (strings.Contains(t, f) || strings.Contains(f, t))
	}

	for _, tech := range c.TechStack {
		if overlaps(tech.Title) {
			return true
		}
	}
	for _, s := range c.Profile.FlipSentences {
		if overlaps(s) {
			return true
		}
	}
	for _, p := range c.Projects {
		for _, s := range p.Skills {
			if overlaps(s) {
				return true
			}
		}
	}
	for _, kw := range snippetKeywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}

// languageForTopic picks the snippet language. An explicit preference wins.
func languageForTopic(topic, preferred string) string {
	if preferred != "" && preferred != LanguageAuto {
		return preferred
	}

	t := fold(topic)
	hasAny := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(t, w) {
				return true
			}
		}
		return false
	}

	switch {
	case hasAny("react", "jsx", "component"):
		return "javascript"
	case hasAny("typescript", "types"):
		return "typescript"
	case hasAny("css", "styling"):
		return "css"
	case hasAny("node", "express", "api"):
		return "javascript"
	case hasAny("python", "django", "flask"):
		return "python"
	default:
		return "javascript"
	}
}

func snippetGuidelines(name, topic, language, complexity string) string {
	var b strings.Builder
	b.WriteString("\nPORTFOLIO CODE SNIPPET GUIDELINES:\n")
	b.WriteString("1. Each snippet should be complete and runnable on its own\n")
	b.WriteString("2. Include helpful comments explaining the code\n")
	b.WriteString("3. Keep snippets concise (generally under 20 lines)\n")
	fmt.Fprintf(&b, "4. Use modern best practices relevant to %s's tech stack\n", name)
	b.WriteString("5. Handle potential errors gracefully when applicable\n")
	b.WriteString("6. Return meaningful output that demonstrates functionality\n")
	b.WriteString("7. Focus on practical, real-world examples\n")
	b.WriteString("8. Relate to technologies and concepts from the portfolio when possible\n")
	b.WriteString("9. For web examples, use modern ES6+ syntax\n")
	b.WriteString("10. Include console.log() or appropriate output methods\n\n")

	b.WriteString("COMPLEXITY LEVELS:\n")
	b.WriteString("- beginner: Basic concepts, simple examples\n")
	b.WriteString("- intermediate: Practical examples with some advanced features\n")
	b.WriteString("- advanced: Complex patterns, optimizations, architectural concepts\n\n")

	fmt.Fprintf(&b, "TOPIC: %s\nLANGUAGE: %s\nCOMPLEXITY: %s\n\n", topic, language, complexity)
	fmt.Fprintf(&b, "Generate a practical code snippet that demonstrates %s using %s, suitable for %s level.\n",
		topic, language, complexity)
	b.WriteString("Include a brief explanation of what the code does and how it relates to modern web development practices.\n")
	return b.String()
}

func generateCodeSnippetTool(c *content.Catalog) *Tool {
	return &Tool{
		Name: GenerateCodeSnippetName,
		Description: "Generate portfolio-related code snippets ONLY for technologies and concepts that exist in the " +
			"portfolio's tech stack. Do not generate code for unrelated topics.",
		Schema: Schema{Parameters: []Parameter{
			{
				Name:     "topic",
				Type:     "string",
				Required: true,
				Description: "MUST be a technology or concept from the portfolio tech stack (React, TypeScript, Next.js, etc.). " +
					"Will reject topics not related to the portfolio.",
			},
			{
				Name:        "language",
				Type:        "string",
				Description: "Preferred programming language from the portfolio stack",
				Default:     LanguageAuto,
			},
			{
				Name:        "complexity",
				Type:        "string",
				Description: "Complexity level of the snippet (default: intermediate)",
				Default:     ComplexityIntermediate,
				Enum:        []string{ComplexityBeginner, ComplexityIntermediate, ComplexityAdvanced},
			},
		}},
		Executor: ExecutorFunc(func(_ context.Context, params map[string]any) (Result, error) {
			topic, _ := params["topic"].(string)
			language, _ := params["language"].(string)
			complexity, _ := params["complexity"].(string)
			return Result{Success: true, Value: GenerateCodeSnippet(c, topic, language, complexity)}, nil
		}),
	}
}
