// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package content

// Tech stack categories.
const (
	CategoryLanguage  = "Language"
	CategoryFramework = "Framework"
	CategoryLibrary   = "Library"
	CategoryRuntime   = "Runtime Environment"
	CategoryDatabase  = "Database"
	CategoryTools     = "Tools"
	CategoryCloud     = "Cloud"
	CategoryTesting   = "Testing"
)

func defaultTechStack() []Tech {
	return []Tech{
		{Key: "js", Title: "JavaScript", Href: "https://developer.mozilla.org/en-US/docs/Web/JavaScript", Categories: []string{CategoryLanguage}},
		{Key: "typescript", Title: "TypeScript", Href: "https://www.typescriptlang.org/", Categories: []string{CategoryLanguage}},
		{Key: "nodejs", Title: "Node.js", Href: "https://nodejs.org/", Categories: []string{CategoryRuntime}},
		{Key: "react", Title: "React", Href: "https://react.dev/", Categories: []string{CategoryLibrary}},
		{Key: "react-native", Title: "React Native", Href: "https://reactnative.dev/", Categories: []string{CategoryFramework}},
		{Key: "expo", Title: "Expo", Href: "https://expo.dev/", Categories: []string{CategoryFramework, CategoryTools}},
		{Key: "nextjs", Title: "Next.js", Href: "https://nextjs.org/", Categories: []string{CategoryFramework}},
		{Key: "express", Title: "Express.js", Href: "https://expressjs.com/", Categories: []string{CategoryFramework}},
		{Key: "redux", Title: "Redux", Href: "https://redux.js.org/", Categories: []string{CategoryLibrary}},
		{Key: "zustand", Title: "Zustand", Href: "https://zustand-demo.pmnd.rs/", Categories: []string{CategoryLibrary}},
		{Key: "tailwindcss", Title: "Tailwind CSS", Href: "https://tailwindcss.com/", Categories: []string{CategoryFramework}},
		{Key: "mongodb", Title: "MongoDB", Href: "https://www.mongodb.com/", Categories: []string{CategoryDatabase}},
		{Key: "prisma", Title: "Prisma", Href: "https://www.prisma.io/", Categories: []string{CategoryDatabase, CategoryTools}},
		{Key: "docker", Title: "Docker", Href: "https://www.docker.com/", Categories: []string{CategoryTools}},
		{Key: "git", Title: "Git", Href: "https://git-scm.com/", Categories: []string{CategoryTools}},
		{Key: "aws", Title: "AWS", Href: "https://aws.amazon.com/", Categories: []string{CategoryCloud}},
		{Key: "jest", Title: "Jest", Href: "https://jestjs.io/", Categories: []string{CategoryTesting}},
	}
}
