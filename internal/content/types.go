// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package content

// Period is a start/end pair as written on the site ("2023", "11.2023").
// An empty End means the period is ongoing.
type Period struct {
	Start string
	End   string
}

// String formats the period as "start - end", with "Present" for an open end.
func (p Period) String() string {
	end := p.End
	if end == "" {
		end = "Present"
	}
	return p.Start + " - " + end
}

// Job is a current role shown in the profile header.
type Job struct {
	Title   string
	Company string
	Website string
}

// Profile is the site owner.
type Profile struct {
	FirstName     string
	LastName      string
	DisplayName   string
	Username      string
	Bio           string
	FlipSentences []string
	Address       string
	Website       string
	OtherWebsites []string
	JobTitle      string
	Jobs          []Job
	About         string
}

// Project is one portfolio project.
type Project struct {
	ID          string
	Title       string
	Period      Period
	Skills      []string
	Description string
	Link        string
}

// Position is one role held at a company.
type Position struct {
	ID             string
	Title          string
	Period         Period
	EmploymentType string
	Description    string
	Skills         []string
}

// Experience groups the positions held at one company.
type Experience struct {
	ID                string
	CompanyName       string
	Positions         []Position
	IsCurrentEmployer bool
}

// Tech is one entry of the tech stack.
type Tech struct {
	Key        string
	Title      string
	Href       string
	Categories []string
}

// HasCategory reports exact membership of category.
func (t Tech) HasCategory(category string) bool {
	for _, c := range t.Categories {
		if c == category {
			return true
		}
	}
	return false
}
