// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package content

func defaultExperiences() []Experience {
	return []Experience{
		{
			ID:          "prometheantech",
			CompanyName: "PrometheanTech",
			Positions: []Position{
				{
					ID:             "prometheantech-fullstack",
					Title:          "Senior Full-stack Developer",
					Period:         Period{Start: "11.2023"},
					EmploymentType: "Full-time",
					Description: "- Architected and delivered mission-critical applications including user access management systems.\n" +
						"- Developed cross-platform mobile and web applications using React Native, Node.js, and Next.js.\n" +
						"- Designed and implemented scalable, secure backend solutions for enterprise-grade systems.\n" +
						"- Leveraged advanced JavaScript and Next.js to build innovative software products.\n" +
						"- Improved system performance by optimizing APIs and implementing robust caching mechanisms.",
					Skills: []string{
						"React Native", "Node.js", "Next.js", "Microservices",
						"REST APIs", "Docker", "Agile Development",
					},
				},
				{
					ID:             "prometheantech-javascript",
					Title:          "JavaScript Developer",
					Period:         Period{Start: "03.2022", End: "11.2023"},
					EmploymentType: "Full-time",
					Description: "- Built responsive and dynamic web applications with React.js, delivering seamless and intuitive user experiences.\n" +
						"- Initiated cross-platform mobile app development using React Native, focusing on clean UI and smooth UX.\n" +
						"- Created early-stage mobile app prototypes, collaborating with design and backend teams to ensure seamless integration.\n" +
						"- Implemented core mobile features and optimized application performance for web and mobile platforms.",
					Skills: []string{"React.js", "React Native", "Node.js", "Redux", "REST APIs", "Responsive Design"},
				},
			},
		},
		{
			ID:          "sparks-foundation",
			CompanyName: "The Sparks Foundation",
			Positions: []Position{
				{
					ID:             "sparks-foundation-intern",
					Title:          "Web Development Intern",
					Period:         Period{Start: "01.2022", End: "02.2022"},
					EmploymentType: "Internship",
					Description: "- Developed interactive web components and enhanced website functionality as part of the foundation's initiatives.\n" +
						"- Gained hands-on experience in frontend technologies and collaborative development workflows.",
					Skills: []string{"HTML5", "CSS3", "JavaScript", "Git", "Collaboration"},
				},
			},
		},
		{
			ID:          "yash-mahajan-education",
			CompanyName: "Education",
			Positions: []Position{
				{
					ID:          "education-git",
					Title:       "Gandhinagar Institute of Technology",
					Period:      Period{Start: "12.2018", End: "05.2022"},
					Description: "Bachelor of Engineering (BE) in Information Technology.",
					Skills:      []string{"Data Structures", "Algorithms", "Software Engineering", "Teamwork"},
				},
			},
		},
	}
}
