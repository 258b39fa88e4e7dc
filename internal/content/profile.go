// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package content

func defaultProfile() Profile {
	return Profile{
		FirstName:   "Yash",
		LastName:    "Mahajan",
		DisplayName: "Yash Mahajan",
		Username:    "yash_mhj",
		Bio:         "Transforming complex ideas into elegant web and mobile applications.",
		FlipSentences: []string{
			"Software Developer",
			"Open Source Contributor",
			"React, React Native, Node.js and more.",
		},
		Address: "Gujarat, India",
		Website: "https://reactopia.me",
		OtherWebsites: []string{
			"https://github.com/yashm20",
			"https://linkedin.com/in/yash-mhj",
			"https://x.com/yash_mhj",
			"https://instagram.com/yash_mhj",
			"https://youtube.com/@yashm20",
		},
		JobTitle: "Software Developer",
		Jobs: []Job{
			{
				Title:   "Senior Frontend Developer",
				Company: "PromeTechAi Innovations pvt. ltd.",
				Website: "https://www.prometheanz.com/",
			},
			{
				Title:   "Creator of",
				Company: "Reactopia",
				Website: "https://reactopia.me",
			},
		},
		About: "Software Engineer with 4+ years of experience.  I have been developing web and mobile applications " +
			"using JavaScript frameworks and libraries, including Next.js, React JS, React Native & expo cli. " +
			"I'm passionate about staying up to date with the modern frontend development trends & React Community.",
	}
}
