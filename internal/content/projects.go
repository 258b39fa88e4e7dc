// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package content

func defaultProjects() []Project {
	return []Project{
		{
			ID:     "wally-consumer-app",
			Title:  "Wally - Consumer App",
			Period: Period{Start: "2023", End: "2024"},
			Skills: []string{"Next.js", "React", "Tailwind CSS", "Zustand", "Prisma", "PWA"},
			Description: "As Lead Frontend Developer, I led the development of a dynamic consumer app using Next.js. " +
				"I implemented server-side and client-side rendering, geo-location for personalized offers, a secure wallet, " +
				"and event booking. The app features PWA support, dynamic theming, and a responsive design with Tailwind CSS. " +
				"I also managed state with Zustand and used Prisma for database interactions.",
		},
		{
			ID:     "pipli-retailer-portal",
			Title:  "Pipli - Retailer Portal",
			Period: Period{Start: "2022", End: "2023"},
			Skills: []string{"Next.js", "React", "Redux", "Prime React", "AWS S3", "OAuth", "JWT"},
			Description: "Developed a responsive retailer portal using React and Next.js, enabling retailers to manage " +
				"feedback, e-bills, and promotions. I implemented analytics, customized bill designs, and integrated " +
				"authentication with OAuth/JWT for secure access.",
		},
		{
			ID:     "video-live-streaming-platform",
			Title:  "Video Live Streaming Platform",
			Period: Period{Start: "2022", End: "2023"},
			Skills: []string{
				"React", "React Native", "Node.js", "FFmpeg", "WebRTC",
				"AWS S3", "AWS Lambda", "Facebook API", "YouTube API",
			},
			Description: "As a Full-Stack Developer, I built a live streaming platform for web and mobile using React and " +
				"React Native. It supports multi-streaming to Facebook, YouTube, and Twitch. I integrated FFmpeg for video " +
				"processing, WebRTC for real-time communication, and various APIs for broadcasting and cloud storage.",
		},
		{
			ID:     "webstories-backend",
			Title:  "WebStories - Backend",
			Period: Period{Start: "2022", End: "2023"},
			Skills: []string{"Node.js", "TypeScript", "MongoDB", "Zod", "Azure Key Vault", "Express.js", "Vitest"},
			Description: "Developed a scalable backend for a multimedia story platform using Node.js and TypeScript. " +
				"I designed a module-based architecture, implemented secure story management with URL-friendly links, " +
				"and used Zod for robust validation. The system also includes cron jobs for content expiration and " +
				"secure key management with Azure Key Vault.",
		},
		{
			ID:     "admin-portal",
			Title:  "Admin Portal",
			Period: Period{Start: "2021", End: "2022"},
			Skills: []string{"React", "Redux", "Next.js", "Apex Charts", "AWS S3"},
			Description: "Built a comprehensive admin portal with React and Next.js for product, report, and campaign " +
				"management. I developed a user-friendly interface with data visualization using ApexCharts and " +
				"integrated it with backend APIs for a seamless administrative experience.",
		},
		{
			ID:     "mpos-react-native",
			Title:  "MPos - Mobile Point of Sale",
			Period: Period{Start: "2021", End: "2022"},
			Skills: []string{"React Native", "Redux", "Jest"},
			Description: "Developed a mobile point-of-sale application using React Native. The app provides store billing " +
				"and invoice management functionalities. I was responsible for building reusable components, integrating " +
				"with backend services, and ensuring a smooth user experience on both iOS and Android.",
		},
		{
			ID:     "file-converter-application",
			Title:  "File Converter Application",
			Period: Period{Start: "2020", End: "2021"},
			Skills: []string{"React", "Redux", "Node.js", "Express.js", "AWS S3"},
			Description: "Created a full-stack file converter application allowing users to upload, convert, and download " +
				"files in various formats. The frontend was built with React and Redux, while the backend used Node.js " +
				"and Express.js, with AWS S3 for file storage.",
		},
		{
			ID:     "pwa-wrapper-for-android",
			Title:  "PWA Wrapper for Android",
			Period: Period{Start: "2020", End: "2021"},
			Skills: []string{"Android", "Jetpack Compose", "React", "PWA", "Geofencing"},
			Description: "Developed an Android application serving as a PWA wrapper, using Jetpack Compose for the native UI. " +
				"The app delivers location-based promotions by tracking user proximity to retail stores through geofencing, " +
				"enhancing the user's shopping experience with personalized content.",
		},
	}
}
