package fallback

// DefaultPool is served when no pool file is configured.
var DefaultPool = []Article{
	{
		Title: "Regional water authority publishes annual reservoir report",
		Text: "The regional water authority released its annual report on Monday, showing reservoir levels " +
			"slightly above the ten-year average after a wet spring. Officials said demand rose by two percent, " +
			"driven mostly by new housing on the eastern side of the district, and that planned pipe replacement " +
			"work would continue through the autumn.",
		URL:           "https://www.example-water-authority.org/news/annual-reservoir-report",
		PublishedDate: "2024-03-18",
	},
	{
		Title: "University researchers map urban tree cover",
		Text: "A team of researchers at the state university has completed a survey of tree cover across the " +
			"city's neighborhoods. The study found large differences between districts, with older residential " +
			"areas holding nearly three times the canopy of newer commercial zones. The authors recommend " +
			"targeted planting along major roads.",
		URL:           "https://news.example-university.edu/2024/05/urban-tree-cover",
		PublishedDate: "2024-05-02",
	},
	{
		Title: "Library extends weekend opening hours",
		Text: "The central public library will open on Sundays from next month after the city council approved " +
			"additional funding for staff. Library managers said the change follows a public consultation in " +
			"which most respondents asked for longer weekend hours, particularly for study spaces and the " +
			"children's reading room.",
		URL:           "https://www.example-city-library.org/updates/weekend-hours",
		PublishedDate: "2024-06-11",
	},
}
