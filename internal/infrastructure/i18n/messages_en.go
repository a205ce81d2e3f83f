package i18n

var englishMessages = map[string]string{
	// Mood labels
	"mood.excellent":      "Excellent",
	"mood.excellentDesc":  "Feeling great and energized",
	"mood.good":           "Good",
	"mood.goodDesc":       "Feeling positive overall",
	"mood.okay":           "Okay",
	"mood.okayDesc":       "Neither good nor bad",
	"mood.notGreat":       "Not great",
	"mood.notGreatDesc":   "Feeling a bit down",
	"mood.poor":           "Poor",
	"mood.poorDesc":       "Struggling today",
	"mood.checkinSuccess": "Check-in saved. You are feeling {{mood}}.",

	// Coping suggestions by anchor score
	"moodSuggestions.90.0": "Share your good mood with a friend",
	"moodSuggestions.90.1": "Write down what went well today",
	"moodSuggestions.90.2": "Use the energy for something you enjoy",
	"moodSuggestions.70.0": "Take a short walk outside",
	"moodSuggestions.70.1": "Keep up your routine",
	"moodSuggestions.70.2": "Note one thing you are grateful for",
	"moodSuggestions.50.0": "Try five minutes of mindful breathing",
	"moodSuggestions.50.1": "Drink some water and stretch",
	"moodSuggestions.50.2": "Reach out to someone you trust",
	"moodSuggestions.30.0": "Take a break from your screen",
	"moodSuggestions.30.1": "Talk to a friend or family member",
	"moodSuggestions.30.2": "Consider booking a counselling session",
	"moodSuggestions.10.0": "Contact campus counselling today",
	"moodSuggestions.10.1": "Call a support line if you need to talk now",
	"moodSuggestions.10.2": "Stay with someone you trust",

	// Dashboard
	"dashboard.checkinPrompt.title":              "How are you feeling today?",
	"dashboard.checkinPrompt.button":             "Check in",
	"dashboard.checkinPrompt.lastCheckin":        "Your last check-in: {{mood}}",
	"dashboard.checkinPrompt.noCheckin":          "You have not checked in yet",
	"dashboard.metrics.recentMood":               "Recent mood",
	"dashboard.metrics.noCheckins":               "No check-ins",
	"dashboard.metrics.clickToRecord":            "Click to record your mood",
	"dashboard.metrics.lastCheckin":              "Last check-in",
	"dashboard.metrics.nextSession":              "Next session",
	"dashboard.metrics.sleepQuality":             "Sleep quality",
	"dashboard.metrics.nightlyAverage":           "Nightly average",
	"dashboard.metrics.stressLevel":              "Stress level",
	"dashboard.metrics.reducedFromLastWeek":      "Reduced from last week",
	"dashboard.moodHistory.title":                "Mood history",
	"dashboard.moodHistory.checkinCount":         "{{count}} check-ins",
	"dashboard.moodHistory.noCheckinsYet":        "No check-ins yet",
	"dashboard.moodHistory.historyWillAppear":    "Your history will appear here",
	"dashboard.moodHistory.noHistory":            "No history",
	"dashboard.upcomingSessions.title":           "Upcoming sessions",
	"dashboard.upcomingSessions.sessionWith":     "Session with {{counsellor}}",
	"dashboard.upcomingSessions.noSessions":      "No upcoming sessions",
	"dashboard.upcomingSessions.scheduleSession": "Schedule a session",
	"dashboard.recentAssessments.title":          "Recent assessments",
	"dashboard.recentAssessments.noAssessments":  "No assessments yet",
	"dashboard.recentAssessments.takeAssessment": "Take an assessment",

	// Wellness
	"wellness.nextSessionWithCounsellor": "{{date}} at {{time}} with {{counsellor}}",
	"wellness.nextSessionDefault":        "No upcoming session",
	"wellness.lastSessionDefault":        "No previous session",
	"wellness.defaultCounsellor":         "your counsellor",

	// Errors
	"errors.loadFailed": "Failed to load data. Please try again.",
	"errors.timeout":    "The care service is taking too long to respond. Please try again.",

	"common.score":   "Score",
	"common.viewAll": "View all",
}
