package notices

import "strings"

// classify derives the alert type from the article's text and category
// terms. Emergency indicators win over warning indicators; anything else
// is informational.
func classify(title, summary string, categories []string) AlertType {
	lowerTitle := strings.ToLower(title)
	lowerSummary := strings.ToLower(summary)

	if categoryContains(categories, "emergency") ||
		hasAny(lowerTitle, "emergency", "evacuat") ||
		hasAny(lowerSummary, "emergency", "evacuat") {
		return TypeEmergency
	}

	if categoryContains(categories, "wildfire") ||
		hasAny(lowerTitle, "fire", "smoke", "air quality") ||
		hasAny(lowerSummary, "fire", "smoke", "air quality") {
		return TypeWarning
	}

	return TypeInfo
}

func categoryContains(categories []string, sub string) bool {
	for _, cat := range categories {
		if strings.Contains(strings.ToLower(cat), sub) {
			return true
		}
	}
	return false
}

// hasAny returns true if s contains any of the substrings.
func hasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
