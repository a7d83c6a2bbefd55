// Package scoring holds the keyword heuristics used to rank contacts: the
// relevance score that orders outreach targets and the priority ladder that
// orders employees for email-pattern probing. Scores rank and tag contacts;
// they never gate them out of the run.
package scoring

import "strings"

// High-relevance keywords: fire/safety/compliance responsibility and the
// management roles that hold the budget for it. Each match adds 10.
var highKeywords = []string{
	"fire", "safety", "health", "hse", "compliance", "risk",
	"facilities", "facility", "maintenance", "estate", "property",
	"operations", "director", "manager", "head", "chief", "owner",
	"founder", "ceo", "md", "managing",
}

// Medium-relevance keywords: generic office and technical roles that still
// touch the building or its processes. Each match adds 5.
var mediumKeywords = []string{
	"office", "admin", "site", "building", "plant", "warehouse",
	"technical", "engineer", "supervisor", "coordinator", "logistics",
	"security",
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Score rates a contact's relevance as an outreach target. Starts at a 50
// baseline, adds 10 per high-relevance keyword and 5 per medium-relevance
// keyword found anywhere in the concatenated lower-cased text, clamped to
// [0,100]. Purely additive: adding matching text never lowers the score.
func Score(name, title, description string) int {
	text := strings.ToLower(name + " " + title + " " + description)

	score := 50
	for _, kw := range highKeywords {
		if strings.Contains(text, kw) {
			score += 10
		}
	}
	for _, kw := range mediumKeywords {
		if strings.Contains(text, kw) {
			score += 5
		}
	}
	return clamp(score, 0, 100)
}

// reasonRule maps a title category to the human-readable explanation recorded
// next to the score.
type reasonRule struct {
	keywords []string
	reason   string
}

var reasonRules = []reasonRule{
	{[]string{"facilities", "facility", "building", "maintenance", "estate", "property"},
		"Facilities management - direct responsibility for building safety systems"},
	{[]string{"safety", "health", "hse", "risk", "compliance", "fire"},
		"Safety role - direct fire protection responsibility"},
	{[]string{"operations", "operational", "ops", "site manager", "plant"},
		"Operations management - oversees safety procedures and equipment"},
	{[]string{"owner", "founder", "ceo", "president", "managing director"},
		"Business owner - ultimate responsibility for fire safety compliance"},
	{[]string{"manager", "director", "head", "chief", "md"},
		"Management role - budget authority for safety investments"},
}

// Reason explains why a contact scored the way it did, from the first
// matching title category.
func Reason(name, title string) string {
	text := strings.ToLower(name + " " + title)
	for _, rule := range reasonRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.reason
			}
		}
	}
	return "General contact"
}
