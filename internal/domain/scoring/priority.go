package scoring

import "strings"

// Priority band labels recorded on contacts for reporting.
const (
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityStandard = "standard"
)

// priorityRule assigns a probe weight to a title category. Rules are checked
// in order; the first match wins, so seniority categories come before the
// low-value ones.
type priorityRule struct {
	keywords []string
	weight   int
}

var priorityRules = []priorityRule{
	{[]string{"ceo", "chief", "owner", "founder", "president", "managing director", "director", "partner"}, 90},
	{[]string{"manager", "head of", "head ", "lead", "supervisor", "principal"}, 80},
	{[]string{"specialist", "coordinator", "analyst", "consultant", "engineer", "executive"}, 60},
	{[]string{"assistant", "support", "associate", "officer", "representative", "administrator"}, 40},
	{[]string{"freelance", "freelancer", "contractor", "self-employed", "brand ambassador"}, 20},
	{[]string{"student", "intern", "graduate", "trainee", "apprentice", "university"}, 10},
}

// TestPriority ranks an employee title for email-pattern probing. Senior
// staff are probed first because their addresses are most likely to exist
// on the company domain. Empty titles score 0, unrecognised ones get a
// middling 30 so they sort below any real category match but above the
// dead weight.
func TestPriority(title string) int {
	title = strings.ToLower(strings.TrimSpace(title))
	if title == "" {
		return 0
	}
	for _, rule := range priorityRules {
		for _, kw := range rule.keywords {
			if strings.Contains(title, kw) {
				return rule.weight
			}
		}
	}
	return 30
}

// Priority buckets a probe weight into the band label saved on the contact.
func Priority(title string) string {
	switch w := TestPriority(title); {
	case w >= 80:
		return PriorityHigh
	case w >= 40:
		return PriorityMedium
	default:
		return PriorityStandard
	}
}
