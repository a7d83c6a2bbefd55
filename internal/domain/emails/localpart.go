package emails

import "strings"

// Short allow-list of first names that have been confirmed deliverable on
// catch-all domains in past campaigns.
var knownFirstNames = map[string]struct{}{
	"kathleen": {}, "jane": {}, "stacey": {}, "john": {}, "mary": {},
	"david": {}, "sarah": {}, "michael": {}, "emma": {},
}

// Shared-mailbox keywords that are near-certain to exist on any business
// domain.
var roleKeywords = []string{
	"info", "contact", "admin", "support", "sales", "marketing",
	"hr", "finance", "office", "reception", "manager", "director",
	"ceo", "cto", "cfo", "owner", "hello", "enquiry",
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return s != ""
}

// PlausibleLocalPart decides whether an address on a catch-all domain is
// worth keeping even though the remote checker could not confirm it: the
// local part is a known first name, looks like a real first name (alphabetic,
// at least 3 characters after stripping separators), or contains a common
// role keyword.
func PlausibleLocalPart(local string) bool {
	local = strings.ToLower(strings.TrimSpace(local))
	clean := strings.NewReplacer(".", "", "_", "", "-", "").Replace(local)

	if _, ok := knownFirstNames[clean]; ok {
		return true
	}
	if len(clean) >= 3 && isAlpha(clean) {
		return true
	}
	for _, kw := range roleKeywords {
		if strings.Contains(local, kw) {
			return true
		}
	}
	return false
}
