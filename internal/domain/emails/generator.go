// Package emails contains the pure string heuristics of email discovery:
// candidate generation from a fixed set of naming conventions, pattern
// template learning/replay, and the local-part plausibility check used for
// catch-all domains.
package emails

import "strings"

// goldenTemplates is the fixed, ordered list of 33 naming conventions tried
// for every person. Order matters: earlier entries are preferred when
// verification scores tie, and the index is reported as the email source.
// The last entry is always the generic info@ catch-all.
var goldenTemplates = [...]Template{
	"{first}.{last}",
	"{first}",
	"{last}",
	"{first}{last}",
	"{first}_{last}",
	"{first}-{last}",
	"{f}{last}",
	"{f}.{last}",
	"{f}_{last}",
	"{f}-{last}",
	"{first}{l}",
	"{first}.{l}",
	"{first}_{l}",
	"{first}-{l}",
	"{last}.{first}",
	"{last}_{first}",
	"{last}-{first}",
	"{last}{first}",
	"{last}{f}",
	"{last}.{f}",
	"{last}_{f}",
	"{last}-{f}",
	"{f}{l}",
	"{f}.{l}",
	"{f}_{l}",
	"{f}-{l}",
	"{l}{f}",
	"{l}.{f}",
	"{l}_{f}",
	"{l}-{f}",
	"{f}",
	"{l}",
	"info",
}

// CandidateCount is the number of addresses Candidates produces for a
// well-formed name.
const CandidateCount = len(goldenTemplates)

// sanitizeName lower-cases a name part and strips everything outside a-z.
func sanitizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Candidates produces the fixed ordered sequence of address guesses for a
// person at a domain. Entries are not de-duplicated, so the result always has
// exactly CandidateCount elements and the final entry is always info@domain.
// Returns nil when either name part sanitizes to empty.
func Candidates(firstName, lastName, domain string) []string {
	first := sanitizeName(firstName)
	last := sanitizeName(lastName)
	if first == "" || last == "" {
		return nil
	}

	out := make([]string, 0, len(goldenTemplates))
	for _, t := range goldenTemplates {
		addr, err := t.Apply(first, "", last, domain)
		if err != nil {
			continue // unreachable for the fixed set; templates use no middle name
		}
		out = append(out, addr)
	}
	return out
}
