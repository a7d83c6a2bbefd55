package emails

import (
	"errors"
	"fmt"
	"strings"
)

// Template is a parameterized email address derived from one verified
// address, e.g. "{f}.{last}@{domain}". Placeholders: {first}, {middle},
// {last}, {f}, {m}, {l}. A template learned on one person is replayed for
// every other person at the same domain.
type Template string

// ErrUnresolved is returned by Apply when a placeholder cannot be filled for
// the given name (e.g. {middle} for a person without a middle name).
var ErrUnresolved = errors.New("emails: template placeholder unresolved")

func initial(s string) string {
	if s == "" {
		return ""
	}
	return s[:1]
}

// Apply substitutes a person's name parts into the template and returns the
// full address. Name parts are sanitized the same way Candidates sanitizes
// them, so a template round-trips through Extract exactly.
func (t Template) Apply(firstName, middleName, lastName, domain string) (string, error) {
	first := sanitizeName(firstName)
	middle := sanitizeName(middleName)
	last := sanitizeName(lastName)

	s := string(t)
	s = strings.TrimSuffix(s, "@{domain}")
	r := strings.NewReplacer(
		"{first}", first,
		"{middle}", middle,
		"{last}", last,
		"{f}", initial(first),
		"{m}", initial(middle),
		"{l}", initial(last),
	)
	local := r.Replace(s)
	if strings.ContainsAny(local, "{}") || local == "" {
		return "", fmt.Errorf("%w: %q for %q %q", ErrUnresolved, t, firstName, lastName)
	}
	return local + "@" + strings.ToLower(domain), nil
}

// segment is a run of the local part that is either still literal text or an
// already-substituted placeholder. Replacement only ever happens inside
// literal segments, so a placeholder can never be corrupted by a later,
// shorter literal (the "Ed Edwards" trap).
type segment struct {
	text        string
	placeholder bool
}

func replaceFirst(segs []segment, literal, placeholder string) []segment {
	if literal == "" {
		return segs
	}
	for i, seg := range segs {
		if seg.placeholder {
			continue
		}
		idx := strings.Index(seg.text, literal)
		if idx < 0 {
			continue
		}
		out := make([]segment, 0, len(segs)+2)
		out = append(out, segs[:i]...)
		if idx > 0 {
			out = append(out, segment{text: seg.text[:idx]})
		}
		out = append(out, segment{text: placeholder, placeholder: true})
		if rest := seg.text[idx+len(literal):]; rest != "" {
			out = append(out, segment{text: rest})
		}
		return append(out, segs[i+1:]...)
	}
	return segs
}

// Extract abstracts an accepted address into a reusable Template. Literal
// name parts are replaced with placeholders: the longer of the full first and
// last names first (the disambiguation rule for names that are substrings of
// each other), then the shorter, then the first and last initials. Extraction
// only succeeds when at least one placeholder was produced and the template
// reproduces the original address when applied back to the same name.
func Extract(acceptedEmail, firstName, lastName, domain string) (Template, bool) {
	at := strings.Index(acceptedEmail, "@")
	if at <= 0 {
		return "", false
	}
	local := strings.ToLower(acceptedEmail[:at])
	first := sanitizeName(firstName)
	last := sanitizeName(lastName)
	if first == "" || last == "" {
		return "", false
	}

	type repl struct{ literal, placeholder string }
	ordered := []repl{
		{first, "{first}"},
		{last, "{last}"},
	}
	if len(last) > len(first) {
		ordered[0], ordered[1] = ordered[1], ordered[0]
	}
	ordered = append(ordered,
		repl{initial(first), "{f}"},
		repl{initial(last), "{l}"},
	)

	segs := []segment{{text: local}}
	for _, r := range ordered {
		segs = replaceFirst(segs, r.literal, r.placeholder)
	}

	// Everything left over outside the placeholders must be separator
	// punctuation. A lone initial matching inside an unrelated word
	// (e.g. the "s" of "accounts") is not a pattern.
	var b strings.Builder
	substituted := false
	for _, seg := range segs {
		if !seg.placeholder && strings.Trim(seg.text, "._-") != "" {
			return "", false
		}
		b.WriteString(seg.text)
		substituted = substituted || seg.placeholder
	}
	if !substituted {
		return "", false
	}

	tmpl := Template(b.String() + "@{domain}")
	rebuilt, err := tmpl.Apply(firstName, "", lastName, domain)
	if err != nil || rebuilt != local+"@"+strings.ToLower(domain) {
		return "", false
	}
	return tmpl, true
}
