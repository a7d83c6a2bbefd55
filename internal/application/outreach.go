package application

import (
	"fmt"
	"strings"

	"github.com/docoi/Smart-S/internal/domain"
)

// ComposeOutreach builds the outreach message for one contact. The copy is
// deterministic so runs are reproducible and testable.
func ComposeOutreach(c domain.Contact, companyDomain string) domain.OutboundEmail {
	company := companyName(companyDomain)
	subject := fmt.Sprintf("Fire safety compliance check for %s", company)

	greeting := "Hello"
	if c.FirstName != "" {
		greeting = "Hi " + c.FirstName
	}

	role := ""
	if c.Title != "" {
		role = fmt.Sprintf(" As %s you will know how quickly an overdue inspection becomes a liability.", articleFor(c.Title)+" "+c.Title)
	}

	body := fmt.Sprintf(`%s,

I came across %s while researching local businesses and wanted to reach out about your fire protection arrangements.%s

We help companies like yours stay compliant with fire safety regulations through scheduled extinguisher servicing, alarm testing, and risk assessments, with one engineer and one invoice covering the lot.

Would you be open to a short call this week to see whether we could save you time on your next inspection cycle?

Best regards,
The Fire Safety Team`, greeting, company, role)

	return domain.OutboundEmail{
		Contact: c,
		Subject: subject,
		Body:    body,
	}
}

// companyName turns "acme-fire.co.uk" into "Acme Fire".
func companyName(companyDomain string) string {
	host, _, _ := strings.Cut(companyDomain, ".")
	if host == "" {
		return companyDomain
	}
	words := strings.FieldsFunc(host, func(r rune) bool { return r == '-' || r == '_' })
	for i, word := range words {
		if word != "" {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

func articleFor(title string) string {
	if title == "" {
		return "a"
	}
	switch strings.ToLower(title)[0] {
	case 'a', 'e', 'i', 'o', 'u':
		return "an"
	}
	return "a"
}
