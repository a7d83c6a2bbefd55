package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContactSource tags where a contact was discovered.
type ContactSource string

const (
	SourceLinkedIn ContactSource = "linkedin"
	SourceWebsite  ContactSource = "website"
)

// Priority buckets derived from a contact's job title.
const (
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityStandard = "standard"
)

// Contact represents a person discovered during a run. It is created when a
// person is first seen (LinkedIn listing or website staff extraction) and
// enriched in place as email discovery and scoring proceed.
type Contact struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	FirstName   string        `json:"first_name"`
	MiddleName  string        `json:"middle_name,omitempty"`
	LastName    string        `json:"last_name"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	LinkedInURL string        `json:"linkedin_url,omitempty"`
	Location    string        `json:"location,omitempty"`
	Domain      string        `json:"domain"`
	Source      ContactSource `json:"source"`

	Email       string `json:"email,omitempty"`
	EmailSource string `json:"email_source,omitempty"`
	Verified    bool   `json:"verified"`

	RelevanceScore  int    `json:"relevance_score"`
	RelevanceReason string `json:"relevance_reason,omitempty"`
	Priority        string `json:"priority,omitempty"`

	EmailSent bool   `json:"email_sent"`
	Subject   string `json:"subject,omitempty"`
}

// SetName stores the full name and its first/middle/last decomposition.
// Returns false when the name has fewer than two tokens and cannot be used
// for email-candidate generation.
func (c *Contact) SetName(full string) bool {
	parts := strings.Fields(strings.TrimSpace(full))
	if len(parts) < 2 {
		c.Name = strings.TrimSpace(full)
		return false
	}
	c.Name = strings.Join(parts, " ")
	c.FirstName = parts[0]
	c.LastName = parts[len(parts)-1]
	if len(parts) > 2 {
		c.MiddleName = strings.Join(parts[1:len(parts)-1], " ")
	}
	return true
}

// Account is one credentialed slot for the scraping vendor. Accounts are
// loaded from numbered environment variables at startup and never deleted,
// only deactivated.
type Account struct {
	ID     int    `json:"id"`
	Token  string `json:"-"` // never expose credentials in JSON
	Label  string `json:"name"`
	Active bool   `json:"active"`
}

// AccountUsage is the locally tracked call-count quota for one account.
// Persisted through ports.UsageStore after every mutation. Usage never
// decreases except via the monthly reset.
type AccountUsage struct {
	CallsUsed  int    `json:"runs_used"`
	CallsLimit int    `json:"runs_limit"`
	LastReset  string `json:"last_reset"` // "2006-01"
}

// Remaining reports the call allowance left on the account.
func (u AccountUsage) Remaining() int {
	return u.CallsLimit - u.CallsUsed
}

// QuotaBalance is a real-time dollar-denominated quota read from the vendor's
// limits endpoint.
type QuotaBalance struct {
	UsedUSD           float64 `json:"usd_used"`
	LimitUSD          float64 `json:"usd_limit"`
	RemainingUSD      float64 `json:"usd_remaining"`
	ComputeUnitsUsed  int     `json:"compute_units_used"`
	ComputeUnitsLimit int     `json:"compute_units_limit"`
}

// CreditSnapshot is one entry of the rolling credit-monitoring log, appended
// on every account selection. The log keeps only the most recent 100 entries.
type CreditSnapshot struct {
	Timestamp time.Time    `json:"timestamp"`
	Account   string       `json:"account"`
	Balance   QuotaBalance `json:"real_time_usage"`
	CallsUsed int          `json:"calls_used,omitempty"`
	CallsLeft int          `json:"calls_remaining,omitempty"`
}

// SiteSnapshot is what one crawl of a company website yields: the visible
// text, harvested links, and the best-guess company LinkedIn URL.
type SiteSnapshot struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Text        string   `json:"text"`
	LinkedInURL string   `json:"linkedin_url"`
	SocialLinks []string `json:"social_links"`
	Emails      []string `json:"emails"`
}

// OutboundEmail is one composed outreach message. Delivery always goes to the
// configured test recipient regardless of the contact's own address.
type OutboundEmail struct {
	Contact Contact
	Subject string
	Body    string
}

// Workflow terminal and intermediate statuses.
const (
	StatusStarted          = "started"
	StatusFailedNoLinkedIn = "failed_no_linkedin"
	StatusFailedNoContacts = "failed_no_contacts"
	StatusCompleted        = "completed"
	StatusFailed           = "failed"
)

// Workflow paths.
const (
	PathUnknown         = "unknown"
	PathLinkedIn        = "linkedin_pipeline"
	PathWebsiteFallback = "website_fallback"
)

// WorkflowResult aggregates everything one run produced.
type WorkflowResult struct {
	RunID            uuid.UUID `json:"run_id"`
	WebsiteURL       string    `json:"website_url"`
	Domain           string    `json:"domain"`
	WebsiteStaff     []Contact `json:"website_staff"`
	LinkedInURL      string    `json:"linkedin_url"`
	Employees        []Contact `json:"linkedin_employees"`
	FallbackContacts []Contact `json:"fallback_contacts"`
	VerifiedContacts []Contact `json:"verified_contacts"`
	EmailsSent       []Contact `json:"emails_sent"`
	Status           string    `json:"status"`
	Path             string    `json:"workflow_path"`
	Error            string    `json:"error,omitempty"`
}

// SiteDomain strips the scheme and www prefix from a website URL, yielding
// the mail domain used for candidate generation.
func SiteDomain(websiteURL string) string {
	s := strings.TrimSpace(websiteURL)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimPrefix(s, "www.")
	return strings.ToLower(s)
}
