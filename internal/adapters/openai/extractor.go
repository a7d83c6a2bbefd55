// Package openai extracts staff members from raw website text and validates
// person names, using the OpenAI chat completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/docoi/Smart-S/internal/domain"
	"github.com/docoi/Smart-S/internal/domain/scoring"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Models. Extraction reads long documents and needs the stronger model;
// person validation is a yes/no call the small model handles fine.
const (
	extractionModel = "gpt-4o"
	validationModel = "gpt-4o-mini"
)

// minContent is the least website text worth sending to the model. Below
// this the page is a stub or a bot wall and extraction would hallucinate.
const minContent = 2000

// maxContent caps what one extraction request may carry.
const maxContent = 100000

// sectionRadius is how many lines around a staff-keyword hit are kept when
// the page is too long to send whole.
const sectionRadius = 50

// ErrContentTooShort reports a page with too little text to extract from.
var ErrContentTooShort = fmt.Errorf("openai: page content shorter than %d characters", minContent)

// Extractor implements staff extraction and person validation.
type Extractor struct {
	apiKey  string
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithBaseURL points the extractor at a different endpoint, used in tests.
func WithBaseURL(u string) Option {
	return func(e *Extractor) { e.baseURL = u }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(e *Extractor) { e.http = h }
}

// New builds an extractor for the given API key.
func New(apiKey string, log zerolog.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 120 * time.Second},
		log:     log.With().Str("component", "staff_extractor").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var staffKeywords = []string{
	"about us", "our team", "meet the team", "our people", "leadership",
	"management team", "staff", "team", "directors", "employees",
	"who we are", "our story",
}

// staffSections pulls the regions of the page most likely to name people:
// every line containing a staff keyword plus sectionRadius lines either
// side. Falls back to the whole page when nothing matches.
func staffSections(content string) string {
	lines := strings.Split(content, "\n")
	keep := make([]bool, len(lines))
	matched := false

	for i, line := range lines {
		lower := strings.ToLower(line)
		for _, kw := range staffKeywords {
			if !strings.Contains(lower, kw) {
				continue
			}
			matched = true
			lo := max(0, i-sectionRadius)
			hi := min(len(lines), i+sectionRadius+1)
			for j := lo; j < hi; j++ {
				keep[j] = true
			}
			break
		}
	}
	if !matched {
		return content
	}

	var b strings.Builder
	for i, line := range lines {
		if keep[i] {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// truncateUTF8 cuts s to at most limit bytes, backing off to a rune boundary
// so a multi-byte character is never split at the cap.
func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

const extractionPrompt = `Extract all staff members, employees, team members, and key people mentioned in this website content.

For each person found, return their name, job position/title, email address if shown, and profile link if shown.

Return ONLY a JSON array, no other text. Each element must be an object with keys "name", "position", "email", "link". Use an empty string for unknown fields. Return [] if no people are named.

Website: %s

Content:
%s`

type extractedPerson struct {
	Name     string `json:"name"`
	Position string `json:"position"`
	Email    string `json:"email"`
	Link     string `json:"link"`
}

// ExtractStaff asks the model for every person named in the page text and
// returns them as website-sourced contacts. Pages with too little text are
// rejected before any tokens are spent.
func (e *Extractor) ExtractStaff(ctx context.Context, content, siteURL string) ([]domain.Contact, error) {
	if len(content) < minContent {
		return nil, ErrContentTooShort
	}

	sections := truncateUTF8(staffSections(content), maxContent)

	reply, err := e.complete(ctx, extractionModel, fmt.Sprintf(extractionPrompt, siteURL, sections))
	if err != nil {
		return nil, fmt.Errorf("extracting staff from %s: %w", siteURL, err)
	}

	people, err := parseStaffReply(reply)
	if err != nil {
		return nil, fmt.Errorf("parsing staff extraction for %s: %w", siteURL, err)
	}

	companyDomain := domain.SiteDomain(siteURL)
	contacts := make([]domain.Contact, 0, len(people))
	for _, p := range people {
		if !ValidStaffName(p.Name, companyDomain) {
			e.log.Debug().Str("name", p.Name).Msg("rejected extracted name")
			continue
		}
		c := domain.Contact{
			ID:          uuid.New(),
			Title:       p.Position,
			LinkedInURL: p.Link,
			Domain:      companyDomain,
			Source:      domain.SourceWebsite,
		}
		if !c.SetName(p.Name) {
			continue
		}
		if p.Email != "" {
			c.Email = strings.ToLower(p.Email)
			c.EmailSource = "website"
		}
		c.Priority = scoring.Priority(c.Title)
		contacts = append(contacts, c)
	}
	e.log.Info().Int("count", len(contacts)).Str("url", siteURL).Msg("staff extracted")
	return contacts, nil
}

// parseStaffReply tolerates replies that wrap the JSON array in prose or a
// code fence by slicing from the first '[' to the last ']'.
func parseStaffReply(reply string) ([]extractedPerson, error) {
	start := strings.Index(reply, "[")
	end := strings.LastIndex(reply, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in model reply")
	}

	var people []extractedPerson
	if err := json.Unmarshal([]byte(reply[start:end+1]), &people); err != nil {
		return nil, fmt.Errorf("decoding model reply: %w", err)
	}
	return people, nil
}

// Tokens that mark a "name" as an organization or a department rather than a
// person.
var companyTokens = []string{
	"ltd", "limited", "inc", "llc", "plc", "corp", "corporation",
	"group", "company", "team", "department", "marketing", "sales",
	"support", "admin", "office", "services", "solutions",
}

// ValidStaffName filters the model's output: a keepable name has at least two
// tokens, none of which is a company marker, and is not just the company's
// own name.
func ValidStaffName(name, companyDomain string) bool {
	name = strings.TrimSpace(name)
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return false
	}

	lower := strings.ToLower(name)
	for _, part := range parts {
		word := strings.Trim(strings.ToLower(part), ".,")
		for _, tok := range companyTokens {
			if word == tok {
				return false
			}
		}
	}

	// "Acme Fire" on acmefire.co.uk is the company, not a person.
	collapsed := strings.ReplaceAll(lower, " ", "")
	host, _, _ := strings.Cut(companyDomain, ".")
	if host != "" && collapsed == host {
		return false
	}
	return true
}

const personPrompt = `Is "%s" the name of an individual PERSON, or is it a COMPANY, department, or other organization? Job title: %s. Appears on the website of: %s.

Answer with exactly one word: PERSON or COMPANY.`

// IsPerson asks the small model whether a harvested name belongs to a real
// person. On any API failure it falls back to the basic shape check so a
// model outage never empties the contact list.
func (e *Extractor) IsPerson(ctx context.Context, name, title, company string) bool {
	reply, err := e.complete(ctx, validationModel, fmt.Sprintf(personPrompt, name, title, company))
	if err != nil {
		e.log.Warn().Err(err).Str("name", name).Msg("person validation failed, using shape check")
		return ValidStaffName(name, company)
	}
	return strings.Contains(strings.ToUpper(reply), "PERSON")
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (e *Extractor) complete(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("encoding chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling openai: %w", err)
	}
	defer resp.Body.Close()

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding openai response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("openai: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
