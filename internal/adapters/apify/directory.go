package apify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/docoi/Smart-S/internal/accounts"
	"github.com/docoi/Smart-S/internal/domain"
	"github.com/docoi/Smart-S/internal/domain/scoring"
)

// employeesActor lists the people attached to a LinkedIn company page.
const employeesActor = "harvestapi~linkedin-company-employees"

// maxEmployees caps one directory pull. The actor bills per profile.
const maxEmployees = 30

// directoryTimeout caps a single listing run.
const directoryTimeout = 10 * time.Minute

// Directory lists a company's employees through the platform, paying with
// call-count quota.
type Directory struct {
	client *Client
	pool   *accounts.Pool
	log    zerolog.Logger
}

// NewDirectory builds an employee directory over the pool.
func NewDirectory(client *Client, pool *accounts.Pool, log zerolog.Logger) *Directory {
	return &Directory{
		client: client,
		pool:   pool,
		log:    log.With().Str("component", "employee_directory").Logger(),
	}
}

type employeeItem struct {
	Name        string `json:"name"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Position    string `json:"position"`
	About       string `json:"about"`
	LinkedInURL string `json:"linkedinUrl"`
	Location    struct {
		LinkedInText string `json:"linkedinText"`
	} `json:"location"`
	Email string `json:"email"`
}

// Employees pulls up to maxEmployees people from the company's LinkedIn
// page. This actor bills per run, so the paying account is chosen by local
// call-count quota rather than dollars.
func (d *Directory) Employees(ctx context.Context, linkedinURL, companyDomain string) ([]domain.Contact, error) {
	account, err := d.pool.Select(ctx, accounts.ByCalls)
	if err != nil {
		return nil, fmt.Errorf("selecting account for employee listing: %w", err)
	}
	d.log.Info().
		Str("linkedin_url", linkedinURL).
		Str("account", account.Label).
		Msg("listing company employees")

	input := map[string]any{
		"companies":          []string{linkedinURL},
		"maxItems":           maxEmployees,
		"profileScraperMode": "full_email",
		"includeEmails":      true,
	}
	items, err := d.client.RunActorSync(ctx, account.Token, employeesActor, input, directoryTimeout)
	if err != nil {
		return nil, fmt.Errorf("listing employees of %s: %w", linkedinURL, err)
	}
	if err := d.pool.RecordUsage(account); err != nil {
		d.log.Warn().Err(err).Msg("usage not recorded")
	}

	contacts := make([]domain.Contact, 0, len(items))
	for _, raw := range items {
		var item employeeItem
		if err := json.Unmarshal(raw, &item); err != nil {
			d.log.Warn().Err(err).Msg("skipping undecodable employee item")
			continue
		}
		contact, ok := toContact(item, companyDomain)
		if !ok {
			continue
		}
		contacts = append(contacts, contact)
	}
	d.log.Info().Int("count", len(contacts)).Msg("employees listed")
	return contacts, nil
}

// toContact maps one actor item onto a Contact. People whose names cannot be
// split into first and last are dropped since no email can be guessed for
// them.
func toContact(item employeeItem, companyDomain string) (domain.Contact, bool) {
	c := domain.Contact{
		ID:          uuid.New(),
		Title:       item.Position,
		Description: item.About,
		LinkedInURL: item.LinkedInURL,
		Location:    item.Location.LinkedInText,
		Domain:      companyDomain,
		Source:      domain.SourceLinkedIn,
	}

	name := item.Name
	if name == "" {
		name = item.FirstName + " " + item.LastName
	}
	if !c.SetName(name) {
		return domain.Contact{}, false
	}
	if item.FirstName != "" && item.LastName != "" {
		c.FirstName = item.FirstName
		c.LastName = item.LastName
	}

	if item.Email != "" {
		c.Email = item.Email
		c.EmailSource = "linkedin_profile"
	}
	c.Priority = scoring.Priority(c.Title)
	return c, true
}
