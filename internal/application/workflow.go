// Package application wires the ports together into the lead-generation
// workflow: crawl the website, find the company on LinkedIn, discover and
// verify employee emails, score the contacts, and send outreach to the best
// two.
package application

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/docoi/Smart-S/internal/domain"
	"github.com/docoi/Smart-S/internal/domain/emails"
	"github.com/docoi/Smart-S/internal/domain/scoring"
	"github.com/docoi/Smart-S/internal/ports"
)

// coolDown separates successive paid platform calls.
const coolDown = 3 * time.Second

// maxPatternProbes is how many employees are probed with the full candidate
// list while hunting for the company's email pattern. Probing is expensive
// (each person costs up to emails.CandidateCount checks) so only the most
// senior few are tried.
const maxPatternProbes = 5

// maxFallbackContacts bounds the website-staff fallback.
const maxFallbackContacts = 3

// maxOutreach is how many contacts receive an email per run.
const maxOutreach = 2

// Workflow runs the pipeline for one company website.
type Workflow struct {
	crawler   ports.SiteCrawler
	directory ports.EmployeeDirectory
	verifier  ports.EmailVerifier
	extractor ports.StaffExtractor
	mailer    ports.Mailer
	log       zerolog.Logger

	sleep func(ctx context.Context, d time.Duration)
}

// New assembles a workflow from its ports.
func New(
	crawler ports.SiteCrawler,
	directory ports.EmployeeDirectory,
	verifier ports.EmailVerifier,
	extractor ports.StaffExtractor,
	mailer ports.Mailer,
	log zerolog.Logger,
) *Workflow {
	return &Workflow{
		crawler:   crawler,
		directory: directory,
		verifier:  verifier,
		extractor: extractor,
		mailer:    mailer,
		log:       log.With().Str("component", "workflow").Logger(),
		sleep:     sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// Run executes the full pipeline for one website and always returns a
// result, even on failure.
func (w *Workflow) Run(ctx context.Context, websiteURL string) *domain.WorkflowResult {
	result := &domain.WorkflowResult{
		RunID:      uuid.New(),
		WebsiteURL: websiteURL,
		Domain:     domain.SiteDomain(websiteURL),
		Status:     domain.StatusStarted,
		Path:       domain.PathUnknown,
	}
	w.log.Info().Str("run_id", result.RunID.String()).Str("url", websiteURL).Msg("workflow started")

	snap, err := w.crawler.Crawl(ctx, websiteURL)
	if err != nil {
		w.log.Error().Err(err).Msg("website crawl failed")
		result.Status = domain.StatusFailed
		result.Error = err.Error()
		return result
	}

	// Website staff are extracted up front: they feed the fallback path and
	// cost nothing extra once the page is already crawled.
	staff, err := w.extractor.ExtractStaff(ctx, snap.Text, websiteURL)
	if err != nil {
		w.log.Warn().Err(err).Msg("staff extraction failed, continuing without website staff")
	}
	result.WebsiteStaff = staff
	result.LinkedInURL = snap.LinkedInURL

	if snap.LinkedInURL == "" {
		w.log.Warn().Msg("no company LinkedIn page found on website")
		result.Status = domain.StatusFailedNoLinkedIn
		return result
	}

	w.sleep(ctx, coolDown)

	verified := w.linkedinPipeline(ctx, snap.LinkedInURL, result)
	if len(verified) == 0 {
		verified = w.websiteFallback(ctx, result)
	}
	if len(verified) == 0 {
		result.Status = domain.StatusFailedNoContacts
		return result
	}
	result.VerifiedContacts = verified

	result.EmailsSent = w.sendOutreach(ctx, result.Domain, verified)
	result.Status = domain.StatusCompleted
	w.log.Info().
		Int("verified", len(verified)).
		Int("sent", len(result.EmailsSent)).
		Str("path", result.Path).
		Msg("workflow completed")
	return result
}

// linkedinPipeline lists the company's employees, discovers and verifies
// addresses for them, and returns the scored contacts that ended up with a
// verified email.
func (w *Workflow) linkedinPipeline(ctx context.Context, linkedinURL string, result *domain.WorkflowResult) []domain.Contact {
	employees, err := w.directory.Employees(ctx, linkedinURL, result.Domain)
	if err != nil {
		w.log.Warn().Err(err).Msg("employee listing failed, falling back to website staff")
		return nil
	}
	if len(employees) == 0 {
		w.log.Warn().Msg("company has no listed employees")
		return nil
	}

	people := employees[:0:0]
	for _, c := range employees {
		if !w.extractor.IsPerson(ctx, c.Name, c.Title, result.Domain) {
			w.log.Debug().Str("name", c.Name).Msg("listing entry is not a person")
			continue
		}
		people = append(people, c)
	}
	result.Employees = people
	if len(people) == 0 {
		return nil
	}

	w.discoverEmails(ctx, result.Domain, people)

	verified := people[:0:0]
	for i := range people {
		w.scoreContact(&people[i])
		if people[i].Email != "" && people[i].Verified {
			verified = append(verified, people[i])
		}
	}
	if len(verified) > 0 {
		result.Path = domain.PathLinkedIn
	}
	return verified
}

// discoverEmails fills in verified addresses for as many contacts as
// possible. The company's naming pattern is learned once, from a profile
// address or by probing candidates for the most senior people, and then
// replayed for everyone else.
func (w *Workflow) discoverEmails(ctx context.Context, companyDomain string, contacts []domain.Contact) {
	var pattern emails.Template
	havePattern := false

	// Addresses already on the profiles are the cheapest signal.
	for i := range contacts {
		c := &contacts[i]
		if c.Email == "" {
			continue
		}
		if !w.verifier.Verify(ctx, c.Email) {
			c.Email = ""
			c.EmailSource = ""
			continue
		}
		c.Verified = true
		if !havePattern {
			if tpl, ok := emails.Extract(c.Email, c.FirstName, c.LastName, companyDomain); ok {
				pattern, havePattern = tpl, true
				w.log.Info().Str("pattern", string(tpl)).Str("learned_from", c.Name).Msg("email pattern learned")
			}
		}
	}

	if !havePattern {
		pattern, havePattern = w.probeForPattern(ctx, companyDomain, contacts)
	}

	for i := range contacts {
		c := &contacts[i]
		if c.Email != "" {
			continue
		}
		if havePattern {
			addr, err := pattern.Apply(c.FirstName, c.MiddleName, c.LastName, companyDomain)
			if err == nil && w.verifier.Verify(ctx, addr) {
				c.Email = addr
				c.EmailSource = "pattern"
				c.Verified = true
				continue
			}
		}
	}
}

// probeForPattern walks the candidate list for the few most senior contacts
// until one address verifies, then abstracts it into a template. The probed
// contact keeps the found address either way.
func (w *Workflow) probeForPattern(ctx context.Context, companyDomain string, contacts []domain.Contact) (emails.Template, bool) {
	order := make([]int, 0, len(contacts))
	for i := range contacts {
		if contacts[i].Email == "" {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scoring.TestPriority(contacts[order[a]].Title) > scoring.TestPriority(contacts[order[b]].Title)
	})
	if len(order) > maxPatternProbes {
		order = order[:maxPatternProbes]
	}

	for _, idx := range order {
		c := &contacts[idx]
		for _, candidate := range emails.Candidates(c.FirstName, c.LastName, companyDomain) {
			if !w.verifier.Verify(ctx, candidate) {
				continue
			}
			c.Email = candidate
			c.EmailSource = "candidate_probe"
			c.Verified = true
			if tpl, ok := emails.Extract(candidate, c.FirstName, c.LastName, companyDomain); ok {
				w.log.Info().Str("pattern", string(tpl)).Str("learned_from", c.Name).Msg("email pattern learned")
				return tpl, true
			}
			// info@ and friends verify but carry no name pattern. Keep
			// the address, keep probing the next person.
			break
		}
	}
	return "", false
}

// websiteFallback discovers addresses for the best few website-extracted
// staff when the LinkedIn route produced nothing.
func (w *Workflow) websiteFallback(ctx context.Context, result *domain.WorkflowResult) []domain.Contact {
	if len(result.WebsiteStaff) == 0 {
		return nil
	}
	w.log.Info().Msg("falling back to website staff contacts")

	staff := make([]domain.Contact, len(result.WebsiteStaff))
	copy(staff, result.WebsiteStaff)
	for i := range staff {
		w.scoreContact(&staff[i])
	}
	sort.SliceStable(staff, func(a, b int) bool {
		return staff[a].RelevanceScore > staff[b].RelevanceScore
	})
	if len(staff) > maxFallbackContacts {
		staff = staff[:maxFallbackContacts]
	}

	verified := staff[:0:0]
	for i := range staff {
		c := &staff[i]
		if c.Email != "" && w.verifier.Verify(ctx, c.Email) {
			c.Verified = true
			verified = append(verified, *c)
			continue
		}
		for _, candidate := range emails.Candidates(c.FirstName, c.LastName, result.Domain) {
			if w.verifier.Verify(ctx, candidate) {
				c.Email = candidate
				c.EmailSource = "candidate_probe"
				c.Verified = true
				verified = append(verified, *c)
				break
			}
		}
	}
	result.FallbackContacts = staff
	if len(verified) > 0 {
		result.Path = domain.PathWebsiteFallback
	}
	return verified
}

func (w *Workflow) scoreContact(c *domain.Contact) {
	c.RelevanceScore = scoring.Score(c.Name, c.Title, c.Description)
	c.RelevanceReason = scoring.Reason(c.Name, c.Title)
	if c.Priority == "" {
		c.Priority = scoring.Priority(c.Title)
	}
}

// sendOutreach emails the highest-scoring verified contacts. A delivery
// failure skips that contact without aborting the run.
func (w *Workflow) sendOutreach(ctx context.Context, companyDomain string, verified []domain.Contact) []domain.Contact {
	targets := make([]domain.Contact, len(verified))
	copy(targets, verified)
	sort.SliceStable(targets, func(a, b int) bool {
		return targets[a].RelevanceScore > targets[b].RelevanceScore
	})
	if len(targets) > maxOutreach {
		targets = targets[:maxOutreach]
	}

	sent := targets[:0:0]
	for _, target := range targets {
		msg := ComposeOutreach(target, companyDomain)
		if err := w.mailer.Send(ctx, msg); err != nil {
			w.log.Error().Err(err).Str("contact", target.Name).Msg("outreach delivery failed")
			continue
		}
		target.EmailSent = true
		target.Subject = msg.Subject
		sent = append(sent, target)
	}
	return sent
}
