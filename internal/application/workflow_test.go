package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docoi/Smart-S/internal/domain"
)

type stubCrawler struct {
	snap *domain.SiteSnapshot
	err  error
}

func (s *stubCrawler) Crawl(context.Context, string) (*domain.SiteSnapshot, error) {
	return s.snap, s.err
}

type stubDirectory struct {
	employees []domain.Contact
	err       error
	calls     int
}

func (s *stubDirectory) Employees(context.Context, string, string) ([]domain.Contact, error) {
	s.calls++
	return s.employees, s.err
}

type stubVerifier struct {
	accept map[string]bool
	checks []string
}

func (s *stubVerifier) Verify(_ context.Context, email string) bool {
	s.checks = append(s.checks, email)
	return s.accept[email]
}

type stubExtractor struct {
	staff []domain.Contact
}

func (s *stubExtractor) ExtractStaff(context.Context, string, string) ([]domain.Contact, error) {
	return s.staff, nil
}

func (s *stubExtractor) IsPerson(context.Context, string, string, string) bool { return true }

type stubMailer struct {
	sent []domain.OutboundEmail
	err  error
}

func (s *stubMailer) Send(_ context.Context, msg domain.OutboundEmail) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func employee(name, title, email string) domain.Contact {
	c := domain.Contact{ID: uuid.New(), Source: domain.SourceLinkedIn, Domain: "example.com"}
	c.SetName(name)
	c.Title = title
	if email != "" {
		c.Email = email
		c.EmailSource = "linkedin_profile"
	}
	return c
}

func newTestWorkflow(crawler *stubCrawler, directory *stubDirectory, verifier *stubVerifier, extractor *stubExtractor, mailer *stubMailer) *Workflow {
	w := New(crawler, directory, verifier, extractor, mailer, zerolog.Nop())
	w.sleep = func(context.Context, time.Duration) {}
	return w
}

func TestRunCrawlFailure(t *testing.T) {
	crawler := &stubCrawler{err: errors.New("site unreachable")}
	directory := &stubDirectory{}
	w := newTestWorkflow(crawler, directory, &stubVerifier{}, &stubExtractor{}, &stubMailer{})

	result := w.Run(context.Background(), "https://example.com")
	assert.Equal(t, domain.StatusFailed, result.Status)
	assert.Contains(t, result.Error, "site unreachable")
	assert.Zero(t, directory.calls)
}

func TestRunNoLinkedInIsTerminal(t *testing.T) {
	crawler := &stubCrawler{snap: &domain.SiteSnapshot{URL: "https://example.com", Text: "hello"}}
	directory := &stubDirectory{}
	w := newTestWorkflow(crawler, directory, &stubVerifier{}, &stubExtractor{}, &stubMailer{})

	result := w.Run(context.Background(), "https://example.com")
	assert.Equal(t, domain.StatusFailedNoLinkedIn, result.Status)
	assert.Equal(t, domain.PathUnknown, result.Path)
	assert.Empty(t, result.EmailsSent)
	assert.Zero(t, directory.calls, "no employee listing without a LinkedIn page")
}

func TestRunLearnsPatternFromProfileEmail(t *testing.T) {
	crawler := &stubCrawler{snap: &domain.SiteSnapshot{
		URL:         "https://example.com",
		LinkedInURL: "https://linkedin.com/company/example",
	}}
	directory := &stubDirectory{employees: []domain.Contact{
		employee("John Smith", "Managing Director", "j.smith@example.com"),
		employee("Jane Doe", "Operations Manager", ""),
	}}
	verifier := &stubVerifier{accept: map[string]bool{
		"j.smith@example.com": true,
		"j.doe@example.com":   true,
	}}
	mailer := &stubMailer{}
	w := newTestWorkflow(crawler, directory, verifier, &stubExtractor{}, mailer)

	result := w.Run(context.Background(), "https://example.com")
	require.Equal(t, domain.StatusCompleted, result.Status)
	assert.Equal(t, domain.PathLinkedIn, result.Path)

	byName := map[string]domain.Contact{}
	for _, c := range result.VerifiedContacts {
		byName[c.Name] = c
	}
	require.Contains(t, byName, "Jane Doe")
	assert.Equal(t, "j.doe@example.com", byName["Jane Doe"].Email)
	assert.Equal(t, "pattern", byName["Jane Doe"].EmailSource)
	assert.True(t, byName["Jane Doe"].Verified)

	assert.Contains(t, verifier.checks, "j.doe@example.com", "pattern-derived addresses are re-verified")
	assert.Len(t, mailer.sent, 2)
}

func TestRunProbesCandidatesWhenNoProfileEmail(t *testing.T) {
	crawler := &stubCrawler{snap: &domain.SiteSnapshot{
		URL:         "https://example.com",
		LinkedInURL: "https://linkedin.com/company/example",
	}}
	directory := &stubDirectory{employees: []domain.Contact{
		employee("Jane Doe", "University Student", ""),
		employee("John Smith", "Managing Director", ""),
	}}
	// Only the {f}{last} convention exists at this company.
	verifier := &stubVerifier{accept: map[string]bool{
		"jsmith@example.com": true,
		"jdoe@example.com":   true,
	}}
	w := newTestWorkflow(crawler, directory, verifier, &stubExtractor{}, &stubMailer{})

	result := w.Run(context.Background(), "https://example.com")
	require.Equal(t, domain.StatusCompleted, result.Status)

	// The director is probed before the student.
	assert.Equal(t, "john.smith@example.com", verifier.checks[0])

	byName := map[string]domain.Contact{}
	for _, c := range result.VerifiedContacts {
		byName[c.Name] = c
	}
	require.Contains(t, byName, "John Smith")
	require.Contains(t, byName, "Jane Doe")
	assert.Equal(t, "jsmith@example.com", byName["John Smith"].Email)
	assert.Equal(t, "candidate_probe", byName["John Smith"].EmailSource)
	assert.Equal(t, "jdoe@example.com", byName["Jane Doe"].Email)
	assert.Equal(t, "pattern", byName["Jane Doe"].EmailSource)
}

func TestRunWebsiteFallback(t *testing.T) {
	staffMember := domain.Contact{ID: uuid.New(), Source: domain.SourceWebsite, Domain: "example.com"}
	staffMember.SetName("Mary Major")
	staffMember.Title = "Facilities Manager"

	crawler := &stubCrawler{snap: &domain.SiteSnapshot{
		URL:         "https://example.com",
		LinkedInURL: "https://linkedin.com/company/example",
	}}
	directory := &stubDirectory{err: errors.New("actor failed")}
	verifier := &stubVerifier{accept: map[string]bool{
		"mary.major@example.com": true,
	}}
	w := newTestWorkflow(crawler, directory, verifier, &stubExtractor{staff: []domain.Contact{staffMember}}, &stubMailer{})

	result := w.Run(context.Background(), "https://example.com")
	require.Equal(t, domain.StatusCompleted, result.Status)
	assert.Equal(t, domain.PathWebsiteFallback, result.Path)
	require.Len(t, result.VerifiedContacts, 1)
	assert.Equal(t, "mary.major@example.com", result.VerifiedContacts[0].Email)
}

func TestRunNoContactsAnywhere(t *testing.T) {
	crawler := &stubCrawler{snap: &domain.SiteSnapshot{
		URL:         "https://example.com",
		LinkedInURL: "https://linkedin.com/company/example",
	}}
	directory := &stubDirectory{err: errors.New("actor failed")}
	w := newTestWorkflow(crawler, directory, &stubVerifier{}, &stubExtractor{}, &stubMailer{})

	result := w.Run(context.Background(), "https://example.com")
	assert.Equal(t, domain.StatusFailedNoContacts, result.Status)
	assert.Empty(t, result.EmailsSent)
}

func TestSendOutreachPicksTopTwoByScore(t *testing.T) {
	mailer := &stubMailer{}
	w := newTestWorkflow(&stubCrawler{}, &stubDirectory{}, &stubVerifier{}, &stubExtractor{}, mailer)

	verified := []domain.Contact{
		{Name: "Low Scorer", Email: "low@example.com", Verified: true, RelevanceScore: 50},
		{Name: "Top Scorer", Email: "top@example.com", Verified: true, RelevanceScore: 100},
		{Name: "Mid Scorer", Email: "mid@example.com", Verified: true, RelevanceScore: 70},
	}
	sent := w.sendOutreach(context.Background(), "example.com", verified)

	require.Len(t, sent, 2)
	assert.Equal(t, "Top Scorer", sent[0].Name)
	assert.Equal(t, "Mid Scorer", sent[1].Name)
	assert.True(t, sent[0].EmailSent)
	assert.NotEmpty(t, sent[0].Subject)
}

func TestComposeOutreach(t *testing.T) {
	c := domain.Contact{FirstName: "Jane", Title: "Operations Manager"}
	c.Name = "Jane Doe"

	msg := ComposeOutreach(c, "acme-fire.co.uk")
	assert.Equal(t, "Fire safety compliance check for Acme Fire", msg.Subject)
	assert.Contains(t, msg.Body, "Hi Jane")
	assert.Contains(t, msg.Body, "an Operations Manager")
}
