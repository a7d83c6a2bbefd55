// Package ports declares the boundaries between the pipeline and the outside
// world. The application layer depends only on these interfaces; the adapters
// package provides the concrete implementations.
package ports

import (
	"context"

	"github.com/docoi/Smart-S/internal/domain"
)

// SiteCrawler fetches and distils a company website into a snapshot of its
// visible text and discovered links.
type SiteCrawler interface {
	Crawl(ctx context.Context, url string) (*domain.SiteSnapshot, error)
}

// EmployeeDirectory lists the people working at a company given its LinkedIn
// company page.
type EmployeeDirectory interface {
	Employees(ctx context.Context, linkedinURL, companyDomain string) ([]domain.Contact, error)
}

// EmailVerifier reports whether an address is worth sending to. It must
// never fail a run: implementations degrade to an accepting answer when the
// upstream checker is unreachable.
type EmailVerifier interface {
	Verify(ctx context.Context, email string) bool
}

// StaffExtractor pulls named people out of raw website text and validates
// whether a harvested name refers to a person rather than a company.
type StaffExtractor interface {
	ExtractStaff(ctx context.Context, content, siteURL string) ([]domain.Contact, error)
	IsPerson(ctx context.Context, name, title, company string) bool
}

// Mailer delivers a single outbound message.
type Mailer interface {
	Send(ctx context.Context, msg domain.OutboundEmail) error
}

// UsageStore persists per-account call counters and the rolling credit log
// across runs.
type UsageStore interface {
	LoadUsage() (map[string]*domain.AccountUsage, error)
	SaveUsage(usage map[string]*domain.AccountUsage) error
	AppendCreditSnapshot(snap domain.CreditSnapshot) error
	CreditSnapshots() ([]domain.CreditSnapshot, error)
	Close() error
}

// QuotaReader fetches an account's remaining monthly platform budget.
type QuotaReader interface {
	ReadQuota(ctx context.Context, account domain.Account) (*domain.QuotaBalance, error)
}

// LivenessProber checks that an account's token still authenticates. Probes
// are only worth paying for once an account has already passed the quota
// check.
type LivenessProber interface {
	Probe(ctx context.Context, account domain.Account) bool
}
