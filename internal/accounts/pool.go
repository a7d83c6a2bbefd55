// Package accounts manages the pool of scraping-vendor accounts and chooses
// which account pays for each platform call.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/docoi/Smart-S/internal/domain"
	"github.com/docoi/Smart-S/internal/ports"
)

// Selection criteria. ByDollars reads the vendor's real-time dollar quota and
// keeps accounts above the configured credit threshold; ByCalls uses the
// locally tracked monthly call counters.
type Criterion int

const (
	ByDollars Criterion = iota
	ByCalls
)

// ErrNoCapacity is returned when no account in the pool has budget left
// under the requested criterion.
var ErrNoCapacity = errors.New("accounts: no account with remaining capacity")

// DefaultCreditThreshold is the dollar margin an account must retain below
// its limit to stay eligible.
const DefaultCreditThreshold = 4.85

// defaultCallsLimit is the per-account monthly call allowance assumed when an
// account has no persisted usage record yet.
const defaultCallsLimit = 30

// Pool selects accounts, tracks their usage, and records a credit snapshot on
// every selection. Safe for concurrent use.
type Pool struct {
	mu sync.Mutex

	accounts []domain.Account
	usage    map[string]*domain.AccountUsage

	quota  ports.QuotaReader
	prober ports.LivenessProber
	store  ports.UsageStore

	threshold float64
	now       func() time.Time
	rng       *rand.Rand
	log       zerolog.Logger
}

// New builds a pool over the given accounts, loading persisted usage from the
// store. A zero threshold falls back to DefaultCreditThreshold.
func New(accs []domain.Account, quota ports.QuotaReader, prober ports.LivenessProber, store ports.UsageStore, threshold float64, log zerolog.Logger) (*Pool, error) {
	if threshold <= 0 {
		threshold = DefaultCreditThreshold
	}
	usage, err := store.LoadUsage()
	if err != nil {
		return nil, fmt.Errorf("loading account usage: %w", err)
	}
	if usage == nil {
		usage = make(map[string]*domain.AccountUsage)
	}
	p := &Pool{
		accounts:  accs,
		usage:     usage,
		quota:     quota,
		prober:    prober,
		store:     store,
		threshold: threshold,
		now:       time.Now,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		log:       log.With().Str("component", "account_pool").Logger(),
	}
	p.resetStaleMonths()
	return p, nil
}

// usageFor returns the usage record for an account, creating a fresh one on
// first sight.
func (p *Pool) usageFor(acc domain.Account) *domain.AccountUsage {
	u, ok := p.usage[acc.Label]
	if !ok {
		u = &domain.AccountUsage{
			CallsLimit: defaultCallsLimit,
			LastReset:  p.now().Format("2006-01"),
		}
		p.usage[acc.Label] = u
	}
	return u
}

// resetStaleMonths zeroes call counters whose last reset predates the current
// month.
func (p *Pool) resetStaleMonths() {
	month := p.now().Format("2006-01")
	for label, u := range p.usage {
		if u.LastReset != month {
			p.log.Info().Str("account", label).Str("month", month).Msg("monthly call counter reset")
			u.CallsUsed = 0
			u.LastReset = month
		}
	}
}

// candidate pairs an eligible account with its capacity reading so
// selection can prefer the account with the most headroom.
type candidate struct {
	account   domain.Account
	balance   *domain.QuotaBalance
	remaining float64
}

// Select picks the eligible active account with the most remaining capacity
// under the criterion, records a credit snapshot for it, and returns it.
// Accounts that fail the capacity check are skipped without a liveness
// probe; the probe only runs for accounts that still look affordable.
func (p *Pool) Select(ctx context.Context, c Criterion) (domain.Account, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetStaleMonths()

	var eligible []candidate
	for _, acc := range p.accounts {
		if !acc.Active {
			continue
		}

		switch c {
		case ByDollars:
			b, err := p.quota.ReadQuota(ctx, acc)
			if err != nil {
				p.log.Warn().Err(err).Str("account", acc.Label).Msg("quota read failed, skipping account")
				continue
			}
			if b.RemainingUSD <= b.LimitUSD-p.threshold {
				p.log.Debug().
					Str("account", acc.Label).
					Float64("remaining_usd", b.RemainingUSD).
					Msg("account below credit threshold")
				continue
			}
			eligible = append(eligible, candidate{account: acc, balance: b, remaining: b.RemainingUSD})
		case ByCalls:
			left := p.usageFor(acc).Remaining()
			if left <= 0 {
				continue
			}
			eligible = append(eligible, candidate{account: acc, remaining: float64(left)})
		}
	}

	// Call-count ties are broken at random so successive runs spread load
	// across accounts with equal allowance; the stable sort then keeps that
	// random order within each remaining-capacity band.
	if c == ByCalls {
		p.rng.Shuffle(len(eligible), func(a, b int) {
			eligible[a], eligible[b] = eligible[b], eligible[a]
		})
	}
	sort.SliceStable(eligible, func(a, b int) bool {
		return eligible[a].remaining > eligible[b].remaining
	})

	for _, cand := range eligible {
		if p.prober != nil && !p.prober.Probe(ctx, cand.account) {
			p.log.Warn().Str("account", cand.account.Label).Msg("liveness probe failed, skipping account")
			continue
		}
		p.snapshot(cand.account, cand.balance)
		p.log.Info().Str("account", cand.account.Label).Msg("account selected")
		return cand.account, nil
	}
	return domain.Account{}, ErrNoCapacity
}

// Primary returns the first active account regardless of quota, for callers
// that prefer attempting a call on an exhausted account over skipping the
// phase entirely.
func (p *Pool) Primary() (domain.Account, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, acc := range p.accounts {
		if acc.Active {
			return acc, true
		}
	}
	return domain.Account{}, false
}

// RecordUsage increments an account's call counter and persists the counters.
func (p *Pool) RecordUsage(acc domain.Account) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	u := p.usageFor(acc)
	u.CallsUsed++
	if err := p.store.SaveUsage(p.usage); err != nil {
		return fmt.Errorf("saving account usage: %w", err)
	}
	return nil
}

// Usage returns a copy of the account's current counters.
func (p *Pool) Usage(acc domain.Account) domain.AccountUsage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return *p.usageFor(acc)
}

// snapshot appends one entry to the rolling credit log. Log failures are
// reported but never fail a selection.
func (p *Pool) snapshot(acc domain.Account, balance *domain.QuotaBalance) {
	snap := domain.CreditSnapshot{
		Timestamp: p.now(),
		Account:   acc.Label,
	}
	if balance != nil {
		snap.Balance = *balance
	}
	u := p.usageFor(acc)
	snap.CallsUsed = u.CallsUsed
	snap.CallsLeft = u.Remaining()

	if err := p.store.AppendCreditSnapshot(snap); err != nil {
		p.log.Warn().Err(err).Msg("credit snapshot not recorded")
	}
}
