// Package verification wraps a remote deliverability checker behind an
// optimistic gate: the pipeline keeps moving when the checker is down, out of
// credits, or ambivalent, because a guessed address costs nothing while a
// dropped lead costs a sale.
package verification

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/docoi/Smart-S/internal/domain/emails"
)

// Outcome is the checker's verdict for one address.
type Outcome struct {
	Quality string // "good", "risky", "bad"
	Result  string // "ok", "deliverable", "catch_all", "invalid", "disposable", "unknown", ...
	Credits int    // remaining checker credits, when reported
}

// Client is the remote deliverability checker.
type Client interface {
	Check(ctx context.Context, email string) (*Outcome, error)
	Credits(ctx context.Context) (int, error)
}

// creditTTL bounds how long a cached credit reading is trusted.
const creditTTL = 30 * time.Second

// lowWater is the credit level below which checking is skipped entirely and
// every address is accepted on heuristics alone.
const lowWater = 10

// Gate decides whether an address is worth sending to. Safe for concurrent
// use.
type Gate struct {
	client Client
	log    zerolog.Logger

	// Pessimistic flips the failure posture: when set, checker errors and
	// exhausted credits reject instead of accept.
	Pessimistic bool

	mu        sync.Mutex
	credits   int
	creditsAt time.Time
	now       func() time.Time
}

// NewGate wraps a checker client.
func NewGate(client Client, log zerolog.Logger) *Gate {
	return &Gate{
		client: client,
		log:    log.With().Str("component", "verification_gate").Logger(),
		now:    time.Now,
	}
}

// Verify reports whether email should be kept. Every failure path resolves
// to the gate's configured posture (optimistic by default).
func (g *Gate) Verify(ctx context.Context, email string) bool {
	if !g.hasCredits(ctx) {
		g.log.Warn().Str("email", email).Msg("checker credits low, accepting without remote check")
		return g.onFailure()
	}

	outcome, err := g.client.Check(ctx, email)
	if err != nil {
		g.log.Warn().Err(err).Str("email", email).Msg("deliverability check failed")
		return g.onFailure()
	}
	// The check payload carries the post-check balance and is fresher than
	// anything the credits endpoint would say, zero included.
	g.cacheCredits(outcome.Credits)

	ok := g.decide(email, outcome)
	g.log.Debug().
		Str("email", email).
		Str("quality", outcome.Quality).
		Str("result", outcome.Result).
		Bool("accepted", ok).
		Msg("deliverability verdict")
	return ok
}

// decide applies the verdict table. Catch-all domains accept any local part,
// so for those the address stands or falls on its own plausibility.
func (g *Gate) decide(email string, o *Outcome) bool {
	quality := strings.ToLower(o.Quality)
	result := strings.ToLower(o.Result)

	switch {
	case quality == "good" && (result == "ok" || result == "deliverable"):
		return true
	case result == "invalid" || result == "disposable" || quality == "bad":
		return false
	case quality == "risky" && result == "catch_all":
		return g.heuristic(email)
	default:
		return g.heuristic(email)
	}
}

func (g *Gate) heuristic(email string) bool {
	local, _, found := strings.Cut(email, "@")
	if !found {
		return false
	}
	return emails.PlausibleLocalPart(local)
}

func (g *Gate) onFailure() bool {
	return !g.Pessimistic
}

// hasCredits answers whether the checker balance is above the low-water
// mark, consulting the remote endpoint at most once per TTL window. Errors
// reading the balance count as having credits so a flaky credits endpoint
// cannot disable checking.
func (g *Gate) hasCredits(ctx context.Context) bool {
	g.mu.Lock()
	fresh := !g.creditsAt.IsZero() && g.now().Sub(g.creditsAt) < creditTTL
	cached := g.credits
	g.mu.Unlock()

	if fresh {
		return cached >= lowWater
	}

	credits, err := g.client.Credits(ctx)
	if err != nil {
		g.log.Warn().Err(err).Msg("credit balance read failed")
		return true
	}
	g.cacheCredits(credits)
	return credits >= lowWater
}

func (g *Gate) cacheCredits(n int) {
	g.mu.Lock()
	g.credits = n
	g.creditsAt = g.now()
	g.mu.Unlock()
}
