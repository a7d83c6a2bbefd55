package apify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/docoi/Smart-S/internal/accounts"
	"github.com/docoi/Smart-S/internal/domain"
)

// webScraperActor is the generic headless-browser actor used to fetch a
// site's rendered HTML.
const webScraperActor = "apify~web-scraper"

// crawlTimeout caps a single site crawl end to end.
const crawlTimeout = 5 * time.Minute

// pageFunction runs inside the actor's browser context and ships the raw
// page back for parsing here.
const pageFunction = `async function pageFunction(context) {
    return {
        url: context.request.url,
        title: context.jQuery('title').first().text(),
        html: context.jQuery('html').html(),
    };
}`

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// Crawler fetches a company website through the platform and distils the
// rendered page into a SiteSnapshot.
type Crawler struct {
	client *Client
	pool   *accounts.Pool
	log    zerolog.Logger
}

// NewCrawler builds a crawler paying with accounts from the pool.
func NewCrawler(client *Client, pool *accounts.Pool, log zerolog.Logger) *Crawler {
	return &Crawler{
		client: client,
		pool:   pool,
		log:    log.With().Str("component", "site_crawler").Logger(),
	}
}

type crawlItem struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	HTML  string `json:"html"`
}

// Crawl renders the page remotely and parses out the visible text, social
// links, any mailto addresses, and the best-guess company LinkedIn URL.
// Billing is dollar-denominated, so the account is chosen by real-time
// dollar quota.
func (c *Crawler) Crawl(ctx context.Context, siteURL string) (*domain.SiteSnapshot, error) {
	account, err := c.pool.Select(ctx, accounts.ByDollars)
	if errors.Is(err, accounts.ErrNoCapacity) {
		// A crawl on an exhausted account may still go through; the whole
		// run dies without it, so try the primary token anyway.
		primary, ok := c.pool.Primary()
		if !ok {
			return nil, fmt.Errorf("selecting account for crawl: %w", err)
		}
		c.log.Warn().Str("account", primary.Label).Msg("pool exhausted, crawling on primary account")
		account = primary
	} else if err != nil {
		return nil, fmt.Errorf("selecting account for crawl: %w", err)
	}
	c.log.Info().Str("url", siteURL).Str("account", account.Label).Msg("crawling website")

	input := map[string]any{
		"startUrls":          []map[string]string{{"url": siteURL}},
		"pageFunction":       pageFunction,
		"maxPagesPerCrawl":   1,
		"proxyConfiguration": map[string]any{"useApifyProxy": true},
	}
	items, err := c.client.RunActorSync(ctx, account.Token, webScraperActor, input, crawlTimeout)
	if err != nil {
		return nil, fmt.Errorf("crawling %s: %w", siteURL, err)
	}
	if err := c.pool.RecordUsage(account); err != nil {
		c.log.Warn().Err(err).Msg("usage not recorded")
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("crawl of %s returned no pages", siteURL)
	}

	var page crawlItem
	if err := json.Unmarshal(items[0], &page); err != nil {
		return nil, fmt.Errorf("decoding crawl result: %w", err)
	}
	return parseSnapshot(siteURL, page)
}

func parseSnapshot(siteURL string, page crawlItem) (*domain.SiteSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, fmt.Errorf("parsing crawled HTML: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	snap := &domain.SiteSnapshot{
		URL:   siteURL,
		Title: strings.TrimSpace(page.Title),
		Text:  collapseWhitespace(doc.Find("body").Text()),
	}

	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		switch {
		case strings.HasPrefix(href, "mailto:"):
			addr := strings.ToLower(strings.TrimPrefix(href, "mailto:"))
			if i := strings.IndexByte(addr, '?'); i >= 0 {
				addr = addr[:i]
			}
			if addr != "" {
				addFirst(&snap.Emails, seen, addr)
			}
		case isSocialLink(href):
			addFirst(&snap.SocialLinks, seen, href)
		}
	})

	for _, addr := range emailPattern.FindAllString(snap.Text, -1) {
		addFirst(&snap.Emails, seen, strings.ToLower(addr))
	}

	snap.LinkedInURL = companyLinkedIn(snap.SocialLinks)
	return snap, nil
}

func addFirst(dst *[]string, seen map[string]struct{}, v string) {
	if _, ok := seen[v]; ok {
		return
	}
	seen[v] = struct{}{}
	*dst = append(*dst, v)
}

var socialHosts = []string{
	"linkedin.com", "facebook.com", "twitter.com", "x.com",
	"instagram.com", "youtube.com",
}

func isSocialLink(href string) bool {
	lower := strings.ToLower(href)
	if !strings.HasPrefix(lower, "http") {
		return false
	}
	for _, host := range socialHosts {
		if strings.Contains(lower, host) {
			return true
		}
	}
	return false
}

// companyLinkedIn returns the first LinkedIn link that points at an
// organization page rather than a personal profile.
func companyLinkedIn(links []string) string {
	for _, link := range links {
		lower := strings.ToLower(link)
		if !strings.Contains(lower, "linkedin.com") {
			continue
		}
		if strings.Contains(lower, "/company/") ||
			strings.Contains(lower, "/school/") ||
			strings.Contains(lower, "/showcase/") {
			return link
		}
	}
	return ""
}

// collapseWhitespace squeezes each line and drops blank ones, keeping line
// structure so downstream section extraction can work linewise.
func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
