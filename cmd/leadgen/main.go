package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/docoi/Smart-S/internal/accounts"
	"github.com/docoi/Smart-S/internal/adapters/apify"
	"github.com/docoi/Smart-S/internal/adapters/mailer"
	"github.com/docoi/Smart-S/internal/adapters/millionverifier"
	"github.com/docoi/Smart-S/internal/adapters/openai"
	"github.com/docoi/Smart-S/internal/adapters/storage"
	"github.com/docoi/Smart-S/internal/application"
	"github.com/docoi/Smart-S/internal/config"
	"github.com/docoi/Smart-S/internal/domain"
	"github.com/docoi/Smart-S/internal/ports"
	"github.com/docoi/Smart-S/internal/verification"
)

func main() {
	var (
		siteURL   = flag.String("url", "", "company website to process (required)")
		threshold = flag.Float64("credit-threshold", accounts.DefaultCreditThreshold, "dollar margin an account must retain to stay eligible")
		debug     = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !*debug {
		log = log.Level(zerolog.InfoLevel)
	}

	if *siteURL == "" {
		fmt.Fprintln(os.Stderr, "usage: leadgen --url https://company-website.com")
		os.Exit(1)
	}

	if err := run(*siteURL, *threshold, log); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

func run(siteURL string, threshold float64, log zerolog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := newStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	apifyClient := apify.NewClient()
	pool, err := accounts.New(cfg.Accounts, apifyClient, apifyClient, store, threshold, log)
	if err != nil {
		return err
	}

	gate := verification.NewGate(millionverifier.New(cfg.MillionVerifierAPIKey), log)
	extractor := openai.New(cfg.OpenAIAPIKey, log)
	smtp := mailer.New(
		cfg.SMTPHost, cfg.SMTPPort,
		cfg.SMTPUsername, cfg.SMTPPassword,
		cfg.SMTPFrom, cfg.OutreachRecipient,
		log,
	)

	workflow := application.New(
		apify.NewCrawler(apifyClient, pool, log),
		apify.NewDirectory(apifyClient, pool, log),
		gate,
		extractor,
		smtp,
		log,
	)

	result := workflow.Run(ctx, siteURL)
	if err := application.SaveResult(cfg.OutputDir, result); err != nil {
		log.Error().Err(err).Msg("results not saved")
	}
	printSummary(result)

	if fatalStatus(result.Status) {
		return fmt.Errorf("workflow ended with status %s", result.Status)
	}
	return nil
}

// fatalStatus decides the process exit code. Expected dead ends like a
// website without a LinkedIn page are reported through the printed status
// and still exit 0; only an unexpected workflow failure is fatal.
func fatalStatus(status string) bool {
	return status == domain.StatusFailed
}

func newStore(cfg *config.Config) (ports.UsageStore, error) {
	if cfg.DatabaseURL != "" {
		return storage.NewPostgresStore(cfg.DatabaseURL)
	}
	return storage.NewFileStore(cfg.OutputDir)
}

func printSummary(result *domain.WorkflowResult) {
	fmt.Printf("\nRun %s\n", result.RunID)
	fmt.Printf("  Website:  %s\n", result.WebsiteURL)
	fmt.Printf("  Status:   %s\n", result.Status)
	fmt.Printf("  Path:     %s\n", result.Path)
	fmt.Printf("  LinkedIn: %s\n", orDash(result.LinkedInURL))
	fmt.Printf("  Contacts: %d verified of %d found\n",
		len(result.VerifiedContacts), len(result.Employees)+len(result.WebsiteStaff))
	for _, c := range result.EmailsSent {
		fmt.Printf("  Sent:     %s <%s> (score %d)\n", c.Name, c.Email, c.RelevanceScore)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
