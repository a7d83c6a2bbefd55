// Package config loads the runtime configuration from the environment, with
// an optional .env file for local runs.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/docoi/Smart-S/internal/domain"
)

// maxAccountSlots is how many numbered scraping-account token variables are
// scanned.
const maxAccountSlots = 10

// ErrMissingConfig reports one or more required environment variables that
// are not set.
var ErrMissingConfig = errors.New("config: missing required environment variables")

// Config is everything the pipeline needs to run.
type Config struct {
	Accounts []domain.Account

	MillionVerifierAPIKey string
	OpenAIAPIKey          string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// OutreachRecipient receives every outbound email in place of the
	// contact's own address.
	OutreachRecipient string

	// DatabaseURL switches usage tracking from JSON files to Postgres when
	// set.
	DatabaseURL string

	OutputDir string
}

// Load reads the environment, after merging in a .env file if one exists.
func Load() (*Config, error) {
	// Missing .env is the normal case in production.
	_ = godotenv.Load()

	cfg := &Config{
		Accounts:              loadAccounts(),
		MillionVerifierAPIKey: os.Getenv("MILLIONVERIFIER_API_KEY"),
		OpenAIAPIKey:          os.Getenv("OPENAI_API_KEY"),
		SMTPHost:              getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPUsername:          os.Getenv("SMTP_USERNAME"),
		SMTPPassword:          os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:              os.Getenv("SMTP_FROM"),
		OutreachRecipient:     os.Getenv("OUTREACH_RECIPIENT"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		OutputDir:             getEnv("OUTPUT_DIR", "output"),
	}

	port, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("parsing SMTP_PORT: %w", err)
	}
	cfg.SMTPPort = port

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadAccounts reads APIFY_TOKEN_1 .. APIFY_TOKEN_10, falling back to a
// single unnumbered APIFY_TOKEN.
func loadAccounts() []domain.Account {
	var accounts []domain.Account
	for i := 1; i <= maxAccountSlots; i++ {
		token := strings.TrimSpace(os.Getenv(fmt.Sprintf("APIFY_TOKEN_%d", i)))
		if token == "" {
			continue
		}
		accounts = append(accounts, domain.Account{
			ID:     i,
			Token:  token,
			Label:  fmt.Sprintf("account_%d", i),
			Active: true,
		})
	}
	if len(accounts) == 0 {
		if token := strings.TrimSpace(os.Getenv("APIFY_TOKEN")); token != "" {
			accounts = append(accounts, domain.Account{
				ID: 1, Token: token, Label: "account_1", Active: true,
			})
		}
	}
	return accounts
}

func (c *Config) validate() error {
	var missing []string
	if len(c.Accounts) == 0 {
		missing = append(missing, "APIFY_TOKEN_1")
	}
	if c.MillionVerifierAPIKey == "" {
		missing = append(missing, "MILLIONVERIFIER_API_KEY")
	}
	if c.OpenAIAPIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.SMTPUsername == "" {
		missing = append(missing, "SMTP_USERNAME")
	}
	if c.SMTPPassword == "" {
		missing = append(missing, "SMTP_PASSWORD")
	}
	if c.OutreachRecipient == "" {
		missing = append(missing, "OUTREACH_RECIPIENT")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
