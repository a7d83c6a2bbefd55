package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APIFY_TOKEN_1", "tok-1")
	t.Setenv("MILLIONVERIFIER_API_KEY", "mv-key")
	t.Setenv("OPENAI_API_KEY", "oa-key")
	t.Setenv("SMTP_USERNAME", "user@example.com")
	t.Setenv("SMTP_PASSWORD", "secret")
	t.Setenv("OUTREACH_RECIPIENT", "inbox@example.com")
}

func TestLoad(t *testing.T) {
	setRequired(t)
	t.Setenv("APIFY_TOKEN_3", "tok-3")

	cfg, err := Load()
	require.NoError(t, err)

	require.Len(t, cfg.Accounts, 2)
	assert.Equal(t, "account_1", cfg.Accounts[0].Label)
	assert.Equal(t, "account_3", cfg.Accounts[1].Label)
	assert.True(t, cfg.Accounts[0].Active)

	assert.Equal(t, "smtp.gmail.com", cfg.SMTPHost)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, "inbox@example.com", cfg.OutreachRecipient)
	assert.Equal(t, "output", cfg.OutputDir)
}

func TestLoadMissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("OUTREACH_RECIPIENT", "")

	_, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingConfig)
	assert.Contains(t, err.Error(), "OUTREACH_RECIPIENT")
}

func TestLoadUnnumberedTokenFallback(t *testing.T) {
	setRequired(t)
	t.Setenv("APIFY_TOKEN_1", "")
	t.Setenv("APIFY_TOKEN", "single-token")

	cfg, err := Load()
	require.NoError(t, err)
	require.Len(t, cfg.Accounts, 1)
	assert.Equal(t, "single-token", cfg.Accounts[0].Token)
}
