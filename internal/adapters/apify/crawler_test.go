package apify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHTML = `
<html>
<head><title>Acme Fire Protection</title><script>var x = 1;</script></head>
<body>
  <h1>Acme Fire Protection</h1>
  <p>We keep your extinguishers serviced.
  Contact us at <a href="mailto:Info@acmefire.co.uk?subject=hi">info@acmefire.co.uk</a>
  or sales@acmefire.co.uk directly.</p>
  <footer>
    <a href="https://www.linkedin.com/in/john-smith">John on LinkedIn</a>
    <a href="https://www.linkedin.com/company/acme-fire/">Company page</a>
    <a href="https://www.facebook.com/acmefire">Facebook</a>
    <a href="/about">About us</a>
  </footer>
</body>
</html>`

func TestParseSnapshot(t *testing.T) {
	snap, err := parseSnapshot("https://acmefire.co.uk", crawlItem{
		URL:   "https://acmefire.co.uk",
		Title: "Acme Fire Protection",
		HTML:  sampleHTML,
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme Fire Protection", snap.Title)
	assert.Contains(t, snap.Text, "We keep your extinguishers serviced.")
	assert.NotContains(t, snap.Text, "var x = 1", "script content is stripped")

	assert.Contains(t, snap.Emails, "info@acmefire.co.uk", "mailto query strings are dropped")
	assert.Contains(t, snap.Emails, "sales@acmefire.co.uk", "addresses in body text are harvested")

	assert.Contains(t, snap.SocialLinks, "https://www.facebook.com/acmefire")
	assert.Equal(t, "https://www.linkedin.com/company/acme-fire/", snap.LinkedInURL,
		"personal profiles are not the company page")
}

func TestCompanyLinkedIn(t *testing.T) {
	tests := []struct {
		name     string
		links    []string
		expected string
	}{
		{
			name:     "Company page wins over profile",
			links:    []string{"https://linkedin.com/in/jane", "https://linkedin.com/company/acme"},
			expected: "https://linkedin.com/company/acme",
		},
		{
			name:     "School page counts",
			links:    []string{"https://linkedin.com/school/acme-academy"},
			expected: "https://linkedin.com/school/acme-academy",
		},
		{
			name:     "Profiles only",
			links:    []string{"https://linkedin.com/in/jane"},
			expected: "",
		},
		{
			name:     "No links",
			links:    nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, companyLinkedIn(tt.links))
		})
	}
}
