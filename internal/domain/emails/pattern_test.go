package emails

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		first    string
		last     string
		expected Template
	}{
		{
			name:     "First dot last",
			email:    "john.smith@example.com",
			first:    "John",
			last:     "Smith",
			expected: "{first}.{last}@{domain}",
		},
		{
			name:     "Initial dot last",
			email:    "j.smith@example.com",
			first:    "John",
			last:     "Smith",
			expected: "{f}.{last}@{domain}",
		},
		{
			name:     "Concatenated",
			email:    "johnsmith@example.com",
			first:    "John",
			last:     "Smith",
			expected: "{first}{last}@{domain}",
		},
		{
			name:     "First name only",
			email:    "john@example.com",
			first:    "John",
			last:     "Smith",
			expected: "{first}@{domain}",
		},
		{
			name:     "First name contained in last name",
			email:    "ed.edwards@example.com",
			first:    "Ed",
			last:     "Edwards",
			expected: "{first}.{last}@{domain}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Extract(tt.email, tt.first, tt.last, "example.com")
			require.True(t, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExtractNoMatch(t *testing.T) {
	_, ok := Extract("accounts@example.com", "John", "Smith", "example.com")
	assert.False(t, ok)
}

func TestExtractRoundTrip(t *testing.T) {
	tpl, ok := Extract("j.smith@example.com", "John", "Smith", "example.com")
	require.True(t, ok)

	applied, err := tpl.Apply("Jane", "", "Doe", "acme.co.uk")
	require.NoError(t, err)
	assert.Equal(t, "j.doe@acme.co.uk", applied)
}

func TestApplyUnresolved(t *testing.T) {
	tpl := Template("{first}.{middle}.{last}@{domain}")
	_, err := tpl.Apply("Jane", "", "Doe", "example.com")
	assert.ErrorIs(t, err, ErrUnresolved)
}
