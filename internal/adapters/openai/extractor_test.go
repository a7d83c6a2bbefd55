package openai

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidStaffName(t *testing.T) {
	tests := []struct {
		name     string
		domain   string
		expected bool
	}{
		{"John Smith", "example.com", true},
		{"Mary Jane Watson", "example.com", true},
		{"John", "example.com", false},
		{"Acme Ltd", "example.com", false},
		{"Sales Team", "example.com", false},
		{"Marketing Department", "example.com", false},
		{"Acme Fire", "acmefire.co.uk", false},
		{"", "example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidStaffName(tt.name, tt.domain))
		})
	}
}

func TestParseStaffReply(t *testing.T) {
	reply := "Here are the people I found:\n```json\n" +
		`[{"name": "John Smith", "position": "Director", "email": "", "link": ""}]` +
		"\n```"
	people, err := parseStaffReply(reply)
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, "John Smith", people[0].Name)
	assert.Equal(t, "Director", people[0].Position)
}

func TestParseStaffReplyEmpty(t *testing.T) {
	people, err := parseStaffReply("[]")
	require.NoError(t, err)
	assert.Empty(t, people)

	_, err = parseStaffReply("I could not find any staff members.")
	assert.Error(t, err)
}

func TestStaffSections(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("filler line\n")
	}
	b.WriteString("Meet the Team\n")
	b.WriteString("John Smith is our Managing Director\n")
	for i := 0; i < 200; i++ {
		b.WriteString("more filler\n")
	}

	got := staffSections(b.String())
	assert.Contains(t, got, "John Smith is our Managing Director")
	assert.Less(t, len(got), b.Len(), "unrelated regions are dropped")
}

func TestTruncateUTF8(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		limit    int
		expected string
	}{
		{"Under the limit", "hello", 10, "hello"},
		{"Exact boundary", "héllo", 3, "hé"},
		{"Mid-rune backs off", "héllo", 2, "h"},
		{"Zero limit", "héllo", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateUTF8(tt.input, tt.limit)
			assert.Equal(t, tt.expected, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestStaffSectionsNoKeywordKeepsAll(t *testing.T) {
	content := "line one\nline two\nline three"
	assert.Equal(t, content, staffSections(content))
}
