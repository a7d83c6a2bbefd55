package application

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docoi/Smart-S/internal/domain"
)

func TestSaveResult(t *testing.T) {
	dir := t.TempDir()
	result := &domain.WorkflowResult{
		RunID:      uuid.New(),
		WebsiteURL: "https://example.com",
		Domain:     "example.com",
		Status:     domain.StatusCompleted,
		Path:       domain.PathLinkedIn,
		VerifiedContacts: []domain.Contact{
			{
				Name: "Jane Doe", Title: "Operations Manager",
				Email: "j.doe@example.com", EmailSource: "pattern",
				Verified: true, RelevanceScore: 70,
				Priority: domain.PriorityHigh, Source: domain.SourceLinkedIn,
			},
		},
	}

	require.NoError(t, SaveResult(dir, result))

	jsonPath := filepath.Join(dir, fmt.Sprintf("run_%s.json", result.RunID))
	assert.FileExists(t, jsonPath)

	f, err := os.Open(filepath.Join(dir, fmt.Sprintf("run_%s_contacts.csv", result.RunID)))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "Jane Doe", rows[1][0])
	assert.Equal(t, "j.doe@example.com", rows[1][2])
	assert.Equal(t, "70", rows[1][5])
}
