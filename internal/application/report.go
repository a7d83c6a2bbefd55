package application

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/docoi/Smart-S/internal/domain"
)

// SaveResult writes the run's outputs under dir: a machine-readable JSON
// dump of the whole result and a CSV of the verified contacts for a human
// eyeballing the run.
func SaveResult(dir string, result *domain.WorkflowResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	stem := fmt.Sprintf("run_%s", result.RunID)
	if err := saveJSON(filepath.Join(dir, stem+".json"), result); err != nil {
		return err
	}
	return saveCSV(filepath.Join(dir, stem+"_contacts.csv"), result.VerifiedContacts)
}

func saveJSON(path string, result *domain.WorkflowResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

var csvHeader = []string{
	"name", "title", "email", "email_source", "verified",
	"relevance_score", "relevance_reason", "priority", "source",
	"email_sent", "subject",
}

func saveCSV(path string, contacts []domain.Contact) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, c := range contacts {
		row := []string{
			c.Name, c.Title, c.Email, c.EmailSource,
			strconv.FormatBool(c.Verified),
			strconv.Itoa(c.RelevanceScore), c.RelevanceReason,
			c.Priority, string(c.Source),
			strconv.FormatBool(c.EmailSent), c.Subject,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
