package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/docoi/Smart-S/internal/domain"
)

// PostgresStore keeps the tracking data in Postgres, for deployments where
// several workers share one account pool.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects and ensures the schema exists.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	s := &PostgresStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS account_usage (
		account    TEXT PRIMARY KEY,
		runs_used  INTEGER NOT NULL DEFAULT 0,
		runs_limit INTEGER NOT NULL DEFAULT 0,
		last_reset TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS credit_log (
		id         BIGSERIAL PRIMARY KEY,
		recorded   TIMESTAMPTZ NOT NULL,
		account    TEXT NOT NULL,
		snapshot   JSONB NOT NULL
	);`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) LoadUsage() (map[string]*domain.AccountUsage, error) {
	rows, err := s.db.Query(`SELECT account, runs_used, runs_limit, last_reset FROM account_usage`)
	if err != nil {
		return nil, fmt.Errorf("loading usage: %w", err)
	}
	defer rows.Close()

	usage := make(map[string]*domain.AccountUsage)
	for rows.Next() {
		var account string
		u := &domain.AccountUsage{}
		if err := rows.Scan(&account, &u.CallsUsed, &u.CallsLimit, &u.LastReset); err != nil {
			return nil, fmt.Errorf("scanning usage row: %w", err)
		}
		usage[account] = u
	}
	return usage, rows.Err()
}

func (s *PostgresStore) SaveUsage(usage map[string]*domain.AccountUsage) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const upsert = `
	INSERT INTO account_usage (account, runs_used, runs_limit, last_reset)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (account) DO UPDATE
	SET runs_used = $2, runs_limit = $3, last_reset = $4`

	for account, u := range usage {
		if _, err := tx.Exec(upsert, account, u.CallsUsed, u.CallsLimit, u.LastReset); err != nil {
			return fmt.Errorf("upserting usage for %s: %w", account, err)
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) AppendCreditSnapshot(snap domain.CreditSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if _, err := s.db.Exec(
		`INSERT INTO credit_log (recorded, account, snapshot) VALUES ($1, $2, $3)`,
		snap.Timestamp, snap.Account, payload,
	); err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}
	// Keep only the newest entries.
	_, err = s.db.Exec(`
	DELETE FROM credit_log
	WHERE id NOT IN (SELECT id FROM credit_log ORDER BY id DESC LIMIT $1)`,
		creditLogCap)
	if err != nil {
		return fmt.Errorf("trimming credit log: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreditSnapshots() ([]domain.CreditSnapshot, error) {
	rows, err := s.db.Query(`SELECT snapshot FROM credit_log ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("loading credit log: %w", err)
	}
	defer rows.Close()

	var log []domain.CreditSnapshot
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		var snap domain.CreditSnapshot
		if err := json.Unmarshal(payload, &snap); err != nil {
			return nil, fmt.Errorf("decoding snapshot: %w", err)
		}
		log = append(log, snap)
	}
	return log, rows.Err()
}

func (s *PostgresStore) Close() error { return s.db.Close() }
