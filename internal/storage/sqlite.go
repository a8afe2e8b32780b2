package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"ProductAdvisor/internal/collector"
)

// dateLayout keeps stored dates lexically ordered.
const dateLayout = "2006-01-02 15:04:05"

// SQLiteStore holds clients, their history and scoring results.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

var (
	_ Recorder         = (*SQLiteStore)(nil)
	_ Recorder         = (*NoopRecorder)(nil)
	_ collector.Source = (*SQLiteStore)(nil)
)

// Open opens (or creates) the SQLite database and runs migrations.
func Open(dbPath string, log zerolog.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &SQLiteStore{db: db, log: log.With().Str("component", "storage").Logger()}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s.log.Info().Str("path", dbPath).Msg("sqlite store opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS clients (
			client_code             INTEGER PRIMARY KEY,
			name                    TEXT NOT NULL,
			status                  TEXT,
			age                     INTEGER,
			city                    TEXT,
			avg_monthly_balance_kzt REAL NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			client_code      INTEGER NOT NULL REFERENCES clients(client_code) ON DELETE CASCADE,
			name             TEXT,
			product          TEXT,
			status           TEXT,
			city             TEXT,
			transaction_date TEXT NOT NULL,
			category         TEXT NOT NULL,
			amount           REAL NOT NULL,
			currency         TEXT NOT NULL DEFAULT 'KZT'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_client ON transactions(client_code, transaction_date)`,

		`CREATE TABLE IF NOT EXISTS transfers (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			client_code   INTEGER NOT NULL REFERENCES clients(client_code) ON DELETE CASCADE,
			name          TEXT,
			product       TEXT,
			status        TEXT,
			city          TEXT,
			transfer_date TEXT NOT NULL,
			type          TEXT NOT NULL,
			direction     TEXT NOT NULL,
			amount        REAL NOT NULL,
			currency      TEXT NOT NULL DEFAULT 'KZT'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transfers_client ON transfers(client_code, transfer_date)`,

		`CREATE TABLE IF NOT EXISTS products (
			id            INTEGER PRIMARY KEY,
			name          TEXT NOT NULL UNIQUE,
			product_kind  TEXT NOT NULL,
			base_rate     REAL,
			cashback_rate REAL,
			monthly_limit REAL,
			is_active     INTEGER NOT NULL DEFAULT 1
		)`,

		`CREATE TABLE IF NOT EXISTS client_signals (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			client_code      INTEGER NOT NULL REFERENCES clients(client_code) ON DELETE CASCADE,
			run_id           TEXT NOT NULL,
			signal_type      TEXT NOT NULL,
			signal_value     REAL,
			signal_frequency INTEGER,
			signal_strength  TEXT,
			created_at       INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_client ON client_signals(client_code)`,

		`CREATE TABLE IF NOT EXISTS product_benefits (
			id                  INTEGER PRIMARY KEY AUTOINCREMENT,
			client_code         INTEGER NOT NULL REFERENCES clients(client_code) ON DELETE CASCADE,
			run_id              TEXT NOT NULL,
			product_id          INTEGER NOT NULL REFERENCES products(id),
			product_name        TEXT NOT NULL,
			product_kind        TEXT NOT NULL,
			potential_benefit   REAL NOT NULL,
			benefit_type        TEXT,
			calculation_details TEXT,
			confidence_score    REAL,
			created_at          INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_benefits_client ON product_benefits(client_code)`,

		`CREATE TABLE IF NOT EXISTS client_recommendations (
			id                    INTEGER PRIMARY KEY AUTOINCREMENT,
			client_code           INTEGER NOT NULL REFERENCES clients(client_code) ON DELETE CASCADE,
			run_id                TEXT NOT NULL,
			rank                  INTEGER NOT NULL,
			product_id            INTEGER NOT NULL REFERENCES products(id),
			product_name          TEXT NOT NULL,
			product_kind          TEXT NOT NULL,
			current_product       TEXT,
			potential_benefit     REAL NOT NULL,
			benefit_type          TEXT,
			recommendation_reason TEXT,
			confidence_score      REAL,
			push_notification     TEXT,
			created_at            INTEGER NOT NULL,
			UNIQUE (client_code, rank)
		)`,

		`CREATE TABLE IF NOT EXISTS scoring_runs (
			run_id          TEXT PRIMARY KEY,
			started_at      INTEGER NOT NULL,
			finished_at     INTEGER NOT NULL,
			clients         INTEGER,
			succeeded       INTEGER,
			failed          INTEGER,
			failed_clients  TEXT,
			signals         INTEGER,
			benefits        INTEGER,
			recommendations INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON scoring_runs(started_at)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	s.log.Info().Msg("closing sqlite store")
	return s.db.Close()
}
