package repository

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// setupTestDB opens an in-memory database with the full schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// In-memory databases are per-connection; keep the pool at one.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema := []string{
		`CREATE TABLE cards (
			card_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			class_id INTEGER NOT NULL,
			cost INTEGER NOT NULL,
			card_type TEXT NOT NULL,
			rarity TEXT,
			attack INTEGER,
			defense INTEGER,
			skill_text TEXT,
			evo_skill_text TEXT,
			roles TEXT,
			keywords TEXT,
			is_token INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE card_metrics (
			card_id TEXT PRIMARY KEY,
			base_rating REAL,
			stat_efficiency REAL,
			role_score REAL,
			keyword_score REAL,
			rarity_bonus REAL,
			impact_score REAL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE pick_sessions (
			session_id TEXT PRIMARY KEY,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			class_name TEXT,
			final_wins INTEGER,
			final_losses INTEGER,
			notes TEXT
		)`,
		`CREATE TABLE pick_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT,
			pick_index INTEGER,
			rerolls_left INTEGER,
			candidate1_id TEXT,
			candidate2_id TEXT,
			recommended_id TEXT,
			chosen_id TEXT,
			action TEXT,
			scores_json TEXT,
			deck_snapshot TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("Failed to create schema: %v", err)
		}
	}
	return db
}
