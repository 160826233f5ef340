package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/Shun-123/shadowverse-2pick/internal/learning"
)

// PickLogRepository records advised picks and serves them back to the
// learning loop. It satisfies learning.LogStore.
type PickLogRepository struct {
	db *sql.DB
}

// NewPickLogRepository creates a pick log repository over db.
func NewPickLogRepository(db *sql.DB) *PickLogRepository {
	return &PickLogRepository{db: db}
}

// EnsureSession returns sessionID unchanged when it already exists, or
// creates a new session. An empty sessionID always creates one.
func (r *PickLogRepository) EnsureSession(ctx context.Context, sessionID, className string) (string, error) {
	if sessionID != "" {
		var exists int
		err := r.db.QueryRowContext(ctx,
			"SELECT 1 FROM pick_sessions WHERE session_id = ?", sessionID).Scan(&exists)
		if err == nil {
			return sessionID, nil
		}
		if err != sql.ErrNoRows {
			return "", fmt.Errorf("failed to check session %s: %w", sessionID, err)
		}
	} else {
		sessionID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO pick_sessions (session_id, class_name) VALUES (?, ?)",
		sessionID, className)
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return sessionID, nil
}

// FinishSession records the final result of a 2Pick run.
func (r *PickLogRepository) FinishSession(ctx context.Context, sessionID string, wins, losses int, notes string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE pick_sessions SET final_wins = ?, final_losses = ?, notes = ?
		WHERE session_id = ?
	`, wins, losses, notes, sessionID)
	if err != nil {
		return fmt.Errorf("failed to finish session %s: %w", sessionID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to finish session %s: %w", sessionID, err)
	}
	if affected == 0 {
		return fmt.Errorf("session not found: %s", sessionID)
	}
	return nil
}

// AppendLog records one advised pick. Logs are append-only.
func (r *PickLogRepository) AppendLog(ctx context.Context, log *learning.PickLog) error {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO pick_logs (session_id, pick_index, rerolls_left,
			candidate1_id, candidate2_id, recommended_id, chosen_id,
			action, scores_json, deck_snapshot)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, log.SessionID, log.PickIndex, log.RerollsLeft,
		log.Candidate1ID, log.Candidate2ID, nullable(log.RecommendedID), nullable(log.ChosenID),
		log.Action, nullable(log.ScoresJSON), nullable(log.DeckSnapshot))
	if err != nil {
		return fmt.Errorf("failed to append pick log: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read pick log id: %w", err)
	}
	log.ID = id
	return nil
}

// LogsForTraining returns picks where the user made a recorded choice and
// candidate scores were captured.
func (r *PickLogRepository) LogsForTraining(ctx context.Context) ([]*learning.PickLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, pick_index, rerolls_left,
			candidate1_id, candidate2_id,
			COALESCE(recommended_id, ''), COALESCE(chosen_id, ''),
			action, COALESCE(scores_json, ''), COALESCE(deck_snapshot, ''),
			created_at
		FROM pick_logs
		WHERE action = 'pick' AND chosen_id IS NOT NULL AND scores_json IS NOT NULL
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pick logs: %w", err)
	}
	defer rows.Close()

	var logs []*learning.PickLog
	for rows.Next() {
		var log learning.PickLog
		err := rows.Scan(&log.ID, &log.SessionID, &log.PickIndex, &log.RerollsLeft,
			&log.Candidate1ID, &log.Candidate2ID, &log.RecommendedID, &log.ChosenID,
			&log.Action, &log.ScoresJSON, &log.DeckSnapshot, &log.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pick log: %w", err)
		}
		logs = append(logs, &log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pick logs: %w", err)
	}
	return logs, nil
}

// SessionLogs returns every log for a session in pick order.
func (r *PickLogRepository) SessionLogs(ctx context.Context, sessionID string) ([]*learning.PickLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, pick_index, rerolls_left,
			candidate1_id, candidate2_id,
			COALESCE(recommended_id, ''), COALESCE(chosen_id, ''),
			action, COALESCE(scores_json, ''), COALESCE(deck_snapshot, ''),
			created_at
		FROM pick_logs WHERE session_id = ? ORDER BY pick_index, id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query session logs: %w", err)
	}
	defer rows.Close()

	var logs []*learning.PickLog
	for rows.Next() {
		var log learning.PickLog
		err := rows.Scan(&log.ID, &log.SessionID, &log.PickIndex, &log.RerollsLeft,
			&log.Candidate1ID, &log.Candidate2ID, &log.RecommendedID, &log.ChosenID,
			&log.Action, &log.ScoresJSON, &log.DeckSnapshot, &log.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session log: %w", err)
		}
		logs = append(logs, &log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session logs: %w", err)
	}
	return logs, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
