package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shun-123/shadowverse-2pick/internal/learning"
)

func TestEnsureSessionCreatesAndReuses(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPickLogRepository(db)
	ctx := context.Background()

	created, err := repo.EnsureSession(ctx, "", "Swordcraft")
	require.NoError(t, err)
	require.NotEmpty(t, created)

	same, err := repo.EnsureSession(ctx, created, "Swordcraft")
	require.NoError(t, err)
	assert.Equal(t, created, same)

	other, err := repo.EnsureSession(ctx, "", "Runecraft")
	require.NoError(t, err)
	assert.NotEqual(t, created, other)
}

func TestAppendAndReadLogs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPickLogRepository(db)
	ctx := context.Background()

	sessionID, err := repo.EnsureSession(ctx, "", "")
	require.NoError(t, err)

	entry := &learning.PickLog{
		SessionID:     sessionID,
		PickIndex:     1,
		RerollsLeft:   2,
		Candidate1ID:  "10001",
		Candidate2ID:  "10002",
		RecommendedID: "10001",
		ChosenID:      "10001",
		Action:        "pick",
		ScoresJSON:    `[{"card_id":"10001"},{"card_id":"10002"}]`,
		DeckSnapshot:  `["10003"]`,
	}
	require.NoError(t, repo.AppendLog(ctx, entry))
	assert.NotZero(t, entry.ID, "AppendLog backfills the row id")

	logs, err := repo.SessionLogs(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "10001", logs[0].ChosenID)
	assert.Equal(t, 2, logs[0].RerollsLeft)
}

func TestLogsForTrainingFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPickLogRepository(db)
	ctx := context.Background()

	sessionID, err := repo.EnsureSession(ctx, "", "")
	require.NoError(t, err)

	// Qualifies: pick action with chosen id and scores.
	require.NoError(t, repo.AppendLog(ctx, &learning.PickLog{
		SessionID: sessionID, PickIndex: 1, Candidate1ID: "a", Candidate2ID: "b",
		ChosenID: "a", Action: "pick", ScoresJSON: `[]`,
	}))
	// Rerolls never qualify.
	require.NoError(t, repo.AppendLog(ctx, &learning.PickLog{
		SessionID: sessionID, PickIndex: 2, Candidate1ID: "c", Candidate2ID: "d",
		Action: "reroll",
	}))
	// Picks without a recorded choice never qualify.
	require.NoError(t, repo.AppendLog(ctx, &learning.PickLog{
		SessionID: sessionID, PickIndex: 3, Candidate1ID: "e", Candidate2ID: "f",
		Action: "pick", ScoresJSON: `[]`,
	}))

	logs, err := repo.LogsForTraining(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "a", logs[0].ChosenID)
}

func TestFinishSession(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPickLogRepository(db)
	ctx := context.Background()

	sessionID, err := repo.EnsureSession(ctx, "", "Havencraft")
	require.NoError(t, err)

	require.NoError(t, repo.FinishSession(ctx, sessionID, 4, 1, "good run"))
	assert.Error(t, repo.FinishSession(ctx, "missing", 0, 0, ""), "unknown session is an error")
}
