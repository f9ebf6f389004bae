package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brolearn_backend/internal/gamification"
	"brolearn_backend/internal/util"
)

func TestLedgerRetriesOnConflict(t *testing.T) {
	db := newMemDB()
	ledger := NewProgressLedger(fakeProgress{db})
	ctx := context.Background()
	in := gamification.CompletionInput{UserID: 1, LessonID: 2, ModuleID: 3, CourseID: 4}

	_, first, err := ledger.RecordCompletion(ctx, in, time.Now())
	require.NoError(t, err)
	assert.True(t, first)

	db.saveConflicts = 1
	p, first, err := ledger.RecordCompletion(ctx, in, time.Now())
	require.NoError(t, err)
	assert.False(t, first)
	// 1 stored, +1 by the concurrent writer, +1 by us
	assert.Equal(t, 3, p.Attempts)
}

func TestLedgerGivesUpAfterRepeatedConflicts(t *testing.T) {
	db := newMemDB()
	ledger := NewProgressLedger(fakeProgress{db})
	ctx := context.Background()
	in := gamification.CompletionInput{UserID: 1, LessonID: 2}

	_, _, err := ledger.RecordCompletion(ctx, in, time.Now())
	require.NoError(t, err)

	db.saveConflicts = maxLedgerAttempts
	_, _, err = ledger.RecordCompletion(ctx, in, time.Now())
	assert.ErrorIs(t, err, util.ErrPersistence)
	assert.NotErrorIs(t, err, util.ErrConflict)
}
