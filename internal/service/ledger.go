package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brolearn_backend/internal/gamification"
	"brolearn_backend/internal/model"
	"brolearn_backend/internal/util"
	"brolearn_backend/pkg/logger"
	"brolearn_backend/pkg/monitoring"

	"go.uber.org/zap"
)

const maxLedgerAttempts = 3

// ProgressLedger records lesson completions. Writes are guarded by the
// attempts version, so two concurrent first completions cannot both report
// first = true.
type ProgressLedger struct {
	Store ProgressStore
}

func NewProgressLedger(store ProgressStore) *ProgressLedger {
	return &ProgressLedger{Store: store}
}

func (l *ProgressLedger) RecordCompletion(ctx context.Context, in gamification.CompletionInput, now time.Time) (*model.Progress, bool, error) {
	for attempt := 1; attempt <= maxLedgerAttempts; attempt++ {
		prior, err := l.Store.FindOne(ctx, in.UserID, in.LessonID)
		switch {
		case errors.Is(err, util.ErrNotFound):
			prior = nil
		case err != nil:
			return nil, false, err
		}

		next, first := gamification.RecordCompletion(prior, in, now)
		if prior == nil {
			err = l.Store.Create(ctx, &next)
		} else {
			err = l.Store.Save(ctx, &next, prior.Attempts)
		}
		if err == nil {
			return &next, first, nil
		}
		if !errors.Is(err, util.ErrConflict) {
			return nil, false, err
		}

		monitoring.LedgerConflicts.Inc()
		logger.Log.Debug("Progress version conflict, retrying",
			zap.Uint("user_id", in.UserID),
			zap.Uint("lesson_id", in.LessonID),
			zap.Int("attempt", attempt),
		)
	}
	return nil, false, fmt.Errorf("%w: progress of user %d on lesson %d kept changing",
		util.ErrPersistence, in.UserID, in.LessonID)
}
