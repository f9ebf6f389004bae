package gamification

import (
	"time"

	"brolearn_backend/internal/model"
)

const (
	MinScore = 0
	MaxScore = 100
)

func ScoreInRange(score int) bool {
	return score >= MinScore && score <= MaxScore
}

// CompletionInput identifies one lesson-completion event.
type CompletionInput struct {
	UserID   uint
	LessonID uint
	ModuleID uint
	CourseID uint
	Score    *int
}

// RecordCompletion computes the ledger entry that results from c. prior is
// nil when no entry exists yet. first reports the false/absent -> true
// transition of IsCompleted, the only event that may grant lesson XP.
func RecordCompletion(prior *model.Progress, c CompletionInput, now time.Time) (next model.Progress, first bool) {
	completedAt := now
	if prior == nil {
		next = model.Progress{
			UserID:      c.UserID,
			LessonID:    c.LessonID,
			ModuleID:    c.ModuleID,
			CourseID:    c.CourseID,
			IsCompleted: true,
			Score:       copyScore(c.Score),
			Attempts:    1,
			CompletedAt: &completedAt,
		}
		return next, true
	}

	next = *prior
	first = !prior.IsCompleted
	next.IsCompleted = true
	if c.Score != nil {
		next.Score = copyScore(c.Score)
	}
	next.Attempts = prior.Attempts + 1
	next.CompletedAt = &completedAt
	return next, first
}

func copyScore(score *int) *int {
	if score == nil {
		return nil
	}
	v := *score
	return &v
}
