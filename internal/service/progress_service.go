package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"brolearn_backend/internal/gamification"
	"brolearn_backend/internal/model"
	"brolearn_backend/internal/util"
	"brolearn_backend/pkg/logger"
	"brolearn_backend/pkg/monitoring"
	"brolearn_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// AchievementEvaluator unlocks achievements after XP or streak changes.
type AchievementEvaluator interface {
	Evaluate(ctx context.Context, userID uint) ([]model.Achievement, error)
}

type ProgressService struct {
	Catalog   CatalogReader
	Users     UserStore
	Progress  ProgressStore
	Ledger    *ProgressLedger
	Evaluator AchievementEvaluator
	Locker    Locker
	Now       func() time.Time
}

func NewProgressService(
	catalog CatalogReader,
	users UserStore,
	progress ProgressStore,
	evaluator AchievementEvaluator,
	locker Locker,
) *ProgressService {
	return &ProgressService{
		Catalog:   catalog,
		Users:     users,
		Progress:  progress,
		Ledger:    NewProgressLedger(progress),
		Evaluator: evaluator,
		Locker:    locker,
		Now:       time.Now,
	}
}

type ProgressView struct {
	IsCompleted bool `json:"isCompleted"`
	Score       *int `json:"score"`
	Attempts    int  `json:"attempts"`
}

func progressView(p *model.Progress) ProgressView {
	return ProgressView{IsCompleted: p.IsCompleted, Score: p.Score, Attempts: p.Attempts}
}

type CompletionResult struct {
	Progress          ProgressView `json:"progress"`
	XPEarned          int          `json:"xpEarned"`
	IsFirstCompletion bool         `json:"isFirstCompletion"`
}

type UserSummary struct {
	ID               uint       `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Level            int        `json:"level"`
	XP               int        `json:"xp"`
	Streak           int        `json:"streak"`
	LastActivityDate *time.Time `json:"lastActivityDate"`
}

func userSummary(u *model.User) UserSummary {
	return UserSummary{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		Level:            u.Level,
		XP:               u.XP,
		Streak:           u.Streak,
		LastActivityDate: u.LastActivityAt,
	}
}

type ProgressStats struct {
	TotalLessonsCompleted int64 `json:"totalLessonsCompleted"`
	XPToNextLevel         int   `json:"xpToNextLevel"`
	CurrentLevelProgress  int   `json:"currentLevelProgress"`
}

type UserProgress struct {
	User  UserSummary   `json:"user"`
	Stats ProgressStats `json:"stats"`
}

type CourseProgress struct {
	CourseID           uint  `json:"courseId"`
	TotalLessons       int64 `json:"totalLessons"`
	CompletedLessons   int64 `json:"completedLessons"`
	ProgressPercentage int   `json:"progressPercentage"`
}

// CompleteLesson records a completion and, on the first one for this lesson,
// grants the lesson XP, moves the streak and evaluates achievements. Each
// step commits on its own; a later failure does not undo earlier steps.
// XPEarned never includes achievement bonuses.
func (s *ProgressService) CompleteLesson(ctx context.Context, userID, lessonID uint, score *int) (*CompletionResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "ProgressService.CompleteLesson")
	defer span.End()
	span.SetAttributes(tracing.UserAttr(userID), attribute.Int64("lesson.id", int64(lessonID)))

	result, err := s.completeLesson(ctx, userID, lessonID, score)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Bool("completion.first", result.IsFirstCompletion),
		attribute.Int("completion.xp_earned", result.XPEarned),
	)
	return result, nil
}

func (s *ProgressService) completeLesson(ctx context.Context, userID, lessonID uint, score *int) (*CompletionResult, error) {
	if score != nil && !gamification.ScoreInRange(*score) {
		return nil, fmt.Errorf("%w: score must be between %d and %d",
			util.ErrValidation, gamification.MinScore, gamification.MaxScore)
	}

	lesson, err := s.Catalog.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	module, err := s.Catalog.GetModule(ctx, lesson.ModuleID)
	if err != nil {
		return nil, err
	}
	course, err := s.Catalog.GetCourse(ctx, module.CourseID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.Locker.Lock(ctx, userLockKey(userID))
	if err != nil {
		return nil, fmt.Errorf("%w: lock user %d: %v", util.ErrPersistence, userID, err)
	}
	defer unlock()

	now := s.Now()
	progress, first, err := s.Ledger.RecordCompletion(ctx, gamification.CompletionInput{
		UserID:   userID,
		LessonID: lesson.ID,
		ModuleID: module.ID,
		CourseID: course.ID,
		Score:    score,
	}, now)
	if err != nil {
		return nil, err
	}
	monitoring.LessonCompletions.WithLabelValues(strconv.FormatBool(first)).Inc()

	result := &CompletionResult{Progress: progressView(progress), IsFirstCompletion: first}
	if !first {
		return result, nil
	}

	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	state := gamification.GrantXP(gamification.StateOf(user), lesson.XPReward)
	state.ApplyTo(user)
	if err := s.Users.Save(ctx, user); err != nil {
		return nil, err
	}
	monitoring.XPGranted.WithLabelValues("lesson").Add(float64(lesson.XPReward))

	state, transition := gamification.ApplyStreak(state, now)
	monitoring.StreakTransitions.WithLabelValues(transition.String()).Inc()
	if transition.Mutates() {
		state.ApplyTo(user)
		if err := s.Users.Save(ctx, user); err != nil {
			return nil, err
		}
	}

	logger.Log.Info("Lesson completed",
		zap.Uint("user_id", userID),
		zap.Uint("lesson_id", lesson.ID),
		zap.Int("xp_earned", lesson.XPReward),
		zap.Int("xp", state.XP),
		zap.Int("level", state.Level),
		zap.Int("streak", state.Streak),
		zap.Stringer("streak_transition", transition),
	)

	if _, err := s.Evaluator.Evaluate(ctx, userID); err != nil {
		return nil, err
	}

	result.XPEarned = lesson.XPReward
	return result, nil
}

func (s *ProgressService) GetUserProgress(ctx context.Context, userID uint) (*UserProgress, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	completed, err := s.Progress.CountCompleted(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserProgress{
		User: userSummary(user),
		Stats: ProgressStats{
			TotalLessonsCompleted: completed,
			XPToNextLevel:         gamification.XPToNextLevel(user.XP),
			CurrentLevelProgress:  gamification.LevelProgressPercent(user.XP),
		},
	}, nil
}

func (s *ProgressService) GetCourseProgress(ctx context.Context, userID, courseID uint) (*CourseProgress, error) {
	if _, err := s.Catalog.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	total, err := s.Catalog.CountLessonsInCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	completed, err := s.Progress.CountCompletedInCourse(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	return &CourseProgress{
		CourseID:           courseID,
		TotalLessons:       total,
		CompletedLessons:   completed,
		ProgressPercentage: percentage(completed, total),
	}, nil
}

// percentage rounds to the nearest integer and is 0 for an empty total.
func percentage(done, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}
