package repository

import (
	"context"
	"fmt"

	"brolearn_backend/internal/model"
	"brolearn_backend/internal/util"

	"gorm.io/gorm"
)

// ProgressRepository stores the per-(user, lesson) ledger. Attempts doubles as
// the optimistic version of a row.
type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// FindOne returns util.ErrNotFound when the user never touched the lesson.
func (r *ProgressRepository) FindOne(ctx context.Context, userID, lessonID uint) (*model.Progress, error) {
	var progress model.Progress
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		First(&progress).Error
	if err != nil {
		return nil, translateError("find progress", err)
	}
	return &progress, nil
}

// Create fails with util.ErrConflict when another request inserted the same
// (user, lesson) pair first.
func (r *ProgressRepository) Create(ctx context.Context, progress *model.Progress) error {
	return translateError("create progress", r.DB.WithContext(ctx).Create(progress).Error)
}

// Save applies progress only if the stored row still carries priorAttempts.
// A concurrent writer makes it fail with util.ErrConflict.
func (r *ProgressRepository) Save(ctx context.Context, progress *model.Progress, priorAttempts int) error {
	result := r.DB.WithContext(ctx).Model(&model.Progress{}).
		Where("id = ? AND attempts = ?", progress.ID, priorAttempts).
		Updates(map[string]interface{}{
			"is_completed": progress.IsCompleted,
			"score":        progress.Score,
			"attempts":     progress.Attempts,
			"completed_at": progress.CompletedAt,
		})
	if result.Error != nil {
		return translateError("save progress", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("save progress: %w", util.ErrConflict)
	}
	return nil
}

func (r *ProgressRepository) CountCompleted(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Progress{}).
		Where("user_id = ? AND is_completed = ?", userID, true).
		Count(&count).Error
	if err != nil {
		return 0, translateError("count completed", err)
	}
	return count, nil
}

func (r *ProgressRepository) CountCompletedInCourse(ctx context.Context, userID, courseID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Progress{}).
		Where("user_id = ? AND course_id = ? AND is_completed = ?", userID, courseID, true).
		Count(&count).Error
	if err != nil {
		return 0, translateError("count completed in course", err)
	}
	return count, nil
}

// CountCompletedByCourse groups the user's completed lessons per course.
func (r *ProgressRepository) CountCompletedByCourse(ctx context.Context, userID uint) (map[uint]int64, error) {
	var rows []courseCount
	err := r.DB.WithContext(ctx).Model(&model.Progress{}).
		Select("course_id, COUNT(*) AS total").
		Where("user_id = ? AND is_completed = ?", userID, true).
		Group("course_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError("count completed by course", err)
	}
	return toCountMap(rows), nil
}

// FindByUserAndLessons indexes the user's ledger entries by lesson id.
func (r *ProgressRepository) FindByUserAndLessons(ctx context.Context, userID uint, lessonIDs []uint) (map[uint]model.Progress, error) {
	byLesson := make(map[uint]model.Progress, len(lessonIDs))
	if len(lessonIDs) == 0 {
		return byLesson, nil
	}
	var entries []model.Progress
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND lesson_id IN ?", userID, lessonIDs).
		Find(&entries).Error
	if err != nil {
		return nil, translateError("find progress by lessons", err)
	}
	for _, p := range entries {
		byLesson[p.LessonID] = p
	}
	return byLesson, nil
}
