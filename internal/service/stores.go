package service

import (
	"context"

	"brolearn_backend/internal/model"
)

// Store interfaces are satisfied by the gorm repositories and by in-memory
// fakes in tests. Implementations report util.ErrNotFound, util.ErrConflict
// and util.ErrPersistence.

type CatalogReader interface {
	GetLesson(ctx context.Context, id uint) (*model.Lesson, error)
	GetModule(ctx context.Context, id uint) (*model.Module, error)
	GetCourse(ctx context.Context, id uint) (*model.Course, error)
	ListActiveCourses(ctx context.Context) ([]model.Course, error)
	ListModules(ctx context.Context, courseID uint) ([]model.Module, error)
	ListLessons(ctx context.Context, moduleIDs []uint) ([]model.Lesson, error)
	CountLessonsInCourse(ctx context.Context, courseID uint) (int64, error)
	CountLessonsByCourse(ctx context.Context) (map[uint]int64, error)
}

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Save(ctx context.Context, user *model.User) error
	FindTopByXP(ctx context.Context, limit int) ([]model.User, error)
}

type ProgressStore interface {
	FindOne(ctx context.Context, userID, lessonID uint) (*model.Progress, error)
	Create(ctx context.Context, progress *model.Progress) error
	Save(ctx context.Context, progress *model.Progress, priorAttempts int) error
	CountCompleted(ctx context.Context, userID uint) (int64, error)
	CountCompletedInCourse(ctx context.Context, userID, courseID uint) (int64, error)
	CountCompletedByCourse(ctx context.Context, userID uint) (map[uint]int64, error)
	FindByUserAndLessons(ctx context.Context, userID uint, lessonIDs []uint) (map[uint]model.Progress, error)
}

type AchievementStore interface {
	FindAll(ctx context.Context) ([]model.Achievement, error)
}

type UserAchievementStore interface {
	FindAllByUser(ctx context.Context, userID uint) ([]model.UserAchievement, error)
	CreateIfAbsent(ctx context.Context, ua *model.UserAchievement) (bool, error)
}
