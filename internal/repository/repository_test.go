package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"brolearn_backend/internal/model"
	"brolearn_backend/internal/util"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a fresh database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Course{}, &model.Module{}, &model.Lesson{},
		&model.Progress{}, &model.Achievement{}, &model.UserAchievement{},
	))
	return db
}

// seedCourse creates one course with two modules holding lessonsPerModule lessons each.
func seedCourse(t *testing.T, db *gorm.DB, order, lessonsPerModule int) (model.Course, []model.Lesson) {
	t.Helper()
	course := model.Course{Title: "Course", Order: order, IsActive: true}
	require.NoError(t, db.Create(&course).Error)

	var lessons []model.Lesson
	for m := 1; m <= 2; m++ {
		module := model.Module{CourseID: course.ID, Title: "Module", Order: m}
		require.NoError(t, db.Create(&module).Error)
		for l := 1; l <= lessonsPerModule; l++ {
			lesson := model.Lesson{ModuleID: module.ID, Title: "Lesson", Type: model.LessonTheory, Order: l, XPReward: 10}
			require.NoError(t, db.Create(&lesson).Error)
			lessons = append(lessons, lesson)
		}
	}
	return course, lessons
}

func TestProgressRepositoryCreateConflict(t *testing.T) {
	db := newTestDB(t)
	repo := NewProgressRepository(db)
	ctx := context.Background()

	first := &model.Progress{UserID: 1, LessonID: 5, ModuleID: 1, CourseID: 1, IsCompleted: true, Attempts: 1}
	require.NoError(t, repo.Create(ctx, first))

	dup := &model.Progress{UserID: 1, LessonID: 5, ModuleID: 1, CourseID: 1, IsCompleted: true, Attempts: 1}
	err := repo.Create(ctx, dup)
	assert.ErrorIs(t, err, util.ErrConflict)

	// other users are independent
	require.NoError(t, repo.Create(ctx, &model.Progress{UserID: 2, LessonID: 5, ModuleID: 1, CourseID: 1, Attempts: 1}))
}

func TestProgressRepositorySaveIsConditional(t *testing.T) {
	db := newTestDB(t)
	repo := NewProgressRepository(db)
	ctx := context.Background()

	p := &model.Progress{UserID: 1, LessonID: 5, ModuleID: 1, CourseID: 1, IsCompleted: true, Attempts: 1}
	require.NoError(t, repo.Create(ctx, p))

	score := 90
	now := time.Now()
	next := *p
	next.Attempts = 2
	next.Score = &score
	next.CompletedAt = &now
	require.NoError(t, repo.Save(ctx, &next, 1))

	// a writer still holding the old version loses
	stale := *p
	stale.Attempts = 2
	assert.ErrorIs(t, repo.Save(ctx, &stale, 1), util.ErrConflict)

	stored, err := repo.FindOne(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Attempts)
	require.NotNil(t, stored.Score)
	assert.Equal(t, 90, *stored.Score)
}

func TestProgressRepositoryFindOneMissing(t *testing.T) {
	repo := NewProgressRepository(newTestDB(t))
	_, err := repo.FindOne(context.Background(), 1, 99)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestProgressRepositoryCounts(t *testing.T) {
	db := newTestDB(t)
	repo := NewProgressRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Progress{UserID: 1, LessonID: 1, ModuleID: 1, CourseID: 1, IsCompleted: true, Attempts: 1}))
	require.NoError(t, repo.Create(ctx, &model.Progress{UserID: 1, LessonID: 2, ModuleID: 1, CourseID: 1, IsCompleted: true, Attempts: 1}))
	require.NoError(t, repo.Create(ctx, &model.Progress{UserID: 1, LessonID: 3, ModuleID: 2, CourseID: 2, IsCompleted: true, Attempts: 1}))
	require.NoError(t, repo.Create(ctx, &model.Progress{UserID: 1, LessonID: 4, ModuleID: 2, CourseID: 2, IsCompleted: false}))
	require.NoError(t, repo.Create(ctx, &model.Progress{UserID: 2, LessonID: 1, ModuleID: 1, CourseID: 1, IsCompleted: true, Attempts: 1}))

	total, err := repo.CountCompleted(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	inCourse, err := repo.CountCompletedInCourse(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), inCourse)

	byCourse, err := repo.CountCompletedByCourse(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, map[uint]int64{1: 2, 2: 1}, byCourse)

	byLesson, err := repo.FindByUserAndLessons(ctx, 1, []uint{1, 4, 9})
	require.NoError(t, err)
	assert.Len(t, byLesson, 2)
	assert.True(t, byLesson[1].IsCompleted)
	assert.False(t, byLesson[4].IsCompleted)
}

func TestUserAchievementCreateIfAbsent(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserAchievementRepository(db)
	ctx := context.Background()

	created, err := repo.CreateIfAbsent(ctx, &model.UserAchievement{UserID: 1, AchievementID: 3, UnlockedAt: time.Now()})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.CreateIfAbsent(ctx, &model.UserAchievement{UserID: 1, AchievementID: 3, UnlockedAt: time.Now()})
	require.NoError(t, err)
	assert.False(t, created)

	unlocked, err := repo.FindAllByUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, unlocked, 1)
}

func TestAchievementRepositoryFindAllOrdered(t *testing.T) {
	db := newTestDB(t)
	repo := NewAchievementRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateBatch(ctx, []model.Achievement{
		{Title: "A", Description: "a", Type: model.AchievementXP, Requirement: 100, XPReward: 50},
		{Title: "B", Description: "b", Type: model.AchievementStreak, Requirement: 3, XPReward: 50},
	}))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Less(t, all[0].ID, all[1].ID)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestCatalogRepositoryCounts(t *testing.T) {
	db := newTestDB(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	first, lessons := seedCourse(t, db, 1, 3)
	second, _ := seedCourse(t, db, 2, 1)
	empty := model.Course{Title: "Empty", Order: 3, IsActive: true}
	require.NoError(t, db.Create(&empty).Error)

	n, err := repo.CountLessonsInCourse(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)

	n, err = repo.CountLessonsInCourse(ctx, empty.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	byCourse, err := repo.CountLessonsByCourse(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[uint]int64{first.ID: 6, second.ID: 2}, byCourse)

	lesson, err := repo.GetLesson(ctx, lessons[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 10, lesson.XPReward)

	_, err = repo.GetCourse(ctx, 999)
	assert.ErrorIs(t, err, util.ErrNotFound)

	courses, err := repo.ListActiveCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 3)
	assert.Equal(t, first.ID, courses[0].ID)

	modules, err := repo.ListModules(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, modules, 2)

	listed, err := repo.ListLessons(ctx, []uint{modules[0].ID, modules[1].ID})
	require.NoError(t, err)
	assert.Len(t, listed, 6)
}

func TestUserRepositorySaveGamifiedFields(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &model.User{Name: "Ada", Email: "ada@example.com", Password: "hash", Level: 1}
	require.NoError(t, repo.Create(ctx, user))

	err := repo.Create(ctx, &model.User{Name: "Other", Email: "ada@example.com", Password: "hash"})
	assert.ErrorIs(t, err, util.ErrConflict)

	now := time.Now()
	user.XP = 105
	user.Level = 2
	user.Streak = 1
	user.LastActivityAt = &now
	user.Name = "ignored"
	require.NoError(t, repo.Save(ctx, user))

	stored, err := repo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, 105, stored.XP)
	assert.Equal(t, 2, stored.Level)
	assert.Equal(t, 1, stored.Streak)
	assert.NotNil(t, stored.LastActivityAt)
	assert.Equal(t, "Ada", stored.Name)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestUserRepositoryFindTopByXP(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	for i, xp := range []int{30, 300, 120} {
		u := &model.User{Name: "u", Email: string(rune('a'+i)) + "@example.com", Password: "x", XP: xp, Level: 1}
		require.NoError(t, repo.Create(ctx, u))
	}

	top, err := repo.FindTopByXP(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, 300, top[0].XP)
	assert.Equal(t, 120, top[1].XP)
}
