package repository

import (
	"context"

	"brolearn_backend/internal/model"

	"gorm.io/gorm"
)

// CatalogRepository reads courses, modules and lessons. The catalog is
// read-only at runtime; it is filled by the seed loader.
type CatalogRepository struct {
	DB *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{DB: db}
}

func (r *CatalogRepository) GetLesson(ctx context.Context, id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	if err := r.DB.WithContext(ctx).First(&lesson, id).Error; err != nil {
		return nil, translateError("get lesson", err)
	}
	return &lesson, nil
}

func (r *CatalogRepository) GetModule(ctx context.Context, id uint) (*model.Module, error) {
	var module model.Module
	if err := r.DB.WithContext(ctx).First(&module, id).Error; err != nil {
		return nil, translateError("get module", err)
	}
	return &module, nil
}

func (r *CatalogRepository) GetCourse(ctx context.Context, id uint) (*model.Course, error) {
	var course model.Course
	if err := r.DB.WithContext(ctx).First(&course, id).Error; err != nil {
		return nil, translateError("get course", err)
	}
	return &course, nil
}

func (r *CatalogRepository) ListActiveCourses(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.WithContext(ctx).Where("is_active = ?", true).Order("sort_order ASC").Find(&courses).Error
	if err != nil {
		return nil, translateError("list courses", err)
	}
	return courses, nil
}

func (r *CatalogRepository) ListModules(ctx context.Context, courseID uint) ([]model.Module, error) {
	var modules []model.Module
	err := r.DB.WithContext(ctx).Where("course_id = ?", courseID).Order("sort_order ASC").Find(&modules).Error
	if err != nil {
		return nil, translateError("list modules", err)
	}
	return modules, nil
}

// ListLessons returns the lessons of the given modules ordered by module
// then lesson order.
func (r *CatalogRepository) ListLessons(ctx context.Context, moduleIDs []uint) ([]model.Lesson, error) {
	var lessons []model.Lesson
	if len(moduleIDs) == 0 {
		return lessons, nil
	}
	err := r.DB.WithContext(ctx).
		Where("module_id IN ?", moduleIDs).
		Order("module_id ASC").Order("sort_order ASC").
		Find(&lessons).Error
	if err != nil {
		return nil, translateError("list lessons", err)
	}
	return lessons, nil
}

func (r *CatalogRepository) CountLessonsInCourse(ctx context.Context, courseID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Lesson{}).
		Joins("JOIN modules ON modules.id = lessons.module_id AND modules.deleted_at IS NULL").
		Where("modules.course_id = ?", courseID).
		Count(&count).Error
	if err != nil {
		return 0, translateError("count lessons", err)
	}
	return count, nil
}

type courseCount struct {
	CourseID uint
	Total    int64
}

// CountLessonsByCourse returns the lesson count of every course that has lessons.
func (r *CatalogRepository) CountLessonsByCourse(ctx context.Context) (map[uint]int64, error) {
	var rows []courseCount
	err := r.DB.WithContext(ctx).Model(&model.Lesson{}).
		Select("modules.course_id AS course_id, COUNT(lessons.id) AS total").
		Joins("JOIN modules ON modules.id = lessons.module_id AND modules.deleted_at IS NULL").
		Group("modules.course_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError("count lessons by course", err)
	}
	return toCountMap(rows), nil
}

func toCountMap(rows []courseCount) map[uint]int64 {
	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.CourseID] = row.Total
	}
	return counts
}
