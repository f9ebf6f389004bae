package service

import (
	"context"

	"brolearn_backend/internal/model"
	"brolearn_backend/pkg/logger"

	"go.uber.org/zap"
)

// MediaResolver maps stored media references to fetchable URLs.
type MediaResolver interface {
	ResolveMediaURL(ctx context.Context, ref string) (string, error)
}

type CourseService struct {
	Catalog  CatalogReader
	Progress ProgressStore
	Media    MediaResolver
}

func NewCourseService(catalog CatalogReader, progress ProgressStore, media MediaResolver) *CourseService {
	return &CourseService{Catalog: catalog, Progress: progress, Media: media}
}

type CourseSummary struct {
	model.Course
	TotalLessons       int64 `json:"totalLessons"`
	CompletedLessons   int64 `json:"completedLessons"`
	ProgressPercentage int   `json:"progressPercentage"`
}

type LessonSummary struct {
	ID               uint             `json:"id"`
	Title            string           `json:"title"`
	Type             model.LessonType `json:"type"`
	Order            int              `json:"order"`
	XPReward         int              `json:"xpReward"`
	EstimatedMinutes int              `json:"estimatedMinutes"`
	IsCompleted      bool             `json:"isCompleted"`
	Score            *int             `json:"score"`
}

type ModuleDetail struct {
	model.Module
	Lessons            []LessonSummary `json:"lessons"`
	TotalLessons       int             `json:"totalLessons"`
	CompletedLessons   int             `json:"completedLessons"`
	ProgressPercentage int             `json:"progressPercentage"`
}

type CourseDetail struct {
	model.Course
	Modules            []ModuleDetail `json:"modules"`
	TotalLessons       int            `json:"totalLessons"`
	CompletedLessons   int            `json:"completedLessons"`
	ProgressPercentage int            `json:"progressPercentage"`
}

type LessonDetail struct {
	model.Lesson
	CourseID uint          `json:"courseId"`
	Progress *ProgressView `json:"progress"`
}

// ListCourses returns the active courses in order with the user's progress.
func (s *CourseService) ListCourses(ctx context.Context, userID uint) ([]CourseSummary, error) {
	courses, err := s.Catalog.ListActiveCourses(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := s.Catalog.CountLessonsByCourse(ctx)
	if err != nil {
		return nil, err
	}
	completed, err := s.Progress.CountCompletedByCourse(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]CourseSummary, 0, len(courses))
	for _, c := range courses {
		summaries = append(summaries, CourseSummary{
			Course:             c,
			TotalLessons:       totals[c.ID],
			CompletedLessons:   completed[c.ID],
			ProgressPercentage: percentage(completed[c.ID], totals[c.ID]),
		})
	}
	return summaries, nil
}

// GetCourse returns the course with ordered modules and lessons carrying the
// user's completion state.
func (s *CourseService) GetCourse(ctx context.Context, userID, courseID uint) (*CourseDetail, error) {
	course, err := s.Catalog.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	modules, err := s.Catalog.ListModules(ctx, courseID)
	if err != nil {
		return nil, err
	}

	moduleIDs := make([]uint, len(modules))
	for i, m := range modules {
		moduleIDs[i] = m.ID
	}
	lessons, err := s.Catalog.ListLessons(ctx, moduleIDs)
	if err != nil {
		return nil, err
	}

	lessonIDs := make([]uint, len(lessons))
	byModule := make(map[uint][]model.Lesson, len(modules))
	for i, l := range lessons {
		lessonIDs[i] = l.ID
		byModule[l.ModuleID] = append(byModule[l.ModuleID], l)
	}
	progress, err := s.Progress.FindByUserAndLessons(ctx, userID, lessonIDs)
	if err != nil {
		return nil, err
	}

	detail := &CourseDetail{Course: *course, Modules: make([]ModuleDetail, 0, len(modules))}
	for _, m := range modules {
		md := ModuleDetail{Module: m, Lessons: make([]LessonSummary, 0, len(byModule[m.ID]))}
		for _, l := range byModule[m.ID] {
			summary := LessonSummary{
				ID:               l.ID,
				Title:            l.Title,
				Type:             l.Type,
				Order:            l.Order,
				XPReward:         l.XPReward,
				EstimatedMinutes: l.EstimatedMinutes,
			}
			if p, ok := progress[l.ID]; ok {
				summary.IsCompleted = p.IsCompleted
				summary.Score = p.Score
			}
			if summary.IsCompleted {
				md.CompletedLessons++
			}
			md.Lessons = append(md.Lessons, summary)
		}
		md.TotalLessons = len(md.Lessons)
		md.ProgressPercentage = percentage(int64(md.CompletedLessons), int64(md.TotalLessons))

		detail.TotalLessons += md.TotalLessons
		detail.CompletedLessons += md.CompletedLessons
		detail.Modules = append(detail.Modules, md)
	}
	detail.ProgressPercentage = percentage(int64(detail.CompletedLessons), int64(detail.TotalLessons))
	return detail, nil
}

// GetLesson returns the full lesson payload with resolved media URLs and the
// user's progress, nil when the lesson was never attempted.
func (s *CourseService) GetLesson(ctx context.Context, userID, lessonID uint) (*LessonDetail, error) {
	lesson, err := s.Catalog.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	module, err := s.Catalog.GetModule(ctx, lesson.ModuleID)
	if err != nil {
		return nil, err
	}

	detail := &LessonDetail{Lesson: *lesson, CourseID: module.CourseID}
	detail.ImageURL = s.resolve(ctx, lesson.ImageURL)
	detail.VideoURL = s.resolve(ctx, lesson.VideoURL)

	progress, err := s.Progress.FindByUserAndLessons(ctx, userID, []uint{lesson.ID})
	if err != nil {
		return nil, err
	}
	if p, ok := progress[lesson.ID]; ok {
		view := progressView(&p)
		detail.Progress = &view
	}
	return detail, nil
}

// resolve drops media that cannot be resolved rather than failing the lesson.
func (s *CourseService) resolve(ctx context.Context, ref string) string {
	if s.Media == nil || ref == "" {
		return ref
	}
	u, err := s.Media.ResolveMediaURL(ctx, ref)
	if err != nil {
		logger.Log.Warn("Failed to resolve lesson media", zap.String("ref", ref), zap.Error(err))
		return ""
	}
	return u
}
