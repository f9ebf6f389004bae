package controller

import (
	"context"

	"brolearn_backend/internal/service"
	"brolearn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseUsecase interface {
	ListCourses(ctx context.Context, userID uint) ([]service.CourseSummary, error)
	GetCourse(ctx context.Context, userID, courseID uint) (*service.CourseDetail, error)
	GetLesson(ctx context.Context, userID, lessonID uint) (*service.LessonDetail, error)
}

type CourseController struct {
	CourseService CourseUsecase
}

func NewCourseController(courseService CourseUsecase) *CourseController {
	return &CourseController{CourseService: courseService}
}

// @Summary List courses
// @Tags Courses
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.CourseSummary}
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courses, err := c.CourseService.ListCourses(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// @Summary Course detail
// @Description Course with ordered modules and lessons, flagged with the user's progress
// @Tags Courses
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} util.Response{data=service.CourseDetail}
// @Failure 404 {object} util.Response
// @Router /api/courses/{courseId} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	courseID, err := util.ParseID(ctx.Param("courseId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	course, err := c.CourseService.GetCourse(ctx.Request.Context(), user.UserID, courseID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// @Summary Lesson detail
// @Tags Courses
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path int true "Lesson ID"
// @Success 200 {object} util.Response{data=service.LessonDetail}
// @Failure 404 {object} util.Response
// @Router /api/courses/lessons/{lessonId} [get]
func (c *CourseController) GetLesson(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	lessonID, err := util.ParseID(ctx.Param("lessonId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	lesson, err := c.CourseService.GetLesson(ctx.Request.Context(), user.UserID, lessonID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}
