package controller

import (
	"context"
	"errors"
	"io"

	"brolearn_backend/internal/service"
	"brolearn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressUsecase interface {
	CompleteLesson(ctx context.Context, userID, lessonID uint, score *int) (*service.CompletionResult, error)
	GetUserProgress(ctx context.Context, userID uint) (*service.UserProgress, error)
	GetCourseProgress(ctx context.Context, userID, courseID uint) (*service.CourseProgress, error)
}

type ProgressController struct {
	ProgressService ProgressUsecase
}

func NewProgressController(progressService ProgressUsecase) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// CompleteLessonRequest is the optional body of a completion.
// swagger:model CompleteLessonRequest
type CompleteLessonRequest struct {
	Score *int `json:"score" example:"85"`
}

// @Summary Complete a lesson
// @Description Records a completion. XP, streak and achievements move only on the first completion of a lesson.
// @Tags Progress
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path int true "Lesson ID"
// @Param body body CompleteLessonRequest false "Optional score 0-100"
// @Success 200 {object} util.Response{data=service.CompletionResult}
// @Failure 400 {object} util.Response
// @Failure 401 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/progress/lessons/{lessonId}/complete [post]
func (c *ProgressController) CompleteLesson(ctx *gin.Context) {
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

	var req CompleteLessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ProgressService.CompleteLesson(ctx.Request.Context(), user.UserID, lessonID, req.Score)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary Current user progress
// @Description Returns the user's XP, level and streak with lesson stats
// @Tags Progress
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.UserProgress}
// @Failure 401 {object} util.Response
// @Router /api/progress/me [get]
func (c *ProgressController) GetUserProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	progress, err := c.ProgressService.GetUserProgress(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// @Summary Course progress
// @Description Completed and total lessons of a course for the current user
// @Tags Progress
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} util.Response{data=service.CourseProgress}
// @Failure 404 {object} util.Response
// @Router /api/progress/courses/{courseId} [get]
func (c *ProgressController) GetCourseProgress(ctx *gin.Context) {
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

	progress, err := c.ProgressService.GetCourseProgress(ctx.Request.Context(), user.UserID, courseID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}
