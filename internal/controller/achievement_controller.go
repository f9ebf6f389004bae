package controller

import (
	"context"
	"strconv"

	"brolearn_backend/internal/service"
	"brolearn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AchievementUsecase interface {
	ListForUser(ctx context.Context, userID uint) ([]service.AchievementView, error)
	GetLeaderboard(ctx context.Context, limit int) ([]service.LeaderboardEntry, error)
}

type AchievementController struct {
	AchievementService AchievementUsecase
}

func NewAchievementController(achievementService AchievementUsecase) *AchievementController {
	return &AchievementController{AchievementService: achievementService}
}

// @Summary List achievements
// @Description Every achievement definition with the current user's unlock state
// @Tags Achievements
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/achievements [get]
func (c *AchievementController) GetUserAchievements(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	achievements, err := c.AchievementService.ListForUser(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"achievements": achievements})
}

// @Summary Leaderboard
// @Description Top users by XP
// @Tags Achievements
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "Number of entries" default(10)
// @Success 200 {object} util.Response{data=[]service.LeaderboardEntry}
// @Router /api/achievements/leaderboard [get]
func (c *AchievementController) GetLeaderboard(ctx *gin.Context) {
	limit := service.DefaultLeaderboardSize
	if limitStr := ctx.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			limit = l
		}
	}

	leaderboard, err := c.AchievementService.GetLeaderboard(ctx.Request.Context(), limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, leaderboard)
}
