package app

import (
	"context"
	"time"

	"brolearn_backend/pkg/logger"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

const leaderboardRefreshTimeout = 30 * time.Second

// startBackgroundTasks schedules the periodic leaderboard rebuild. The first
// run happens immediately so the cache is warm before traffic arrives.
func (a *App) startBackgroundTasks(s *services) *gocron.Scheduler {
	minutes := a.Config.Jobs.LeaderboardRefreshMinutes
	if minutes <= 0 {
		return nil
	}

	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	_, err := scheduler.Every(minutes).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(a.ctx, leaderboardRefreshTimeout)
		defer cancel()

		entries, err := s.achievement.RefreshLeaderboard(ctx)
		if err != nil {
			logger.Log.Error("leaderboard refresh failed", zap.Error(err))
			return
		}
		logger.Log.Debug("leaderboard refreshed", zap.Int("entries", len(entries)))
	})
	if err != nil {
		logger.Log.Error("Failed to schedule leaderboard refresh", zap.Error(err))
		return nil
	}

	scheduler.StartAsync()
	return scheduler
}
