package service

import (
	"context"
	"time"

	"brolearn_backend/internal/gamification"
	"brolearn_backend/internal/model"
	"brolearn_backend/pkg/logger"
	"brolearn_backend/pkg/monitoring"

	"go.uber.org/zap"
)

const (
	DefaultLeaderboardSize = 10
	MaxLeaderboardSize     = 100
)

type AchievementService struct {
	Achievements AchievementStore
	Unlocks      UserAchievementStore
	Users        UserStore
	// Cache is optional; a nil cache reads the store on every request.
	Cache LeaderboardCache
	Now   func() time.Time
}

func NewAchievementService(
	achievements AchievementStore,
	unlocks UserAchievementStore,
	users UserStore,
	cache LeaderboardCache,
) *AchievementService {
	return &AchievementService{
		Achievements: achievements,
		Unlocks:      unlocks,
		Users:        users,
		Cache:        cache,
		Now:          time.Now,
	}
}

type AchievementView struct {
	ID          uint                  `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Icon        string                `json:"icon"`
	Type        model.AchievementType `json:"type"`
	Requirement int                   `json:"requirement"`
	XPReward    int                   `json:"xpReward"`
	Unlocked    bool                  `json:"unlocked"`
	UnlockedAt  *time.Time            `json:"unlockedAt,omitempty"`
}

type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	UserID uint   `json:"userId"`
	User   string `json:"user"`
	XP     int    `json:"xp"`
	Level  int    `json:"level"`
	Streak int    `json:"streak"`
}

// Evaluate unlocks every definition the user now qualifies for and returns the
// newly unlocked ones. Definitions are visited in id order and the user's
// stats are updated after each unlock, so a bonus can satisfy a later rule.
// Unlocks lost to a concurrent request are skipped without XP.
func (s *AchievementService) Evaluate(ctx context.Context, userID uint) ([]model.Achievement, error) {
	definitions, err := s.Achievements.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	unlocked, err := s.unlockedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	state := gamification.StateOf(user)
	var newly []model.Achievement
	for _, def := range definitions {
		if _, ok := unlocked[def.ID]; ok {
			continue
		}
		if !gamification.Qualifies(def.Type, def.Requirement, state) {
			continue
		}

		created, err := s.Unlocks.CreateIfAbsent(ctx, &model.UserAchievement{
			UserID:        userID,
			AchievementID: def.ID,
			UnlockedAt:    s.Now(),
		})
		if err != nil {
			return newly, err
		}
		if !created {
			continue
		}

		state = gamification.GrantXP(state, def.XPReward)
		state.ApplyTo(user)
		if err := s.Users.Save(ctx, user); err != nil {
			return newly, err
		}
		newly = append(newly, def)

		monitoring.AchievementUnlocks.WithLabelValues(string(def.Type)).Inc()
		monitoring.XPGranted.WithLabelValues("achievement").Add(float64(def.XPReward))
		logger.Log.Info("Achievement unlocked",
			zap.Uint("user_id", userID),
			zap.Uint("achievement_id", def.ID),
			zap.String("type", string(def.Type)),
			zap.Int("xp", state.XP),
			zap.Int("level", state.Level),
		)
	}
	return newly, nil
}

// ListForUser returns every definition flagged with the user's unlock state.
func (s *AchievementService) ListForUser(ctx context.Context, userID uint) ([]AchievementView, error) {
	definitions, err := s.Achievements.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	unlocked, err := s.unlockedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]AchievementView, 0, len(definitions))
	for _, def := range definitions {
		view := AchievementView{
			ID:          def.ID,
			Title:       def.Title,
			Description: def.Description,
			Icon:        def.Icon,
			Type:        def.Type,
			Requirement: def.Requirement,
			XPReward:    def.XPReward,
		}
		if at, ok := unlocked[def.ID]; ok {
			at := at
			view.Unlocked = true
			view.UnlockedAt = &at
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *AchievementService) unlockedIDs(ctx context.Context, userID uint) (map[uint]time.Time, error) {
	rows, err := s.Unlocks.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make(map[uint]time.Time, len(rows))
	for _, ua := range rows {
		ids[ua.AchievementID] = ua.UnlockedAt
	}
	return ids, nil
}

// GetLeaderboard returns the top users by XP. limit is clamped to
// 1..MaxLeaderboardSize.
func (s *AchievementService) GetLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	if limit > MaxLeaderboardSize {
		limit = MaxLeaderboardSize
	}

	if s.Cache != nil {
		if entries, ok := s.Cache.Get(ctx); ok {
			return truncate(entries, limit), nil
		}
	}

	entries, err := s.RefreshLeaderboard(ctx)
	if err != nil {
		return nil, err
	}
	return truncate(entries, limit), nil
}

// RefreshLeaderboard rebuilds the cached top list from the store.
func (s *AchievementService) RefreshLeaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	users, err := s.Users.FindTopByXP(ctx, MaxLeaderboardSize)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(users))
	for i, user := range users {
		entries[i] = LeaderboardEntry{
			Rank:   i + 1,
			UserID: user.ID,
			User:   user.Name,
			XP:     user.XP,
			Level:  user.Level,
			Streak: user.Streak,
		}
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, entries); err != nil {
			logger.Log.Warn("Failed to cache leaderboard", zap.Error(err))
		}
	}
	return entries, nil
}

func truncate(entries []LeaderboardEntry, limit int) []LeaderboardEntry {
	if len(entries) > limit {
		return entries[:limit]
	}
	return entries
}
