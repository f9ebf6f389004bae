package model

import "time"

type AchievementType string

const (
	AchievementStreak  AchievementType = "streak"
	AchievementLessons AchievementType = "lessons"
	AchievementCourses AchievementType = "courses"
	AchievementXP      AchievementType = "xp"
	AchievementSpecial AchievementType = "special"
)

// swagger:model Achievement
type Achievement struct {
	BaseModel
	Title       string          `gorm:"size:100;not null" json:"title"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Icon        string          `gorm:"size:32;default:'🏆'" json:"icon"`
	Type        AchievementType `gorm:"size:20;not null" json:"type"`
	Requirement int             `gorm:"not null" json:"requirement"`
	XPReward    int             `gorm:"default:50" json:"xpReward"`
}

func (Achievement) TableName() string {
	return "achievements"
}

type UserAchievement struct {
	BaseModel
	UserID        uint      `gorm:"not null;uniqueIndex:idx_user_achievement" json:"userId"`
	AchievementID uint      `gorm:"not null;uniqueIndex:idx_user_achievement" json:"achievementId"`
	UnlockedAt    time.Time `json:"unlockedAt"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}
