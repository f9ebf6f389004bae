package repository

import (
	"context"

	"brolearn_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AchievementRepository struct {
	DB *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: db}
}

// FindAll returns every definition in id order, the order unlocks are evaluated in.
func (r *AchievementRepository) FindAll(ctx context.Context) ([]model.Achievement, error) {
	var achievements []model.Achievement
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&achievements).Error; err != nil {
		return nil, translateError("list achievements", err)
	}
	return achievements, nil
}

func (r *AchievementRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&model.Achievement{}).Count(&count).Error; err != nil {
		return 0, translateError("count achievements", err)
	}
	return count, nil
}

func (r *AchievementRepository) CreateBatch(ctx context.Context, achievements []model.Achievement) error {
	return translateError("create achievements", r.DB.WithContext(ctx).Create(&achievements).Error)
}

type UserAchievementRepository struct {
	DB *gorm.DB
}

func NewUserAchievementRepository(db *gorm.DB) *UserAchievementRepository {
	return &UserAchievementRepository{DB: db}
}

func (r *UserAchievementRepository) FindAllByUser(ctx context.Context, userID uint) ([]model.UserAchievement, error) {
	var unlocked []model.UserAchievement
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("unlocked_at ASC").Find(&unlocked).Error
	if err != nil {
		return nil, translateError("list user achievements", err)
	}
	return unlocked, nil
}

// CreateIfAbsent inserts the unlock unless the pair already exists. created is
// false when a concurrent request unlocked it first.
func (r *UserAchievementRepository) CreateIfAbsent(ctx context.Context, ua *model.UserAchievement) (created bool, err error) {
	result := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
			DoNothing: true,
		}).
		Create(ua)
	if result.Error != nil {
		return false, translateError("unlock achievement", result.Error)
	}
	return result.RowsAffected > 0, nil
}
