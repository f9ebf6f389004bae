package repository

import (
	"context"

	"brolearn_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return translateError("create user", r.DB.WithContext(ctx).Create(user).Error)
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translateError("find user", err)
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateError("find user by email", err)
	}
	return &user, nil
}

// Save writes back the gamified fields only. Profile fields are owned by
// registration and never overwritten from a stale snapshot.
func (r *UserRepository) Save(ctx context.Context, user *model.User) error {
	err := r.DB.WithContext(ctx).Model(user).
		Select("xp", "level", "streak", "last_activity_at").
		Updates(map[string]interface{}{
			"xp":               user.XP,
			"level":            user.Level,
			"streak":           user.Streak,
			"last_activity_at": user.LastActivityAt,
		}).Error
	return translateError("save user", err)
}

func (r *UserRepository) FindTopByXP(ctx context.Context, limit int) ([]model.User, error) {
	var users []model.User
	err := r.DB.WithContext(ctx).Order("xp DESC").Order("id ASC").Limit(limit).Find(&users).Error
	if err != nil {
		return nil, translateError("find top users", err)
	}
	return users, nil
}
