package database

import (
	"context"
	"fmt"
	"time"

	"brolearn_backend/internal/config"
	"brolearn_backend/internal/model"
	applog "brolearn_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialector builds the gorm dialector for the configured driver.
func Dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
			cfg.ParseTime,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.DBName,
			cfg.SSLMode,
		)
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(cfg.Path), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func InitDB(cfg *config.DatabaseConfig, mode string) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Warn
	if mode == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "sqlite" {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	applog.Log.Info("Database connection established", zap.String("driver", cfg.Driver))
	return db, nil
}

// Migrate creates or updates the schema and seeds the default achievements
// when the table is empty.
func Migrate(ctx context.Context, db *gorm.DB) error {
	err := db.WithContext(ctx).AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Module{},
		&model.Lesson{},
		&model.Progress{},
		&model.Achievement{},
		&model.UserAchievement{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := backfillLastActivity(ctx, db); err != nil {
		return err
	}
	applog.Log.Info("Database migration completed")

	return SeedAchievements(ctx, db)
}

// backfillLastActivity gives users created before registration stamped the
// activity time their creation time.
func backfillLastActivity(ctx context.Context, db *gorm.DB) error {
	res := db.WithContext(ctx).Model(&model.User{}).
		Where("last_activity_at IS NULL").
		Update("last_activity_at", gorm.Expr("created_at"))
	if res.Error != nil {
		return fmt.Errorf("backfill last activity: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		applog.Log.Info("Backfilled user activity", zap.Int64("users", res.RowsAffected))
	}
	return nil
}

// DefaultAchievements are inserted on first migration. Lessons, courses and
// special definitions are listed but never unlock automatically.
func DefaultAchievements() []model.Achievement {
	return []model.Achievement{
		{Title: "First Steps", Description: "Earn your first 10 XP", Icon: "🌱", Type: model.AchievementXP, Requirement: 10, XPReward: 10},
		{Title: "Century", Description: "Reach 100 XP", Icon: "💯", Type: model.AchievementXP, Requirement: 100, XPReward: 50},
		{Title: "XP Hunter", Description: "Reach 500 XP", Icon: "🎯", Type: model.AchievementXP, Requirement: 500, XPReward: 100},
		{Title: "XP Master", Description: "Reach 1000 XP", Icon: "👑", Type: model.AchievementXP, Requirement: 1000, XPReward: 200},
		{Title: "On Fire", Description: "Keep a 3 day streak", Icon: "🔥", Type: model.AchievementStreak, Requirement: 3, XPReward: 30},
		{Title: "Week Warrior", Description: "Keep a 7 day streak", Icon: "⚡", Type: model.AchievementStreak, Requirement: 7, XPReward: 70},
		{Title: "Unstoppable", Description: "Keep a 30 day streak", Icon: "🚀", Type: model.AchievementStreak, Requirement: 30, XPReward: 300},
		{Title: "Bookworm", Description: "Complete 10 lessons", Icon: "📚", Type: model.AchievementLessons, Requirement: 10, XPReward: 50},
		{Title: "Graduate", Description: "Complete a course", Icon: "🎓", Type: model.AchievementCourses, Requirement: 1, XPReward: 100},
		{Title: "Early Bird", Description: "Join the beta", Icon: "🐦", Type: model.AchievementSpecial, Requirement: 1, XPReward: 50},
	}
}

func SeedAchievements(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&model.Achievement{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	defaults := DefaultAchievements()
	if err := db.WithContext(ctx).Create(&defaults).Error; err != nil {
		return fmt.Errorf("seed achievements: %w", err)
	}
	applog.Log.Info("Seeded default achievements", zap.Int("count", len(defaults)))
	return nil
}
