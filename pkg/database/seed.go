package database

import (
	"context"
	"fmt"
	"os"

	"brolearn_backend/internal/model"
	applog "brolearn_backend/pkg/logger"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

type CatalogSeed struct {
	Courses []CourseSeed `yaml:"courses"`
}

type CourseSeed struct {
	Title          string           `yaml:"title"`
	Description    string           `yaml:"description"`
	Icon           string           `yaml:"icon"`
	Color          string           `yaml:"color"`
	Order          int              `yaml:"order"`
	EstimatedHours int              `yaml:"estimatedHours"`
	Difficulty     model.Difficulty `yaml:"difficulty"`
	Modules        []ModuleSeed     `yaml:"modules"`
}

type ModuleSeed struct {
	Title       string       `yaml:"title"`
	Description string       `yaml:"description"`
	Order       int          `yaml:"order"`
	RequiredXP  int          `yaml:"requiredXp"`
	Lessons     []LessonSeed `yaml:"lessons"`
}

type LessonSeed struct {
	Title            string               `yaml:"title"`
	Type             model.LessonType     `yaml:"type"`
	Order            int                  `yaml:"order"`
	XPReward         int                  `yaml:"xpReward"`
	Content          string               `yaml:"content"`
	ImageURL         string               `yaml:"imageUrl"`
	VideoURL         string               `yaml:"videoUrl"`
	QuizQuestions    []model.QuizQuestion `yaml:"quizQuestions"`
	PracticeSteps    []string             `yaml:"practiceSteps"`
	Flashcards       []model.Flashcard    `yaml:"flashcards"`
	EstimatedMinutes int                  `yaml:"estimatedMinutes"`
}

func LoadCatalogSeed(path string) (*CatalogSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog seed: %w", err)
	}
	var seed CatalogSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse catalog seed: %w", err)
	}
	if err := seed.Validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

// Validate checks the constraints the schema cannot express.
func (s *CatalogSeed) Validate() error {
	for _, c := range s.Courses {
		if c.Title == "" {
			return fmt.Errorf("course %d: title is required", c.Order)
		}
		for _, m := range c.Modules {
			for _, l := range m.Lessons {
				if !l.Type.Valid() {
					return fmt.Errorf("lesson %q: unknown type %q", l.Title, l.Type)
				}
				if l.XPReward < 0 {
					return fmt.Errorf("lesson %q: xpReward must be positive", l.Title)
				}
			}
		}
	}
	return nil
}

// SeedCatalog inserts the catalog in one transaction, but only into an empty
// catalog; it returns false when courses already exist.
func SeedCatalog(ctx context.Context, db *gorm.DB, seed *CatalogSeed) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&model.Course{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	lessons := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, cs := range seed.Courses {
			course := model.Course{
				Title:          cs.Title,
				Description:    cs.Description,
				Icon:           cs.Icon,
				Color:          cs.Color,
				Order:          cs.Order,
				EstimatedHours: cs.EstimatedHours,
				Difficulty:     cs.Difficulty,
				IsActive:       true,
			}
			if err := tx.Create(&course).Error; err != nil {
				return fmt.Errorf("course %q: %w", cs.Title, err)
			}
			for _, ms := range cs.Modules {
				module := model.Module{
					CourseID:    course.ID,
					Title:       ms.Title,
					Description: ms.Description,
					Order:       ms.Order,
					RequiredXP:  ms.RequiredXP,
				}
				if err := tx.Create(&module).Error; err != nil {
					return fmt.Errorf("module %q: %w", ms.Title, err)
				}
				for _, ls := range ms.Lessons {
					lesson := model.Lesson{
						ModuleID:         module.ID,
						Title:            ls.Title,
						Type:             ls.Type,
						Order:            ls.Order,
						XPReward:         ls.XPReward,
						Content:          ls.Content,
						ImageURL:         ls.ImageURL,
						VideoURL:         ls.VideoURL,
						QuizQuestions:    ls.QuizQuestions,
						PracticeSteps:    ls.PracticeSteps,
						Flashcards:       ls.Flashcards,
						EstimatedMinutes: ls.EstimatedMinutes,
					}
					if err := tx.Create(&lesson).Error; err != nil {
						return fmt.Errorf("lesson %q: %w", ls.Title, err)
					}
					lessons++
				}
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	applog.Log.Info("Seeded catalog",
		zap.Int("courses", len(seed.Courses)),
		zap.Int("lessons", lessons),
	)
	return true, nil
}
