package model

import (
	"time"
)

// Progress is the ledger entry for one (user, lesson) pair.
// swagger:model Progress
type Progress struct {
	BaseModel
	UserID      uint       `gorm:"not null;uniqueIndex:idx_progress_user_lesson;index:idx_progress_user_course,priority:1;index:idx_progress_user_completed,priority:1" json:"userId"`
	LessonID    uint       `gorm:"not null;uniqueIndex:idx_progress_user_lesson" json:"lessonId"`
	ModuleID    uint       `gorm:"not null;index" json:"moduleId"`
	CourseID    uint       `gorm:"not null;index:idx_progress_user_course,priority:2" json:"courseId"`
	IsCompleted bool       `gorm:"default:false;index:idx_progress_user_completed,priority:2" json:"isCompleted"`
	Score       *int       `json:"score"`
	Attempts    int        `gorm:"default:0" json:"attempts"`
	CompletedAt *time.Time `json:"completedAt"`
}

func (Progress) TableName() string {
	return "progress"
}
