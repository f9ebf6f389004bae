package model

import (
	"time"

	"gorm.io/gorm"
)

// swagger:model User
type User struct {
	BaseModel
	Name     string `gorm:"size:100;not null" json:"name"`
	Email    string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password string `gorm:"size:100;not null" json:"-"`
	XP       int    `gorm:"default:0;index:idx_users_rank,priority:2,sort:desc" json:"xp"`
	Level    int    `gorm:"default:1;index:idx_users_rank,priority:1,sort:desc" json:"level"`
	Streak   int    `gorm:"default:0" json:"streak"`
	// set at registration, then only on day-crossing completions
	LastActivityAt *time.Time `json:"lastActivityDate"`
}

// BeforeCreate stamps the activity time of users created without one.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.LastActivityAt == nil {
		now := tx.NowFunc()
		u.LastActivityAt = &now
	}
	return nil
}

func (User) TableName() string {
	return "users"
}
