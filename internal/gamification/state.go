// Package gamification holds the pure rules that turn a lesson completion into
// XP, level, streak and achievement changes. Functions here take snapshots and
// return new snapshots; persisting them is the caller's job.
package gamification

import (
	"time"

	"brolearn_backend/internal/model"
)

// UserState is the gamified part of a user aggregate.
type UserState struct {
	XP             int
	Level          int
	Streak         int
	LastActivityAt *time.Time
}

func StateOf(u *model.User) UserState {
	return UserState{
		XP:             u.XP,
		Level:          u.Level,
		Streak:         u.Streak,
		LastActivityAt: u.LastActivityAt,
	}
}

// ApplyTo copies the snapshot back onto the stored user.
func (s UserState) ApplyTo(u *model.User) {
	u.XP = s.XP
	u.Level = s.Level
	u.Streak = s.Streak
	u.LastActivityAt = s.LastActivityAt
}
