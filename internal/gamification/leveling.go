package gamification

import "math"

const (
	XPPerLevel = 100
	MinLevel   = 1
	MaxLevel   = 50
)

// LevelForXP saturates at MaxLevel; XP beyond the last threshold is kept but
// never rolls the level over.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	level := xp/XPPerLevel + MinLevel
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// LevelProgressPercent is the share of the current level already earned, 0..99.
func LevelProgressPercent(xp int) int {
	if xp < 0 {
		return 0
	}
	return int(math.Round(float64(xp%XPPerLevel) / XPPerLevel * 100))
}

func XPToNextLevel(xp int) int {
	if xp < 0 {
		return XPPerLevel
	}
	return XPPerLevel - xp%XPPerLevel
}

// GrantXP is the only way XP enters a UserState. The level is always
// recomputed, so callers never store a stale level.
func GrantXP(s UserState, amount int) UserState {
	if amount > 0 {
		s.XP += amount
	}
	s.Level = LevelForXP(s.XP)
	return s
}
