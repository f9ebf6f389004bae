package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForXP(t *testing.T) {
	cases := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{105, 2},
		{250, 3},
		{4899, 49},
		{4900, 50},
		{4999, 50},
		{100000, 50},
		{-10, 1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, LevelForXP(tc.xp), "xp=%d", tc.xp)
	}
}

func TestLevelProgressAndNext(t *testing.T) {
	assert.Equal(t, 0, LevelProgressPercent(0))
	assert.Equal(t, 95, LevelProgressPercent(95))
	assert.Equal(t, 5, LevelProgressPercent(105))
	assert.Equal(t, 100, XPToNextLevel(0))
	assert.Equal(t, 5, XPToNextLevel(95))
	assert.Equal(t, 95, XPToNextLevel(105))
}

func TestGrantXPRelevels(t *testing.T) {
	s := UserState{XP: 95, Level: 1}
	s = GrantXP(s, 10)
	assert.Equal(t, 105, s.XP)
	assert.Equal(t, 2, s.Level)

	// negative amounts never reduce XP
	s = GrantXP(s, -50)
	assert.Equal(t, 105, s.XP)
	assert.Equal(t, 2, s.Level)
}

func TestGrantXPKeepsLevelInvariant(t *testing.T) {
	s := UserState{Level: 1}
	for i := 0; i < 600; i++ {
		s = GrantXP(s, 10)
		if !assert.Equal(t, LevelForXP(s.XP), s.Level) {
			return
		}
	}
	assert.Equal(t, 6000, s.XP)
	assert.Equal(t, MaxLevel, s.Level)
}
