package gamification

import "time"

const day = 24 * time.Hour

type StreakTransition int

const (
	StreakUnchanged StreakTransition = iota
	// StreakStarted only happens for rows that predate the registration
	// timestamp and have never been active.
	StreakStarted
	StreakExtended
	StreakReset
)

func (t StreakTransition) String() string {
	switch t {
	case StreakStarted:
		return "started"
	case StreakExtended:
		return "extended"
	case StreakReset:
		return "reset"
	}
	return "unchanged"
}

// Mutates reports whether the transition changes the stored user.
func (t StreakTransition) Mutates() bool {
	return t != StreakUnchanged
}

// EvaluateStreak compares whole elapsed days (floor of elapsed / 24h), not
// calendar dates. A last activity in the future counts as the same day.
func EvaluateStreak(last *time.Time, now time.Time) StreakTransition {
	if last == nil {
		return StreakStarted
	}
	elapsed := now.Sub(*last)
	if elapsed < 0 {
		return StreakUnchanged
	}
	switch days := int(elapsed / day); {
	case days == 0:
		return StreakUnchanged
	case days == 1:
		return StreakExtended
	default:
		return StreakReset
	}
}

// ApplyStreak refreshes LastActivityAt only when the streak moved. A same-day
// completion must keep the old timestamp or the next-day window never opens.
func ApplyStreak(s UserState, now time.Time) (UserState, StreakTransition) {
	t := EvaluateStreak(s.LastActivityAt, now)
	switch t {
	case StreakStarted, StreakReset:
		s.Streak = 1
	case StreakExtended:
		s.Streak++
	default:
		return s, t
	}
	at := now
	s.LastActivityAt = &at
	return s, t
}
