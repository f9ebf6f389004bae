package gamification

import "brolearn_backend/internal/model"

type RuleKind int

const (
	RuleUnknown RuleKind = iota
	RuleXPAtLeast
	RuleStreakAtLeast
	// RuleNever marks achievement types that exist in the catalog but have no
	// automatic predicate yet (lessons, courses, special).
	RuleNever
)

type Rule struct {
	Kind      RuleKind
	Threshold int
}

// RuleFor maps every achievement type to a rule. Types outside the known set
// get RuleUnknown, which is never satisfied either.
func RuleFor(t model.AchievementType, requirement int) Rule {
	switch t {
	case model.AchievementXP:
		return Rule{Kind: RuleXPAtLeast, Threshold: requirement}
	case model.AchievementStreak:
		return Rule{Kind: RuleStreakAtLeast, Threshold: requirement}
	case model.AchievementLessons, model.AchievementCourses, model.AchievementSpecial:
		return Rule{Kind: RuleNever, Threshold: requirement}
	}
	return Rule{Kind: RuleUnknown, Threshold: requirement}
}

func (r Rule) Satisfied(s UserState) bool {
	switch r.Kind {
	case RuleXPAtLeast:
		return s.XP >= r.Threshold
	case RuleStreakAtLeast:
		return s.Streak >= r.Threshold
	case RuleNever, RuleUnknown:
		return false
	}
	return false
}

func Qualifies(t model.AchievementType, requirement int, s UserState) bool {
	return RuleFor(t, requirement).Satisfied(s)
}
