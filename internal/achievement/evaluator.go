// Package achievement decides which threshold rules a company has newly reached.
package achievement

import (
	"github.com/google/uuid"

	"github.com/nurpe/recycle-disposals/internal/model"
)

// Eligible reports whether stats satisfy rule. Missing material totals count as zero.
func Eligible(stats model.CompanyStats, rule model.Achievement) bool {
	switch rule.Category {
	case model.AchievementCategoryStat:
		value, ok := stats.Value(rule.StatType)
		return ok && value >= rule.Threshold
	case model.AchievementCategoryMaterial:
		return stats.MaterialStats.Get(rule.MaterialType) >= rule.Threshold
	default:
		return false
	}
}

// Evaluate returns the eligible rules that are not in held, in rule order.
// Running it again after recording the result yields nothing new.
func Evaluate(stats model.CompanyStats, rules []model.Achievement, held map[uuid.UUID]struct{}) []model.Achievement {
	var earned []model.Achievement
	for _, rule := range rules {
		if _, ok := held[rule.ID]; ok {
			continue
		}
		if Eligible(stats, rule) {
			earned = append(earned, rule)
		}
	}
	return earned
}
