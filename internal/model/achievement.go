package model

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

type AchievementCategory string

const (
	AchievementCategoryStat     AchievementCategory = "stat"
	AchievementCategoryMaterial AchievementCategory = "material"
)

type AchievementLevel string

const (
	LevelBronze   AchievementLevel = "bronze"
	LevelSilver   AchievementLevel = "silver"
	LevelGold     AchievementLevel = "gold"
	LevelPlatinum AchievementLevel = "platinum"
)

func ParseAchievementLevel(raw string) (AchievementLevel, bool) {
	switch AchievementLevel(strings.ToLower(strings.TrimSpace(raw))) {
	case "", LevelBronze:
		return LevelBronze, true
	case LevelSilver:
		return LevelSilver, true
	case LevelGold:
		return LevelGold, true
	case LevelPlatinum:
		return LevelPlatinum, true
	default:
		return "", false
	}
}

// Achievement is a monotone threshold rule over a company's cumulative statistics.
type Achievement struct {
	ID           uuid.UUID           `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	BadgeIcon    string              `json:"badge_icon"`
	Category     AchievementCategory `json:"category"`
	StatType     StatType            `json:"stat_type,omitempty"`
	MaterialType MaterialType        `json:"material_type,omitempty"`
	Threshold    float64             `json:"threshold"`
	Level        AchievementLevel    `json:"level"`
}

func (a Achievement) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return errors.New("achievement title is required")
	}
	if strings.TrimSpace(a.Description) == "" {
		return errors.New("achievement description is required")
	}
	if strings.TrimSpace(a.BadgeIcon) == "" {
		return errors.New("achievement badge icon is required")
	}
	switch a.Category {
	case AchievementCategoryStat:
		if _, ok := ParseStatType(string(a.StatType)); !ok {
			return errors.New("stat achievement requires a known stat type")
		}
	case AchievementCategoryMaterial:
		if _, ok := ParseMaterialType(string(a.MaterialType)); !ok {
			return errors.New("material achievement requires a known material type")
		}
	default:
		return errors.New("unknown achievement category " + string(a.Category))
	}
	if a.Threshold < 0 {
		return errors.New("threshold must be non-negative")
	}
	if _, ok := ParseAchievementLevel(string(a.Level)); !ok {
		return errors.New("unknown achievement level " + string(a.Level))
	}
	return nil
}
