package achievement

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/recycle-disposals/internal/ledger"
	"github.com/nurpe/recycle-disposals/internal/model"
)

func co2Rule(threshold float64) model.Achievement {
	return model.Achievement{
		ID:        uuid.New(),
		Title:     "Carbon cutter",
		Category:  model.AchievementCategoryStat,
		StatType:  model.StatTotalCO2Saved,
		Threshold: threshold,
	}
}

func TestEligible(t *testing.T) {
	stats := model.CompanyStats{
		TotalDisposals: 5,
		ImpactTotals:   model.ImpactTotals{CO2Saved: 100},
		MaterialStats:  model.MaterialQuantities{Metal: 12},
	}

	tests := []struct {
		name string
		rule model.Achievement
		want bool
	}{
		{"stat at threshold", co2Rule(100), true},
		{"stat below threshold", co2Rule(100.5), false},
		{"disposal count", model.Achievement{Category: model.AchievementCategoryStat, StatType: model.StatTotalDisposals, Threshold: 5}, true},
		{"material above threshold", model.Achievement{Category: model.AchievementCategoryMaterial, MaterialType: model.MaterialMetal, Threshold: 10}, true},
		{"absent material counts as zero", model.Achievement{Category: model.AchievementCategoryMaterial, MaterialType: model.MaterialGlass, Threshold: 1}, false},
		{"absent material zero threshold", model.Achievement{Category: model.AchievementCategoryMaterial, MaterialType: model.MaterialGlass, Threshold: 0}, true},
		{"unknown stat", model.Achievement{Category: model.AchievementCategoryStat, StatType: "totalSmiles", Threshold: 0}, false},
		{"unknown category", model.Achievement{Category: "streak", Threshold: 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Eligible(stats, tt.rule))
		})
	}
}

func TestEvaluateSkipsHeld(t *testing.T) {
	first, second := co2Rule(10), co2Rule(50)
	stats := model.CompanyStats{ImpactTotals: model.ImpactTotals{CO2Saved: 60}}

	earned := Evaluate(stats, []model.Achievement{first, second}, map[uuid.UUID]struct{}{first.ID: {}})

	require.Len(t, earned, 1)
	assert.Equal(t, second.ID, earned[0].ID)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	rules := []model.Achievement{co2Rule(10), co2Rule(1000)}
	stats := model.CompanyStats{ImpactTotals: model.ImpactTotals{CO2Saved: 42}}
	held := map[uuid.UUID]struct{}{}

	earned := Evaluate(stats, rules, held)
	require.Len(t, earned, 1)
	for _, a := range earned {
		held[a.ID] = struct{}{}
	}

	assert.Empty(t, Evaluate(stats, rules, held))
}

func TestThresholdCrossedOnce(t *testing.T) {
	rule := co2Rule(100)
	rules := []model.Achievement{rule}
	held := map[uuid.UUID]struct{}{}
	stats := model.CompanyStats{}

	var reported int
	for _, co2 := range []float64{40, 40, 30, 50} {
		var err error
		stats, err = ledger.Apply(stats, model.ImpactDelta{Totals: model.ImpactTotals{CO2Saved: co2}})
		require.NoError(t, err)

		for _, a := range Evaluate(stats, rules, held) {
			reported++
			held[a.ID] = struct{}{}
			assert.GreaterOrEqual(t, stats.CO2Saved, 100.0)
		}
	}
	assert.Equal(t, 1, reported)
}
