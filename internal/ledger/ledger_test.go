package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/recycle-disposals/internal/model"
)

func TestApplyAddsDeltaAndCountsDisposal(t *testing.T) {
	current := model.CompanyStats{
		TotalDisposals: 2,
		ImpactTotals:   model.ImpactTotals{CO2Saved: 10, WaterSaved: 5},
		MaterialStats:  model.MaterialQuantities{Plastic: 4},
	}
	delta := model.ImpactDelta{
		Totals:          model.ImpactTotals{CO2Saved: 6, OilSaved: 1},
		PerMaterialType: model.MaterialQuantities{Plastic: 3, Glass: 2},
	}

	got, err := Apply(current, delta)
	require.NoError(t, err)

	assert.Equal(t, int64(3), got.TotalDisposals)
	assert.Equal(t, 16.0, got.CO2Saved)
	assert.Equal(t, 5.0, got.WaterSaved)
	assert.Equal(t, 1.0, got.OilSaved)
	assert.Equal(t, 7.0, got.MaterialStats.Plastic)
	assert.Equal(t, 2.0, got.MaterialStats.Glass, "unseen material type starts from zero")

	assert.Equal(t, int64(2), current.TotalDisposals, "input must not change")
}

func TestApplyEmptyDeltaStillCountsDisposal(t *testing.T) {
	got, err := Apply(model.CompanyStats{}, model.ImpactDelta{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.TotalDisposals)
}

func TestApplyRejectsNegativeDelta(t *testing.T) {
	current := model.CompanyStats{ImpactTotals: model.ImpactTotals{CO2Saved: 10}}

	_, err := Apply(current, model.ImpactDelta{Totals: model.ImpactTotals{CO2Saved: -1}})
	assert.ErrorIs(t, err, ErrNegativeDelta)

	_, err = Apply(current, model.ImpactDelta{PerMaterialType: model.MaterialQuantities{Metal: -0.5}})
	assert.ErrorIs(t, err, ErrNegativeDelta)
}

func TestApplyIsMonotonic(t *testing.T) {
	stats := model.CompanyStats{}
	deltas := []model.ImpactDelta{
		{Totals: model.ImpactTotals{CO2Saved: 1.5}},
		{Totals: model.ImpactTotals{EnergySaved: 3}, PerMaterialType: model.MaterialQuantities{Paper: 1}},
		{},
	}
	for _, d := range deltas {
		next, err := Apply(stats, d)
		require.NoError(t, err)
		for _, s := range model.StatTypes {
			before, _ := stats.Value(s)
			after, _ := next.Value(s)
			assert.GreaterOrEqual(t, after, before, s)
		}
		stats = next
	}
}
