package model

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinePriceUsesConversionFactor(t *testing.T) {
	m := Material{ID: uuid.New(), ConversionFactor: 1000, PricePerUnit: 0.25}
	assert.InDelta(t, 500.0, m.LinePrice(2), 1e-9)
}

func TestAddLineSingleMaterial(t *testing.T) {
	m := Material{ID: uuid.New(), ConversionFactor: 1, PricePerUnit: 5}
	d := Disposal{Status: DisposalPending}

	require.NoError(t, d.AddLine(m, 3))

	require.Len(t, d.Materials, 1)
	assert.Equal(t, 15.0, d.Materials[0].CalculatedPrice)
	assert.Equal(t, 15.0, d.TotalPrice)
}

func TestTotalMatchesStoredLinePrices(t *testing.T) {
	m := Material{ID: uuid.New(), ConversionFactor: 1, PricePerUnit: 1.25}
	d := Disposal{Status: DisposalPending}
	for i := 0; i < 3; i++ {
		require.NoError(t, d.AddLine(m, 0.3333))
	}

	stored := func(v float64) decimal.Decimal {
		return decimal.NewFromFloat(v).Round(PriceScale)
	}
	sum := decimal.Zero
	for _, line := range d.Materials {
		assert.Equal(t, 0.4166, line.CalculatedPrice)
		sum = sum.Add(stored(line.CalculatedPrice))
	}
	assert.True(t, stored(d.TotalPrice).Equal(sum), "total %v, lines %v", d.TotalPrice, sum)
	assert.Equal(t, 1.2498, d.TotalPrice)
}

func TestMaterialValidatePriceScale(t *testing.T) {
	m := Material{Name: "Copper wire", Type: MaterialMetal, Unit: UnitKg, ConversionFactor: 1}

	m.PricePerUnit = 0.0005
	assert.NoError(t, m.Validate())

	m.PricePerUnit = 0.00005
	assert.ErrorContains(t, m.Validate(), "decimal places")
}

func TestAddLineRejectsNonPositiveQuantity(t *testing.T) {
	m := Material{ID: uuid.New(), ConversionFactor: 1, PricePerUnit: 5}
	d := Disposal{}

	for _, qty := range []float64{0, -1} {
		err := d.AddLine(m, qty)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
	assert.Empty(t, d.Materials)
	assert.Zero(t, d.TotalPrice)
}

func TestTotalPriceTracksLineSequence(t *testing.T) {
	catalog := []Material{
		{ID: uuid.New(), ConversionFactor: 1, PricePerUnit: 5},
		{ID: uuid.New(), ConversionFactor: 1000, PricePerUnit: 0.02},
		{ID: uuid.New(), ConversionFactor: 0.5, PricePerUnit: 3.3},
	}
	rng := rand.New(rand.NewSource(42))
	d := Disposal{Status: DisposalPending}

	for i := 0; i < 200; i++ {
		m := catalog[rng.Intn(len(catalog))]
		if rng.Intn(3) == 0 {
			d.RemoveLines(m.ID)
		} else {
			require.NoError(t, d.AddLine(m, float64(rng.Intn(50)+1)/4))
		}

		var want float64
		for _, line := range d.Materials {
			for _, c := range catalog {
				if c.ID == line.MaterialID {
					want += line.Quantity * c.ConversionFactor * c.PricePerUnit
				}
			}
		}
		assert.InDelta(t, want, d.TotalPrice, 1e-6)
	}
}

func TestRemoveLinesReportsMissingMaterial(t *testing.T) {
	m := Material{ID: uuid.New(), ConversionFactor: 1, PricePerUnit: 1}
	d := Disposal{}
	require.NoError(t, d.AddLine(m, 1))
	require.NoError(t, d.AddLine(m, 2))

	assert.False(t, d.RemoveLines(uuid.New()))
	assert.Len(t, d.Materials, 2)

	assert.True(t, d.RemoveLines(m.ID))
	assert.Empty(t, d.Materials)
	assert.Zero(t, d.TotalPrice)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to DisposalStatus
		want     bool
	}{
		{DisposalPending, DisposalAccepted, true},
		{DisposalPending, DisposalRejected, true},
		{DisposalPending, DisposalCancelled, true},
		{DisposalPending, DisposalCompleted, false},
		{DisposalAccepted, DisposalCompleted, true},
		{DisposalAccepted, DisposalRejected, false},
		{DisposalRejected, DisposalCompleted, false},
		{DisposalCompleted, DisposalCompleted, false},
		{DisposalCancelled, DisposalCompleted, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestTransitionSources(t *testing.T) {
	assert.Equal(t, []DisposalStatus{DisposalAccepted}, TransitionSources(DisposalCompleted))
	assert.Equal(t, []DisposalStatus{DisposalPending, DisposalAccepted}, TransitionSources(DisposalCancelled))
	assert.Empty(t, TransitionSources(DisposalPending))
}

func TestMaterialQuantitiesWith(t *testing.T) {
	var q MaterialQuantities
	q, ok := q.With(MaterialGlass, 2.5)
	require.True(t, ok)
	assert.Equal(t, 2.5, q.Get(MaterialGlass))

	_, ok = q.With(MaterialType("wood"), 1)
	assert.False(t, ok)
}

func TestCompanyStatsValue(t *testing.T) {
	stats := CompanyStats{TotalDisposals: 4, ImpactTotals: ImpactTotals{CO2Saved: 12}}

	v, ok := stats.Value(StatTotalDisposals)
	require.True(t, ok)
	assert.Equal(t, 4.0, v)

	v, ok = stats.Value(StatTotalCO2Saved)
	require.True(t, ok)
	assert.Equal(t, 12.0, v)

	_, ok = stats.Value(StatType("totalHappiness"))
	assert.False(t, ok)
}
