package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/recycle-disposals/internal/model"
)

func TestGenerateImpactReport(t *testing.T) {
	completedAt := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
	report := model.ImpactReport{
		Company: model.Company{
			Name: "Green Works",
			Stats: model.CompanyStats{
				TotalDisposals: 2,
				ImpactTotals:   model.ImpactTotals{CO2Saved: 6, WaterSaved: 12.5},
				MaterialStats:  model.MaterialQuantities{Plastic: 3},
			},
		},
		Disposals: []model.Disposal{{
			ID:          uuid.New(),
			AddressName: "HQ",
			TotalPrice:  15,
			CompletedAt: &completedAt,
			Impact:      &model.ImpactSnapshot{Delta: model.ImpactDelta{Totals: model.ImpactTotals{CO2Saved: 6}}},
		}},
		Achievements: []model.Achievement{{Title: "First Steps", Level: model.LevelBronze, Threshold: 1}},
		GeneratedAt:  completedAt,
	}

	content, err := NewGenerator().Generate(report)
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer file.Close()

	assert.Equal(t, []string{"Summary", "Disposals", "Achievements"}, file.GetSheetList())

	name, err := file.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Green Works", name)

	co2, err := file.GetCellValue("Summary", "B6")
	require.NoError(t, err)
	assert.Equal(t, "6", co2)

	plastic, err := file.GetCellValue("Summary", "B14")
	require.NoError(t, err)
	assert.Equal(t, "3", plastic)

	address, err := file.GetCellValue("Disposals", "C2")
	require.NoError(t, err)
	assert.Equal(t, "HQ", address)

	title, err := file.GetCellValue("Achievements", "A2")
	require.NoError(t, err)
	assert.Equal(t, "First Steps", title)
}
