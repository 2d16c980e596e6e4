package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/recycle-disposals/internal/model"
)

func TestSearchMaterialsPaging(t *testing.T) {
	f := newFixture()
	svc := NewCatalogService(f.deps)
	for i := 0; i < 12; i++ {
		f.store.AddMaterial(model.Material{
			Name:             fmt.Sprintf("Glass jar %02d", i),
			Type:             model.MaterialGlass,
			Unit:             model.UnitPiece,
			ConversionFactor: 0.3,
			PricePerUnit:     1,
		})
	}

	page, err := svc.SearchMaterials(context.Background(), MaterialSearchInput{Search: "JAR"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, int64(12), page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Materials, 10)

	page, err = svc.SearchMaterials(context.Background(), MaterialSearchInput{Search: "jar", Page: 2})
	require.NoError(t, err)
	assert.Len(t, page.Materials, 2)

	page, err = svc.SearchMaterials(context.Background(), MaterialSearchInput{Type: "plastic"})
	require.NoError(t, err)
	require.Len(t, page.Materials, 1)
	assert.Equal(t, f.plastic.ID, page.Materials[0].ID)

	page, err = svc.SearchMaterials(context.Background(), MaterialSearchInput{Search: "jar", Page: 9})
	require.NoError(t, err)
	assert.Empty(t, page.Materials)
	assert.NotNil(t, page.Materials)

	_, err = svc.SearchMaterials(context.Background(), MaterialSearchInput{Type: "wood"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCatalogReads(t *testing.T) {
	f := newFixture()
	svc := NewCatalogService(f.deps)

	m, err := svc.GetMaterial(context.Background(), f.plastic.ID)
	require.NoError(t, err)
	assert.Equal(t, "PET bottles", m.Name)

	_, err = svc.GetMaterial(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	materials, err := svc.ListMaterials(context.Background())
	require.NoError(t, err)
	assert.Len(t, materials, 2)

	achievements, err := svc.ListAchievements(context.Background())
	require.NoError(t, err)
	require.Len(t, achievements, 1)

	a, err := svc.GetAchievement(context.Background(), f.co2Milestone.ID)
	require.NoError(t, err)
	assert.Equal(t, "CO2 Saver", a.Title)

	_, err = svc.GetAchievement(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Contains(t, f.scrape(t), "catalog_cache_misses_total 4")
}

func TestImportUpsertsByName(t *testing.T) {
	f := newFixture()
	svc := NewCatalogService(f.deps)

	updated := f.plastic
	updated.ID = uuid.Nil
	updated.PricePerUnit = 7
	fresh := model.Material{
		Name:             "Aluminium cans",
		Type:             model.MaterialMetal,
		Unit:             model.UnitKg,
		ConversionFactor: 1,
		PricePerUnit:     9,
		Impact:           model.ImpactCoefficients{EnergySavedPerUnit: 14},
	}
	rule := model.Achievement{
		Title:       "First Drop",
		Description: "Complete a first disposal",
		BadgeIcon:   "first-drop.svg",
		Category:    model.AchievementCategoryStat,
		StatType:    model.StatTotalDisposals,
		Threshold:   1,
		Level:       "Silver",
	}

	err := svc.Import(context.Background(), []model.Material{updated, fresh}, []model.Achievement{rule})
	require.NoError(t, err)

	m, err := svc.GetMaterial(context.Background(), f.plastic.ID)
	require.NoError(t, err)
	assert.InDelta(t, 7, m.PricePerUnit, 1e-9)

	materials, err := svc.ListMaterials(context.Background())
	require.NoError(t, err)
	assert.Len(t, materials, 3)

	achievements, err := svc.ListAchievements(context.Background())
	require.NoError(t, err)
	require.Len(t, achievements, 2)
	assert.Equal(t, model.LevelSilver, achievements[1].Level)
}

func TestImportValidatesBeforeWriting(t *testing.T) {
	f := newFixture()
	svc := NewCatalogService(f.deps)

	good := model.Material{Name: "Newspaper", Type: model.MaterialPaper, Unit: model.UnitKg, ConversionFactor: 1}
	bad := model.Material{Name: "Mystery", Type: "unobtainium", Unit: model.UnitKg, ConversionFactor: 1}

	err := svc.Import(context.Background(), []model.Material{good, bad}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	materials, err := svc.ListMaterials(context.Background())
	require.NoError(t, err)
	assert.Len(t, materials, 2)
}
