package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/recycle-disposals/internal/model"
	"github.com/nurpe/recycle-disposals/internal/service"
	"github.com/nurpe/recycle-disposals/internal/testutil"
)

const sample = `
materials:
  - name: PET bottles
    type: plastic
    unit: kg
    conversion_factor: 1
    price_per_unit: 5
    environmental_impact:
      co2_saved_per_unit: 2
      water_saved_per_unit: 1
  - name: Glass jars
    type: glass
    unit: piece
    conversion_factor: 0.3
    price_per_unit: 1
achievements:
  - title: CO2 Saver
    description: Save 100 kg of CO2
    badge_icon: co2.svg
    category: stat
    stat_type: totalCO2Saved
    threshold: 100
    level: Gold
workers:
  - user_id: 7b0e3d4e-0f6a-4d0c-9c55-1c1f2a9d8e11
    name: Aidar
companies:
  - user_id: 0c1f3b7d-9e2a-4b8f-8d6e-5a4b3c2d1e00
    name: Green Works
`

func TestParseAndCatalog(t *testing.T) {
	doc, err := Parse([]byte(sample))
	require.NoError(t, err)

	materials, achievements, err := doc.Catalog()
	require.NoError(t, err)
	require.Len(t, materials, 2)
	assert.Equal(t, model.MaterialPlastic, materials[0].Type)
	assert.InDelta(t, 2, materials[0].Impact.CO2SavedPerUnit, 1e-9)
	assert.Equal(t, model.UnitPiece, materials[1].Unit)

	require.Len(t, achievements, 1)
	assert.Equal(t, model.LevelGold, achievements[0].Level)
	assert.Equal(t, model.StatTotalCO2Saved, achievements[0].StatType)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("materials:\n  - name: x\n    colour: red\n"))
	assert.Error(t, err)
}

func TestCatalogRejectsUnknownEnumerations(t *testing.T) {
	doc, err := Parse([]byte("materials:\n  - name: Oak\n    type: wood\n    unit: kg\n"))
	require.NoError(t, err)
	_, _, err = doc.Catalog()
	assert.ErrorContains(t, err, "unknown type")

	doc, err = Parse([]byte("achievements:\n  - title: X\n    level: diamond\n"))
	require.NoError(t, err)
	_, _, err = doc.Catalog()
	assert.ErrorContains(t, err, "unknown level")
}

func TestApplyIsRepeatable(t *testing.T) {
	store := testutil.NewStore()
	catalog := service.NewCatalogService(service.Deps{Tx: store, Catalog: store, Log: zerolog.Nop()})
	seeder := NewSeeder(catalog, store, zerolog.Nop())

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))
	doc, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, seeder.Apply(context.Background(), doc))
	require.NoError(t, seeder.Apply(context.Background(), doc))

	materials, err := store.ListMaterials(context.Background())
	require.NoError(t, err)
	assert.Len(t, materials, 2)

	achievements, err := store.ListAchievements(context.Background())
	require.NoError(t, err)
	assert.Len(t, achievements, 1)

	workers, err := store.ListWorkers(context.Background())
	require.NoError(t, err)
	assert.Len(t, workers, 1)

	companies, err := store.ListCompanies(context.Background())
	require.NoError(t, err)
	assert.Len(t, companies, 1)
}
