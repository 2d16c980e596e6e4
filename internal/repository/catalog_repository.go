package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/recycle-disposals/internal/model"
)

type CatalogRepository struct {
	store *Store
}

func NewCatalogRepository(store *Store) *CatalogRepository {
	return &CatalogRepository{store: store}
}

const materialColumns = `
	id,
	name,
	type,
	unit,
	conversion_factor,
	price_per_unit,
	description,
	image_url,
	co2_saved_per_unit,
	water_saved_per_unit,
	energy_saved_per_unit,
	trees_saved_per_unit,
	landfill_space_saved_per_unit,
	oil_saved_per_unit,
	created_at,
	updated_at`

type materialRow struct {
	ID                        uuid.UUID
	Name                      string
	Type                      string
	Unit                      string
	ConversionFactor          float64
	PricePerUnit              float64
	Description               string
	ImageURL                  string `gorm:"column:image_url"`
	CO2SavedPerUnit           float64 `gorm:"column:co2_saved_per_unit"`
	WaterSavedPerUnit         float64
	EnergySavedPerUnit        float64
	TreesSavedPerUnit         float64
	LandfillSpaceSavedPerUnit float64
	OilSavedPerUnit           float64
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

func (row materialRow) toModel() model.Material {
	return model.Material{
		ID:               row.ID,
		Name:             row.Name,
		Type:             model.MaterialType(row.Type),
		Unit:             model.Unit(row.Unit),
		ConversionFactor: row.ConversionFactor,
		PricePerUnit:     row.PricePerUnit,
		Description:      row.Description,
		ImageURL:         row.ImageURL,
		Impact: model.ImpactCoefficients{
			CO2SavedPerUnit:           row.CO2SavedPerUnit,
			WaterSavedPerUnit:         row.WaterSavedPerUnit,
			EnergySavedPerUnit:        row.EnergySavedPerUnit,
			TreesSavedPerUnit:         row.TreesSavedPerUnit,
			LandfillSpaceSavedPerUnit: row.LandfillSpaceSavedPerUnit,
			OilSavedPerUnit:           row.OilSavedPerUnit,
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func toMaterials(rows []materialRow) []model.Material {
	materials := make([]model.Material, 0, len(rows))
	for _, row := range rows {
		materials = append(materials, row.toModel())
	}
	return materials
}

func (r *CatalogRepository) GetMaterial(ctx context.Context, id uuid.UUID) (*model.Material, error) {
	var row materialRow
	if err := r.store.conn(ctx).Raw(`SELECT `+materialColumns+` FROM materials WHERE id = ? LIMIT 1`, id).
		Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, ErrNotFound
	}
	material := row.toModel()
	return &material, nil
}

func (r *CatalogRepository) ListMaterials(ctx context.Context) ([]model.Material, error) {
	var rows []materialRow
	if err := r.store.conn(ctx).Raw(`SELECT ` + materialColumns + ` FROM materials ORDER BY name`).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return toMaterials(rows), nil
}

// GetMaterialsByIDs returns the materials that exist among ids; missing ids are
// simply absent from the result.
func (r *CatalogRepository) GetMaterialsByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Material, error) {
	if len(ids) == 0 {
		return []model.Material{}, nil
	}
	var rows []materialRow
	if err := r.store.conn(ctx).Raw(`SELECT `+materialColumns+` FROM materials WHERE id IN ?`, ids).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return toMaterials(rows), nil
}

// SearchMaterials returns one page of materials matching filter and the total match count.
func (r *CatalogRepository) SearchMaterials(ctx context.Context, filter model.MaterialFilter) ([]model.Material, int64, error) {
	var (
		where []string
		args  []interface{}
	)
	if search := strings.TrimSpace(filter.Search); search != "" {
		where = append(where, "name ILIKE ?")
		args = append(args, "%"+escapeLike(search)+"%")
	}
	if filter.Type != nil {
		where = append(where, "type = ?")
		args = append(args, string(*filter.Type))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	db := r.store.conn(ctx)
	var count struct{ Total int64 }
	if err := db.Raw(`SELECT COUNT(*) AS total FROM materials`+clause, args...).Scan(&count).Error; err != nil {
		return nil, 0, err
	}

	var rows []materialRow
	pageArgs := append(append([]interface{}{}, args...), filter.Limit, filter.Offset)
	if err := db.Raw(`SELECT `+materialColumns+` FROM materials`+clause+` ORDER BY name LIMIT ? OFFSET ?`, pageArgs...).
		Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toMaterials(rows), count.Total, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// UpsertMaterial inserts m or updates the material with the same name.
func (r *CatalogRepository) UpsertMaterial(ctx context.Context, m model.Material) (*model.Material, error) {
	var row materialRow
	err := r.store.conn(ctx).Raw(`
		INSERT INTO materials (
			name, type, unit, conversion_factor, price_per_unit, description, image_url,
			co2_saved_per_unit, water_saved_per_unit, energy_saved_per_unit,
			trees_saved_per_unit, landfill_space_saved_per_unit, oil_saved_per_unit
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			type = EXCLUDED.type,
			unit = EXCLUDED.unit,
			conversion_factor = EXCLUDED.conversion_factor,
			price_per_unit = EXCLUDED.price_per_unit,
			description = EXCLUDED.description,
			image_url = EXCLUDED.image_url,
			co2_saved_per_unit = EXCLUDED.co2_saved_per_unit,
			water_saved_per_unit = EXCLUDED.water_saved_per_unit,
			energy_saved_per_unit = EXCLUDED.energy_saved_per_unit,
			trees_saved_per_unit = EXCLUDED.trees_saved_per_unit,
			landfill_space_saved_per_unit = EXCLUDED.landfill_space_saved_per_unit,
			oil_saved_per_unit = EXCLUDED.oil_saved_per_unit,
			updated_at = NOW()
		RETURNING `+materialColumns,
		m.Name, string(m.Type), string(m.Unit), m.ConversionFactor, m.PricePerUnit, m.Description, m.ImageURL,
		m.Impact.CO2SavedPerUnit, m.Impact.WaterSavedPerUnit, m.Impact.EnergySavedPerUnit,
		m.Impact.TreesSavedPerUnit, m.Impact.LandfillSpaceSavedPerUnit, m.Impact.OilSavedPerUnit,
	).Scan(&row).Error
	if err != nil {
		return nil, translate(err)
	}
	material := row.toModel()
	return &material, nil
}

const achievementColumns = `id, title, description, badge_icon, category, stat_type, material_type, threshold, level`

type achievementRow struct {
	ID           uuid.UUID
	Title        string
	Description  string
	BadgeIcon    string
	Category     string
	StatType     string
	MaterialType string
	Threshold    float64
	Level        string
}

func (row achievementRow) toModel() model.Achievement {
	return model.Achievement{
		ID:           row.ID,
		Title:        row.Title,
		Description:  row.Description,
		BadgeIcon:    row.BadgeIcon,
		Category:     model.AchievementCategory(row.Category),
		StatType:     model.StatType(row.StatType),
		MaterialType: model.MaterialType(row.MaterialType),
		Threshold:    row.Threshold,
		Level:        model.AchievementLevel(row.Level),
	}
}

func (r *CatalogRepository) ListAchievements(ctx context.Context) ([]model.Achievement, error) {
	var rows []achievementRow
	if err := r.store.conn(ctx).Raw(`SELECT ` + achievementColumns + ` FROM achievements ORDER BY threshold, title`).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	achievements := make([]model.Achievement, 0, len(rows))
	for _, row := range rows {
		achievements = append(achievements, row.toModel())
	}
	return achievements, nil
}

func (r *CatalogRepository) GetAchievement(ctx context.Context, id uuid.UUID) (*model.Achievement, error) {
	var row achievementRow
	if err := r.store.conn(ctx).Raw(`SELECT `+achievementColumns+` FROM achievements WHERE id = ? LIMIT 1`, id).
		Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, ErrNotFound
	}
	achievement := row.toModel()
	return &achievement, nil
}

// UpsertAchievement inserts a or updates the rule with the same title.
func (r *CatalogRepository) UpsertAchievement(ctx context.Context, a model.Achievement) (*model.Achievement, error) {
	var row achievementRow
	err := r.store.conn(ctx).Raw(`
		INSERT INTO achievements (title, description, badge_icon, category, stat_type, material_type, threshold, level)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (title) DO UPDATE SET
			description = EXCLUDED.description,
			badge_icon = EXCLUDED.badge_icon,
			category = EXCLUDED.category,
			stat_type = EXCLUDED.stat_type,
			material_type = EXCLUDED.material_type,
			threshold = EXCLUDED.threshold,
			level = EXCLUDED.level
		RETURNING `+achievementColumns,
		a.Title, a.Description, a.BadgeIcon, string(a.Category), string(a.StatType), string(a.MaterialType), a.Threshold, string(a.Level),
	).Scan(&row).Error
	if err != nil {
		return nil, translate(err)
	}
	achievement := row.toModel()
	return &achievement, nil
}
