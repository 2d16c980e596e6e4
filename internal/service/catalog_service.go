package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nurpe/recycle-disposals/internal/model"
)

const materialsPageSize = 10

type CatalogService struct {
	Deps
}

type MaterialSearchInput struct {
	Search string
	Type   string
	Page   int
}

type MaterialPage struct {
	Page       int              `json:"page"`
	TotalPages int              `json:"total_pages"`
	TotalItems int64            `json:"total_items"`
	Materials  []model.Material `json:"materials"`
}

func NewCatalogService(deps Deps) *CatalogService {
	return &CatalogService{Deps: deps.withDefaults()}
}

func (s *CatalogService) GetMaterial(ctx context.Context, id uuid.UUID) (*model.Material, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if material, ok := s.Cache.Material(ctx, id); ok {
		s.Metrics.CacheHit()
		return material, nil
	}
	s.Metrics.CacheMiss()

	material, err := s.Catalog.GetMaterial(ctx, id)
	if err != nil {
		return nil, upstream(notFound(err, "material"))
	}
	s.Cache.SetMaterial(ctx, *material)
	return material, nil
}

func (s *CatalogService) ListMaterials(ctx context.Context) ([]model.Material, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if materials, ok := s.Cache.Materials(ctx); ok {
		s.Metrics.CacheHit()
		return materials, nil
	}
	s.Metrics.CacheMiss()

	materials, err := s.Catalog.ListMaterials(ctx)
	if err != nil {
		return nil, upstream(err)
	}
	s.Cache.SetMaterials(ctx, materials)
	return materials, nil
}

// SearchMaterials matches name substrings case-insensitively, optionally
// filtered by type. Pages hold ten materials and start at 1.
func (s *CatalogService) SearchMaterials(ctx context.Context, input MaterialSearchInput) (*MaterialPage, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	page := input.Page
	if page < 1 {
		page = 1
	}
	filter := model.MaterialFilter{
		Search: strings.TrimSpace(input.Search),
		Offset: (page - 1) * materialsPageSize,
		Limit:  materialsPageSize,
	}
	if strings.TrimSpace(input.Type) != "" {
		materialType, ok := model.ParseMaterialType(input.Type)
		if !ok {
			return nil, fmt.Errorf("%w: unknown material type %q", ErrInvalidInput, input.Type)
		}
		filter.Type = &materialType
	}

	materials, total, err := s.Catalog.SearchMaterials(ctx, filter)
	if err != nil {
		return nil, upstream(err)
	}
	if materials == nil {
		materials = []model.Material{}
	}
	return &MaterialPage{
		Page:       page,
		TotalPages: int((total + materialsPageSize - 1) / materialsPageSize),
		TotalItems: total,
		Materials:  materials,
	}, nil
}

func (s *CatalogService) ListAchievements(ctx context.Context) ([]model.Achievement, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if achievements, ok := s.Cache.Achievements(ctx); ok {
		s.Metrics.CacheHit()
		return achievements, nil
	}
	s.Metrics.CacheMiss()

	achievements, err := s.Catalog.ListAchievements(ctx)
	if err != nil {
		return nil, upstream(err)
	}
	s.Cache.SetAchievements(ctx, achievements)
	return achievements, nil
}

func (s *CatalogService) GetAchievement(ctx context.Context, id uuid.UUID) (*model.Achievement, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	achievement, err := s.Catalog.GetAchievement(ctx, id)
	if err != nil {
		return nil, upstream(notFound(err, "achievement"))
	}
	return achievement, nil
}

// Import validates and upserts catalog entries, then drops cached catalog reads.
func (s *CatalogService) Import(ctx context.Context, materials []model.Material, achievements []model.Achievement) error {
	for i := range achievements {
		level, ok := model.ParseAchievementLevel(string(achievements[i].Level))
		if ok {
			achievements[i].Level = level
		}
	}
	for _, m := range materials {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("%w: material %q: %v", ErrInvalidInput, m.Name, err)
		}
	}
	for _, a := range achievements {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("%w: achievement %q: %v", ErrInvalidInput, a.Title, err)
		}
	}

	err := s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, m := range materials {
			if _, err := s.Catalog.UpsertMaterial(ctx, m); err != nil {
				return fmt.Errorf("material %q: %w", m.Name, err)
			}
		}
		for _, a := range achievements {
			if _, err := s.Catalog.UpsertAchievement(ctx, a); err != nil {
				return fmt.Errorf("achievement %q: %w", a.Title, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.Cache.Invalidate(ctx)
	return nil
}
