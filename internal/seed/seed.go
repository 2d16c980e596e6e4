// Package seed loads catalog and profile fixtures from YAML documents.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/nurpe/recycle-disposals/internal/model"
)

type Material struct {
	Name             string                   `yaml:"name"`
	Type             string                   `yaml:"type"`
	Unit             string                   `yaml:"unit"`
	ConversionFactor float64                  `yaml:"conversion_factor"`
	PricePerUnit     float64                  `yaml:"price_per_unit"`
	Description      string                   `yaml:"description"`
	ImageURL         string                   `yaml:"image_url"`
	Impact           model.ImpactCoefficients `yaml:"environmental_impact"`
}

type Achievement struct {
	Title        string  `yaml:"title"`
	Description  string  `yaml:"description"`
	BadgeIcon    string  `yaml:"badge_icon"`
	Category     string  `yaml:"category"`
	StatType     string  `yaml:"stat_type"`
	MaterialType string  `yaml:"material_type"`
	Threshold    float64 `yaml:"threshold"`
	Level        string  `yaml:"level"`
}

type Worker struct {
	UserID string `yaml:"user_id"`
	Name   string `yaml:"name"`
	Phone  string `yaml:"phone"`
}

type Company struct {
	UserID        string `yaml:"user_id"`
	Name          string `yaml:"name"`
	ContactNumber string `yaml:"contact_number"`
}

type Document struct {
	Materials    []Material    `yaml:"materials"`
	Achievements []Achievement `yaml:"achievements"`
	Workers      []Worker      `yaml:"workers"`
	Companies    []Company     `yaml:"companies"`
}

// Load reads and decodes the seed file at path.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a seed document. Unknown keys are rejected.
func Parse(raw []byte) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &doc, nil
}

// Catalog converts the document's catalog entries, validating enumerations.
func (d *Document) Catalog() ([]model.Material, []model.Achievement, error) {
	materials := make([]model.Material, 0, len(d.Materials))
	for _, m := range d.Materials {
		materialType, ok := model.ParseMaterialType(m.Type)
		if !ok {
			return nil, nil, fmt.Errorf("material %q: unknown type %q", m.Name, m.Type)
		}
		unit, ok := model.ParseUnit(m.Unit)
		if !ok {
			return nil, nil, fmt.Errorf("material %q: unknown unit %q", m.Name, m.Unit)
		}
		materials = append(materials, model.Material{
			Name:             m.Name,
			Type:             materialType,
			Unit:             unit,
			ConversionFactor: m.ConversionFactor,
			PricePerUnit:     m.PricePerUnit,
			Description:      m.Description,
			ImageURL:         m.ImageURL,
			Impact:           m.Impact,
		})
	}

	achievements := make([]model.Achievement, 0, len(d.Achievements))
	for _, a := range d.Achievements {
		level, ok := model.ParseAchievementLevel(a.Level)
		if !ok {
			return nil, nil, fmt.Errorf("achievement %q: unknown level %q", a.Title, a.Level)
		}
		achievements = append(achievements, model.Achievement{
			Title:        a.Title,
			Description:  a.Description,
			BadgeIcon:    a.BadgeIcon,
			Category:     model.AchievementCategory(a.Category),
			StatType:     model.StatType(a.StatType),
			MaterialType: model.MaterialType(a.MaterialType),
			Threshold:    a.Threshold,
			Level:        level,
		})
	}
	return materials, achievements, nil
}

type CatalogImporter interface {
	Import(ctx context.Context, materials []model.Material, achievements []model.Achievement) error
}

type ProfileStore interface {
	CreateCompany(ctx context.Context, c model.Company) (*model.Company, error)
	CreateWorker(ctx context.Context, w model.Worker) (*model.Worker, error)
}

type Seeder struct {
	catalog  CatalogImporter
	profiles ProfileStore
	log      zerolog.Logger
}

func NewSeeder(catalog CatalogImporter, profiles ProfileStore, log zerolog.Logger) *Seeder {
	return &Seeder{catalog: catalog, profiles: profiles, log: log}
}

// Apply upserts everything in doc. Running it twice leaves the same state.
func (s *Seeder) Apply(ctx context.Context, doc *Document) error {
	materials, achievements, err := doc.Catalog()
	if err != nil {
		return err
	}
	if err := s.catalog.Import(ctx, materials, achievements); err != nil {
		return fmt.Errorf("import catalog: %w", err)
	}

	for _, w := range doc.Workers {
		userID, err := uuid.Parse(w.UserID)
		if err != nil {
			return fmt.Errorf("worker %q: invalid user_id", w.Name)
		}
		if _, err := s.profiles.CreateWorker(ctx, model.Worker{UserID: userID, Name: w.Name, Phone: w.Phone}); err != nil {
			return fmt.Errorf("worker %q: %w", w.Name, err)
		}
	}
	for _, c := range doc.Companies {
		userID, err := uuid.Parse(c.UserID)
		if err != nil {
			return fmt.Errorf("company %q: invalid user_id", c.Name)
		}
		company := model.Company{UserID: userID, Name: c.Name, ContactNumber: c.ContactNumber}
		if _, err := s.profiles.CreateCompany(ctx, company); err != nil {
			return fmt.Errorf("company %q: %w", c.Name, err)
		}
	}

	s.log.Info().
		Int("materials", len(materials)).
		Int("achievements", len(achievements)).
		Int("workers", len(doc.Workers)).
		Int("companies", len(doc.Companies)).
		Msg("seed applied")
	return nil
}
