package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MaterialType string

const (
	MaterialPlastic    MaterialType = "plastic"
	MaterialPaper      MaterialType = "paper"
	MaterialMetal      MaterialType = "metal"
	MaterialGlass      MaterialType = "glass"
	MaterialElectronic MaterialType = "electronic"
	MaterialOrganic    MaterialType = "organic"
)

// MaterialTypes lists the closed material-type enumeration in display order.
var MaterialTypes = []MaterialType{
	MaterialPlastic,
	MaterialPaper,
	MaterialMetal,
	MaterialGlass,
	MaterialElectronic,
	MaterialOrganic,
}

func ParseMaterialType(raw string) (MaterialType, bool) {
	candidate := MaterialType(strings.ToLower(strings.TrimSpace(raw)))
	for _, t := range MaterialTypes {
		if t == candidate {
			return t, true
		}
	}
	return "", false
}

type Unit string

const (
	UnitKg    Unit = "kg"
	UnitTon   Unit = "ton"
	UnitLiter Unit = "liter"
	UnitPiece Unit = "piece"
)

func ParseUnit(raw string) (Unit, bool) {
	switch Unit(strings.ToLower(strings.TrimSpace(raw))) {
	case UnitKg:
		return UnitKg, true
	case UnitTon:
		return UnitTon, true
	case UnitLiter:
		return UnitLiter, true
	case UnitPiece:
		return UnitPiece, true
	default:
		return "", false
	}
}

// ImpactCoefficients are the per-unit savings of recycling one unit of a material.
type ImpactCoefficients struct {
	CO2SavedPerUnit           float64 `json:"co2_saved_per_unit" yaml:"co2_saved_per_unit"`
	WaterSavedPerUnit         float64 `json:"water_saved_per_unit" yaml:"water_saved_per_unit"`
	EnergySavedPerUnit        float64 `json:"energy_saved_per_unit" yaml:"energy_saved_per_unit"`
	TreesSavedPerUnit         float64 `json:"trees_saved_per_unit" yaml:"trees_saved_per_unit"`
	LandfillSpaceSavedPerUnit float64 `json:"landfill_space_saved_per_unit" yaml:"landfill_space_saved_per_unit"`
	OilSavedPerUnit           float64 `json:"oil_saved_per_unit" yaml:"oil_saved_per_unit"`
}

func (c ImpactCoefficients) validate() error {
	values := []float64{
		c.CO2SavedPerUnit,
		c.WaterSavedPerUnit,
		c.EnergySavedPerUnit,
		c.TreesSavedPerUnit,
		c.LandfillSpaceSavedPerUnit,
		c.OilSavedPerUnit,
	}
	for _, v := range values {
		if v < 0 {
			return errors.New("impact coefficients must be non-negative")
		}
	}
	return nil
}

type Material struct {
	ID               uuid.UUID          `json:"id"`
	Name             string             `json:"name"`
	Type             MaterialType       `json:"type"`
	Unit             Unit               `json:"unit"`
	ConversionFactor float64            `json:"conversion_factor"`
	Impact           ImpactCoefficients `json:"environmental_impact"`
	Description      string             `json:"description"`
	ImageURL         string             `json:"image_url"`
	PricePerUnit     float64            `json:"price_per_unit"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

func (m Material) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return errors.New("material name is required")
	}
	if _, ok := ParseMaterialType(string(m.Type)); !ok {
		return errors.New("unknown material type " + string(m.Type))
	}
	if _, ok := ParseUnit(string(m.Unit)); !ok {
		return errors.New("unknown unit " + string(m.Unit))
	}
	if m.ConversionFactor <= 0 {
		return errors.New("conversion factor must be positive")
	}
	if m.PricePerUnit < 0 {
		return errors.New("price per unit must be non-negative")
	}
	if price := decimal.NewFromFloat(m.PricePerUnit); !price.Equal(price.Round(PriceScale)) {
		return errors.New("price per unit has more than 4 decimal places")
	}
	return m.Impact.validate()
}

// PriceScale is the number of decimal places every stored price keeps.
const PriceScale = 4

// LinePrice is quantity (in the material's unit) converted to the base unit
// and multiplied by the base-unit price, rounded half away from zero to PriceScale.
func (m Material) LinePrice(quantity float64) float64 {
	return decimal.NewFromFloat(quantity).
		Mul(decimal.NewFromFloat(m.ConversionFactor)).
		Mul(decimal.NewFromFloat(m.PricePerUnit)).
		Round(PriceScale).
		InexactFloat64()
}

type MaterialFilter struct {
	Search string
	Type   *MaterialType
	Offset int
	Limit  int
}
