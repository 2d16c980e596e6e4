package model

import (
	"time"

	"github.com/google/uuid"
)

// ImpactTotals holds the six environmental-impact running totals.
type ImpactTotals struct {
	CO2Saved           float64 `json:"total_co2_saved"`
	WaterSaved         float64 `json:"total_water_saved"`
	EnergySaved        float64 `json:"total_energy_saved"`
	TreesSaved         float64 `json:"total_trees_saved"`
	LandfillSpaceSaved float64 `json:"total_landfill_space_saved"`
	OilSaved           float64 `json:"total_oil_saved"`
}

func (t ImpactTotals) Plus(o ImpactTotals) ImpactTotals {
	return ImpactTotals{
		CO2Saved:           t.CO2Saved + o.CO2Saved,
		WaterSaved:         t.WaterSaved + o.WaterSaved,
		EnergySaved:        t.EnergySaved + o.EnergySaved,
		TreesSaved:         t.TreesSaved + o.TreesSaved,
		LandfillSpaceSaved: t.LandfillSpaceSaved + o.LandfillSpaceSaved,
		OilSaved:           t.OilSaved + o.OilSaved,
	}
}

// Scaled returns the coefficients multiplied by quantity.
func (c ImpactCoefficients) Scaled(quantity float64) ImpactTotals {
	return ImpactTotals{
		CO2Saved:           c.CO2SavedPerUnit * quantity,
		WaterSaved:         c.WaterSavedPerUnit * quantity,
		EnergySaved:        c.EnergySavedPerUnit * quantity,
		TreesSaved:         c.TreesSavedPerUnit * quantity,
		LandfillSpaceSaved: c.LandfillSpaceSavedPerUnit * quantity,
		OilSaved:           c.OilSavedPerUnit * quantity,
	}
}

func (t ImpactTotals) HasNegative() bool {
	return t.CO2Saved < 0 || t.WaterSaved < 0 || t.EnergySaved < 0 ||
		t.TreesSaved < 0 || t.LandfillSpaceSaved < 0 || t.OilSaved < 0
}

// MaterialQuantities is a fixed mapping over the material-type enumeration.
// Every entry exists and defaults to zero.
type MaterialQuantities struct {
	Plastic    float64 `json:"plastic"`
	Paper      float64 `json:"paper"`
	Metal      float64 `json:"metal"`
	Glass      float64 `json:"glass"`
	Electronic float64 `json:"electronic"`
	Organic    float64 `json:"organic"`
}

func (q MaterialQuantities) Get(t MaterialType) float64 {
	switch t {
	case MaterialPlastic:
		return q.Plastic
	case MaterialPaper:
		return q.Paper
	case MaterialMetal:
		return q.Metal
	case MaterialGlass:
		return q.Glass
	case MaterialElectronic:
		return q.Electronic
	case MaterialOrganic:
		return q.Organic
	default:
		return 0
	}
}

// With returns a copy with delta added to the entry for t. The boolean is false
// when t is not part of the enumeration.
func (q MaterialQuantities) With(t MaterialType, delta float64) (MaterialQuantities, bool) {
	switch t {
	case MaterialPlastic:
		q.Plastic += delta
	case MaterialPaper:
		q.Paper += delta
	case MaterialMetal:
		q.Metal += delta
	case MaterialGlass:
		q.Glass += delta
	case MaterialElectronic:
		q.Electronic += delta
	case MaterialOrganic:
		q.Organic += delta
	default:
		return q, false
	}
	return q, true
}

func (q MaterialQuantities) Plus(o MaterialQuantities) MaterialQuantities {
	return MaterialQuantities{
		Plastic:    q.Plastic + o.Plastic,
		Paper:      q.Paper + o.Paper,
		Metal:      q.Metal + o.Metal,
		Glass:      q.Glass + o.Glass,
		Electronic: q.Electronic + o.Electronic,
		Organic:    q.Organic + o.Organic,
	}
}

func (q MaterialQuantities) HasNegative() bool {
	for _, t := range MaterialTypes {
		if q.Get(t) < 0 {
			return true
		}
	}
	return false
}

// ImpactDelta is the contribution of one completed disposal to company statistics.
type ImpactDelta struct {
	Totals          ImpactTotals       `json:"totals"`
	PerMaterialType MaterialQuantities `json:"per_material_type"`
}

// LineImpact records the coefficients a single line was valued with.
type LineImpact struct {
	MaterialID   uuid.UUID          `json:"material_id"`
	MaterialType MaterialType       `json:"material_type"`
	Quantity     float64            `json:"quantity"`
	Coefficients ImpactCoefficients `json:"coefficients"`
}

// ImpactSnapshot freezes the delta of a disposal at completion time so later
// catalog edits never change recorded contributions.
type ImpactSnapshot struct {
	Delta      ImpactDelta  `json:"delta"`
	Lines      []LineImpact `json:"lines"`
	ComputedAt time.Time    `json:"computed_at"`
}
