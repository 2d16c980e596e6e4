// Package impact turns the material lines of a disposal into environmental-impact deltas.
package impact

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/recycle-disposals/internal/model"
)

var ErrMaterialNotFound = errors.New("material not found")

// Catalog resolves materials by id. Lookups must not have side effects.
type Catalog interface {
	Material(id uuid.UUID) (model.Material, bool)
}

// Materials is an in-memory Catalog.
type Materials map[uuid.UUID]model.Material

func (m Materials) Material(id uuid.UUID) (model.Material, bool) {
	material, ok := m[id]
	return material, ok
}

func IndexMaterials(list []model.Material) Materials {
	index := make(Materials, len(list))
	for _, m := range list {
		index[m.ID] = m
	}
	return index
}

// ComputeDeltas accumulates quantity × coefficient for every line, and the raw
// quantity per material type. Nothing is rounded.
func ComputeDeltas(lines []model.MaterialLine, catalog Catalog) (model.ImpactDelta, error) {
	snapshot, err := Snapshot(lines, catalog, time.Time{})
	if err != nil {
		return model.ImpactDelta{}, err
	}
	return snapshot.Delta, nil
}

// Snapshot is ComputeDeltas plus the coefficients each line was valued with.
func Snapshot(lines []model.MaterialLine, catalog Catalog, at time.Time) (model.ImpactSnapshot, error) {
	snapshot := model.ImpactSnapshot{
		Lines:      make([]model.LineImpact, 0, len(lines)),
		ComputedAt: at,
	}
	for _, line := range lines {
		material, ok := catalog.Material(line.MaterialID)
		if !ok {
			return model.ImpactSnapshot{}, fmt.Errorf("%w: %s", ErrMaterialNotFound, line.MaterialID)
		}

		perType, ok := snapshot.Delta.PerMaterialType.With(material.Type, line.Quantity)
		if !ok {
			return model.ImpactSnapshot{}, fmt.Errorf("material %s has unknown type %q", material.ID, material.Type)
		}
		snapshot.Delta.PerMaterialType = perType
		snapshot.Delta.Totals = snapshot.Delta.Totals.Plus(material.Impact.Scaled(line.Quantity))

		snapshot.Lines = append(snapshot.Lines, model.LineImpact{
			MaterialID:   material.ID,
			MaterialType: material.Type,
			Quantity:     line.Quantity,
			Coefficients: material.Impact,
		})
	}
	return snapshot, nil
}
