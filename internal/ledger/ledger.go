// Package ledger merges impact deltas into a company's running statistics.
package ledger

import (
	"errors"

	"github.com/nurpe/recycle-disposals/internal/model"
)

var ErrNegativeDelta = errors.New("impact delta must not be negative")

// Apply returns current plus delta and one more completed disposal. current is
// not modified. Totals only ever grow, so negative deltas are refused.
func Apply(current model.CompanyStats, delta model.ImpactDelta) (model.CompanyStats, error) {
	if delta.Totals.HasNegative() || delta.PerMaterialType.HasNegative() {
		return current, ErrNegativeDelta
	}
	return model.CompanyStats{
		TotalDisposals: current.TotalDisposals + 1,
		ImpactTotals:   current.ImpactTotals.Plus(delta.Totals),
		MaterialStats:  current.MaterialStats.Plus(delta.PerMaterialType),
	}, nil
}
