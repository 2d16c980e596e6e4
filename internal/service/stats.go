package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nurpe/recycle-disposals/internal/achievement"
	"github.com/nurpe/recycle-disposals/internal/impact"
	"github.com/nurpe/recycle-disposals/internal/ledger"
	"github.com/nurpe/recycle-disposals/internal/model"
)

// statsRecorder applies a completed disposal to its company: ledger update,
// achievement evaluation and history append. It must run inside a transaction.
type statsRecorder struct {
	companies CompanyRepository
	catalog   CatalogRepository
	disposals DisposalRepository
}

type recordOutcome struct {
	Snapshot model.ImpactSnapshot
	Stats    model.CompanyStats
	Earned   []model.Achievement
	// Applied is false when the disposal had already been counted.
	Applied bool
}

func (r statsRecorder) record(ctx context.Context, d model.Disposal, at time.Time) (recordOutcome, error) {
	var out recordOutcome

	snapshot, err := r.snapshot(ctx, d, at)
	if err != nil {
		return out, err
	}
	out.Snapshot = snapshot

	stats, err := r.companies.LockCompanyStats(ctx, d.CompanyID)
	if err != nil {
		return out, notFound(err, "company")
	}
	out.Stats = stats

	inserted, err := r.companies.AppendDisposalHistory(ctx, d.CompanyID, model.DisposalHistoryEntry{
		DisposalID: d.ID,
		Date:       at,
	})
	if err != nil {
		return out, err
	}
	if !inserted {
		return out, nil
	}

	updated, err := ledger.Apply(stats, snapshot.Delta)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := r.companies.SaveCompanyStats(ctx, d.CompanyID, updated); err != nil {
		return out, err
	}
	out.Stats = updated
	out.Applied = true

	rules, err := r.catalog.ListAchievements(ctx)
	if err != nil {
		return out, err
	}
	held, err := r.companies.ListHeldAchievements(ctx, d.CompanyID)
	if err != nil {
		return out, err
	}
	heldSet := model.Company{Achievements: held}.HeldSet()

	out.Earned = achievement.Evaluate(updated, rules, heldSet)
	if len(out.Earned) == 0 {
		return out, nil
	}

	disposalID := d.ID
	records := make([]model.HeldAchievement, 0, len(out.Earned))
	for _, a := range out.Earned {
		records = append(records, model.HeldAchievement{AchievementID: a.ID, DisposalID: &disposalID, EarnedAt: at})
	}
	if err := r.companies.AddHeldAchievements(ctx, d.CompanyID, records); err != nil {
		return out, err
	}
	return out, nil
}

// snapshot returns the coefficients frozen on the disposal, computing and
// storing them from the current catalog when the disposal has none yet.
func (r statsRecorder) snapshot(ctx context.Context, d model.Disposal, at time.Time) (model.ImpactSnapshot, error) {
	if d.Impact != nil {
		return *d.Impact, nil
	}

	materials, err := r.catalog.GetMaterialsByIDs(ctx, d.MaterialIDs())
	if err != nil {
		return model.ImpactSnapshot{}, err
	}
	snapshot, err := impact.Snapshot(d.Materials, impact.IndexMaterials(materials), at)
	if err != nil {
		if errors.Is(err, impact.ErrMaterialNotFound) {
			return model.ImpactSnapshot{}, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return model.ImpactSnapshot{}, err
	}
	if err := r.disposals.SaveImpactSnapshot(ctx, d.ID, snapshot); err != nil {
		return model.ImpactSnapshot{}, err
	}
	return snapshot, nil
}
