package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/recycle-disposals/internal/metrics"
	"github.com/nurpe/recycle-disposals/internal/model"
	"github.com/nurpe/recycle-disposals/internal/testutil"
)

var fixedNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store     *testutil.Store
	publisher *testutil.MemoryPublisher
	metrics   *metrics.Metrics
	deps      Deps

	company      model.Company
	companyUser  model.Principal
	worker       model.Worker
	workerUser   model.Principal
	otherWorker  model.Worker
	otherUser    model.Principal
	plastic      model.Material
	paper        model.Material
	co2Milestone model.Achievement
}

func newFixture() *fixture {
	f := &fixture{
		store:     testutil.NewStore(),
		publisher: &testutil.MemoryPublisher{},
		metrics:   metrics.New(),
	}
	f.deps = Deps{
		Tx:        f.store,
		Disposals: f.store,
		Companies: f.store,
		Workers:   f.store,
		Catalog:   f.store,
		Publisher: f.publisher,
		Metrics:   f.metrics,
		Log:       zerolog.Nop(),
		Now:       func() time.Time { return fixedNow },
	}

	f.company = f.store.AddCompany(model.Company{
		Name:          "Green Works",
		ContactNumber: "+7 700 000 0001",
		Addresses: []model.Address{{
			Name:    "HQ",
			Street:  "Abay 1",
			City:    "Almaty",
			Country: "KZ",
		}},
	})
	f.companyUser = model.Principal{UserID: f.company.UserID, Role: model.RoleCompany}

	f.worker = f.store.AddWorker(model.Worker{Name: "Aidar"})
	f.workerUser = model.Principal{UserID: f.worker.UserID, Role: model.RoleWorker}
	f.otherWorker = f.store.AddWorker(model.Worker{Name: "Dana"})
	f.otherUser = model.Principal{UserID: f.otherWorker.UserID, Role: model.RoleWorker}

	f.plastic = f.store.AddMaterial(model.Material{
		Name:             "PET bottles",
		Type:             model.MaterialPlastic,
		Unit:             model.UnitKg,
		ConversionFactor: 1,
		PricePerUnit:     5,
		Impact:           model.ImpactCoefficients{CO2SavedPerUnit: 2, WaterSavedPerUnit: 1},
	})
	f.paper = f.store.AddMaterial(model.Material{
		Name:             "Cardboard",
		Type:             model.MaterialPaper,
		Unit:             model.UnitKg,
		ConversionFactor: 1,
		PricePerUnit:     2,
		Impact:           model.ImpactCoefficients{TreesSavedPerUnit: 0.5},
	})
	f.co2Milestone = f.store.AddAchievement(model.Achievement{
		Title:     "CO2 Saver",
		Category:  model.AchievementCategoryStat,
		StatType:  model.StatTotalCO2Saved,
		Threshold: 5,
		Level:     model.LevelBronze,
	})
	return f
}

// pending stores a Pending disposal for the fixture company with one plastic line.
func (f *fixture) pending(quantity float64) model.Disposal {
	d := model.Disposal{
		CompanyID:    f.company.ID,
		DisposalDate: fixedNow.Add(24 * time.Hour),
		AddressName:  "HQ",
		Status:       model.DisposalPending,
	}
	if quantity > 0 {
		_ = d.AddLine(f.plastic, quantity)
	}
	return f.store.PutDisposal(d)
}

// accepted stores a disposal already assigned to the fixture worker.
func (f *fixture) accepted(quantity float64) model.Disposal {
	d := f.pending(quantity)
	workerID := f.worker.ID
	d.Status = model.DisposalAccepted
	d.WorkerID = &workerID
	return f.store.PutDisposal(d)
}

func (f *fixture) stranger() model.Principal {
	return model.Principal{UserID: uuid.New(), Role: model.RoleCompany}
}

// scrape renders the fixture's metrics in the text exposition format.
func (f *fixture) scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	f.metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}
