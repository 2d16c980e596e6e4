package repository

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nurpe/recycle-disposals/internal/config"
	"github.com/nurpe/recycle-disposals/internal/db"
	"github.com/nurpe/recycle-disposals/internal/model"
)

var (
	schemaOnce sync.Once
	schemaDB   *gorm.DB
	schemaErr  error
)

// newTestStore connects to the postgres named by DB_DSN and applies the
// migrations once per test binary. Every test creates its own rows.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		t.Skip("DB_DSN is not set")
	}
	schemaOnce.Do(func() {
		cfg := &config.Config{Environment: "test", DB: config.DBConfig{DSN: dsn, MaxOpenConns: 20}}
		schemaDB, schemaErr = db.New(cfg, zerolog.Nop())
		if schemaErr == nil {
			schemaErr = db.Migrate(schemaDB, zerolog.Nop())
		}
	})
	require.NoError(t, schemaErr)
	return NewStore(schemaDB)
}

type fixture struct {
	store     *Store
	disposals *DisposalRepository
	companies *CompanyRepository
	workers   *WorkerRepository
	catalog   *CatalogRepository
	company   *model.Company
	material  *model.Material
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newTestStore(t)
	f := &fixture{
		store:     store,
		disposals: NewDisposalRepository(store),
		companies: NewCompanyRepository(store),
		workers:   NewWorkerRepository(store),
		catalog:   NewCatalogRepository(store),
	}
	ctx := context.Background()
	suffix := uuid.NewString()[:8]

	company, err := f.companies.CreateCompany(ctx, model.Company{UserID: uuid.New(), Name: "Green Works " + suffix})
	require.NoError(t, err)
	f.company = company

	material, err := f.catalog.UpsertMaterial(ctx, model.Material{
		Name:             "PET bottles " + suffix,
		Type:             model.MaterialPlastic,
		Unit:             model.UnitKg,
		ConversionFactor: 1,
		PricePerUnit:     1.25,
		Impact:           model.ImpactCoefficients{CO2SavedPerUnit: 2},
	})
	require.NoError(t, err)
	f.material = material
	return f
}

func (f *fixture) pending(t *testing.T, quantities ...float64) *model.Disposal {
	t.Helper()
	d := model.Disposal{
		CompanyID:    f.company.ID,
		DisposalDate: time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC),
		AddressName:  "HQ",
		Status:       model.DisposalPending,
	}
	for _, q := range quantities {
		require.NoError(t, d.AddLine(*f.material, q))
	}
	created, err := f.disposals.CreateDisposal(context.Background(), d)
	require.NoError(t, err)
	return created
}

func sumLines(d *model.Disposal) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range d.Materials {
		sum = sum.Add(decimal.NewFromFloat(line.CalculatedPrice))
	}
	return sum
}

func TestDisposalTotalMatchesStoredLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := f.pending(t, 0.3333, 0.3333, 0.3333)
	require.Len(t, created.Materials, 3)
	assert.True(t, decimal.NewFromFloat(created.TotalPrice).Equal(sumLines(created)),
		"total %v, lines %v", created.TotalPrice, sumLines(created))
	assert.Equal(t, 1.2498, created.TotalPrice)

	require.NoError(t, created.AddLine(*f.material, 0.0007))
	require.NoError(t, f.disposals.SaveDisposalLines(ctx, created.ID, created.Materials, created.TotalPrice))

	reloaded, err := f.disposals.GetDisposal(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Materials, 4)
	assert.True(t, decimal.NewFromFloat(reloaded.TotalPrice).Equal(sumLines(reloaded)),
		"total %v, lines %v", reloaded.TotalPrice, sumLines(reloaded))
	assert.Equal(t, created.TotalPrice, reloaded.TotalPrice)
}

func TestMaterialPriceRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m := *f.material
	m.PricePerUnit = 0.0005
	require.NoError(t, m.Validate())
	saved, err := f.catalog.UpsertMaterial(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, f.material.ID, saved.ID)

	got, err := f.catalog.GetMaterial(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0005, got.PricePerUnit)
}

func TestConcurrentAcceptHasOneWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.pending(t, 2)

	const racers = 8
	workerIDs := make([]uuid.UUID, racers)
	for i := range workerIDs {
		w, err := f.workers.CreateWorker(ctx, model.Worker{UserID: uuid.New(), Name: "Worker"})
		require.NoError(t, err)
		workerIDs[i] = w.ID
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		winners  []uuid.UUID
		mismatch int
		other    []error
	)
	start := make(chan struct{})
	for _, id := range workerIDs {
		wg.Add(1)
		go func(workerID uuid.UUID) {
			defer wg.Done()
			<-start
			err := f.disposals.TransitionDisposal(ctx, d.ID, model.TransitionSources(model.DisposalAccepted), model.StatusChange{
				Status:   model.DisposalAccepted,
				WorkerID: &workerID,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, workerID)
			case errors.Is(err, ErrStatusMismatch):
				mismatch++
			default:
				other = append(other, err)
			}
		}(id)
	}
	close(start)
	wg.Wait()

	require.Empty(t, other)
	require.Len(t, winners, 1)
	assert.Equal(t, racers-1, mismatch)

	stored, err := f.disposals.GetDisposal(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DisposalAccepted, stored.Status)
	require.NotNil(t, stored.WorkerID)
	assert.Equal(t, winners[0], *stored.WorkerID)
}

func TestTransitionUnknownDisposal(t *testing.T) {
	f := newFixture(t)
	err := f.disposals.TransitionDisposal(context.Background(), uuid.New(),
		model.TransitionSources(model.DisposalAccepted), model.StatusChange{Status: model.DisposalAccepted})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDisposalHistoryIsKeyedByDisposal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.pending(t, 1)
	entry := model.DisposalHistoryEntry{DisposalID: d.ID, Date: time.Now().UTC()}

	// Two appliers race for the same disposal; the history row admits one.
	var (
		wg      sync.WaitGroup
		applied = make([]bool, 2)
	)
	for i := range applied {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := f.store.WithinTransaction(ctx, func(ctx context.Context) error {
				stats, err := f.companies.LockCompanyStats(ctx, f.company.ID)
				if err != nil {
					return err
				}
				inserted, err := f.companies.AppendDisposalHistory(ctx, f.company.ID, entry)
				if err != nil || !inserted {
					return err
				}
				stats.TotalDisposals++
				applied[i] = true
				return f.companies.SaveCompanyStats(ctx, f.company.ID, stats)
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.NotEqual(t, applied[0], applied[1])

	again, err := f.companies.AppendDisposalHistory(ctx, f.company.ID, entry)
	require.NoError(t, err)
	assert.False(t, again)

	company, err := f.companies.GetCompany(ctx, f.company.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), company.Stats.TotalDisposals)
}

func TestLockCompanyStatsUnknownCompany(t *testing.T) {
	f := newFixture(t)
	err := f.store.WithinTransaction(context.Background(), func(ctx context.Context) error {
		_, err := f.companies.LockCompanyStats(ctx, uuid.New())
		return err
	})
	assert.ErrorIs(t, err, ErrNotFound)
}
