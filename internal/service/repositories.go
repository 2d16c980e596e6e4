package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/recycle-disposals/internal/model"
)

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type DisposalRepository interface {
	CreateDisposal(ctx context.Context, d model.Disposal) (*model.Disposal, error)
	GetDisposal(ctx context.Context, id uuid.UUID) (*model.Disposal, error)
	LockDisposal(ctx context.Context, id uuid.UUID) (*model.Disposal, error)
	ListDisposals(ctx context.Context, filter model.DisposalFilter) ([]model.Disposal, error)
	TransitionDisposal(ctx context.Context, id uuid.UUID, from []model.DisposalStatus, change model.StatusChange) error
	SaveDisposalLines(ctx context.Context, id uuid.UUID, lines []model.MaterialLine, totalPrice float64) error
	UpdateDisposalDetails(ctx context.Context, id uuid.UUID, date *time.Time, addressName *string) error
	SaveImpactSnapshot(ctx context.Context, id uuid.UUID, snapshot model.ImpactSnapshot) error
}

type CompanyRepository interface {
	CreateCompany(ctx context.Context, c model.Company) (*model.Company, error)
	GetCompany(ctx context.Context, id uuid.UUID) (*model.Company, error)
	GetCompanyByUser(ctx context.Context, userID uuid.UUID) (*model.Company, error)
	ListCompanies(ctx context.Context) ([]model.Company, error)
	UpdateCompanyProfile(ctx context.Context, id uuid.UUID, patch model.CompanyProfilePatch) error
	AddAddress(ctx context.Context, companyID uuid.UUID, addr model.Address) error
	RemoveAddress(ctx context.Context, companyID uuid.UUID, name string) error
	AddPickUpSchedule(ctx context.Context, companyID uuid.UUID, s model.PickUpSchedule) (*model.PickUpSchedule, error)
	UpdatePickUpSchedule(ctx context.Context, companyID, scheduleID uuid.UUID, patch model.PickUpSchedulePatch) (*model.PickUpSchedule, error)
	DeletePickUpSchedule(ctx context.Context, companyID, scheduleID uuid.UUID) error
	ClearPickUpSchedules(ctx context.Context, companyID uuid.UUID) error
	LockCompanyStats(ctx context.Context, companyID uuid.UUID) (model.CompanyStats, error)
	SaveCompanyStats(ctx context.Context, companyID uuid.UUID, stats model.CompanyStats) error
	AppendDisposalHistory(ctx context.Context, companyID uuid.UUID, entry model.DisposalHistoryEntry) (bool, error)
	ListHeldAchievements(ctx context.Context, companyID uuid.UUID) ([]model.HeldAchievement, error)
	AddHeldAchievements(ctx context.Context, companyID uuid.UUID, held []model.HeldAchievement) error
}

type WorkerRepository interface {
	CreateWorker(ctx context.Context, w model.Worker) (*model.Worker, error)
	GetWorker(ctx context.Context, id uuid.UUID) (*model.Worker, error)
	GetWorkerByUser(ctx context.Context, userID uuid.UUID) (*model.Worker, error)
	ListWorkers(ctx context.Context) ([]model.Worker, error)
	UpdateWorkerProfile(ctx context.Context, id uuid.UUID, patch model.WorkerProfilePatch) error
}

type CatalogRepository interface {
	GetMaterial(ctx context.Context, id uuid.UUID) (*model.Material, error)
	ListMaterials(ctx context.Context) ([]model.Material, error)
	GetMaterialsByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Material, error)
	SearchMaterials(ctx context.Context, filter model.MaterialFilter) ([]model.Material, int64, error)
	UpsertMaterial(ctx context.Context, m model.Material) (*model.Material, error)
	ListAchievements(ctx context.Context) ([]model.Achievement, error)
	GetAchievement(ctx context.Context, id uuid.UUID) (*model.Achievement, error)
	UpsertAchievement(ctx context.Context, a model.Achievement) (*model.Achievement, error)
}
