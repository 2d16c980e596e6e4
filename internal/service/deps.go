package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/recycle-disposals/internal/cache"
	"github.com/nurpe/recycle-disposals/internal/events"
	"github.com/nurpe/recycle-disposals/internal/metrics"
	"github.com/nurpe/recycle-disposals/internal/model"
	"github.com/nurpe/recycle-disposals/internal/repository"
)

const defaultOperationTimeout = 5 * time.Second

// Deps bundles what the services share. Publisher, Cache, Timeout and Now
// have usable zero values.
type Deps struct {
	Tx        Transactor
	Disposals DisposalRepository
	Companies CompanyRepository
	Workers   WorkerRepository
	Catalog   CatalogRepository
	Cache     cache.Catalog
	Publisher events.Publisher
	Metrics   *metrics.Metrics
	Log       zerolog.Logger
	Timeout   time.Duration
	Now       func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Publisher == nil {
		d.Publisher = events.Noop{}
	}
	if d.Cache == nil {
		d.Cache = cache.Noop{}
	}
	if d.Timeout <= 0 {
		d.Timeout = defaultOperationTimeout
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

func (d Deps) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.Timeout)
}

func (d Deps) now() time.Time {
	return d.Now().UTC()
}

// publish delivers events after the caller's transaction has committed.
// Delivery failures are logged and counted, never returned.
func (d Deps) publish(ctx context.Context, evts ...events.Event) {
	if len(evts) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.Timeout)
	defer cancel()

	for _, event := range evts {
		if err := d.Publisher.Publish(ctx, event); err != nil {
			d.Metrics.PublishFailed(string(event.Type))
			d.Log.Warn().
				Err(err).
				Str("event", string(event.Type)).
				Str("event_id", event.ID).
				Str("disposal_id", event.DisposalID.String()).
				Msg("failed to publish event")
		}
	}
}

// worker resolves the worker record owned by the caller.
func (d Deps) worker(ctx context.Context, p model.Principal) (*model.Worker, error) {
	if !p.IsWorker() {
		return nil, fmt.Errorf("%w: worker role required", ErrPermissionDenied)
	}
	worker, err := d.Workers.GetWorkerByUser(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: no worker profile for user", ErrPermissionDenied)
		}
		return nil, err
	}
	return worker, nil
}

// company resolves the company record owned by the caller.
func (d Deps) company(ctx context.Context, p model.Principal) (*model.Company, error) {
	if !p.IsCompany() {
		return nil, fmt.Errorf("%w: company role required", ErrPermissionDenied)
	}
	company, err := d.Companies.GetCompanyByUser(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: no company profile for user", ErrPermissionDenied)
		}
		return nil, err
	}
	return company, nil
}

// ownCompany requires the caller to be the company identified by companyID.
func (d Deps) ownCompany(ctx context.Context, p model.Principal, companyID uuid.UUID) (*model.Company, error) {
	company, err := d.company(ctx, p)
	if err != nil {
		return nil, err
	}
	if company.ID != companyID {
		return nil, fmt.Errorf("%w: not the owning company", ErrPermissionDenied)
	}
	return company, nil
}

func isClassified(err error) bool {
	for _, sentinel := range []error{
		ErrNotFound,
		ErrPermissionDenied,
		ErrUnauthorized,
		ErrInvalidInput,
		ErrInvalidTransition,
		ErrConflict,
		ErrUpstream,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
