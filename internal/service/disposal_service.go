package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/recycle-disposals/internal/events"
	"github.com/nurpe/recycle-disposals/internal/impact"
	"github.com/nurpe/recycle-disposals/internal/model"
	"github.com/nurpe/recycle-disposals/internal/repository"
)

var errLinesLocked = fmt.Errorf("%w: materials can only change while Pending", ErrInvalidTransition)

type DisposalService struct {
	Deps
	recorder statsRecorder
}

type MaterialLineInput struct {
	MaterialID uuid.UUID
	Quantity   float64
}

type CreateDisposalInput struct {
	Principal    model.Principal
	CompanyID    uuid.UUID
	DisposalDate time.Time
	AddressName  string
	Materials    []MaterialLineInput
}

type CompletionResult struct {
	Disposal        model.Disposal      `json:"disposal"`
	Stats           model.CompanyStats  `json:"stats"`
	NewAchievements []model.Achievement `json:"new_achievements"`
}

func NewDisposalService(deps Deps) *DisposalService {
	deps = deps.withDefaults()
	return &DisposalService{
		Deps: deps,
		recorder: statsRecorder{
			companies: deps.Companies,
			catalog:   deps.Catalog,
			disposals: deps.Disposals,
		},
	}
}

func (s *DisposalService) Create(ctx context.Context, input CreateDisposalInput) (*model.Disposal, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if input.CompanyID == uuid.Nil {
		return nil, fmt.Errorf("%w: company is required", ErrInvalidInput)
	}
	if input.DisposalDate.IsZero() {
		return nil, fmt.Errorf("%w: disposal_date is required", ErrInvalidInput)
	}
	input.AddressName = strings.TrimSpace(input.AddressName)
	if input.AddressName == "" {
		return nil, fmt.Errorf("%w: address_name is required", ErrInvalidInput)
	}

	company, err := s.ownCompany(ctx, input.Principal, input.CompanyID)
	if err != nil {
		return nil, upstream(err)
	}
	if err := checkAddress(company, input.AddressName); err != nil {
		return nil, err
	}

	disposal := model.Disposal{
		CompanyID:    company.ID,
		DisposalDate: input.DisposalDate.UTC(),
		AddressName:  input.AddressName,
		Status:       model.DisposalPending,
		Materials:    []model.MaterialLine{},
	}
	for _, line := range input.Materials {
		material, err := s.Catalog.GetMaterial(ctx, line.MaterialID)
		if err != nil {
			return nil, upstream(notFound(err, "material"))
		}
		if err := disposal.AddLine(*material, line.Quantity); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	created, err := s.Disposals.CreateDisposal(ctx, disposal)
	if err != nil {
		return nil, upstream(err)
	}
	s.publish(ctx, events.ForDisposal(events.DisposalCreated, *created, s.now()))
	return created, nil
}

func checkAddress(company *model.Company, addressName string) error {
	if len(company.Addresses) == 0 {
		return nil
	}
	if _, ok := company.FindAddress(addressName); !ok {
		return fmt.Errorf("%w: address_name %q is not one of the company's addresses", ErrInvalidInput, addressName)
	}
	return nil
}

func (s *DisposalService) Get(ctx context.Context, id uuid.UUID) (*model.Disposal, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	d, err := s.Disposals.GetDisposal(ctx, id)
	if err != nil {
		return nil, upstream(notFound(err, "disposal"))
	}
	return d, nil
}

func (s *DisposalService) List(ctx context.Context) ([]model.Disposal, error) {
	return s.list(ctx, model.DisposalFilter{})
}

func (s *DisposalService) ListPending(ctx context.Context) ([]model.Disposal, error) {
	status := model.DisposalPending
	return s.list(ctx, model.DisposalFilter{Status: &status})
}

func (s *DisposalService) ListByWorker(ctx context.Context, workerID uuid.UUID) ([]model.Disposal, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.Workers.GetWorker(ctx, workerID); err != nil {
		return nil, upstream(notFound(err, "worker"))
	}
	return s.list(ctx, model.DisposalFilter{WorkerID: &workerID})
}

func (s *DisposalService) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]model.Disposal, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.Companies.GetCompany(ctx, companyID); err != nil {
		return nil, upstream(notFound(err, "company"))
	}
	return s.list(ctx, model.DisposalFilter{CompanyID: &companyID})
}

func (s *DisposalService) list(ctx context.Context, filter model.DisposalFilter) ([]model.Disposal, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	disposals, err := s.Disposals.ListDisposals(ctx, filter)
	if err != nil {
		return nil, upstream(err)
	}
	return disposals, nil
}

// Accept assigns the calling worker. Of several workers racing on the same
// Pending disposal exactly one wins; the rest get ErrInvalidTransition.
func (s *DisposalService) Accept(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Disposal, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	worker, err := s.worker(ctx, p)
	if err != nil {
		return nil, upstream(err)
	}

	workerID := worker.ID
	d, err := s.transition(ctx, id, model.DisposalAccepted, model.StatusChange{
		Status:   model.DisposalAccepted,
		WorkerID: &workerID,
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.ForDisposal(events.DisposalAccepted, *d, s.now()))
	return d, nil
}

func (s *DisposalService) Reject(ctx context.Context, p model.Principal, id uuid.UUID, reason string) (*model.Disposal, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	worker, err := s.worker(ctx, p)
	if err != nil {
		return nil, upstream(err)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection_message is required", ErrInvalidInput)
	}

	workerID := worker.ID
	d, err := s.transition(ctx, id, model.DisposalRejected, model.StatusChange{
		Status:           model.DisposalRejected,
		WorkerID:         &workerID,
		RejectionMessage: &reason,
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.ForDisposal(events.DisposalRejected, *d, s.now()))
	return d, nil
}

// Cancel withdraws a Pending or Accepted disposal on behalf of its company.
func (s *DisposalService) Cancel(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Disposal, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	current, err := s.Disposals.GetDisposal(ctx, id)
	if err != nil {
		return nil, upstream(notFound(err, "disposal"))
	}
	if _, err := s.ownCompany(ctx, p, current.CompanyID); err != nil {
		return nil, upstream(err)
	}

	d, err := s.transition(ctx, id, model.DisposalCancelled, model.StatusChange{Status: model.DisposalCancelled})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.ForDisposal(events.DisposalCancelled, *d, s.now()))
	return d, nil
}

func (s *DisposalService) transition(ctx context.Context, id uuid.UUID, to model.DisposalStatus, change model.StatusChange) (*model.Disposal, error) {
	err := s.Disposals.TransitionDisposal(ctx, id, model.TransitionSources(to), change)
	s.Metrics.Transition(string(to), err == nil)
	if err != nil {
		return nil, upstream(transitionError(err, to))
	}

	d, err := s.Disposals.GetDisposal(ctx, id)
	if err != nil {
		return nil, upstream(notFound(err, "disposal"))
	}
	return d, nil
}

func transitionError(err error, to model.DisposalStatus) error {
	switch {
	case errors.Is(err, repository.ErrStatusMismatch):
		return fmt.Errorf("%w: disposal cannot move to %s from its current status", ErrInvalidTransition, to)
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: disposal", ErrNotFound)
	default:
		return err
	}
}

// Complete finishes an Accepted disposal and folds its impact into the owning
// company's statistics. Everything happens in one transaction: on any failure
// the disposal stays Accepted and no statistic changes.
func (s *DisposalService) Complete(ctx context.Context, p model.Principal, id uuid.UUID) (*CompletionResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	worker, err := s.worker(ctx, p)
	if err != nil {
		return nil, upstream(err)
	}

	var (
		result  CompletionResult
		outcome recordOutcome
	)
	err = s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		at := s.now()
		err := s.Disposals.TransitionDisposal(ctx, id, model.TransitionSources(model.DisposalCompleted), model.StatusChange{
			Status:      model.DisposalCompleted,
			CompletedAt: &at,
		})
		if err != nil {
			return transitionError(err, model.DisposalCompleted)
		}

		d, err := s.Disposals.GetDisposal(ctx, id)
		if err != nil {
			return notFound(err, "disposal")
		}
		if d.WorkerID == nil || *d.WorkerID != worker.ID {
			return fmt.Errorf("%w: disposal is assigned to another worker", ErrPermissionDenied)
		}

		outcome, err = s.recorder.record(ctx, *d, at)
		if err != nil {
			if isClassified(err) {
				return err
			}
			return fmt.Errorf("%w: applying company statistics: %v", ErrUpstream, err)
		}

		completed, err := s.Disposals.GetDisposal(ctx, id)
		if err != nil {
			return err
		}
		result = CompletionResult{
			Disposal:        *completed,
			Stats:           outcome.Stats,
			NewAchievements: outcome.Earned,
		}
		return nil
	})
	s.Metrics.Transition(string(model.DisposalCompleted), err == nil)
	if err != nil {
		return nil, upstream(err)
	}
	if result.NewAchievements == nil {
		result.NewAchievements = []model.Achievement{}
	}

	s.Metrics.AchievementsEarned(len(result.NewAchievements))
	at := s.now()
	completedEvent := events.ForDisposal(events.DisposalCompleted, result.Disposal, at)
	totals := outcome.Snapshot.Delta.Totals
	completedEvent.Totals = &totals
	published := []events.Event{completedEvent}
	for _, a := range result.NewAchievements {
		published = append(published, events.ForAchievement(a, result.Disposal.CompanyID, result.Disposal.ID, at))
	}
	s.publish(ctx, published...)

	s.Log.Info().
		Str("disposal_id", id.String()).
		Str("company_id", result.Disposal.CompanyID.String()).
		Int("achievements_earned", len(result.NewAchievements)).
		Msg("disposal completed")
	return &result, nil
}

func (s *DisposalService) AddMaterial(ctx context.Context, p model.Principal, id uuid.UUID, line MaterialLineInput) (*model.Disposal, error) {
	return s.editLines(ctx, p, id, func(ctx context.Context, d *model.Disposal) error {
		if line.MaterialID == uuid.Nil {
			return fmt.Errorf("%w: material is required", ErrInvalidInput)
		}
		material, err := s.Catalog.GetMaterial(ctx, line.MaterialID)
		if err != nil {
			return notFound(err, "material")
		}
		if err := d.AddLine(*material, line.Quantity); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil
	})
}

func (s *DisposalService) RemoveMaterial(ctx context.Context, p model.Principal, id, materialID uuid.UUID) (*model.Disposal, error) {
	return s.editLines(ctx, p, id, func(ctx context.Context, d *model.Disposal) error {
		if !d.RemoveLines(materialID) {
			return fmt.Errorf("%w: material %s is not on the disposal", ErrNotFound, materialID)
		}
		return nil
	})
}

// editLines applies edit to a locked Pending disposal owned by the caller and
// persists the new lines and total.
func (s *DisposalService) editLines(
	ctx context.Context,
	p model.Principal,
	id uuid.UUID,
	edit func(ctx context.Context, d *model.Disposal) error,
) (*model.Disposal, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		d, err := s.Disposals.LockDisposal(ctx, id)
		if err != nil {
			return notFound(err, "disposal")
		}
		if _, err := s.ownCompany(ctx, p, d.CompanyID); err != nil {
			return err
		}
		if d.Status != model.DisposalPending {
			return errLinesLocked
		}
		if err := edit(ctx, d); err != nil {
			return err
		}
		err = s.Disposals.SaveDisposalLines(ctx, id, d.Materials, d.TotalPrice)
		if errors.Is(err, repository.ErrStatusMismatch) {
			return errLinesLocked
		}
		return notFound(err, "disposal")
	})
	if err != nil {
		return nil, upstream(err)
	}
	return s.Get(ctx, id)
}

func (s *DisposalService) Reschedule(ctx context.Context, p model.Principal, id uuid.UUID, date time.Time) (*model.Disposal, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: disposal_date is required", ErrInvalidInput)
	}
	date = date.UTC()
	return s.updateDetails(ctx, p, id, func(*model.Company) error { return nil }, &date, nil)
}

func (s *DisposalService) ChangeAddress(ctx context.Context, p model.Principal, id uuid.UUID, addressName string) (*model.Disposal, error) {
	addressName = strings.TrimSpace(addressName)
	if addressName == "" {
		return nil, fmt.Errorf("%w: address_name is required", ErrInvalidInput)
	}
	check := func(company *model.Company) error { return checkAddress(company, addressName) }
	return s.updateDetails(ctx, p, id, check, nil, &addressName)
}

func (s *DisposalService) updateDetails(
	ctx context.Context,
	p model.Principal,
	id uuid.UUID,
	check func(*model.Company) error,
	date *time.Time,
	addressName *string,
) (*model.Disposal, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	current, err := s.Disposals.GetDisposal(ctx, id)
	if err != nil {
		return nil, upstream(notFound(err, "disposal"))
	}
	company, err := s.ownCompany(ctx, p, current.CompanyID)
	if err != nil {
		return nil, upstream(err)
	}
	if err := check(company); err != nil {
		return nil, err
	}
	if err := s.Disposals.UpdateDisposalDetails(ctx, id, date, addressName); err != nil {
		if errors.Is(err, repository.ErrStatusMismatch) {
			return nil, fmt.Errorf("%w: only Pending disposals can be rescheduled", ErrInvalidTransition)
		}
		return nil, upstream(notFound(err, "disposal"))
	}
	return s.Get(ctx, id)
}

// CalculateStats reports the disposal's impact. Completed disposals answer from
// the coefficients frozen at completion; others preview against the current catalog.
func (s *DisposalService) CalculateStats(ctx context.Context, id uuid.UUID) (*model.ImpactTotals, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	d, err := s.Disposals.GetDisposal(ctx, id)
	if err != nil {
		return nil, upstream(notFound(err, "disposal"))
	}
	if d.Status == model.DisposalCompleted && d.Impact != nil {
		totals := d.Impact.Delta.Totals
		return &totals, nil
	}

	materials, err := s.Catalog.GetMaterialsByIDs(ctx, d.MaterialIDs())
	if err != nil {
		return nil, upstream(err)
	}
	delta, err := impact.ComputeDeltas(d.Materials, impact.IndexMaterials(materials))
	if err != nil {
		if errors.Is(err, impact.ErrMaterialNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return nil, err
	}
	return &delta.Totals, nil
}
