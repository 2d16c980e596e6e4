package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/nurpe/recycle-disposals/internal/events"
	"github.com/nurpe/recycle-disposals/internal/model"
)

var scheduleTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

type CompanyService struct {
	Deps
	recorder statsRecorder
}

type PickUpScheduleInput struct {
	Day         string
	Time        string
	AddressName string
}

type PickUpSchedulePatchInput struct {
	Day         *string
	Time        *string
	AddressName *string
}

func NewCompanyService(deps Deps) *CompanyService {
	deps = deps.withDefaults()
	return &CompanyService{
		Deps: deps,
		recorder: statsRecorder{
			companies: deps.Companies,
			catalog:   deps.Catalog,
			disposals: deps.Disposals,
		},
	}
}

func (s *CompanyService) Get(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	company, err := s.Companies.GetCompany(ctx, id)
	if err != nil {
		return nil, upstream(notFound(err, "company"))
	}
	return company, nil
}

func (s *CompanyService) List(ctx context.Context) ([]model.Company, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	companies, err := s.Companies.ListCompanies(ctx)
	if err != nil {
		return nil, upstream(err)
	}
	return companies, nil
}

// Achievements returns the full rule for every achievement the company holds.
func (s *CompanyService) Achievements(ctx context.Context, id uuid.UUID) ([]model.Achievement, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	company, err := s.Companies.GetCompany(ctx, id)
	if err != nil {
		return nil, upstream(notFound(err, "company"))
	}
	rules, err := s.Catalog.ListAchievements(ctx)
	if err != nil {
		return nil, upstream(err)
	}

	held := company.HeldSet()
	earned := make([]model.Achievement, 0, len(held))
	for _, rule := range rules {
		if _, ok := held[rule.ID]; ok {
			earned = append(earned, rule)
		}
	}
	return earned, nil
}

// ApplyDisposal folds a Completed disposal into the company's statistics.
// Repeating the call for the same disposal changes nothing.
func (s *CompanyService) ApplyDisposal(ctx context.Context, p model.Principal, companyID, disposalID uuid.UUID) (*model.Company, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if disposalID == uuid.Nil {
		return nil, fmt.Errorf("%w: disposal_id is required", ErrInvalidInput)
	}

	var (
		outcome  recordOutcome
		disposal model.Disposal
	)
	err := s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		d, err := s.Disposals.LockDisposal(ctx, disposalID)
		if err != nil {
			return notFound(err, "disposal")
		}
		if err := s.authorizeApply(ctx, p, d); err != nil {
			return err
		}
		if d.CompanyID != companyID {
			return fmt.Errorf("%w: disposal belongs to another company", ErrInvalidInput)
		}
		if d.Status != model.DisposalCompleted {
			return fmt.Errorf("%w: only Completed disposals count towards statistics", ErrInvalidTransition)
		}

		at := s.now()
		if d.CompletedAt != nil {
			at = d.CompletedAt.UTC()
		}
		outcome, err = s.recorder.record(ctx, *d, at)
		if err != nil {
			if isClassified(err) {
				return err
			}
			return fmt.Errorf("%w: applying company statistics: %v", ErrUpstream, err)
		}
		disposal = *d
		return nil
	})
	if err != nil {
		return nil, upstream(err)
	}

	if outcome.Applied {
		s.Metrics.AchievementsEarned(len(outcome.Earned))
		at := s.now()
		published := make([]events.Event, 0, len(outcome.Earned))
		for _, a := range outcome.Earned {
			published = append(published, events.ForAchievement(a, companyID, disposal.ID, at))
		}
		s.publish(ctx, published...)
	}
	return s.Get(ctx, companyID)
}

// authorizeApply admits the owning company and the worker assigned to the disposal.
func (s *CompanyService) authorizeApply(ctx context.Context, p model.Principal, d *model.Disposal) error {
	switch {
	case p.IsCompany():
		_, err := s.ownCompany(ctx, p, d.CompanyID)
		return err
	case p.IsWorker():
		worker, err := s.worker(ctx, p)
		if err != nil {
			return err
		}
		if d.WorkerID == nil || *d.WorkerID != worker.ID {
			return fmt.Errorf("%w: disposal is assigned to another worker", ErrPermissionDenied)
		}
		return nil
	default:
		return ErrPermissionDenied
	}
}

func (s *CompanyService) SetName(ctx context.Context, p model.Principal, id uuid.UUID, name string) (*model.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return s.updateProfile(ctx, p, id, model.CompanyProfilePatch{Name: &name}, "company name already taken")
}

func (s *CompanyService) SetContactNumber(ctx context.Context, p model.Principal, id uuid.UUID, number string) (*model.Company, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, fmt.Errorf("%w: contact_number is required", ErrInvalidInput)
	}
	return s.updateProfile(ctx, p, id, model.CompanyProfilePatch{ContactNumber: &number}, "contact number already taken")
}

func (s *CompanyService) SetProfileImage(ctx context.Context, p model.Principal, id uuid.UUID, image string) (*model.Company, error) {
	image = strings.TrimSpace(image)
	if image == "" {
		return nil, fmt.Errorf("%w: profile_image is required", ErrInvalidInput)
	}
	return s.updateProfile(ctx, p, id, model.CompanyProfilePatch{ProfileImage: &image}, "profile image conflict")
}

func (s *CompanyService) updateProfile(
	ctx context.Context,
	p model.Principal,
	id uuid.UUID,
	patch model.CompanyProfilePatch,
	conflictMsg string,
) (*model.Company, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.ownCompany(ctx, p, id); err != nil {
		return nil, upstream(err)
	}
	if err := s.Companies.UpdateCompanyProfile(ctx, id, patch); err != nil {
		return nil, upstream(notFound(conflict(err, conflictMsg), "company"))
	}
	return s.Get(ctx, id)
}

func (s *CompanyService) AddAddress(ctx context.Context, p model.Principal, id uuid.UUID, addr model.Address) (*model.Company, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	addr.Name = strings.TrimSpace(addr.Name)
	if err := addr.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	company, err := s.ownCompany(ctx, p, id)
	if err != nil {
		return nil, upstream(err)
	}
	if _, exists := company.FindAddress(addr.Name); exists {
		return nil, fmt.Errorf("%w: address %q already exists", ErrConflict, addr.Name)
	}
	if err := s.Companies.AddAddress(ctx, id, addr); err != nil {
		return nil, upstream(conflict(err, "address already exists"))
	}
	return s.Get(ctx, id)
}

func (s *CompanyService) RemoveAddress(ctx context.Context, p model.Principal, id uuid.UUID, name string) (*model.Company, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if _, err := s.ownCompany(ctx, p, id); err != nil {
		return nil, upstream(err)
	}
	if err := s.Companies.RemoveAddress(ctx, id, strings.TrimSpace(name)); err != nil {
		return nil, upstream(notFound(err, "address"))
	}
	return s.Get(ctx, id)
}

func (s *CompanyService) AddPickUpSchedule(ctx context.Context, p model.Principal, id uuid.UUID, input PickUpScheduleInput) (*model.Company, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if input.Day == "" || input.Time == "" || input.AddressName == "" {
		return nil, fmt.Errorf("%w: day, time and address_name are required", ErrInvalidInput)
	}
	day, ok := model.ParseWeekday(input.Day)
	if !ok {
		return nil, fmt.Errorf("%w: unknown day %q", ErrInvalidInput, input.Day)
	}
	if !scheduleTimePattern.MatchString(input.Time) {
		return nil, fmt.Errorf("%w: time must be HH:MM", ErrInvalidInput)
	}

	company, err := s.ownCompany(ctx, p, id)
	if err != nil {
		return nil, upstream(err)
	}
	if err := checkAddress(company, input.AddressName); err != nil {
		return nil, err
	}

	_, err = s.Companies.AddPickUpSchedule(ctx, id, model.PickUpSchedule{
		Day:         day,
		Time:        input.Time,
		AddressName: input.AddressName,
	})
	if err != nil {
		return nil, upstream(conflict(err, "a pick-up is already scheduled for "+string(day)))
	}
	return s.Get(ctx, id)
}

func (s *CompanyService) UpdatePickUpSchedule(
	ctx context.Context,
	p model.Principal,
	id, scheduleID uuid.UUID,
	input PickUpSchedulePatchInput,
) (*model.Company, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var patch model.PickUpSchedulePatch
	if input.Day != nil {
		day, ok := model.ParseWeekday(*input.Day)
		if !ok {
			return nil, fmt.Errorf("%w: unknown day %q", ErrInvalidInput, *input.Day)
		}
		patch.Day = &day
	}
	if input.Time != nil {
		if !scheduleTimePattern.MatchString(*input.Time) {
			return nil, fmt.Errorf("%w: time must be HH:MM", ErrInvalidInput)
		}
		patch.Time = input.Time
	}
	if input.AddressName != nil {
		patch.AddressName = input.AddressName
	}
	if patch.Day == nil && patch.Time == nil && patch.AddressName == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	company, err := s.ownCompany(ctx, p, id)
	if err != nil {
		return nil, upstream(err)
	}
	if patch.AddressName != nil {
		if err := checkAddress(company, *patch.AddressName); err != nil {
			return nil, err
		}
	}

	if _, err := s.Companies.UpdatePickUpSchedule(ctx, id, scheduleID, patch); err != nil {
		return nil, upstream(notFound(conflict(err, "another pick-up is already scheduled for that day"), "pick-up schedule"))
	}
	return s.Get(ctx, id)
}

func (s *CompanyService) DeletePickUpSchedule(ctx context.Context, p model.Principal, id, scheduleID uuid.UUID) (*model.Company, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.ownCompany(ctx, p, id); err != nil {
		return nil, upstream(err)
	}
	if err := s.Companies.DeletePickUpSchedule(ctx, id, scheduleID); err != nil {
		return nil, upstream(notFound(err, "pick-up schedule"))
	}
	return s.Get(ctx, id)
}

func (s *CompanyService) ClearPickUpSchedules(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Company, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.ownCompany(ctx, p, id); err != nil {
		return nil, upstream(err)
	}
	if err := s.Companies.ClearPickUpSchedules(ctx, id); err != nil {
		return nil, upstream(err)
	}
	return s.Get(ctx, id)
}
